package models

import "time"

type Role string

const (
	RoleClient     Role = "client"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         Role      `bson:"role" json:"role"`
	City         string    `bson:"city,omitempty" json:"city,omitempty"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	FCMToken     string    `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

type UserRegistration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
