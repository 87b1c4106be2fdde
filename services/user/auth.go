package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"m3allem/models"
	"m3allem/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var errInvalidCredentials = fmt.Errorf("invalid email or password: %w", models.ErrUnauthorized)

func (s *DefaultUserService) Register(ctx context.Context, reg models.UserRegistration) (*models.AuthResponse, error) {
	// 1. Validate
	name := strings.TrimSpace(reg.Name)
	if name == "" {
		return nil, models.NewValidationError("name", "name is required")
	}
	email, err := normalizeEmail(reg.Email)
	if err != nil {
		return nil, err
	}
	if len(reg.Password) < minPasswordLength {
		return nil, models.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	role := reg.Role
	switch role {
	case "":
		role = models.RoleClient
	case models.RoleClient, models.RoleTechnician:
	default:
		return nil, models.NewValidationError("role", "must be client or technician")
	}

	// 2. Hash and persist
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := s.Clock.Now()
	u := models.User{
		ID:           s.NewID(),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(reg.Phone),
		Role:         role,
		City:         strings.TrimSpace(reg.City),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, &u); err != nil {
		return nil, err
	}
	s.Logger.Info("Register: account created", zap.String("userID", u.ID), zap.String("role", string(u.Role)))

	return s.issue(u)
}

func (s *DefaultUserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, errInvalidCredentials
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		s.Logger.Error("Login: failed to fetch user", zap.Error(err))
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.issue(*u)
}

func (s *DefaultUserService) UpdatePassword(ctx context.Context, id, current, next string) error {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", models.ErrUnauthorized)
	}
	if len(next) < minPasswordLength {
		return models.NewValidationError("newPassword", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = s.Clock.Now()
	return s.Repo.Update(ctx, u)
}

func (s *DefaultUserService) issue(u models.User) (*models.AuthResponse, error) {
	token, err := utils.GenerateToken(u.ID, string(u.Role), s.TokenTTL, s.Clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: u}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", models.NewValidationError("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", models.NewValidationError("email", "email is invalid")
	}
	return email, nil
}
