package utils

import (
	"errors"
	"time"

	"m3allem/config"

	"github.com/golang-jwt/jwt"
)

const devSecret = "m3allem-dev-secret"

func secretKey() []byte {
	if s := config.AppConfig.JWTSecret; s != "" {
		return []byte(s)
	}
	return []byte(devSecret)
}

// Claims is the identity carried by an access token.
type Claims struct {
	Subject string
	Role    string
}

// GenerateToken creates a signed JWT token for the given subject and role.
// The token expires after the specified duration.
func GenerateToken(subject, role string, duration time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ParseClaims validates the token and extracts subject and role.
func ParseClaims(tokenString string) (Claims, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return Claims{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, errors.New("token does not contain a valid 'sub' claim")
	}
	role, _ := claims["role"].(string)
	return Claims{Subject: sub, Role: role}, nil
}
