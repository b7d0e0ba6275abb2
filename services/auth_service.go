package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService validates operator credentials for the mutating endpoints.
// User management lives in the surrounding backend; this service only knows
// the single operator account configured through the environment.
type AuthService interface {
	ValidateOperator(ctx context.Context, input LoginInput) error
}

type authService struct {
	operatorEmail        string
	operatorPasswordHash string
}

func NewAuthService(operatorEmail, operatorPasswordHash string) AuthService {
	return &authService{
		operatorEmail:        operatorEmail,
		operatorPasswordHash: operatorPasswordHash,
	}
}

func (s *authService) ValidateOperator(_ context.Context, input LoginInput) error {
	if subtle.ConstantTimeCompare([]byte(input.Email), []byte(s.operatorEmail)) != 1 {
		return ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword([]byte(s.operatorPasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to compare password hash: %w", err)
	}
	return nil
}
