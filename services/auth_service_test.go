package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestValidateOperator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	service := NewAuthService("operator@example.com", string(hash))
	ctx := context.Background()

	if err := service.ValidateOperator(ctx, LoginInput{Email: "operator@example.com", Password: "correct horse"}); err != nil {
		t.Errorf("valid credentials rejected: %v", err)
	}

	cases := []LoginInput{
		{Email: "operator@example.com", Password: "wrong"},
		{Email: "someone@example.com", Password: "correct horse"},
		{Email: "", Password: ""},
	}
	for _, input := range cases {
		if err := service.ValidateOperator(ctx, input); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("ValidateOperator(%q): got %v, want ErrInvalidCredentials", input.Email, err)
		}
	}
}
