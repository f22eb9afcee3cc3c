package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"estate-api/internal/core/auth"
	"estate-api/internal/domain"
	"estate-api/internal/repo"
)

func newUserService() (*UserService, *auth.JWTer) {
	j := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "estate-api", TTL: time.Hour}
	return NewUserService(repo.NewMemoryUserRepo(), j, nil), j
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	s, j := newUserService()

	u, err := s.SignUp(ctx, SignUpInput{Username: "ann", Email: " Ann@Example.com ", Password: "pw123456"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.PasswordHash == "pw123456" || u.Avatar != domain.DefaultAvatar || u.Email != "ann@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}

	got, token, err := s.SignIn(ctx, "ann@example.com", "pw123456")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("signed in as %q, want %q", got.ID, u.ID)
	}
	c, err := j.Parse(token)
	if err != nil || c.UID != u.ID || c.Role != domain.RoleUser {
		t.Fatalf("token claims %+v, err %v", c, err)
	}
}

func TestSignInFailures(t *testing.T) {
	ctx := context.Background()
	s, _ := newUserService()
	if _, err := s.SignUp(ctx, SignUpInput{Username: "ann", Email: "ann@example.com", Password: "pw"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.SignIn(ctx, "bob@example.com", "pw"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown email: got %v", err)
	}
	if _, _, err := s.SignIn(ctx, "ann@example.com", "nope"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("wrong password: got %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newUserService()
	cases := []SignUpInput{
		{Email: "a@b.c", Password: "x"},
		{Username: "a", Email: "not-an-email", Password: "x"},
		{Username: "a", Email: "a@b.c"},
	}
	for _, in := range cases {
		if _, err := s.SignUp(ctx, in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%+v: got %v", in, err)
		}
	}
	_, _ = s.SignUp(ctx, SignUpInput{Username: "a", Email: "a@b.c", Password: "x"})
	if _, err := s.SignUp(ctx, SignUpInput{Username: "b", Email: "a@b.c", Password: "x"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("duplicate email: got %v", err)
	}
}
