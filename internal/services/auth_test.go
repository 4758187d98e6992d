package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/logger"
)

func newTestAuth(t *testing.T, env *testEnv) AuthService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewAuthService(env.db, log, env.userRepo, "test-secret", time.Hour)
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	auth := newTestAuth(t, env)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, "User@Example.com", "hunter22", "User")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if token == "" {
		t.Fatal("register returned empty token")
	}

	parsed, err := auth.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if parsed != user.ID {
		t.Fatalf("token subject mismatch: want=%s got=%s", user.ID, parsed)
	}

	loggedIn, _, err := auth.Login(ctx, "user@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("login resolved wrong user: want=%s got=%s", user.ID, loggedIn.ID)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	auth := newTestAuth(t, env)
	ctx := context.Background()

	if _, _, err := auth.Register(ctx, "dup@example.com", "pw1", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, _, err := auth.Register(ctx, "dup@example.com", "pw2", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	auth := newTestAuth(t, env)
	ctx := context.Background()

	if _, _, err := auth.Register(ctx, "user@example.com", "correct", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := auth.Login(ctx, "user@example.com", "wrong"); !errors.Is(err, apperr.ErrNotOwner) {
		t.Fatalf("wrong password: want ErrNotOwner, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "ghost@example.com", "whatever"); !errors.Is(err, apperr.ErrNotOwner) {
		t.Fatalf("unknown email: want ErrNotOwner, got %v", err)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	auth := newTestAuth(t, env)

	if _, err := auth.ParseToken("not-a-token"); err == nil {
		t.Fatal("want error for malformed token")
	}

	other := NewAuthService(env.db, mustLogger(t), env.userRepo, "other-secret", time.Hour)
	_, token, err := other.Register(context.Background(), "foreign@example.com", "pw", "")
	if err != nil {
		t.Fatalf("register on other issuer: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Fatal("want error for token signed with a different secret")
	}
}

func mustLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}
