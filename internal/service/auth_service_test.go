package service

import (
	"errors"
	"testing"
	"time"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/util"
)

func newAuthService(t *testing.T) *AuthService {
	db := newTestDB(t)
	cfg := testConfig()
	cfg.JWT = config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	user := &model.User{Name: "Mia", Email: "mia@example.com", Password: "secret123", Language: "es"}
	if err := svc.Register(user); err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Password == "secret123" {
		t.Fatalf("password stored in plain text")
	}

	// 邮箱唯一
	dup := &model.User{Name: "Mia2", Email: "mia@example.com", Password: "other"}
	if err := svc.Register(dup); !errors.Is(err, util.ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}

	token, err := svc.Login("mia@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := util.ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != "mia@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.Login("mia@example.com", "wrong"); err == nil {
		t.Fatalf("expected login failure with wrong password")
	}
	if _, err := svc.Login("nobody@example.com", "secret123"); err == nil {
		t.Fatalf("expected login failure for unknown email")
	}
}
