package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/example/kaskroutek/internal/models"
	"github.com/example/kaskroutek/internal/store"
	"github.com/example/kaskroutek/internal/utils"
)

// AuthService signs admins in.
type AuthService struct {
	store     store.Admins
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthService constructs AuthService.
func NewAuthService(s store.Admins, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{store: s, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Login verifies the credentials and returns the admin with a signed token.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.AdminUser, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", invalid("username", "username and password are required")
	}

	admin, err := s.store.GetAdminByUsername(ctx, username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, "", storeErr("load admin", err)
	}

	hash := ""
	if admin != nil {
		hash = admin.PasswordHash
	}
	if !utils.CheckPassword(hash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.jwtSecret, admin.ID, admin.Username, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// EnsureAdmin creates the bootstrap admin when no user with that name exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if username == "" || password == "" {
		return nil
	}

	_, err := s.store.GetAdminByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.store.CreateAdmin(ctx, &models.AdminUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}); err != nil {
		return err
	}
	log.Printf("[Auth] Created admin user %q", username)
	return nil
}
