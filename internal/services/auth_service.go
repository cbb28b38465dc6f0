// internal/services/auth_service.go
package services

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/javajoker/blob-shop/internal/config"
	"github.com/javajoker/blob-shop/internal/i18n"
	"github.com/javajoker/blob-shop/internal/utils"
)

// AuthService authenticates the single shop administrator. There are no
// customer accounts; the admin password is configured as a bcrypt hash.
type AuthService struct {
	cfg    *config.AdminConfig
	signer *utils.JWTSigner
}

type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewAuthService(cfg *config.AdminConfig, signer *utils.JWTSigner) *AuthService {
	return &AuthService{
		cfg:    cfg,
		signer: signer,
	}
}

func (s *AuthService) Login(req *AdminLoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	if s.cfg.PasswordHash == "" {
		return nil, utils.NewUnauthorized(i18n.KeyAuthLoginDisabled, "admin login is not configured", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.NewUnauthorized(i18n.KeyAuthInvalidCredentials, "invalid credentials", err)
	}

	token, expiresAt, err := s.signer.GenerateAdminToken()
	if err != nil {
		return nil, utils.NewInternal("failed to generate token", fmt.Errorf("sign admin token: %w", err))
	}

	return &AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	}, nil
}

// HashPassword produces a value suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
