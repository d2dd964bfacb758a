package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/quizlink-backend/internal/config"
	"github.com/stemsi/quizlink-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// TokenTypeAdmin is the only token type issued; students use quiz tokens.
const TokenTypeAdmin = "admin"

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// AuthService guards the admin surface with a shared password and issues
// short-lived admin JWTs after login.
type AuthService struct {
	cfg *config.Config
	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg, now: time.Now}
}

// HashPassword produces the value for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// Configured reports whether an admin password or hash is set.
func (s *AuthService) Configured() bool {
	return s.cfg.AdminPasswordHash != "" || s.cfg.AdminPassword != ""
}

// TokensEnabled reports whether admin JWTs may be issued and accepted.
func (s *AuthService) TokensEnabled() bool {
	return len(s.cfg.JWTSecret) >= config.MinJWTSecretLength
}

// CheckAdminPassword compares against ADMIN_PASSWORD_HASH when set, else
// ADMIN_PASSWORD in constant time.
func (s *AuthService) CheckAdminPassword(password string) error {
	switch {
	case s.cfg.AdminPasswordHash != "":
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
		return nil
	case s.cfg.AdminPassword != "":
		if subtle.ConstantTimeCompare([]byte(s.cfg.AdminPassword), []byte(password)) != 1 {
			return ErrInvalidCredentials
		}
		return nil
	default:
		return ErrAdminNotConfigured
	}
}

// Login exchanges the admin password for a signed token.
func (s *AuthService) Login(password string) (*model.AdminLoginResponse, error) {
	if err := s.CheckAdminPassword(password); err != nil {
		return nil, err
	}
	return s.GenerateAdminToken()
}

// GenerateAdminToken creates a JWT for the admin.
func (s *AuthService) GenerateAdminToken() (*model.AdminLoginResponse, error) {
	if !s.TokensEnabled() {
		return nil, ErrTokenAuthDisabled
	}
	now := s.now()
	expires := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   TokenTypeAdmin,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		TokenType: TokenTypeAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.AdminLoginResponse{Token: signed, ExpiresAt: expires.UTC()}, nil
}

// ValidateToken parses and validates a JWT, returning the claims. Tokens are
// refused outright while no admin password is configured.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	if !s.Configured() {
		return nil, ErrAdminNotConfigured
	}
	if !s.TokensEnabled() {
		return nil, ErrTokenAuthDisabled
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.TokenType != TokenTypeAdmin {
		return nil, errors.New("not an admin token")
	}
	return claims, nil
}
