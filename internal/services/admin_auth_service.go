package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/asgtransit/website-api/internal/models"
	"github.com/asgtransit/website-api/pkg/jwt"
)

// RoleAdmin is the only role the back office issues
const RoleAdmin = "admin"

var (
	// ErrInvalidCredentials is returned for a wrong email or password
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefreshToken is returned when a refresh token cannot be used
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrNotAdmin is returned for a valid token that lacks the admin role
	ErrNotAdmin = errors.New("token does not grant the admin role")
)

// AdminAuthService authenticates the single configured back-office account
type AdminAuthService struct {
	email        string
	passwordHash []byte
	jwtService   *jwt.Service
}

// NewAdminAuthService creates a new admin auth service
func NewAdminAuthService(email, passwordHash string, jwtService *jwt.Service) *AdminAuthService {
	return &AdminAuthService{
		email:        strings.TrimSpace(email),
		passwordHash: []byte(passwordHash),
		jwtService:   jwtService,
	}
}

// Login checks the credentials and issues a token pair
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*models.AdminLoginResponse, error) {
	if !strings.EqualFold(strings.TrimSpace(email), s.email) {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(s.email)
	if err != nil {
		return nil, err
	}
	return s.issue(refreshToken, s.jwtService.RefreshTokenExpiry())
}

// RefreshToken issues a new access token from a valid refresh token
func (s *AdminAuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AdminLoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	if !strings.EqualFold(claims.Email, s.email) {
		return nil, ErrInvalidRefreshToken
	}

	// the refresh token is reused, so report what is left of its lifetime
	expiresAt, err := s.jwtService.GetTokenExpiry(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	return s.issue(refreshToken, time.Until(expiresAt))
}

// Session validates an access token and returns its claims. Tokens without
// the admin role are rejected.
func (s *AdminAuthService) Session(token string) (*jwt.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	if !claims.HasRole(RoleAdmin) {
		return nil, ErrNotAdmin
	}
	return claims, nil
}

func (s *AdminAuthService) issue(refreshToken string, refreshLifetime time.Duration) (*models.AdminLoginResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(s.email, []string{RoleAdmin})
	if err != nil {
		return nil, err
	}

	return &models.AdminLoginResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        int64(s.jwtService.AccessTokenExpiry().Seconds()),
		RefreshExpiresIn: int64(refreshLifetime.Seconds()),
		Email:            s.email,
	}, nil
}
