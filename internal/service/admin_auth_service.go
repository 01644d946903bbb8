package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/evetabi/hotornot/internal/config"
	"github.com/evetabi/hotornot/internal/domain"
	"github.com/evetabi/hotornot/internal/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Request / Response types
// ──────────────────────────────────────────────────────────────────────────────

// RegisterAdminRequest contains the fields required to create a new
// back-office staff account.
type RegisterAdminRequest struct {
	Username string          `json:"username" binding:"required,min=3,max=50"`
	Email    string          `json:"email"    binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     domain.AdminRole `json:"role"     binding:"required"`
}

// AdminLoginResponse is returned on successful login.
type AdminLoginResponse struct {
	Account      *domain.AdminAccount `json:"account"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// AdminTokenPair holds both tokens returned by generateTokenPair.
type AdminTokenPair struct {
	AccessToken  string
	RefreshToken string
}

// ──────────────────────────────────────────────────────────────────────────────
// JWT claims
// ──────────────────────────────────────────────────────────────────────────────

// AdminClaims extends jwt.RegisteredClaims with the fields the back-office
// role middleware checks.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	TokenType string `json:"type"` // "access" or "refresh"
}

// ──────────────────────────────────────────────────────────────────────────────
// AdminAuthService
// ──────────────────────────────────────────────────────────────────────────────

// AdminAuthService handles back-office staff registration, login, and JWT
// token operations. Bettors never go through this service — they carry no
// account here at all, only a Principal presented on every call.
type AdminAuthService struct {
	adminRepo *repository.AdminRepository
	cfg       *config.Config
}

// NewAdminAuthService creates an AdminAuthService.
func NewAdminAuthService(adminRepo *repository.AdminRepository, cfg *config.Config) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo, cfg: cfg}
}

// Register creates a new back-office account.
func (s *AdminAuthService) Register(ctx context.Context, req RegisterAdminRequest) (*AdminLoginResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("admin_auth_service.Register: hash: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.AdminAccount{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.adminRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	pair, err := s.generateTokenPair(account.ID, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("admin_auth_service.Register: tokens: %w", err)
	}
	return &AdminLoginResponse{Account: account, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Login validates credentials and returns a fresh token pair.
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*AdminLoginResponse, error) {
	account, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, domain.ErrAccountInactive
	}

	pair, err := s.generateTokenPair(account.ID, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("admin_auth_service.Login: tokens: %w", err)
	}
	return &AdminLoginResponse{Account: account, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// RefreshToken validates a refresh token and issues a new token pair.
func (s *AdminAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return "", "", domain.ErrTokenInvalid
	}
	if claims.TokenType != "refresh" {
		return "", "", domain.ErrTokenInvalid
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", "", domain.ErrTokenInvalid
	}
	account, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return "", "", domain.ErrAccountNotFound
	}
	if !account.IsActive {
		return "", "", domain.ErrAccountInactive
	}

	pair, err := s.generateTokenPair(account.ID, string(account.Role))
	if err != nil {
		return "", "", fmt.Errorf("admin_auth_service.RefreshToken: %w", err)
	}
	return pair.AccessToken, pair.RefreshToken, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Token helpers
// ──────────────────────────────────────────────────────────────────────────────

func (s *AdminAuthService) generateTokenPair(id uuid.UUID, role string) (AdminTokenPair, error) {
	now := time.Now().UTC()
	secret := []byte(s.cfg.JWT.AccessSecret)

	accessClaims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.AccessTTL)),
		},
		Role:      role,
		TokenType: "access",
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(secret)
	if err != nil {
		return AdminTokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshClaims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.RefreshTTL)),
		},
		TokenType: "refresh",
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(secret)
	if err != nil {
		return AdminTokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return AdminTokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AdminAuthService) parseToken(tokenString string) (*AdminClaims, error) {
	secret := []byte(s.cfg.JWT.AccessSecret)
	tok, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, domain.ErrTokenInvalid
	}
	claims, ok := tok.Claims.(*AdminClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// ParseAccessToken is exported for use by the JWT middleware.
func (s *AdminAuthService) ParseAccessToken(tokenString string) (*AdminClaims, error) {
	return s.parseToken(tokenString)
}
