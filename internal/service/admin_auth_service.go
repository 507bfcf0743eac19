package service

import (
	"context"
	"strings"
	"time"

	"github.com/carenation/backend/internal/cache"
	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthService back-office authentication
type AdminAuthService struct {
	cfg            *config.Config
	adminRepo      repository.AdminRepository
	captchaService *CaptchaService
}

// NewAdminAuthService creates the admin auth service
func NewAdminAuthService(cfg *config.Config, adminRepo repository.AdminRepository, captchaService *CaptchaService) *AdminAuthService {
	return &AdminAuthService{
		cfg:            cfg,
		adminRepo:      adminRepo,
		captchaService: captchaService,
	}
}

// AdminJWTClaims admin token claims
type AdminJWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	IsSuper      bool   `json:"is_super"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// AdminLoginInput login form input
type AdminLoginInput struct {
	Username      string
	Password      string
	CaptchaID     string
	CaptchaAnswer string
}

// GenerateAdminJWT mints an admin token
func (s *AdminAuthService) GenerateAdminJWT(admin *models.Admin) (string, time.Time, error) {
	hours := s.cfg.JWT.ExpireHours
	if hours <= 0 {
		hours = 12
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims := AdminJWTClaims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		IsSuper:      admin.IsSuper,
		TokenVersion: admin.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseAdminJWT parses and validates an admin token
func (s *AdminAuthService) ParseAdminJWT(tokenString string) (*AdminJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &AdminJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if parsed, ok := token.Claims.(*AdminJWTClaims); ok && token.Valid {
		return parsed, nil
	}
	return nil, ErrTokenInvalid
}

// Login verifies credentials (and the captcha when enabled) and mints a token
func (s *AdminAuthService) Login(input AdminLoginInput) (*models.Admin, string, time.Time, error) {
	if s.captchaService != nil && s.captchaService.Enabled() {
		if !s.captchaService.Verify(input.CaptchaID, input.CaptchaAnswer) {
			return nil, "", time.Time{}, ErrCaptchaInvalid
		}
	}

	username := strings.TrimSpace(input.Username)
	admin, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)) != nil {
		logger.Warnw("admin_login_failed", "username", username)
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateAdminJWT(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	admin.LastLoginAt = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))
	logger.Infow("admin_login", "admin_id", admin.ID, "username", admin.Username)
	return admin, token, expiresAt, nil
}

// CreateAdmin registers a back-office account
func (s *AdminAuthService) CreateAdmin(username, password string, isSuper bool) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidCredentials
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, password); err != nil {
		return nil, err
	}
	exist, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrAdminUsernameExists
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsSuper:      isSuper,
		CreatedAt:    time.Now(),
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// ChangePassword verifies the current password and rotates the hash plus
// the token version
func (s *AdminAuthService) ChangePassword(adminID uint, oldPassword, newPassword string) error {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidPassword
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	admin.PasswordHash = string(hashedPassword)
	admin.TokenVersion++
	admin.TokenInvalidBefore = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))
	return nil
}
