package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/carenation/backend/internal/cache"
	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DistributorAuthService distributor signup, login and token lifecycle.
// Signup is also tree placement: a new member is created and linked under
// the sponsor's chosen slot in one transaction.
type DistributorAuthService struct {
	cfg             *config.Config
	distributorRepo repository.DistributorRepository
	treeService     *TreeService
}

// NewDistributorAuthService creates the distributor auth service
func NewDistributorAuthService(cfg *config.Config, distributorRepo repository.DistributorRepository, treeService *TreeService) *DistributorAuthService {
	return &DistributorAuthService{
		cfg:             cfg,
		distributorRepo: distributorRepo,
		treeService:     treeService,
	}
}

// DistributorJWTClaims distributor token claims
type DistributorJWTClaims struct {
	DistributorID uint   `json:"distributor_id"`
	Email         string `json:"email"`
	TokenVersion  uint64 `json:"token_version"`
	Impersonated  bool   `json:"impersonated,omitempty"`
	jwt.RegisteredClaims
}

// SignupInput new member registration input
type SignupInput struct {
	Email     string
	Password  string
	FullName  string
	Phone     string
	SponsorID uint
	Position  string
}

// GenerateDistributorJWT mints a distributor token. A zero ttl falls back
// to the configured expiry.
func (s *DistributorAuthService) GenerateDistributorJWT(distributor *models.Distributor, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		hours := s.cfg.UserJWT.ExpireHours
		if hours <= 0 {
			hours = 24
		}
		ttl = time.Duration(hours) * time.Hour
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := DistributorJWTClaims{
		DistributorID: distributor.ID,
		Email:         distributor.Email,
		TokenVersion:  distributor.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// GenerateImpersonatedJWT mints a distributor token flagged as issued
// through an admin handoff
func (s *DistributorAuthService) GenerateImpersonatedJWT(distributor *models.Distributor, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, ErrTokenInvalid
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := DistributorJWTClaims{
		DistributorID: distributor.ID,
		Email:         distributor.Email,
		TokenVersion:  distributor.TokenVersion,
		Impersonated:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseDistributorJWT parses and validates a distributor token
func (s *DistributorAuthService) ParseDistributorJWT(tokenString string) (*DistributorJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &DistributorJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if parsed, ok := token.Claims.(*DistributorJWTClaims); ok && token.Valid {
		return parsed, nil
	}
	return nil, ErrTokenInvalid
}

// Signup registers a new distributor under the sponsor's chosen slot.
// Creating the row and linking it into the tree commit together.
func (s *DistributorAuthService) Signup(input SignupInput) (*models.Distributor, string, time.Time, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}

	exist, err := s.distributorRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	distributor := &models.Distributor{
		Email:        normalized,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: string(hashedPassword),
		FullName:     strings.TrimSpace(input.FullName),
		Status:       constants.DistributorStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.distributorRepo.Transaction(func(tx *gorm.DB) error {
		sponsor, err := s.distributorRepo.WithTx(tx).GetByIDForUpdate(input.SponsorID)
		if err != nil {
			return err
		}
		if sponsor == nil {
			return ErrSponsorNotFound
		}
		if err := s.distributorRepo.WithTx(tx).Create(distributor); err != nil {
			return err
		}
		if err := s.treeService.AttachInTx(tx, sponsor, input.Position, distributor.ID); err != nil {
			switch {
			case errors.Is(err, ErrTreeSlotOccupied):
				return ErrPlacementOccupied
			case errors.Is(err, ErrTreeSlotInvalid):
				return ErrPlacementInvalid
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.GenerateDistributorJWT(distributor, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetDistributorAuthState(context.Background(), cache.BuildDistributorAuthState(distributor))
	logger.Infow("distributor_signup",
		"distributor_id", distributor.ID,
		"sponsor_id", input.SponsorID,
		"position", input.Position,
	)
	return distributor, token, expiresAt, nil
}

// Login verifies credentials and mints a session token
func (s *DistributorAuthService) Login(email, password string) (*models.Distributor, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	distributor, err := s.distributorRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if distributor == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(distributor.PasswordHash), []byte(password)) != nil {
		logger.Warnw("distributor_login_failed", "email", normalized)
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if distributor.Status != constants.DistributorStatusActive {
		return nil, "", time.Time{}, ErrAccountDisabled
	}

	token, expiresAt, err := s.GenerateDistributorJWT(distributor, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	distributor.LastLoginAt = &now
	distributor.UpdatedAt = now
	if err := s.distributorRepo.Update(distributor); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetDistributorAuthState(context.Background(), cache.BuildDistributorAuthState(distributor))
	return distributor, token, expiresAt, nil
}

// ChangePassword verifies the current password, sets the new one and bumps
// the token version so every outstanding session token dies
func (s *DistributorAuthService) ChangePassword(distributorID uint, oldPassword, newPassword string) error {
	distributor, err := s.distributorRepo.GetByID(distributorID)
	if err != nil {
		return err
	}
	if distributor == nil {
		return ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(distributor.PasswordHash), []byte(oldPassword)) != nil {
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
	distributor.PasswordHash = string(hashedPassword)
	distributor.TokenVersion++
	distributor.TokenInvalidBefore = &now
	distributor.UpdatedAt = now
	if err := s.distributorRepo.Update(distributor); err != nil {
		return err
	}
	_ = cache.SetDistributorAuthState(context.Background(), cache.BuildDistributorAuthState(distributor))
	logger.Infow("distributor_password_changed", "distributor_id", distributorID)
	return nil
}

// Logout invalidates the caller's outstanding tokens
func (s *DistributorAuthService) Logout(distributorID uint) error {
	distributor, err := s.distributorRepo.GetByID(distributorID)
	if err != nil {
		return err
	}
	if distributor == nil {
		return ErrNotFound
	}
	now := time.Now()
	distributor.TokenVersion++
	distributor.TokenInvalidBefore = &now
	distributor.UpdatedAt = now
	if err := s.distributorRepo.Update(distributor); err != nil {
		return err
	}
	return cache.DelDistributorAuthState(context.Background(), distributorID)
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	parsed, err := mail.ParseAddress(trimmed)
	if err != nil || parsed.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}
