package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"
)

// ImpersonationService lets an admin open a distributor session without
// knowing the member's password. Start issues a short-lived single-use code
// bound to the admin's browser session; Redeem burns it exactly once and
// mints a distributor token whose lifetime never exceeds the handoff cap.
type ImpersonationService struct {
	cfg               *config.Config
	impersonationRepo repository.ImpersonationRepository
	distributorRepo   repository.DistributorRepository
	authService       *DistributorAuthService
}

// StartImpersonationInput admin-side handoff input
type StartImpersonationInput struct {
	DistributorID uint
	AdminID       uint
	SessionID     string
	Reason        string
	ReturnURL     string
}

// StartImpersonationResult one-shot handoff handle
type StartImpersonationResult struct {
	Code        string    `json:"code"`
	RedirectURL string    `json:"redirect_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RedeemImpersonationResult distributor session minted from a burned code
type RedeemImpersonationResult struct {
	AccessToken string              `json:"access_token"`
	ExpiresAt   time.Time           `json:"expires_at"`
	ReturnURL   string              `json:"return_url"`
	Distributor *models.Distributor `json:"distributor"`
}

// NewImpersonationService creates the impersonation service
func NewImpersonationService(
	cfg *config.Config,
	impersonationRepo repository.ImpersonationRepository,
	distributorRepo repository.DistributorRepository,
	authService *DistributorAuthService,
) *ImpersonationService {
	return &ImpersonationService{
		cfg:               cfg,
		impersonationRepo: impersonationRepo,
		distributorRepo:   distributorRepo,
		authService:       authService,
	}
}

// Start issues a single-use handoff code for the target distributor
func (s *ImpersonationService) Start(input StartImpersonationInput) (*StartImpersonationResult, error) {
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		return nil, ErrImpersonationSessionMismatch
	}
	target, err := s.distributorRepo.GetByID(input.DistributorID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrImpersonationTargetNotFound
	}

	code, err := generateImpersonationCode()
	if err != nil {
		return nil, err
	}

	ttl := s.cfg.Impersonation.CodeTTLMinutes
	if ttl <= 0 {
		ttl = 5
	}
	now := time.Now()
	grant := &models.ImpersonationGrant{
		Code:          code,
		DistributorID: target.ID,
		IssuedByID:    input.AdminID,
		SessionID:     sessionID,
		Reason:        strings.TrimSpace(input.Reason),
		ReturnURL:     strings.TrimSpace(input.ReturnURL),
		ExpiresAt:     now.Add(time.Duration(ttl) * time.Minute),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.impersonationRepo.Create(grant); err != nil {
		return nil, err
	}

	logger.Infow("impersonation_started",
		"admin_id", input.AdminID,
		"distributor_id", target.ID,
		"expires_at", grant.ExpiresAt,
	)
	return &StartImpersonationResult{
		Code:        code,
		RedirectURL: s.buildRedirectURL(code),
		ExpiresAt:   grant.ExpiresAt,
	}, nil
}

// Redeem burns a handoff code and mints the distributor session. The code
// must be presented from the same browser session it was issued to, and the
// conditional redeemed-flag update makes the burn exactly-once under
// concurrent redemption.
func (s *ImpersonationService) Redeem(code, sessionID string) (*RedeemImpersonationResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrImpersonationInvalidCode
	}
	grant, err := s.impersonationRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if grant == nil || grant.Redeemed || now.After(grant.ExpiresAt) {
		return nil, ErrImpersonationInvalidCode
	}
	if strings.TrimSpace(sessionID) == "" || grant.SessionID != sessionID {
		logger.Warnw("impersonation_session_mismatch",
			"grant_id", grant.ID,
			"distributor_id", grant.DistributorID,
		)
		return nil, ErrImpersonationSessionMismatch
	}

	target, err := s.distributorRepo.GetByID(grant.DistributorID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrImpersonationTargetNotFound
	}

	burned, err := s.impersonationRepo.MarkRedeemed(grant.ID, now)
	if err != nil {
		return nil, err
	}
	if !burned {
		return nil, ErrImpersonationInvalidCode
	}

	ttl := s.cfg.Impersonation.TokenExpireMinutes
	if ttl <= 0 {
		ttl = 30
	}
	token, expiresAt, err := s.authService.GenerateImpersonatedJWT(target, time.Duration(ttl)*time.Minute)
	if err != nil {
		return nil, err
	}

	logger.Infow("impersonation_redeemed",
		"grant_id", grant.ID,
		"admin_id", grant.IssuedByID,
		"distributor_id", grant.DistributorID,
	)
	return &RedeemImpersonationResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		ReturnURL:   grant.ReturnURL,
		Distributor: target,
	}, nil
}

// PurgeExpired drops grants past their expiry. Called from the worker.
func (s *ImpersonationService) PurgeExpired() (int64, error) {
	return s.impersonationRepo.DeleteExpired(time.Now())
}

func (s *ImpersonationService) buildRedirectURL(code string) string {
	base := strings.TrimRight(strings.TrimSpace(s.cfg.Impersonation.PortalBaseURL), "/")
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/impersonate?code=%s", base, url.QueryEscape(code))
}

func generateImpersonationCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
