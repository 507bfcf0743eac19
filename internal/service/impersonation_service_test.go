package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupImpersonationServiceTest(t *testing.T) (*ImpersonationService, *DistributorAuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:impersonation_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Distributor{}, &models.ImpersonationGrant{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "impersonation-test-secret"
	cfg.Impersonation.CodeTTLMinutes = 5
	cfg.Impersonation.TokenExpireMinutes = 30
	cfg.Impersonation.PortalBaseURL = "https://portal.carenation.test"

	distributorRepo := repository.NewDistributorRepository(db)
	authService := NewDistributorAuthService(cfg, distributorRepo, NewTreeService(distributorRepo))
	svc := NewImpersonationService(cfg, repository.NewImpersonationRepository(db), distributorRepo, authService)
	return svc, authService, db
}

func TestImpersonationServiceRoundTrip(t *testing.T) {
	svc, authService, db := setupImpersonationServiceTest(t)
	createTestDistributor(t, db, 501, decimal.Zero)

	started, err := svc.Start(StartImpersonationInput{
		DistributorID: 501,
		AdminID:       1,
		SessionID:     "admin-session-1",
		Reason:        "support ticket 4411",
		ReturnURL:     "https://admin.carenation.test/distributors/501",
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(started.Code) < 40 {
		t.Fatalf("code too short: %q", started.Code)
	}
	if started.RedirectURL == "" {
		t.Fatalf("missing redirect url")
	}

	redeemed, err := svc.Redeem(started.Code, "admin-session-1")
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if redeemed.Distributor.ID != 501 {
		t.Fatalf("wrong target: %d", redeemed.Distributor.ID)
	}
	if redeemed.ReturnURL != "https://admin.carenation.test/distributors/501" {
		t.Fatalf("return url lost: %q", redeemed.ReturnURL)
	}

	claims, err := authService.ParseDistributorJWT(redeemed.AccessToken)
	if err != nil {
		t.Fatalf("minted token does not parse: %v", err)
	}
	if claims.DistributorID != 501 || !claims.Impersonated {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if remaining := time.Until(redeemed.ExpiresAt); remaining > 31*time.Minute {
		t.Fatalf("token outlives the handoff cap: %s", remaining)
	}

	// the code is single use
	if _, err := svc.Redeem(started.Code, "admin-session-1"); !errors.Is(err, ErrImpersonationInvalidCode) {
		t.Fatalf("expected invalid code on reuse, got: %v", err)
	}
}

func TestImpersonationServiceSessionBinding(t *testing.T) {
	svc, _, db := setupImpersonationServiceTest(t)
	createTestDistributor(t, db, 502, decimal.Zero)

	started, err := svc.Start(StartImpersonationInput{
		DistributorID: 502,
		AdminID:       1,
		SessionID:     "admin-session-2",
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := svc.Redeem(started.Code, "someone-elses-session"); !errors.Is(err, ErrImpersonationSessionMismatch) {
		t.Fatalf("expected session mismatch, got: %v", err)
	}
	// a mismatch must not burn the code
	if _, err := svc.Redeem(started.Code, "admin-session-2"); err != nil {
		t.Fatalf("redeem after mismatch failed: %v", err)
	}
}

func TestImpersonationServiceExpiredCode(t *testing.T) {
	svc, _, db := setupImpersonationServiceTest(t)
	createTestDistributor(t, db, 503, decimal.Zero)

	started, err := svc.Start(StartImpersonationInput{
		DistributorID: 503,
		AdminID:       1,
		SessionID:     "admin-session-3",
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := db.Model(&models.ImpersonationGrant{}).
		Where("code = ?", started.Code).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire grant failed: %v", err)
	}
	if _, err := svc.Redeem(started.Code, "admin-session-3"); !errors.Is(err, ErrImpersonationInvalidCode) {
		t.Fatalf("expected invalid code, got: %v", err)
	}

	purged, err := svc.PurgeExpired()
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected one purged grant, got %d", purged)
	}
}

func TestImpersonationServiceTargetMissing(t *testing.T) {
	svc, _, _ := setupImpersonationServiceTest(t)

	_, err := svc.Start(StartImpersonationInput{
		DistributorID: 999,
		AdminID:       1,
		SessionID:     "admin-session-4",
	})
	if !errors.Is(err, ErrImpersonationTargetNotFound) {
		t.Fatalf("expected target not found, got: %v", err)
	}

	if _, err := svc.Redeem("unknown-code", "admin-session-4"); !errors.Is(err, ErrImpersonationInvalidCode) {
		t.Fatalf("expected invalid code, got: %v", err)
	}
}
