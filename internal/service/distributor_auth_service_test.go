package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupDistributorAuthTest(t *testing.T) (*DistributorAuthService, repository.DistributorRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:distributor_auth_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Distributor{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "distributor-auth-test-secret"
	cfg.UserJWT.ExpireHours = 2
	cfg.Security.PasswordPolicy.MinLength = 8

	distributorRepo := repository.NewDistributorRepository(db)
	treeService := NewTreeService(distributorRepo)
	return NewDistributorAuthService(cfg, distributorRepo, treeService), distributorRepo, db
}

func seedAuthRoot(t *testing.T, db *gorm.DB) *models.Distributor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("RootPass99"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	root := &models.Distributor{
		Email:        "root@example.com",
		PasswordHash: string(hash),
		Status:       constants.DistributorStatusActive,
	}
	if err := db.Create(root).Error; err != nil {
		t.Fatalf("create root failed: %v", err)
	}
	return root
}

func TestSignupPlacesMemberUnderSponsorSlot(t *testing.T) {
	svc, repo, db := setupDistributorAuthTest(t)
	root := seedAuthRoot(t, db)

	distributor, token, expiresAt, err := svc.Signup(SignupInput{
		Email:     "New.Member@Example.com",
		Password:  "Str0ngEnough",
		FullName:  "New Member",
		SponsorID: root.ID,
		Position:  constants.TreeSlotLeft,
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if distributor.Email != "new.member@example.com" {
		t.Fatalf("email = %q, want lowercased", distributor.Email)
	}
	if token == "" || expiresAt.Before(time.Now()) {
		t.Fatalf("token not issued")
	}

	claims, err := svc.ParseDistributorJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.DistributorID != distributor.ID || claims.Impersonated {
		t.Fatalf("claims = %+v", claims)
	}

	updatedRoot, err := repo.GetByID(root.ID)
	if err != nil {
		t.Fatalf("reload root failed: %v", err)
	}
	if updatedRoot.LeftChildID == nil || *updatedRoot.LeftChildID != distributor.ID {
		t.Fatalf("left child = %v, want %d", updatedRoot.LeftChildID, distributor.ID)
	}
	if distributorRow, _ := repo.GetByID(distributor.ID); distributorRow.ParentID == nil || *distributorRow.ParentID != root.ID {
		t.Fatalf("parent not linked")
	}
}

func TestSignupRejectsOccupiedSlot(t *testing.T) {
	svc, _, db := setupDistributorAuthTest(t)
	root := seedAuthRoot(t, db)

	if _, _, _, err := svc.Signup(SignupInput{
		Email: "a@example.com", Password: "Str0ngEnough", SponsorID: root.ID, Position: constants.TreeSlotLeft,
	}); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	_, _, _, err := svc.Signup(SignupInput{
		Email: "b@example.com", Password: "Str0ngEnough", SponsorID: root.ID, Position: constants.TreeSlotLeft,
	})
	if !errors.Is(err, ErrPlacementOccupied) {
		t.Fatalf("err = %v, want ErrPlacementOccupied", err)
	}

	// the failed signup must not leave an orphan row behind
	var count int64
	db.Model(&models.Distributor{}).Where("email = ?", "b@example.com").Count(&count)
	if count != 0 {
		t.Fatalf("orphan row count = %d, want 0", count)
	}
}

func TestSignupRejectsDuplicateEmailAndWeakPassword(t *testing.T) {
	svc, _, db := setupDistributorAuthTest(t)
	root := seedAuthRoot(t, db)

	if _, _, _, err := svc.Signup(SignupInput{
		Email: "dup@example.com", Password: "Str0ngEnough", SponsorID: root.ID, Position: constants.TreeSlotLeft,
	}); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if _, _, _, err := svc.Signup(SignupInput{
		Email: "DUP@example.com", Password: "Str0ngEnough", SponsorID: root.ID, Position: constants.TreeSlotRight,
	}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
	if _, _, _, err := svc.Signup(SignupInput{
		Email: "short@example.com", Password: "short", SponsorID: root.ID, Position: constants.TreeSlotRight,
	}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
	if _, _, _, err := svc.Signup(SignupInput{
		Email: "not-an-email", Password: "Str0ngEnough", SponsorID: root.ID, Position: constants.TreeSlotRight,
	}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("err = %v, want ErrInvalidEmail", err)
	}
}

func TestSignupUnknownSponsor(t *testing.T) {
	svc, _, _ := setupDistributorAuthTest(t)
	_, _, _, err := svc.Signup(SignupInput{
		Email: "x@example.com", Password: "Str0ngEnough", SponsorID: 999, Position: constants.TreeSlotLeft,
	})
	if !errors.Is(err, ErrSponsorNotFound) {
		t.Fatalf("err = %v, want ErrSponsorNotFound", err)
	}
}

func TestLoginChecksCredentialsAndStatus(t *testing.T) {
	svc, _, db := setupDistributorAuthTest(t)
	seedAuthRoot(t, db)

	if _, _, _, err := svc.Login("root@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, _, err := svc.Login("missing@example.com", "RootPass99"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	distributor, token, _, err := svc.Login("root@example.com", "RootPass99")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || distributor.LastLoginAt == nil {
		t.Fatalf("login bookkeeping missing")
	}

	if err := db.Model(&models.Distributor{}).Where("email = ?", "root@example.com").
		Update("status", constants.DistributorStatusDisabled).Error; err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if _, _, _, err := svc.Login("root@example.com", "RootPass99"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("err = %v, want ErrAccountDisabled", err)
	}
}

func TestChangePasswordInvalidatesOldTokens(t *testing.T) {
	svc, repo, db := setupDistributorAuthTest(t)
	root := seedAuthRoot(t, db)

	if err := svc.ChangePassword(root.ID, "wrong", "AnotherPass1"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("err = %v, want ErrInvalidPassword", err)
	}
	if err := svc.ChangePassword(root.ID, "RootPass99", "AnotherPass1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	updated, err := repo.GetByID(root.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if updated.TokenVersion != root.TokenVersion+1 {
		t.Fatalf("token version = %d, want %d", updated.TokenVersion, root.TokenVersion+1)
	}
	if updated.TokenInvalidBefore == nil {
		t.Fatalf("token invalid-before watermark not set")
	}
	if _, _, _, err := svc.Login("root@example.com", "AnotherPass1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestImpersonatedTokenRequiresExplicitTTL(t *testing.T) {
	svc, _, db := setupDistributorAuthTest(t)
	root := seedAuthRoot(t, db)

	if _, _, err := svc.GenerateImpersonatedJWT(root, 0); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
	token, _, err := svc.GenerateImpersonatedJWT(root, 30*time.Minute)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	claims, err := svc.ParseDistributorJWT(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !claims.Impersonated {
		t.Fatalf("impersonated claim missing")
	}
}
