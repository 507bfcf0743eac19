package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/carenation/backend/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// DistributorAuthState distributor auth snapshot.
// token_invalid_before is a Unix-second timestamp, 0 means unset.
// Server-side Redis cache only, keeps token checks off the database.
type DistributorAuthState struct {
	DistributorID      uint   `json:"distributor_id"`
	Status             string `json:"status"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	UpdatedAt          int64  `json:"updated_at"`
}

// AdminAuthState admin auth snapshot
type AdminAuthState struct {
	AdminID            uint   `json:"admin_id"`
	Username           string `json:"username"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	IsSuper            bool   `json:"is_super"`
	UpdatedAt          int64  `json:"updated_at"`
}

func distributorAuthStateKey(distributorID uint) string {
	return fmt.Sprintf("auth:distributor:%d", distributorID)
}

func adminAuthStateKey(adminID uint) string {
	return fmt.Sprintf("auth:admin:%d", adminID)
}

// BuildDistributorAuthState builds the auth snapshot from a distributor row
func BuildDistributorAuthState(distributor *models.Distributor) *DistributorAuthState {
	if distributor == nil {
		return nil
	}
	state := &DistributorAuthState{
		DistributorID: distributor.ID,
		Status:        distributor.Status,
		TokenVersion:  distributor.TokenVersion,
		UpdatedAt:     time.Now().Unix(),
	}
	if distributor.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = distributor.TokenInvalidBefore.Unix()
	}
	return state
}

// BuildAdminAuthState builds the auth snapshot from an admin row
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	state := &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		UpdatedAt:    time.Now().Unix(),
	}
	if admin.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = admin.TokenInvalidBefore.Unix()
	}
	return state
}

// GetDistributorAuthState reads the distributor auth snapshot
func GetDistributorAuthState(ctx context.Context, distributorID uint) (*DistributorAuthState, bool, error) {
	if distributorID == 0 {
		return nil, false, nil
	}
	var state DistributorAuthState
	hit, err := GetJSON(ctx, distributorAuthStateKey(distributorID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetDistributorAuthState writes the distributor auth snapshot
func SetDistributorAuthState(ctx context.Context, state *DistributorAuthState) error {
	if state == nil || state.DistributorID == 0 {
		return nil
	}
	return SetJSON(ctx, distributorAuthStateKey(state.DistributorID), state, authStateCacheTTL)
}

// DelDistributorAuthState removes the distributor auth snapshot
func DelDistributorAuthState(ctx context.Context, distributorID uint) error {
	if distributorID == 0 {
		return nil
	}
	return Del(ctx, distributorAuthStateKey(distributorID))
}

// GetAdminAuthState reads the admin auth snapshot
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	if adminID == 0 {
		return nil, false, nil
	}
	var state AdminAuthState
	hit, err := GetJSON(ctx, adminAuthStateKey(adminID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAdminAuthState writes the admin auth snapshot
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, adminAuthStateKey(state.AdminID), state, authStateCacheTTL)
}

// DelAdminAuthState removes the admin auth snapshot
func DelAdminAuthState(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return nil
	}
	return Del(ctx, adminAuthStateKey(adminID))
}
