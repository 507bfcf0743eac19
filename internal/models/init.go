package models

import (
	"strings"

	"github.com/carenation/backend/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin creates the default back-office account on first boot
func InitDefaultAdmin(username, password string) error {
	var count int64
	DB.Model(&Admin{}).Count(&count)

	// if admins already exist, keep the default admin super
	if count > 0 {
		if err := DB.Model(&Admin{}).Where("username = ?", "admin").Update("is_super", true).Error; err != nil {
			logger.Warnw("ensure_default_admin_super_failed", "error", err)
		}
		return nil
	}

	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Admin{
		Username:     username,
		PasswordHash: string(hash),
		IsSuper:      strings.EqualFold(strings.TrimSpace(username), "admin"),
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "username", username, "password", password)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}

	return nil
}

// InitRootDistributor creates the tree root on first boot. Every later
// signup hangs off this node, so it must exist before the API serves.
func InitRootDistributor(email, password string) error {
	var count int64
	DB.Model(&Distributor{}).Where("parent_id IS NULL").Count(&count)
	if count > 0 {
		return nil
	}

	if email == "" {
		email = "root@carenation.local"
	}
	if password == "" {
		password = "root1234"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	root := Distributor{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Network Root",
		Status:       "active",
	}
	if err := DB.Create(&root).Error; err != nil {
		return err
	}

	logger.Warnw("root_distributor_created", "email", email, "id", root.ID)
	if password == "root1234" {
		logger.Warnw("root_distributor_password_change_required", "email", email)
	}
	return nil
}
