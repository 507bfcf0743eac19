package main

import (
	"fmt"

	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"
	"github.com/carenation/backend/internal/service"

	"github.com/shopspring/decimal"
)

// Seeds a demo network: the root member, two downline members placed under
// the root's left and right slots, and a small starter catalog. Safe to run
// more than once.
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("database init failed: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("database migration failed: %v", err)
	}

	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Fatalf("default admin init failed: %v", err)
	}
	if err := models.InitRootDistributor("", ""); err != nil {
		stdLog.Fatalf("root distributor init failed: %v", err)
	}

	distributorRepo := repository.NewDistributorRepository(models.DB)
	treeService := service.NewTreeService(distributorRepo)
	authService := service.NewDistributorAuthService(cfg, distributorRepo, treeService)

	root, err := distributorRepo.GetRoot()
	if err != nil || root == nil {
		stdLog.Fatalf("root distributor missing: %v", err)
	}

	members := []struct {
		email    string
		fullName string
		position string
	}{
		{"lila@carenation.local", "Lila Shrestha", constants.TreeSlotLeft},
		{"ramesh@carenation.local", "Ramesh Karki", constants.TreeSlotRight},
	}
	for _, m := range members {
		existing, err := distributorRepo.GetByEmail(m.email)
		if err != nil {
			stdLog.Fatalf("lookup %s failed: %v", m.email, err)
		}
		if existing != nil {
			stdLog.Printf("member %s already present, skipped", m.email)
			continue
		}
		if _, _, _, err := authService.Signup(service.SignupInput{
			Email:     m.email,
			Password:  "Demo@12345",
			FullName:  m.fullName,
			SponsorID: root.ID,
			Position:  m.position,
		}); err != nil {
			stdLog.Printf("seed member %s failed: %v", m.email, err)
		} else {
			stdLog.Printf("seeded member %s under root %s slot", m.email, m.position)
		}
	}

	products := []models.Product{
		{
			Name:        "Wellness Starter Pack",
			Description: "Entry kit with multivitamins and a shaker bottle.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(2500)),
			Stock:       100,
			IsActive:    true,
			SortOrder:   10,
		},
		{
			Name:        "Herbal Tea Collection",
			Description: "Twelve assorted herbal infusions.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(1200)),
			Stock:       200,
			IsActive:    true,
			SortOrder:   20,
		},
		{
			Name:        "Protein Supplement 1kg",
			Description: "Whey protein, chocolate flavour.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(4800)),
			Stock:       60,
			IsActive:    true,
			SortOrder:   30,
		},
	}
	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", product.Name).First(&existing).Error; err == nil {
			stdLog.Printf("product %q already present, skipped", product.Name)
			continue
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("seed product %q failed: %v", product.Name, err)
		} else {
			stdLog.Printf("seeded product %q", product.Name)
		}
	}

	fmt.Println("seed complete: 1 admin, 1 root, 2 members, 3 products")
}
