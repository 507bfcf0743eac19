package provider

import (
	"github.com/carenation/backend/internal/authz"
	"github.com/carenation/backend/internal/cache"
	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/queue"
	"github.com/carenation/backend/internal/repository"
	"github.com/carenation/backend/internal/service"
)

// Container dependency wiring for the whole application
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	DistributorRepo   repository.DistributorRepository
	WalletRepo        repository.WalletRepository
	WithdrawalRepo    repository.WithdrawalRepository
	PaymentRepo       repository.PaymentRepository
	KhaltiRepo        repository.KhaltiPaymentRepository
	CartRepo          repository.CartRepository
	ProductRepo       repository.ProductRepository
	OrderRepo         repository.OrderRepository
	ImpersonationRepo repository.ImpersonationRepository
	NotificationRepo  repository.NotificationRepository

	// Services
	AuthzService         *authz.Service
	AdminAuthService     *service.AdminAuthService
	DistributorAuthSvc   *service.DistributorAuthService
	CaptchaService       *service.CaptchaService
	UploadService        *service.UploadService
	WalletService        *service.WalletService
	TreeService          *service.TreeService
	WithdrawalService    *service.WithdrawalService
	KhaltiService        *service.KhaltiService
	TransferService      *service.TransferService
	ImpersonationService *service.ImpersonationService
	CartService          *service.CartService
	ProductService       *service.ProductService
	OrderService         *service.OrderService
	NotificationService  *service.NotificationService
}

// NewContainer initializes shared infrastructure and wires every
// repository and service
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.DistributorRepo = repository.NewDistributorRepository(db)
	c.WalletRepo = repository.NewWalletRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.KhaltiRepo = repository.NewKhaltiPaymentRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ImpersonationRepo = repository.NewImpersonationRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.CaptchaService = service.NewCaptchaService(c.Config)
	c.AdminAuthService = service.NewAdminAuthService(c.Config, c.AdminRepo, c.CaptchaService)
	c.UploadService = service.NewUploadService(c.Config)

	c.WalletService = service.NewWalletService(c.DistributorRepo, c.WalletRepo)
	c.TreeService = service.NewTreeService(c.DistributorRepo)
	c.DistributorAuthSvc = service.NewDistributorAuthService(c.Config, c.DistributorRepo, c.TreeService)

	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo)

	c.WithdrawalService = service.NewWithdrawalService(c.Config, c.WithdrawalRepo, c.PaymentRepo, c.WalletService, c.UploadService, c.QueueClient)
	c.KhaltiService = service.NewKhaltiService(c.Config, c.KhaltiRepo, c.CartRepo, c.DistributorRepo, c.OrderService)
	c.TransferService = service.NewTransferService(c.DistributorRepo, c.WalletService)
	c.ImpersonationService = service.NewImpersonationService(c.Config, c.ImpersonationRepo, c.DistributorRepo, c.DistributorAuthSvc)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.WithdrawalRepo)
}
