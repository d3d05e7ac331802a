// Package app assembles repositories, services and integrations from
// configuration so the server and the admin CLI share one wiring.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"careerdesk/internal/config"
	"careerdesk/internal/payment/payglocal"
	"careerdesk/internal/reports"
	"careerdesk/internal/repository"
	"careerdesk/internal/repository/gormrepo"
	"careerdesk/internal/service"
	"careerdesk/internal/storage"
)

type Repositories struct {
	Users     repository.UserRepository
	Blogs     repository.BlogRepository
	Packages  repository.PackageRepository
	Messages  repository.MessageRepository
	Topics    repository.TopicSuggestionRepository
	Purchases repository.PurchaseRepository
	Payments  repository.PaymentRepository
}

// App holds everything built from one Config.
type App struct {
	Config  config.Config
	Logger  *logrus.Logger
	DB      *gorm.DB
	Repos   Repositories
	Storage storage.Service
	Gateway service.PaymentGateway
	Reports *reports.Store

	Users     service.UserService
	Blogs     service.BlogService
	Packages  service.PackageService
	Inquiries service.InquiryService
	Orders    service.OrderService
	Payments  service.PaymentService
}

// New opens the database, applies migrations and builds every service.
// Storage and the payment gateway stay nil when they are not configured.
func New(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*App, error) {
	db, err := gormrepo.Open(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := gormrepo.Migrate(db); err != nil {
		_ = gormrepo.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		_ = gormrepo.Close(db)
		return nil, fmt.Errorf("get database instance: %w", err)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Repos: Repositories{
			Users:     gormrepo.NewUserRepository(db),
			Blogs:     gormrepo.NewBlogRepository(db),
			Packages:  gormrepo.NewPackageRepository(db),
			Messages:  gormrepo.NewMessageRepository(db),
			Topics:    gormrepo.NewTopicSuggestionRepository(db),
			Purchases: gormrepo.NewPurchaseRepository(db),
			Payments:  gormrepo.NewPaymentRepository(db),
		},
		Reports: reports.New(sqlDB, cfg.Database.Driver),
	}

	if cfg.Storage.Bucket != "" {
		store, err := buildStorage(ctx, cfg, logger)
		if err != nil {
			_ = gormrepo.Close(db)
			return nil, fmt.Errorf("setup storage: %w", err)
		}
		a.Storage = store
	} else {
		logger.Warn("storage bucket not set, uploads are disabled")
	}

	if cfg.Payment.Enabled() {
		client, err := buildGateway(cfg.Payment, logger)
		if err != nil {
			_ = gormrepo.Close(db)
			return nil, fmt.Errorf("setup payment gateway: %w", err)
		}
		a.Gateway = client
	} else {
		logger.Warn("payment gateway not configured, checkout is disabled")
	}

	r := a.Repos
	a.Users = service.NewUserService(r.Users, r.Purchases, logger)
	a.Blogs = service.NewBlogService(r.Blogs, a.Storage, logger)
	a.Packages = service.NewPackageService(r.Packages, a.Storage, cfg.Payment.Currency, logger)
	a.Inquiries = service.NewInquiryService(r.Messages, r.Topics, logger)
	a.Orders = service.NewOrderService(r.Purchases, r.Payments, r.Users, a.Packages, a.Gateway,
		service.OrderConfig{CallbackURL: cfg.Payment.CallbackURL}, logger)
	a.Payments = service.NewPaymentService(r.Payments, r.Purchases, a.Gateway, logger)
	return a, nil
}

func (a *App) Close() error {
	return gormrepo.Close(a.DB)
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix, logger), nil
}

func buildGateway(cfg config.PaymentConfig, logger *logrus.Logger) (*payglocal.Client, error) {
	gatewayKey, err := payglocal.LoadPublicKey(cfg.GatewayPublicKeyPath)
	if err != nil {
		return nil, err
	}
	merchantKey, err := payglocal.LoadPrivateKey(cfg.MerchantPrivateKeyPath)
	if err != nil {
		return nil, err
	}
	logger.Infof("payments enabled for merchant %s", cfg.MerchantID)
	return payglocal.NewClient(payglocal.Config{
		BaseURL:            cfg.BaseURL,
		MerchantID:         cfg.MerchantID,
		PublicKeyID:        cfg.PublicKeyID,
		PrivateKeyID:       cfg.PrivateKeyID,
		GatewayPublicKey:   gatewayKey,
		MerchantPrivateKey: merchantKey,
		Logger:             logger,
		Timeout:            time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}
