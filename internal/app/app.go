package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freelancehub/internal/auth"
	"freelancehub/internal/config"
	"freelancehub/internal/handlers"
	"freelancehub/internal/logger"
	"freelancehub/internal/models"
	"freelancehub/internal/payments"
	"freelancehub/internal/repositories"
	"freelancehub/internal/routes"
	"freelancehub/internal/services"
	"freelancehub/internal/validator"
	"freelancehub/internal/workers"
	"freelancehub/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Run boots the whole application and blocks until SIGINT/SIGTERM.
func Run() error {
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)
	auth.Init(cfg.JWT.Secret, cfg.JWT.TTL)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDatabase(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	gateway := payments.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.Currency)

	router, wsManager, milestoneSvc, milestoneRepo := SetupRouter(cfg, db, gateway)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go wsManager.Run()

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		relay := ws.NewRedisRelay(rdb)
		wsManager.SetRelay(relay)
		go relay.Listen(ctx, wsManager)
		logger.Info("cross-instance push relay enabled", "redis_addr", cfg.Redis.Addr)
	}

	worker := workers.NewPaymentWorker(
		db, milestoneRepo, gateway, milestoneSvc,
		time.Duration(cfg.Worker.PaymentPollSeconds)*time.Second,
	)
	go worker.Run(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, AutoMigrate(db)
}

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Proposal{},
		&models.Milestone{},
		&models.Message{},
		&models.Notification{},
		&models.Review{},
	)
}

// SetupRouter wires repositories, services and handlers onto a gin engine.
// Exposed pieces that outlive a request (ws manager, milestone service,
// milestone repo) are returned for the background goroutines.
func SetupRouter(cfg *config.Config, db *gorm.DB, gateway payments.Gateway) (*gin.Engine, *ws.Manager, services.MilestoneService, repositories.MilestoneRepository) {
	userRepo := repositories.NewUserRepository()
	projectRepo := repositories.NewProjectRepository()
	proposalRepo := repositories.NewProposalRepository()
	milestoneRepo := repositories.NewMilestoneRepository()
	messageRepo := repositories.NewMessageRepository()
	notificationRepo := repositories.NewNotificationRepository()
	reviewRepo := repositories.NewReviewRepository()

	clock := services.SystemClock()
	wsManager := ws.NewManager(db)

	chatService := services.NewChatService(messageRepo, projectRepo, notificationRepo, wsManager)
	wsManager.SetChatService(chatService)

	milestoneService := services.NewMilestoneService(
		milestoneRepo, projectRepo, userRepo, notificationRepo,
		gateway, cfg.Stripe.Currency, clock,
	)

	svcs := &services.ServiceContainer{
		AuthService:         services.NewAuthService(userRepo),
		UserService:         services.NewUserService(userRepo),
		ProjectService:      services.NewProjectService(projectRepo, userRepo),
		ProposalService:     services.NewProposalService(proposalRepo, projectRepo, milestoneRepo, notificationRepo),
		MilestoneService:    milestoneService,
		ChatService:         chatService,
		NotificationService: services.NewNotificationService(notificationRepo, clock),
		ReviewService:       services.NewReviewService(reviewRepo, projectRepo, userRepo),
	}

	h := handlers.NewAppHandlers(svcs, validator.New(), cfg.Stripe.WebhookSecret)

	router := gin.New()
	router.Use(gin.Recovery())
	routes.SetupRoutes(router, db, h, wsManager)

	return router, wsManager, milestoneService, milestoneRepo
}
