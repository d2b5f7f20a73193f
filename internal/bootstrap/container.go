package bootstrap

import (
	"context"
	"log"
	"time"

	"household-finance-be/internal/config"
	"household-finance-be/internal/controller"
	"household-finance-be/internal/handler"
	"household-finance-be/internal/identity"
	"household-finance-be/internal/pkg/logger"
	"household-finance-be/internal/pkg/mailer"
	"household-finance-be/internal/realtime"
	"household-finance-be/internal/repository/implementation"
	"household-finance-be/internal/repository/unitofwork"
	"household-finance-be/internal/service"
	"household-finance-be/pkg/bus"
	pktNats "household-finance-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	HouseholdController    controller.IHouseholdController
	InvitationController   controller.IInvitationController
	NotificationController controller.INotificationController

	// Realtime
	GatewayHandler *handler.GatewayHandler
	Hub            *realtime.Hub
	Scheduler      *realtime.Scheduler

	// Background workers (exposed for main.go)
	NotificationService service.INotificationService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Infrastructure
	// NATS (durable domain events)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	}

	// Redis (broadcast bus + collaborator sets)
	var rdb *redis.Client
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb = redis.NewClient(opt)

	var broadcastBus bus.Bus
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		// Single-node fallback: everything stays in-process.
		log.Printf("[WARN] Failed to connect to Redis: %v. Using in-process bus", err)
		rdb = nil
		broadcastBus = bus.NewMemoryBus()
	} else {
		broadcastBus = bus.NewRedisBus(rdb)
	}

	// 3. Services
	verifier := identity.NewJWTVerifier(cfg.Auth.JWTSecret, uowFactory)

	admissionService := service.NewAdmissionService(uowFactory)
	householdService := service.NewHouseholdService(uowFactory, natsPub, sysLogger, cfg.Household.MaxUsers)
	invitationService := service.NewInvitationService(uowFactory, emailService, natsPub, sysLogger, cfg.Household.InvitationTTL)
	chatService := service.NewChatService(uowFactory, emailService, sysLogger, cfg.Realtime.ChatHistoryLimit)

	// 4. Realtime Hub
	hubLogger := logger.NewIsolatedLogger("logs/realtime.log")
	scheduler := realtime.NewScheduler()

	notifRepo := implementation.NewNotificationRepository(db)

	// The hub implements service.Delivery; break the construction cycle by
	// building the notification service against the hub afterwards.
	hub := realtime.NewHub(broadcastBus, rdb, chatService, nil, scheduler, hubLogger, cfg.Realtime.HighlightTTL)
	notifService := service.NewNotificationService(notifRepo, uowFactory, natsSub, hub, sysLogger)
	hub.SetNotificationService(notifService)

	// Invitation expiry rides the same sweep loop as highlight removal.
	scheduler.Every(time.Hour, func() {
		if _, err := invitationService.ExpireSweep(context.Background()); err != nil {
			sysLogger.Warn("Bootstrap", "Invitation expiry sweep failed", map[string]interface{}{"error": err.Error()})
		}
	})

	gatewayHandler := handler.NewGatewayHandler(verifier, householdService, hub, hubLogger)

	return &Container{
		HouseholdController:    controller.NewHouseholdController(householdService, admissionService, invitationService),
		InvitationController:   controller.NewInvitationController(invitationService),
		NotificationController: controller.NewNotificationController(notifService),
		GatewayHandler:         gatewayHandler,
		Hub:                    hub,
		Scheduler:              scheduler,
		NotificationService:    notifService,
	}
}
