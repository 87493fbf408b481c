package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/parking-reservation/config"
	"github.com/Eursukkul/parking-reservation/internal/consumer"
	"github.com/Eursukkul/parking-reservation/internal/handler"
	"github.com/Eursukkul/parking-reservation/internal/jobs"
	"github.com/Eursukkul/parking-reservation/internal/middleware"
	"github.com/Eursukkul/parking-reservation/internal/repository"
	"github.com/Eursukkul/parking-reservation/internal/service"
	"github.com/Eursukkul/parking-reservation/pkg/blobstore"
	"github.com/Eursukkul/parking-reservation/pkg/database"
	"github.com/Eursukkul/parking-reservation/pkg/mailer"
	"github.com/Eursukkul/parking-reservation/pkg/rabbitmq"
	"github.com/Eursukkul/parking-reservation/pkg/tokenstore"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx := context.Background()

	db := database.NewPostgresDB(cfg.DSN())

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		hash, err := service.HashPassword(cfg.AdminPassword)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
		if err := database.SeedAdmin(db, uuid.NewString(), cfg.AdminEmail, hash); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	// Blob store: S3 when a bucket is configured, otherwise process memory
	// served from /files
	var (
		store      service.BlobStore
		localFiles *blobstore.MemoryStore
	)
	if cfg.S3Bucket != "" {
		s3Store, err := blobstore.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			log.Fatalf("failed to configure S3: %v", err)
		}
		store = s3Store
	} else {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			log.Fatalf("failed to generate file signing key: %v", err)
		}
		log.Printf("[Blobstore] DEVELOPMENT ONLY: S3_BUCKET not set, documents live in process memory, are lost on restart and are served from %s/files", cfg.PublicURL)
		localFiles = blobstore.NewServedMemoryStore(cfg.PublicURL, key)
		store = localFiles
	}

	// Token denylist: redis when configured
	var denylist service.TokenDenylist
	if cfg.RedisAddr != "" {
		redisDenylist, err := tokenstore.NewRedisDenylist(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisDenylist.Close()
		denylist = redisDenylist
	} else {
		log.Println("[Auth] REDIS_ADDR not set, using in-process token denylist")
		denylist = tokenstore.NewMemoryDenylist()
	}

	// Mail
	var mail consumer.Mailer
	if cfg.SendGridAPIKey != "" && cfg.MailFrom != "" {
		mail = mailer.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName)
	} else {
		log.Println("[Mailer] SENDGRID_API_KEY or MAIL_FROM not set, notifications are logged only")
		mail = &mailer.LogMailer{}
	}

	// RabbitMQ: reservation events out, notifications in
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	// Repositories
	reservationRepo := repository.NewReservationRepository(db)
	spaceRepo := repository.NewSpaceRepository(db)
	userRepo := repository.NewUserRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	notifications := consumer.NewNotificationConsumer(userRepo, mail)
	consumerDone := notifications.Start(msgs)

	// Services
	policy := service.NewPeriodPolicy(cfg.Location, cfg.MaxReservationDays)
	docSvc := service.NewDocumentService(store)
	reservationSvc := service.NewReservationService(reservationRepo, spaceRepo, docSvc, policy, publisher)
	authSvc := service.NewAuthService(userRepo, denylist, cfg.JWTSecret, cfg.JWTTTL)
	userSvc := service.NewUserService(userRepo, reservationRepo)
	statsSvc := service.NewStatsService(statsRepo, userRepo, spaceRepo, policy)

	// Orphaned document sweep
	sweeper := jobs.NewOrphanSweeper(store, reservationRepo, cfg.OrphanGrace)
	scheduler, err := sweeper.Schedule(cfg.OrphanSweepSchedule)
	if err != nil {
		log.Fatalf("failed to schedule orphan sweep: %v", err)
	}
	scheduler.Start()

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = middleware.NewValidator()
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(echoMw.CORSWithConfig(echoMw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	// multipart bodies carry a document of at most 2MB plus form fields
	e.Use(echoMw.BodyLimit("3M"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "parking-reservation"})
	})

	if localFiles != nil {
		handler.NewFileHandler(localFiles).RegisterRoutes(e)
	}

	authn := middleware.Authenticate(authSvc)
	handler.NewAuthHandler(authSvc).RegisterRoutes(e, authn)
	handler.NewParkingHandler(reservationSvc, docSvc).RegisterRoutes(e, authn)
	handler.NewProfileHandler(userSvc, authSvc).RegisterRoutes(e, authn)
	handler.NewAdminHandler(userSvc, reservationSvc, statsSvc).RegisterRoutes(e, authn)

	go func() {
		log.Printf("Parking Reservation Service starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	<-scheduler.Stop().Done()

	// Closing the consumer connection ends the delivery channel
	mqConsumer.Close()
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		log.Println("[NotificationConsumer] did not drain before timeout")
	}
}
