package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/config"
	"github.com/scholaris-io/scholaris-api/internal/database"
	"github.com/scholaris-io/scholaris-api/internal/handler"
	"github.com/scholaris-io/scholaris-api/internal/middleware"
	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/repository"
	"github.com/scholaris-io/scholaris-api/internal/router"
	"github.com/scholaris-io/scholaris-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.School{}, &models.AcademicYear{}, &models.ClassGroup{}, &models.Section{}, &models.Subject{},
		&models.User{}, &models.Student{},
		&models.Exam{}, &models.ExamResult{},
		&models.Announcement{}, &models.Message{}, &models.Notification{},
		&models.FeeStructure{}, &models.FeePayment{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	schoolRepo := repository.NewSchoolRepository(db)
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	examRepo := repository.NewExamRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	feeRepo := repository.NewFeeRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, 0, validate, logger)
	schoolService := service.NewSchoolService(schoolRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, "scholaris", natsConn, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, schoolRepo, studentRepo, redisClient, cfg.AnnouncementCacheTTL, validate, logger)
	messageService := service.NewMessageService(messageRepo, userRepo, notificationService, validate, logger)
	examService := service.NewExamService(examRepo, schoolRepo, studentRepo, notificationService, validate, logger)
	studentService := service.NewStudentService(studentRepo, userRepo, schoolRepo, validate, logger)
	feeService := service.NewFeeService(feeRepo, studentRepo, cfg.CurrencySymbol, validate, logger)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	notificationService.Start(runCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		SchoolHandler:       handler.NewSchoolHandler(schoolService, logger),
		AnnouncementHandler: handler.NewAnnouncementHandler(announcementService, logger),
		MessageHandler:      handler.NewMessageHandler(messageService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, cfg.NotificationTimeout),
		ExamHandler:         handler.NewExamHandler(examService, logger),
		StudentHandler:      handler.NewStudentHandler(studentService, logger),
		FeeHandler:          handler.NewFeeHandler(feeService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		TenantMiddleware:    middleware.TenantResolver(schoolRepo, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
