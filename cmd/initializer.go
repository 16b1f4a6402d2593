package main

import (
	"database/sql"
	"log"

	"github.com/redis/go-redis/v9"

	"tamircibul/internal/config"
	"tamircibul/internal/handlers"
	"tamircibul/internal/repositories"
	"tamircibul/internal/services"
)

type application struct {
	cfg      config.Config
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB

	userRepo      *repositories.UserRepository
	providerRepo  *repositories.ProviderRepository
	requestRepo   *repositories.RequestRepository
	resetRepo     *repositories.PasswordResetRepository

	userService     *services.UserService
	providerService *services.ProviderService
	requestService  *services.RequestService
	adminService    *services.AdminService

	userHandler     *handlers.UserHandler
	providerHandler *handlers.ProviderHandler
	requestHandler  *handlers.RequestHandler
	adminHandler    *handlers.AdminHandler
}

func initializeApp(cfg config.Config, db *sql.DB, redisClient *redis.Client, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := &repositories.UserRepository{DB: db}
	providerRepo := &repositories.ProviderRepository{DB: db}
	requestRepo := &repositories.RequestRepository{DB: db}
	resetRepo := &repositories.PasswordResetRepository{DB: db}

	// Services
	mailer := services.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	userService := &services.UserService{
		Store:       userRepo,
		Providers:   providerRepo,
		ResetTokens: resetRepo,
		Mail:        mailer,
		SigningKey:  []byte(cfg.JWT.SigningKey),
		AccessTTL:   cfg.JWT.AccessTTLDuration,
		RefreshTTL:  cfg.JWT.RefreshTTLDuration,
		FrontendURL: cfg.FrontendURL,
	}
	providerService := &services.ProviderService{Store: providerRepo, Stats: requestRepo}
	requestService := &services.RequestService{Store: requestRepo}
	adminService := &services.AdminService{
		Users:     userRepo,
		Providers: providerRepo,
		Requests:  requestRepo,
		Cache:     redisClient,
	}

	// Handlers
	return &application{
		cfg:      cfg,
		errorLog: errorLog,
		infoLog:  infoLog,
		db:       db,

		userRepo:     userRepo,
		providerRepo: providerRepo,
		requestRepo:  requestRepo,
		resetRepo:    resetRepo,

		userService:     userService,
		providerService: providerService,
		requestService:  requestService,
		adminService:    adminService,

		userHandler:     &handlers.UserHandler{Service: userService, ErrorLog: errorLog},
		providerHandler: &handlers.ProviderHandler{Service: providerService, ErrorLog: errorLog},
		requestHandler:  &handlers.RequestHandler{Service: requestService, ErrorLog: errorLog},
		adminHandler:    &handlers.AdminHandler{Service: adminService, ErrorLog: errorLog},
	}
}
