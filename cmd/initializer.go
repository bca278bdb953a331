package main

import (
	"database/sql"
	"log"
	"time"

	"firebase.google.com/go/messaging"

	"dispatchBack/internal/cache"
	"dispatchBack/internal/config"
	"dispatchBack/internal/handlers"
	"dispatchBack/internal/repositories"
	services "dispatchBack/internal/services"
	"dispatchBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB

	jwtSecret string
	accessTTL time.Duration

	userRepo *repositories.UserRepository

	authService     *services.AuthService
	chatService     *services.ChatService
	requestService  *services.RequestService
	locationService *services.LocationService

	requestHandler  *handlers.RequestHandler
	chatHandler     *handlers.ChatHandler
	locationHandler *handlers.LocationHandler
	sessionHandler  *handlers.SessionHandler

	roomHub *RoomHub
}

func initializeApp(db *sql.DB, cfg config.Config, locationCache cache.LocationCache, fcmClient *messaging.Client, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := &repositories.UserRepository{DB: db}
	requestRepo := &repositories.RequestRepository{DB: db}
	messageRepo := &repositories.MessageRepository{DB: db}

	// Services
	tokenManager, err := utils.NewManager(cfg.JWT.Secret)
	if err != nil {
		errorLog.Fatal(err)
	}
	authService := &services.AuthService{
		UserRepo:   userRepo,
		Tokens:     tokenManager,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	}
	notificationService := &services.NotificationService{
		Client:   fcmClient,
		Tokens:   userRepo,
		ErrorLog: errorLog,
	}
	requestService := &services.RequestService{
		RequestRepo: requestRepo,
		Notifier:    notificationService,
	}
	chatService := &services.ChatService{
		MessageRepo: messageRepo,
		RequestRepo: requestRepo,
	}
	locationService := &services.LocationService{
		Cache:       locationCache,
		RequestRepo: requestRepo,
	}

	return &application{
		errorLog:        errorLog,
		infoLog:         infoLog,
		db:              db,
		jwtSecret:       cfg.JWT.Secret,
		accessTTL:       cfg.AccessTTL(),
		userRepo:        userRepo,
		authService:     authService,
		chatService:     chatService,
		requestService:  requestService,
		locationService: locationService,
		requestHandler:  &handlers.RequestHandler{RequestService: requestService},
		chatHandler:     &handlers.ChatHandler{ChatService: chatService, UserService: authService},
		locationHandler: &handlers.LocationHandler{LocationService: locationService},
		sessionHandler:  &handlers.SessionHandler{AuthService: authService},
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}
