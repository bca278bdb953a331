package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"google.golang.org/api/option"

	"dispatchBack/internal/cache"
	"dispatchBack/internal/config"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
	cfg := config.LoadConfig()

	addrDefault := cfg.Server.Address
	if port := os.Getenv("PORT"); port != "" {
		addrDefault = ":" + port
	}
	if addrDefault == "" {
		addrDefault = ":4001"
	}

	addr := flag.String("addr", addrDefault, "HTTP network address")
	flag.Parse()

	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)

	db, err := openDB(cfg.Database.URL)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer db.Close()

	// The live-location relay runs in memory unless a Redis address is
	// configured, in which case positions are shared across instances.
	var locationCache cache.LocationCache = cache.NewMemoryLocationCache()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		locationCache = cache.NewRedisLocationCache(rdb)
		infoLog.Printf("Using Redis location cache at %s", cfg.Redis.Addr)
	}

	var fcmClient *messaging.Client
	if cfg.Firebase.CredentialsFile != "" {
		fbApp, err := firebase.NewApp(context.Background(), nil, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
		if err != nil {
			errorLog.Fatal(err)
		}
		fcmClient, err = fbApp.Messaging(context.Background())
		if err != nil {
			errorLog.Fatal(err)
		}
		infoLog.Println("FCM notifications enabled")
	}

	app := initializeApp(db, cfg, locationCache, fcmClient, errorLog, infoLog)

	app.roomHub = NewRoomHub()
	go app.roomHub.Run()

	allowedOrigins := cfg.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Refresh-Token"},
	})

	srv := &http.Server{
		Addr:         *addr,
		ErrorLog:     errorLog,
		Handler:      c.Handler(app.routes()),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	infoLog.Printf("Starting server on %s", *addr)
	if err := srv.ListenAndServe(); err != nil {
		errorLog.Fatal(err)
	}
}
