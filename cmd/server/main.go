package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"podium/internal/cache"
	"podium/internal/config"
	"podium/internal/repository"
	"podium/internal/service"
	"podium/internal/transport/rest"
	"podium/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("Failed to ensure indexes:", err)
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	committeeRepo := repository.NewCommitteeRepo(db)
	countryRepo := repository.NewCountryRepo(db)
	modeRepo := repository.NewModeDataRepo(db)
	listRepo := repository.NewListParticipantRepo(db)
	handRepo := repository.NewRaisedHandRepo(db)
	voteRepo := repository.NewVoteRepo(db)
	speechRepo := repository.NewSpeechRepo(db)
	motionRepo := repository.NewMotionRepo(db)
	documentRepo := repository.NewDocumentRepo(db)
	pointRepo := repository.NewPointRepo(db)
	codeRepo := repository.NewDelegateCodeRepo(db)

	// Initialize caches
	snapshots := cache.NewSnapshotCache(rdb)
	stats := cache.NewStatsCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.ChairUsername, cfg.ChairPassword, cfg.JWTSecret, committeeRepo, countryRepo, codeRepo)
	committeeSvc := service.NewCommitteeService(committeeRepo, countryRepo, modeRepo, listRepo, handRepo, voteRepo, snapshots)
	speechSvc := service.NewSpeechService(speechRepo, countryRepo, stats)
	debateSvc := service.NewDebateService(committeeRepo, countryRepo, modeRepo, listRepo, handRepo, voteRepo, committeeSvc, speechSvc, snapshots)
	motionSvc := service.NewMotionService(motionRepo, documentRepo, countryRepo, committeeSvc)
	documentSvc := service.NewDocumentService(documentRepo, countryRepo, committeeSvc)
	pointSvc := service.NewPointService(pointRepo, countryRepo, committeeSvc)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	committeeSvc.SetBroadcaster(wsHub)
	speechSvc.SetBroadcaster(wsHub)
	debateSvc.SetBroadcaster(wsHub)
	motionSvc.SetBroadcaster(wsHub)
	documentSvc.SetBroadcaster(wsHub)
	pointSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:      authSvc,
		CommitteeService: committeeSvc,
		DebateService:    debateSvc,
		SpeechService:    speechSvc,
		MotionService:    motionSvc,
		DocumentService:  documentSvc,
		PointService:     pointSvc,
		WSHub:            wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
