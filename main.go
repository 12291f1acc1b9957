package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"laughschool/board"
	"laughschool/config"
	"laughschool/handlers"
	"laughschool/ledger"
	"laughschool/media"
	"laughschool/routes"
	"laughschool/store"
)

func main() {
	log.Println("🚀 Starting Laugh School backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Configuration error: ", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// ===== PERSISTENCE =====
	var (
		itemStore  store.Store
		voteLedger ledger.Ledger
	)
	if cfg.MongoURI != "" {
		log.Println("🔌 Connecting to MongoDB...")
		client, err := connectMongoWithRetry(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal("❌ Failed to connect to MongoDB: ", err)
		}
		db := client.Database(cfg.MongoDB)
		itemStore = store.NewMongoStore(db)
		voteLedger, err = ledger.NewMongoLedger(ctx, db)
		if err != nil {
			log.Fatal("❌ Failed to prepare vote ledger: ", err)
		}
		log.Println("✅ MongoDB connected")
	} else {
		fs, err := store.NewFileStore(cfg.DataFile)
		if err != nil {
			log.Fatal("❌ Failed to open data file: ", err)
		}
		fl, err := ledger.NewFileLedger(cfg.VotesFile)
		if err != nil {
			log.Fatal("❌ Failed to open votes file: ", err)
		}
		itemStore, voteLedger = fs, fl
		log.Printf("💾 Using JSON files: %s, %s", cfg.DataFile, cfg.VotesFile)
	}

	// ===== MEDIA STORAGE =====
	var (
		mediaStorage media.Storage
		uploadsDir   string
	)
	if cfg.CloudinaryURL != "" {
		cld, err := media.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			log.Fatal("❌ Cloudinary configuration error: ", err)
		}
		mediaStorage = cld
		log.Println("☁️ Media uploads go to Cloudinary")
	} else {
		local, err := media.NewLocalStorage(cfg.UploadsDir)
		if err != nil {
			log.Fatal("❌ Failed to create uploads dir: ", err)
		}
		mediaStorage = local
		uploadsDir = local.Dir()
		log.Printf("📁 Media uploads go to %s", uploadsDir)
	}

	// ===== BOARD ENGINE =====
	engine := board.New(itemStore, voteLedger, mediaStorage)
	if cfg.SeedDemo {
		if err := engine.SeedDemo(ctx); err != nil {
			log.Fatal("❌ Failed to seed demo content: ", err)
		}
	}

	h, err := handlers.New(engine, cfg)
	if err != nil {
		log.Fatal("❌ Failed to build handlers: ", err)
	}
	router := routes.Setup(cfg, h, uploadsDir)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Server error: ", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("❌ Forced shutdown: ", err)
	}

	log.Println("👋 Server stopped gracefully")
}

func connectMongoWithRetry(ctx context.Context, uri string) (*mongo.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		client, err := store.Connect(ctx, uri)
		if err == nil {
			return client, nil
		}
		lastErr = err
		log.Printf("❌ MongoDB connection attempt %d failed: %v", attempt, err)
		time.Sleep(2 * time.Second)
	}
	return nil, lastErr
}
