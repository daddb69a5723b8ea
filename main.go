package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/theleywin/Backend-Meme-Nest/src/config"
	"github.com/theleywin/Backend-Meme-Nest/src/controllers"
	"github.com/theleywin/Backend-Meme-Nest/src/lib"
	"github.com/theleywin/Backend-Meme-Nest/src/routes"
	"github.com/theleywin/Backend-Meme-Nest/src/scheduler"
	"github.com/theleywin/Backend-Meme-Nest/src/search"
	"github.com/theleywin/Backend-Meme-Nest/src/services"
	"github.com/theleywin/Backend-Meme-Nest/src/storage"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := lib.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	index := search.ForDialect(cfg.DBDriver)
	if err := lib.AutoMigrate(db, index); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatalf("Storage setup failed: %v", err)
	}

	notifications, err := newNotificationStore(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Notification store setup failed: %v", err)
	}

	svc := services.New(cfg, db, index, store, notifications)
	scheduler.StartCleanupScheduler(ctx, svc.Notifications, cfg.NotificationCleanup, cfg.NotificationMaxAge)

	app := fiber.New(fiber.Config{
		ErrorHandler: controllers.ErrorHandler,
		BodyLimit:    cfg.MaxUploadBytes,
		// El multipart se parsea en el handler para responder errores en JSON
		DisablePreParseMultipartForm: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	routes.Setup(app, controllers.New(svc, cfg), svc.Auth)

	// Con almacenamiento local los archivos se sirven desde aquí
	app.Static("/uploads", cfg.UploadDir)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	fmt.Println("Server is running on http://localhost:" + cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.CloudinaryURL != "" {
		log.Println("Storing media in Cloudinary")
		return storage.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	}
	log.Printf("Storing media in %s", cfg.UploadDir)
	return storage.NewLocal(cfg.UploadDir)
}

func newNotificationStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (services.NotificationStore, error) {
	if cfg.MongoURI == "" {
		return services.NewGormNotificationStore(db), nil
	}
	mongoDB, err := lib.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	return services.NewMongoNotificationStore(mongoDB), nil
}
