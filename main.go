package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/theleywin/Backend-Twitter-Clone/src/controllers"
	"github.com/theleywin/Backend-Twitter-Clone/src/events"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/media"
	"github.com/theleywin/Backend-Twitter-Clone/src/middleware"
	"github.com/theleywin/Backend-Twitter-Clone/src/routes"
	"github.com/theleywin/Backend-Twitter-Clone/src/services"
	"github.com/theleywin/Backend-Twitter-Clone/src/store"
)

func main() {
	cfg, err := lib.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := lib.InitLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := lib.ConnectDB(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("failed to disconnect from mongo", zap.Error(err))
		}
	}()

	mongoStore := store.NewMongo(db, cfg.Mongo.Retries)
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}

	var images media.Store = media.Disabled{}
	if cfg.Storage.Bucket != "" {
		s3Store, err := media.NewS3(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal("failed to configure image storage", zap.Error(err))
		}
		images = s3Store
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(events.Config{
			URL:           cfg.NATS.URL,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: cfg.NATS.ReconnectWait,
			ClientName:    "twitter-clone",
		})
		if err != nil {
			logger.Warn("nats unavailable, events disabled", zap.Error(err))
		} else {
			publisher = natsPublisher
		}
	}
	defer publisher.Close()

	tokens := lib.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	svc := services.New(services.Deps{
		Store:  mongoStore,
		Media:  images,
		Events: publisher,
		Tokens: tokens,
		Hasher: lib.NewPasswordHasher(cfg.Auth.BcryptCost),
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: lib.ErrorHandler,
		BodyLimit:    16 * 1024 * 1024,
	})

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())
	// Recovered panics surface as errors, so the logger still records them.
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, x-auth-token",
		ExposeHeaders: "x-auth-token",
	}))

	routes.Register(app, controllers.NewHandler(svc), routes.NewGuards(tokens, cfg.Limits), cfg.Metrics)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Warn("forced shutdown", zap.Error(err))
		}
	}()

	logger.Info("Server is running", zap.String("addr", "http://localhost:"+cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
