package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"github.com/dskvich/instructional-pages/pkg/activity"
	"github.com/dskvich/instructional-pages/pkg/anthropic"
	"github.com/dskvich/instructional-pages/pkg/api/handler"
	"github.com/dskvich/instructional-pages/pkg/api/middleware"
	"github.com/dskvich/instructional-pages/pkg/auth"
	"github.com/dskvich/instructional-pages/pkg/cloudinary"
	"github.com/dskvich/instructional-pages/pkg/database"
	"github.com/dskvich/instructional-pages/pkg/digitalocean"
	"github.com/dskvich/instructional-pages/pkg/logger"
	"github.com/dskvich/instructional-pages/pkg/openai"
	"github.com/dskvich/instructional-pages/pkg/repository"
	"github.com/dskvich/instructional-pages/pkg/services"
	"github.com/dskvich/instructional-pages/pkg/workers"
)

type Config struct {
	Addr                string        `env:"ADDR" envDefault:":8080"`
	AnthropicAPIKey     string        `env:"ANTHROPIC_API_KEY,required"`
	AnthropicModel      string        `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	OpenAIAPIKey        string        `env:"OPENAI_API_KEY,required"`
	OpenAIImageModel    string        `env:"OPENAI_IMAGE_MODEL" envDefault:"dall-e-3"`
	CloudinaryCloudName string        `env:"CLOUDINARY_CLOUD_NAME,required"`
	CloudinaryAPIKey    string        `env:"CLOUDINARY_API_KEY,required"`
	CloudinaryAPISecret string        `env:"CLOUDINARY_API_SECRET,required"`
	DigitalOceanToken   string        `env:"DIGITALOCEAN_TOKEN"`
	AccessPassword      string        `env:"ACCESS_PASSWORD"`
	AccessTokenTTL      time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`
	SystemPromptPath    string        `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system.txt"`
	DatabaseURL         string        `env:"DATABASE_URL"`
	ImageConcurrency    int           `env:"IMAGE_CONCURRENCY" envDefault:"4"`
	ActivityBuffer      int           `env:"ACTIVITY_BUFFER" envDefault:"256"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))
	_ = godotenv.Load()

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	workerGroup, err := setupWorkers()
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Start(ctx)
}

func setupWorkers() (workers.Group, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	var store activity.Store
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("creating db: %w", err)
		}
		store = repository.NewActivityPostgresRepository(db)
	} else {
		slog.Info("no database configured, activity log is in-memory only")
		store = repository.NewActivityMemoryRepository(0)
	}
	recorder := activity.NewRecorder(store, cfg.ActivityBuffer)

	textClient, err := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, recorder)
	if err != nil {
		return nil, fmt.Errorf("creating anthropic client: %w", err)
	}

	imageClient, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIImageModel, recorder)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	hostClient, err := cloudinary.NewClient(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, recorder)
	if err != nil {
		return nil, fmt.Errorf("creating cloudinary client: %w", err)
	}

	imageResolver := services.NewImageResolver(imageClient, hostClient, recorder, cfg.ImageConcurrency)

	pageService := services.NewPageService(
		textClient,
		imageResolver,
		services.NewVerifier(),
		recorder,
		services.LoadSystemPrompt(cfg.SystemPromptPath),
	)

	authenticator := auth.NewAuthenticator(cfg.AccessPassword, cfg.AccessTokenTTL)

	var balance handler.BalanceProvider
	if cfg.DigitalOceanToken != "" {
		balance = digitalocean.NewClient(cfg.DigitalOceanToken)
	}

	generateHandler := handler.NewGenerate(pageService)
	authHandler := handler.NewAuth(authenticator)
	debugHandler := handler.NewDebug(store, balance)
	imagesHandler := handler.NewImages(imageClient, hostClient)

	protected := func(h http.HandlerFunc) http.Handler {
		return middleware.Auth(authenticator, h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/generate", protected(generateHandler.GeneratePage))
	mux.Handle("POST /api/images/regenerate", protected(imagesHandler.Regenerate))
	mux.Handle("GET /api/debug/activity", protected(debugHandler.Activity))
	mux.Handle("GET /api/debug/stats", protected(debugHandler.Stats))
	mux.Handle("POST /api/debug/clear", protected(debugHandler.Clear))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return workers.Group{
		workers.NewActivityRecorder(recorder),
		workers.NewHTTPServer(cfg.Addr, middleware.RequestID(mux)),
	}, nil
}
