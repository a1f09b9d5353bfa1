package main

import (
	"context"
	"log"

	"github.com/chatbot-platform/chatbot-backend/config"
	"github.com/chatbot-platform/chatbot-backend/internal/auth"
	"github.com/chatbot-platform/chatbot-backend/internal/bootstrap"
	chatrepo "github.com/chatbot-platform/chatbot-backend/internal/chat/repository"
	"github.com/chatbot-platform/chatbot-backend/internal/files"
	"github.com/chatbot-platform/chatbot-backend/internal/llm"
	"github.com/chatbot-platform/chatbot-backend/internal/maintenance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	if err := bootstrap.ApplySchema(ctx, cfg.Database.DSN); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	redisClient, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	if redisClient == nil {
		log.Println("Redis not configured, chat rate limiting disabled")
	}

	authClient, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}
	if authClient == nil {
		log.Println("Firebase not configured, trusting X-User-Id header (dev mode)")
	}

	model := llm.New(llm.Config{
		APIKey:   cfg.OpenRouter.APIKey,
		BaseURL:  cfg.OpenRouter.BaseURL,
		Referer:  cfg.OpenRouter.Referer,
		AppTitle: cfg.OpenRouter.AppTitle,
		Timeout:  cfg.OpenRouter.Timeout,
		RPS:      cfg.OpenRouter.RPS,
		Burst:    cfg.OpenRouter.Burst,
	})

	sweeper := maintenance.NewSweeper(db, chatrepo.New(db), cfg.App.TurnRetention)
	sweeper.Start()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:   "chatbot-backend",
		Version:       cfg.App.Version,
		DB:            db,
		Redis:         redisClient,
		AuthClient:    authClient,
		Model:         model,
		OpenAI:        files.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL),
		ContextLimit:  cfg.Chat.ContextLimit,
		ChatRateLimit: cfg.Chat.RateLimit,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	log.Fatal(r.Run(":" + cfg.Server.Port))
}
