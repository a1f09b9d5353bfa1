package bootstrap

import (
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/chatbot-platform/chatbot-backend/internal/api/http"
	"github.com/chatbot-platform/chatbot-backend/internal/api/http/middleware"
	"github.com/chatbot-platform/chatbot-backend/internal/auth"
	chathttp "github.com/chatbot-platform/chatbot-backend/internal/chat/http"
	chatrepo "github.com/chatbot-platform/chatbot-backend/internal/chat/repository"
	chatservice "github.com/chatbot-platform/chatbot-backend/internal/chat/service"
	"github.com/chatbot-platform/chatbot-backend/internal/files"
	"github.com/chatbot-platform/chatbot-backend/internal/llm"
	"github.com/chatbot-platform/chatbot-backend/internal/projects"
	"github.com/chatbot-platform/chatbot-backend/internal/prompts"
	"github.com/chatbot-platform/chatbot-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *pgxpool.Pool
	Redis       *redis.Client
	AuthClient  *fbauth.Client
	Model       llm.Completer
	OpenAI      *files.OpenAIClient

	ContextLimit  int
	ChatRateLimit int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")
	api.Use(middleware.RequestIDMiddleware())

	if dep.AuthClient != nil {
		api.Use(auth.FirebaseAuthMiddleware(dep.AuthClient))
	}

	userRepo := users.NewRepo(dep.DB)
	api.Use(auth.WithUser(userRepo))

	projectRepo := projects.NewRepo(dep.DB)
	projects.Register(api.Group("/projects"), projectRepo)

	promptRepo := prompts.NewRepo(dep.DB)
	prompts.Register(api.Group("/prompts"), promptRepo, projectRepo)

	fileRepo := files.NewRepo(dep.DB)
	files.Register(api.Group("/files"), fileRepo, projectRepo, dep.OpenAI)

	store := chatrepo.New(dep.DB)
	chatSvc := chatservice.New(projectRepo, store, dep.Model, dep.ContextLimit)
	chatHandler := chathttp.NewHandler(chatSvc)
	chatHandler.Register(api.Group("/chat"), middleware.ChatRateLimit(dep.Redis, dep.ChatRateLimit))

	return r
}
