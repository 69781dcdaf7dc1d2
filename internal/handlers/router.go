package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agency-portfolio-backend/internal/assistant"
	"agency-portfolio-backend/internal/auth"
	"agency-portfolio-backend/internal/catalog"
	"agency-portfolio-backend/internal/chat"
	"agency-portfolio-backend/internal/config"
	"agency-portfolio-backend/internal/middleware"
	"agency-portfolio-backend/internal/observability"
	"agency-portfolio-backend/internal/realtime"
)

// Deps is everything the HTTP layer needs. DB may be nil.
type Deps struct {
	Config    *config.Config
	Catalog   *catalog.Service
	Auth      *auth.Service
	Chat      *chat.Service
	Assistant *assistant.Assistant
	Hub       *realtime.Hub
	DB        Pinger
	Log       zerolog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Log))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(observability.HTTPMetricsMiddleware())

	healthHandler := NewHealthHandler(cfg.Provider, d.DB)
	categoriesHandler := NewCategoriesHandler(d.Catalog)
	projectsHandler := NewProjectsHandler(d.Catalog)
	authHandler := NewAuthHandler(d.Auth)
	chatHandler := NewChatHandler(d.Chat, d.Auth)
	assistantHandler := NewAssistantHandler(d.Assistant, d.Catalog)
	wsHandler := realtime.NewHandler(d.Hub, d.Chat, cfg.AllowedOrigins, d.Log)

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", observability.Handler())

	api := router.Group("/api/v1")

	// Catalogue
	api.GET("/categories", categoriesHandler.ListCategories)
	api.GET("/projects", projectsHandler.ListProjects)

	// Auth
	api.POST("/auth/signin", authHandler.SignIn)
	api.POST("/auth/register", authHandler.Register)
	api.GET("/auth/session", authHandler.Session)
	api.POST("/auth/signout", authHandler.SignOut)

	// Assistant
	limiter := middleware.NewIPRateLimiter(cfg.AssistantRateLimit, cfg.AssistantRateBurst)
	api.GET("/assistant/greeting", assistantHandler.Greeting)
	api.POST("/assistant/reply", middleware.RateLimit(limiter), assistantHandler.Reply)

	// Visitor chat
	visitor := api.Group("/chat")
	visitor.Use(middleware.OptionalAuth(cfg))
	visitor.POST("/sessions", chatHandler.StartSession)
	visitor.GET("/sessions/:id", chatHandler.GetSession)
	visitor.POST("/sessions/:id/messages", chatHandler.SendMessage)
	visitor.GET("/sessions/:id/ws", wsHandler.Subscribe)

	// Admin
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RequireAdmin(d.Auth))
	admin.POST("/projects", projectsHandler.CreateProject)
	admin.DELETE("/projects/:id", projectsHandler.DeleteProject)
	admin.POST("/projects/:id/zones/:zone/toggle", projectsHandler.ToggleZone)
	admin.POST("/categories", categoriesHandler.AddCategory)
	admin.DELETE("/categories/:name", categoriesHandler.RemoveCategory)
	admin.GET("/chat/sessions", chatHandler.ListSessions)
	admin.POST("/chat/sessions/:id/messages", chatHandler.AdminReply)
	admin.POST("/chat/sessions/:id/read", chatHandler.MarkRead)

	return router
}
