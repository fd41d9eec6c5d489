package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/ai"
	appsvc "tienda-api/internal/app"
	"tienda-api/internal/assistant"
	"tienda-api/internal/bootstrap"
	"tienda-api/internal/cache"
	"tienda-api/internal/repository"
	"tienda-api/internal/transport/http/handler"
	"tienda-api/internal/transport/http/middleware"
	"tienda-api/internal/transport/http/response"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	response.UseJSONFieldNames()

	router := gin.New()
	router.Use(middleware.RequestLogger(app.Logger), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.DB)
	categoryRepo := repository.NewCategoryRepository(app.DB)
	productRepo := repository.NewProductRepository(app.DB)
	addressRepo := repository.NewAddressRepository(app.DB)
	cartRepo := repository.NewCartRepository(app.DB)
	sessionRepo := repository.NewChatSessionRepository(app.DB)
	messageRepo := repository.NewChatMessageRepository(app.DB)

	var historyCache appsvc.HistoryCache
	if app.Redis != nil {
		historyCache = cache.NewHistoryCache(
			app.Redis,
			time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
		)
	}

	authService := appsvc.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		app.Logger.WithField("component", "auth"),
	)
	catalogService := appsvc.NewCatalogService(categoryRepo, productRepo)
	addressService := appsvc.NewAddressService(addressRepo)
	cartService := appsvc.NewCartService(cartRepo, productRepo)
	chatService := appsvc.NewChatService(
		sessionRepo,
		messageRepo,
		assistant.NewCatalogMatcher(productRepo, cfg.Assistant.MaxResults),
		ai.NewGeminiClient(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
		historyCache,
		ai.GenerateConfig{
			BaseURL:         cfg.LLM.BaseURL,
			APIKey:          cfg.LLM.APIKey,
			Model:           cfg.LLM.Model,
			Temperature:     cfg.LLM.Temperature,
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		},
		appsvc.ChatOptions{
			HistoryWindow:    cfg.Assistant.HistoryWindow,
			ContextMaxChars:  cfg.Assistant.ContextMaxChars,
			MaxMessageLength: cfg.Assistant.MaxMessageLength,
		},
		app.Logger.WithField("component", "chat"),
	)

	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	addressHandler := handler.NewAddressHandler(addressService)
	cartHandler := handler.NewCartHandler(cartService)
	orderHandler := handler.NewOrderHandler(app.OrderService)
	chatHandler := handler.NewChatHandler(chatService)

	requireAuth := middleware.AuthJWT(cfg.Auth.JWTSecret)
	optionalAuth := middleware.OptionalAuthJWT(cfg.Auth.JWTSecret)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", requireAuth, authHandler.Me)

	v1.GET("/categories", catalogHandler.ListCategories)
	v1.GET("/categories/:slug", catalogHandler.GetCategory)
	v1.GET("/products", catalogHandler.ListProducts)
	v1.GET("/products/:slug", catalogHandler.GetProduct)

	addressGroup := v1.Group("/addresses", requireAuth)
	addressGroup.GET("", addressHandler.List)
	addressGroup.POST("", addressHandler.Create)
	addressGroup.PUT("/:id", addressHandler.Update)
	addressGroup.DELETE("/:id", addressHandler.Delete)

	cartGroup := v1.Group("/cart", requireAuth)
	cartGroup.GET("", cartHandler.Get)
	cartGroup.DELETE("", cartHandler.Clear)
	cartGroup.POST("/items", cartHandler.AddItem)
	cartGroup.PUT("/items/:id", cartHandler.UpdateItem)
	cartGroup.DELETE("/items/:id", cartHandler.RemoveItem)

	orderGroup := v1.Group("/orders", requireAuth)
	orderGroup.POST("", orderHandler.Place)
	orderGroup.GET("", orderHandler.List)
	orderGroup.GET("/:number", orderHandler.Get)

	chatGroup := v1.Group("/chat", optionalAuth)
	chatGroup.POST("", chatHandler.Send)
	chatGroup.GET("/history", chatHandler.History)

	return router
}
