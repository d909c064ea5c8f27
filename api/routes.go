package api

import (
	"net/http"
	"strings"
	"time"

	"empowerher/config"
	"empowerher/db"
	"empowerher/logger"
	"empowerher/progress"
	"empowerher/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter wires every route. main and the tests build the same engine.
func SetupRouter(store *db.Store, svc *progress.Service, cfg *config.Config, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))
	if len(cfg.CorsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CorsOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/health", HealthHandler)

	// --- Public Routes ---
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", func(c *gin.Context) { SignupHandler(c, store, cfg) })
		authGroup.POST("/login", func(c *gin.Context) { LoginHandler(c, store, cfg) })
	}

	// Signing in is cosmetic: progress routes never require it.
	optionalAuth := utils.OptionalAuthMiddleware(cfg)
	authMiddleware := utils.AuthMiddleware(cfg)

	profileGroup := router.Group("/profiles")
	{
		profileGroup.GET("/me", optionalAuth, func(c *gin.Context) { GetProfileMeHandler(c, store) })
		profileGroup.PUT("/me", authMiddleware, func(c *gin.Context) { UpdateProfileMeHandler(c, store) })
	}

	entityGroup := router.Group("/entities/:type")
	{
		entityGroup.GET("", func(c *gin.Context) { ListRecordsHandler(c, store) })
		entityGroup.POST("", func(c *gin.Context) { CreateRecordHandler(c, store) })
		entityGroup.POST("/upsert", func(c *gin.Context) { UpsertRecordHandler(c, store) })
		entityGroup.GET("/:id", func(c *gin.Context) { GetRecordHandler(c, store) })
		entityGroup.PUT("/:id", func(c *gin.Context) { UpdateRecordHandler(c, store) })
		entityGroup.DELETE("/:id", func(c *gin.Context) { DeleteRecordHandler(c, store) })
	}

	statsGroup := router.Group("/stats")
	{
		statsGroup.GET("", func(c *gin.Context) { GetStatsHandler(c, svc) })
		statsGroup.POST("/init", func(c *gin.Context) { InitStatsHandler(c, svc) })
		statsGroup.POST("/points", func(c *gin.Context) { AwardPointsHandler(c, svc) })
	}

	progressGroup := router.Group("/progress")
	{
		progressGroup.POST("/lessons", func(c *gin.Context) { CompleteLessonHandler(c, svc) })
		progressGroup.POST("/chapters", func(c *gin.Context) { CompleteChapterHandler(c, svc) })
		progressGroup.POST("/challenges", func(c *gin.Context) { CompleteChallengeHandler(c, svc) })
	}

	router.POST("/activity", func(c *gin.Context) { RecordActivityHandler(c, svc) })
	router.GET("/badges", func(c *gin.Context) { ListBadgesHandler(c, svc) })
	router.GET("/dashboard", func(c *gin.Context) { DashboardHandler(c, svc) })

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}

// HealthHandler reports liveness.
// @Summary      Health check
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequestLogger logs one line per request, at a level chosen by the status code.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if userID := c.GetString(utils.ContextUserID); userID != "" {
			fields = append(fields, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
