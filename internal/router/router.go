package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/quizlink-backend/internal/config"
	"github.com/stemsi/quizlink-backend/internal/handler"
	"github.com/stemsi/quizlink-backend/internal/metrics"
	"github.com/stemsi/quizlink-backend/internal/middleware"
	"github.com/stemsi/quizlink-backend/internal/response"
	"github.com/stemsi/quizlink-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Quiz   *handler.QuizHandler
	Admin  *handler.AdminHandler
	System *handler.SystemHandler
}

// Limiters holds the per-IP limiters for the public quiz routes and for admin
// login.
type Limiters struct {
	Quiz  *middleware.RateLimiter
	Login *middleware.RateLimiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	limiters Limiters,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.HeaderAdminPassword}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the access log and every envelope carry it.
	router.Use(
		response.RequestIDMiddleware(),
		middleware.AccessLog(),
		metrics.MetricsMiddleware(),
		middleware.Timeout(cfg.RequestTimeout),
	)

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", metrics.PrometheusHandler())

	// ─── 1. Quiz Group (Public, Rate Limited) ──────────────────────────
	quiz := router.Group("/api/v1/quiz")
	quiz.Use(limiters.Quiz.Middleware())
	{
		quiz.POST("/register", handlers.Quiz.Register)
		quiz.POST("/submit", handlers.Quiz.Submit)
		quiz.GET("/:token", handlers.Quiz.Resolve)
		quiz.POST("/:token/advance", handlers.Quiz.Advance)
	}

	// ─── 2. Admin Login (Public, Rate Limited) ─────────────────────────
	router.POST("/api/v1/admin/login", limiters.Login.Middleware(), handlers.Admin.Login)

	// ─── 3. Admin Group (Password or JWT) ──────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdmin(authService))
	{
		// Quiz control
		adminAPI.POST("/questions", handlers.Admin.UploadQuestions)
		adminAPI.GET("/quiz-status", handlers.Admin.QuizStatus)
		adminAPI.POST("/toggle-quiz", handlers.Admin.ToggleQuiz)
		adminAPI.DELETE("/quiz", handlers.Admin.DeleteQuiz)
		adminAPI.DELETE("/reset", handlers.Admin.Reset)

		// Roster
		adminAPI.POST("/students", handlers.Admin.ImportStudents)
		adminAPI.GET("/students", handlers.Admin.ListStudents)
		adminAPI.DELETE("/students", handlers.Admin.DeleteStudents)

		// Exports
		adminAPI.GET("/export", handlers.Admin.ExportResults)
		adminAPI.GET("/export-links", handlers.Admin.ExportLinks)
	}

	return router
}
