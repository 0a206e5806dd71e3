package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/harshshukla07/SwiftCV/internal/api/middleware"
	"github.com/harshshukla07/SwiftCV/internal/auth"
	"github.com/harshshukla07/SwiftCV/internal/config"
	"github.com/harshshukla07/SwiftCV/internal/storage"
)

// RegisterRoutes wires the /api route tree.
func RegisterRoutes(
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	authService *auth.AuthService,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
	ai TextGenerator,
	uploader ImageUploader,
	archive *storage.Archive,
) {
	authHandler := NewAuthHandler(db, authService, redisClient, logger,
		cfg.Redis.LoginRateLimitPerHour, cfg.Redis.LoginLockThreshold, cfg.Redis.LoginLockTTL)
	resumeHandler := NewResumeHandler(db, uploader, cfg.API.ClamdAddr)
	aiHandler := NewAIHandler(db, ai, archive)
	authMiddleware := middleware.AuthMiddleware(authService)

	apiGroup := router.Group("/api")
	{
		users := apiGroup.Group("/users")
		{
			users.POST("/register", authHandler.Register)
			users.POST("/login", authHandler.Login)
			users.GET("/data", authMiddleware, authHandler.GetUserData)
			users.GET("/resumes", authMiddleware, authHandler.GetUserResumes)
		}

		resumes := apiGroup.Group("/resumes")
		{
			resumes.GET("/public/:id", resumeHandler.GetPublicResume)

			resumes.POST("/create", authMiddleware, resumeHandler.CreateResume)
			resumes.GET("/get/:id", authMiddleware, resumeHandler.GetResume)
			resumes.PUT("/update", authMiddleware, resumeHandler.UpdateResume)
			resumes.DELETE("/delete/:id", authMiddleware, resumeHandler.DeleteResume)
			resumes.POST("/duplicate", authMiddleware, resumeHandler.DuplicateResume)
		}

		aiGroup := apiGroup.Group("/ai")
		aiGroup.Use(authMiddleware)
		{
			aiGroup.POST("/enhance-pro-sum", aiHandler.EnhanceProfessionalSummary)
			aiGroup.POST("/enhance-job-desc", aiHandler.EnhanceJobDescription)
			aiGroup.POST("/upload-resume", aiHandler.UploadResume)
		}
	}
}
