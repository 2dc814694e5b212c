package api

import (
	"time"

	"promptvault-backend/config"
	_ "promptvault-backend/docs"
	adminUser "promptvault-backend/internal/api/v1/admin/user"
	"promptvault-backend/internal/api/v1/auth"
	"promptvault-backend/internal/api/v1/backup"
	"promptvault-backend/internal/api/v1/category"
	"promptvault-backend/internal/api/v1/common/upload"
	"promptvault-backend/internal/api/v1/expert_role"
	"promptvault-backend/internal/api/v1/prompt"
	"promptvault-backend/internal/api/v1/realtime"
	"promptvault-backend/internal/api/v1/tag"
	userRoutes "promptvault-backend/internal/api/v1/user"
	"promptvault-backend/internal/middleware"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/store"
	"promptvault-backend/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Deps are the long-lived objects the handlers share.
type Deps struct {
	Config   *config.Config
	Auth     *services.AuthService
	Library  *services.Library
	Registry *store.Registry
	Log      *zap.Logger
}

func NewRouter(deps Deps) *gin.Engine {
	utils.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300 * time.Second,
	}))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := middleware.AuthMiddleware(deps.Auth)
	lib := deps.Library

	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1, auth.NewHandler(deps.Auth, deps.Registry), requireAuth)

		authorized := v1.Group("/")
		authorized.Use(requireAuth)
		{
			userRoutes.RegisterRoutes(authorized, userRoutes.NewHandler(deps.Auth, deps.Registry))
			prompt.RegisterRoutes(authorized, prompt.NewHandler(lib.Prompts, lib.Attachments, deps.Registry))
			category.RegisterRoutes(authorized, category.NewHandler(lib.Categories, deps.Registry))
			tag.RegisterRoutes(authorized, tag.NewHandler(lib.Tags, deps.Registry))
			expert_role.RegisterRoutes(authorized, expert_role.NewHandler(lib.ExpertRoles, deps.Registry))
			backup.RegisterRoutes(authorized, backup.NewHandler(lib.Backups))
			realtime.RegisterRoutes(authorized, realtime.NewHandler(deps.Registry, 0, deps.Log))
			upload.RegisterRoutes(authorized, upload.NewHandler(deps.Config))
		}

		admin := v1.Group("/admin")
		admin.Use(requireAuth, middleware.AdminOnly())
		{
			adminUser.RegisterRoutes(admin, adminUser.NewHandler(deps.Auth))
		}
	}

	return router
}
