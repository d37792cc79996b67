package router

import (
	"stadiumparking/internal/config"
	"stadiumparking/internal/handlers"
	"stadiumparking/internal/identity"
	"stadiumparking/internal/logger"
	"stadiumparking/internal/middleware"
	"stadiumparking/internal/models"
	"stadiumparking/internal/repository"
	"stadiumparking/internal/service"
	"stadiumparking/internal/storage"
	"stadiumparking/internal/viewgate"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup configures and returns the Gin router
func Setup(cfg *config.Config, db *gorm.DB, gate viewgate.Gate, files storage.Store) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware())
	router.Use(cors.Default())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	router.Use(middleware.Identify(identity.NewResolver(tokens)))

	// Uploaded images when the local backend is in use
	router.Static("/uploads", cfg.UploadDir)

	users := repository.NewUserRepository(db)
	stadiums := repository.NewStadiumRepository(db)
	posts := service.NewPostService(repository.NewPostRepository(db), stadiums, users, gate, files)

	authHandler := handlers.NewAuthHandler(users, tokens, cfg)
	stadiumHandler := handlers.NewStadiumHandler(stadiums)
	postHandler := handlers.NewPostHandler(posts)
	commentHandler := handlers.NewCommentHandler(posts)
	adminHandler := handlers.NewAdminHandler(posts)
	dashboardHandler := handlers.NewDashboardHandler(posts)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		api.GET("/dashboard", middleware.AuthMiddleware(), dashboardHandler.GetDashboard)

		stadiumRoutes := api.Group("/stadiums")
		{
			stadiumRoutes.GET("", stadiumHandler.GetStadiums)
			stadiumRoutes.POST("", middleware.RequireRole(models.RoleAdmin), stadiumHandler.CreateStadium)
			stadiumRoutes.GET("/:stadium_id", stadiumHandler.GetStadium)

			// Reads and comments accept anonymous callers
			postRoutes := stadiumRoutes.Group("/:stadium_id/posts")
			{
				postRoutes.GET("", postHandler.GetPosts)
				postRoutes.POST("", middleware.AuthMiddleware(), postHandler.CreatePost)
				postRoutes.GET("/:post_id", postHandler.GetPost)
				postRoutes.DELETE("/:post_id", middleware.AuthMiddleware(), postHandler.DeletePost)
				postRoutes.POST("/:post_id/recommend", middleware.AuthMiddleware(), postHandler.Recommend)
				postRoutes.POST("/:post_id/comments", commentHandler.CreateComment)
				postRoutes.POST("/:post_id/comments/:comment_id/replies", commentHandler.CreateReply)
			}
		}

		admin := api.Group("/admin", middleware.RequireRole(models.RoleAdmin, models.RoleModerator))
		{
			admin.GET("/posts", adminHandler.ListPosts)
			admin.DELETE("/posts/:post_id", adminHandler.DeletePost)
		}
	}

	return router
}
