package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/thesishub-dev/thesishub/internal/handlers"
	"github.com/thesishub-dev/thesishub/internal/middleware"
	"github.com/thesishub-dev/thesishub/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/files/view", handlers.ViewFile)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		users := api.Group("/users")
		{
			users.GET("/:id", handlers.GetUserProfile)
			users.PUT("/me", middleware.AuthMiddleware(), handlers.UpdateMyProfile)
		}

		projects := api.Group("/projects")
		{
			// Reads resolve the caller when a credential is present.
			projects.GET("", middleware.OptionalAuthMiddleware(), handlers.ListProjects)
			projects.GET("/:id", middleware.OptionalAuthMiddleware(), handlers.GetProject)
			projects.POST("/:id/view", middleware.OptionalAuthMiddleware(), handlers.TrackView)

			authed := projects.Group("", middleware.AuthMiddleware())
			{
				authed.POST("", handlers.CreateProject)
				authed.PUT("/:id", handlers.UpdateProject)
				authed.PATCH("/:id/status", handlers.UpdateProjectStatus)
				authed.DELETE("/:id", handlers.DeleteProject)

				authed.POST("/:id/like", handlers.ToggleLike)
				authed.POST("/:id/bookmark", handlers.ToggleBookmark)

				authed.POST("/:id/comments", handlers.AddComment)
				authed.PUT("/:id/comments/:cid", handlers.EditComment)
				authed.DELETE("/:id/comments/:cid", handlers.DeleteComment)
				authed.POST("/:id/comments/:cid/replies", handlers.AddReply)
				authed.PUT("/:id/comments/:cid/replies/:rid", handlers.EditReply)
				authed.DELETE("/:id/comments/:cid/replies/:rid", handlers.DeleteReply)
			}
		}

		supervisors := api.Group("/supervisors")
		{
			supervisors.GET("", handlers.ListSupervisors)
			supervisors.GET("/profile/:id", handlers.GetSupervisor)

			authed := supervisors.Group("", middleware.AuthMiddleware())
			{
				authed.GET("/me/stats", handlers.SupervisorStats)
				authed.GET("/me/projects", handlers.ListSupervisedProjects)
				authed.POST("/requests", handlers.SendRequest)
				authed.GET("/requests", handlers.ListRequests)
				authed.POST("/requests/:id/respond", handlers.RespondToRequest)
			}
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.GET("/unread-count", handlers.UnreadNotificationCount)
			notifications.POST("/:id/read", handlers.MarkNotificationRead)
			// PUT so the static segment does not collide with :id in the
			// POST route tree.
			notifications.PUT("/read-all", handlers.MarkAllNotificationsRead)
		}
	}

	return r
}
