package routes

import (
	"github.com/gin-gonic/gin"

	"graduation-project-api/controllers"
	"graduation-project-api/middleware"
	"graduation-project-api/models"
)

func SetupRoutes(router *gin.Engine) {
	// Public gallery API
	api := router.Group("/api")
	{
		api.GET("/projects", controllers.GetPublicProjects)
		api.GET("/projects/:id", controllers.GetPublicProject)
		api.GET("/projects/statistics", controllers.GetPublicStatistics)
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Graduation Project Tracker API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Accounts with a forced password change can only reach
			// these two endpoints.
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			active := protected.Group("")
			active.Use(middleware.RequirePasswordChanged())
			{
				// Notifications
				notifications := active.Group("/notifications")
				{
					notifications.GET("", controllers.GetNotifications)
					notifications.GET("/counter", controllers.GetNotificationCounter)
					notifications.PUT("/:id/read", controllers.MarkNotificationRead)
					notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
				}

				// Dashboard
				active.GET("/dashboard/stats", controllers.GetDashboardStats)

				// Projects
				projects := active.Group("/projects")
				{
					projects.GET("", controllers.GetProjects)
					projects.GET("/:id", controllers.GetProject)
					projects.POST("/proposals", controllers.CreateProposal)

					// Participant workflow actions; each handler gates on
					// the caller's relation to the project.
					projects.POST("/:id/approve", middleware.RequireRole(models.RoleProfessor), controllers.ApproveProject)
					projects.POST("/:id/start", middleware.RequireRole(models.RoleStudent), controllers.StartProject)
					projects.POST("/:id/complete", middleware.RequireRole(models.RoleProfessor), controllers.CompleteProject)
					projects.POST("/:id/submit-review", middleware.RequireRole(models.RoleStudent), controllers.CreateSubmission)
					projects.POST("/:id/schedule-defense", middleware.RequireRole(models.RoleProfessor), controllers.ScheduleDefense)
					projects.POST("/:id/defended", middleware.RequireRole(models.RoleProfessor), controllers.MarkDefended)
					projects.POST("/:id/grade", middleware.RequireRole(models.RoleProfessor), controllers.AssignGrade)

					// Comments
					projects.GET("/:id/comments", controllers.GetProjectComments)
					projects.POST("/:id/comments", controllers.AddComment)

					// Artifacts
					projects.POST("/:id/documents/:kind", controllers.UploadProjectDocument)
					projects.GET("/:id/documents/:kind", controllers.DownloadProjectDocument)
				}

				comments := active.Group("/comments")
				{
					comments.PUT("/:commentId", controllers.EditComment)
					comments.DELETE("/:commentId", controllers.DeleteComment)
					comments.POST("/:commentId/acknowledge", middleware.RequireRole(models.RoleStudent), controllers.AcknowledgeComment)
				}

				// Admin area
				admin := active.Group("/admin")
				admin.Use(middleware.RequireRole(models.RoleAdmin))
				{
					perms := controllers.PermissionSvc()

					adminProjects := admin.Group("/projects")
					{
						adminProjects.POST("", middleware.RequirePermission(perms, models.PermManageProjects), controllers.AdminCreateProject)
						adminProjects.PUT("/:id", middleware.RequirePermission(perms, models.PermManageProjects), controllers.AdminUpdateProject)
						adminProjects.DELETE("/:id", middleware.RequirePermission(perms, models.PermManageProjects), controllers.AdminDeleteProject)
						adminProjects.POST("/:id/transition", middleware.RequirePermission(perms, models.PermManageProjects), controllers.AdminTransitionProject)
						adminProjects.POST("/:id/visibility", middleware.RequirePermission(perms, models.PermManageGallery), controllers.AdminSetVisibility)
						adminProjects.GET("/:id/activity", controllers.GetProjectActivityLog)
					}

					submissions := admin.Group("/submissions")
					submissions.Use(middleware.RequirePermission(perms, models.PermReviewSubmissions))
					{
						submissions.GET("", controllers.GetSubmissions)
						submissions.GET("/:id", controllers.GetSubmission)
						submissions.POST("/:id/review", controllers.ReviewSubmission)
					}

					users := admin.Group("")
					users.Use(middleware.RequirePermission(perms, models.PermManageUsers))
					{
						users.POST("/students", controllers.AdminCreateStudent)
						users.POST("/professors", controllers.AdminCreateProfessor)
						users.GET("/users", controllers.AdminListUsers)
						users.DELETE("/users/:id", controllers.AdminDeactivateUser)
						users.POST("/users/:id/roles", controllers.AdminAssignRole)
						users.DELETE("/users/:id/roles/:roleId", controllers.AdminRemoveRole)
						users.POST("/users/:id/permissions", controllers.AdminGrantPermission)
						users.DELETE("/users/:id/permissions/:code", controllers.AdminRevokePermission)
						users.GET("/roles", controllers.AdminListRoles)
						users.POST("/roles", controllers.AdminCreateRole)
						users.PUT("/roles/:id/permissions", controllers.AdminUpdateRolePermissions)
						users.DELETE("/roles/:id", controllers.AdminDeleteRole)
					}

					admin.GET("/audit-logs", middleware.RequirePermission(perms, models.PermViewAuditLogs), controllers.GetAuditLogs)
					admin.GET("/export/projects", middleware.RequirePermission(perms, models.PermExportData), controllers.ExportProjectsCSV)
				}
			}
		}
	}
}
