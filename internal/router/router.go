package router

import (
	"time"

	"github.com/Invcxze/TaskTracker/internal/handler"
	"github.com/Invcxze/TaskTracker/internal/middleware"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	AuthService       *service.AuthService
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	WorkspaceHandler  *handler.WorkspaceHandler
	TaskHandler       *handler.TaskHandler
	TaskStatusHandler *handler.TaskStatusHandler
	TaskTypeHandler   *handler.TaskTypeHandler
	LabelHandler      *handler.LabelHandler
	DependencyHandler *handler.DependencyHandler
	TaskDetailHandler *handler.TaskDetailHandler
}

func Setup(r *gin.Engine, deps Deps) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")

	// Public routes (no auth)
	auth := api.Group("/auth")
	{
		auth.POST("/sign-up", deps.AuthHandler.SignUp)
		auth.POST("/log-in", deps.AuthHandler.LogIn)
		// log-out answers 403 without a session, so it resolves the
		// token in the handler instead of the middleware.
		auth.POST("/log-out", deps.AuthHandler.LogOut)
	}

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(deps.AuthService))
	{
		authed.GET("/auth/me", deps.AuthHandler.GetMe)

		// Admin routes
		admin := authed.Group("/admin")
		admin.Use(middleware.RequireStaff())
		{
			admin.GET("/users/search", deps.UserHandler.Search)
			admin.GET("/users/:id/permissions", deps.UserHandler.GetPermissions)
			admin.PATCH("/users/:id/permissions", deps.UserHandler.UpdatePermissions)
		}

		// Workspaces and membership
		workspaces := authed.Group("/workspaces")
		{
			workspaces.POST("", deps.WorkspaceHandler.Create)
			workspaces.GET("", deps.WorkspaceHandler.List)
			workspaces.GET("/:id", deps.WorkspaceHandler.GetDetail)
			workspaces.PATCH("/:id", deps.WorkspaceHandler.Update)
			workspaces.DELETE("/:id", deps.WorkspaceHandler.Delete)

			workspaces.GET("/:id/roles", deps.WorkspaceHandler.ListMembers)
			workspaces.POST("/:id/roles", deps.WorkspaceHandler.AddMember)
			workspaces.PATCH("/:id/roles/:member_id", deps.WorkspaceHandler.UpdateMember)
			workspaces.DELETE("/:id/roles/:member_id", deps.WorkspaceHandler.RemoveMember)
		}

		// Task types (global)
		taskTypes := authed.Group("/task-types")
		{
			taskTypes.POST("", deps.TaskTypeHandler.Create)
			taskTypes.GET("", deps.TaskTypeHandler.List)
			taskTypes.GET("/:id", deps.TaskTypeHandler.GetDetail)
			taskTypes.PATCH("/:id", deps.TaskTypeHandler.Update)
			taskTypes.DELETE("/:id", deps.TaskTypeHandler.Delete)
		}

		// Task statuses (workspace-scoped)
		statuses := authed.Group("/task-statuses")
		{
			statuses.POST("", deps.TaskStatusHandler.Create)
			statuses.GET("", deps.TaskStatusHandler.List)
			statuses.GET("/:id", deps.TaskStatusHandler.GetDetail)
			statuses.PATCH("/:id", deps.TaskStatusHandler.Update)
			statuses.DELETE("/:id", deps.TaskStatusHandler.Delete)
		}

		// Labels (workspace-scoped)
		labels := authed.Group("/labels")
		{
			labels.POST("", deps.LabelHandler.Create)
			labels.GET("", deps.LabelHandler.List)
			labels.GET("/:id", deps.LabelHandler.GetDetail)
			labels.PATCH("/:id", deps.LabelHandler.Update)
			labels.DELETE("/:id", deps.LabelHandler.Delete)
		}

		// Tasks
		tasks := authed.Group("/tasks")
		{
			tasks.POST("", deps.TaskHandler.Create)
			tasks.GET("", deps.TaskHandler.List)
			tasks.GET("/search", deps.TaskHandler.Search)
			tasks.GET("/:id", deps.TaskHandler.GetDetail)
			tasks.PATCH("/:id", deps.TaskHandler.Update)
			tasks.DELETE("/:id", deps.TaskHandler.Delete)
			tasks.POST("/:id/add_watcher", deps.TaskHandler.AddWatcher)
			tasks.POST("/:id/remove_watcher", deps.TaskHandler.RemoveWatcher)

			// Nested task resources
			tasks.GET("/:id/comments", deps.TaskDetailHandler.ListComments)
			tasks.POST("/:id/comments", deps.TaskDetailHandler.CreateComment)
			tasks.PATCH("/:id/comments/:comment_id", deps.TaskDetailHandler.UpdateComment)
			tasks.DELETE("/:id/comments/:comment_id", deps.TaskDetailHandler.DeleteComment)

			tasks.GET("/:id/attachments", deps.TaskDetailHandler.ListAttachments)
			tasks.POST("/:id/attachments", deps.TaskDetailHandler.CreateAttachment)
			tasks.GET("/:id/attachments/:attachment_id/download", deps.TaskDetailHandler.DownloadAttachment)
			tasks.DELETE("/:id/attachments/:attachment_id", deps.TaskDetailHandler.DeleteAttachment)

			tasks.GET("/:id/checklist", deps.TaskDetailHandler.ListChecklist)
			tasks.POST("/:id/checklist", deps.TaskDetailHandler.CreateChecklistItem)
			tasks.PATCH("/:id/checklist/:item_id", deps.TaskDetailHandler.UpdateChecklistItem)
			tasks.DELETE("/:id/checklist/:item_id", deps.TaskDetailHandler.DeleteChecklistItem)

			tasks.GET("/:id/logs", deps.TaskDetailHandler.ListLogs)
		}

		// Task dependencies
		dependencies := authed.Group("/task-dependencies")
		{
			dependencies.POST("", deps.DependencyHandler.Create)
			dependencies.GET("", deps.DependencyHandler.List)
			dependencies.GET("/:id", deps.DependencyHandler.GetDetail)
			dependencies.DELETE("/:id", deps.DependencyHandler.Delete)
		}
	}
}
