package main

import "github.com/gin-gonic/gin"

func SetupRoutes(r *gin.Engine) {

	// Public Routes
	r.POST("/auth/register", Register)
	r.POST("/auth/login", Login)

	// Protected Routes
	authorized := r.Group("/api")
	authorized.Use(AuthMiddleware())
	{
		// INVITATIONS
		authorized.GET("/invitations/my-invitations", GetMyInvitations)
		authorized.GET("/invitations/my-invitations/pending", GetPendingInvitations)
		authorized.GET("/invitations/:id", GetInvitation)
		authorized.POST("/invitations/:id/respond", RespondToInvitation)

		// TASKS
		authorized.POST("/tasks", CreateTask)
		authorized.GET("/tasks/my-created-tasks", GetMyCreatedTasks)
		authorized.POST("/tasks/:id/assign", AssignTask)
		authorized.GET("/tasks/my-assignments", GetMyAssignments)
		authorized.PATCH("/tasks/assignments/:id/status", UpdateAssignmentStatus)
		authorized.GET("/tasks/completed", GetCompletedTasks)

		// SUBMISSIONS
		authorized.POST("/submissions", CreateSubmission)
		authorized.GET("/submissions/:id", GetSubmission)
		authorized.GET("/submissions/files/:fileId", DownloadSubmissionFile)

		// ADMIN
		admin := authorized.Group("/admin")
		admin.Use(AdminMiddleware())
		{
			admin.GET("/users", GetAllUsers)
			admin.GET("/users/:id", GetUser)
			admin.PATCH("/users/:id", UpdateUser)

			admin.GET("/events", GetAllEvents)
			admin.POST("/events", CreateEvent)
			admin.GET("/events/:id", GetEvent)
			admin.PUT("/events/:id", UpdateEvent)
			admin.PATCH("/events/:id/status", UpdateEventStatus)
			admin.DELETE("/events/:id", DeleteEvent)
		}
	}
}
