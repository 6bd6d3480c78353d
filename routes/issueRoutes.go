package routes

import (
	"pragatipath-be/controllers"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes. Every route requires a token;
// createLimit, when non-nil, runs before issue creation.
func IssueRoutes(r *gin.Engine, issues *controllers.IssueController, requireAuth, createLimit gin.HandlerFunc) {
	group := r.Group("/issues", requireAuth)
	{
		create := []gin.HandlerFunc{issues.CreateIssue}
		if createLimit != nil {
			create = append([]gin.HandlerFunc{createLimit}, create...)
		}
		group.POST("", create...)
		group.POST("/", create...)
		group.GET("", issues.GetUserIssues)
		group.GET("/", issues.GetUserIssues)
		group.GET("/:id", issues.GetIssue)
	}
}
