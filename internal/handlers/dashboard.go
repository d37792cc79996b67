package handlers

import (
	"net/http"

	"stadiumparking/internal/middleware"
	"stadiumparking/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler handles dashboard-related requests
type DashboardHandler struct {
	posts *service.PostService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(posts *service.PostService) *DashboardHandler {
	return &DashboardHandler{posts: posts}
}

// GetDashboard returns the post activity of the authenticated user
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	activity, err := h.posts.MyActivity(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_stats": gin.H{
			"post_count": activity.PostCount,
		},
		"recent_posts": activity.RecentPosts,
	})
}
