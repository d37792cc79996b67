package handlers

import (
	"net/http"

	"stadiumparking/internal/models"
	"stadiumparking/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves moderation endpoints. Routes must be guarded by RequireRole.
type AdminHandler struct {
	posts *service.PostService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(posts *service.PostService) *AdminHandler {
	return &AdminHandler{posts: posts}
}

// ListPosts lists post summaries across stadiums
func (h *AdminHandler) ListPosts(c *gin.Context) {
	opts := service.AdminListOptions{
		Query: c.Query("q"),
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
	}
	if raw := c.Query("stadium_id"); raw != "" {
		id, err := models.ParseID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stadium_id"})
			return
		}
		opts.StadiumID = id
	}

	page, err := h.posts.AdminListPosts(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// DeletePost removes any post
func (h *AdminHandler) DeletePost(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	if err := h.posts.AdminDeletePost(c.Request.Context(), postID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}
