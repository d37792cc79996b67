package handlers

import (
	"net/http"

	"stadiumparking/internal/middleware"
	"stadiumparking/internal/models"
	"stadiumparking/internal/service"

	"github.com/gin-gonic/gin"
)

// CommentHandler handles comment and reply requests
type CommentHandler struct {
	posts *service.PostService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(posts *service.PostService) *CommentHandler {
	return &CommentHandler{posts: posts}
}

// CreateComment appends a comment to a post. Anonymous callers may comment.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	stadiumID, ok := pathID(c, "stadium_id")
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.posts.AddComment(c.Request.Context(), stadiumID, postID, middleware.ActorFrom(c),
		service.CommentInput{Message: req.Message, Nickname: req.Nickname})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// CreateReply appends a reply to a comment of the post
func (h *CommentHandler) CreateReply(c *gin.Context) {
	stadiumID, ok := pathID(c, "stadium_id")
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.posts.AddReply(c.Request.Context(), stadiumID, postID, commentID, middleware.ActorFrom(c),
		service.CommentInput{Message: req.Message, Nickname: req.Nickname})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}
