package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"stadiumparking/internal/middleware"
	"stadiumparking/internal/service"

	"github.com/gin-gonic/gin"
)

// PostHandler handles post-related requests
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// GetPosts returns paginated posts of a stadium
func (h *PostHandler) GetPosts(c *gin.Context) {
	stadiumID, ok := pathID(c, "stadium_id")
	if !ok {
		return
	}

	page, err := h.posts.ListPosts(c.Request.Context(), stadiumID, service.ListOptions{
		Query: c.Query("q"),
		Sort:  c.Query("sort"),
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
	}, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPost returns a single post and counts the view
func (h *PostHandler) GetPost(c *gin.Context) {
	stadiumID, ok := pathID(c, "stadium_id")
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), stadiumID, postID, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post from a multipart form
func (h *PostHandler) CreatePost(c *gin.Context) {
	stadiumID, ok := pathID(c, "stadium_id")
	if !ok {
		return
	}

	var files []*multipart.FileHeader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
			return
		}
		files = append(files, form.File["images"]...)
		files = append(files, form.File["images[]"]...)
	}

	in := service.CreatePostInput{
		StadiumID: stadiumID,
		Title:     c.PostForm("title"),
		Message:   c.PostForm("message"),
		Nickname:  c.PostForm("nickname"),
	}
	for _, fh := range files {
		in.Images = append(in.Images, uploadFromHeader(fh))
	}

	post, err := h.posts.CreatePost(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func uploadFromHeader(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open:        func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// DeletePost deletes a post (only by the author)
func (h *PostHandler) DeletePost(c *gin.Context) {
	stadiumID, ok := pathID(c, "stadium_id")
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), stadiumID, postID, middleware.ActorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// Recommend toggles the caller's recommendation of a post
func (h *PostHandler) Recommend(c *gin.Context) {
	stadiumID, ok := pathID(c, "stadium_id")
	if !ok {
		return
	}
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	post, err := h.posts.ToggleRecommend(c.Request.Context(), stadiumID, postID, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
