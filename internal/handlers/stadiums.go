package handlers

import (
	"errors"
	"net/http"
	"strings"

	"stadiumparking/internal/models"
	"stadiumparking/internal/repository"

	"github.com/gin-gonic/gin"
)

// StadiumHandler handles the stadium catalogue
type StadiumHandler struct {
	stadiums repository.StadiumRepository
}

// NewStadiumHandler creates a new StadiumHandler
func NewStadiumHandler(stadiums repository.StadiumRepository) *StadiumHandler {
	return &StadiumHandler{stadiums: stadiums}
}

// GetStadiums returns paginated stadiums ordered by name
func (h *StadiumHandler) GetStadiums(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	all, err := h.stadiums.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	total := int64(len(all))
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	c.JSON(http.StatusOK, gin.H{
		"stadiums": all[start:end],
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// GetStadium returns a single stadium
func (h *StadiumHandler) GetStadium(c *gin.Context) {
	id, ok := pathID(c, "stadium_id")
	if !ok {
		return
	}

	stadium, err := h.stadiums.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStadiumNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stadium not found"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stadium)
}

// CreateStadium adds a stadium to the catalogue
func (h *StadiumHandler) CreateStadium(c *gin.Context) {
	var req models.CreateStadiumRequest
	if !bindJSON(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	stadium := models.Stadium{
		Name:      name,
		Address:   strings.TrimSpace(req.Address),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.stadiums.Create(c.Request.Context(), &stadium); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stadium)
}
