package handlers

import (
	"errors"
	"net/http"

	"stadiumparking/internal/config"
	"stadiumparking/internal/middleware"
	"stadiumparking/internal/models"
	"stadiumparking/internal/repository"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	users  repository.UserRepository
	tokens *middleware.TokenManager
	cfg    *config.Config
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users repository.UserRepository, tokens *middleware.TokenManager, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, cfg: cfg}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Nickname     string `json:"nickname"`
	Name         string `json:"name"`
	ModeratorKey string `json:"moderator_key,omitempty"`
	AdminKey     string `json:"admin_key,omitempty"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// roleFor grants elevated roles only for matching, configured keys.
func (h *AuthHandler) roleFor(req RegisterRequest) string {
	switch {
	case h.cfg.AdminKey != "" && req.AdminKey == h.cfg.AdminKey:
		return models.RoleAdmin
	case h.cfg.ModeratorKey != "" && req.ModeratorKey == h.cfg.ModeratorKey:
		return models.RoleModerator
	default:
		return models.RoleUser
	}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Nickname: req.Nickname,
		Name:     req.Name,
		Role:     h.roleFor(req),
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
			return
		}
		respondError(c, err)
		return
	}

	h.issueToken(c, http.StatusCreated, &user)
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.issueToken(c, http.StatusOK, user)
}

func (h *AuthHandler) issueToken(c *gin.Context, status int, user *models.User) {
	token, err := h.tokens.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(status, gin.H{
		"token": token,
		"user":  user,
	})
}
