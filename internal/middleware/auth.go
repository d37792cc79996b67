package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"stadiumparking/internal/identity"
	"stadiumparking/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const actorKey = "actor"

// AuthClaims represents the JWT claims structure
type AuthClaims struct {
	UserID   models.ID `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 identity tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager; a non-positive ttl means 24 hours
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate creates a new JWT token for a user
func (m *TokenManager) Generate(userID models.ID, username, role string) (string, error) {
	now := time.Now()
	claims := AuthClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token string
func (m *TokenManager) Verify(tokenString string) (identity.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return identity.Claims{}, err
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return identity.Claims{}, errors.New("invalid token")
	}
	return identity.Claims{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, nil
}

// Identify resolves the requester on every request and never rejects it
func Identify(resolver *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := resolver.Resolve(identity.Credentials{
			Token:        c.GetHeader("Authorization"),
			ForwardedFor: c.GetHeader("X-Forwarded-For"),
			RealIP:       c.GetHeader("X-Real-IP"),
			RemoteAddr:   c.Request.RemoteAddr,
		})
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor stored by Identify
func ActorFrom(c *gin.Context) identity.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(identity.Actor); ok {
			return actor
		}
	}
	return identity.Actor{}
}

// AuthMiddleware rejects requests without a valid token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).Authenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole allows only authenticated users holding one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if !actor.Authenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			c.Abort()
			return
		}
		if !actor.HasRole(roles...) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			c.Abort()
			return
		}
		c.Next()
	}
}
