package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stadiumparking/internal/identity"
	"stadiumparking/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Generate(5, "lee", models.RoleModerator)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.ID(5), claims.UserID)
	assert.Equal(t, "lee", claims.Username)
	assert.Equal(t, models.RoleModerator, claims.Role)
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	token, err := NewTokenManager("other", time.Hour).Generate(5, "lee", models.RoleUser)
	require.NoError(t, err)
	_, err = NewTokenManager("secret", time.Hour).Verify(token)
	assert.Error(t, err)

	// NewTokenManager replaces a non-positive ttl, so build the expiring manager directly
	m := &TokenManager{secret: []byte("secret"), ttl: -time.Minute}
	expired, err := m.Generate(5, "lee", models.RoleUser)
	require.NoError(t, err)
	_, err = m.Verify(expired)
	assert.Error(t, err)

	_, err = m.Verify("garbage")
	assert.Error(t, err)
}

func newTestEngine(m *TokenManager, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identify(identity.NewResolver(m)))
	r.GET("/whoami", guard, func(c *gin.Context) {
		actor := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"viewer": actor.ViewerKey, "auth": actor.Authenticated})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	r := newTestEngine(m, AuthMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _ := m.Generate(3, "park", models.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"viewer":"user:3"`)
}

func TestIdentifyAnonymousUsesForwardedFor(t *testing.T) {
	r := newTestEngine(NewTokenManager("secret", time.Hour), func(c *gin.Context) { c.Next() })

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer broken")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"viewer":"ip:203.0.113.7"`)
	assert.Contains(t, w.Body.String(), `"auth":false`)
}

func TestRequireRole(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	r := newTestEngine(m, RequireRole(models.RoleAdmin))

	userToken, _ := m.Generate(1, "user", models.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", userToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, _ := m.Generate(2, "admin", models.RoleAdmin)
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
