package identity

import (
	"errors"
	"testing"

	"stadiumparking/internal/models"

	"github.com/stretchr/testify/assert"
)

type stubVerifier map[string]Claims

func (s stubVerifier) Verify(token string) (Claims, error) {
	c, ok := s[token]
	if !ok {
		return Claims{}, errors.New("bad token")
	}
	return c, nil
}

func TestResolveAuthenticated(t *testing.T) {
	r := NewResolver(stubVerifier{"good": {UserID: 9, Username: "kim", Role: models.RoleUser}})

	actor := r.Resolve(Credentials{Token: "Bearer good", ForwardedFor: "1.2.3.4"})

	assert.True(t, actor.Authenticated)
	assert.Equal(t, "user:9", actor.ViewerKey)
	assert.Equal(t, models.IdentifiedAuthor(9), actor.Author())
}

func TestResolveInvalidTokenFallsBackToAddress(t *testing.T) {
	r := NewResolver(stubVerifier{})

	actor := r.Resolve(Credentials{Token: "expired", ForwardedFor: " 10.0.0.1 , 10.0.0.2", RealIP: "9.9.9.9"})

	assert.False(t, actor.Authenticated)
	assert.Equal(t, "ip:10.0.0.1", actor.ViewerKey)
	assert.Equal(t, models.AnonymousAuthor(), actor.Author())
}

func TestResolveAddressOrder(t *testing.T) {
	r := NewResolver(nil)

	assert.Equal(t, "ip:9.9.9.9", r.Resolve(Credentials{RealIP: "9.9.9.9", RemoteAddr: "8.8.8.8:5555"}).ViewerKey)
	assert.Equal(t, "ip:8.8.8.8", r.Resolve(Credentials{RemoteAddr: "8.8.8.8:5555"}).ViewerKey)
	assert.Equal(t, "ip:::1", r.Resolve(Credentials{RemoteAddr: "[::1]:80"}).ViewerKey)
	assert.Equal(t, "ip:unix", r.Resolve(Credentials{RemoteAddr: "unix"}).ViewerKey)
}

func TestResolveNothingKnown(t *testing.T) {
	actor := NewResolver(stubVerifier{}).Resolve(Credentials{Token: "nope"})

	assert.False(t, actor.Authenticated)
	assert.Empty(t, actor.ViewerKey)
}

func TestHasRole(t *testing.T) {
	assert.True(t, Actor{Authenticated: true, Role: models.RoleAdmin}.HasRole(models.RoleAdmin, models.RoleModerator))
	assert.False(t, Actor{Authenticated: true, Role: models.RoleUser}.HasRole(models.RoleAdmin))
	assert.False(t, Actor{Role: models.RoleAdmin}.HasRole(models.RoleAdmin))
}

func TestStripBearer(t *testing.T) {
	assert.Equal(t, "abc", StripBearer("Bearer abc"))
	assert.Equal(t, "abc", StripBearer("bearer abc"))
	assert.Equal(t, "abc", StripBearer("abc"))
	assert.Equal(t, "", StripBearer(""))
}
