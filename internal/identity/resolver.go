// Package identity derives who is making a request: an authenticated user
// when a valid token is present, otherwise a network-origin viewer key.
package identity

import (
	"net"
	"strings"

	"stadiumparking/internal/models"
)

// Claims is what a verified identity token carries.
type Claims struct {
	UserID   models.ID
	Username string
	Role     string
}

// TokenVerifier checks a signed identity token.
type TokenVerifier interface {
	Verify(token string) (Claims, error)
}

// Credentials is the request material identity is derived from.
type Credentials struct {
	Token        string
	ForwardedFor string
	RealIP       string
	RemoteAddr   string
}

// Actor is the resolved requester.
type Actor struct {
	UserID        models.ID
	Username      string
	Role          string
	Authenticated bool
	// ViewerKey is "user:<id>", "ip:<addr>" or empty when nothing identifies the requester.
	ViewerKey string
}

// Author returns the author identity new content by this actor gets.
func (a Actor) Author() models.Author {
	if !a.Authenticated {
		return models.AnonymousAuthor()
	}
	return models.IdentifiedAuthor(a.UserID)
}

// HasRole reports whether the actor is authenticated with one of roles.
func (a Actor) HasRole(roles ...string) bool {
	if !a.Authenticated {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Resolver turns credentials into an Actor.
type Resolver struct {
	verifier TokenVerifier
}

// NewResolver creates a Resolver. A nil verifier treats every request as anonymous.
func NewResolver(verifier TokenVerifier) *Resolver {
	return &Resolver{verifier: verifier}
}

// Resolve never fails: a token that does not verify is treated as no token.
func (r *Resolver) Resolve(cred Credentials) Actor {
	if claims, ok := r.verify(cred.Token); ok {
		return Actor{
			UserID:        claims.UserID,
			Username:      claims.Username,
			Role:          claims.Role,
			Authenticated: true,
			ViewerKey:     "user:" + claims.UserID.String(),
		}
	}
	if addr := ClientAddress(cred.ForwardedFor, cred.RealIP, cred.RemoteAddr); addr != "" {
		return Actor{ViewerKey: "ip:" + addr}
	}
	return Actor{}
}

func (r *Resolver) verify(token string) (Claims, bool) {
	token = StripBearer(token)
	if r == nil || r.verifier == nil || token == "" {
		return Claims{}, false
	}
	claims, err := r.verifier.Verify(token)
	if err != nil || claims.UserID == 0 {
		return Claims{}, false
	}
	return claims, true
}

// StripBearer removes an optional "Bearer " prefix.
func StripBearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// ClientAddress picks the first forwarded-for entry, then the real-ip header,
// then the peer address without its port.
func ClientAddress(forwardedFor, realIP, remoteAddr string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP = strings.TrimSpace(realIP); realIP != "" {
		return realIP
	}
	remoteAddr = strings.TrimSpace(remoteAddr)
	if remoteAddr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
