package service

import (
	"context"
	"fmt"
	"strings"

	"stadiumparking/internal/identity"
	"stadiumparking/internal/models"
)

// AnonymousName is stored when no better display name is known.
const AnonymousName = "anonymous"

const maxNameLength = 64

// ResolveDisplayName picks the profile's nickname, name or email local part,
// then the client-supplied name, then AnonymousName.
func ResolveDisplayName(profile *models.User, provided string) string {
	name := profile.DisplayName()
	if name == "" {
		name = strings.TrimSpace(provided)
	}
	if name == "" {
		name = AnonymousName
	}
	if r := []rune(name); len(r) > maxNameLength {
		name = string(r[:maxNameLength])
	}
	return name
}

// resolveAuthor returns the author identity and the denormalized name new
// content by actor is stored with.
func (s *PostService) resolveAuthor(ctx context.Context, actor identity.Actor, provided string) (models.Author, string, error) {
	author := actor.Author()
	userID, ok := author.UserID()
	if !ok {
		return author, ResolveDisplayName(nil, provided), nil
	}
	profile, err := s.users.FindProfile(ctx, userID)
	if err != nil {
		return author, "", fmt.Errorf("resolve author: %w", err)
	}
	return author, ResolveDisplayName(profile, provided), nil
}
