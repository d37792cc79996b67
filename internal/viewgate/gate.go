// Package viewgate decides whether a page view should increment a post's
// view counter, de-duplicating repeat views from the same viewer within a
// cooldown window.
package viewgate

import (
	"context"
	"time"

	"stadiumparking/internal/models"
)

// Gate is the view de-duplication ledger.
type Gate interface {
	// ShouldCountView reports whether this view increments the counter.
	// An empty viewerKey always counts.
	ShouldCountView(ctx context.Context, postID models.ID, viewerKey string) (bool, error)
	// Forget drops every record kept for postID.
	Forget(ctx context.Context, postID models.ID) error
}

// Option configures a gate.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
