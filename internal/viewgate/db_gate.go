package viewgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stadiumparking/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBGate keeps one ViewRecord row per (post, viewer).
type DBGate struct {
	db       *gorm.DB
	cooldown time.Duration
	now      func() time.Time
}

// NewDBGate creates a database-backed gate. A cooldown <= 0 counts every view.
func NewDBGate(db *gorm.DB, cooldown time.Duration, opts ...Option) *DBGate {
	o := buildOptions(opts)
	return &DBGate{db: db, cooldown: cooldown, now: o.now}
}

func (g *DBGate) ShouldCountView(ctx context.Context, postID models.ID, viewerKey string) (bool, error) {
	if viewerKey == "" {
		return true, nil
	}
	now := g.now().UTC()

	var rec models.ViewRecord
	err := g.db.WithContext(ctx).
		Where("post_id = ? AND viewer_key = ?", postID, viewerKey).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return g.claimFirstView(ctx, postID, viewerKey, now)
	}
	if err != nil {
		return false, fmt.Errorf("load view record: %w", err)
	}

	if g.cooldown <= 0 {
		if err := g.db.WithContext(ctx).
			Model(&models.ViewRecord{}).
			Where("post_id = ? AND viewer_key = ?", postID, viewerKey).
			Update("last_viewed_at", now).Error; err != nil {
			return false, fmt.Errorf("refresh view record: %w", err)
		}
		return true, nil
	}

	if now.Sub(rec.LastViewedAt) < g.cooldown {
		return false, nil
	}

	// Only the request that still sees an expired record gets to refresh it.
	res := g.db.WithContext(ctx).
		Model(&models.ViewRecord{}).
		Where("post_id = ? AND viewer_key = ? AND last_viewed_at <= ?", postID, viewerKey, now.Add(-g.cooldown)).
		Update("last_viewed_at", now)
	if res.Error != nil {
		return false, fmt.Errorf("refresh view record: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// claimFirstView inserts the record; losing the insert race means another
// request already counted this view.
func (g *DBGate) claimFirstView(ctx context.Context, postID models.ID, viewerKey string, now time.Time) (bool, error) {
	rec := models.ViewRecord{PostID: postID, ViewerKey: viewerKey, LastViewedAt: now}
	res := g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return false, fmt.Errorf("create view record: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (g *DBGate) Forget(ctx context.Context, postID models.ID) error {
	if err := g.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.ViewRecord{}).Error; err != nil {
		return fmt.Errorf("delete view records: %w", err)
	}
	return nil
}
