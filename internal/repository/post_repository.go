package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stadiumparking/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// SortOrder selects the listing order.
type SortOrder string

const (
	SortLatest  SortOrder = "latest"
	SortPopular SortOrder = "popular"
)

// PostFilter narrows post listings. A zero StadiumID matches every stadium.
type PostFilter struct {
	StadiumID models.ID
	Query     string
	// SearchComments extends Query to comment messages.
	SearchComments bool
	// SearchAuthor extends Query to the author name.
	SearchAuthor bool
	Sort         SortOrder
	// WithThreads preloads comments and replies.
	WithThreads bool
	Offset      int
	Limit       int
}

// PostRepository stores posts together with their comment threads and
// recommendation sets.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Find(ctx context.Context, stadiumID, postID models.ID) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	CountComments(ctx context.Context, postIDs []models.ID) (map[models.ID]int, error)
	ListByAuthor(ctx context.Context, userID models.ID, limit int) ([]models.Post, int64, error)
	AppendComment(ctx context.Context, postID models.ID, comment *models.Comment) error
	AppendReply(ctx context.Context, postID, commentID models.ID, reply *models.Reply) error
	ToggleRecommendation(ctx context.Context, postID, userID models.ID) (bool, error)
	IncrementViews(ctx context.Context, postID models.ID) error
	Delete(ctx context.Context, postID models.ID) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a gorm-backed PostRepository
func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func orderByID(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Order(table + ".id ASC") }
}

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("post_images.position ASC") }).
		Preload("Recommendations")
}

func preloadThreads(db *gorm.DB) *gorm.DB {
	return db.Preload("Comments", orderByID("post_comments")).
		Preload("Comments.Replies", orderByID("comment_replies"))
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *postRepository) Find(ctx context.Context, stadiumID, postID models.ID) (*models.Post, error) {
	var post models.Post
	q := r.db.WithContext(ctx).Scopes(preloadImages, preloadThreads).Where("id = ?", postID)
	if stadiumID != 0 {
		q = q.Where("stadium_id = ?", stadiumID)
	}
	if err := q.Take(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

// escapeLike makes user input literal inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if filter.StadiumID != 0 {
		q = q.Where("posts.stadium_id = ?", filter.StadiumID)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		cond := r.db.Where(`LOWER(posts.title) LIKE ? ESCAPE '\'`, pattern).
			Or(`LOWER(posts.message) LIKE ? ESCAPE '\'`, pattern)
		if filter.SearchAuthor {
			cond = cond.Or(`LOWER(posts.author_name) LIKE ? ESCAPE '\'`, pattern)
		}
		if filter.SearchComments {
			cond = cond.Or(`EXISTS (SELECT 1 FROM post_comments WHERE post_comments.post_id = posts.id AND LOWER(post_comments.message) LIKE ? ESCAPE '\')`, pattern)
		}
		q = q.Where(cond)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	switch filter.Sort {
	case SortPopular:
		q = q.Order("posts.recommend_count DESC").Order("posts.view_count DESC").Order("posts.created_at DESC")
	default:
		q = q.Order("posts.created_at DESC")
	}
	q = q.Order("posts.id DESC").Scopes(preloadImages)
	if filter.WithThreads {
		q = q.Scopes(preloadThreads)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

func (r *postRepository) CountComments(ctx context.Context, postIDs []models.ID) (map[models.ID]int, error) {
	counts := make(map[models.ID]int, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		PostID models.ID
		N      int
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	for _, row := range rows {
		counts[row.PostID] = row.N
	}
	return counts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, userID models.ID, limit int) ([]models.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	var posts []models.Post
	if err := q.Scopes(preloadImages).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

func (r *postRepository) postExists(tx *gorm.DB, postID models.ID) error {
	var n int64
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&n).Error; err != nil {
		return fmt.Errorf("check post: %w", err)
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

// AppendComment inserts a row; concurrent appends never overwrite each other.
func (r *postRepository) AppendComment(ctx context.Context, postID models.ID, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.postExists(tx, postID); err != nil {
			return err
		}
		comment.PostID = postID
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return nil
	})
}

// AppendReply fails with ErrCommentNotFound unless commentID belongs to postID.
func (r *postRepository) AppendReply(ctx context.Context, postID, commentID models.ID, reply *models.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.postExists(tx, postID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Comment{}).
			Where("id = ? AND post_id = ?", commentID, postID).
			Count(&n).Error; err != nil {
			return fmt.Errorf("check comment: %w", err)
		}
		if n == 0 {
			return ErrCommentNotFound
		}
		reply.CommentID = commentID
		if err := tx.Create(reply).Error; err != nil {
			return fmt.Errorf("create reply: %w", err)
		}
		return nil
	})
}

// ToggleRecommendation flips userID's membership in the post's recommendation
// set and recomputes recommend_count from the set in the same transaction.
// It reports whether the user recommends the post afterwards.
func (r *postRepository) ToggleRecommendation(ctx context.Context, postID, userID models.ID) (bool, error) {
	var recommended bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.postExists(tx, postID); err != nil {
			return err
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Recommendation{})
		if res.Error != nil {
			return fmt.Errorf("remove recommendation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			rec := models.Recommendation{PostID: postID, UserID: userID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error; err != nil {
				return fmt.Errorf("add recommendation: %w", err)
			}
			recommended = true
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("recommend_count", gorm.Expr("(SELECT COUNT(*) FROM post_recommendations WHERE post_recommendations.post_id = ?)", postID)).
			Error; err != nil {
			return fmt.Errorf("recount recommendations: %w", err)
		}
		return nil
	})
	return recommended, err
}

func (r *postRepository) IncrementViews(ctx context.Context, postID models.ID) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment views: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Delete removes the post with its comments, replies, images and recommendations.
func (r *postRepository) Delete(ctx context.Context, postID models.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", postID)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.Reply{}).Error; err != nil {
			return fmt.Errorf("delete replies: %w", err)
		}
		for _, child := range []interface{}{&models.Comment{}, &models.PostImage{}, &models.Recommendation{}} {
			if err := tx.Where("post_id = ?", postID).Delete(child).Error; err != nil {
				return fmt.Errorf("delete post children: %w", err)
			}
		}
		res := tx.Where("id = ?", postID).Delete(&models.Post{})
		if res.Error != nil {
			return fmt.Errorf("delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}
