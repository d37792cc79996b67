package models

import "time"

// Post represents a parking tip posted under a stadium.
// Comments, replies, images and recommendations are owned by the post.
type Post struct {
	ID             ID     `gorm:"primaryKey"`
	StadiumID      ID     `gorm:"not null;index"`
	AuthorID       *ID    `gorm:"index"` // nil for anonymous or deleted accounts
	AuthorName     string `gorm:"size:64;not null"`
	Title          string `gorm:"not null"`
	Message        string `gorm:"type:text;not null"`
	ViewCount      int64  `gorm:"not null;default:0"`
	RecommendCount int64  `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Images          []PostImage      `gorm:"foreignKey:PostID"`
	Recommendations []Recommendation `gorm:"foreignKey:PostID"`
	Comments        []Comment        `gorm:"foreignKey:PostID"`
}

// Author returns the post author.
func (p *Post) Author() Author { return AuthorFromColumn(p.AuthorID) }

// PostImage is a stored image reference; Position keeps upload order.
type PostImage struct {
	ID       ID     `gorm:"primaryKey"`
	PostID   ID     `gorm:"not null;index"`
	Position int    `gorm:"not null"`
	Path     string `gorm:"not null"`
}

func (PostImage) TableName() string { return "post_images" }

// Comment is a top-level comment on a post.
type Comment struct {
	ID         ID     `gorm:"primaryKey"`
	PostID     ID     `gorm:"not null;index"`
	AuthorID   *ID    `gorm:"index"`
	AuthorName string `gorm:"size:64;not null"`
	Message    string `gorm:"type:text;not null"`
	CreatedAt  time.Time

	Replies []Reply `gorm:"foreignKey:CommentID"`
}

func (Comment) TableName() string { return "post_comments" }

// Author returns the comment author.
func (c *Comment) Author() Author { return AuthorFromColumn(c.AuthorID) }

// Reply belongs to exactly one comment.
type Reply struct {
	ID         ID     `gorm:"primaryKey"`
	CommentID  ID     `gorm:"not null;index"`
	AuthorID   *ID    `gorm:"index"`
	AuthorName string `gorm:"size:64;not null"`
	Message    string `gorm:"type:text;not null"`
	CreatedAt  time.Time
}

func (Reply) TableName() string { return "comment_replies" }

// Author returns the reply author.
func (r *Reply) Author() Author { return AuthorFromColumn(r.AuthorID) }

// Recommendation is one member of a post's recommendation set.
// The composite primary key makes a user appear at most once per post.
type Recommendation struct {
	PostID    ID `gorm:"primaryKey;autoIncrement:false"`
	UserID    ID `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

func (Recommendation) TableName() string { return "post_recommendations" }

// ViewRecord is the per (post, viewer) de-duplication ledger entry.
type ViewRecord struct {
	PostID       ID        `gorm:"primaryKey;autoIncrement:false"`
	ViewerKey    string    `gorm:"primaryKey;size:191"`
	LastViewedAt time.Time `gorm:"not null"`
}

func (ViewRecord) TableName() string { return "post_view_records" }

// CreateCommentRequest represents the request body for comments and replies
type CreateCommentRequest struct {
	Message  string `json:"message"`
	Nickname string `json:"nickname"`
}
