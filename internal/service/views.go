package service

import (
	"time"

	"stadiumparking/internal/identity"
	"stadiumparking/internal/models"
)

// ReplyView is the JSON shape of a reply.
type ReplyView struct {
	ID         string    `json:"id"`
	AuthorID   *string   `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CommentView is the JSON shape of a comment with its replies.
type CommentView struct {
	ID         string      `json:"id"`
	AuthorID   *string     `json:"authorId"`
	AuthorName string      `json:"authorName"`
	Message    string      `json:"message"`
	Replies    []ReplyView `json:"replies"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// PostView is a post annotated for one viewer.
type PostView struct {
	ID             string        `json:"id"`
	StadiumID      string        `json:"stadiumId"`
	AuthorID       *string       `json:"authorId"`
	AuthorName     string        `json:"authorName"`
	Title          string        `json:"title"`
	Message        string        `json:"message"`
	Images         []string      `json:"images"`
	ViewCount      int64         `json:"viewCount"`
	RecommendedBy  []string      `json:"recommendedBy"`
	RecommendCount int64         `json:"recommendCount"`
	Recommended    bool          `json:"recommended"`
	CommentCount   int           `json:"commentCount"`
	Comments       []CommentView `json:"comments"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// PostSummary is the lightweight listing shape without comment bodies.
type PostSummary struct {
	ID             string    `json:"id"`
	StadiumID      string    `json:"stadiumId"`
	AuthorID       *string   `json:"authorId"`
	AuthorName     string    `json:"authorName"`
	Title          string    `json:"title"`
	ImageCount     int       `json:"imageCount"`
	ViewCount      int64     `json:"viewCount"`
	RecommendCount int64     `json:"recommendCount"`
	CommentCount   int       `json:"commentCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// PostPage is a page of annotated posts.
type PostPage struct {
	Posts      []PostView `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// SummaryPage is a page of post summaries.
type SummaryPage struct {
	Posts      []PostSummary `json:"posts"`
	Pagination Pagination    `json:"pagination"`
}

// Activity is the dashboard of the calling user.
type Activity struct {
	PostCount   int64         `json:"postCount"`
	RecentPosts []PostSummary `json:"recentPosts"`
}

func authorIDString(a models.Author) *string {
	id, ok := a.UserID()
	if !ok {
		return nil
	}
	s := id.String()
	return &s
}

func newPostView(p *models.Post, viewer identity.Actor) PostView {
	v := PostView{
		ID:             p.ID.String(),
		StadiumID:      p.StadiumID.String(),
		AuthorID:       authorIDString(p.Author()),
		AuthorName:     p.AuthorName,
		Title:          p.Title,
		Message:        p.Message,
		Images:         make([]string, 0, len(p.Images)),
		ViewCount:      p.ViewCount,
		RecommendedBy:  make([]string, 0, len(p.Recommendations)),
		RecommendCount: p.RecommendCount,
		CommentCount:   len(p.Comments),
		Comments:       make([]CommentView, 0, len(p.Comments)),
		CreatedAt:      p.CreatedAt,
	}
	for _, img := range p.Images {
		v.Images = append(v.Images, img.Path)
	}

	var viewerID string
	if viewer.Authenticated {
		viewerID = viewer.UserID.String()
	}
	for _, rec := range p.Recommendations {
		uid := rec.UserID.String()
		v.RecommendedBy = append(v.RecommendedBy, uid)
		if viewerID != "" && uid == viewerID {
			v.Recommended = true
		}
	}

	for i := range p.Comments {
		c := &p.Comments[i]
		cv := CommentView{
			ID:         c.ID.String(),
			AuthorID:   authorIDString(c.Author()),
			AuthorName: c.AuthorName,
			Message:    c.Message,
			Replies:    make([]ReplyView, 0, len(c.Replies)),
			CreatedAt:  c.CreatedAt,
		}
		for j := range c.Replies {
			r := &c.Replies[j]
			cv.Replies = append(cv.Replies, ReplyView{
				ID:         r.ID.String(),
				AuthorID:   authorIDString(r.Author()),
				AuthorName: r.AuthorName,
				Message:    r.Message,
				CreatedAt:  r.CreatedAt,
			})
		}
		v.Comments = append(v.Comments, cv)
	}
	return v
}

func newPostSummary(p *models.Post, commentCount int) PostSummary {
	return PostSummary{
		ID:             p.ID.String(),
		StadiumID:      p.StadiumID.String(),
		AuthorID:       authorIDString(p.Author()),
		AuthorName:     p.AuthorName,
		Title:          p.Title,
		ImageCount:     len(p.Images),
		ViewCount:      p.ViewCount,
		RecommendCount: p.RecommendCount,
		CommentCount:   commentCount,
		CreatedAt:      p.CreatedAt,
	}
}

func newPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + int64(limit) - 1) / int64(limit),
	}
}
