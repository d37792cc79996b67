package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"stadiumparking/internal/identity"
	"stadiumparking/internal/logger"
	"stadiumparking/internal/models"
	"stadiumparking/internal/repository"
	"stadiumparking/internal/storage"
	"stadiumparking/internal/viewgate"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
	// MaxImages bounds the uploads attached to one post.
	MaxImages = 10
)

// Upload is one uploaded image.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// CreatePostInput is the payload for CreatePost.
type CreatePostInput struct {
	StadiumID models.ID
	Title     string
	Message   string
	Nickname  string
	Images    []Upload
}

// CommentInput is the payload for comments and replies.
type CommentInput struct {
	Message  string
	Nickname string
}

// ListOptions controls ListPosts.
type ListOptions struct {
	Query string
	Sort  string
	Page  int
	Limit int
}

// AdminListOptions controls AdminListPosts. A zero StadiumID lists every stadium.
type AdminListOptions struct {
	StadiumID models.ID
	Query     string
	Page      int
	Limit     int
}

// PostService implements the community operations on stadium posts
type PostService struct {
	posts    repository.PostRepository
	stadiums repository.StadiumRepository
	users    repository.UserRepository
	gate     viewgate.Gate
	files    storage.Store
}

// NewPostService wires the service to its stores
func NewPostService(
	posts repository.PostRepository,
	stadiums repository.StadiumRepository,
	users repository.UserRepository,
	gate viewgate.Gate,
	files storage.Store,
) *PostService {
	return &PostService{posts: posts, stadiums: stadiums, users: users, gate: gate, files: files}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit
}

func parseSort(s string) repository.SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(repository.SortPopular)) {
		return repository.SortPopular
	}
	return repository.SortLatest
}

// mapRepoError converts store errors into service error kinds.
func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		return notFoundError("post not found")
	case errors.Is(err, repository.ErrCommentNotFound):
		return notFoundError("comment not found")
	default:
		return err
	}
}

func (s *PostService) findPost(ctx context.Context, stadiumID, postID models.ID) (*models.Post, error) {
	post, err := s.posts.Find(ctx, stadiumID, postID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return post, nil
}

// ListPosts lists a stadium's posts without counting views.
func (s *PostService) ListPosts(ctx context.Context, stadiumID models.ID, opts ListOptions, viewer identity.Actor) (*PostPage, error) {
	page, limit := normalizePage(opts.Page, opts.Limit)
	posts, total, err := s.posts.List(ctx, repository.PostFilter{
		StadiumID:      stadiumID,
		Query:          opts.Query,
		SearchComments: true,
		Sort:           parseSort(opts.Sort),
		WithThreads:    true,
		Offset:         (page - 1) * limit,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}

	out := &PostPage{Posts: make([]PostView, 0, len(posts)), Pagination: newPagination(page, limit, total)}
	for i := range posts {
		out.Posts = append(out.Posts, newPostView(&posts[i], viewer))
	}
	return out, nil
}

// CreatePost stores a new post by an authenticated user.
func (s *PostService) CreatePost(ctx context.Context, actor identity.Actor, in CreatePostInput) (*PostView, error) {
	if !actor.Authenticated {
		return nil, unauthorizedError("login required to create a post")
	}
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if title == "" || message == "" {
		return nil, validationError("title and message are required")
	}
	if len(in.Images) > MaxImages {
		return nil, validationError(fmt.Sprintf("at most %d images are allowed", MaxImages))
	}
	for _, img := range in.Images {
		if !strings.HasPrefix(img.ContentType, "image/") {
			return nil, validationError("unsupported file type")
		}
	}

	ok, err := s.stadiums.Exists(ctx, in.StadiumID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFoundError("stadium not found")
	}

	author, name, err := s.resolveAuthor(ctx, actor, in.Nickname)
	if err != nil {
		return nil, err
	}

	paths, err := s.saveImages(ctx, in.Images)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		StadiumID:  in.StadiumID,
		AuthorID:   author.Column(),
		AuthorName: name,
		Title:      title,
		Message:    message,
	}
	for i, p := range paths {
		post.Images = append(post.Images, models.PostImage{Position: i, Path: p})
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.removeImages(ctx, paths)
		return nil, err
	}

	view := newPostView(post, actor)
	return &view, nil
}

func (s *PostService) saveImages(ctx context.Context, uploads []Upload) ([]string, error) {
	paths := make([]string, 0, len(uploads))
	for _, up := range uploads {
		path, err := s.saveImage(ctx, up)
		if err != nil {
			s.removeImages(ctx, paths)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// imageExtensions lists the accepted image types and the extension each is stored under.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// sniffLen is how much of an upload mimetype inspects.
const sniffLen = 3072

// saveImage stores an upload under the extension of its detected content type.
// The client's filename and Content-Type header are never trusted.
func (s *PostService) saveImage(ctx context.Context, up Upload) (string, error) {
	r, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer r.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head).String()
	ext, ok := imageExtensions[detected]
	if !ok {
		return "", validationError("unsupported file type")
	}
	return s.files.Save(ctx, "image"+ext, detected, io.MultiReader(bytes.NewReader(head), r), up.Size)
}

func (s *PostService) removeImages(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.files.Remove(ctx, p); err != nil {
			logger.Warn("remove image failed", zap.String("path", p), zap.Error(err))
		}
	}
}

// GetPost returns one post and counts the view when the gate allows it.
func (s *PostService) GetPost(ctx context.Context, stadiumID, postID models.ID, actor identity.Actor) (*PostView, error) {
	post, err := s.findPost(ctx, stadiumID, postID)
	if err != nil {
		return nil, err
	}

	count, err := s.gate.ShouldCountView(ctx, post.ID, actor.ViewerKey)
	if err != nil {
		return nil, err
	}
	if count {
		if err := s.posts.IncrementViews(ctx, post.ID); err != nil {
			return nil, mapRepoError(err)
		}
		post.ViewCount++
	}

	view := newPostView(post, actor)
	return &view, nil
}

// AddComment appends a comment to the post.
func (s *PostService) AddComment(ctx context.Context, stadiumID, postID models.ID, actor identity.Actor, in CommentInput) (*PostView, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, validationError("message is required")
	}
	if _, err := s.findPost(ctx, stadiumID, postID); err != nil {
		return nil, err
	}

	author, name, err := s.resolveAuthor(ctx, actor, in.Nickname)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{AuthorID: author.Column(), AuthorName: name, Message: message}
	if err := s.posts.AppendComment(ctx, postID, comment); err != nil {
		return nil, mapRepoError(err)
	}
	return s.reload(ctx, stadiumID, postID, actor)
}

// AddReply appends a reply to a comment of the post.
func (s *PostService) AddReply(ctx context.Context, stadiumID, postID, commentID models.ID, actor identity.Actor, in CommentInput) (*PostView, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, validationError("message is required")
	}
	if _, err := s.findPost(ctx, stadiumID, postID); err != nil {
		return nil, err
	}

	author, name, err := s.resolveAuthor(ctx, actor, in.Nickname)
	if err != nil {
		return nil, err
	}
	reply := &models.Reply{AuthorID: author.Column(), AuthorName: name, Message: message}
	if err := s.posts.AppendReply(ctx, postID, commentID, reply); err != nil {
		return nil, mapRepoError(err)
	}
	return s.reload(ctx, stadiumID, postID, actor)
}

// ToggleRecommend adds or removes the caller from the recommendation set.
func (s *PostService) ToggleRecommend(ctx context.Context, stadiumID, postID models.ID, actor identity.Actor) (*PostView, error) {
	if !actor.Authenticated {
		return nil, unauthorizedError("login required to recommend")
	}
	if _, err := s.findPost(ctx, stadiumID, postID); err != nil {
		return nil, err
	}
	if _, err := s.posts.ToggleRecommendation(ctx, postID, actor.UserID); err != nil {
		return nil, mapRepoError(err)
	}
	return s.reload(ctx, stadiumID, postID, actor)
}

func (s *PostService) reload(ctx context.Context, stadiumID, postID models.ID, actor identity.Actor) (*PostView, error) {
	post, err := s.findPost(ctx, stadiumID, postID)
	if err != nil {
		return nil, err
	}
	view := newPostView(post, actor)
	return &view, nil
}

// DeletePost deletes a post on behalf of its author.
func (s *PostService) DeletePost(ctx context.Context, stadiumID, postID models.ID, actor identity.Actor) error {
	if !actor.Authenticated {
		return unauthorizedError("login required to delete a post")
	}
	post, err := s.findPost(ctx, stadiumID, postID)
	if err != nil {
		return err
	}
	if !post.Author().Is(actor.UserID) {
		return forbiddenError("you can only delete your own posts")
	}
	return s.deletePost(ctx, post)
}

// AdminDeletePost deletes any post. Callers must have checked privileges.
func (s *PostService) AdminDeletePost(ctx context.Context, postID models.ID) error {
	post, err := s.findPost(ctx, 0, postID)
	if err != nil {
		return err
	}
	return s.deletePost(ctx, post)
}

func (s *PostService) deletePost(ctx context.Context, post *models.Post) error {
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return mapRepoError(err)
	}

	if err := s.gate.Forget(ctx, post.ID); err != nil {
		logger.Warn("delete view records failed", zap.String("post_id", post.ID.String()), zap.Error(err))
	}
	paths := make([]string, 0, len(post.Images))
	for _, img := range post.Images {
		paths = append(paths, img.Path)
	}
	s.removeImages(ctx, paths)
	return nil
}

// AdminListPosts lists post summaries for moderation.
func (s *PostService) AdminListPosts(ctx context.Context, opts AdminListOptions) (*SummaryPage, error) {
	page, limit := normalizePage(opts.Page, opts.Limit)
	posts, total, err := s.posts.List(ctx, repository.PostFilter{
		StadiumID:    opts.StadiumID,
		Query:        opts.Query,
		SearchAuthor: true,
		Sort:         repository.SortLatest,
		Offset:       (page - 1) * limit,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize(ctx, posts)
	if err != nil {
		return nil, err
	}
	return &SummaryPage{Posts: summaries, Pagination: newPagination(page, limit, total)}, nil
}

// MyActivity returns the caller's post count and latest posts.
func (s *PostService) MyActivity(ctx context.Context, actor identity.Actor) (*Activity, error) {
	if !actor.Authenticated {
		return nil, unauthorizedError("login required")
	}
	posts, total, err := s.posts.ListByAuthor(ctx, actor.UserID, 10)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize(ctx, posts)
	if err != nil {
		return nil, err
	}
	return &Activity{PostCount: total, RecentPosts: summaries}, nil
}

func (s *PostService) summarize(ctx context.Context, posts []models.Post) ([]PostSummary, error) {
	ids := make([]models.ID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	counts, err := s.posts.CountComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]PostSummary, 0, len(posts))
	for i := range posts {
		out = append(out, newPostSummary(&posts[i], counts[posts[i].ID]))
	}
	return out, nil
}
