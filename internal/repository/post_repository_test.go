package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"stadiumparking/internal/database"
	"stadiumparking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(database.SQLiteDialector(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedPost(t *testing.T, repo PostRepository, stadiumID models.ID, title string) *models.Post {
	author := models.ID(1)
	post := &models.Post{
		StadiumID:  stadiumID,
		AuthorID:   &author,
		AuthorName: "writer",
		Title:      title,
		Message:    "message of " + title,
		Images:     []models.PostImage{{Position: 0, Path: "/uploads/a.jpg"}, {Position: 1, Path: "/uploads/b.jpg"}},
	}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

func TestFindScopesByStadium(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	post := seedPost(t, repo, 1, "gate 3")

	got, err := repo.Find(context.Background(), 1, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "gate 3", got.Title)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "/uploads/a.jpg", got.Images[0].Path)

	_, err = repo.Find(context.Background(), 2, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestAppendCommentsAndRepliesKeepInsertionOrder(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	ctx := context.Background()
	post := seedPost(t, repo, 1, "p")

	for _, msg := range []string{"first", "second", "third"} {
		require.NoError(t, repo.AppendComment(ctx, post.ID, &models.Comment{AuthorName: "a", Message: msg}))
	}
	got, err := repo.Find(ctx, 1, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 3)

	second := got.Comments[1]
	for _, msg := range []string{"r1", "r2"} {
		require.NoError(t, repo.AppendReply(ctx, post.ID, second.ID, &models.Reply{AuthorName: "b", Message: msg}))
	}

	got, err = repo.Find(ctx, 1, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Comments[0].Message)
	assert.Equal(t, "second", got.Comments[1].Message)
	assert.Equal(t, "third", got.Comments[2].Message)
	require.Len(t, got.Comments[1].Replies, 2)
	assert.Equal(t, "r1", got.Comments[1].Replies[0].Message)
	assert.Equal(t, "r2", got.Comments[1].Replies[1].Message)
	assert.Empty(t, got.Comments[0].Replies)
}

func TestAppendReplyToForeignCommentFails(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	ctx := context.Background()
	a := seedPost(t, repo, 1, "a")
	b := seedPost(t, repo, 1, "b")

	foreign := &models.Comment{AuthorName: "x", Message: "on b"}
	require.NoError(t, repo.AppendComment(ctx, b.ID, foreign))
	require.NoError(t, repo.AppendComment(ctx, a.ID, &models.Comment{AuthorName: "x", Message: "on a"}))

	err := repo.AppendReply(ctx, a.ID, foreign.ID, &models.Reply{AuthorName: "y", Message: "lost"})
	assert.ErrorIs(t, err, ErrCommentNotFound)

	got, err := repo.Find(ctx, 1, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Empty(t, got.Comments[0].Replies)

	err = repo.AppendComment(ctx, 999, &models.Comment{AuthorName: "x", Message: "m"})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestConcurrentCommentAppendsAreAllKept(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	post := seedPost(t, repo, 1, "busy")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.AppendComment(context.Background(), post.ID,
				&models.Comment{AuthorName: "a", Message: fmt.Sprintf("c%d", i)}))
		}(i)
	}
	wg.Wait()

	counts, err := repo.CountComments(context.Background(), []models.ID{post.ID})
	require.NoError(t, err)
	assert.Equal(t, 10, counts[post.ID])
}

func TestToggleRecommendationKeepsCountInSync(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	post := seedPost(t, repo, 1, "p")

	check := func(wantCount int64) {
		var p models.Post
		require.NoError(t, db.Take(&p, "id = ?", post.ID).Error)
		var members int64
		db.Model(&models.Recommendation{}).Where("post_id = ?", post.ID).Count(&members)
		assert.Equal(t, wantCount, p.RecommendCount)
		assert.Equal(t, members, p.RecommendCount)
	}

	on, err := repo.ToggleRecommendation(ctx, post.ID, 10)
	require.NoError(t, err)
	assert.True(t, on)
	check(1)

	on, err = repo.ToggleRecommendation(ctx, post.ID, 11)
	require.NoError(t, err)
	assert.True(t, on)
	check(2)

	on, err = repo.ToggleRecommendation(ctx, post.ID, 10)
	require.NoError(t, err)
	assert.False(t, on)
	check(1)

	_, err = repo.ToggleRecommendation(ctx, 999, 10)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListFiltersAndSorts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	older := seedPost(t, repo, 1, "North Lot")
	db.Model(&models.Post{}).Where("id = ?", older.ID).UpdateColumn("created_at", time.Now().Add(-time.Hour))
	newer := seedPost(t, repo, 1, "South garage")
	other := seedPost(t, repo, 2, "North lot elsewhere")
	require.NoError(t, repo.AppendComment(ctx, newer.ID, &models.Comment{AuthorName: "c", Message: "try the NORTH exit"}))
	_, err := repo.ToggleRecommendation(ctx, older.ID, 5)
	require.NoError(t, err)

	posts, total, err := repo.List(ctx, PostFilter{StadiumID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, newer.ID, posts[0].ID)

	posts, _, err = repo.List(ctx, PostFilter{StadiumID: 1, Sort: SortPopular})
	require.NoError(t, err)
	assert.Equal(t, older.ID, posts[0].ID)

	posts, total, err = repo.List(ctx, PostFilter{StadiumID: 1, Query: "north"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, older.ID, posts[0].ID)

	_, total, err = repo.List(ctx, PostFilter{StadiumID: 1, Query: "north", SearchComments: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	posts, total, err = repo.List(ctx, PostFilter{Query: "north"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, other.ID, posts[0].ID)

	_, total, err = repo.List(ctx, PostFilter{Query: "WRITER", SearchAuthor: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, total, err = repo.List(ctx, PostFilter{Query: "100%"})
	require.NoError(t, err)
	assert.Zero(t, total)

	posts, total, err = repo.List(ctx, PostFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, posts, 1)
}

func TestDeleteRemovesThread(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	post := seedPost(t, repo, 1, "gone")
	keep := seedPost(t, repo, 1, "kept")

	c := &models.Comment{AuthorName: "a", Message: "m"}
	require.NoError(t, repo.AppendComment(ctx, post.ID, c))
	require.NoError(t, repo.AppendReply(ctx, post.ID, c.ID, &models.Reply{AuthorName: "b", Message: "r"}))
	require.NoError(t, repo.AppendComment(ctx, keep.ID, &models.Comment{AuthorName: "a", Message: "m"}))
	_, err := repo.ToggleRecommendation(ctx, post.ID, 3)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, post.ID))
	assert.ErrorIs(t, repo.Delete(ctx, post.ID), ErrPostNotFound)

	var n int64
	db.Model(&models.Reply{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.Comment{}).Count(&n)
	assert.Equal(t, int64(1), n)
	db.Model(&models.PostImage{}).Where("post_id = ?", post.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.Recommendation{}).Count(&n)
	assert.Zero(t, n)
}

func TestIncrementViews(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	post := seedPost(t, repo, 1, "p")

	require.NoError(t, repo.IncrementViews(context.Background(), post.ID))
	require.NoError(t, repo.IncrementViews(context.Background(), post.ID))
	assert.ErrorIs(t, repo.IncrementViews(context.Background(), 999), ErrPostNotFound)

	var p models.Post
	require.NoError(t, db.Take(&p, "id = ?", post.ID).Error)
	assert.Equal(t, int64(2), p.ViewCount)
}

func TestListByAuthor(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	seedPost(t, repo, 1, "a")
	seedPost(t, repo, 2, "b")

	posts, total, err := repo.ListByAuthor(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, posts, 1)

	_, total, err = repo.ListByAuthor(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestListSearchFoldsNonASCIICase(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	ctx := context.Background()
	post := seedPost(t, repo, 1, "ÄRGER an der Einfahrt")
	require.NoError(t, repo.AppendComment(ctx, post.ID, &models.Comment{AuthorName: "c", Message: "ÉTAGE 2 ist frei"}))

	for _, q := range []string{"ärger", "ÄRGER", "Ärger"} {
		posts, total, err := repo.List(ctx, PostFilter{StadiumID: 1, Query: q})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total, q)
		require.Len(t, posts, 1)
		assert.Equal(t, post.ID, posts[0].ID)
	}

	_, total, err := repo.List(ctx, PostFilter{StadiumID: 1, Query: "étage", SearchComments: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
