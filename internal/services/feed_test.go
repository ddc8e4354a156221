package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/models"
	"fittrack/internal/validation"
)

func loadedFeed(t *testing.T, posts ...models.Post) (*Feed, *fakeAPI, *NotificationLog) {
	t.Helper()
	api := newFakeAPI()
	api.posts = posts
	notes := &NotificationLog{}
	feed := NewFeed(api, notes, quietLogger())
	require.NoError(t, feed.Load(context.Background()))
	return feed, api, notes
}

func TestToggleLikeArithmetic(t *testing.T) {
	feed, api, _ := loadedFeed(t, models.Post{ID: 1, LikesCount: 5})
	ctx := context.Background()

	require.NoError(t, feed.ToggleLike(ctx, 1))
	p, _ := feed.Get(1)
	assert.Equal(t, 6, p.LikesCount)
	assert.True(t, p.LikedByUser)

	require.NoError(t, feed.ToggleLike(ctx, 1))
	p, _ = feed.Get(1)
	assert.Equal(t, 5, p.LikesCount)
	assert.False(t, p.LikedByUser)

	assert.Equal(t, 1, api.count("LikePost"))
	assert.Equal(t, 1, api.count("UnlikePost"))
}

func TestToggleLikeFailureKeepsStateAndNotifies(t *testing.T) {
	feed, api, notes := loadedFeed(t, models.Post{ID: 1, LikesCount: 5})
	api.fail["LikePost"] = true

	require.Error(t, feed.ToggleLike(context.Background(), 1))

	p, _ := feed.Get(1)
	assert.Equal(t, 6, p.LikesCount)
	assert.True(t, p.LikedByUser)
	last, ok := notes.Last()
	require.True(t, ok)
	assert.Equal(t, models.NotificationError, last.Type)
}

func TestToggledLikeNeverGoesNegative(t *testing.T) {
	p := ToggledLike(models.Post{LikedByUser: true, LikesCount: 0})
	assert.Equal(t, 0, p.LikesCount)
	assert.False(t, p.LikedByUser)
}

func TestPublishPrependsAfterServerResponse(t *testing.T) {
	feed, api, _ := loadedFeed(t, models.Post{ID: 1})
	ctx := context.Background()

	_, err := feed.Publish(ctx, "   ")
	assert.True(t, validation.IsValidation(err))

	api.fail["CreatePost"] = true
	_, err = feed.Publish(ctx, "hola")
	require.Error(t, err)
	assert.Len(t, feed.Items(), 1)

	api.fail["CreatePost"] = false
	post, err := feed.Publish(ctx, " hola ")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPostTipo, post.Tipo)
	assert.Equal(t, "hola", post.Contenido)

	items := feed.Items()
	require.Len(t, items, 2)
	assert.Equal(t, post.ID, items[0].ID)
}

// scriptedPosts answers ListPosts calls from a queue of channels so the
// test controls the order responses arrive in.
type scriptedPosts struct {
	*fakeAPI
	responses chan chan []models.Post
}

func (s *scriptedPosts) ListPosts(ctx context.Context) ([]models.Post, error) {
	reply := make(chan []models.Post)
	s.responses <- reply
	return <-reply, nil
}

func TestFeedDiscardsStaleLoad(t *testing.T) {
	api := &scriptedPosts{fakeAPI: newFakeAPI(), responses: make(chan chan []models.Post)}
	feed := NewFeed(api, NopNotifier{}, quietLogger())
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- feed.Load(ctx) }()
	firstReply := <-api.responses

	second := make(chan error, 1)
	go func() { second <- feed.Load(ctx) }()
	secondReply := <-api.responses

	secondReply <- []models.Post{{ID: 2}}
	require.NoError(t, <-second)
	firstReply <- []models.Post{{ID: 1}}

	select {
	case err := <-first:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first load never returned")
	}

	items := feed.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ID)
}

func TestFeedIgnoresResponsesAfterClose(t *testing.T) {
	feed, api, _ := loadedFeed(t, models.Post{ID: 1, LikesCount: 1})
	feed.Close()

	err := feed.ToggleLike(context.Background(), 1)

	require.Error(t, err)
	assert.Zero(t, api.count("LikePost"))
	p, _ := feed.Get(1)
	assert.Equal(t, 1, p.LikesCount)
}
