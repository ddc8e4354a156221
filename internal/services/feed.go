package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"fittrack/internal/models"
	"fittrack/internal/syncstate"
	"fittrack/internal/validation"
)

// Feed owns the social post list.
type Feed struct {
	api      PostAPI
	notifier Notifier
	logger   *logrus.Logger
	posts    *syncstate.Collection[models.Post]
}

func NewFeed(api PostAPI, notifier Notifier, logger *logrus.Logger) *Feed {
	return &Feed{
		api:      api,
		notifier: notifier,
		logger:   logger,
		posts:    syncstate.New(func(p models.Post) int { return p.ID }),
	}
}

func (f *Feed) Load(ctx context.Context) error {
	if _, err := f.posts.Load(ctx, f.api.ListPosts); err != nil {
		f.logger.WithError(err).Error("Failed to load posts")
		return err
	}
	return nil
}

// Publish sends a post and prepends it once the backend has stored it.
func (f *Feed) Publish(ctx context.Context, contenido string) (*models.Post, error) {
	draft := models.PostDraft{Contenido: strings.TrimSpace(contenido), Tipo: models.DefaultPostTipo}
	if err := validation.Struct(draft); err != nil {
		notifyError(f.notifier, "Write something first")
		return nil, err
	}

	var created *models.Post
	err := f.posts.Guard("publish", func() error {
		post, err := f.api.CreatePost(ctx, draft)
		if err != nil {
			f.logger.WithError(err).Error("Failed to publish post")
			notifyError(f.notifier, "Could not publish the post")
			return err
		}
		f.posts.Prepend(*post)
		created = post
		notifySuccess(f.notifier, "Post published")
		return nil
	})
	return created, err
}

func (f *Feed) Publishing() bool {
	return f.posts.Pending("publish")
}

// ToggleLike flips the like locally before calling the backend. A failed
// call leaves the flipped state in place and surfaces an error.
func (f *Feed) ToggleLike(ctx context.Context, id int) error {
	if _, ok := f.posts.Get(id); !ok {
		return fmt.Errorf("post %d not found", id)
	}

	return f.posts.Guard(fmt.Sprintf("like:%d", id), func() error {
		var wasLiked bool
		f.posts.Update(id, func(p *models.Post) {
			wasLiked = p.LikedByUser
			*p = ToggledLike(*p)
		})

		var err error
		if wasLiked {
			err = f.api.UnlikePost(ctx, id)
		} else {
			err = f.api.LikePost(ctx, id)
		}
		if err != nil {
			f.logger.WithError(err).WithFields(logrus.Fields{
				"post_id": id,
				"liked":   !wasLiked,
			}).Error("Failed to update like, keeping local state")
			notifyError(f.notifier, "Could not update the like")
			return err
		}
		return nil
	})
}

func (f *Feed) Items() []models.Post {
	return f.posts.Items()
}

func (f *Feed) Get(id int) (models.Post, bool) {
	return f.posts.Get(id)
}

func (f *Feed) Close() {
	f.posts.Close()
}

// ToggledLike returns p with the like flipped and the count adjusted.
func ToggledLike(p models.Post) models.Post {
	if p.LikedByUser {
		p.LikedByUser = false
		if p.LikesCount > 0 {
			p.LikesCount--
		}
		return p
	}
	p.LikedByUser = true
	p.LikesCount++
	return p
}
