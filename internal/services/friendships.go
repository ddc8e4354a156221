package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"fittrack/internal/apiclient"
	"fittrack/internal/models"
	"fittrack/internal/syncstate"
	"fittrack/internal/validation"
)

// ErrTransitionNotAllowed is returned for a state change the current
// state does not permit. No request is sent.
var ErrTransitionNotAllowed = errors.New("transition not allowed")

// FriendshipAction is a control offered for a friendship row.
type FriendshipAction string

const (
	ActionAccept FriendshipAction = "accept"
	ActionReject FriendshipAction = "reject"
	ActionRemove FriendshipAction = "remove"
)

// FriendshipBook owns the user's friendships and pending requests.
type FriendshipBook struct {
	api      FriendshipAPI
	notifier Notifier
	logger   *logrus.Logger
	items    *syncstate.Collection[models.Friendship]
}

func NewFriendshipBook(api FriendshipAPI, notifier Notifier, logger *logrus.Logger) *FriendshipBook {
	return &FriendshipBook{
		api:      api,
		notifier: notifier,
		logger:   logger,
		items:    syncstate.New(func(f models.Friendship) int { return f.ID }),
	}
}

func (b *FriendshipBook) Load(ctx context.Context) error {
	if _, err := b.items.Load(ctx, b.api.ListFriendships); err != nil {
		b.logger.WithError(err).Error("Failed to load friendships")
		return err
	}
	return nil
}

// Send creates a friend request for a username or email.
func (b *FriendshipBook) Send(ctx context.Context, input string) (*models.Friendship, error) {
	req := models.FriendRequest{AmigoInput: strings.TrimSpace(input)}
	if err := validation.Struct(req); err != nil {
		notifyError(b.notifier, "Enter a username or email")
		return nil, err
	}

	var created *models.Friendship
	err := b.items.Guard("send", func() error {
		friendship, err := b.api.CreateFriendship(ctx, req.AmigoInput)
		if err != nil {
			b.logger.WithError(err).WithField("amigo_input", req.AmigoInput).Warn("Failed to send friend request")
			notifyError(b.notifier, apiclient.Message(err, "Could not send the request"))
			return err
		}
		b.items.Append(*friendship)
		created = friendship
		notifySuccess(b.notifier, "Request sent")
		return nil
	})
	return created, err
}

func (b *FriendshipBook) Accept(ctx context.Context, id int) error {
	return b.respond(ctx, id, models.FriendshipAceptada, "Request accepted")
}

func (b *FriendshipBook) Reject(ctx context.Context, id int) error {
	return b.respond(ctx, id, models.FriendshipRechazada, "Request rejected")
}

func (b *FriendshipBook) respond(ctx context.Context, id int, status models.FriendshipStatus, done string) error {
	current, ok := b.items.Get(id)
	if !ok {
		return fmt.Errorf("friendship %d not found", id)
	}
	if !current.CanRespond() {
		b.logger.WithFields(logrus.Fields{
			"friendship_id": id,
			"status":        current.Status,
			"tipo":          current.Tipo,
			"target":        status,
		}).Warn("Refused friendship transition")
		return ErrTransitionNotAllowed
	}

	return b.items.Guard(fmt.Sprintf("respond:%d", id), func() error {
		updated, err := b.api.UpdateFriendship(ctx, id, status)
		if err != nil {
			b.logger.WithError(err).WithField("friendship_id", id).Error("Failed to update friendship")
			notifyError(b.notifier, "Could not update the request")
			return err
		}
		// The update response lacks the usernames; keep ours and take the status.
		b.items.Update(id, func(f *models.Friendship) {
			f.Status = updated.Status
			if f.Status == "" {
				f.Status = status
			}
		})
		notifySuccess(b.notifier, done)
		return nil
	})
}

func (b *FriendshipBook) Remove(ctx context.Context, id int) error {
	return b.items.Guard(deleteKey(id), func() error {
		if err := b.api.DeleteFriendship(ctx, id); err != nil {
			b.logger.WithError(err).WithField("friendship_id", id).Error("Failed to delete friendship")
			notifyError(b.notifier, "Could not remove the friend")
			return err
		}
		b.items.Remove(id)
		notifySuccess(b.notifier, "Friend removed")
		return nil
	})
}

func (b *FriendshipBook) Items() []models.Friendship {
	return b.items.Items()
}

func (b *FriendshipBook) Get(id int) (models.Friendship, bool) {
	return b.items.Get(id)
}

// Ordered is the display order: pending first, then accepted sorted by
// counterpart name, then rejected.
func (b *FriendshipBook) Ordered() []models.Friendship {
	return OrderFriendships(b.items.Items())
}

func (b *FriendshipBook) Close() {
	b.items.Close()
}

// OrderFriendships sorts a copy of items for display.
func OrderFriendships(items []models.Friendship) []models.Friendship {
	out := append([]models.Friendship(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := statusRank(out[i].Status), statusRank(out[j].Status)
		if ri != rj {
			return ri < rj
		}
		if out[i].Status == models.FriendshipAceptada {
			return out[i].Counterpart() < out[j].Counterpart()
		}
		return false
	})
	return out
}

func statusRank(s models.FriendshipStatus) int {
	switch s {
	case models.FriendshipPendiente:
		return 0
	case models.FriendshipAceptada:
		return 1
	default:
		return 2
	}
}

// Actions lists the controls to expose for f. Terminal items never offer
// accept or reject.
func Actions(f models.Friendship) []FriendshipAction {
	switch {
	case f.CanRespond():
		return []FriendshipAction{ActionAccept, ActionReject}
	case f.Status == models.FriendshipAceptada:
		return []FriendshipAction{ActionRemove}
	default:
		return nil
	}
}

// Label is the row text for f: the counterpart for friends, otherwise the
// request direction followed by the status.
func Label(f models.Friendship) string {
	if f.Status == models.FriendshipAceptada {
		return f.Counterpart()
	}
	if f.Tipo == models.FriendshipEnviada {
		return fmt.Sprintf("Has enviado solicitud a %s - %s", f.AmigoUsername, f.Status)
	}
	return fmt.Sprintf("%s te ha enviado una solicitud - %s", f.UsuarioUsername, f.Status)
}
