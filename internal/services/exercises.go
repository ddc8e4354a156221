package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"fittrack/internal/apiclient"
	"fittrack/internal/models"
	"fittrack/internal/syncstate"
	"fittrack/internal/validation"
)

// ExerciseCatalog owns the list of exercise types and the muscle-group filter.
type ExerciseCatalog struct {
	api      ExerciseTypeAPI
	notifier Notifier
	logger   *logrus.Logger
	items    *syncstate.Collection[models.ExerciseType]

	mu     sync.Mutex
	filter string
}

func NewExerciseCatalog(api ExerciseTypeAPI, notifier Notifier, logger *logrus.Logger) *ExerciseCatalog {
	return &ExerciseCatalog{
		api:      api,
		notifier: notifier,
		logger:   logger,
		items:    syncstate.New(func(e models.ExerciseType) int { return e.ID }),
	}
}

// Load replaces the catalog with the backend's list. Failures are logged only.
func (c *ExerciseCatalog) Load(ctx context.Context) error {
	applied, err := c.items.Load(ctx, c.api.ListExerciseTypes)
	if err != nil {
		c.logger.WithError(err).Error("Failed to load exercise types")
		return err
	}
	c.logger.WithFields(logrus.Fields{"count": c.items.Len(), "applied": applied}).Debug("Exercise types loaded")
	return nil
}

// Create validates the draft, sends it and appends the stored result.
func (c *ExerciseCatalog) Create(ctx context.Context, draft models.ExerciseTypeDraft) (*models.ExerciseType, error) {
	draft.Nombre = strings.TrimSpace(draft.Nombre)
	draft.Descripcion = strings.TrimSpace(draft.Descripcion)
	draft.GrupoMuscular = strings.ToLower(strings.TrimSpace(draft.GrupoMuscular))
	if err := validation.Struct(draft); err != nil {
		notifyError(c.notifier, "Fill in all fields")
		return nil, err
	}

	var created *models.ExerciseType
	err := c.items.Guard("create", func() error {
		exercise, err := c.api.CreateExerciseType(ctx, draft)
		if err != nil {
			c.logger.WithError(err).WithField("nombre", draft.Nombre).Error("Failed to create exercise type")
			notifyError(c.notifier, "Could not create the exercise")
			return err
		}
		c.items.Append(*exercise)
		created = exercise
		notifySuccess(c.notifier, "Exercise created")
		return nil
	})
	return created, err
}

// Creating reports whether a create request is in flight.
func (c *ExerciseCatalog) Creating() bool {
	return c.items.Pending("create")
}

// Remove deletes the exercise type; the local item stays if the call fails.
func (c *ExerciseCatalog) Remove(ctx context.Context, id int) error {
	if _, ok := c.items.Get(id); !ok {
		return fmt.Errorf("exercise type %d not found", id)
	}
	return c.items.Guard(deleteKey(id), func() error {
		if err := c.api.DeleteExerciseType(ctx, id); err != nil {
			c.logger.WithError(err).WithField("id", id).Error("Failed to delete exercise type")
			notifyError(c.notifier, apiclient.Message(err, "Could not delete the exercise"))
			return err
		}
		c.items.Remove(id)
		notifySuccess(c.notifier, "Exercise deleted")
		return nil
	})
}

// Deleting reports whether the delete confirmation for id is in flight.
func (c *ExerciseCatalog) Deleting(id int) bool {
	return c.items.Pending(deleteKey(id))
}

// SetFilter selects a muscle group; an empty value shows everything.
func (c *ExerciseCatalog) SetFilter(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = strings.TrimSpace(group)
}

func (c *ExerciseCatalog) Filter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Filtered is the derived view, recomputed from the current collection.
func (c *ExerciseCatalog) Filtered() []models.ExerciseType {
	return FilterByGroup(c.items.Items(), c.Filter())
}

func (c *ExerciseCatalog) Items() []models.ExerciseType {
	return c.items.Items()
}

func (c *ExerciseCatalog) Get(id int) (models.ExerciseType, bool) {
	return c.items.Get(id)
}

// Close detaches the catalog; responses arriving later are ignored.
func (c *ExerciseCatalog) Close() {
	c.items.Close()
}

// FilterByGroup keeps the exercises whose muscle group equals group,
// ignoring case. An empty group returns a copy of all items.
func FilterByGroup(items []models.ExerciseType, group string) []models.ExerciseType {
	out := make([]models.ExerciseType, 0, len(items))
	for _, item := range items {
		if group == "" || models.MuscleGroup(group).Matches(item.GrupoMuscular) {
			out = append(out, item)
		}
	}
	return out
}

func deleteKey(id int) string {
	return fmt.Sprintf("delete:%d", id)
}
