package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"fittrack/internal/models"
	"fittrack/internal/syncstate"
)

type ReorderState int

const (
	ReorderIdle ReorderState = iota
	ReorderDragging
	ReorderReordered
	ReorderPersisting
	// ReorderIdleStale: the last save failed and the local order is ahead
	// of the backend.
	ReorderIdleStale
)

func (s ReorderState) String() string {
	switch s {
	case ReorderIdle:
		return "idle"
	case ReorderDragging:
		return "dragging"
	case ReorderReordered:
		return "reordered"
	case ReorderPersisting:
		return "persisting"
	case ReorderIdleStale:
		return "idle-stale"
	default:
		return "unknown"
	}
}

// ReorderExercises moves the item at from to to and renumbers orden as the
// position of every item. The input slice is not modified.
func ReorderExercises(items []models.RoutineExercise, from, to int) ([]models.RoutineExercise, error) {
	moved, err := syncstate.Move(items, from, to)
	if err != nil {
		return nil, err
	}
	for i := range moved {
		moved[i].Orden = i
	}
	return moved, nil
}

// OrderEntries is the reorder batch for the whole routine.
func OrderEntries(items []models.RoutineExercise) []models.OrderEntry {
	entries := make([]models.OrderEntry, len(items))
	for i, item := range items {
		entries[i] = models.OrderEntry{ID: item.ID, Orden: item.Orden}
	}
	return entries
}

func (b *RoutineBoard) ReorderState(routineID int) ReorderState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reorders[routineID]
}

// BeginDrag marks a drag gesture in progress. Nothing is persisted.
func (b *RoutineBoard) BeginDrag(routineID int) {
	b.setReorderState(routineID, ReorderDragging)
}

// CancelDrag ends a gesture that dropped nowhere.
func (b *RoutineBoard) CancelDrag(routineID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reorders[routineID] == ReorderDragging {
		b.reorders[routineID] = ReorderIdle
	}
}

// Reorder applies a drop locally and saves the new order. A failed save
// keeps the local order, marks the routine stale and surfaces the error.
func (b *RoutineBoard) Reorder(ctx context.Context, routineID, from, to int) error {
	return b.routines.Guard(reorderKey(routineID), func() error {
		routine, ok := b.routines.Get(routineID)
		if !ok {
			b.clearReorderState(routineID)
			return fmt.Errorf("routine %d not found", routineID)
		}
		if from == to {
			b.CancelDrag(routineID)
			return nil
		}

		reordered, err := ReorderExercises(routine.Ejercicios, from, to)
		if err != nil {
			b.CancelDrag(routineID)
			return err
		}
		b.routines.Update(routineID, func(r *models.Routine) {
			r.Ejercicios = reordered
		})
		b.setReorderState(routineID, ReorderReordered)

		log := b.logger.WithFields(logrus.Fields{
			"routine_id": routineID,
			"from":       from,
			"to":         to,
		})

		b.setReorderState(routineID, ReorderPersisting)
		if err := b.api.ReorderRoutineExercises(ctx, routineID, OrderEntries(reordered)); err != nil {
			b.setReorderState(routineID, ReorderIdleStale)
			log.WithError(err).Error("Failed to save exercise order, keeping local order")
			notifyError(b.notifier, "Could not save the new order")
			return err
		}
		b.setReorderState(routineID, ReorderIdle)
		log.Debug("Exercise order saved")
		return nil
	})
}

// Reordering reports whether a reorder save for the routine is in flight.
func (b *RoutineBoard) Reordering(routineID int) bool {
	return b.routines.Pending(reorderKey(routineID))
}

func (b *RoutineBoard) setReorderState(routineID int, s ReorderState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reorders[routineID] = s
}

func (b *RoutineBoard) clearReorderState(routineID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.reorders, routineID)
}

func reorderKey(routineID int) string {
	return fmt.Sprintf("reorder:%d", routineID)
}
