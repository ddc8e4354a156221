package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"fittrack/internal/apiclient"
	"fittrack/internal/models"
	"fittrack/internal/session"
	"fittrack/internal/syncstate"
	"fittrack/internal/validation"
)

// ErrDayTaken is returned when a routine already exists for the day.
var ErrDayTaken = errors.New("routine already exists for this day")

const unknownExerciseName = "Unknown"

// RoutineBoard owns the user's weekly routines, their exercises and the
// exercise-type list used to pick and name them.
type RoutineBoard struct {
	api      RoutineAPI
	session  *session.Session
	notifier Notifier
	logger   *logrus.Logger

	routines *syncstate.Collection[models.Routine]
	types    *syncstate.Collection[models.ExerciseType]

	mu       sync.Mutex
	reorders map[int]ReorderState
}

func NewRoutineBoard(api RoutineAPI, sess *session.Session, notifier Notifier, logger *logrus.Logger) *RoutineBoard {
	return &RoutineBoard{
		api:      api,
		session:  sess,
		notifier: notifier,
		logger:   logger,
		routines: syncstate.New(func(r models.Routine) int { return r.ID }),
		types:    syncstate.New(func(e models.ExerciseType) int { return e.ID }),
		reorders: make(map[int]ReorderState),
	}
}

// Load fetches the exercise types, the routines and each routine's
// exercises. Only the latest load is applied.
func (b *RoutineBoard) Load(ctx context.Context) error {
	if _, err := b.types.Load(ctx, b.api.ListExerciseTypes); err != nil {
		b.logger.WithError(err).Error("Failed to load exercise types")
	}

	seq := b.routines.BeginLoad()
	routines, err := b.api.ListRoutines(ctx)
	if err != nil {
		if !b.routines.Current(seq) {
			return nil
		}
		b.logger.WithError(err).Error("Failed to load routines")
		return err
	}

	for i := range routines {
		exercises, err := b.api.ListRoutineExercises(ctx, routines[i].ID)
		if err != nil {
			if !b.routines.Current(seq) {
				return nil
			}
			b.logger.WithError(err).WithField("routine_id", routines[i].ID).Error("Failed to load routine exercises")
			return err
		}
		routines[i].Ejercicios = sortByOrden(exercises)
	}

	if !b.routines.CommitLoad(seq, routines) {
		b.logger.WithField("seq", seq).Debug("Discarded superseded routine load")
		return nil
	}

	b.mu.Lock()
	b.reorders = make(map[int]ReorderState)
	b.mu.Unlock()

	b.logger.WithField("count", len(routines)).Debug("Routines loaded")
	return nil
}

// Create makes the routine for dia and opens its populator. The routine
// is owned by the signed-in user.
func (b *RoutineBoard) Create(ctx context.Context, dia models.Weekday) (*Populator, error) {
	user, ok := b.session.User()
	if !ok {
		notifyError(b.notifier, "You need to sign in")
		return nil, apiclient.ErrAuthRequired
	}
	if dia.Index() < 0 {
		notifyError(b.notifier, "Select a day")
		return nil, validation.New("Dia", "oneof")
	}
	if _, exists := b.RoutineFor(dia); exists {
		notifyError(b.notifier, fmt.Sprintf("There is already a routine for %s", dia))
		return nil, ErrDayTaken
	}

	draft := models.RoutineDraft{
		Nombre:  "Rutina " + string(dia),
		Dia:     dia,
		Usuario: user.ID,
	}
	if err := validation.Struct(draft); err != nil {
		return nil, err
	}

	var populator *Populator
	err := b.routines.Guard("create:"+string(dia), func() error {
		routine, err := b.api.CreateRoutine(ctx, draft)
		if err != nil {
			b.logger.WithError(err).WithField("dia", dia).Error("Failed to create routine")
			notifyError(b.notifier, "Could not create the routine")
			return err
		}
		if routine.Dia == "" {
			routine.Dia = dia
		}
		routine.Ejercicios = nil
		b.routines.Append(*routine)

		b.logger.WithFields(logrus.Fields{"routine_id": routine.ID, "dia": dia}).Info("Routine created")
		populator = newPopulator(b, routine.ID)
		populator.open()
		return nil
	})
	return populator, err
}

// AddExercise appends an exercise at the end of the routine.
func (b *RoutineBoard) AddExercise(ctx context.Context, routineID int, input ExerciseInput) (*models.RoutineExercise, error) {
	routine, ok := b.routines.Get(routineID)
	if !ok {
		return nil, fmt.Errorf("routine %d not found", routineID)
	}
	if input.TipoEjercicio <= 0 {
		notifyError(b.notifier, "Select an exercise")
		return nil, validation.New("TipoEjercicio", "required")
	}

	peso := input.RecordPeso
	draft := models.RoutineExerciseDraft{
		Rutina:        routineID,
		TipoEjercicio: input.TipoEjercicio,
		Sets:          input.Sets,
		Repeticiones:  input.Repeticiones,
		RecordPeso:    &peso,
		Orden:         len(routine.Ejercicios),
	}
	if err := validation.Struct(draft); err != nil {
		notifyError(b.notifier, "Sets and repetitions must be positive")
		return nil, err
	}

	var created *models.RoutineExercise
	err := b.routines.Guard(fmt.Sprintf("add:%d", routineID), func() error {
		exercise, err := b.api.CreateRoutineExercise(ctx, draft)
		if err != nil {
			b.logger.WithError(err).WithField("routine_id", routineID).Error("Failed to add exercise to routine")
			notifyError(b.notifier, "Could not add the exercise")
			return err
		}
		b.routines.Update(routineID, func(r *models.Routine) {
			r.Ejercicios = append(r.Ejercicios, *exercise)
		})
		created = exercise
		notifySuccess(b.notifier, "Exercise added")
		return nil
	})
	return created, err
}

// RemoveExercise deletes one exercise from a routine. The remaining
// exercises keep their orden values and the routine is never deleted here.
func (b *RoutineBoard) RemoveExercise(ctx context.Context, routineID, exerciseID int) error {
	routine, ok := b.routines.Get(routineID)
	if !ok {
		return fmt.Errorf("routine %d not found", routineID)
	}
	if !hasExercise(routine, exerciseID) {
		return fmt.Errorf("exercise %d is not part of routine %d", exerciseID, routineID)
	}

	return b.routines.Guard(fmt.Sprintf("delete-exercise:%d", exerciseID), func() error {
		if err := b.api.DeleteRoutineExercise(ctx, exerciseID); err != nil {
			b.logger.WithError(err).WithFields(logrus.Fields{
				"routine_id":  routineID,
				"exercise_id": exerciseID,
			}).Error("Failed to remove exercise from routine")
			notifyError(b.notifier, "Could not remove the exercise")
			return err
		}
		b.routines.Update(routineID, func(r *models.Routine) {
			kept := make([]models.RoutineExercise, 0, len(r.Ejercicios))
			for _, e := range r.Ejercicios {
				if e.ID != exerciseID {
					kept = append(kept, e)
				}
			}
			r.Ejercicios = kept
		})
		notifySuccess(b.notifier, "Exercise removed")
		return nil
	})
}

// Rename is pessimistic: the name changes locally only after the backend
// confirms.
func (b *RoutineBoard) Rename(ctx context.Context, id int, nombre string) error {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		notifyError(b.notifier, "The name cannot be empty")
		return validation.New("Nombre", "required")
	}
	current, ok := b.routines.Get(id)
	if !ok {
		return fmt.Errorf("routine %d not found", id)
	}

	return b.routines.Guard(fmt.Sprintf("update:%d", id), func() error {
		updated, err := b.api.UpdateRoutine(ctx, id, models.RoutinePatch{Nombre: nombre, Dia: current.Dia})
		if err != nil {
			b.logger.WithError(err).WithField("routine_id", id).Error("Failed to rename routine")
			notifyError(b.notifier, "Could not update the routine")
			return err
		}
		b.routines.Update(id, func(r *models.Routine) {
			r.Nombre = updated.Nombre
			if updated.Dia != "" {
				r.Dia = updated.Dia
			}
		})
		notifySuccess(b.notifier, "Routine updated")
		return nil
	})
}

func (b *RoutineBoard) Remove(ctx context.Context, id int) error {
	return b.routines.Guard(deleteKey(id), func() error {
		if err := b.api.DeleteRoutine(ctx, id); err != nil {
			b.logger.WithError(err).WithField("routine_id", id).Error("Failed to delete routine")
			notifyError(b.notifier, "Could not delete the routine")
			return err
		}
		b.routines.Remove(id)
		b.clearReorderState(id)
		notifySuccess(b.notifier, "Routine deleted")
		return nil
	})
}

func (b *RoutineBoard) Get(id int) (models.Routine, bool) {
	return b.routines.Get(id)
}

// RoutineFor returns the routine scheduled on dia.
func (b *RoutineBoard) RoutineFor(dia models.Weekday) (models.Routine, bool) {
	for _, r := range b.routines.Items() {
		if r.Dia == dia {
			return r, true
		}
	}
	return models.Routine{}, false
}

// ByDay lists the routines in weekday order, Monday first.
func (b *RoutineBoard) ByDay() []models.Routine {
	items := b.routines.Items()
	sort.SliceStable(items, func(i, j int) bool {
		return dayRank(items[i].Dia) < dayRank(items[j].Dia)
	})
	return items
}

// ExerciseTypes is the list offered when adding exercises.
func (b *RoutineBoard) ExerciseTypes() []models.ExerciseType {
	return b.types.Items()
}

// ExerciseName resolves the display name of a routine exercise from the
// exercise-type list.
func (b *RoutineBoard) ExerciseName(e models.RoutineExercise) string {
	if t, ok := b.types.Get(e.TipoEjercicio); ok {
		return t.Nombre
	}
	if e.NombreEjercicio != "" {
		return e.NombreEjercicio
	}
	return unknownExerciseName
}

// Close detaches the board; late responses are ignored.
func (b *RoutineBoard) Close() {
	b.routines.Close()
	b.types.Close()
}

func hasExercise(r models.Routine, exerciseID int) bool {
	for _, e := range r.Ejercicios {
		if e.ID == exerciseID {
			return true
		}
	}
	return false
}

func dayRank(d models.Weekday) int {
	if i := d.Index(); i >= 0 {
		return i
	}
	return len(models.Weekdays())
}

func sortByOrden(items []models.RoutineExercise) []models.RoutineExercise {
	out := append([]models.RoutineExercise(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Orden < out[j].Orden })
	return out
}
