package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"fittrack/internal/models"
	"fittrack/internal/syncstate"
)

type PopulatorState int

const (
	// PopulatorCreated: the routine exists but its dialog is not open yet.
	PopulatorCreated PopulatorState = iota
	PopulatorPopulating
	// PopulatorClosing: the cleanup delete of an empty routine is in flight.
	PopulatorClosing
	PopulatorConfirmed
	PopulatorDiscarded
)

func (s PopulatorState) String() string {
	switch s {
	case PopulatorCreated:
		return "created"
	case PopulatorPopulating:
		return "populating"
	case PopulatorClosing:
		return "closing"
	case PopulatorConfirmed:
		return "confirmed"
	case PopulatorDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// CloseReason is how the add-exercises dialog was dismissed. Every reason
// is treated the same.
type CloseReason string

const (
	CloseButton   CloseReason = "close"
	CloseBackdrop CloseReason = "backdrop"
	CloseSave     CloseReason = "save"
)

// ExerciseInput is the add-exercise form.
type ExerciseInput struct {
	TipoEjercicio int
	Sets          int
	Repeticiones  int
	RecordPeso    float64
}

// DefaultExerciseInput returns the form values shown when the dialog opens.
func DefaultExerciseInput() ExerciseInput {
	return ExerciseInput{Sets: 3, Repeticiones: 12, RecordPeso: 0}
}

// Populator is the dialog that follows routine creation. Closing it before
// any exercise was added deletes the routine; once one exercise has been
// added the routine is kept whatever happens afterwards.
type Populator struct {
	board     *RoutineBoard
	routineID int

	mu     sync.Mutex
	state  PopulatorState
	added  int
	adding int
}

func newPopulator(board *RoutineBoard, routineID int) *Populator {
	return &Populator{board: board, routineID: routineID, state: PopulatorCreated}
}

func (p *Populator) open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PopulatorCreated {
		p.state = PopulatorPopulating
	}
}

func (p *Populator) RoutineID() int {
	return p.routineID
}

func (p *Populator) State() PopulatorState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Added is the number of exercises added through this dialog.
func (p *Populator) Added() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.added
}

func (p *Populator) AddExercise(ctx context.Context, input ExerciseInput) (*models.RoutineExercise, error) {
	p.mu.Lock()
	if p.state != PopulatorPopulating {
		p.mu.Unlock()
		return nil, ErrTransitionNotAllowed
	}
	p.adding++
	p.mu.Unlock()

	exercise, err := p.board.AddExercise(ctx, p.routineID, input)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.adding--
	if err != nil {
		return nil, err
	}
	p.added++
	return exercise, nil
}

// Close dismisses the dialog. If the routine is still empty it is deleted;
// when that delete fails the dialog stays open and the error is returned.
// A close while an add or the cleanup delete is in flight returns
// syncstate.ErrInFlight.
func (p *Populator) Close(ctx context.Context, reason CloseReason) error {
	p.mu.Lock()
	switch {
	case p.state == PopulatorConfirmed || p.state == PopulatorDiscarded:
		p.mu.Unlock()
		return nil
	case p.state == PopulatorClosing || p.adding > 0:
		p.mu.Unlock()
		return syncstate.ErrInFlight
	}
	added := p.added
	if added > 0 {
		p.state = PopulatorConfirmed
	} else {
		p.state = PopulatorClosing
	}
	p.mu.Unlock()

	log := p.board.logger.WithFields(logrus.Fields{
		"routine_id": p.routineID,
		"reason":     reason,
		"added":      added,
	})

	if added > 0 {
		log.Info("Routine confirmed")
		if reason == CloseSave {
			notifySuccess(p.board.notifier, "Routine saved")
		}
		return nil
	}

	err := p.board.routines.Guard(deleteKey(p.routineID), func() error {
		if err := p.board.api.DeleteRoutine(ctx, p.routineID); err != nil {
			return err
		}
		p.board.routines.Remove(p.routineID)
		p.board.clearReorderState(p.routineID)
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to delete empty routine")
		notifyError(p.board.notifier, "Could not discard the empty routine")
		p.setState(PopulatorPopulating)
		return err
	}
	p.setState(PopulatorDiscarded)
	log.Info("Discarded empty routine")
	return nil
}

func (p *Populator) setState(s PopulatorState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}
