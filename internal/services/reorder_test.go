package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/models"
	"fittrack/internal/syncstate"
)

func exercisesWithIDs(ids ...int) []models.RoutineExercise {
	out := make([]models.RoutineExercise, len(ids))
	for i, id := range ids {
		out[i] = models.RoutineExercise{ID: id, Rutina: 1, TipoEjercicio: 1, Orden: i}
	}
	return out
}

func ids(items []models.RoutineExercise) []int {
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestReorderExercisesKeepsOrdenDense(t *testing.T) {
	items := exercisesWithIDs(10, 11, 12, 13, 14)
	for from := range items {
		for to := range items {
			got, err := ReorderExercises(items, from, to)
			require.NoError(t, err)

			ordens := make([]int, len(got))
			for i, e := range got {
				ordens[i] = e.Orden
				assert.Equal(t, i, e.Orden)
			}
			sort.Ints(ordens)
			assert.Equal(t, []int{0, 1, 2, 3, 4}, ordens)
			assert.Equal(t, items[from].ID, got[to].ID)
		}
	}
	assert.Equal(t, []int{10, 11, 12, 13, 14}, ids(items))
}

func TestReorderExercisesRejectsOutOfRange(t *testing.T) {
	_, err := ReorderExercises(exercisesWithIDs(1, 2), 0, 2)
	assert.Error(t, err)
}

func loadedBoard(t *testing.T, api *fakeAPI) (*RoutineBoard, *NotificationLog) {
	t.Helper()
	api.routines = []models.Routine{{ID: 1, Nombre: "Rutina lunes", Dia: models.Lunes}}
	api.exercises[1] = exercisesWithIDs(10, 11, 12)
	board, notes := newTestBoard(t, api)
	require.NoError(t, board.Load(context.Background()))
	return board, notes
}

func TestReorderPersistsWholeBatch(t *testing.T) {
	api := newFakeAPI()
	board, _ := loadedBoard(t, api)

	board.BeginDrag(1)
	assert.Equal(t, ReorderDragging, board.ReorderState(1))
	require.NoError(t, board.Reorder(context.Background(), 1, 2, 0))

	assert.Equal(t, ReorderIdle, board.ReorderState(1))
	assert.Equal(t, []models.OrderEntry{
		{ID: 12, Orden: 0},
		{ID: 10, Orden: 1},
		{ID: 11, Orden: 2},
	}, api.reordered[1])
	r, _ := board.Get(1)
	assert.Equal(t, []int{12, 10, 11}, ids(r.Ejercicios))
}

func TestReorderFailureKeepsLocalOrder(t *testing.T) {
	api := newFakeAPI()
	api.fail["ReorderRoutineExercises"] = true
	board, notes := loadedBoard(t, api)

	err := board.Reorder(context.Background(), 1, 0, 2)
	require.Error(t, err)

	r, _ := board.Get(1)
	assert.Equal(t, []int{11, 12, 10}, ids(r.Ejercicios))
	assert.Equal(t, ReorderIdleStale, board.ReorderState(1))
	last, ok := notes.Last()
	require.True(t, ok)
	assert.Equal(t, models.NotificationError, last.Type)
}

func TestDropOnSamePositionIsNoop(t *testing.T) {
	api := newFakeAPI()
	board, _ := loadedBoard(t, api)

	board.BeginDrag(1)
	require.NoError(t, board.Reorder(context.Background(), 1, 1, 1))

	assert.Equal(t, ReorderIdle, board.ReorderState(1))
	assert.Zero(t, api.count("ReorderRoutineExercises"))
}

// blockingReorderAPI holds reorder calls until release is closed.
type blockingReorderAPI struct {
	*fakeAPI
	started chan struct{}
	release chan struct{}
}

func (b *blockingReorderAPI) ReorderRoutineExercises(ctx context.Context, routineID int, entries []models.OrderEntry) error {
	close(b.started)
	<-b.release
	return b.fakeAPI.ReorderRoutineExercises(ctx, routineID, entries)
}

func TestConcurrentReorderIsRejected(t *testing.T) {
	api := &blockingReorderAPI{fakeAPI: newFakeAPI(), started: make(chan struct{}), release: make(chan struct{})}
	api.routines = []models.Routine{{ID: 1, Dia: models.Lunes}}
	api.exercises[1] = exercisesWithIDs(10, 11, 12)
	board, _ := newTestBoard(t, api)
	ctx := context.Background()
	require.NoError(t, board.Load(ctx))

	done := make(chan error, 1)
	go func() { done <- board.Reorder(ctx, 1, 0, 1) }()

	select {
	case <-api.started:
	case <-time.After(time.Second):
		t.Fatal("reorder never reached the backend")
	}
	assert.Equal(t, ReorderPersisting, board.ReorderState(1))
	assert.True(t, board.Reordering(1))
	assert.ErrorIs(t, board.Reorder(ctx, 1, 1, 2), syncstate.ErrInFlight)

	close(api.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, api.count("ReorderRoutineExercises"))
}

func TestReorderUnknownRoutineLeavesNoState(t *testing.T) {
	api := newFakeAPI()
	board, _ := loadedBoard(t, api)

	board.BeginDrag(42)
	require.Error(t, board.Reorder(context.Background(), 42, 0, 1))

	board.mu.Lock()
	_, tracked := board.reorders[42]
	board.mu.Unlock()
	assert.False(t, tracked)
	assert.Zero(t, api.count("ReorderRoutineExercises"))
}
