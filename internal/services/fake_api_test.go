package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"fittrack/internal/models"
	"fittrack/internal/session"
)

var errBackend = errors.New("backend unavailable")

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestSession(user *models.User) (*session.Session, *session.MemoryBackend) {
	backend := session.NewMemoryBackend()
	sess := session.New(backend, quietLogger())
	if user != nil {
		_ = sess.SaveSession(context.Background(), models.Credentials{Access: "access", Refresh: "refresh"}, *user)
	}
	return sess, backend
}

// fakeAPI is an in-memory backend. Setting a field in fail makes the
// matching method return errBackend.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
	next  int

	creds      *models.Credentials
	me         *models.User
	types      []models.ExerciseType
	routines   []models.Routine
	exercises  map[int][]models.RoutineExercise
	friends    []models.Friendship
	posts      []models.Post
	reordered  map[int][]models.OrderEntry
	deleted    []int
	registered *models.RegisterRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		fail:      make(map[string]bool),
		next:      100,
		exercises: make(map[int][]models.RoutineExercise),
		reordered: make(map[int][]models.OrderEntry),
	}
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.fail[name] {
		return errBackend
	}
	return nil
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) id() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return f.next
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (*models.Credentials, error) {
	if err := f.record("Login"); err != nil {
		return nil, err
	}
	return f.creds, nil
}

func (f *fakeAPI) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := f.record("Register"); err != nil {
		return nil, err
	}
	f.registered = &req
	return &models.User{ID: 7, Username: req.Username}, nil
}

func (f *fakeAPI) Refresh(_ context.Context, _ string) (*models.Credentials, error) {
	if err := f.record("Refresh"); err != nil {
		return nil, err
	}
	return &models.Credentials{Access: "refreshed", Refresh: "refresh"}, nil
}

func (f *fakeAPI) CurrentUser(_ context.Context, token string) (*models.User, error) {
	if err := f.record("CurrentUser:" + token); err != nil {
		return nil, err
	}
	return f.me, nil
}

func (f *fakeAPI) UpdateCurrentUser(_ context.Context, patch models.ProfileUpdate) (*models.User, error) {
	if err := f.record("UpdateCurrentUser"); err != nil {
		return nil, err
	}
	u := *f.me
	u.Nombre, u.Apellidos = patch.Nombre, patch.Apellidos
	return &u, nil
}

func (f *fakeAPI) Logout(_ context.Context, refresh string) error {
	return f.record("Logout:" + refresh)
}

func (f *fakeAPI) ListExerciseTypes(_ context.Context) ([]models.ExerciseType, error) {
	if err := f.record("ListExerciseTypes"); err != nil {
		return nil, err
	}
	return append([]models.ExerciseType(nil), f.types...), nil
}

func (f *fakeAPI) CreateExerciseType(_ context.Context, draft models.ExerciseTypeDraft) (*models.ExerciseType, error) {
	if err := f.record("CreateExerciseType"); err != nil {
		return nil, err
	}
	return &models.ExerciseType{ID: f.id(), Nombre: draft.Nombre, Descripcion: draft.Descripcion, GrupoMuscular: draft.GrupoMuscular}, nil
}

func (f *fakeAPI) DeleteExerciseType(_ context.Context, id int) error {
	return f.record("DeleteExerciseType")
}

func (f *fakeAPI) ListRoutines(_ context.Context) ([]models.Routine, error) {
	if err := f.record("ListRoutines"); err != nil {
		return nil, err
	}
	return append([]models.Routine(nil), f.routines...), nil
}

func (f *fakeAPI) CreateRoutine(_ context.Context, draft models.RoutineDraft) (*models.Routine, error) {
	if err := f.record("CreateRoutine"); err != nil {
		return nil, err
	}
	// The backend serializer does not echo dia.
	return &models.Routine{ID: f.id(), Nombre: draft.Nombre, Usuario: draft.Usuario}, nil
}

func (f *fakeAPI) UpdateRoutine(_ context.Context, id int, patch models.RoutinePatch) (*models.Routine, error) {
	if err := f.record("UpdateRoutine"); err != nil {
		return nil, err
	}
	return &models.Routine{ID: id, Nombre: patch.Nombre, Dia: patch.Dia}, nil
}

func (f *fakeAPI) DeleteRoutine(_ context.Context, id int) error {
	if err := f.record("DeleteRoutine"); err != nil {
		return err
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) ReorderRoutineExercises(_ context.Context, routineID int, entries []models.OrderEntry) error {
	if err := f.record("ReorderRoutineExercises"); err != nil {
		return err
	}
	f.mu.Lock()
	f.reordered[routineID] = entries
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) ListRoutineExercises(_ context.Context, routineID int) ([]models.RoutineExercise, error) {
	if err := f.record("ListRoutineExercises"); err != nil {
		return nil, err
	}
	return append([]models.RoutineExercise(nil), f.exercises[routineID]...), nil
}

func (f *fakeAPI) CreateRoutineExercise(_ context.Context, draft models.RoutineExerciseDraft) (*models.RoutineExercise, error) {
	if err := f.record("CreateRoutineExercise"); err != nil {
		return nil, err
	}
	return &models.RoutineExercise{
		ID:            f.id(),
		Rutina:        draft.Rutina,
		TipoEjercicio: draft.TipoEjercicio,
		Sets:          draft.Sets,
		Repeticiones:  draft.Repeticiones,
		RecordPeso:    draft.RecordPeso,
		Orden:         draft.Orden,
	}, nil
}

func (f *fakeAPI) DeleteRoutineExercise(_ context.Context, id int) error {
	return f.record("DeleteRoutineExercise")
}

func (f *fakeAPI) ListFriendships(_ context.Context) ([]models.Friendship, error) {
	if err := f.record("ListFriendships"); err != nil {
		return nil, err
	}
	return append([]models.Friendship(nil), f.friends...), nil
}

func (f *fakeAPI) CreateFriendship(_ context.Context, input string) (*models.Friendship, error) {
	if err := f.record("CreateFriendship"); err != nil {
		return nil, err
	}
	return &models.Friendship{
		ID:              f.id(),
		UsuarioUsername: "juan",
		AmigoUsername:   input,
		Tipo:            models.FriendshipEnviada,
		Status:          models.FriendshipPendiente,
	}, nil
}

func (f *fakeAPI) UpdateFriendship(_ context.Context, id int, status models.FriendshipStatus) (*models.Friendship, error) {
	if err := f.record("UpdateFriendship"); err != nil {
		return nil, err
	}
	return &models.Friendship{ID: id, Status: status}, nil
}

func (f *fakeAPI) DeleteFriendship(_ context.Context, id int) error {
	return f.record("DeleteFriendship")
}

func (f *fakeAPI) ListPosts(_ context.Context) ([]models.Post, error) {
	if err := f.record("ListPosts"); err != nil {
		return nil, err
	}
	return append([]models.Post(nil), f.posts...), nil
}

func (f *fakeAPI) CreatePost(_ context.Context, draft models.PostDraft) (*models.Post, error) {
	if err := f.record("CreatePost"); err != nil {
		return nil, err
	}
	return &models.Post{ID: f.id(), Usuario: "juan", Contenido: draft.Contenido, Tipo: draft.Tipo}, nil
}

func (f *fakeAPI) LikePost(_ context.Context, id int) error {
	return f.record("LikePost")
}

func (f *fakeAPI) UnlikePost(_ context.Context, id int) error {
	return f.record("UnlikePost")
}
