package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"fittrack/internal/models"
)

var (
	// ErrNoToken means the login answer did not carry an access token.
	ErrNoToken = errors.New("token not received from server")
	// ErrNotRegistered means the register answer did not echo a username.
	ErrNotRegistered = errors.New("user could not be created")
)

// Login exchanges email and password for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Credentials, error) {
	var creds models.Credentials
	err := c.Do(ctx, http.MethodPost, "/login/", models.LoginRequest{Email: email, Password: password}, &creds, Public())
	if err != nil {
		return nil, err
	}
	if creds.Access == "" {
		return nil, ErrNoToken
	}
	return &creds, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := c.Do(ctx, http.MethodPost, "/registro/", req, &user, Public()); err != nil {
		return nil, err
	}
	if user.Username == "" {
		return nil, ErrNotRegistered
	}
	return &user, nil
}

// Refresh trades a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refresh string) (*models.Credentials, error) {
	var creds models.Credentials
	if err := c.Do(ctx, http.MethodPost, "/refresh/", models.RefreshRequest{Refresh: refresh}, &creds, Public()); err != nil {
		return nil, err
	}
	if creds.Access == "" {
		return nil, ErrNoToken
	}
	if creds.Refresh == "" {
		creds.Refresh = refresh
	}
	return &creds, nil
}

// CurrentUser fetches the profile for token. An empty token uses the session.
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	var opts []RequestOption
	if token != "" {
		opts = append(opts, WithToken(token))
	}
	var user models.User
	if err := c.Do(ctx, http.MethodGet, "/users/me/", nil, &user, opts...); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateCurrentUser(ctx context.Context, patch models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.Do(ctx, http.MethodPut, "/users/me/", patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context, refresh string) error {
	return c.Do(ctx, http.MethodPost, "/logout/", models.RefreshRequest{Refresh: refresh}, nil)
}

func (c *Client) ListExerciseTypes(ctx context.Context) ([]models.ExerciseType, error) {
	var out []models.ExerciseType
	if err := c.Do(ctx, http.MethodGet, "/tipo-ejercicios/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateExerciseType(ctx context.Context, draft models.ExerciseTypeDraft) (*models.ExerciseType, error) {
	var out models.ExerciseType
	if err := c.Do(ctx, http.MethodPost, "/tipo-ejercicios/", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteExerciseType(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/tipo-ejercicios/%d/", id), nil, nil)
}

func (c *Client) ListRoutines(ctx context.Context) ([]models.Routine, error) {
	var out []models.Routine
	if err := c.Do(ctx, http.MethodGet, "/rutinas/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRoutine(ctx context.Context, draft models.RoutineDraft) (*models.Routine, error) {
	var out models.Routine
	if err := c.Do(ctx, http.MethodPost, "/rutinas/", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRoutine(ctx context.Context, id int, patch models.RoutinePatch) (*models.Routine, error) {
	var out models.Routine
	if err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/rutinas/%d/", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRoutine(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/rutinas/%d/", id), nil, nil)
}

// ReorderRoutineExercises persists the full {id, orden} batch of a routine.
func (c *Client) ReorderRoutineExercises(ctx context.Context, routineID int, entries []models.OrderEntry) error {
	body := models.ReorderRequest{Ejercicios: entries}
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("/rutinas/%d/reorder-ejercicios/", routineID), body, nil)
}

func (c *Client) ListRoutineExercises(ctx context.Context, routineID int) ([]models.RoutineExercise, error) {
	params := url.Values{}
	params.Set("rutina", strconv.Itoa(routineID))

	var out []models.RoutineExercise
	if err := c.Do(ctx, http.MethodGet, "/ejercicio-rutinas/?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRoutineExercise(ctx context.Context, draft models.RoutineExerciseDraft) (*models.RoutineExercise, error) {
	var out models.RoutineExercise
	if err := c.Do(ctx, http.MethodPost, "/ejercicio-rutinas/", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRoutineExercise(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/ejercicio-rutinas/%d/", id), nil, nil)
}

func (c *Client) ListFriendships(ctx context.Context) ([]models.Friendship, error) {
	var out []models.Friendship
	if err := c.Do(ctx, http.MethodGet, "/amistades/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateFriendship sends a request to the user matching input (email or username).
func (c *Client) CreateFriendship(ctx context.Context, input string) (*models.Friendship, error) {
	var out models.Friendship
	if err := c.Do(ctx, http.MethodPost, "/amistades/crear/", models.FriendRequest{AmigoInput: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFriendship(ctx context.Context, id int, status models.FriendshipStatus) (*models.Friendship, error) {
	var out models.Friendship
	body := models.FriendshipStatusUpdate{Status: status}
	if err := c.Do(ctx, http.MethodPatch, fmt.Sprintf("/amistades/%d/actualizar/", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteFriendship(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/amistades/%d/eliminar/", id), nil, nil)
}

func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	if err := c.Do(ctx, http.MethodGet, "/publicaciones/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePost(ctx context.Context, draft models.PostDraft) (*models.Post, error) {
	var out models.Post
	if err := c.Do(ctx, http.MethodPost, "/publicaciones/", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LikePost(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodPost, fmt.Sprintf("/publicaciones/%d/like/", id), struct{}{}, nil)
}

func (c *Client) UnlikePost(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/publicaciones/%d/unlike/", id), nil, nil)
}
