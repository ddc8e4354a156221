package services

import (
	"context"

	"fittrack/internal/models"
)

// The controllers depend on these narrow views of the backend;
// *apiclient.Client satisfies all of them.

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.Credentials, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Refresh(ctx context.Context, refresh string) (*models.Credentials, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	UpdateCurrentUser(ctx context.Context, patch models.ProfileUpdate) (*models.User, error)
	Logout(ctx context.Context, refresh string) error
}

type ExerciseTypeAPI interface {
	ListExerciseTypes(ctx context.Context) ([]models.ExerciseType, error)
	CreateExerciseType(ctx context.Context, draft models.ExerciseTypeDraft) (*models.ExerciseType, error)
	DeleteExerciseType(ctx context.Context, id int) error
}

type RoutineAPI interface {
	ListExerciseTypes(ctx context.Context) ([]models.ExerciseType, error)
	ListRoutines(ctx context.Context) ([]models.Routine, error)
	CreateRoutine(ctx context.Context, draft models.RoutineDraft) (*models.Routine, error)
	UpdateRoutine(ctx context.Context, id int, patch models.RoutinePatch) (*models.Routine, error)
	DeleteRoutine(ctx context.Context, id int) error
	ReorderRoutineExercises(ctx context.Context, routineID int, entries []models.OrderEntry) error
	ListRoutineExercises(ctx context.Context, routineID int) ([]models.RoutineExercise, error)
	CreateRoutineExercise(ctx context.Context, draft models.RoutineExerciseDraft) (*models.RoutineExercise, error)
	DeleteRoutineExercise(ctx context.Context, id int) error
}

type FriendshipAPI interface {
	ListFriendships(ctx context.Context) ([]models.Friendship, error)
	CreateFriendship(ctx context.Context, input string) (*models.Friendship, error)
	UpdateFriendship(ctx context.Context, id int, status models.FriendshipStatus) (*models.Friendship, error)
	DeleteFriendship(ctx context.Context, id int) error
}

type PostAPI interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, draft models.PostDraft) (*models.Post, error)
	LikePost(ctx context.Context, id int) error
	UnlikePost(ctx context.Context, id int) error
}
