package session

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSessionSurvivesReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	first := New(NewFileBackend(path), quietLogger())
	require.NoError(t, first.Init(ctx))
	_, ok := first.Credential()
	assert.False(t, ok)

	creds := models.Credentials{Access: "fakeAccessToken", Refresh: "fakeRefreshToken"}
	user := models.User{ID: 1, Username: "juan"}
	require.NoError(t, first.SaveSession(ctx, creds, user))

	reloaded := New(NewFileBackend(path), quietLogger())
	require.NoError(t, reloaded.Init(ctx))

	gotCreds, ok := reloaded.Credential()
	require.True(t, ok)
	assert.Equal(t, creds, gotCreds)
	gotUser, ok := reloaded.User()
	require.True(t, ok)
	assert.Equal(t, user, gotUser)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSessionStoresFixedKeys(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := New(backend, quietLogger())

	require.NoError(t, s.SaveSession(ctx,
		models.Credentials{Access: "fakeAccessToken", Refresh: "fakeRefreshToken"},
		models.User{ID: 1, Username: "juan"},
	))

	assert.Equal(t, `{"access":"fakeAccessToken","refresh":"fakeRefreshToken"}`, backend.Raw(KeyAuthToken))
	assert.Equal(t, `{"id":1,"username":"juan"}`, backend.Raw(KeyUser))
}

func TestSaveSessionOverwritesPrior(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend(), quietLogger())

	require.NoError(t, s.SaveSession(ctx, models.Credentials{Access: "a1"}, models.User{ID: 1, Username: "juan"}))
	require.NoError(t, s.SaveSession(ctx, models.Credentials{Access: "a2"}, models.User{ID: 2, Username: "ana"}))

	token, ok := s.AccessToken()
	require.True(t, ok)
	assert.Equal(t, "a2", token)
	user, _ := s.User()
	assert.Equal(t, 2, user.ID)
}

func TestMalformedSessionIsAbsent(t *testing.T) {
	ctx := context.Background()

	cases := map[string]Snapshot{
		"token not json":       {Token: []byte("not-json"), User: []byte(`{"id":1}`)},
		"token without access": {Token: []byte(`{"refresh":"r"}`)},
		"user not json":        {Token: []byte(`{"access":"a"}`), User: []byte("{broken")},
	}
	for name, snap := range cases {
		t.Run(name, func(t *testing.T) {
			backend := NewMemoryBackend()
			require.NoError(t, backend.Save(ctx, snap))

			s := New(backend, quietLogger())
			require.NoError(t, s.Init(ctx))

			assert.False(t, s.Authenticated())
			_, ok := s.User()
			assert.False(t, ok)
		})
	}
}

func TestCorruptSessionFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o600))

	s := New(NewFileBackend(path), quietLogger())
	require.NoError(t, s.Init(context.Background()))
	assert.False(t, s.Authenticated())
}

func TestClearSessionNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	s := New(NewFileBackend(path), quietLogger())
	require.NoError(t, s.SaveSession(ctx, models.Credentials{Access: "a"}, models.User{ID: 1}))

	calls := 0
	s.Subscribe(func() { calls++ })

	require.NoError(t, s.ClearSession(ctx))

	assert.Equal(t, 1, calls)
	assert.False(t, s.Authenticated())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestUpdateUserKeepsCredential(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := New(backend, quietLogger())
	require.NoError(t, s.SaveSession(ctx, models.Credentials{Access: "a", Refresh: "r"}, models.User{ID: 1, Nombre: "Juan"}))

	require.NoError(t, s.UpdateUser(ctx, models.User{ID: 1, Nombre: "Juan Carlos"}))

	reloaded := New(backend, quietLogger())
	require.NoError(t, reloaded.Init(ctx))
	user, _ := reloaded.User()
	assert.Equal(t, "Juan Carlos", user.Nombre)
	creds, _ := reloaded.Credential()
	assert.Equal(t, "r", creds.Refresh)
}

func TestUpdateUserWithoutSession(t *testing.T) {
	s := New(NewMemoryBackend(), quietLogger())
	assert.Error(t, s.UpdateUser(context.Background(), models.User{ID: 1}))
}

func TestCredentialExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	got, ok := CredentialExpiry(token)
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = CredentialExpiry("fakeAccessToken")
	assert.False(t, ok)
}
