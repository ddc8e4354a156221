package container

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/config"
	"fittrack/internal/logger"
	"fittrack/internal/models"
	"fittrack/internal/services"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	logger.SetOutput(io.Discard)
	return config.Config{
		APIURL:         "http://127.0.0.1:1",
		SessionBackend: config.SessionBackendFile,
		SessionFile:    filepath.Join(t.TempDir(), "session.json"),
	}
}

func TestNewWiresControllers(t *testing.T) {
	c, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.False(t, c.Session.Authenticated())
	assert.NotNil(t, c.Auth)
	assert.NotNil(t, c.Exercises)
	assert.NotNil(t, c.Routines)
	assert.NotNil(t, c.Friendships)
	assert.NotNil(t, c.Feed)
}

func TestClearSessionReplacesControllers(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, testConfig(t), &services.NotificationLog{})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Session.SaveSession(ctx, models.Credentials{Access: "a", Refresh: "r"}, models.User{ID: 1, Username: "juan"}))
	before := c.Feed

	require.NoError(t, c.Session.ClearSession(ctx))

	assert.NotSame(t, before, c.Feed)
	_, err = before.Publish(ctx, "hola")
	assert.Error(t, err)
}

func TestUnknownSessionBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.SessionBackend = "etcd"

	_, err := New(context.Background(), cfg, nil)

	assert.ErrorContains(t, err, "unknown session backend")
}
