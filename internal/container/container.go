package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"fittrack/internal/apiclient"
	"fittrack/internal/cache"
	"fittrack/internal/config"
	"fittrack/internal/database"
	"fittrack/internal/logger"
	"fittrack/internal/services"
	"fittrack/internal/session"
)

// Container holds the long-lived pieces of the client: the session store,
// the API client and one controller per screen.
type Container struct {
	Config   config.Config
	Logger   *logrus.Logger
	Session  *session.Session
	API      *apiclient.Client
	Notifier services.Notifier

	Auth        *services.AuthService
	Exercises   *services.ExerciseCatalog
	Routines    *services.RoutineBoard
	Friendships *services.FriendshipBook
	Feed        *services.Feed

	db    *pgxpool.Pool
	redis *redis.Client
}

func New(ctx context.Context, cfg config.Config, notifier services.Notifier) (*Container, error) {
	log := logger.Get()
	if notifier == nil {
		notifier = services.NopNotifier{}
	}

	c := &Container{Config: cfg, Logger: log, Notifier: notifier}

	backend, err := c.newSessionBackend(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	c.Session = session.New(backend, log)
	if err := c.Session.Init(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	c.API = apiclient.NewClientWithConfig(&apiclient.ClientConfig{
		BaseURL:     cfg.APIURL,
		Timeout:     cfg.HTTPTimeout,
		RateLimit:   cfg.RateLimit,
		UserAgent:   cfg.UserAgent,
		Logger:      log,
		Credentials: c.Session,
	})

	c.Auth = services.NewAuthService(c.API, c.Session, notifier, log)
	c.buildControllers()

	// Controllers from a previous user must not receive late responses.
	c.Session.Subscribe(func() {
		c.closeControllers()
		c.buildControllers()
	})

	log.WithFields(logrus.Fields{
		"api_url":         cfg.APIURL,
		"session_backend": cfg.SessionBackend,
		"authenticated":   c.Session.Authenticated(),
	}).Info("Client initialized")
	return c, nil
}

func (c *Container) buildControllers() {
	c.Exercises = services.NewExerciseCatalog(c.API, c.Notifier, c.Logger)
	c.Routines = services.NewRoutineBoard(c.API, c.Session, c.Notifier, c.Logger)
	c.Friendships = services.NewFriendshipBook(c.API, c.Notifier, c.Logger)
	c.Feed = services.NewFeed(c.API, c.Notifier, c.Logger)
}

func (c *Container) closeControllers() {
	if c.Exercises != nil {
		c.Exercises.Close()
	}
	if c.Routines != nil {
		c.Routines.Close()
	}
	if c.Friendships != nil {
		c.Friendships.Close()
	}
	if c.Feed != nil {
		c.Feed.Close()
	}
}

func (c *Container) newSessionBackend(ctx context.Context) (session.Backend, error) {
	switch c.Config.SessionBackend {
	case config.SessionBackendFile, "":
		return session.NewFileBackend(c.Config.SessionFile), nil

	case config.SessionBackendRedis:
		client, err := cache.Open(ctx)
		if err != nil {
			return nil, err
		}
		c.redis = client
		return session.NewRedisBackend(client), nil

	case config.SessionBackendPostgres:
		connStr, err := database.ConnString()
		if err != nil {
			return nil, err
		}
		pool, err := database.Open(ctx, connStr)
		if err != nil {
			return nil, err
		}
		c.db = pool
		backend := session.NewPostgresBackend(pool)
		if err := backend.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return backend, nil

	default:
		return nil, fmt.Errorf("unknown session backend %q", c.Config.SessionBackend)
	}
}

func (c *Container) Close() {
	c.closeControllers()
	if c.redis != nil {
		c.redis.Close()
		c.Logger.Info("Redis connection closed")
	}
	if c.db != nil {
		c.db.Close()
		c.Logger.Info("Database connection closed")
	}
}
