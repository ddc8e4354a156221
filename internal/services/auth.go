package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"fittrack/internal/apiclient"
	"fittrack/internal/models"
	"fittrack/internal/session"
	"fittrack/internal/syncstate"
	"fittrack/internal/validation"
)

// AuthService drives login, registration, logout and the profile form.
type AuthService struct {
	api      AuthAPI
	session  *session.Session
	notifier Notifier
	logger   *logrus.Logger
	guard    *syncstate.Guard
}

func NewAuthService(api AuthAPI, sess *session.Session, notifier Notifier, logger *logrus.Logger) *AuthService {
	return &AuthService{
		api:      api,
		session:  sess,
		notifier: notifier,
		logger:   logger,
		guard:    syncstate.NewGuard(),
	}
}

// Login authenticates, stores the session and returns the route to open.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.Route, error) {
	req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validation.Struct(req); err != nil {
		notifyError(s.notifier, "Email and password are required")
		return "", err
	}

	var route models.Route
	err := s.guard.Do("login", func() error {
		if err := s.authenticate(ctx, req.Email, req.Password); err != nil {
			s.logger.WithError(err).WithField("email", req.Email).Warn("Login failed")
			notifyError(s.notifier, apiclient.Message(err, "Invalid email or password"))
			return err
		}
		route = models.RouteRutinas
		return nil
	})
	return route, err
}

// Register creates the account, signs in and returns the route to open.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (models.Route, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Password != req.Password2 {
		notifyError(s.notifier, "Passwords do not match")
		return "", validation.New("Password2", "eqfield")
	}
	if err := validation.Struct(req); err != nil {
		notifyError(s.notifier, "Fill in all fields")
		return "", err
	}

	var route models.Route
	err := s.guard.Do("register", func() error {
		if _, err := s.api.Register(ctx, req); err != nil {
			s.logger.WithError(err).WithField("username", req.Username).Warn("Registration failed")
			notifyError(s.notifier, apiclient.Message(err, "Could not create the account"))
			return err
		}
		if err := s.authenticate(ctx, req.Email, req.Password); err != nil {
			s.logger.WithError(err).Warn("Login after registration failed")
			notifyError(s.notifier, apiclient.Message(err, "Account created but login failed"))
			return err
		}
		notifySuccess(s.notifier, "Account created")
		route = models.RouteDashboard
		return nil
	})
	return route, err
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) error {
	creds, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	user, err := s.api.CurrentUser(ctx, creds.Access)
	if err != nil {
		return fmt.Errorf("failed to fetch current user: %w", err)
	}
	return s.session.SaveSession(ctx, *creds, *user)
}

// Logout tells the backend best-effort and always clears the local session.
func (s *AuthService) Logout(ctx context.Context) models.Route {
	if creds, ok := s.session.Credential(); ok {
		if err := s.api.Logout(ctx, creds.Refresh); err != nil {
			s.logger.WithError(err).Warn("Backend logout failed, clearing local session anyway")
		}
	}
	if err := s.session.ClearSession(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to clear persisted session")
	}
	return models.RouteLogin
}

// RefreshCredential swaps the stored access token using the refresh token.
func (s *AuthService) RefreshCredential(ctx context.Context) error {
	creds, ok := s.session.Credential()
	if !ok || creds.Refresh == "" {
		return apiclient.ErrAuthRequired
	}
	fresh, err := s.api.Refresh(ctx, creds.Refresh)
	if err != nil {
		s.logger.WithError(err).Warn("Token refresh failed")
		return err
	}
	return s.session.UpdateCredential(ctx, *fresh)
}

// Profile returns the stored profile, fetching it when only a credential
// is present.
func (s *AuthService) Profile(ctx context.Context) (models.User, error) {
	if user, ok := s.session.User(); ok {
		return user, nil
	}
	if !s.session.Authenticated() {
		return models.User{}, apiclient.ErrAuthRequired
	}

	user, err := s.api.CurrentUser(ctx, "")
	if err != nil {
		s.logger.WithError(err).Error("Failed to load profile")
		return models.User{}, err
	}
	if err := s.session.UpdateUser(ctx, *user); err != nil {
		s.logger.WithError(err).Warn("Failed to persist fetched profile")
	}
	return *user, nil
}

// UpdateProfile saves name fields and an optional new password. Nothing is
// shown as saved until the backend confirms.
func (s *AuthService) UpdateProfile(ctx context.Context, patch models.ProfileUpdate) (models.User, error) {
	if !s.session.Authenticated() {
		notifyError(s.notifier, "You need to sign in")
		return models.User{}, apiclient.ErrAuthRequired
	}
	patch.Nombre = strings.TrimSpace(patch.Nombre)
	patch.Apellidos = strings.TrimSpace(patch.Apellidos)
	if err := validation.Struct(patch); err != nil {
		notifyError(s.notifier, "Name and surname are required")
		return models.User{}, err
	}

	var updated models.User
	err := s.guard.Do("profile", func() error {
		user, err := s.api.UpdateCurrentUser(ctx, patch)
		if err != nil {
			s.logger.WithError(err).Error("Failed to update profile")
			notifyError(s.notifier, "Could not update profile")
			return err
		}
		if err := s.session.UpdateUser(ctx, *user); err != nil {
			s.logger.WithError(err).Warn("Failed to persist updated profile")
		}
		updated = *user
		notifySuccess(s.notifier, "Profile updated")
		return nil
	})
	return updated, err
}

// Saving reports whether a profile save is in flight.
func (s *AuthService) Saving() bool {
	return s.guard.Pending("profile")
}

// IsAuthError reports errors that require signing in again.
func IsAuthError(err error) bool {
	return errors.Is(err, apiclient.ErrAuthRequired) || apiclient.StatusCode(err) == 401
}
