// Package session keeps the authenticated identity of the client. A single
// Session is created at startup, read once from durable storage and handed
// to every controller that needs the credential or the current user.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"fittrack/internal/models"
)

type Session struct {
	backend Backend
	logger  *logrus.Logger

	mu        sync.RWMutex
	creds     *models.Credentials
	user      *models.User
	listeners []func()
}

func New(backend Backend, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{backend: backend, logger: logger}
}

// Init loads the persisted session. Malformed data is treated as no session.
func (s *Session) Init(ctx context.Context) error {
	snap, err := s.backend.Load(ctx)
	if errors.Is(err, ErrCorrupt) {
		s.logger.WithError(err).Warn("Stored session unreadable, re-authentication required")
		s.reset()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	creds, user, ok := decodeSnapshot(snap)
	if !ok {
		s.logger.Warn("Stored session malformed, re-authentication required")
		s.reset()
		return nil
	}

	s.mu.Lock()
	s.creds = creds
	s.user = user
	s.mu.Unlock()

	if creds != nil {
		fields := logrus.Fields{"has_user": user != nil}
		if exp, ok := CredentialExpiry(creds.Access); ok {
			fields["expires_at"] = exp
			if exp.Before(time.Now()) {
				s.logger.WithFields(fields).Warn("Stored access token has expired")
			}
		}
		s.logger.WithFields(fields).Debug("Session restored")
	}
	return nil
}

// SaveSession persists credential and profile, replacing any prior session.
func (s *Session) SaveSession(ctx context.Context, creds models.Credentials, user models.User) error {
	if creds.Access == "" {
		return errors.New("cannot save a session without access token")
	}

	snap, err := encodeSnapshot(&creds, &user)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.mu.Lock()
	s.creds = &creds
	s.user = &user
	s.mu.Unlock()
	return nil
}

// UpdateUser rewrites the stored profile, keeping the credential.
func (s *Session) UpdateUser(ctx context.Context, user models.User) error {
	s.mu.RLock()
	creds := s.creds
	s.mu.RUnlock()
	if creds == nil {
		return errors.New("no active session")
	}
	return s.SaveSession(ctx, *creds, user)
}

// UpdateCredential rewrites the stored token pair, keeping the profile.
func (s *Session) UpdateCredential(ctx context.Context, creds models.Credentials) error {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()

	snap, err := encodeSnapshot(&creds, user)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.mu.Lock()
	s.creds = &creds
	s.mu.Unlock()
	return nil
}

func (s *Session) Credential() (models.Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return models.Credentials{}, false
	}
	return *s.creds, true
}

// AccessToken satisfies apiclient.CredentialSource.
func (s *Session) AccessToken() (string, bool) {
	creds, ok := s.Credential()
	if !ok || creds.Access == "" {
		return "", false
	}
	return creds.Access, true
}

func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) Authenticated() bool {
	_, ok := s.AccessToken()
	return ok
}

// ClearSession drops the in-memory session, removes the persisted one and
// notifies subscribers. Memory is cleared even when the backend fails.
func (s *Session) ClearSession(ctx context.Context) error {
	s.reset()

	s.mu.RLock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}

	if err := s.backend.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Subscribe registers fn to run after every ClearSession.
func (s *Session) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// ExpiresAt reports the expiry encoded in the access token, when it has one.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token, ok := s.AccessToken()
	if !ok {
		return time.Time{}, false
	}
	return CredentialExpiry(token)
}

// CredentialExpiry decodes the exp claim of a JWT without verifying it. The
// backend stays the authority on validity.
func CredentialExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Session) reset() {
	s.mu.Lock()
	s.creds = nil
	s.user = nil
	s.mu.Unlock()
}

func decodeSnapshot(snap Snapshot) (*models.Credentials, *models.User, bool) {
	if len(snap.Token) == 0 {
		// a profile without a credential is useless
		return nil, nil, true
	}

	var creds models.Credentials
	if err := json.Unmarshal(snap.Token, &creds); err != nil || creds.Access == "" {
		return nil, nil, false
	}

	if len(snap.User) == 0 {
		return &creds, nil, true
	}
	var user models.User
	if err := json.Unmarshal(snap.User, &user); err != nil {
		return nil, nil, false
	}
	return &creds, &user, true
}

func encodeSnapshot(creds *models.Credentials, user *models.User) (Snapshot, error) {
	var snap Snapshot
	if creds != nil {
		data, err := json.Marshal(creds)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to marshal credential: %w", err)
		}
		snap.Token = data
	}
	if user != nil {
		data, err := json.Marshal(user)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to marshal user: %w", err)
		}
		snap.User = data
	}
	return snap, nil
}
