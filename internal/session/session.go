// Package session owns the current-user state of the engine. It replaces the
// ambient singletons of earlier designs with one injected object whose
// lifetime matches the process.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"chargist/internal/cache"
	"chargist/internal/models"
	"chargist/internal/watch"
)

// UserFetcher loads a user profile from the remote source.
type UserFetcher interface {
	FetchUser(ctx context.Context, id int64) (models.User, error)
}

type persistedState struct {
	UserID int64 `json:"userId"`
}

// Manager tracks the logged-in user and persists the id across restarts.
// Logged out means the guest sentinel: browsing works, nothing user-bound
// syncs.
type Manager struct {
	path    string
	store   *cache.Store
	logger  *zap.Logger
	current *watch.Value[models.User]
}

// NewManager returns a manager starting as guest.
func NewManager(path string, store *cache.Store, logger *zap.Logger) *Manager {
	m := &Manager{
		path:    path,
		store:   store,
		logger:  logger,
		current: watch.NewValue[models.User](),
	}
	m.current.Set(models.GuestUser())
	return m
}

// Current returns the active user.
func (m *Manager) Current() models.User {
	user, _ := m.current.Get()
	return user
}

// Watch streams the active user, starting with the current one.
func (m *Manager) Watch(ctx context.Context) <-chan models.User {
	return m.current.Watch(ctx)
}

// Login caches the profile, switches the session to it and persists the id.
func (m *Manager) Login(ctx context.Context, user models.User) error {
	if !user.IsGuest() {
		if err := m.store.UpsertUser(ctx, user); err != nil {
			return err
		}
	}
	m.current.Set(user)
	m.persist(user.ID)
	return nil
}

// Logout switches back to guest and forgets the persisted id.
func (m *Manager) Logout() {
	m.current.Set(models.GuestUser())
	m.persist(models.GuestUserID)
}

// Restore reloads the persisted session at startup. The remote profile is
// refreshed when reachable; otherwise the cached copy serves. Any failure
// leaves the session as guest.
func (m *Manager) Restore(ctx context.Context, fetcher UserFetcher) {
	userID, err := m.load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("failed to read session state", zap.Error(err))
		}
		return
	}
	if userID == models.GuestUserID || userID == 0 {
		return
	}

	user, err := fetcher.FetchUser(ctx, userID)
	if err != nil {
		m.logger.Warn("session refresh failed, falling back to cached profile",
			zap.Int64("user_id", userID), zap.Error(err))
		cached, cacheErr := m.store.GetUser(ctx, userID)
		if cacheErr != nil {
			m.logger.Warn("no cached profile, staying guest", zap.Int64("user_id", userID))
			return
		}
		m.current.Set(cached)
		return
	}

	if err := m.store.UpsertUser(ctx, user); err != nil {
		m.logger.Warn("failed to cache refreshed profile", zap.Error(err))
	}
	m.current.Set(user)
}

func (m *Manager) persist(userID int64) {
	data, err := json.Marshal(persistedState{UserID: userID})
	if err != nil {
		m.logger.Warn("failed to encode session state", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		m.logger.Warn("failed to create session dir", zap.Error(err))
		return
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		m.logger.Warn("failed to write session state", zap.Error(err))
	}
}

func (m *Manager) load() (int64, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return 0, err
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return 0, err
	}
	return state.UserID, nil
}
