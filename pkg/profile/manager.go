package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/variables"
)

// DefaultLockTTL bounds how long a distributed profile lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates profile access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new profile manager with the given persistence store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(profile) after unlocking.
func (m *Manager) acquire(profile string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[profile]
	if !exists {
		entry = &lockEntry{}
		m.locks[profile] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(profile string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[profile]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, profile)
	}
}

// activeLocks reports how many profiles currently hold a lock entry.
func (m *Manager) activeLocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// Load retrieves a profile from the store.
func (m *Manager) Load(ctx context.Context, profile string) (*domain.SaveData, error) {
	var data *domain.SaveData
	err := m.WithLock(ctx, profile, func(ctx context.Context) error {
		var err error
		data, err = m.store.Load(ctx, profile)
		return err
	})
	return data, err
}

// Restore overlays a saved profile onto globals, which should already hold
// the graph's defaults. Saved variables the store does not declare are ignored
// and returned. A profile that was never saved leaves globals untouched and
// reports found == false.
func (m *Manager) Restore(ctx context.Context, profile string, globals *variables.Store) (ignored []string, found bool, err error) {
	data, err := m.Load(ctx, profile)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load profile: %w", err)
	}

	ignored = globals.Restore(data.Globals)
	if len(ignored) > 0 {
		m.logger.Warn("saved variables not declared by the graph were ignored", "profile", profile, "keys", ignored)
	}
	return ignored, true, nil
}

// Save persists the current contents of globals.
func (m *Manager) Save(ctx context.Context, profile string, globals *variables.Store) error {
	return m.WithLock(ctx, profile, func(ctx context.Context) error {
		return m.store.Save(ctx, profile, domain.NewSaveData(profile, globals.Export()))
	})
}

// Update runs a read-modify-write cycle on a stored profile under its lock.
// A profile that does not exist yet starts empty.
func (m *Manager) Update(ctx context.Context, profile string, fn func(*variables.Store) error) error {
	return m.WithLock(ctx, profile, func(ctx context.Context) error {
		globals := variables.NewStore()
		data, err := m.store.Load(ctx, profile)
		switch {
		case err == nil:
			globals.Load(data.Globals)
		case !errors.Is(err, domain.ErrProfileNotFound):
			return fmt.Errorf("failed to load profile: %w", err)
		}

		if err := fn(globals); err != nil {
			return err
		}
		return m.store.Save(ctx, profile, domain.NewSaveData(profile, globals.Export()))
	})
}

// Delete removes the profile from the store.
func (m *Manager) Delete(ctx context.Context, profile string) error {
	return m.WithLock(ctx, profile, func(ctx context.Context) error {
		return m.store.Delete(ctx, profile)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// WithLock executes a function while holding the lock for the profile.
func (m *Manager) WithLock(ctx context.Context, profile string, fn func(context.Context) error) error {
	entry := m.acquire(profile)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(profile)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, profile, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"profile", profile,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
