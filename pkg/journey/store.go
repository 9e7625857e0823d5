package journey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lantern/internal/logging"
	"github.com/aretw0/lantern/pkg/domain"
	"github.com/aretw0/lantern/pkg/ports"
	"github.com/google/uuid"
)

// DefaultKey is the snapshot key used when none is configured.
const DefaultKey = "appState"

// Store is the persistent journey store.
//
// Every Dispatch re-reads the latest durable snapshot, folds the commands into
// it and writes the result back, so two stores sharing a substrate never
// clobber each other's wishes.
type Store struct {
	substrate ports.SnapshotStore
	key       string
	logger    *slog.Logger
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	newID     func() string

	mu       sync.Mutex // guards degraded and memory
	degraded bool
	memory   domain.JourneyState
}

// Option configures the Store.
type Option func(*Store)

// WithKey sets the snapshot key.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithLocker enables distributed locking around each read-merge-write cycle.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Store) {
		s.locker = locker
	}
}

// WithLockTTL sets the expiry of the distributed lock (default 10s).
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.lockTTL = ttl
	}
}

// NewStore creates a journey store over a substrate.
// A nil substrate yields a store that is degraded from the start.
func NewStore(substrate ports.SnapshotStore, opts ...Option) *Store {
	s := &Store{
		substrate: substrate,
		key:       DefaultKey,
		logger:    logging.NewNop(),
		lockTTL:   10 * time.Second,
		newID:     uuid.NewString,
		memory:    domain.NewJourneyState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if substrate == nil {
		s.degraded = true
		s.logger.Warn("journey store has no substrate, state will not persist", "key", s.key)
	}
	return s
}

// Key returns the snapshot key.
func (s *Store) Key() string {
	return s.key
}

// Degraded reports whether the store fell back to memory.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Load returns the current journey merged with the structural defaults.
func (s *Store) Load(ctx context.Context) (domain.JourneyState, error) {
	if state, ok := s.memorySnapshot(); ok {
		return state, nil
	}

	state, err := s.read(ctx)
	if errors.Is(err, domain.ErrStorageUnavailable) {
		s.degrade(err)
		state, _ := s.memorySnapshot()
		return state, nil
	}
	return state, err
}

// Dispatch applies commands atomically against the latest durable snapshot and
// returns the new journey. Wishes without an ID get a fresh one before merging.
func (s *Store) Dispatch(ctx context.Context, cmds ...domain.Command) (domain.JourneyState, error) {
	cmds = s.assignIDs(cmds)

	if _, ok := s.memorySnapshot(); ok {
		return s.dispatchMemory(cmds)
	}

	var result domain.JourneyState
	err := s.withLock(ctx, func(ctx context.Context) error {
		current, err := s.read(ctx)
		if err != nil {
			return err
		}

		next, err := Fold(current, cmds...)
		if err != nil {
			return err
		}

		data, err := Encode(next)
		if err != nil {
			return err
		}
		if err := s.substrate.Save(ctx, s.key, data); err != nil {
			return fmt.Errorf("failed to save journey: %w", err)
		}

		result = next
		return nil
	})

	if errors.Is(err, domain.ErrStorageUnavailable) {
		s.degrade(err)
		return s.dispatchMemory(cmds)
	}
	if err != nil {
		return domain.JourneyState{}, err
	}

	s.logger.Debug("journey updated", "key", s.key, "commands", len(cmds), "wishes", len(result.Wishes))
	return result, nil
}

func (s *Store) read(ctx context.Context) (domain.JourneyState, error) {
	data, err := s.substrate.Load(ctx, s.key)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return domain.NewJourneyState(), nil
	}
	if err != nil {
		return domain.JourneyState{}, fmt.Errorf("failed to load journey: %w", err)
	}
	return Decode(data)
}

// withLock executes fn while holding the process lock for the key and, if
// configured, the distributed lock.
func (s *Store) withLock(ctx context.Context, fn func(context.Context) error) error {
	entry := acquire(s.key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		release(s.key)
	}()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, s.key, s.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				s.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", s.key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (s *Store) memorySnapshot() (domain.JourneyState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.degraded {
		return domain.JourneyState{}, false
	}
	return s.memory.Clone(), true
}

func (s *Store) dispatchMemory(cmds []domain.Command) (domain.JourneyState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Fold(s.memory, cmds...)
	if err != nil {
		return domain.JourneyState{}, err
	}
	s.memory = next
	return next.Clone(), nil
}

// degrade switches the store to memory for the rest of its life.
func (s *Store) degrade(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.degraded {
		return
	}
	s.degraded = true
	s.memory = domain.NewJourneyState()
	s.logger.Warn("journey storage unavailable, continuing in memory", "key", s.key, "err", cause)
}

func (s *Store) assignIDs(cmds []domain.Command) []domain.Command {
	out := make([]domain.Command, len(cmds))
	for i, cmd := range cmds {
		add, ok := cmd.(domain.AddWishes)
		if !ok {
			out[i] = cmd
			continue
		}
		wishes := make([]domain.Wish, len(add.Wishes))
		for j, w := range add.Wishes {
			if w.ID == "" {
				w.ID = s.newID()
			}
			wishes[j] = w
		}
		out[i] = domain.AddWishes{Wishes: wishes}
	}
	return out
}
