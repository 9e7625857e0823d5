package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/lantern/internal/config"
	"github.com/aretw0/lantern/internal/logging"
	"github.com/aretw0/lantern/pkg/adapters/file"
	"github.com/aretw0/lantern/pkg/adapters/lanterns"
	"github.com/aretw0/lantern/pkg/adapters/memory"
	"github.com/aretw0/lantern/pkg/adapters/redis"
	"github.com/aretw0/lantern/pkg/adapters/sqlite"
	"github.com/aretw0/lantern/pkg/flow"
	"github.com/aretw0/lantern/pkg/journey"
	"github.com/aretw0/lantern/pkg/observability"
	"github.com/aretw0/lantern/pkg/persistence/middleware"
	"github.com/aretw0/lantern/pkg/ports"
	"github.com/aretw0/lantern/pkg/zodiac"
)

// Services bundles everything a command needs, built from one Config.
type Services struct {
	Config    config.Config
	Logger    *slog.Logger
	Substrate ports.SnapshotStore
	Locker    ports.DistributedLocker // nil unless redis locking is enabled
	Client    *lanterns.Client        // nil when offline
	Metrics   *observability.Metrics

	closers []io.Closer
}

// NewLogger builds the application logger from the log settings.
func NewLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(os.Stderr, level, cfg.Format), nil
}

// NewServices wires the configured substrate, gateway and metrics.
func NewServices(cfg config.Config, logger *slog.Logger) (*Services, error) {
	s := &Services{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	substrate, err := s.newSubstrate()
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Substrate = substrate

	if cfg.Remote.BaseURL != "" {
		s.Client = lanterns.NewClient(cfg.Remote.BaseURL, cfg.Remote.APIKey,
			lanterns.WithTimeout(cfg.Remote.Timeout),
			lanterns.WithLogger(logger),
		)
	} else {
		logger.Info("no lantern service configured, running offline")
	}

	return s, nil
}

func (s *Services) newSubstrate() (ports.SnapshotStore, error) {
	cfg := s.Config.Store

	var substrate ports.SnapshotStore
	switch cfg.Backend {
	case config.BackendMemory:
		substrate = memory.NewStore()
	case config.BackendFile:
		substrate = file.New(cfg.Dir)
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store)
		substrate = store
	case config.BackendRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		s.closers = append(s.closers, store)
		if cfg.Redis.Lock {
			s.Locker = redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		}
		substrate = store
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	if cfg.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		substrate = mw(substrate)
	}

	s.Logger.Debug("snapshot store ready", "backend", cfg.Backend, "encrypted", cfg.EncryptionKey != "")
	return substrate, nil
}

// Gateway returns the lantern gateway, or nil when offline.
func (s *Services) Gateway() ports.LanternGateway {
	if s.Client == nil {
		return nil
	}
	return s.Client
}

// JourneyStore returns a journey store over the shared substrate.
// An empty key selects the configured one.
func (s *Services) JourneyStore(key string) *journey.Store {
	if key == "" {
		key = s.Config.Store.Key
	}
	opts := []journey.Option{
		journey.WithKey(key),
		journey.WithLogger(s.Logger),
	}
	if s.Locker != nil {
		opts = append(opts, journey.WithLocker(s.Locker))
	}
	return journey.NewStore(s.Substrate, opts...)
}

// ControllerOptions returns the controller options implied by the config.
func (s *Services) ControllerOptions(extra ...flow.Option) []flow.Option {
	resume := flow.ResumeWriting
	if s.Config.Journey.Resume == "done" {
		resume = flow.ResumeDone
	}
	opts := []flow.Option{
		flow.WithLogger(s.Logger),
		flow.WithCalculator(zodiac.New(zodiac.WithLogger(s.Logger))),
		flow.WithResume(resume),
		flow.WithMaxWishLength(s.Config.Journey.MaxWishLength),
		flow.WithShareBaseURL(s.Config.Journey.ShareBaseURL),
		flow.WithLifecycleHooks(s.Metrics.Hooks()),
	}
	return append(opts, extra...)
}

// NewController opens a controller over the journey stored under key.
func (s *Services) NewController(ctx context.Context, key string, extra ...flow.Option) (*flow.Controller, error) {
	return flow.New(ctx, s.JourneyStore(key), s.Gateway(), s.ControllerOptions(extra...)...)
}

// Close releases database connections.
func (s *Services) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
