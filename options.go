package resque

import (
	"context"
	"log/slog"
	"time"
)

// Option configures a Resque handle.
type Option func(*Resque) error

// Storer is the minimal store interface held by the Resque handle.
// It covers lifecycle operations only. The full primitive contract
// (store.Store) is used by the subsystem layers; implementations satisfy
// store.Store, which embeds Storer.
type Storer interface {
	Ping(ctx context.Context) error
	Close() error
}

// reconnector is implemented by stores that can drop and re-establish
// their connection on request.
type reconnector interface {
	Reconnect(ctx context.Context) error
}

// Resque holds configuration, logger, and backing store shared by every
// subsystem. Create one with New and wire the subsystems with
// engine.Build.
type Resque struct {
	config Config
	logger *slog.Logger
	store  Storer
}

// New creates a Resque handle with the given options. The default logger
// discards everything.
func New(opts ...Option) (*Resque, error) {
	r := &Resque{
		config: DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Logger returns the handle's logger.
func (r *Resque) Logger() *slog.Logger { return r.logger }

// Store returns the handle's store.
func (r *Resque) Store() Storer { return r.store }

// Config returns a copy of the handle's configuration.
func (r *Resque) Config() Config { return r.config }

// Connect verifies the backing store is reachable.
func (r *Resque) Connect(ctx context.Context) error {
	if r.store == nil {
		return ErrNoStore
	}
	return r.store.Ping(ctx)
}

// Reconnect asks the store to re-establish its connection. Stores that do
// not manage their own connection are pinged instead. There is no retry.
func (r *Resque) Reconnect(ctx context.Context) error {
	if r.store == nil {
		return ErrNoStore
	}
	if rc, ok := r.store.(reconnector); ok {
		return rc.Reconnect(ctx)
	}
	return r.store.Ping(ctx)
}

// Close disconnects from the backing store. Every later store operation
// fails with the store's own error.
func (r *Resque) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// WithStore sets the backing store. The store must implement Storer at
// minimum; typically it is a store.Store.
func WithStore(s Storer) Option {
	return func(r *Resque) error {
		r.store = s
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resque) error {
		if l != nil {
			r.logger = l
		}
		return nil
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(c Config) Option {
	return func(r *Resque) error {
		r.config = c
		return nil
	}
}

// WithKeyPrefix sets the key namespace prefix.
func WithKeyPrefix(prefix string) Option {
	return func(r *Resque) error {
		if err := ValidatePrefix(prefix); err != nil {
			return err
		}
		r.config.KeyPrefix = prefix
		return nil
	}
}

// WithStatisticsImplementation selects the counter backend.
func WithStatisticsImplementation(impl string) Option {
	return func(r *Resque) error {
		r.config.StatisticsImplementation = impl
		return nil
	}
}

// WithProcessEnumeration sets the worker process enumeration command and
// the pattern passed to it.
func WithProcessEnumeration(command, pattern string) Option {
	return func(r *Resque) error {
		r.config.ProcessEnumerationCommand = command
		r.config.ProcessEnumerationPattern = pattern
		return nil
	}
}

// WithStatusTTL sets how long terminal status records are retained.
func WithStatusTTL(d time.Duration) Option {
	return func(r *Resque) error {
		r.config.StatusTTL = d
		return nil
	}
}
