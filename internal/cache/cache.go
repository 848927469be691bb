// Package cache persists serialized inbox and copilot state outside process
// memory. It is a best-effort local cache: read failures degrade to "no
// data" and are logged, never propagated.
package cache

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrCorruptData marks a stored payload that could not be decoded or failed
// validation.
var ErrCorruptData = errors.New("corrupt cache data")

// Backend is the key-value storage behind the adapter.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// WriteError is returned when a value could not be persisted.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cache write %q: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Adapter is the Local Cache Adapter used by the inbox store and the copilot
// controller.
type Adapter struct {
	backend Backend
	logger  *zap.Logger
}

// New creates an adapter over backend.
func New(backend Backend, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{backend: backend, logger: logger}
}

// Load returns the raw payload stored under key. Backend failures are logged
// and reported as absent.
func (a *Adapter) Load(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := a.backend.Get(ctx, key)
	if err != nil {
		a.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, ok
}

// Save persists data under key.
func (a *Adapter) Save(ctx context.Context, key string, data []byte) error {
	if err := a.backend.Put(ctx, key, data); err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}

// Remove deletes key.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	if err := a.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("cache remove %q: %w", key, err)
	}
	return nil
}

// discard drops a corrupt record so the next load starts clean.
func (a *Adapter) discard(ctx context.Context, key string, cause error) {
	a.logger.Warn("corrupt cache record discarded",
		zap.String("key", key),
		zap.Error(fmt.Errorf("%w: %v", ErrCorruptData, cause)))
	if err := a.backend.Delete(ctx, key); err != nil {
		a.logger.Warn("failed to remove corrupt cache record", zap.String("key", key), zap.Error(err))
	}
}
