package failure

import (
	"context"
	"errors"
	"fmt"
)

// Backend records failures.
type Backend interface {
	// Record persists f. It returns an error if f could not be recorded.
	Record(ctx context.Context, f *Failure) error
}

// Func adapts a function to Backend.
type Func func(ctx context.Context, f *Failure) error

// Record calls fn.
func (fn Func) Record(ctx context.Context, f *Failure) error { return fn(ctx, f) }

// Multi records every failure in each of its backends, in order. All
// backends are tried; their errors are joined.
type Multi []Backend

// Record fans f out to every backend.
func (m Multi) Record(ctx context.Context, f *Failure) error {
	var errs []error
	for i, b := range m {
		if err := b.Record(ctx, f); err != nil {
			errs = append(errs, fmt.Errorf("backend %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Reader is implemented by backends that can list what they recorded.
type Reader interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, offset, limit int64) ([]*Failure, error)
	Get(ctx context.Context, index int64) (*Failure, bool, error)
	Clear(ctx context.Context) error
}

var _ Reader = (*StoreBackend)(nil)

// Reader returns the first backend of m that implements Reader.
func (m Multi) Reader() (Reader, bool) {
	for _, b := range m {
		if r, ok := b.(Reader); ok {
			return r, true
		}
	}
	return nil, false
}
