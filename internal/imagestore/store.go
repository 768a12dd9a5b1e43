// Package imagestore keeps pasted and imported images addressed by opaque ids.
//
// Images are stored as data URIs so card text can embed them directly.
// Saves are append-only: an id is written once and never replaced. Before a
// save that would exceed the configured item or byte ceiling, the oldest
// entries are evicted (20% of the store, at least one).
package imagestore

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for store operations.
var (
	ErrNotFound     = errors.New("image not found")
	ErrDuplicateID  = errors.New("image id already exists")
	ErrInvalidID    = errors.New("invalid image id")
	ErrEmptyData    = errors.New("image data is empty")
	ErrStoreClosed  = errors.New("image store closed")
	ErrStoreFailure = errors.New("image store failure")
)

// Default store ceilings.
const (
	DefaultMaxItems = 50
	DefaultMaxBytes = 50 * 1024 * 1024
)

// Entry is one stored image.
type Entry struct {
	ID        string    `json:"id"`
	Data      string    `json:"-"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Limits bounds the store. Zero fields fall back to the defaults.
type Limits struct {
	MaxItems int
	MaxBytes int64
}

// DefaultLimits returns the default store ceilings.
func DefaultLimits() Limits {
	return Limits{MaxItems: DefaultMaxItems, MaxBytes: DefaultMaxBytes}
}

func (l Limits) withDefaults() Limits {
	if l.MaxItems <= 0 {
		l.MaxItems = DefaultMaxItems
	}
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultMaxBytes
	}
	return l
}

// Store is an image blob store keyed by id. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the data URI stored under id. ok is false when id is unknown.
	Get(ctx context.Context, id string) (data string, ok bool, err error)

	// Save stores data under a new id, evicting the oldest entries first when
	// the write would exceed the limits. It returns the evicted ids.
	Save(ctx context.Context, id, data string) (evicted []string, err error)

	// List returns every entry, oldest first.
	List(ctx context.Context) ([]Entry, error)

	// Delete removes id. Returns ErrNotFound when id is unknown.
	Delete(ctx context.Context, id string) error

	// Close releases resources. Further calls return ErrStoreClosed.
	Close() error
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the time source used to stamp writes.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func validateSave(id, data string) error {
	if id == "" {
		return ErrInvalidID
	}
	if data == "" {
		return ErrEmptyData
	}
	return nil
}
