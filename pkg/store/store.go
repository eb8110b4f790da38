// Package store persists resolution results for the depstack service.
//
// Each completed resolution is archived as a [Resolution] document keyed
// by run ID, so API clients can re-fetch results and traces later.
// Backends: in-memory for development and tests, MongoDB for deployments.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/stackmesa/depstack/pkg/errors"
)

// Resolution is one archived resolution run.
type Resolution struct {
	ID        string          `bson:"_id" json:"id"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	Request   json.RawMessage `bson:"request" json:"request"`
	Libs      json.RawMessage `bson:"libs" json:"libs"`
	Trace     json.RawMessage `bson:"trace,omitempty" json:"trace,omitempty"`
}

// New creates a resolution document with a fresh ID and timestamp.
func New(request, libs, trace json.RawMessage) *Resolution {
	return &Resolution{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Request:   request,
		Libs:      libs,
		Trace:     trace,
	}
}

// Store is the interface for resolution archives.
type Store interface {
	// Put stores a resolution.
	Put(ctx context.Context, r *Resolution) error

	// Get retrieves a resolution by ID; missing IDs yield a NOT_FOUND
	// error.
	Get(ctx context.Context, id string) (*Resolution, error)

	// List returns the most recent resolutions, newest first.
	List(ctx context.Context, limit int) ([]*Resolution, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// ErrNotFound builds the standard missing-resolution error.
func ErrNotFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "resolution %s not found", id)
}
