// internal/collector/store.go
package collector

import (
	"context"
	"errors"

	"mobility-intake/internal/models"
	"mobility-intake/internal/schema"
)

// ErrNoActiveRoute is returned by HandleTurn when the session has no
// collection in progress.
var ErrNoActiveRoute = errors.New("no active route for session")

// Store is the session-keyed persistence the collector runs against.
// Implementations must return (nil, nil) for an absent session and are
// responsible for the abandonment timeout.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Record, error)
	Put(ctx context.Context, sessionID string, rec *Record) error
	Delete(ctx context.Context, sessionID string) error
}

// ExtractionRequest carries everything the extractor may use: the
// schema, the latest user text, the turn history and any document
// context attached to the session.
type ExtractionRequest struct {
	Schema    schema.RouteSchema
	Message   string
	History   []models.Turn
	Documents []models.Document
}

// Extraction is the output of one extraction call: raw values for every
// field the extractor found evidence for. Fields without evidence are
// absent, never guessed.
type Extraction struct {
	Fields  map[string]string
	Missing []string
}

// Extractor is the free-text understanding capability. Implementations
// must honor ctx deadlines; errors are recoverable per-turn failures.
type Extractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (*Extraction, error)
}
