package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names known to the adapter.
const (
	CollectionStudents = "students"
	CollectionEvents   = "events"
)

// ErrNoDocument is returned by point lookups when no document matches.
var ErrNoDocument = errors.New("store: document not found")

// UpdateSpec describes an atomic partial update of a single document. Paths
// are dotted (e.g. "event_participations.EVT123.attendance_id"); path
// segments must not themselves contain dots.
type UpdateSpec struct {
	// Set writes the value at each path, creating the leaf if missing.
	Set map[string]interface{}
	// Unset removes the field at each path.
	Unset []string
	// Inc adds the delta to the numeric field at each path, treating a
	// missing field as zero.
	Inc map[string]float64
	// AddToSet appends the value to the array at each path unless already
	// present (set union semantics).
	AddToSet map[string]interface{}
	// Pull removes every array element equal to the value at each path.
	Pull map[string]interface{}
}

// Empty reports whether the spec carries no mutations.
func (u UpdateSpec) Empty() bool {
	return len(u.Set) == 0 && len(u.Unset) == 0 && len(u.Inc) == 0 &&
		len(u.AddToSet) == 0 && len(u.Pull) == 0
}

// Store is the thin contract over the two document collections. Every
// UpdateOne call mutates exactly one document atomically; there are no
// cross-document transactions, so dual writes can drift and the
// reconciler repairs them.
type Store interface {
	FindOne(ctx context.Context, collection, key string) (json.RawMessage, error)
	FindMany(ctx context.Context, collection string, limit int) ([]json.RawMessage, error)
	InsertOne(ctx context.Context, collection, key string, doc interface{}) error
	UpdateOne(ctx context.Context, collection, key string, spec UpdateSpec) (bool, error)
	DeleteOne(ctx context.Context, collection, key string) (bool, error)
}
