// Package journal records the outcome of every canvas mutation.
//
// Each [Entry] says what was attempted, where it landed, and whether the
// appliance applied it and the local cache caught up. Recorders write
// entries to nowhere ([Null]), a JSON-lines file ([File]) or a MongoDB
// collection ([Mongo]).
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/netsmith/pkg/geometry"
)

// Operation names.
const (
	OpCreateRouter     = "create_router"
	OpRemoveRouter     = "remove_router"
	OpMoveConnection   = "move_connection"
	OpCreateConnection = "create_connection"
	OpCreateRDD        = "create_rdd"
	OpRefreshGUI       = "refresh_gui"
)

// Entry is one journaled mutation. TestID and TestTag identify the test run
// that issued it and are always written in that order.
type Entry struct {
	ID            string          `json:"id" bson:"_id"`
	Op            string          `json:"op" bson:"op"`
	Resource      int             `json:"resource" bson:"resource"`
	Target        string          `json:"target,omitempty" bson:"target,omitempty"`
	Area          *geometry.Rect  `json:"area,omitempty" bson:"area,omitempty"`
	Point         *geometry.Point `json:"point,omitempty" bson:"point,omitempty"`
	RemoteApplied bool            `json:"remote_applied" bson:"remote_applied"`
	CacheSynced   bool            `json:"cache_synced" bson:"cache_synced"`
	Error         string          `json:"error,omitempty" bson:"error,omitempty"`
	TestID        string          `json:"test_id,omitempty" bson:"test_id,omitempty"`
	TestTag       string          `json:"test_tag,omitempty" bson:"test_tag,omitempty"`
	At            time.Time       `json:"at" bson:"at"`
}

// NewEntry starts an entry for op on resource with a fresh id and timestamp.
func NewEntry(op string, resource int, target string) Entry {
	return Entry{
		ID:       uuid.NewString(),
		Op:       op,
		Resource: resource,
		Target:   target,
		At:       time.Now().UTC(),
	}
}

// Recorder persists entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Close(ctx context.Context) error
}

// Null discards every entry.
type Null struct{}

func (Null) Record(context.Context, Entry) error { return nil }
func (Null) Close(context.Context) error         { return nil }
