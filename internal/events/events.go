// Package events mirrors collection snapshots onto a message bus, so
// out-of-process consumers can follow a table the same way in-process
// watch subscribers do.
package events

import (
	"context"
	"time"

	"github.com/alfredjeanlab/rowkit/internal/idgen"
)

// TopicAll matches every subject this module publishes on.
const TopicAll = "rowkit.>"

// SnapshotTopic returns the subject full-collection snapshots for table are
// published on.
func SnapshotTopic(table string) string {
	return "rowkit." + table + ".snapshot"
}

// Snapshot is the bus envelope for one full-collection publish. Rows carry
// wire values, exactly as stored.
type Snapshot struct {
	ID    string           `json:"id"`
	Table string           `json:"table"`
	At    time.Time        `json:"at"`
	Count int              `json:"count"`
	Rows  []map[string]any `json:"rows"`
}

// NewSnapshot stamps a snapshot envelope with a fresh event id.
func NewSnapshot(table string, rows []map[string]any) (*Snapshot, error) {
	id, err := idgen.Generate()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:    id,
		Table: table,
		At:    time.Now().UTC(),
		Count: len(rows),
		Rows:  rows,
	}, nil
}

// Publisher emits snapshot envelopes onto the bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, snap *Snapshot) error
	Close() error
}

// Subscriber receives snapshot envelopes from the bus.
type Subscriber interface {
	// Subscribe delivers decoded envelopes on the returned channel. Call
	// the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan *Snapshot, func(), error)
	Close() error
}
