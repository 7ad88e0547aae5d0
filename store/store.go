// Package store persists exported filter snapshots so a list view can
// restore its search and filters later.
package store

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/segmentio/ksuid"
)

// Entry is a saved snapshot.
type Entry struct {
	ID        string               `json:"id"`
	View      string               `json:"view"`
	Snapshot  panelsearch.Snapshot `json:"snapshot"`
	CreatedAt time.Time            `json:"createdAt"`
}

// Store saves snapshots per view. Lookups of a missing entry return an
// error matching panelsearch.ErrNotFound.
type Store interface {
	// Save stores snap under view and returns the new entry ID.
	Save(ctx context.Context, view string, snap panelsearch.Snapshot) (string, error)

	// Load returns one entry of view.
	Load(ctx context.Context, view, id string) (*Entry, error)

	// Latest returns the most recently saved entry of view.
	Latest(ctx context.Context, view string) (*Entry, error)

	// List returns the entries of view, newest first.
	List(ctx context.Context, view string) ([]Entry, error)

	// Delete removes one entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, view, id string) error
}

// NewID returns an entry ID ordered by at down to the nanosecond. The
// sub-second part leads the KSUID payload, so IDs created within the
// same second still sort by time.
func NewID(at time.Time) string {
	payload := ksuid.New().Payload()
	binary.BigEndian.PutUint32(payload[:4], uint32(at.Nanosecond()))

	id, err := ksuid.FromParts(at, payload)
	if err != nil {
		return ksuid.New().String()
	}
	return id.String()
}
