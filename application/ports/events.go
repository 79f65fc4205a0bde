package ports

import (
	"context"
	"time"
)

// SyncEventType identifies the publication-affecting event that triggered
// a synchronization run
type SyncEventType string

const (
	SyncPublish   SyncEventType = "publish"
	SyncUpdate    SyncEventType = "update"
	SyncUnpublish SyncEventType = "unpublish"
	SyncDelete    SyncEventType = "delete"
)

// IsValid checks whether the event type is one of the known triggers
func (t SyncEventType) IsValid() bool {
	switch t {
	case SyncPublish, SyncUpdate, SyncUnpublish, SyncDelete:
		return true
	}
	return false
}

// SyncEvent describes a completed synchronization for downstream consumers
// (cache invalidation, analytics). Published after the artifact and index
// have reached their end state.
type SyncEvent struct {
	// ID is a unique identifier for this emission, for consumer-side
	// idempotency
	ID         string        `json:"id"`
	Type       SyncEventType `json:"type"`
	ItemID     string        `json:"itemId"`
	Slug       string        `json:"slug"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// EventPublisher pushes sync events onto the event bus. Publishing is
// best-effort relative to the sync itself: a publish failure is logged,
// never propagated to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event SyncEvent) error
}
