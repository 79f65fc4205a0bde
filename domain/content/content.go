// Package content holds the content item model shared by the publication
// pipeline. Items are authored and mutated elsewhere; this backend only
// reads them and projects them into artifacts and indexes.
package content

import (
	"time"
)

// PublicationState represents the lifecycle state of a content item
type PublicationState string

const (
	StateDraft     PublicationState = "draft"
	StatePublished PublicationState = "published"
	StateScheduled PublicationState = "scheduled"
)

// IsValid checks whether the state is one of the known lifecycle states
func (s PublicationState) IsValid() bool {
	switch s {
	case StateDraft, StatePublished, StateScheduled:
		return true
	}
	return false
}

// Item is the authoritative content record. Owned by the authoring
// collaborator; the pipeline treats it as read-only.
type Item struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Slug         string           `json:"slug,omitempty"` // optional, derived from Title when empty
	Description  string           `json:"description"`
	Body         string           `json:"body"`
	ImageURL     string           `json:"imageUrl"`
	Tags         []string         `json:"tags,omitempty"`
	CategoryID   string           `json:"categoryId"`
	CategorySlug string           `json:"categorySlug"`
	CategoryName string           `json:"categoryName"`
	State        PublicationState `json:"state"`
	ScheduledAt  *time.Time       `json:"scheduledAt,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	PublishedAt  *time.Time       `json:"publishedAt,omitempty"`
}

// CanonicalSlug returns the stored slug if present, otherwise the slug
// derived from the title. Artifact keys and index entries always use this.
func (i *Item) CanonicalSlug() string {
	if i.Slug != "" {
		return Slugify(i.Slug)
	}
	return Slugify(i.Title)
}

// IsPublished reports whether the item is in the published state
func (i *Item) IsPublished() bool {
	return i.State == StatePublished
}

// LastModified returns the most recent timestamp available for the item
func (i *Item) LastModified() time.Time {
	if i.UpdatedAt.After(i.CreatedAt) {
		return i.UpdatedAt
	}
	return i.CreatedAt
}

// Artifact is a pre-rendered document stored under the item's canonical
// slug so it can be served without re-querying the content store.
type Artifact struct {
	Slug         string    `json:"slug"`
	HTML         string    `json:"-"`
	CanonicalURL string    `json:"canonicalUrl"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"imageUrl"`
	RenderedAt   time.Time `json:"renderedAt"`
}

// Category is a named grouping of items, addressed by its own slug
type Category struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}
