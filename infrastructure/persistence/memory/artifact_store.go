package memory

import (
	"context"
	"sort"
	"sync"

	"gangablog-backend/application/ports"
	"gangablog-backend/domain/content"
	appErrors "gangablog-backend/pkg/errors"
)

// ArtifactStore is an in-memory implementation of ports.ArtifactStore
type ArtifactStore struct {
	mu        sync.RWMutex
	artifacts map[string]*content.Artifact
}

// Compile-time interface check
var _ ports.ArtifactStore = (*ArtifactStore)(nil)

// NewArtifactStore creates an empty in-memory artifact store
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{artifacts: make(map[string]*content.Artifact)}
}

// Put writes or overwrites the artifact stored under its slug
func (s *ArtifactStore) Put(ctx context.Context, artifact *content.Artifact) error {
	if artifact == nil || artifact.Slug == "" {
		return appErrors.NewValidation("artifact requires a slug")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *artifact
	s.artifacts[artifact.Slug] = &copied
	return nil
}

// Get fetches an artifact by slug
func (s *ArtifactStore) Get(ctx context.Context, slug string) (*content.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, ok := s.artifacts[slug]
	if !ok {
		return nil, appErrors.NewNotFound("artifact not found: " + slug)
	}
	copied := *artifact
	return &copied, nil
}

// Delete removes the artifact for a slug; missing slugs are a no-op
func (s *ArtifactStore) Delete(ctx context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.artifacts, slug)
	return nil
}

// ListSlugs returns the slug of every stored artifact, sorted
func (s *ArtifactStore) ListSlugs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.artifacts))
	for slug := range s.artifacts {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out, nil
}
