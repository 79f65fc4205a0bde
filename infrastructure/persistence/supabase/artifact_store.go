// Package supabase implements the artifact store on Supabase Storage. The
// rendered document is stored as the object body; the artifact's metadata
// travels in a JSON sidecar next to it.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gangablog-backend/application/ports"
	"gangablog-backend/domain/content"
	appErrors "gangablog-backend/pkg/errors"

	storage "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

const metaSuffix = ".meta.json"

// ArtifactStore implements ports.ArtifactStore on a Supabase Storage bucket
type ArtifactStore struct {
	storage *storage.Client
	bucket  string
	logger  *zap.Logger
}

var _ ports.ArtifactStore = (*ArtifactStore)(nil)

// NewArtifactStore creates a Supabase-backed artifact store
func NewArtifactStore(storageClient *storage.Client, bucket string, logger *zap.Logger) *ArtifactStore {
	return &ArtifactStore{
		storage: storageClient,
		bucket:  bucket,
		logger:  logger,
	}
}

// Put uploads the rendered document and its metadata sidecar. The document
// goes first so a crash between the two writes leaves a servable object
// with default metadata rather than metadata pointing at nothing.
func (s *ArtifactStore) Put(ctx context.Context, artifact *content.Artifact) error {
	contentType := contentTypeFor(artifact.Slug)
	upsert := true

	_, err := s.storage.UploadFile(s.bucket, objectPath(artifact.Slug),
		strings.NewReader(artifact.HTML),
		storage.FileOptions{ContentType: &contentType, Upsert: &upsert})
	if err != nil {
		return appErrors.NewArtifactWrite(
			fmt.Sprintf("failed to upload artifact %s", artifact.Slug), err).
			WithContext("", artifact.Slug, "store")
	}

	meta, err := json.Marshal(artifact)
	if err != nil {
		return appErrors.NewArtifactWrite(
			fmt.Sprintf("failed to encode metadata for %s", artifact.Slug), err)
	}
	jsonType := "application/json"
	_, err = s.storage.UploadFile(s.bucket, objectPath(artifact.Slug)+metaSuffix,
		bytes.NewReader(meta),
		storage.FileOptions{ContentType: &jsonType, Upsert: &upsert})
	if err != nil {
		return appErrors.NewArtifactWrite(
			fmt.Sprintf("failed to upload metadata for %s", artifact.Slug), err).
			WithContext("", artifact.Slug, "store")
	}

	return nil
}

// Get downloads one artifact. A missing metadata sidecar degrades to zero
// metadata; a missing document is absence.
func (s *ArtifactStore) Get(ctx context.Context, slug string) (*content.Artifact, error) {
	body, err := s.storage.DownloadFile(s.bucket, objectPath(slug))
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.NewNotFound(fmt.Sprintf("artifact %s not found", slug))
		}
		return nil, appErrors.NewInternal(
			fmt.Sprintf("failed to download artifact %s", slug), err)
	}

	artifact := &content.Artifact{Slug: slug}
	meta, err := s.storage.DownloadFile(s.bucket, objectPath(slug)+metaSuffix)
	if err == nil {
		if unmarshalErr := json.Unmarshal(meta, artifact); unmarshalErr != nil {
			s.logger.Warn("artifact metadata is malformed, serving without it",
				zap.String("slug", slug), zap.Error(unmarshalErr))
		}
		artifact.Slug = slug
	} else if !isNotFound(err) {
		s.logger.Warn("artifact metadata read failed, serving without it",
			zap.String("slug", slug), zap.Error(err))
	}

	artifact.HTML = string(body)
	return artifact, nil
}

// Delete removes the artifact and its sidecar. Deleting what is already
// gone is absence, reported as such for the caller to treat as success.
func (s *ArtifactStore) Delete(ctx context.Context, slug string) error {
	_, err := s.storage.RemoveFile(s.bucket, []string{
		objectPath(slug),
		objectPath(slug) + metaSuffix,
	})
	if err != nil {
		if isNotFound(err) {
			return appErrors.NewNotFound(fmt.Sprintf("artifact %s not found", slug))
		}
		return appErrors.NewInternal(
			fmt.Sprintf("failed to delete artifact %s", slug), err)
	}
	return nil
}

// ListSlugs enumerates stored artifact slugs, skipping metadata sidecars
func (s *ArtifactStore) ListSlugs(ctx context.Context) ([]string, error) {
	limit := 1000
	offset := 0
	var slugs []string

	for {
		objects, err := s.storage.ListFiles(s.bucket, "", storage.FileSearchOptions{
			Limit:  limit,
			Offset: offset,
			SortByOptions: storage.SortBy{
				Column: "name",
				Order:  "asc",
			},
		})
		if err != nil {
			return nil, appErrors.NewInternal("failed to list artifacts", err)
		}

		for _, obj := range objects {
			if strings.HasSuffix(obj.Name, metaSuffix) {
				continue
			}
			slugs = append(slugs, slugFromPath(obj.Name))
		}

		if len(objects) < limit {
			return slugs, nil
		}
		offset += limit
	}
}

// objectPath maps a slug to its bucket path. HTML artifacts get an .html
// extension; slugs that already carry an extension keep it.
func objectPath(slug string) string {
	if strings.Contains(slug, ".") {
		return slug
	}
	return slug + ".html"
}

func slugFromPath(name string) string {
	return strings.TrimSuffix(name, ".html")
}

func contentTypeFor(slug string) string {
	if strings.HasSuffix(slug, ".xml") {
		return "application/xml; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}

// isNotFound sniffs the storage API's error body for an object-missing
// response; the client exposes no typed errors.
func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not_found") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "404")
}
