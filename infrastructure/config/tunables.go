package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tunables are the runtime-changeable knobs, loaded from an optional YAML
// file and hot-reloaded by the watcher. Everything here has a safe default
// so the file is never required.
type Tunables struct {
	Cache    CacheTunables    `yaml:"cache"`
	Resolver ResolverTunables `yaml:"resolver"`
	Sync     SyncTunables     `yaml:"sync"`

	Metadata TunablesMetadata `yaml:"metadata"`
}

// CacheTunables tune the surface cache
type CacheTunables struct {
	TTL time.Duration `yaml:"ttl"`
}

// ResolverTunables tune the slug resolution chain
type ResolverTunables struct {
	BatchSize      int           `yaml:"batchSize"`
	ArtifactMaxAge time.Duration `yaml:"artifactMaxAge"`
	RedirectMaxAge time.Duration `yaml:"redirectMaxAge"`
}

// SyncTunables tune artifact rendering
type SyncTunables struct {
	RelatedLimit int `yaml:"relatedLimit"`
	SidebarLimit int `yaml:"sidebarLimit"`
}

// TunablesMetadata records provenance of the loaded file
type TunablesMetadata struct {
	Version   string `yaml:"version"`
	UpdatedBy string `yaml:"updatedBy"`
}

// DefaultTunables returns the in-code defaults
func DefaultTunables() *Tunables {
	return &Tunables{
		Cache: CacheTunables{TTL: 30 * time.Minute},
		Resolver: ResolverTunables{
			BatchSize:      50,
			ArtifactMaxAge: 4 * time.Hour,
			RedirectMaxAge: 5 * time.Minute,
		},
		Sync: SyncTunables{RelatedLimit: 4, SidebarLimit: 6},
	}
}

// LoadTunables reads and validates the tunables file. Missing fields keep
// their defaults; a malformed file is an error rather than a silent reset.
func LoadTunables(path string) (*Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tunables file: %w", err)
	}

	t := DefaultTunables()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse tunables file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate rejects values that would break the pipeline
func (t *Tunables) Validate() error {
	if t.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", t.Cache.TTL)
	}
	if t.Resolver.BatchSize <= 0 {
		return fmt.Errorf("resolver.batchSize must be positive, got %d", t.Resolver.BatchSize)
	}
	if t.Resolver.ArtifactMaxAge <= 0 || t.Resolver.RedirectMaxAge <= 0 {
		return fmt.Errorf("resolver cache lifetimes must be positive")
	}
	if t.Sync.RelatedLimit < 0 || t.Sync.SidebarLimit < 0 {
		return fmt.Errorf("sync limits must not be negative")
	}
	return nil
}
