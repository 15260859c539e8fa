// Package cache provides the key-value backends safetymap persists to.
//
// Two consumers share the same [Cache] abstraction:
//
//   - pkg/layoutstore keeps the user's saved network layout as one JSON blob
//     under a fixed key (no expiry).
//   - pkg/pipeline caches built graphs and rendered artifacts keyed by content
//     hashes (with expiry).
//
// # Backends
//
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [RedisCache]: github.com/redis/go-redis/v9
//   - [MongoCache]: go.mongodb.org/mongo-driver
//   - [NullCache]: stores nothing (--no-cache, tests)
//
// # Keys
//
// Keys are produced by a [Keyer]. [DefaultKeyer] hashes option structs so
// that different render settings never collide; [ScopedKeyer] prefixes every
// key for multi-tenant deployments of the HTTP API.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a byte-oriented key-value store.
//
// Get returns (nil, false, nil) on a miss; an error is reserved for backend
// failures. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default expirations per entry type.
const (
	TTLGraph    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLLayout   = 0 // saved layouts are user data and never expire
)

// GraphKeyOpts are the build options that change a graph for the same dataset.
// A nil Providers (all providers) and an empty one (none) hash differently.
type GraphKeyOpts struct {
	Providers []string `json:"providers"`
}

// ArtifactKeyOpts are the render options that change an artifact for the
// same reconciled layout.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Renderer string  `json:"renderer"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey is the key a saved layout record lives under.
	LayoutKey(name string) string
	// GraphKey is the key for a built graph of a dataset (by content hash).
	GraphKey(datasetHash string, opts GraphKeyOpts) string
	// ArtifactKey is the key for a rendered artifact of a layout (by content hash).
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<name>". Layout keys are not hashed so they stay
// readable in redis-cli and mongo shells.
func (DefaultKeyer) LayoutKey(name string) string {
	return fmt.Sprintf("layout:%s", name)
}

// IsLayoutKey reports whether key holds a saved layout, with or without a
// workspace prefix.
func IsLayoutKey(key string) bool {
	return strings.HasPrefix(key, "layout:") || strings.Contains(key, ":layout:")
}

// GraphKey hashes the dataset hash together with the build options.
func (DefaultKeyer) GraphKey(datasetHash string, opts GraphKeyOpts) string {
	return hashKey("graph", datasetHash, opts)
}

// ArtifactKey hashes the layout hash together with the render options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
