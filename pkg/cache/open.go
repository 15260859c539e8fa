package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string // file (default), redis, mongo, none
	Dir      string // file: directory
	URL      string // redis: redis:// URL, mongo: mongodb:// URI
	Database string // mongo: database name (default "safetymap")
}

// Open creates the cache described by opts.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache requires a directory")
		}
		return NewFileCache(opts.Dir)
	case BackendRedis:
		if opts.URL == "" {
			return nil, fmt.Errorf("redis cache requires a url")
		}
		return NewRedisCache(ctx, opts.URL)
	case BackendMongo:
		if opts.URL == "" {
			return nil, fmt.Errorf("mongo cache requires a uri")
		}
		db := opts.Database
		if db == "" {
			db = "safetymap"
		}
		return NewMongoCache(ctx, opts.URL, db, "")
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be one of: file, redis, mongo, none)", opts.Backend)
	}
}
