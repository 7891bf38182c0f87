// Package store selects and opens a save backend by name.
package store

import (
	"context"
	"fmt"

	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/generic/store"
	"github.com/warp/march-of-mind/store/postgres"
	"github.com/warp/march-of-mind/store/s3"
	"github.com/warp/march-of-mind/store/sqlite"
)

// Backend names accepted by Open.
const (
	KindMemory   = "memory"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindS3       = "s3"
)

// Options selects a backend. Only the fields of the chosen kind are read.
type Options struct {
	Kind     string
	Path     string // sqlite file, ":memory:" allowed
	DSN      string // postgres
	Bucket   string // s3
	Region   string
	Endpoint string
	Prefix   string
}

// Backend is a store that holds resources until closed.
type Backend interface {
	generic.Store
	Close() error
}

type nopCloser struct{ generic.Store }

func (nopCloser) Close() error { return nil }

// Open returns the backend named by opts.Kind. An empty kind means sqlite.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Kind {
	case KindMemory:
		return nopCloser{store.NewMemory()}, nil
	case "", KindSQLite:
		path := opts.Path
		if path == "" {
			path = "march-of-mind.db"
		}
		return sqlite.New(path)
	case KindPostgres:
		return postgres.New(ctx, opts.DSN)
	case KindS3:
		s, err := s3.New(ctx, s3.Config{
			Bucket:    opts.Bucket,
			Region:    opts.Region,
			Endpoint:  opts.Endpoint,
			Prefix:    opts.Prefix,
			PathStyle: opts.Endpoint != "",
		})
		if err != nil {
			return nil, err
		}
		return nopCloser{s}, nil
	}
	return nil, &generic.ConfigError{Source: "store", Field: "kind", Reason: fmt.Sprintf("unknown backend %q", opts.Kind)}
}
