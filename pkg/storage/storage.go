package storage

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Storage is a place archives can be copied to and fetched from.
type Storage interface {
	// Push copies the local file source to target, a name relative to the storage URL.
	Push(ctx context.Context, target, source string, logger *log.Entry) (int64, error)
	// Pull copies source, a name relative to the storage URL, to the local file target.
	Pull(ctx context.Context, source, target string, logger *log.Entry) (int64, error)
	// Clean adjusts a file name to what the storage accepts.
	Clean(filename string) string
	Protocol() string
	URL() string
}
