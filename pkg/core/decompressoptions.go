package core

import (
	"github.com/google/uuid"

	"github.com/databacker/dir-archiver/pkg/compression"
	"github.com/databacker/dir-archiver/pkg/storage"
)

// DecompressOptions describes a single extraction job.
type DecompressOptions struct {
	// Source is the archive path; when Store is set it is relative to the store.
	Source    string
	Store     storage.Storage
	TargetDir string
	// Algorithm must match the compression the archive was written with.
	Algorithm             compression.Algorithm
	PreDecompressScripts  string
	PostDecompressScripts string
	Run                   uuid.UUID
}
