package core

import (
	"github.com/google/uuid"

	"github.com/databacker/dir-archiver/pkg/compression"
	"github.com/databacker/dir-archiver/pkg/storage"
)

// CompressOptions describes a single archive job.
type CompressOptions struct {
	// Source is the directory whose contents are archived.
	Source string
	// TargetDir is the existing directory in which the archive file is created.
	TargetDir string
	// FileName is the archive file name, optionally a template; see ProcessFilenamePattern.
	// Empty means the algorithm's default name.
	FileName  string
	Algorithm compression.Algorithm
	Level     uint
	// Safechars replaces ':' in the {{ .now }} timestamp with '-'.
	Safechars bool
	// Targets receive a copy of the finished archive.
	Targets             []storage.Storage
	PreCompressScripts  string
	PostCompressScripts string
	Run                 uuid.UUID
}
