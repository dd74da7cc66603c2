package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/databacker/dir-archiver/pkg/archive"
	"github.com/databacker/dir-archiver/pkg/compression"
	"github.com/databacker/dir-archiver/pkg/util"
)

// Decompress extracts the archive opts.Source into opts.TargetDir, replacing files
// that already exist there. A failed extraction is not rolled back.
func (e *Executor) Decompress(ctx context.Context, opts DecompressOptions) (results DecompressResults, err error) {
	results.Start = time.Now()
	defer func() { results.End = time.Now() }()

	tracer := util.GetTracerFromContext(ctx)
	ctx, span := tracer.Start(ctx, "decompress")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "decompress complete")
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("source", opts.Source),
		attribute.String("algorithm", opts.Algorithm.String()),
	)
	logger := e.runLogger(opts.Run, "decompress")
	logger.Info("beginning decompress")

	source := opts.Source
	if opts.Store != nil {
		tmpdir, err := os.MkdirTemp("", "dir-archiver-pull")
		if err != nil {
			return results, compression.Wrap(fmt.Errorf("unable to create temporary working directory: %w", err))
		}
		defer os.RemoveAll(tmpdir)
		source = filepath.Join(tmpdir, path.Base(opts.Source))

		pullCtx, pullSpan := tracer.Start(ctx, "pull")
		logger.Debugf("pulling %s via %s protocol to %s", opts.Source, opts.Store.Protocol(), source)
		copied, err := opts.Store.Pull(pullCtx, opts.Source, source, logger)
		pullSpan.End()
		if err != nil {
			err = fmt.Errorf("failed to pull %s from %s: %w", opts.Source, opts.Store.URL(), err)
			if errors.Is(err, fs.ErrNotExist) {
				return results, &compression.Error{Kind: compression.SourceDoesNotExist, Err: err}
			}
			return results, compression.Wrap(err)
		}
		logger.Debugf("completed copying %d bytes", copied)
	}

	if err := checkSource(source); err != nil {
		return results, err
	}
	if err := checkTargetDir(opts.TargetDir, true); err != nil {
		return results, err
	}
	results.Archive = opts.Source
	if info, statErr := os.Stat(source); statErr == nil {
		results.Bytes = info.Size()
	}

	env := scriptEnv(opts.Source, source, opts.TargetDir, opts.Algorithm.String(), logger.Level >= log.DebugLevel)
	if err := runScripts(opts.PreDecompressScripts, env, logger); err != nil {
		return results, compression.Wrap(fmt.Errorf("error running pre-decompress scripts: %w", err))
	}

	_, unpackSpan := tracer.Start(ctx, "unpack")
	err = unpack(source, opts.TargetDir, opts.Algorithm)
	unpackSpan.End()
	if err != nil {
		return results, compression.Wrap(err)
	}
	logger.Debugf("extracted %s into %s", opts.Source, opts.TargetDir)

	if err := runScripts(opts.PostDecompressScripts, env, logger); err != nil {
		return results, compression.Wrap(fmt.Errorf("error running post-decompress scripts: %w", err))
	}
	return results, nil
}

func unpack(archivePath, dir string, alg compression.Algorithm) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("unable to open archive: %w", err)
	}
	defer f.Close()

	r, err := archive.NewReader(f, alg)
	if err != nil {
		return fmt.Errorf("unable to read %s stream: %w", alg, err)
	}
	defer r.Close()

	if err := r.ExtractTo(dir); err != nil {
		return fmt.Errorf("error extracting the archive: %w", err)
	}
	return nil
}
