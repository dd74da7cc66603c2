package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/databacker/dir-archiver/pkg/archive"
	"github.com/databacker/dir-archiver/pkg/compression"
	"github.com/databacker/dir-archiver/pkg/util"
)

// Compress archives the contents of opts.Source into a single compressed file in
// opts.TargetDir, then copies it to each of opts.Targets.
// Errors are *compression.Error values; a partially written archive is left in place.
func (e *Executor) Compress(ctx context.Context, opts CompressOptions) (results CompressResults, err error) {
	results.Start = time.Now()
	defer func() { results.End = time.Now() }()

	tracer := util.GetTracerFromContext(ctx)
	ctx, span := tracer.Start(ctx, "compress")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "compress complete")
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("source", opts.Source),
		attribute.String("algorithm", opts.Algorithm.String()),
		attribute.Int("level", int(opts.Level)),
	)
	logger := e.runLogger(opts.Run, "compress")

	// nothing may touch the filesystem before the level is known to be legal
	if err := compression.ValidateLevel(opts.Algorithm, opts.Level); err != nil {
		return results, err
	}
	if err := checkSource(opts.Source); err != nil {
		return results, err
	}
	if err := checkTargetDir(opts.TargetDir, false); err != nil {
		return results, err
	}

	filename, err := ProcessFilenamePattern(opts.FileName, opts.Algorithm, time.Now(), opts.Safechars)
	if err != nil {
		return results, compression.Wrap(err)
	}
	archivePath := filepath.Join(opts.TargetDir, filename)
	results.Archive = archivePath
	logger.Infof("compressing %s to %s using %s level %d", opts.Source, archivePath, opts.Algorithm, opts.Level)

	env := scriptEnv(archivePath, opts.Source, opts.TargetDir, opts.Algorithm.String(), logger.Level >= log.DebugLevel)
	if err := runScripts(opts.PreCompressScripts, env, logger); err != nil {
		return results, compression.Wrap(fmt.Errorf("error running pre-compress scripts: %w", err))
	}

	_, packSpan := tracer.Start(ctx, "pack")
	err = pack(archivePath, opts.Source, opts.Algorithm, opts.Level)
	packSpan.End()
	if err != nil {
		return results, compression.Wrap(err)
	}
	if info, statErr := os.Stat(archivePath); statErr == nil {
		results.Bytes = info.Size()
	}
	logger.Debugf("archive %s complete, %d bytes", archivePath, results.Bytes)

	if err := runScripts(opts.PostCompressScripts, env, logger); err != nil {
		return results, compression.Wrap(fmt.Errorf("error running post-compress scripts: %w", err))
	}

	// upload to each destination
	for _, t := range opts.Targets {
		uploadResult := UploadResult{Target: t.URL(), Start: time.Now()}
		targetCleanFilename := t.Clean(filename)
		uploadCtx, uploadSpan := tracer.Start(ctx, fmt.Sprintf("upload %s", t.URL()))
		logger.Debugf("uploading via protocol %s from %s to %s", t.Protocol(), archivePath, targetCleanFilename)
		copied, err := t.Push(uploadCtx, targetCleanFilename, archivePath, logger)
		if err != nil {
			uploadSpan.SetStatus(codes.Error, err.Error())
			uploadSpan.End()
			return results, compression.Wrap(fmt.Errorf("failed to push file to %s: %w", t.URL(), err))
		}
		uploadSpan.End()
		logger.Debugf("completed copying %d bytes", copied)
		uploadResult.Filename = targetCleanFilename
		uploadResult.Bytes = copied
		uploadResult.End = time.Now()
		results.Uploads = append(results.Uploads, uploadResult)
	}

	return results, nil
}

// pack writes src into a new archive at archivePath. The encoder and the file
// are closed on every path, in that order.
func pack(archivePath, src string, alg compression.Algorithm, level uint) (err error) {
	f, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close archive file: %w", cerr))
		}
	}()

	w, err := archive.NewWriter(f, alg, level)
	if err != nil {
		return fmt.Errorf("failed to create %s encoder: %w", alg, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to finalize archive: %w", cerr))
		}
	}()

	if err := w.AddDir(src); err != nil {
		return fmt.Errorf("error creating the compressed archive: %w", err)
	}
	return nil
}
