package core

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databacker/dir-archiver/pkg/compression"
	"github.com/databacker/dir-archiver/pkg/internal/test"
	"github.com/databacker/dir-archiver/pkg/storage/file"
)

// makeArchive compresses tree with alg into a fresh directory and returns the archive path.
func makeArchive(t *testing.T, tree map[string]string, alg compression.Algorithm) string {
	t.Helper()
	src, target := t.TempDir(), t.TempDir()
	test.WriteTree(t, src, tree)
	results, err := newTestExecutor().Compress(context.Background(), CompressOptions{
		Source: src, TargetDir: target, Algorithm: alg, Level: 3,
	})
	require.NoError(t, err)
	return results.Archive
}

func TestDecompressOverwrites(t *testing.T) {
	archivePath := makeArchive(t, map[string]string{"data.txt": "new", "sub/x.txt": "x"}, compression.Gzip)
	dest := t.TempDir()
	test.WriteTree(t, dest, map[string]string{"data.txt": "old content that is longer", "keep.txt": "keep"})

	results, err := newTestExecutor().Decompress(context.Background(), DecompressOptions{
		Source: archivePath, TargetDir: dest, Algorithm: compression.Gzip,
	})
	require.NoError(t, err)
	assert.Equal(t, archivePath, results.Archive)
	assert.NotZero(t, results.Bytes)
	assert.Equal(t, map[string]string{
		"data.txt":  "new",
		"sub/x.txt": "x",
		"keep.txt":  "keep",
	}, test.ReadTree(t, dest))
}

func TestDecompressCreatesTarget(t *testing.T) {
	archivePath := makeArchive(t, map[string]string{"a.txt": "a"}, compression.Lz4)
	dest := filepath.Join(t.TempDir(), "new", "dir")

	_, err := newTestExecutor().Decompress(context.Background(), DecompressOptions{
		Source: archivePath, TargetDir: dest, Algorithm: compression.Lz4,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.txt": "a"}, test.ReadTree(t, dest))
}

func TestDecompressWrongAlgorithm(t *testing.T) {
	archivePath := makeArchive(t, map[string]string{"data.txt": "data"}, compression.Gzip)
	dest := t.TempDir()

	_, err := newTestExecutor().Decompress(context.Background(), DecompressOptions{
		Source: archivePath, TargetDir: dest, Algorithm: compression.Xz,
	})
	require.Error(t, err)
	assert.Equal(t, compression.Other, compression.KindOf(err))
	assert.NoFileExists(t, filepath.Join(dest, "data.txt"))
}

func TestDecompressPathErrors(t *testing.T) {
	archivePath := makeArchive(t, map[string]string{"a.txt": "a"}, compression.Zstd)
	plainFile := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(plainFile, []byte("x"), 0o644))

	tests := []struct {
		name   string
		source string
		target string
		kind   compression.Kind
	}{
		{"missing archive", filepath.Join(t.TempDir(), "absent.tar.zst"), t.TempDir(), compression.SourceDoesNotExist},
		{"target is a file", archivePath, plainFile, compression.UnreachableTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestExecutor().Decompress(context.Background(), DecompressOptions{
				Source: tt.source, TargetDir: tt.target, Algorithm: compression.Zstd,
			})
			require.Error(t, err)
			assert.Equal(t, tt.kind, compression.KindOf(err))
		})
	}
}

func TestDecompressFromStore(t *testing.T) {
	tree := test.SampleTree()
	archivePath := makeArchive(t, tree, compression.Zstd)
	store := file.New(url.URL{Scheme: "file", Path: filepath.Dir(archivePath)})
	dest := t.TempDir()

	results, err := newTestExecutor().Decompress(context.Background(), DecompressOptions{
		Source:    filepath.Base(archivePath),
		Store:     store,
		TargetDir: dest,
		Algorithm: compression.Zstd,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(archivePath), results.Archive)
	assert.Equal(t, tree, test.ReadTree(t, dest))
}

func TestDecompressFromStoreMissing(t *testing.T) {
	store := file.New(url.URL{Scheme: "file", Path: t.TempDir()})
	_, err := newTestExecutor().Decompress(context.Background(), DecompressOptions{
		Source:    "absent.tar.gz",
		Store:     store,
		TargetDir: t.TempDir(),
		Algorithm: compression.Gzip,
	})
	require.Error(t, err)
	assert.Equal(t, compression.SourceDoesNotExist, compression.KindOf(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
