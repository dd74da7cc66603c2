package cmd

import (
	"errors"
	"net/url"
	"testing"

	"github.com/go-test/deep"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/databacker/dir-archiver/pkg/compression"
	"github.com/databacker/dir-archiver/pkg/core"
	"github.com/databacker/dir-archiver/pkg/storage/file"
)

func TestDecompressCmd(t *testing.T) {
	t.Parallel()

	fileTargetURL, _ := url.Parse("file:///foo/bar")
	tests := []struct {
		name            string
		args            []string // "decompress" will be prepended automatically
		execErr         error
		wantCode        int
		expectedOptions core.DecompressOptions
	}{
		{"missing arguments", []string{}, nil, exitArgumentError, core.DecompressOptions{}},
		{"too many arguments", []string{"/a.tar.gz", "/dst", "/extra"}, nil, exitArgumentError, core.DecompressOptions{}},
		{"NUL in path", []string{"/a.tar.gz", "/d\x00st"}, nil, exitArgumentError, core.DecompressOptions{}},
		{"unknown compression", []string{"/a.tar.br", "/dst", "--compression", "brotli"}, nil, exitArgumentError, core.DecompressOptions{}},
		{"invalid from URL", []string{"a.tar.gz", "/dst", "--from", "ftp://host/path"}, nil, exitArgumentError, core.DecompressOptions{}},

		{"defaults", []string{"/a.tar.gz", "/dst"}, nil, 0, core.DecompressOptions{
			Source: "/a.tar.gz", TargetDir: "/dst", Algorithm: compression.Gzip,
		}},
		{"lz4", []string{"/a.tar.lz4", "/dst", "--compression", "lz4"}, nil, 0, core.DecompressOptions{
			Source: "/a.tar.lz4", TargetDir: "/dst", Algorithm: compression.Lz4,
		}},
		{"from storage", []string{"a.tar.gz", "/dst", "--from", "file:///foo/bar"}, nil, 0, core.DecompressOptions{
			Source: "a.tar.gz", TargetDir: "/dst", Algorithm: compression.Gzip, Store: file.New(*fileTargetURL),
		}},
		{"scripts", []string{"/a.tar.gz", "/dst", "--pre-decompress-scripts", "/pre", "--post-decompress-scripts", "/post"}, nil, 0, core.DecompressOptions{
			Source: "/a.tar.gz", TargetDir: "/dst", Algorithm: compression.Gzip, PreDecompressScripts: "/pre", PostDecompressScripts: "/post",
		}},
		{"config file", []string{"a.tar.lz4", "/dst", "--config-file", "testdata/config.yml", "--from", "config://local"}, nil, 0, core.DecompressOptions{
			Source: "a.tar.lz4", TargetDir: "/dst", Algorithm: compression.Lz4, Store: file.New(*fileTargetURL),
			PostDecompressScripts: "/scripts/post-decompress",
		}},
		{"config file with override", []string{"/a.tar.zst", "/dst", "--config-file", "testdata/config.yml", "--compression", "zstd"}, nil, 0, core.DecompressOptions{
			Source: "/a.tar.zst", TargetDir: "/dst", Algorithm: compression.Zstd, PostDecompressScripts: "/scripts/post-decompress",
		}},

		{"missing archive", []string{"/a.tar.gz", "/dst"}, &compression.Error{Kind: compression.SourceDoesNotExist}, exitArgumentError, core.DecompressOptions{
			Source: "/a.tar.gz", TargetDir: "/dst", Algorithm: compression.Gzip,
		}},
		{"corrupt archive", []string{"/a.tar.gz", "/dst"}, compression.Wrap(errors.New("gzip: invalid header")), exitIOError, core.DecompressOptions{
			Source: "/a.tar.gz", TargetDir: "/dst", Algorithm: compression.Gzip,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockExecs()
			m.On("Decompress", mock.MatchedBy(func(opts core.DecompressOptions) bool {
				opts.Run = uuid.Nil
				diff := deep.Equal(opts, tt.expectedOptions)
				if diff == nil {
					return true
				}
				t.Errorf("decompressOpts compare failed: %v", diff)
				return false
			})).Return(tt.execErr)

			err := executeCmd(t, m, append([]string{"decompress"}, tt.args...)...)
			assert.Equal(t, tt.wantCode, exitCode(err), "error: %v", err)
			if tt.wantCode == 0 || tt.execErr != nil {
				m.AssertExpectations(t)
			}
		})
	}
}
