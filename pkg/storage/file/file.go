package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// File stores archives in a local directory.
type File struct {
	url  url.URL
	path string
}

func New(u url.URL) *File {
	return &File{u, u.Path}
}

func (f *File) Pull(ctx context.Context, source, target string, logger *log.Entry) (int64, error) {
	src := filepath.Join(f.path, source)
	logger.Debugf("copying %s to %s", src, target)
	return copyFile(src, target)
}

func (f *File) Push(ctx context.Context, target, source string, logger *log.Entry) (int64, error) {
	dst := filepath.Join(f.path, target)
	logger.Debugf("copying %s to %s", source, dst)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("unable to create directory for %s: %w", dst, err)
	}
	return copyFile(source, dst)
}

func (f *File) Clean(filename string) string {
	return filename
}

func (f *File) Protocol() string {
	return "file"
}

func (f *File) URL() string {
	return f.url.String()
}

// copyFile copy a file from to as efficiently as possible
func copyFile(from, to string) (n int64, err error) {
	src, err := os.Open(from)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	dst, err := os.Create(to)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return io.Copy(dst, src)
}
