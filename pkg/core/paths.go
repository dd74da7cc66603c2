package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/databacker/dir-archiver/pkg/compression"
)

// checkSource reports a missing source as SourceDoesNotExist.
func checkSource(p string) error {
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &compression.Error{Kind: compression.SourceDoesNotExist, Err: err}
		}
		return compression.Wrap(err)
	}
	return nil
}

// checkTargetDir requires p to be a directory, creating it when create is set.
// Anything else is UnreachableTarget.
func checkTargetDir(p string, create bool) error {
	info, err := os.Stat(p)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return &compression.Error{Kind: compression.UnreachableTarget, Err: fmt.Errorf("%s is not a directory", p)}
	case create && errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(p, 0o755); err != nil {
			return &compression.Error{Kind: compression.UnreachableTarget, Err: err}
		}
		return nil
	default:
		return &compression.Error{Kind: compression.UnreachableTarget, Err: err}
	}
}
