package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/databacker/dir-archiver/pkg/compression"
)

const (
	exitIOError       = 1
	exitArgumentError = 2
)

// argumentError is a problem with what the user asked for.
type argumentError struct {
	err error
}

func (e *argumentError) Error() string { return e.err.Error() }
func (e *argumentError) Unwrap() error { return e.err }

// ioError is a failure while doing what the user asked for.
type ioError struct {
	err error
}

func (e *ioError) Error() string { return e.err.Error() }
func (e *ioError) Unwrap() error { return e.err }

// classify sorts an operation error into argument or I/O class by its compression kind.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		ae *argumentError
		ie *ioError
	)
	if errors.As(err, &ae) || errors.As(err, &ie) {
		return err
	}
	switch compression.KindOf(err) {
	case compression.InvalidLevel, compression.UnknownType, compression.UnreachableTarget, compression.SourceDoesNotExist:
		return &argumentError{err}
	default:
		return &ioError{err}
	}
}

// exitCode maps an error from Execute to the process exit status. Errors that never reached
// an operation come from parsing and validating the command line.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ie *ioError
	if errors.As(err, &ie) {
		return exitIOError
	}
	return exitArgumentError
}

// checkPathArg rejects paths the filesystem cannot represent.
func checkPathArg(name, p string) error {
	switch {
	case p == "":
		return &argumentError{fmt.Errorf("%s must not be empty", name)}
	case strings.ContainsRune(p, 0):
		return &argumentError{fmt.Errorf("%s contains a NUL byte", name)}
	}
	return nil
}
