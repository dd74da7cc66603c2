package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/databacker/dir-archiver/pkg/compression"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, 0},
		{"invalid level", &compression.Error{Kind: compression.InvalidLevel}, exitArgumentError},
		{"unknown type", fmt.Errorf("wrapped: %w", compression.ErrUnknownType), exitArgumentError},
		{"unreachable target", &compression.Error{Kind: compression.UnreachableTarget}, exitArgumentError},
		{"source does not exist", &compression.Error{Kind: compression.SourceDoesNotExist}, exitArgumentError},
		{"other", &compression.Error{Kind: compression.Other, Err: errors.New("broken pipe")}, exitIOError},
		{"plain error", errors.New("broken pipe"), exitIOError},
		{"already classified", &argumentError{errors.New("bad flag")}, exitArgumentError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, exitCode(classify(tt.err)))
		})
	}
}

func TestExitCodeUnclassified(t *testing.T) {
	// errors that never reached an operation are usage errors
	assert.Equal(t, exitArgumentError, exitCode(errors.New(`unknown command "archive"`)))
	assert.Equal(t, exitIOError, exitCode(&ioError{errors.New("telemetry down")}))
}

func TestCheckPathArg(t *testing.T) {
	assert.NoError(t, checkPathArg("source", "/data"))
	assert.Error(t, checkPathArg("source", ""))
	assert.Error(t, checkPathArg("source", "/da\x00ta"))
}
