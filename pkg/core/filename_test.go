package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databacker/dir-archiver/pkg/compression"
)

func TestProcessFilenamePattern(t *testing.T) {
	now := time.Date(2024, 2, 9, 7, 5, 3, 0, time.UTC)
	tests := []struct {
		name      string
		pattern   string
		alg       compression.Algorithm
		safechars bool
		want      string
		wantErr   bool
	}{
		{"default gzip", "", compression.Gzip, false, "archive.tar.gz", false},
		{"default lz4", "", compression.Lz4, false, "archive.tar.lz4", false},
		{"verbatim", "out.tar.gz", compression.Gzip, false, "out.tar.gz", false},
		{"timestamp", "db_{{ .now }}.tar.{{ .compression }}", compression.Xz, false, "db_2024-02-09T07:05:03Z.tar.xz", false},
		{"safe timestamp", "db_{{ .now }}.tar.{{ .compression }}", compression.Xz, true, "db_2024-02-09T07-05-03Z.tar.xz", false},
		{"parts", "{{ .year }}{{ .month }}{{ .day }}-{{ .hour }}{{ .minute }}{{ .second }}.{{ .algorithm }}", compression.Zstd, false, "20240209-070503.zstd", false},
		{"unknown key", "{{ .host }}.tar.gz", compression.Gzip, false, "", true},
		{"bad template", "{{ .now", compression.Gzip, false, "", true},
		{"renders empty", "{{ if false }}x{{ end }}", compression.Gzip, false, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProcessFilenamePattern(tt.pattern, tt.alg, now, tt.safechars)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
