package core

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/databacker/dir-archiver/pkg/compression"
)

// ProcessFilenamePattern renders the archive file name. An empty pattern gives the
// algorithm's default name; a pattern without template actions is returned as is.
func ProcessFilenamePattern(pattern string, alg compression.Algorithm, now time.Time, safechars bool) (string, error) {
	if pattern == "" {
		return alg.DefaultFileName(), nil
	}
	timestamp := now.Format(time.RFC3339)
	if safechars {
		timestamp = strings.ReplaceAll(timestamp, ":", "-")
	}
	tmpl, err := template.New("filename").Option("missingkey=error").Parse(pattern)
	if err != nil {
		return "", fmt.Errorf("failed to parse filename pattern: %w", err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, map[string]string{
		"now":         timestamp,
		"year":        now.Format("2006"),
		"month":       now.Format("01"),
		"day":         now.Format("02"),
		"hour":        now.Format("15"),
		"minute":      now.Format("04"),
		"second":      now.Format("05"),
		"compression": alg.Extension(),
		"algorithm":   alg.String(),
	}); err != nil {
		return "", fmt.Errorf("failed to execute filename pattern: %w", err)
	}
	name := buf.String()
	if name == "" {
		return "", fmt.Errorf("filename pattern %q produced an empty name", pattern)
	}
	return name, nil
}
