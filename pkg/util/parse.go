package util

import (
	"net/url"
	"path/filepath"
	"strings"
)

// SmartParse parse a url, but convert a bare path such as "/data" or "data" into "file:///..."
func SmartParse(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		abs, err := filepath.Abs(raw)
		if err != nil {
			return nil, err
		}
		return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
	}
	return url.Parse(raw)
}
