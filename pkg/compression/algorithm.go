package compression

import (
	"fmt"
	"strings"
)

// Algorithm is one of the supported compression transforms.
type Algorithm int

const (
	Gzip Algorithm = iota
	Zstd
	Xz
	Lz4
)

// DefaultAlgorithm is used when the caller does not name one.
const DefaultAlgorithm = Gzip

var algorithmNames = map[Algorithm]string{
	Gzip: "gzip",
	Zstd: "zstd",
	Xz:   "xz",
	Lz4:  "lz4",
}

var algorithmExtensions = map[Algorithm]string{
	Gzip: "gz",
	Zstd: "zst",
	Xz:   "xz",
	Lz4:  "lz4",
}

// Algorithms returns every supported algorithm, in a stable order.
func Algorithms() []Algorithm {
	return []Algorithm{Gzip, Zstd, Xz, Lz4}
}

// ParseAlgorithm converts a name such as "gzip" or "ZSTD" into an Algorithm.
// Any name that is not recognized returns an error of kind UnknownType.
func ParseAlgorithm(name string) (Algorithm, error) {
	lower := strings.ToLower(name)
	for _, alg := range Algorithms() {
		if algorithmNames[alg] == lower {
			return alg, nil
		}
	}
	return 0, &Error{Kind: UnknownType, Err: fmt.Errorf("unsupported algorithm %q", name)}
}

// String returns the canonical lowercase name.
func (a Algorithm) String() string {
	return algorithmNames[a]
}

// Extension returns the file extension for a stream compressed with a, without the dot.
func (a Algorithm) Extension() string {
	return algorithmExtensions[a]
}

// DefaultFileName is the archive name used when the caller does not supply one.
func (a Algorithm) DefaultFileName() string {
	return "archive.tar." + a.Extension()
}
