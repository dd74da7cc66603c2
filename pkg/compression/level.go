package compression

import "fmt"

const (
	// MaxLevel is the highest level accepted by gzip, xz and lz4.
	MaxLevel = 9
	// MaxZstdLevel is the highest level accepted by zstd, and the ceiling for every algorithm.
	MaxZstdLevel = 21
)

// DefaultLevel is used when the caller does not choose a level.
const DefaultLevel uint = 3

// ValidateLevel checks that level is legal for alg. It performs no I/O.
func ValidateLevel(alg Algorithm, level uint) error {
	if (alg != Zstd && level > MaxLevel) || level > MaxZstdLevel {
		limit := MaxLevel
		if alg == Zstd {
			limit = MaxZstdLevel
		}
		return &Error{Kind: InvalidLevel, Err: fmt.Errorf("level %d for %s, must be between 0 and %d", level, alg, limit)}
	}
	return nil
}
