package compression

import (
	"fmt"
	"io"
)

// Compressor wraps byte streams in one compression algorithm.
// Writers returned by Compress must be closed to flush the compressed stream.
type Compressor interface {
	Uncompress(in io.Reader) (io.ReadCloser, error)
	Compress(out io.Writer) (io.WriteCloser, error)
	Extension() string
	Algorithm() Algorithm
}

// New returns the Compressor for alg, encoding at level. The level is validated first.
func New(alg Algorithm, level uint) (Compressor, error) {
	if err := ValidateLevel(alg, level); err != nil {
		return nil, err
	}
	switch alg {
	case Gzip:
		return &GzipCompressor{Level: level}, nil
	case Zstd:
		return &ZstdCompressor{Level: level}, nil
	case Xz:
		return &XzCompressor{Level: level}, nil
	case Lz4:
		return &Lz4Compressor{Level: level}, nil
	default:
		return nil, &Error{Kind: UnknownType, Err: fmt.Errorf("unsupported algorithm %d", int(alg))}
	}
}

// GetCompressor parses name and returns its Compressor at level.
func GetCompressor(name string, level uint) (Compressor, error) {
	alg, err := ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}
	return New(alg, level)
}
