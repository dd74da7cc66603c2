package compression

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

var _ Compressor = &GzipCompressor{}

type GzipCompressor struct {
	Level uint
}

func (g *GzipCompressor) Uncompress(in io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(in)
}

// Compress level 0 stores without compression.
func (g *GzipCompressor) Compress(out io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(out, int(g.Level))
}

func (g *GzipCompressor) Extension() string {
	return Gzip.Extension()
}

func (g *GzipCompressor) Algorithm() Algorithm {
	return Gzip
}
