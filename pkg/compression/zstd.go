package compression

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

var _ Compressor = &ZstdCompressor{}

type ZstdCompressor struct {
	Level uint
}

func (z *ZstdCompressor) Uncompress(in io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(in, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

// Compress maps the zstd command-line level scale onto the encoder's speed presets.
func (z *ZstdCompressor) Compress(out io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(out,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(int(z.Level))),
		zstd.WithEncoderConcurrency(1),
	)
}

func (z *ZstdCompressor) Extension() string {
	return Zstd.Extension()
}

func (z *ZstdCompressor) Algorithm() Algorithm {
	return Zstd
}
