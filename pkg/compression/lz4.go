package compression

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

var _ Compressor = &Lz4Compressor{}

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1,
	lz4.Level2,
	lz4.Level3,
	lz4.Level4,
	lz4.Level5,
	lz4.Level6,
	lz4.Level7,
	lz4.Level8,
	lz4.Level9,
}

type Lz4Compressor struct {
	Level uint
}

func (l *Lz4Compressor) Uncompress(in io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(in)), nil
}

// Compress level 0 is the fast mode; 1 through 9 select the high compression levels.
func (l *Lz4Compressor) Compress(out io.Writer) (io.WriteCloser, error) {
	level := l.Level
	if level >= uint(len(lz4Levels)) {
		level = uint(len(lz4Levels)) - 1
	}
	w := lz4.NewWriter(out)
	if err := w.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
		return nil, err
	}
	return w, nil
}

func (l *Lz4Compressor) Extension() string {
	return Lz4.Extension()
}

func (l *Lz4Compressor) Algorithm() Algorithm {
	return Lz4
}
