package compression

import (
	"io"

	"github.com/ulikunitz/xz"
)

var _ Compressor = &XzCompressor{}

// xzPresetDictCap is the dictionary capacity used by the xz utility for presets 0-9.
var xzPresetDictCap = [...]int{
	256 << 10,
	1 << 20,
	2 << 20,
	4 << 20,
	4 << 20,
	8 << 20,
	8 << 20,
	16 << 20,
	32 << 20,
	64 << 20,
}

type XzCompressor struct {
	Level uint
}

func (x *XzCompressor) Uncompress(in io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(in)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(r), nil
}

func (x *XzCompressor) Compress(out io.Writer) (io.WriteCloser, error) {
	level := x.Level
	if level >= uint(len(xzPresetDictCap)) {
		level = uint(len(xzPresetDictCap)) - 1
	}
	cfg := xz.WriterConfig{DictCap: xzPresetDictCap[level]}
	return cfg.NewWriter(out)
}

func (x *XzCompressor) Extension() string {
	return Xz.Extension()
}

func (x *XzCompressor) Algorithm() Algorithm {
	return Xz
}
