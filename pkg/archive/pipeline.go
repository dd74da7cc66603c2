package archive

import (
	"archive/tar"
	"errors"
	"io"

	"github.com/databacker/dir-archiver/pkg/compression"
)

// Writer is a tar stream layered over a compression encoder.
type Writer struct {
	enc io.WriteCloser
	tw  *tar.Writer
}

// NewWriter wraps sink in the encoder for alg at level, and the encoder in a tar writer.
// The caller must Close the Writer, which finalizes the encoder but not sink.
func NewWriter(sink io.Writer, alg compression.Algorithm, level uint) (*Writer, error) {
	c, err := compression.New(alg, level)
	if err != nil {
		return nil, err
	}
	enc, err := c.Compress(sink)
	if err != nil {
		return nil, err
	}
	return &Writer{enc: enc, tw: tar.NewWriter(enc)}, nil
}

// AddDir appends the contents of the directory src, rooted at ".".
func (w *Writer) AddDir(src string) error {
	return addDir(w.tw, src)
}

// Close writes the tar trailer and then flushes and closes the encoder.
// The encoder is closed even if the trailer cannot be written.
func (w *Writer) Close() error {
	return errors.Join(w.tw.Close(), w.enc.Close())
}

// Reader is a tar stream read through a compression decoder.
type Reader struct {
	dec io.ReadCloser
}

// NewReader wraps source in the decoder for alg.
func NewReader(source io.Reader, alg compression.Algorithm) (*Reader, error) {
	c, err := compression.New(alg, 0)
	if err != nil {
		return nil, err
	}
	dec, err := c.Uncompress(source)
	if err != nil {
		return nil, err
	}
	return &Reader{dec: dec}, nil
}

// ExtractTo unpacks every entry of the archive into dir.
func (r *Reader) ExtractTo(dir string) error {
	return Untar(r.dec, dir)
}

func (r *Reader) Close() error {
	return r.dec.Close()
}
