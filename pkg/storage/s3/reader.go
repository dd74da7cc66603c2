package s3

import (
	"io"
)

// CountingReader reports how many bytes have been read through it.
type CountingReader struct {
	io.Reader
	n int64
}

func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{Reader: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.Reader.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *CountingReader) Bytes() int64 {
	return c.n
}
