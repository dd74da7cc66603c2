package archive

import (
	"io"

	goarchive "github.com/moby/go-archive"
)

// Untar extracts an uncompressed tar stream into dest. Intermediate directories are
// created, existing files are replaced, and entries that would land outside dest
// are rejected.
func Untar(r io.Reader, dest string) error {
	return goarchive.UntarUncompressed(r, dest, &goarchive.TarOptions{
		NoLchown: true,
	})
}
