// Package input opens text inputs through grailbio/base/file, decompressing
// them on the fly when the path names a gzip file.
package input

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
)

// Reader is an opened input. Reads return decompressed data.
type Reader struct {
	io.Reader
	in file.File
	gz *gzip.Reader
}

// Open opens path, which may be a local file or an S3 URL. A missing file is
// reported with errors.NotExist by the file package.
func Open(ctx context.Context, path string) (*Reader, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	r := &Reader{Reader: in.Reader(ctx), in: in}
	if fileio.DetermineType(path) == fileio.Gzip {
		if r.gz, err = gzip.NewReader(r.Reader); err != nil {
			in.Close(ctx) // nolint: errcheck
			return nil, err
		}
		r.Reader = r.gz
	}
	return r, nil
}

// Close closes the decompressor, if any, and the underlying file.
func (r *Reader) Close(ctx context.Context) error {
	var err error
	if r.gz != nil {
		err = r.gz.Close()
	}
	if e := r.in.Close(ctx); e != nil && err == nil {
		err = e
	}
	return err
}
