package alignment

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/epiallele/methyl"
	"github.com/grailbio/hts/bam"
	"github.com/pkg/errors"
)

// BAMScanner yields the records of a BAM stream.
type BAMScanner struct {
	r    *bam.Reader
	read methyl.Read
	err  error
}

// NewBAMScanner reads BAM data from r. It fails if the BAM header cannot be
// decoded.
func NewBAMScanner(r io.Reader) (*BAMScanner, error) {
	br, err := bam.NewReader(r, 1)
	if err != nil {
		return nil, errors.Wrap(err, "reading BAM header")
	}
	return &BAMScanner{r: br}, nil
}

// Scan implements methyl.ReadIterator.
func (s *BAMScanner) Scan() bool {
	if s.err != nil {
		return false
	}
	rec, err := s.r.Read()
	if err != nil {
		if err != io.EOF {
			s.err = errors.Wrap(err, "reading BAM record")
		}
		return false
	}
	s.read = methyl.Read{Pos: rec.Pos, Seq: rec.Seq.Expand()}
	return true
}

// Read implements methyl.ReadIterator.
func (s *BAMScanner) Read() methyl.Read { return s.read }

// Skipped implements methyl.ReadIterator. BAM records are never skipped.
func (s *BAMScanner) Skipped() int { return 0 }

// Err implements methyl.ReadIterator.
func (s *BAMScanner) Err() error { return s.err }

// Close closes the BAM decoder.
func (s *BAMScanner) Close() error { return s.r.Close() }

type bamIterator struct {
	*BAMScanner
	in file.File
}

// OpenBAM opens a BAM file.
func OpenBAM(ctx context.Context, path string) (Iterator, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	s, err := NewBAMScanner(in.Reader(ctx))
	if err != nil {
		in.Close(ctx) // nolint: errcheck
		return nil, errors.Wrap(err, path)
	}
	return &bamIterator{BAMScanner: s, in: in}, nil
}

func (it *bamIterator) Close(ctx context.Context) error {
	err := it.BAMScanner.Close()
	if e := it.in.Close(ctx); e != nil && err == nil {
		err = e
	}
	return err
}
