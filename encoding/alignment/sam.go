package alignment

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/grailbio/base/log"
	"github.com/grailbio/epiallele/encoding/input"
	"github.com/grailbio/epiallele/methyl"
	"github.com/pkg/errors"
)

const (
	// SAM columns, 0-based.
	samPosCol = 3
	samSeqCol = 9
	// A data line must have at least this many columns.
	samMinCols = 10

	maxLineSize = 64 << 20
)

// SAMScanner parses SAM text. Each call to Scan yields the next data line
// that parses; lines that don't are counted in Skipped.
type SAMScanner struct {
	path    string
	sc      *bufio.Scanner
	lineNum int
	read    methyl.Read
	skipped int
	err     error
}

// NewSAMScanner creates a scanner reading SAM text from r. path is used only
// for error messages and may be empty.
func NewSAMScanner(r io.Reader, path string) *SAMScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)
	return &SAMScanner{path: path, sc: sc}
}

// Scan implements methyl.ReadIterator.
func (s *SAMScanner) Scan() bool {
	for s.sc.Scan() {
		s.lineNum++
		line := bytes.TrimRight(s.sc.Bytes(), "\r")
		if len(line) == 0 || line[0] == '@' {
			continue
		}
		read, err := s.parse(line)
		if err != nil {
			log.Debug.Printf("skipping alignment line: %v", err)
			s.skipped++
			continue
		}
		s.read = read
		return true
	}
	if err := s.sc.Err(); err != nil {
		s.err = errors.Wrapf(err, "%s: reading SAM line %d", s.path, s.lineNum+1)
	}
	return false
}

// parse extracts POS and SEQ from one data line. The POS column is 1-based;
// the returned read's Pos is 0-based.
func (s *SAMScanner) parse(line []byte) (methyl.Read, error) {
	cols := bytes.SplitN(line, []byte{'\t'}, samMinCols+1)
	if len(cols) < samMinCols {
		return methyl.Read{}, &ParseError{Path: s.path, Line: s.lineNum,
			Msg: "expected at least " + strconv.Itoa(samMinCols) + " tab-separated fields, found " + strconv.Itoa(len(cols))}
	}
	pos, err := strconv.Atoi(string(cols[samPosCol]))
	if err != nil {
		return methyl.Read{}, &ParseError{Path: s.path, Line: s.lineNum,
			Msg: "non-integer position " + strconv.Quote(string(cols[samPosCol]))}
	}
	return methyl.Read{Pos: pos - 1, Seq: cols[samSeqCol]}, nil
}

// Read implements methyl.ReadIterator. The returned Seq aliases the scanner's
// buffer and is overwritten by the next call to Scan.
func (s *SAMScanner) Read() methyl.Read { return s.read }

// Skipped implements methyl.ReadIterator.
func (s *SAMScanner) Skipped() int { return s.skipped }

// Err implements methyl.ReadIterator.
func (s *SAMScanner) Err() error { return s.err }

type samIterator struct {
	*SAMScanner
	in *input.Reader
}

// OpenSAM opens a SAM text file, gzipped if path ends in ".gz".
func OpenSAM(ctx context.Context, path string) (Iterator, error) {
	in, err := input.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &samIterator{SAMScanner: NewSAMScanner(in, path), in: in}, nil
}

func (it *samIterator) Close(ctx context.Context) error {
	return it.in.Close(ctx)
}
