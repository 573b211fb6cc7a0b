// Package fasta reads a FASTA reference into one contiguous sequence.
// FASTA files consist of header lines starting with '>' followed by sequence
// lines that may be interrupted by newlines.  For example:
//
// >region1
// ACGTAC
// GAGGAC
// >region2
// ACGT
//
// Header lines are dropped and all sequence lines are concatenated in file
// order, so the example above yields "ACGTACGAGGACACGT". Bases are
// uppercased.
//
// Each header contributes its first word to Reference.Names, so
// ">Region1 SNCA promoter" is recorded as "Region1".
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/grailbio/epiallele/encoding/input"
	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 * 300 // 300 MB
)

// Reference is the concatenation of every sequence in a FASTA file.
type Reference struct {
	// Names lists the header names, in the order of appearance.
	Names []string
	// Seq is the uppercased, concatenated sequence.
	Seq []byte
}

// Len returns the length of the concatenated sequence.
func (r *Reference) Len() int { return len(r.Seq) }

// New reads FASTA data from r. Lines are trimmed of surrounding whitespace;
// blank lines are ignored. Input without any sequence line yields an empty
// Reference.
func New(r io.Reader) (*Reference, error) {
	ref := &Reference{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var seq bytes.Buffer
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			ref.Names = append(ref.Names, strings.Split(string(line[1:]), " ")[0])
			continue
		}
		seq.Write(line)
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "couldn't read FASTA data")
	}
	ref.Seq = bytes.ToUpper(seq.Bytes())
	return ref, nil
}

// Read reads the FASTA file at path. Gzipped files (".gz") are decompressed.
func Read(ctx context.Context, path string) (ref *Reference, err error) {
	in, err := input.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	if ref, err = New(in); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return ref, nil
}
