package alignment

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/epiallele/methyl"
)

// FileType represents the encoding of an alignment file.
type FileType int

const (
	// Unknown is a sentinel.
	Unknown FileType = iota
	// SAM is tab-separated text, optionally gzipped.
	SAM
	// BAM is the BGZF-compressed binary encoding.
	BAM
)

// String returns "sam", "bam" or "unknown".
func (t FileType) String() string {
	switch t {
	case SAM:
		return "sam"
	case BAM:
		return "bam"
	}
	return "unknown"
}

// ParseFileType parses the file type string. "bam" returns BAM, for example.
// On error, it returns Unknown.
func ParseFileType(name string) FileType {
	switch strings.ToLower(name) {
	case "sam":
		return SAM
	case "bam":
		return BAM
	}
	return Unknown
}

// GuessFileType returns the file type from the pathname: ".bam" is BAM,
// ".sam" and ".sam.gz" are SAM, anything else is Unknown.
func GuessFileType(path string) FileType {
	p := strings.ToLower(path)
	switch {
	case strings.HasSuffix(p, ".bam"):
		return BAM
	case strings.HasSuffix(p, ".sam"), strings.HasSuffix(p, ".sam.gz"):
		return SAM
	}
	return Unknown
}

// SampleName derives a sample name from an alignment path: the base name with
// the ".sam", ".sam.gz" or ".bam" extension removed.
func SampleName(path string) string {
	name := path
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	lower := strings.ToLower(name)
	for _, ext := range []string{".sam.gz", ".sam", ".bam"} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// Iterator yields the reads of one alignment file. It is not thread safe.
type Iterator interface {
	methyl.ReadIterator
	// Close releases the underlying file. It must be called exactly once.
	Close(ctx context.Context) error
}

// Open opens the alignment file at path, guessing its type from the name.
// Files whose type cannot be guessed are read as SAM text.
func Open(ctx context.Context, path string) (Iterator, error) {
	return OpenType(ctx, path, Unknown)
}

// OpenType opens the alignment file at path as typ. If typ is Unknown, the
// type is guessed from the path as in Open.
func OpenType(ctx context.Context, path string, typ FileType) (Iterator, error) {
	if typ == Unknown {
		typ = GuessFileType(path)
	}
	switch typ {
	case BAM:
		return OpenBAM(ctx, path)
	default:
		return OpenSAM(ctx, path)
	}
}

// ParseError describes an alignment line that could not be parsed.
type ParseError struct {
	// Path is the file the line came from; it may be empty.
	Path string
	// Line is the 1-based line number.
	Line int
	// Msg describes the problem.
	Msg string
}

// Error implements error.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}
