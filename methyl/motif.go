package methyl

import (
	"bytes"

	"github.com/grailbio/base/errors"
)

// DefaultMotif is the dinucleotide scanned for when no motif is configured.
const DefaultMotif = "CG"

// Coordinates lists 0-based offsets into the reference sequence at which the
// motif starts. Offsets are strictly increasing, and consecutive offsets
// differ by at least the motif length.
type Coordinates []int

// Locate scans seq left to right for non-overlapping occurrences of motif and
// returns their start offsets. After a match at offset i the scan resumes at
// i+len(motif). Matching is case-insensitive.
//
// An empty seq, or a seq without the motif, yields empty Coordinates. An
// empty motif is a configuration error and is rejected before scanning.
func Locate(seq []byte, motif string) (Coordinates, error) {
	if len(motif) == 0 {
		return nil, errors.E(errors.Invalid, "methyl.Locate: empty motif")
	}
	m := bytes.ToUpper([]byte(motif))
	s := bytes.ToUpper(seq)
	coords := Coordinates{}
	for i := 0; i+len(m) <= len(s); {
		j := bytes.Index(s[i:], m)
		if j < 0 {
			break
		}
		coords = append(coords, i+j)
		i += j + len(m)
	}
	return coords, nil
}
