package methyl

import (
	"fmt"
	"strings"
)

// Flag is the methylation call for one CpG site in one read.
type Flag uint8

const (
	// Unmethylated means the read shows "TG" at the site: the cytosine was
	// converted by bisulfite treatment.
	Unmethylated Flag = iota
	// Methylated means the read shows "CG" at the site: the cytosine was
	// protected from conversion.
	Methylated
	// Missing means the read does not cover the site, or shows something other
	// than "CG" or "TG" there.
	Missing
)

// String returns "0", "1" or "!".
func (f Flag) String() string {
	switch f {
	case Unmethylated:
		return "0"
	case Methylated:
		return "1"
	case Missing:
		return "!"
	}
	return fmt.Sprintf("Flag(%d)", uint8(f))
}

// Read is one alignment record reduced to what methylation calling needs.
type Read struct {
	// Pos is the 0-based reference offset of the read's first base.
	Pos int
	// Seq is the read's base sequence.
	Seq []byte
}

// Pattern holds one Flag per entry of the Coordinates it was extracted
// against, in the same order.
type Pattern []Flag

// ExtractPattern calls each site in coords for read r. The site at reference
// offset c is looked up at read offset c-r.Pos; sites for which the read does
// not hold both bases of the dinucleotide are Missing.
//
// The result always has len(coords) entries.
func ExtractPattern(coords Coordinates, r Read) Pattern {
	p := make(Pattern, len(coords))
	n := len(r.Seq)
	for i, c := range coords {
		off := c - r.Pos
		if off < 0 || off > n-2 {
			p[i] = Missing
			continue
		}
		p[i] = callSite(r.Seq[off], r.Seq[off+1])
	}
	return p
}

func callSite(b0, b1 byte) Flag {
	if b1 != 'G' {
		return Missing
	}
	switch b0 {
	case 'C':
		return Methylated
	case 'T':
		return Unmethylated
	}
	return Missing
}

// Count returns the number of entries equal to f.
func (p Pattern) Count(f Flag) int {
	n := 0
	for _, v := range p {
		if v == f {
			n++
		}
	}
	return n
}

// Has reports whether any entry equals f.
func (p Pattern) Has(f Flag) bool {
	for _, v := range p {
		if v == f {
			return true
		}
	}
	return false
}

// Level computes the methylation level of the read. The second result is
// false when the level is undefined: the pattern has a Missing entry, or it
// is empty.
func (p Pattern) Level() (Level, bool) {
	if len(p) == 0 || p.Has(Missing) {
		return Level{}, false
	}
	return Level{Methylated: p.Count(Methylated), Sites: len(p)}, true
}

// Clone returns a copy of p.
func (p Pattern) Clone() Pattern {
	if p == nil {
		return nil
	}
	c := make(Pattern, len(p))
	copy(c, p)
	return c
}

// String renders the pattern as a flag string, e.g. "10!1".
func (p Pattern) String() string {
	var b strings.Builder
	b.Grow(len(p))
	for _, f := range p {
		b.WriteString(f.String())
	}
	return b.String()
}

// Level is the fraction of sites in a read that are methylated, kept as an
// exact ratio.
type Level struct {
	Methylated int
	Sites      int
}

// Float64 returns Methylated/Sites.
func (l Level) Float64() float64 {
	return float64(l.Methylated) / float64(l.Sites)
}

// String formats the level as a decimal.
func (l Level) String() string {
	return fmt.Sprintf("%g", l.Float64())
}
