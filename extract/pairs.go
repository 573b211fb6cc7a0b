package extract

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/epiallele/encoding/alignment"
)

var regionRE = regexp.MustCompile(`(?i)region\d+`)

// Pair groups a reference with the alignment files produced against it.
type Pair struct {
	// Region is the region token shared by the reference and alignment names.
	Region string
	// Reference is the FASTA path.
	Reference string
	// Alignments are the matching alignment paths, sorted.
	Alignments []string
}

// RegionOf extracts the region token ("Region1", "region12", ...) from a file
// name. If there are several, the last one wins, so
// "Galaxy2-[SNCA_Promoter_Region1.fasta].fasta" yields "Region1". It returns ""
// if there is none.
func RegionOf(name string) string {
	m := regionRE.FindAllString(filepath.Base(name), -1)
	if len(m) == 0 {
		return ""
	}
	return m[len(m)-1]
}

func isReference(path string) bool {
	p := strings.ToLower(path)
	for _, ext := range []string{".fa", ".fasta", ".fa.gz", ".fasta.gz"} {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// FindPairs lists dir (non-recursively) and pairs each FASTA file with the
// alignment files whose names contain the FASTA's region token. References
// without a region token or without alignments are logged and skipped. The
// result is sorted by reference path.
func FindPairs(ctx context.Context, dir string) ([]Pair, error) {
	var refs, aligns []string
	lister := file.List(ctx, dir, false)
	for lister.Scan() {
		if lister.IsDir() {
			continue
		}
		path := lister.Path()
		switch {
		case isReference(path):
			refs = append(refs, path)
		case alignment.GuessFileType(path) != alignment.Unknown:
			aligns = append(aligns, path)
		}
	}
	if err := lister.Err(); err != nil {
		return nil, err
	}
	sort.Strings(refs)
	sort.Strings(aligns)
	log.Printf("%s: found %d reference and %d alignment files", dir, len(refs), len(aligns))

	var pairs []Pair
	for _, ref := range refs {
		region := RegionOf(ref)
		if region == "" {
			log.Printf("%s: no region token in name, skipping", ref)
			continue
		}
		p := Pair{Region: region, Reference: ref}
		for _, a := range aligns {
			if strings.EqualFold(RegionOf(a), region) {
				p.Alignments = append(p.Alignments, a)
			}
		}
		if len(p.Alignments) == 0 {
			log.Printf("%s: no alignment files for region %s, skipping", ref, region)
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
