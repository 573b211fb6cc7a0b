package extract_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/epiallele/extract"
	"github.com/grailbio/epiallele/methyl"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const refData = ">Region1\nACGAACGAAACGAAAA\n"

func samLine(name string, pos int, seq string) string {
	return fmt.Sprintf("%s\t0\tRegion1\t%d\t60\t%dM\t*\t0\t0\t%s\t*\n", name, pos, len(seq), seq)
}

func writeFile(ctx context.Context, t *testing.T, path, data string) {
	out, err := file.Create(ctx, path)
	assert.NoError(t, err)
	_, err = out.Writer(ctx).Write([]byte(data))
	assert.NoError(t, err)
	assert.NoError(t, out.Close(ctx))
}

// setup writes a reference and two SAM files. Reference CpGs are at 1, 5, 10.
func setup(ctx context.Context, t *testing.T, dir string) (ref, a, b string) {
	ref = filepath.Join(dir, "ref_Region1.fa")
	writeFile(ctx, t, ref, refData)

	a = filepath.Join(dir, "a_Region1.sam")
	writeFile(ctx, t, a, "@HD\tVN:1.6\n"+
		samLine("r1", 1, "ACGAACGAAACGA")+ // 1,1,1
		samLine("r2", 1, "ATGAATGAAATGA")+ // 0,0,0
		samLine("r3", 4, "AACGAAACGA")+ // misses site 1
		"broken\tline\n"+
		samLine("r4", 1, "ATGAACGAAATGA")) // 0,1,0

	b = filepath.Join(dir, "b_Region1.sam")
	writeFile(ctx, t, b, samLine("r1", 1, "ATGAATGAAATGA")+
		samLine("r2", 1, "ATGAATGAAACGA"))
	return
}

func TestRun(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ref, a, b := setup(ctx, t, tmpdir)
	missing := filepath.Join(tmpdir, "missing_Region1.sam")

	for _, parallelism := range []int{0, 1, 3} {
		opts := extract.DefaultOpts
		opts.Parallelism = parallelism
		res, err := extract.Run(ctx, ref, []string{b, missing, a}, opts)
		assert.NoError(t, err)
		expect.EQ(t, res.Coordinates, methyl.Coordinates{1, 5, 10})
		assert.EQ(t, len(res.Outcomes), 3)
		expect.EQ(t, res.Outcomes[0].Path, b)
		expect.True(t, res.Outcomes[0].OK())
		expect.EQ(t, res.Outcomes[1].Path, missing)
		expect.False(t, res.Outcomes[1].OK())
		expect.True(t, errors.Is(errors.NotExist, res.Outcomes[1].Err), "err=%v", res.Outcomes[1].Err)
		expect.True(t, res.Outcomes[1].Sample == nil)
		expect.EQ(t, len(res.Failed()), 1)

		ds := res.Dataset
		expect.True(t, ds.Frozen())
		samples := ds.Samples()
		assert.EQ(t, len(samples), 2)
		expect.EQ(t, samples[0].Name(), "b_Region1")
		expect.EQ(t, samples[0].NumReads(), 2)
		expect.EQ(t, samples[1].Name(), "a_Region1")
		expect.EQ(t, samples[1].NumReads(), 3)
		expect.EQ(t, samples[1].SkippedLines(), 1)
		expect.EQ(t, samples[1].Patterns(), []methyl.Pattern{
			{methyl.Methylated, methyl.Methylated, methyl.Methylated},
			{methyl.Unmethylated, methyl.Unmethylated, methyl.Unmethylated},
			{methyl.Unmethylated, methyl.Methylated, methyl.Unmethylated},
		})
	}
}

func TestRunRetainOnlyMethylated(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ref, a, b := setup(ctx, t, tmpdir)

	all, err := extract.Run(ctx, ref, []string{a, b}, extract.DefaultOpts)
	assert.NoError(t, err)
	opts := extract.DefaultOpts
	opts.RetainOnlyMethylated = true
	retained, err := extract.Run(ctx, ref, []string{a, b}, opts)
	assert.NoError(t, err)

	for i, s := range retained.Dataset.Samples() {
		full := all.Dataset.Samples()[i]
		want := 0
		for _, p := range full.Patterns() {
			if p.Has(methyl.Methylated) {
				want++
			}
		}
		expect.EQ(t, s.NumReads(), want)
		expect.True(t, s.NumReads() <= full.NumReads())
	}
	expect.EQ(t, retained.Dataset.Samples()[0].NumReads(), 2)
	expect.EQ(t, retained.Dataset.Samples()[1].NumReads(), 1)
}

func TestRunDeterministic(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ref, a, b := setup(ctx, t, tmpdir)

	r1, err := extract.Run(ctx, ref, []string{a, b, a}, extract.DefaultOpts)
	assert.NoError(t, err)
	r2, err := extract.Run(ctx, ref, []string{a, b, a}, extract.DefaultOpts)
	assert.NoError(t, err)
	s1, s2 := r1.Dataset.Samples(), r2.Dataset.Samples()
	assert.EQ(t, len(s1), len(s2))
	for i := range s1 {
		expect.EQ(t, s1[i].Name(), s2[i].Name())
		expect.EQ(t, s1[i].Patterns(), s2[i].Patterns())
		expect.EQ(t, s1[i].Levels(), s2[i].Levels())
	}
}

func TestRunConfigErrors(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ref, a, _ := setup(ctx, t, tmpdir)

	opts := extract.DefaultOpts
	opts.Motif = ""
	_, err := extract.Run(ctx, ref, []string{a}, opts)
	expect.True(t, errors.Is(errors.Invalid, err), "err=%v", err)

	opts = extract.DefaultOpts
	opts.Parallelism = -1
	_, err = extract.Run(ctx, ref, []string{a}, opts)
	expect.True(t, errors.Is(errors.Invalid, err), "err=%v", err)

	_, err = extract.Run(ctx, ref, nil, extract.DefaultOpts)
	expect.True(t, errors.Is(errors.Invalid, err), "err=%v", err)

	_, err = extract.Run(ctx, filepath.Join(tmpdir, "nope.fa"), []string{a}, extract.DefaultOpts)
	expect.True(t, errors.Is(errors.NotExist, err), "err=%v", err)
}

func TestRegionOf(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"Galaxy2-[SNCA_Promoter_Region1.fasta].fasta", "Region1"},
		{"Galaxy2-[Region2].fasta", "Region2"},
		{"Galaxy303-[sgRNA3_Region12_Rep1].sam", "Region12"},
		{"/data/Region3/x_region4.sam", "region4"},
		{"sample.sam", ""},
	}
	for _, tt := range tests {
		expect.EQ(t, extract.RegionOf(tt.name), tt.want, "name=%s", tt.name)
	}
}

func TestFindPairs(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	for _, name := range []string{
		"Galaxy2-[SNCA_Promoter_Region1.fasta].fasta",
		"Galaxy2-[SNCA_Promoter_Region2.fasta].fasta",
		"Galaxy2-[SNCA_Promoter_Region3.fasta].fa",
		"unlabelled.fa",
		"Galaxy303-[sgRNA3_Region1_Rep2].sam",
		"Galaxy303-[sgRNA3_Region1_Rep1].sam",
		"Galaxy304-[sgRNA3_Region10_Rep1].sam",
		"Galaxy305-[sgRNA3_Region2_Rep1].bam",
		"notes.txt",
	} {
		writeFile(ctx, t, filepath.Join(tmpdir, name), "")
	}
	pairs, err := extract.FindPairs(ctx, tmpdir)
	assert.NoError(t, err)
	assert.EQ(t, len(pairs), 2)
	expect.EQ(t, pairs[0].Region, "Region1")
	expect.True(t, strings.HasSuffix(pairs[0].Reference, "Region1.fasta].fasta"))
	assert.EQ(t, len(pairs[0].Alignments), 2)
	expect.True(t, strings.HasSuffix(pairs[0].Alignments[0], "Region1_Rep1].sam"))
	expect.True(t, strings.HasSuffix(pairs[0].Alignments[1], "Region1_Rep2].sam"))
	expect.EQ(t, pairs[1].Region, "Region2")
	expect.EQ(t, len(pairs[1].Alignments), 1)
}

func TestLoadCoordinatesMultiRecord(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ref := filepath.Join(tmpdir, "ref.fa")
	// The site spanning the record boundary is found in the joined sequence.
	writeFile(ctx, t, ref, ">a first\nAC\n>b second\nGTCG\n")
	coords, err := extract.LoadCoordinates(ctx, ref, "cg")
	assert.NoError(t, err)
	expect.EQ(t, coords, methyl.Coordinates{1, 4})

	_, err = extract.LoadCoordinates(ctx, ref, "")
	expect.True(t, errors.Is(errors.Invalid, err), "err=%v", err)
}
