package export_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/epiallele/export"
	"github.com/grailbio/epiallele/methyl"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func testDataset() *methyl.Dataset {
	coords := methyl.Coordinates{0, 2, 4}
	ds := &methyl.Dataset{}
	for _, s := range []struct {
		name  string
		reads []string
	}{
		{"s1", []string{"CGCGCG", "TGTGCG", "TGTGTG", "CGNN"}},
		{"s2", []string{"CGTGTG"}},
	} {
		b := methyl.NewSampleBuilder(s.name, coords, methyl.AggregateOpts{})
		for _, seq := range s.reads {
			b.Add(methyl.Read{Seq: []byte(seq)})
		}
		ds.Append(b.Build())
	}
	ds.Freeze()
	return ds
}

func readFile(t *testing.T, path string) string {
	data, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	return string(data)
}

func TestLevelsCSV(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	w, err := export.New(export.ParseFormat("csv"), export.Opts{Dir: tmpdir})
	assert.NoError(t, err)
	assert.NoError(t, w.Write(ctx, testDataset()))
	expect.EQ(t, readFile(t, filepath.Join(tmpdir, "s1.csv")), "1\n0.3333333333333333\n0\n")
	expect.EQ(t, readFile(t, filepath.Join(tmpdir, "s2.csv")), "0.3333333333333333\n")
}

func TestPatternsTSV(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	w, err := export.New(export.PatternsTSV, export.Opts{Dir: tmpdir})
	assert.NoError(t, err)
	assert.NoError(t, w.Write(ctx, testDataset()))
	expect.EQ(t, readFile(t, filepath.Join(tmpdir, "s1.patterns.tsv")),
		"READ\tMETHYLATED\tSITES\tLEVEL\tPATTERN\n"+
			"0\t3\t3\t1\t111\n"+
			"1\t1\t3\t0.3333333333333333\t001\n"+
			"2\t0\t3\t0\t000\n")
}

func TestGzip(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	w, err := export.New(export.LevelsCSV, export.Opts{Dir: tmpdir, Gzip: true})
	assert.NoError(t, err)
	assert.NoError(t, w.Write(ctx, testDataset()))

	f, err := os.Open(filepath.Join(tmpdir, "s2.csv.gz"))
	assert.NoError(t, err)
	defer f.Close()
	r, err := gzip.NewReader(f)
	assert.NoError(t, err)
	data, err := ioutil.ReadAll(r)
	assert.NoError(t, err)
	expect.EQ(t, string(data), "0.3333333333333333\n")
}

func TestUnknownFormat(t *testing.T) {
	expect.EQ(t, export.ParseFormat("xlsx"), export.Unknown)
	_, err := export.New(export.Unknown, export.Opts{})
	expect.True(t, errors.Is(errors.Invalid, err))
}

func TestWriteError(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	// A regular file where the output directory should be.
	blocker := filepath.Join(tmpdir, "blocker")
	assert.NoError(t, ioutil.WriteFile(blocker, nil, 0600))
	w, err := export.New(export.LevelsCSV, export.Opts{Dir: filepath.Join(blocker, "out")})
	assert.NoError(t, err)
	expect.True(t, w.Write(ctx, testDataset()) != nil)
}
