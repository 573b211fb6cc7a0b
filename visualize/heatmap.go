package visualize

import (
	"context"
	"image/color"
	"math/rand"
	"sort"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/epiallele/methyl"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultHeatmapReads is the default number of reads drawn per heatmap.
const DefaultHeatmapReads = 10000

// SelectReads picks at most n of the sample's patterns uniformly without
// replacement, then orders them by number of methylated sites, most
// methylated first. Ties keep their sampled order. If the sample has at most n
// reads, all of them are used and rng is not consulted.
func SelectReads(s *methyl.Sample, n int, rng *rand.Rand) []methyl.Pattern {
	all := s.Patterns()
	selected := all
	if n < len(all) {
		selected = make([]methyl.Pattern, n)
		for i, j := range rng.Perm(len(all))[:n] {
			selected[i] = all[j]
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Count(methyl.Methylated) > selected[j].Count(methyl.Methylated)
	})
	return selected
}

// patternGrid lays patterns out as a plotter.GridXYZ: column c is site c,
// row r is read len-1-r so that the first read is drawn on top.
type patternGrid []methyl.Pattern

func (g patternGrid) Dims() (c, r int) { return len(g[0]), len(g) }

func (g patternGrid) Z(c, r int) float64 {
	if g[len(g)-1-r][c] == methyl.Methylated {
		return 1
	}
	return 0
}

func (g patternGrid) X(c int) float64 { return float64(c + 1) }
func (g patternGrid) Y(r int) float64 { return float64(r) }

// copper is a two-color palette: dark for unmethylated, copper for
// methylated.
type copper struct{}

func (copper) Colors() []color.Color {
	return []color.Color{
		color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff},
		color.RGBA{R: 0xff, G: 0xc7, B: 0x7f, A: 0xff},
	}
}

// Heatmap writes <sample>_heatmap.<format> for every sample: one row per
// selected read, one column per site.
type Heatmap struct {
	Opts
	// Reads is the maximum number of reads drawn; 0 means DefaultHeatmapReads.
	Reads int
	// Rand drives read subsampling. Render fails if it is nil.
	Rand *rand.Rand
}

// Render implements Renderer. Samples without reads or sites are skipped.
func (r *Heatmap) Render(ctx context.Context, ds *methyl.Dataset) error {
	if r.Rand == nil {
		return errors.E(errors.Invalid, "visualize: heatmap needs a random source")
	}
	n := r.Reads
	if n <= 0 {
		n = DefaultHeatmapReads
	}
	w, h := r.size(9*vg.Inch, 6*vg.Inch)
	var e errors.Once
	for _, s := range ds.Samples() {
		if s.NumReads() == 0 || s.NumSites() == 0 {
			log.Printf("%s: nothing to draw, skipping heatmap", s.Name())
			continue
		}
		grid := patternGrid(SelectReads(s, n, r.Rand))
		hm := plotter.NewHeatMap(grid, copper{})
		hm.Min, hm.Max = 0, 1

		p := plot.New()
		p.X.Label.Text = "CpG site"
		p.Y.Label.Text = "Reads"
		p.Add(hm)
		ticks := make([]plot.Tick, s.NumSites())
		for i := range ticks {
			ticks[i] = plot.Tick{Value: float64(i + 1), Label: strconv.Itoa(i + 1)}
		}
		p.X.Tick.Marker = plot.ConstantTicks(ticks)
		p.Y.Tick.Marker = plot.ConstantTicks(nil)
		e.Set(save(ctx, p, w, h, r.format(), r.path(s.Name()+"_heatmap")))
	}
	return e.Err()
}
