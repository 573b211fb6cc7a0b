package visualize

import (
	"context"
	"image/color"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/epiallele/methyl"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// NumBins is the number of equal-width level bins spanning [0,1].
const NumBins = 10

// HistogramMode selects how samples are laid out in histograms.
type HistogramMode int

const (
	// UnknownMode is a sentinel.
	UnknownMode HistogramMode = iota
	// Single draws one histogram per sample.
	Single
	// Multiple overlays all samples in one histogram.
	Multiple
)

// ParseHistogramMode parses "single" or "multiple". "" means Single. On error,
// it returns UnknownMode.
func ParseHistogramMode(name string) HistogramMode {
	switch strings.ToLower(name) {
	case "", "single":
		return Single
	case "multiple":
		return Multiple
	}
	return UnknownMode
}

// NewHistogram returns the histogram Renderer for mode.
func NewHistogram(mode HistogramMode, opts Opts) (Renderer, error) {
	switch mode {
	case Single:
		return &SingleHistogram{Opts: opts}, nil
	case Multiple:
		return &OverlayHistogram{Opts: opts}, nil
	}
	return nil, errors.E(errors.Invalid, "visualize: unknown histogram mode")
}

// LevelBins bins levels into NumBins equal-width bins over [0,1]. Each bin's
// weight is the fraction of reads that fall in it; a level of exactly 1 goes
// to the last bin. With no levels, all weights are zero.
func LevelBins(levels []methyl.Level) []plotter.HistogramBin {
	bins := make([]plotter.HistogramBin, NumBins)
	for i := range bins {
		bins[i].Min = float64(i) / NumBins
		bins[i].Max = float64(i+1) / NumBins
	}
	if len(levels) == 0 {
		return bins
	}
	w := 1 / float64(len(levels))
	for _, l := range levels {
		i := l.Methylated * NumBins / l.Sites
		if i >= NumBins {
			i = NumBins - 1
		}
		bins[i].Weight += w
	}
	return bins
}

func newHistogram(levels []methyl.Level, fill color.Color) *plotter.Histogram {
	h := &plotter.Histogram{
		Bins:      LevelBins(levels),
		Width:     1.0 / NumBins,
		FillColor: fill,
	}
	h.LineStyle = plotter.DefaultLineStyle
	return h
}

func newLevelPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Methylation level"
	p.Y.Label.Text = "Reads fraction"
	return p
}

func fixLevelAxis(p *plot.Plot) {
	p.X.Min = -0.05
	p.X.Max = 1.05
	p.Y.Min = 0
}

// translucent returns c with its alpha set to a.
func translucent(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}

// SingleHistogram writes <sample>_histogram.<format> for every sample.
type SingleHistogram struct {
	Opts
}

// Render implements Renderer. Samples without reads are skipped.
func (r *SingleHistogram) Render(ctx context.Context, ds *methyl.Dataset) error {
	var e errors.Once
	w, h := r.size(6*vg.Inch, 4*vg.Inch)
	for _, s := range ds.Samples() {
		if s.NumReads() == 0 {
			log.Printf("%s: no reads, skipping histogram", s.Name())
			continue
		}
		p := newLevelPlot("Distribution of methylation levels within the sample")
		p.Add(newHistogram(s.Levels(), color.Gray{Y: 0xcc}))
		fixLevelAxis(p)
		e.Set(save(ctx, p, w, h, r.format(), r.path(s.Name()+"_histogram")))
	}
	return e.Err()
}

// OverlayHistogram writes one histogram with every sample overlaid, named
// <Name>.<format>.
type OverlayHistogram struct {
	Opts
	// Name is the output file stem; "" means "overlay_histogram".
	Name string
}

// Render implements Renderer.
func (r *OverlayHistogram) Render(ctx context.Context, ds *methyl.Dataset) error {
	name := r.Name
	if name == "" {
		name = "overlay_histogram"
	}
	p := newLevelPlot("Distribution of methylation levels in samples")
	for i, s := range ds.Samples() {
		hist := newHistogram(s.Levels(), translucent(plotutil.Color(i), 0x80))
		p.Add(hist)
		p.Legend.Add(s.Name(), hist)
	}
	fixLevelAxis(p)
	w, h := r.size(6*vg.Inch, 4*vg.Inch)
	return save(ctx, p, w, h, r.format(), r.path(name))
}
