package cmd

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/epiallele/encoding/alignment"
	"github.com/grailbio/epiallele/export"
	"github.com/grailbio/epiallele/extract"
	"github.com/grailbio/epiallele/visualize"
)

// processOpts holds the flags shared by the extract and batch subcommands.
type processOpts struct {
	extract.Opts
	outDir      string
	mode        string
	reads2plot  int
	seed        int64
	formats     string
	gzip        bool
	imageFormat string
	plots       bool
	fileType    string
}

func (o *processOpts) register(fs *flag.FlagSet) {
	o.Opts = extract.DefaultOpts
	fs.StringVar(&o.Motif, "motif", extract.DefaultOpts.Motif, "Site motif located in the reference")
	fs.BoolVar(&o.RetainOnlyMethylated, "retain-methylated", extract.DefaultOpts.RetainOnlyMethylated,
		"Keep only reads with at least one methylated site")
	fs.IntVar(&o.Parallelism, "parallelism", extract.DefaultOpts.Parallelism,
		"Maximum number of alignment files processed at once; 0 = runtime.NumCPU()")
	fs.StringVar(&o.outDir, "out", ".", "Output directory")
	fs.StringVar(&o.mode, "mode", "single", `Histogram mode: "single" draws one histogram per sample, "multiple" overlays all samples`)
	fs.IntVar(&o.reads2plot, "reads2plot", visualize.DefaultHeatmapReads, "Maximum number of reads drawn in each heatmap")
	fs.Int64Var(&o.seed, "seed", 1, "Seed for heatmap read subsampling")
	fs.StringVar(&o.formats, "format", "csv", `Comma-separated table formats to write: "csv" (levels) and "tsv" (patterns)`)
	fs.BoolVar(&o.gzip, "gzip", false, "Gzip the table outputs")
	fs.StringVar(&o.imageFormat, "image-format", "png", "Image format for plots: png, svg, pdf, ...")
	fs.BoolVar(&o.plots, "plots", true, "Draw histograms and heatmaps")
	fs.StringVar(&o.fileType, "type", "", `Alignment encoding, "sam" or "bam". By default it is guessed from each file name`)
}

// extractOpts returns the extraction options with the -type override
// applied.
func (o *processOpts) extractOpts() (extract.Opts, error) {
	opts := o.Opts
	if o.fileType != "" {
		if opts.FileType = alignment.ParseFileType(o.fileType); opts.FileType == alignment.Unknown {
			return opts, errors.E(errors.Invalid, fmt.Sprintf("unknown alignment type %q", o.fileType))
		}
	}
	return opts, nil
}

// writers returns the table writers named by o.formats, writing into dir.
func (o *processOpts) writers(dir string) ([]export.Writer, error) {
	var ws []export.Writer
	for _, name := range strings.Split(o.formats, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		w, err := export.New(export.ParseFormat(name), export.Opts{Dir: dir, Gzip: o.gzip})
		if err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("unknown table format %q", name), err)
		}
		ws = append(ws, w)
	}
	return ws, nil
}

// renderers returns the plot renderers writing into dir. prefix, if set, is
// prepended to the overlay histogram's name.
func (o *processOpts) renderers(dir, prefix string) ([]visualize.Renderer, error) {
	if !o.plots {
		return nil, nil
	}
	mode := visualize.ParseHistogramMode(o.mode)
	vopts := visualize.Opts{Dir: dir, Format: o.imageFormat}
	var hist visualize.Renderer
	switch mode {
	case visualize.Multiple:
		name := "overlay_histogram"
		if prefix != "" {
			name = prefix + "_" + name
		}
		hist = &visualize.OverlayHistogram{Opts: vopts, Name: name}
	default:
		var err error
		if hist, err = visualize.NewHistogram(mode, vopts); err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("unknown histogram mode %q", o.mode), err)
		}
	}
	heatmap := &visualize.Heatmap{
		Opts:  vopts,
		Reads: o.reads2plot,
		Rand:  rand.New(rand.NewSource(o.seed)),
	}
	return []visualize.Renderer{hist, heatmap}, nil
}

// process extracts patterns for one reference and its alignment files and
// writes every table and plot under dir. Configuration and reference errors
// abort before any output is written. Failed alignment files are logged and
// reported in the result; the returned error only covers output failures.
func process(ctx context.Context, refPath string, alignPaths []string, dir, prefix string, o processOpts) (*extract.Result, error) {
	extractOpts, err := o.extractOpts()
	if err != nil {
		return nil, err
	}
	writers, err := o.writers(dir)
	if err != nil {
		return nil, err
	}
	renderers, err := o.renderers(dir, prefix)
	if err != nil {
		return nil, err
	}
	res, err := extract.Run(ctx, refPath, alignPaths, extractOpts)
	if err != nil {
		return nil, err
	}
	for _, f := range res.Failed() {
		log.Error.Printf("%s: %v", f.Path, f.Err)
	}
	if res.Dataset.Len() == 0 {
		return res, nil
	}
	var e errors.Once
	for _, w := range writers {
		e.Set(w.Write(ctx, res.Dataset))
	}
	for _, r := range renderers {
		e.Set(r.Render(ctx, res.Dataset))
	}
	return res, e.Err()
}
