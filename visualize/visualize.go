// Package visualize renders a methyl.Dataset as level histograms and
// per-read methylation heatmaps using gonum.org/v1/plot.
package visualize

import (
	"context"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/epiallele/methyl"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Renderer draws a dataset.
type Renderer interface {
	Render(ctx context.Context, ds *methyl.Dataset) error
}

// Opts are the options shared by all renderers.
type Opts struct {
	// Dir is the output directory. "" means the current directory.
	Dir string
	// Format is the image format: "png", "svg", "pdf", ... "" means "png".
	Format string
	// Width and Height are the image size. Zero values use 6x4 inches for
	// histograms and 9x6 inches for heatmaps.
	Width, Height vg.Length
}

func (o Opts) format() string {
	if o.Format == "" {
		return "png"
	}
	return strings.ToLower(o.Format)
}

func (o Opts) path(stem string) string {
	name := stem + "." + o.format()
	if o.Dir == "" {
		return name
	}
	return file.Join(o.Dir, name)
}

func (o Opts) size(w, h vg.Length) (vg.Length, vg.Length) {
	if o.Width > 0 {
		w = o.Width
	}
	if o.Height > 0 {
		h = o.Height
	}
	return w, h
}

// save encodes p and writes it to path.
func save(ctx context.Context, p *plot.Plot, w, h vg.Length, format, path string) (err error) {
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return errors.E(errors.Invalid, err, path)
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	_, err = wt.WriteTo(out.Writer(ctx))
	if err == nil {
		log.Printf("wrote %s", path)
	}
	return err
}
