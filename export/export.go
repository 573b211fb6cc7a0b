// Package export writes a methyl.Dataset to files, one file per sample.
package export

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/epiallele/methyl"
	"github.com/klauspost/compress/gzip"
)

// Writer saves a dataset.
type Writer interface {
	Write(ctx context.Context, ds *methyl.Dataset) error
}

// Format selects a Writer implementation.
type Format int

const (
	// Unknown is a sentinel.
	Unknown Format = iota
	// LevelsCSV writes <sample>.csv with one methylation level per line.
	LevelsCSV
	// PatternsTSV writes <sample>.patterns.tsv with one row per read.
	PatternsTSV
)

// ParseFormat parses "csv" or "tsv". On error, it returns Unknown.
func ParseFormat(name string) Format {
	switch strings.ToLower(name) {
	case "csv":
		return LevelsCSV
	case "tsv":
		return PatternsTSV
	}
	return Unknown
}

// Opts configures New.
type Opts struct {
	// Dir is the output directory. "" means the current directory.
	Dir string
	// Gzip compresses the output and appends ".gz" to the file names.
	Gzip bool
}

// New returns the Writer for format.
func New(format Format, opts Opts) (Writer, error) {
	switch format {
	case LevelsCSV:
		return &levelsWriter{opts}, nil
	case PatternsTSV:
		return &patternsWriter{opts}, nil
	}
	return nil, errors.E(errors.Invalid, "export: unknown format")
}

// path returns the file a sample is written to.
func (o Opts) path(sample, suffix string) string {
	name := sample + suffix
	if o.Gzip {
		name += ".gz"
	}
	if o.Dir == "" {
		return name
	}
	return file.Join(o.Dir, name)
}

func formatLevel(l methyl.Level) string {
	return strconv.FormatFloat(l.Float64(), 'g', -1, 64)
}

// writeAll calls write for every sample, each into its own file. All samples
// are attempted; the first error is returned.
func writeAll(ctx context.Context, ds *methyl.Dataset, opts Opts, suffix string,
	write func(w *tsv.Writer, s *methyl.Sample) error) error {
	var e errors.Once
	for _, s := range ds.Samples() {
		path := opts.path(s.Name(), suffix)
		if err := writeFile(ctx, path, opts.Gzip, func(w io.Writer) error {
			tw := tsv.NewWriter(w)
			if err := write(tw, s); err != nil {
				return err
			}
			return tw.Flush()
		}); err != nil {
			log.Error.Printf("%s: %v", path, err)
			e.Set(errors.E(err, "export", path))
			continue
		}
		log.Printf("wrote %s", path)
	}
	return e.Err()
}

func writeFile(ctx context.Context, path string, compress bool, write func(io.Writer) error) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	if !compress {
		return write(out.Writer(ctx))
	}
	gz := gzip.NewWriter(out.Writer(ctx))
	if err = write(gz); err != nil {
		return err
	}
	return gz.Close()
}

type levelsWriter struct{ opts Opts }

// Write writes each sample's levels, one per line, in read order.
func (lw *levelsWriter) Write(ctx context.Context, ds *methyl.Dataset) error {
	return writeAll(ctx, ds, lw.opts, ".csv", func(w *tsv.Writer, s *methyl.Sample) error {
		for _, l := range s.Levels() {
			w.WriteString(formatLevel(l))
			if err := w.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}

type patternsWriter struct{ opts Opts }

// Write writes a header line and then, for each read, its index, methylated
// site count, site count, level and flag string.
func (pw *patternsWriter) Write(ctx context.Context, ds *methyl.Dataset) error {
	return writeAll(ctx, ds, pw.opts, ".patterns.tsv", func(w *tsv.Writer, s *methyl.Sample) error {
		w.WriteString("READ\tMETHYLATED\tSITES\tLEVEL\tPATTERN")
		if err := w.EndLine(); err != nil {
			return err
		}
		for i, p := range s.Patterns() {
			l := s.Level(i)
			w.WriteInt64(int64(i))
			w.WriteInt64(int64(l.Methylated))
			w.WriteInt64(int64(l.Sites))
			w.WriteString(formatLevel(l))
			w.WriteString(p.String())
			if err := w.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}
