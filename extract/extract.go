// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package extract runs methylation extraction for one reference and a set of
// alignment files, producing a methyl.Dataset.
package extract

import (
	"context"
	"fmt"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/epiallele/encoding/alignment"
	"github.com/grailbio/epiallele/encoding/fasta"
	"github.com/grailbio/epiallele/methyl"
)

// Opts configures Run.
type Opts struct {
	// Motif is the site motif located in the reference.
	Motif string
	// RetainOnlyMethylated keeps only reads with at least one methylated site.
	RetainOnlyMethylated bool
	// FileType forces the alignment encoding of every input. Unknown means
	// it is guessed from each file name.
	FileType alignment.FileType
	// Parallelism is the maximum number of alignment files processed at once;
	// 0 = runtime.NumCPU().
	Parallelism int
}

// DefaultOpts is the default configuration.
var DefaultOpts = Opts{
	Motif:                methyl.DefaultMotif,
	RetainOnlyMethylated: false,
	FileType:             alignment.Unknown,
	Parallelism:          0,
}

// Validate checks opts for configuration errors. All errors are of kind
// errors.Invalid.
func (o Opts) Validate() error {
	if o.Motif == "" {
		return errors.E(errors.Invalid, "extract: motif must not be empty")
	}
	if o.Parallelism < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("extract: negative parallelism %d", o.Parallelism))
	}
	return nil
}

// Outcome is the result of processing one alignment file. Exactly one of
// Sample and Err is set.
type Outcome struct {
	Path   string
	Sample *methyl.Sample
	Err    error
}

// OK reports whether the file was processed successfully.
func (o Outcome) OK() bool { return o.Err == nil }

// Result holds the per-file outcomes of a run, in input order, and the
// dataset built from the successful ones.
type Result struct {
	// Coordinates are the motif sites located in the reference.
	Coordinates methyl.Coordinates
	// Dataset holds one Sample per successful outcome, in input order. It is
	// frozen.
	Dataset *methyl.Dataset
	// Outcomes has one entry per input alignment file, in input order.
	Outcomes []Outcome
}

// Failed returns the outcomes with an error.
func (r *Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// LoadCoordinates reads the reference at path and locates motif in it.
func LoadCoordinates(ctx context.Context, path, motif string) (methyl.Coordinates, error) {
	if motif == "" {
		return nil, errors.E(errors.Invalid, "extract: motif must not be empty")
	}
	ref, err := fasta.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	coords, err := methyl.Locate(ref.Seq, motif)
	if err != nil {
		return nil, err
	}
	if len(ref.Names) > 1 {
		log.Printf("%s: %d records %v are searched as one sequence", path, len(ref.Names), ref.Names)
	}
	log.Printf("%s: %d bases, %d %s sites", path, ref.Len(), len(coords), motif)
	return coords, nil
}

// AggregateFile builds the Sample for the alignment file at path, read as
// typ (see alignment.OpenType).
func AggregateFile(ctx context.Context, coords methyl.Coordinates, path string, typ alignment.FileType, opts methyl.AggregateOpts) (sample *methyl.Sample, err error) {
	it, err := alignment.OpenType(ctx, path, typ)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := it.Close(ctx); e != nil && err == nil {
			sample, err = nil, e
		}
	}()
	return methyl.Aggregate(alignment.SampleName(path), coords, it, opts)
}

// Run locates the motif in the reference at refPath and aggregates each
// alignment file against it. Configuration errors and reference errors are
// returned before any alignment file is opened. Failures of individual
// alignment files are reported in Result.Outcomes and do not affect the
// others.
func Run(ctx context.Context, refPath string, alignPaths []string, opts Opts) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(alignPaths) == 0 {
		return nil, errors.E(errors.Invalid, "extract: no alignment files")
	}
	coords, err := LoadCoordinates(ctx, refPath, opts.Motif)
	if err != nil {
		return nil, err
	}
	parallelism := opts.Parallelism
	if parallelism == 0 {
		parallelism = runtime.NumCPU()
	}
	aggOpts := methyl.AggregateOpts{RetainOnlyMethylated: opts.RetainOnlyMethylated}
	outcomes := make([]Outcome, len(alignPaths))
	_ = traverse.Limit(parallelism).Each(len(alignPaths), func(i int) error {
		path := alignPaths[i]
		sample, err := AggregateFile(ctx, coords, path, opts.FileType, aggOpts)
		outcomes[i] = Outcome{Path: path, Sample: sample, Err: err}
		if err != nil {
			log.Error.Printf("%s: %v", path, err)
			return nil
		}
		if n := sample.SkippedLines(); n > 0 {
			log.Printf("%s: skipped %d malformed alignment lines", path, n)
		}
		log.Debug.Printf("%s: %d reads retained", path, sample.NumReads())
		return nil
	})

	ds := &methyl.Dataset{}
	for _, o := range outcomes {
		if o.OK() {
			ds.Append(o.Sample)
		}
	}
	ds.Freeze()
	return &Result{Coordinates: coords, Dataset: ds, Outcomes: outcomes}, nil
}
