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

/*
Package methyl infers per-read CpG methylation from bisulfite-sequencing
alignments.

Bisulfite treatment converts unmethylated cytosines to uracil (read as T),
while methylated cytosines are protected and still read as C. Given the
offsets of CpG sites in the reference (see Locate), each aligned read is
translated into a Pattern: one Flag per site, Methylated when the read shows
"CG" at the site, Unmethylated when it shows "TG", and Missing otherwise,
including when the read does not reach the site.

The positional correspondence between a Pattern and the Coordinates it was
extracted against is what makes reads and samples comparable site by site:
Pattern[i] always describes Coordinates[i].

Reads whose pattern contains a Missing flag have no defined Level and are
dropped during aggregation. The per-file result is an immutable Sample, and
the Samples of one run are collected in a Dataset.

Typical usage:

  coords, err := methyl.Locate(refSeq, methyl.DefaultMotif)
  ...
  sample, err := methyl.Aggregate("sample1", coords, iter, methyl.AggregateOpts{})
  ...
  ds := &methyl.Dataset{}
  ds.Append(sample)
  ds.Freeze()
*/
package methyl
