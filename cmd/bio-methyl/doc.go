/*Command bio-methyl extracts per-read CpG methylation patterns from bisulfite
  sequencing alignments and writes methylation levels, pattern tables,
  histograms and heatmaps.

  The extract subcommand processes one reference against a list of SAM/BAM
  files:

    bio-methyl extract -fasta Region1.fasta -out results a_Region1.sam b_Region1.bam

  The batch subcommand scans a directory, pairs every FASTA file with the
  alignment files carrying the same RegionN token in their names, and runs
  extract for each pair, writing into <out>/<RegionN>:

    bio-methyl batch -out results data/

  Both accept -motif, -retain-methylated, -parallelism, -mode single|multiple,
  -reads2plot, -seed, -format csv|tsv, -gzip, -image-format and
  -type sam|bam.
*/
package main
