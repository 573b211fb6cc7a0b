package methyl

// ReadIterator yields the reads of one alignment file. It is implemented by
// the iterators in encoding/alignment.
type ReadIterator interface {
	// Scan advances to the next read. It returns false at the end of input or
	// on error.
	Scan() bool
	// Read returns the current read. Valid only after Scan returned true, and
	// only until the next call to Scan.
	Read() Read
	// Skipped returns the number of input records dropped so far because they
	// could not be parsed.
	Skipped() int
	// Err returns the error that stopped the iteration, if any.
	Err() error
}

// AggregateOpts configures Aggregate.
type AggregateOpts struct {
	// RetainOnlyMethylated drops reads that have no Methylated site. It is
	// applied after reads with an undefined level have been dropped.
	RetainOnlyMethylated bool
}

// Sample is the immutable per-file result of aggregation. All accessors
// return copies.
type Sample struct {
	name     string
	patterns []Pattern
	levels   []Level
	skipped  int
}

// Name identifies the alignment input the sample was built from.
func (s *Sample) Name() string { return s.name }

// NumReads is the number of reads that survived filtering.
func (s *Sample) NumReads() int { return len(s.patterns) }

// NumSites is the number of sites in each pattern, or 0 if the sample has
// no reads.
func (s *Sample) NumSites() int {
	if len(s.patterns) == 0 {
		return 0
	}
	return len(s.patterns[0])
}

// SkippedLines is the number of alignment records that were dropped because
// they could not be parsed.
func (s *Sample) SkippedLines() int { return s.skipped }

// Pattern returns a copy of the i'th read's pattern.
func (s *Sample) Pattern(i int) Pattern { return s.patterns[i].Clone() }

// Patterns returns copies of all patterns, in read order.
func (s *Sample) Patterns() []Pattern {
	ps := make([]Pattern, len(s.patterns))
	for i, p := range s.patterns {
		ps[i] = p.Clone()
	}
	return ps
}

// Level returns the i'th read's level. It is always defined.
func (s *Sample) Level(i int) Level { return s.levels[i] }

// Levels returns the levels of all reads, in read order.
func (s *Sample) Levels() []Level {
	ls := make([]Level, len(s.levels))
	copy(ls, s.levels)
	return ls
}

// SampleBuilder accumulates reads into a Sample. It is not thread safe.
type SampleBuilder struct {
	name     string
	coords   Coordinates
	opts     AggregateOpts
	patterns []Pattern
	levels   []Level
	skipped  int
	built    bool
}

// NewSampleBuilder creates a builder that calls reads against coords.
func NewSampleBuilder(name string, coords Coordinates, opts AggregateOpts) *SampleBuilder {
	return &SampleBuilder{name: name, coords: coords, opts: opts}
}

// Add calls r and keeps it if its level is defined and, with
// RetainOnlyMethylated, it has at least one methylated site. It reports
// whether the read was kept.
//
// REQUIRES: Build has not been called.
func (b *SampleBuilder) Add(r Read) bool {
	if b.built {
		panic("methyl.SampleBuilder: Add after Build")
	}
	p := ExtractPattern(b.coords, r)
	level, ok := p.Level()
	if !ok {
		return false
	}
	if b.opts.RetainOnlyMethylated && level.Methylated == 0 {
		return false
	}
	b.patterns = append(b.patterns, p)
	b.levels = append(b.levels, level)
	return true
}

// AddSkipped records n unparseable input records.
func (b *SampleBuilder) AddSkipped(n int) { b.skipped += n }

// Build returns the Sample. The builder must not be used afterwards.
func (b *SampleBuilder) Build() *Sample {
	b.built = true
	return &Sample{
		name:     b.name,
		patterns: b.patterns,
		levels:   b.levels,
		skipped:  b.skipped,
	}
}

// Aggregate consumes iter and builds the Sample for one alignment file. If the
// iterator fails, no Sample is returned.
func Aggregate(name string, coords Coordinates, iter ReadIterator, opts AggregateOpts) (*Sample, error) {
	b := NewSampleBuilder(name, coords, opts)
	for iter.Scan() {
		b.Add(iter.Read())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	b.AddSkipped(iter.Skipped())
	return b.Build(), nil
}
