package methyl

// Dataset collects the Samples of one run in the order they were appended.
// It is built once and then frozen; consumers only read from it.
type Dataset struct {
	samples []*Sample
	frozen  bool
}

// Append adds s at the end of the dataset.
//
// REQUIRES: Freeze has not been called.
func (d *Dataset) Append(s *Sample) {
	if d.frozen {
		panic("methyl.Dataset: Append after Freeze")
	}
	d.samples = append(d.samples, s)
}

// Freeze marks the dataset read-only.
func (d *Dataset) Freeze() { d.frozen = true }

// Frozen reports whether Freeze has been called.
func (d *Dataset) Frozen() bool { return d.frozen }

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.samples) }

// Samples returns the samples in append order. The returned slice is a copy;
// the Samples themselves are immutable.
func (d *Dataset) Samples() []*Sample {
	s := make([]*Sample, len(d.samples))
	copy(s, d.samples)
	return s
}
