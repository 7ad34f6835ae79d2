package kbperm

import "sort"

// Measurement holds one metric's scoring result on one key matrix: an
// optional detail list (present only when detail was requested) and
// the raw/effort-weighted sums over that metric's fingering subset.
type Measurement[K any] struct {
	Details *[]Score[K]
	Sum     uint64
	SumEW   uint64
}

// RetainNonZeroDetails drops detail rows whose raw and effort-weighted
// values are both zero.
func (m *Measurement[K]) RetainNonZeroDetails() {
	if m.Details == nil {
		return
	}
	out := (*m.Details)[:0]
	for _, s := range *m.Details {
		if !s.IsZero() {
			out = append(out, s)
		}
	}
	*m.Details = out
}

// SortDetails orders the detail list descending by the active weight's value.
func (m *Measurement[K]) SortDetails(weight Weight) {
	if m.Details == nil {
		return
	}
	d := *m.Details
	sort.SliceStable(d, func(i, j int) bool {
		if weight == Raw {
			return d[i].Value > d[j].Value
		}
		return d[i].ValueEW > d[j].ValueEW
	})
}

// SumByWeight returns the sum appropriate to the active weight.
func (m Measurement[K]) SumByWeight(weight Weight) uint64 {
	if weight == Raw {
		return m.Sum
	}
	return m.SumEW
}
