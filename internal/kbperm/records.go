package kbperm

import (
	"fmt"
	"sort"
)

// Record is a fully measured candidate: its key matrix, a Measurement
// for every metric of every arity, and the global sums across *all*
// fingerings of each arity (used as the filter-expression percentage
// denominator).
type Record struct {
	Matrix Matrix

	Unigrams map[UnigramMetric]Measurement[UnigramKey]
	Bigrams  map[BigramMetric]Measurement[BigramKey]
	Trigrams map[TrigramMetric]Measurement[TrigramKey]

	TotalUnigramSum, TotalUnigramSumEW uint64
	TotalBigramSum, TotalBigramSumEW   uint64
	TotalTrigramSum, TotalTrigramSumEW uint64
}

// DetailRequest selects which metrics should retain per-fingering detail.
type DetailRequest struct {
	Unigrams map[UnigramMetric]bool
	Bigrams  map[BigramMetric]bool
	Trigrams map[TrigramMetric]bool
}

// BuildRecord scores matrix against every metric of every arity,
// producing a fully measured Record. Metrics named in detail are
// scored in detailed mode; all others use the cheaper summary mode.
func BuildRecord(matrix Matrix, uf *FingeringSet[UnigramFingering, UnigramMetric], bf *FingeringSet[BigramFingering, BigramMetric], tf *FingeringSet[TrigramFingering, TrigramMetric], ut UnigramTable, bt BigramTable, tt TrigramTable, detail DetailRequest) *Record {
	r := &Record{
		Matrix:   matrix,
		Unigrams: make(map[UnigramMetric]Measurement[UnigramKey], len(AllUnigramMetrics)),
		Bigrams:  make(map[BigramMetric]Measurement[BigramKey], len(AllBigramMetrics)),
		Trigrams: make(map[TrigramMetric]Measurement[TrigramKey], len(AllTrigramMetrics)),
	}

	r.TotalUnigramSum, r.TotalUnigramSumEW = ScoreUnigramsSummary(uf.All, matrix, ut)
	r.TotalBigramSum, r.TotalBigramSumEW = ScoreBigramsSummary(bf.All, matrix, bt)
	r.TotalTrigramSum, r.TotalTrigramSumEW = ScoreTrigramsSummary(tf.All, matrix, tt)

	for _, m := range AllUnigramMetrics {
		fs := uf.ByMetric(m)
		if detail.Unigrams[m] {
			sum, sumEW, details := ScoreUnigramsDetailed(fs, matrix, ut)
			r.Unigrams[m] = Measurement[UnigramKey]{Details: &details, Sum: sum, SumEW: sumEW}
		} else {
			sum, sumEW := ScoreUnigramsSummary(fs, matrix, ut)
			r.Unigrams[m] = Measurement[UnigramKey]{Sum: sum, SumEW: sumEW}
		}
	}
	for _, m := range AllBigramMetrics {
		fs := bf.ByMetric(m)
		if detail.Bigrams[m] {
			sum, sumEW, details := ScoreBigramsDetailed(fs, matrix, bt)
			r.Bigrams[m] = Measurement[BigramKey]{Details: &details, Sum: sum, SumEW: sumEW}
		} else {
			sum, sumEW := ScoreBigramsSummary(fs, matrix, bt)
			r.Bigrams[m] = Measurement[BigramKey]{Sum: sum, SumEW: sumEW}
		}
	}
	for _, m := range AllTrigramMetrics {
		fs := tf.ByMetric(m)
		if detail.Trigrams[m] {
			sum, sumEW, details := ScoreTrigramsDetailed(fs, matrix, tt)
			r.Trigrams[m] = Measurement[TrigramKey]{Details: &details, Sum: sum, SumEW: sumEW}
		} else {
			sum, sumEW := ScoreTrigramsSummary(fs, matrix, tt)
			r.Trigrams[m] = Measurement[TrigramKey]{Sum: sum, SumEW: sumEW}
		}
	}
	return r
}

// Normalize drops zero-valued detail rows and sorts remaining detail
// descending by the active weight, for every measurement in the record.
func (r *Record) Normalize(weight Weight) {
	for k, m := range r.Unigrams {
		m.RetainNonZeroDetails()
		m.SortDetails(weight)
		r.Unigrams[k] = m
	}
	for k, m := range r.Bigrams {
		m.RetainNonZeroDetails()
		m.SortDetails(weight)
		r.Bigrams[k] = m
	}
	for k, m := range r.Trigrams {
		m.RetainNonZeroDetails()
		m.SortDetails(weight)
		r.Trigrams[k] = m
	}
}

// metricSum returns a record's sum for a metric under the active weight.
func (r *Record) metricSum(m Metric, weight Weight) uint64 {
	switch m.Arity {
	case ArityUnigram:
		return r.Unigrams[m.Unigram].SumByWeight(weight)
	case ArityBigram:
		return r.Bigrams[m.Bigram].SumByWeight(weight)
	default:
		return r.Trigrams[m.Trigram].SumByWeight(weight)
	}
}

func (r *Record) totalByArity(arity MetricArity, weight Weight) uint64 {
	switch arity {
	case ArityUnigram:
		if weight == Raw {
			return r.TotalUnigramSum
		}
		return r.TotalUnigramSumEW
	case ArityBigram:
		if weight == Raw {
			return r.TotalBigramSum
		}
		return r.TotalBigramSumEW
	default:
		if weight == Raw {
			return r.TotalTrigramSum
		}
		return r.TotalTrigramSumEW
	}
}

// SymbolTable builds the filter-expression symbol table for this
// record: lower-cased metric name -> percentage of that arity's total.
// Metrics whose arity total is zero are omitted entirely (undefined,
// not zero) so referencing them in a filter raises undefined-variable.
func (r *Record) SymbolTable(weight Weight) map[string]float64 {
	syms := make(map[string]float64)
	add := func(arity MetricArity, name string, value uint64) {
		total := r.totalByArity(arity, weight)
		if total == 0 {
			return
		}
		syms[name] = 100.0 * float64(value) / float64(total)
	}
	for _, m := range AllUnigramMetrics {
		add(ArityUnigram, m.String(), r.Unigrams[m].SumByWeight(weight))
	}
	for _, m := range AllBigramMetrics {
		add(ArityBigram, m.String(), r.Bigrams[m].SumByWeight(weight))
	}
	for _, m := range AllTrigramMetrics {
		add(ArityTrigram, m.String(), r.Trigrams[m].SumByWeight(weight))
	}
	return syms
}

// SortRecords stably orders records by the first non-equal sort rule;
// records equal under every rule keep their input relative order.
func SortRecords(records []*Record, rules []SortRule, weight Weight) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		for _, rule := range rules {
			av := float64(a.metricSum(rule.Metric, weight))
			bv := float64(b.metricSum(rule.Metric, weight))
			if av == bv {
				continue
			}
			if rule.Direction == Ascending {
				return av < bv
			}
			return av > bv
		}
		return false
	})
}

// FilterRecords evaluates every expression in exprs against each
// record's symbol table, keeping only records for which every
// expression evaluates to boolean true or a finite non-zero number.
// The first evaluation error aborts filtering entirely.
func FilterRecords(records []*Record, exprs []*Expression, weight Weight) ([]*Record, error) {
	if len(exprs) == 0 {
		return records, nil
	}
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		syms := r.SymbolTable(weight)
		keep := true
		for _, e := range exprs {
			v, err := e.Evaluate(syms)
			if err != nil {
				return nil, err
			}
			if !v.Truthy() {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out, nil
}

// SelectRecords truncates records to at most maxCount entries, then,
// if index is non-nil, promotes the record at that (possibly
// negative, tail-relative) index to position 0 and truncates to one.
func SelectRecords(records []*Record, maxCount int, index *int) ([]*Record, error) {
	if maxCount >= 0 && maxCount < len(records) {
		records = records[:maxCount]
	}
	if index == nil {
		return records, nil
	}
	i := *index
	if i < 0 {
		i += len(records)
	}
	if i < 0 || i >= len(records) {
		return nil, fmt.Errorf("select index %d out of range for %d records", *index, len(records))
	}
	return records[i : i+1], nil
}
