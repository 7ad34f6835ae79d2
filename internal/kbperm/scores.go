package kbperm

// Score is one fingering's contribution to an n-gram table: the packed
// key, the raw frequency, and the effort-weighted frequency.
type Score[K any] struct {
	Key     K
	Value   uint64
	ValueEW uint64
}

// IsZero reports whether both the raw and effort-weighted values are zero.
func (s Score[K]) IsZero() bool {
	return s.Value == 0 && s.ValueEW == 0
}

// effortWeighted computes floor(v * effort) via a double-precision
// multiply truncated toward zero by the float-to-uint conversion.
// Large counts (beyond 2^53) can lose precision here; that loss is
// accepted rather than compensated for.
func effortWeighted(v uint64, effort float64) uint64 {
	return uint64(float64(v) * effort)
}

// Matrix is the dense byte-valued key assignment the scoring kernel
// reads; positions come from fingerings built against this shape, so
// every lookup below is in range by construction.
type Matrix [][]byte

func unigramKeyOf(m Matrix, p Cell) UnigramKey {
	return packUnigram(m[p.Row][p.Col])
}

func bigramKeyOf(m Matrix, p1, p2 Cell) BigramKey {
	return packBigram(m[p1.Row][p1.Col], m[p2.Row][p2.Col])
}

func trigramKeyOf(m Matrix, p1, p2, p3 Cell) TrigramKey {
	return packTrigram(m[p1.Row][p1.Col], m[p2.Row][p2.Col], m[p3.Row][p3.Col])
}

// ScoreUnigramsSummary accumulates the raw and effort-weighted sums
// over fs against m and t, without retaining per-fingering detail.
func ScoreUnigramsSummary(fs []UnigramFingering, m Matrix, t UnigramTable) (sum, sumEW uint64) {
	for _, f := range fs {
		v := t[unigramKeyOf(m, f.Pos)]
		sum += v
		sumEW += effortWeighted(v, f.Effort)
	}
	return sum, sumEW
}

// ScoreUnigramsDetailed is ScoreUnigramsSummary plus the full per-fingering detail list.
func ScoreUnigramsDetailed(fs []UnigramFingering, m Matrix, t UnigramTable) (sum, sumEW uint64, details []Score[UnigramKey]) {
	details = make([]Score[UnigramKey], len(fs))
	for i, f := range fs {
		key := unigramKeyOf(m, f.Pos)
		v := t[key]
		vEW := effortWeighted(v, f.Effort)
		details[i] = Score[UnigramKey]{Key: key, Value: v, ValueEW: vEW}
		sum += v
		sumEW += vEW
	}
	return sum, sumEW, details
}

// ScoreBigramsSummary is the bigram analogue of ScoreUnigramsSummary.
func ScoreBigramsSummary(fs []BigramFingering, m Matrix, t BigramTable) (sum, sumEW uint64) {
	for _, f := range fs {
		v := t[bigramKeyOf(m, f.P1, f.P2)]
		sum += v
		sumEW += effortWeighted(v, f.Effort)
	}
	return sum, sumEW
}

// ScoreBigramsDetailed is the bigram analogue of ScoreUnigramsDetailed.
func ScoreBigramsDetailed(fs []BigramFingering, m Matrix, t BigramTable) (sum, sumEW uint64, details []Score[BigramKey]) {
	details = make([]Score[BigramKey], len(fs))
	for i, f := range fs {
		key := bigramKeyOf(m, f.P1, f.P2)
		v := t[key]
		vEW := effortWeighted(v, f.Effort)
		details[i] = Score[BigramKey]{Key: key, Value: v, ValueEW: vEW}
		sum += v
		sumEW += vEW
	}
	return sum, sumEW, details
}

// ScoreTrigramsSummary is the trigram analogue of ScoreUnigramsSummary.
func ScoreTrigramsSummary(fs []TrigramFingering, m Matrix, t TrigramTable) (sum, sumEW uint64) {
	for _, f := range fs {
		v := t[trigramKeyOf(m, f.P1, f.P2, f.P3)]
		sum += v
		sumEW += effortWeighted(v, f.Effort)
	}
	return sum, sumEW
}

// ScoreTrigramsDetailed is the trigram analogue of ScoreUnigramsDetailed.
func ScoreTrigramsDetailed(fs []TrigramFingering, m Matrix, t TrigramTable) (sum, sumEW uint64, details []Score[TrigramKey]) {
	details = make([]Score[TrigramKey], len(fs))
	for i, f := range fs {
		key := trigramKeyOf(m, f.P1, f.P2, f.P3)
		v := t[key]
		vEW := effortWeighted(v, f.Effort)
		details[i] = Score[TrigramKey]{Key: key, Value: v, ValueEW: vEW}
		sum += v
		sumEW += vEW
	}
	return sum, sumEW, details
}
