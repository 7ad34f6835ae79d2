package kbperm

import "testing"

func buildTestRecord(t *testing.T, matrix Matrix, ut UnigramTable, bt BigramTable, tt TrigramTable, detail DetailRequest) *Record {
	t.Helper()
	layout := NewLayoutTable(1, 2)
	layout.Set(0, 0, &Digit{Hand: Left, Finger: Index})
	layout.Set(0, 1, &Digit{Hand: Right, Finger: Index})
	uf := BuildUnigramFingeringSet(layout)
	bf := BuildBigramFingeringSet(layout)
	tf := BuildTrigramFingeringSet(layout)
	return BuildRecord(matrix, uf, bf, tf, ut, bt, tt, detail)
}

func TestBuildRecordTotalsAndSymbolTable(t *testing.T) {
	ut := NewUnigramTable()
	ut[packUnigram('a')] = 10
	ut[packUnigram('b')] = 5
	bt := NewBigramTable()
	tt := NewTrigramTable()

	r := buildTestRecord(t, Matrix{{'a', 'b'}}, ut, bt, tt, DetailRequest{})
	if r.TotalUnigramSum != 15 {
		t.Fatalf("TotalUnigramSum = %d, want 15", r.TotalUnigramSum)
	}
	if r.Unigrams[Li].Sum != 10 {
		t.Fatalf("Li.Sum = %d, want 10", r.Unigrams[Li].Sum)
	}
	if r.Unigrams[Ri].Sum != 5 {
		t.Fatalf("Ri.Sum = %d, want 5", r.Unigrams[Ri].Sum)
	}

	syms := r.SymbolTable(Raw)
	if got := syms["li"]; got < 66.6 || got > 66.7 {
		t.Fatalf("syms[li] = %v, want ~66.67", got)
	}
	if _, ok := syms["sfb"]; ok {
		t.Fatal("sfb has a zero bigram total and must be omitted, not zero")
	}
}

func TestRecordNormalizeDropsZeroDetails(t *testing.T) {
	ut := NewUnigramTable()
	ut[packUnigram('a')] = 10
	bt := NewBigramTable()
	tt := NewTrigramTable()

	detail := DetailRequest{Unigrams: map[UnigramMetric]bool{Li: true, Ri: true}}
	r := buildTestRecord(t, Matrix{{'a', 'b'}}, ut, bt, tt, detail)
	r.Normalize(Raw)

	m := r.Unigrams[Li]
	if m.Details == nil {
		t.Fatal("expected Li detail list to be present")
	}
	if len(*m.Details) != 1 {
		t.Fatalf("expected the nonzero 'a' fingering to survive, got %d entries", len(*m.Details))
	}

	// 'b' has no unigram count, so Ri's only detail row is zero and is dropped.
	ri := r.Unigrams[Ri]
	if ri.Details == nil || len(*ri.Details) != 0 {
		t.Fatalf("expected the zero 'b' fingering to be dropped from Ri detail, got %+v", ri.Details)
	}
}

func TestSortRecordsDescending(t *testing.T) {
	ut := NewUnigramTable()
	ut[packUnigram('a')] = 10
	ut[packUnigram('b')] = 1
	bt := NewBigramTable()
	tt := NewTrigramTable()

	r1 := buildTestRecord(t, Matrix{{'a', 'b'}}, ut, bt, tt, DetailRequest{})
	r2 := buildTestRecord(t, Matrix{{'b', 'a'}}, ut, bt, tt, DetailRequest{})
	records := []*Record{r1, r2}

	SortRecords(records, []SortRule{{Metric: Metric{Arity: ArityUnigram, Unigram: Li}, Direction: Descending}}, Raw)
	if records[0] != r1 {
		t.Fatal("expected r1 (higher Li sum) to sort first in descending order")
	}
}

func TestFilterRecordsKeepsMatching(t *testing.T) {
	ut := NewUnigramTable()
	ut[packUnigram('a')] = 10
	ut[packUnigram('b')] = 5
	bt := NewBigramTable()
	tt := NewTrigramTable()

	r := buildTestRecord(t, Matrix{{'a', 'b'}}, ut, bt, tt, DetailRequest{})
	expr, err := ParseExpression("li > 50")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	kept, err := FilterRecords([]*Record{r}, []*Expression{expr}, Raw)
	if err != nil {
		t.Fatalf("FilterRecords: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("expected record to pass the li > 50 filter, got %d kept", len(kept))
	}

	expr2, _ := ParseExpression("li > 90")
	kept, err = FilterRecords([]*Record{r}, []*Expression{expr2}, Raw)
	if err != nil {
		t.Fatalf("FilterRecords: %v", err)
	}
	if len(kept) != 0 {
		t.Fatal("expected record to fail the li > 90 filter")
	}
}

func TestSelectRecordsTruncatesAndPromotes(t *testing.T) {
	records := []*Record{{}, {}, {}}
	selected, err := SelectRecords(records, 2, nil)
	if err != nil || len(selected) != 2 {
		t.Fatalf("expected truncation to 2 records, got %d, err=%v", len(selected), err)
	}

	idx := -1
	selected, err = SelectRecords(records, 10, &idx)
	if err != nil {
		t.Fatalf("SelectRecords: %v", err)
	}
	if len(selected) != 1 || selected[0] != records[len(records)-1] {
		t.Fatal("expected negative index to promote the last record")
	}

	outOfRange := 100
	if _, err := SelectRecords(records, 10, &outOfRange); err == nil {
		t.Fatal("expected an out-of-range select index to error")
	}
}
