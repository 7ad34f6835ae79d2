package kbperm

import "testing"

func TestMeasurementRetainNonZeroDetails(t *testing.T) {
	details := []Score[UnigramKey]{
		{Key: 1, Value: 0, ValueEW: 0},
		{Key: 2, Value: 5, ValueEW: 5},
		{Key: 3, Value: 0, ValueEW: 0},
	}
	m := Measurement[UnigramKey]{Details: &details}
	m.RetainNonZeroDetails()
	if len(*m.Details) != 1 || (*m.Details)[0].Key != 2 {
		t.Fatalf("expected only the nonzero entry to survive, got %+v", *m.Details)
	}
}

func TestMeasurementRetainNonZeroDetailsNilIsNoop(t *testing.T) {
	m := Measurement[UnigramKey]{}
	m.RetainNonZeroDetails()
	if m.Details != nil {
		t.Fatal("expected nil Details to remain nil")
	}
}

func TestMeasurementSortDetailsByWeight(t *testing.T) {
	details := []Score[UnigramKey]{
		{Key: 1, Value: 5, ValueEW: 50},
		{Key: 2, Value: 10, ValueEW: 20},
	}
	m := Measurement[UnigramKey]{Details: &details}

	m.SortDetails(Raw)
	if (*m.Details)[0].Key != 2 {
		t.Fatalf("Raw sort should put the higher Value first, got %+v", *m.Details)
	}

	m.SortDetails(Effort)
	if (*m.Details)[0].Key != 1 {
		t.Fatalf("Effort sort should put the higher ValueEW first, got %+v", *m.Details)
	}
}

func TestMeasurementSumByWeight(t *testing.T) {
	m := Measurement[UnigramKey]{Sum: 10, SumEW: 25}
	if m.SumByWeight(Raw) != 10 {
		t.Fatal("SumByWeight(Raw) should return Sum")
	}
	if m.SumByWeight(Effort) != 25 {
		t.Fatal("SumByWeight(Effort) should return SumEW")
	}
}
