package kbperm

import "testing"

func TestParseExpressionChainedComparisonsRejected(t *testing.T) {
	cases := []string{"a < b < c", "a == b == c", "a <= b > c"}
	for _, in := range cases {
		if _, err := ParseExpression(in); err == nil {
			t.Errorf("ParseExpression(%q): expected error, got nil", in)
		}
	}
}

func TestParseExpressionEmpty(t *testing.T) {
	if _, err := ParseExpression("   "); err == nil {
		t.Fatal("expected error for empty expression")
	}
}

func TestEvaluateComparisonAndLogic(t *testing.T) {
	e, err := ParseExpression("sfb < 5 && alt > 10")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	v, err := e.Evaluate(map[string]float64{"sfb": 2, "alt": 20})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !v.Truthy() {
		t.Fatalf("expected truthy result, got %+v", v)
	}

	v, err = e.Evaluate(map[string]float64{"sfb": 9, "alt": 20})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Truthy() {
		t.Fatalf("expected falsy result, got %+v", v)
	}
}

func TestEvaluateUndefinedVariable(t *testing.T) {
	e, err := ParseExpression("missing > 0")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	if _, err := e.Evaluate(map[string]float64{}); err == nil {
		t.Fatal("expected undefined-variable error")
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	e, err := ParseExpression("1 / 0")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	if _, err := e.Evaluate(nil); err == nil {
		t.Fatal("expected division-by-zero error")
	}
}

func TestReduceConstantFolding(t *testing.T) {
	e, err := ParseExpression("2 + 3 * 4")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	r := e.Reduce()
	if r.kind != nodeNumber || r.num != 14 {
		t.Fatalf("expected folded literal 14, got %+v", r)
	}
}

func TestReduceDivisionByZeroNotFolded(t *testing.T) {
	e, err := ParseExpression("x / 0")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	r := e.Reduce()
	if r.kind == nodeNumber {
		t.Fatalf("division by a zero literal must not be constant-folded, got %+v", r)
	}
}

func TestReduceDoubleNegation(t *testing.T) {
	e, err := ParseExpression("!!x")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	r := e.Reduce()
	if r.kind != nodeIdent || r.ident != "x" {
		t.Fatalf("expected !!x to fold to x, got %+v", r)
	}
}

func TestEvaluateShortCircuit(t *testing.T) {
	e, err := ParseExpression("false_metric > 0 && undefined_var > 0")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	if _, err := e.Evaluate(map[string]float64{"false_metric": 0}); err != nil {
		t.Fatalf("expected short-circuit to avoid undefined-variable error, got %v", err)
	}
}
