package agent

import (
	"math"
	"testing"
)

func TestEvalExprBoundaryCases(t *testing.T) {
	cases := []struct {
		expr string
		vars map[string]float64
		want float64
	}{
		{"1 + 2 * 3", nil, 7},
		{"(1 + 2) * 3", nil, 9},
		{"5 >= 5", nil, 1},
		{"x + y", map[string]float64{"x": 2, "y": 3}, 5},
		{"z", map[string]float64{}, 0},
	}

	for _, c := range cases {
		got, err := EvalExpr(c.expr, c.vars)
		if err != nil {
			t.Fatalf("EvalExpr(%q) returned error: %v", c.expr, err)
		}
		if got != c.want {
			t.Errorf("EvalExpr(%q) = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestEvalExprPrecedenceAndAssociativity(t *testing.T) {
	got, err := EvalExpr("10 - 2 - 3", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 {
		t.Errorf("expected left-associative subtraction to give 5, got %v", got)
	}
}

func TestEvalExprDivisionByZeroIsZero(t *testing.T) {
	got, err := EvalExpr("1 / 0", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected division by zero to resolve to 0, got %v", got)
	}
}

func TestEvalExprMissingOrNaNVarIsZero(t *testing.T) {
	got, err := EvalExpr("missing + 1", map[string]float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Errorf("expected missing var to resolve to 0, got %v", got)
	}

	got, err = EvalExpr("n + 1", map[string]float64{"n": math.NaN()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Errorf("expected NaN var to resolve to 0, got %v", got)
	}
}

func TestEvalExprEmptyExpressionIsZero(t *testing.T) {
	got, err := EvalExpr("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected empty expression to evaluate to 0, got %v", got)
	}
}

func TestEvalExprRelationsAllOperators(t *testing.T) {
	cases := map[string]float64{
		"3 > 2":  1,
		"3 < 2":  0,
		"3 <= 3": 1,
		"3 == 3": 1,
		"3 != 3": 0,
	}
	for expr, want := range cases {
		got, err := EvalExpr(expr, nil)
		if err != nil {
			t.Fatalf("EvalExpr(%q) returned error: %v", expr, err)
		}
		if got != want {
			t.Errorf("EvalExpr(%q) = %v, want %v", expr, got, want)
		}
	}
}

func TestEvalExprStackUnderflowIsExprError(t *testing.T) {
	_, err := EvalExpr("+ 1", nil)
	if err == nil {
		t.Fatal("expected an error for a malformed expression")
	}
	if _, ok := err.(*ExprError); !ok {
		t.Errorf("expected *ExprError, got %T", err)
	}
}

func TestEvalExprMismatchedParens(t *testing.T) {
	if _, err := EvalExpr("(1 + 2", nil); err == nil {
		t.Error("expected an error for unclosed paren")
	}
	if _, err := EvalExpr("1 + 2)", nil); err == nil {
		t.Error("expected an error for unopened paren")
	}
}

func TestEvalExprUnexpectedCharacter(t *testing.T) {
	if _, err := EvalExpr("1 & 2", nil); err == nil {
		t.Error("expected an error for an unsupported character")
	}
}

func TestCoerceToFloat(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{float64(3.5), 3.5},
		{int(4), 4},
		{"2.5", 2.5},
		{"not a number", 0},
		{true, 1},
		{false, 0},
		{nil, 0},
		{map[string]any{"a": 1}, 0},
	}
	for _, c := range cases {
		if got := coerceToFloat(c.in); got != c.want {
			t.Errorf("coerceToFloat(%#v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTokenizeCachedReusesTokens(t *testing.T) {
	first, err := tokenizeCached("a + b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := tokenizeCached("a + b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected same token count from cache, got %d vs %d", len(first), len(second))
	}
	if cached, ok := exprTokenCache.Load("a + b"); !ok || len(cached) != len(first) {
		t.Errorf("expected tokenizeCached to store the tokens for reuse, got %v, %v", cached, ok)
	}
}
