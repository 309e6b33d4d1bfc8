package diag

import "testing"

func TestCollectorPushAndDrainOrder(t *testing.T) {
	c := NewCollector()
	c.Push(SemanticError{SubKind: UndeclaredIdentifier, Detail: "x"}, Location{})
	c.Push(SemanticError{SubKind: UnreachableStatement}, Location{})

	drained := c.Drain()
	if len(drained) != 2 {
		t.Fatalf("Drain() len = %d, want 2", len(drained))
	}

	if drained[0].Err.(SemanticError).SubKind != UndeclaredIdentifier {
		t.Errorf("drain order wrong: first = %v", drained[0])
	}

	if c.HasErrors() {
		t.Errorf("collector not empty after Drain()")
	}
}

func TestCollectorDrainEmpty(t *testing.T) {
	c := NewCollector()
	if drained := c.Drain(); len(drained) != 0 {
		t.Errorf("Drain() on empty collector = %v, want empty", drained)
	}
}

func TestCollectorPop(t *testing.T) {
	c := NewCollector()
	if _, ok := c.Pop(); ok {
		t.Fatalf("Pop() on empty collector returned ok=true")
	}

	c.Push(LexError{Sub: "unterminated string"}, Location{})
	c.Push(LexError{Sub: "unterminated block comment"}, Location{})

	d, ok := c.Pop()
	if !ok {
		t.Fatalf("Pop() ok = false, want true")
	}

	if d.Err.(LexError).Sub != "unterminated string" {
		t.Errorf("Pop() returned wrong oldest entry: %v", d)
	}

	if c.Len() != 1 {
		t.Errorf("Len() after Pop() = %d, want 1", c.Len())
	}
}

func TestRecoverSuccessDoesNotMutateCollector(t *testing.T) {
	c := NewCollector()
	result := OkResult(42)

	got := Recover(result, c)
	if got != 42 {
		t.Errorf("Recover() = %d, want 42", got)
	}

	if c.HasErrors() {
		t.Errorf("Recover() of Ok result mutated collector")
	}
}

func TestRecoverFailureAppendsAndReturnsFallback(t *testing.T) {
	c := NewCollector()
	result := ErrResult(SemanticError{SubKind: DivideByZero}, Location{}, -1)

	got := Recover(result, c)
	if got != -1 {
		t.Errorf("Recover() = %d, want fallback -1", got)
	}

	if c.Len() != 1 {
		t.Errorf("Recover() of Err result did not append exactly one diagnostic, got %d", c.Len())
	}
}

func TestDiagnosticStringFormat(t *testing.T) {
	d := Diagnostic{Err: SemanticError{SubKind: DivideByZero}}
	if d.String() != "invalid program: divide by zero" {
		t.Errorf("Diagnostic.String() = %q", d.String())
	}

	d2 := Diagnostic{Err: LexError{Sub: "unterminated block comment"}}
	if d2.String() != "invalid token: unterminated block comment" {
		t.Errorf("Diagnostic.String() = %q", d2.String())
	}
}
