package parser

import (
	"strings"
	"testing"

	"github.com/yarlson/yarlang/ast"
	"github.com/yarlson/yarlang/lexer"
)

func TestParseFile(t *testing.T) {
	input := `module demo

use std::io::File

struct Point {
	x: f64,
	y: f64,
}

impl Point {
	fn len(p: Point) -> f64 {
		return 0.0;
	}
}

fn classify(n: i32) -> i32 {
	switch (n) {
	case 0:
		return 0;
	case 1:
	case 2:
		return 1;
	default:
		break;
	}

	for (let i = 0; i < n; i += 1) {
		if (i == 5) {
			goto done;
		}
	}

done:
	return n;
}
`

	l := lexer.New(input)
	p := New(l)
	file := p.ParseFile()

	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	if len(file.Module) != 1 || file.Module[0] != "demo" {
		t.Errorf("wrong module: %v", file.Module)
	}

	if len(file.Items) != 4 {
		t.Fatalf("expected 4 top-level items, got %d: %#v", len(file.Items), file.Items)
	}

	if _, ok := file.Items[0].(*ast.UseDecl); !ok {
		t.Errorf("item 0 is not UseDecl, got %T", file.Items[0])
	}

	if _, ok := file.Items[1].(*ast.StructDecl); !ok {
		t.Errorf("item 1 is not StructDecl, got %T", file.Items[1])
	}

	if _, ok := file.Items[2].(*ast.ImplBlock); !ok {
		t.Errorf("item 2 is not ImplBlock, got %T", file.Items[2])
	}

	fn, ok := file.Items[3].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("item 3 is not FuncDecl, got %T", file.Items[3])
	}

	if fn.Name != "classify" {
		t.Errorf("wrong function name: %q", fn.Name)
	}

	if len(fn.Body.Stmts) != 3 {
		t.Fatalf("expected 3 top-level statements in classify's body, got %d", len(fn.Body.Stmts))
	}

	if _, ok := fn.Body.Stmts[0].(*ast.SwitchStmt); !ok {
		t.Errorf("statement 0 is not SwitchStmt, got %T", fn.Body.Stmts[0])
	}

	if _, ok := fn.Body.Stmts[1].(*ast.ForStmt); !ok {
		t.Errorf("statement 1 is not ForStmt, got %T", fn.Body.Stmts[1])
	}

	// "done:" with a trailing return attaches as its Inner per the
	// labeled-statement grammar, so it and the return collapse into one
	// top-level LabeledStmt rather than two siblings.
	label, ok := fn.Body.Stmts[2].(*ast.LabeledStmt)
	if !ok || label.Name != "done" {
		t.Fatalf("statement 2 is not label 'done', got %#v", fn.Body.Stmts[2])
	}

	if _, ok := label.Inner.(*ast.ReturnStmt); !ok {
		t.Errorf("expected label to guard a ReturnStmt, got %T", label.Inner)
	}

	result := file.String()

	keywords := []string{"use", "struct", "Point", "impl", "fn", "classify"}
	for _, kw := range keywords {
		if !strings.Contains(result, kw) {
			t.Errorf("expected file to contain %q", kw)
		}
	}
}
