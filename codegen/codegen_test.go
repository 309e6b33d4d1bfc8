package codegen

import (
	"strings"
	"testing"

	"github.com/yarlson/yarlang/checker"
	"github.com/yarlson/yarlang/lexer"
	"github.com/yarlson/yarlang/mir"
	"github.com/yarlson/yarlang/parser"
)

func genModuleIR(t *testing.T, source string) string {
	t.Helper()

	l := lexer.New(source)
	p := parser.New(l)
	file := p.ParseFile()

	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	if err := checker.NewChecker().CheckFile(file); err != nil {
		t.Fatalf("check error: %v", err)
	}

	mirMod := mir.NewLowerer().LowerFile(file)

	llvmMod := NewCodegen().GenModule(mirMod)

	return llvmMod.String()
}

func TestCodegenNumberLiteral(t *testing.T) {
	input := `
fn main() -> i32 {
	return 42;
}
`

	ir := genModuleIR(t, input)
	if !strings.Contains(ir, "define") {
		t.Error("expected a function definition in IR")
	}

	if !strings.Contains(ir, "ret i32") {
		t.Error("expected a ret i32 instruction in IR")
	}
}

func TestCodegenAssignment(t *testing.T) {
	input := `
fn main() {
	let x = 42;
	x = 43;
}
`

	ir := genModuleIR(t, input)
	if !strings.Contains(ir, "alloca") {
		t.Fatal("expected alloca instruction for variable assignment")
	}

	if !strings.Contains(ir, "store") {
		t.Fatal("expected store instruction for variable assignment")
	}
}

func TestCodegenBinaryExpr(t *testing.T) {
	input := `
fn main() -> i32 {
	let x = 1 + 2;
	return x;
}
`

	ir := genModuleIR(t, input)
	if !strings.Contains(ir, "alloca") {
		t.Fatal("expected alloca instruction for variable assignment")
	}

	if !strings.Contains(ir, "add") {
		t.Fatal("expected add instruction for binary addition")
	}
}

func TestCodegenCall(t *testing.T) {
	input := `
fn square(x: i32) -> i32 {
	return x * x;
}

fn main() -> i32 {
	return square(4);
}
`

	ir := genModuleIR(t, input)
	if !strings.Contains(ir, "define") {
		t.Fatal("expected function definitions for square and main")
	}

	if !strings.Contains(ir, "call") {
		t.Error("expected call instruction to square")
	}
}
