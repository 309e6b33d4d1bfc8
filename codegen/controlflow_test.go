package codegen

import (
	"strings"
	"testing"
)

func TestCodegenIfStmt(t *testing.T) {
	input := `
fn main() {
	let x = 10;
	if x > 5 {
		let y = x;
	}
}
`

	ir := genModuleIR(t, input)
	if !strings.Contains(ir, "br i1") {
		t.Error("expected conditional branch in IR")
	}
}

func TestCodegenIfElseStmt(t *testing.T) {
	input := `
fn main() -> i32 {
	let x = 3;
	if x > 5 {
		return 10;
	} else {
		return 20;
	}
}
`

	ir := genModuleIR(t, input)
	if !strings.Contains(ir, "br i1") {
		t.Error("expected conditional branch in IR for if/else")
	}

	if !strings.Contains(ir, "ret i32") {
		t.Error("expected returns in both branches")
	}
}

func TestCodegenIfElseIfStmt(t *testing.T) {
	input := `
fn main() -> i32 {
	let x = 7;
	if x > 10 {
		return 10;
	} else if x > 5 {
		return 20;
	} else {
		return 30;
	}
}
`

	ir := genModuleIR(t, input)
	if !strings.Contains(ir, "br i1") {
		t.Error("expected conditional branches in IR for else-if chaining")
	}
}

func TestCodegenForLoop(t *testing.T) {
	input := `
fn main() -> i32 {
	let sum = 0;
	for let i = 0; i < 5; i += 1 {
		sum = sum + i;
	}
	return sum;
}
`

	ir := genModuleIR(t, input)
	if !strings.Contains(ir, "br label") && !strings.Contains(ir, "br i1") {
		t.Error("expected loop branches in IR")
	}
}

func TestCodegenBreak(t *testing.T) {
	input := `
fn main() {
	for let i = 0; i < 10; i += 1 {
		if i > 3 {
			break;
		}
	}
}
`

	ir := genModuleIR(t, input)
	if !strings.Contains(ir, "br") {
		t.Error("expected branch instructions for loop with break")
	}
}
