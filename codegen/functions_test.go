package codegen

import (
	"strings"
	"testing"
)

func TestCodegenFunctionDecl(t *testing.T) {
	input := `
fn add(a: i32, b: i32) -> i32 {
	return a + b;
}

fn main() -> i32 {
	let result = add(5, 3);
	return result;
}
`

	ir := genModuleIR(t, input)
	if !strings.Contains(ir, "define") {
		t.Error("expected function definition in IR")
	}

	if !strings.Contains(ir, "@add") {
		t.Error("expected add function to be defined")
	}
}

func TestCodegenRecursiveFunction(t *testing.T) {
	input := `
fn factorial(n: i32) -> i32 {
	if n <= 1 {
		return 1;
	}
	let prev = factorial(n - 1);
	return n * prev;
}

fn main() -> i32 {
	return factorial(5);
}
`

	ir := genModuleIR(t, input)
	if !strings.Contains(ir, "call") {
		t.Error("expected recursive call to factorial in IR")
	}
}
