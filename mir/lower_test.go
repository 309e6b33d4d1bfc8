package mir

import (
	"strings"
	"testing"

	"github.com/yarlson/yarlang/checker"
	"github.com/yarlson/yarlang/diag"
	"github.com/yarlson/yarlang/lexer"
	"github.com/yarlson/yarlang/parser"
)

func lowerInput(t *testing.T, input string) (*Module, *Lowerer) {
	t.Helper()

	l := lexer.New(input)
	p := parser.New(l)
	file := p.ParseFile()

	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	lower := NewLowerer()
	mod := lower.LowerFile(file)

	return mod, lower
}

func TestLowerFunction(t *testing.T) {
	input := `fn add(a: i32, b: i32) -> i32 {
		return a + b
	}`

	l := lexer.New(input)
	p := parser.New(l)
	file := p.ParseFile()

	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	c := checker.NewChecker()

	err := c.CheckFile(file)
	if err != nil {
		t.Fatalf("checker error: %v", err)
	}

	lower := NewLowerer()
	mod := lower.LowerFile(file)

	if len(mod.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(mod.Functions))
	}

	fn := mod.Functions[0]
	if fn.Name != "add" {
		t.Errorf("wrong function name: %s", fn.Name)
	}

	if len(fn.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(fn.Params))
	}
}

func TestLowerStringLiteral(t *testing.T) {
	input := `fn main() {
		println("hello")
	}`

	mod, _ := lowerInput(t, input)

	if len(mod.Globals) != 1 {
		t.Fatalf("expected 1 global, got %d", len(mod.Globals))
	}

	globalStr, ok := mod.Globals[0].(*GlobalString)
	if !ok {
		t.Fatalf("expected GlobalString, got %T", mod.Globals[0])
	}

	if globalStr.Value != "hello" {
		t.Errorf("expected global value 'hello', got %s", globalStr.Value)
	}
}

func namedFunc(t *testing.T, mod *Module, name string) *Function {
	t.Helper()

	for _, fn := range mod.Functions {
		if fn.Name == name {
			return fn
		}
	}

	t.Fatalf("function %q not found", name)

	return nil
}

func blocksString(fn *Function) string {
	var out string
	for _, b := range fn.Blocks {
		out += b.String()
	}

	return out
}

func isTerminatorInstr(instr Instruction) bool {
	switch instr.(type) {
	case *Ret, *Br, *CondBr, *Switch:
		return true
	default:
		return false
	}
}

func TestIfStmtBothBranchesReturnDoesNotReachEnd(t *testing.T) {
	input := `fn classify(n: i32) -> i32 {
		if (n > 0) {
			return 1
		} else {
			return 0
		}
	}`

	mod, _ := lowerInput(t, input)
	fn := namedFunc(t, mod, "classify")

	for _, b := range fn.Blocks {
		if len(b.Instrs) == 0 {
			continue
		}

		last := b.Instrs[len(b.Instrs)-1]
		if !isTerminatorInstr(last) {
			t.Errorf("block %s does not end in a terminator: %s", b.Label, last.String())
		}
	}
}

func TestIfStmtOneBranchReturnsReachesEnd(t *testing.T) {
	input := `fn classify(n: i32) -> i32 {
		if (n > 0) {
			return 1
		} else {
			let x: i32 = 0
		}
		return 2
	}`

	mod, _ := lowerInput(t, input)
	fn := namedFunc(t, mod, "classify")

	out := blocksString(fn)
	if strings.Count(out, "ret i32") < 2 {
		t.Errorf("expected both the then-branch return and the final return to be reachable, got:\n%s", out)
	}
}

func TestWhileStmtLowering(t *testing.T) {
	input := `fn main() {
		let x: i32 = 0
		while (x < 10) {
			x = x + 1
		}
	}`

	mod, _ := lowerInput(t, input)
	fn := namedFunc(t, mod, "main")

	out := blocksString(fn)
	for _, want := range []string{"label %bb_loop_body", "label %bb_body", "label %bb_end"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestDoWhileStmtLowering(t *testing.T) {
	input := `fn main() {
		let i: i32 = 0
		do {
			i = i + 1
		} while (i < 10)
	}`

	mod, _ := lowerInput(t, input)
	fn := namedFunc(t, mod, "main")

	out := blocksString(fn)
	if !strings.Contains(out, "label %bb_loop_body") {
		t.Errorf("expected a back-edge to loop_body, got:\n%s", out)
	}
}

func TestDoWhileUnreachableConditionDiagnostic(t *testing.T) {
	input := `fn main() {
		do {
			return
		} while (1)
	}`

	_, lower := lowerInput(t, input)

	ds := lower.Collector().Drain()
	if len(ds) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(ds))
	}

	se, ok := ds[0].Err.(diag.SemanticError)
	if !ok || se.SubKind != diag.UnreachableStatement {
		t.Errorf("expected UnreachableStatement, got %#v", ds[0].Err)
	}
}

func TestForStmtContinueSkipsPost(t *testing.T) {
	input := `fn main() {
		for (let i: i32 = 0; i < 10; i += 1) {
			continue
		}
	}`

	mod, _ := lowerInput(t, input)
	fn := namedFunc(t, mod, "main")

	var bodyBlock *BasicBlock
	for _, b := range fn.Blocks {
		if strings.HasPrefix(b.Label, "body_") {
			bodyBlock = b
		}
	}

	if bodyBlock == nil {
		t.Fatal("expected a body block distinct from the loop header")
	}

	if len(bodyBlock.Instrs) == 0 {
		t.Fatal("body block has no instructions")
	}

	last := bodyBlock.Instrs[len(bodyBlock.Instrs)-1]
	br, ok := last.(*Br)
	if !ok {
		t.Fatalf("expected continue to lower to an unconditional branch, got %T", last)
	}

	if !strings.HasPrefix(br.Label, "loop_body_") {
		t.Errorf("continue should jump straight to the loop header (skipping the spliced post), got target %q", br.Label)
	}
}

func TestSwitchCaseDefaultLowering(t *testing.T) {
	input := `fn classify(n: i32) -> i32 {
		switch (n) {
		case 0:
			return 0
		case 1:
			return 1
		default:
			return 2
		}
		return 3
	}`

	mod, _ := lowerInput(t, input)
	fn := namedFunc(t, mod, "classify")

	var sw *Switch
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if s, ok := instr.(*Switch); ok {
				sw = s
			}
		}
	}

	if sw == nil {
		t.Fatal("expected a Switch jump-table instruction")
	}

	if len(sw.Cases) != 2 {
		t.Fatalf("expected 2 case entries, got %d", len(sw.Cases))
	}

	if sw.Default == "" {
		t.Error("expected a default target")
	}
}

func TestSwitchDuplicateCaseDiagnostic(t *testing.T) {
	input := `fn classify(n: i32) -> i32 {
		switch (n) {
		case 0:
			return 0
		case 0:
			return 1
		}
		return 2
	}`

	_, lower := lowerInput(t, input)

	found := false
	for _, d := range lower.Collector().Drain() {
		if se, ok := d.Err.(diag.SemanticError); ok && se.SubKind == diag.DuplicateCaseKind && !se.IsDefault {
			found = true
		}
	}

	if !found {
		t.Error("expected a DuplicateCaseKind diagnostic")
	}
}

func TestCaseOutsideSwitchDiagnostic(t *testing.T) {
	input := `fn main() {
		case 1:
			break
	}`

	_, lower := lowerInput(t, input)

	found := false
	for _, d := range lower.Collector().Drain() {
		if se, ok := d.Err.(diag.SemanticError); ok && se.SubKind == diag.CaseOutsideSwitchKind {
			found = true
		}
	}

	if !found {
		t.Error("expected a CaseOutsideSwitchKind diagnostic")
	}
}

func TestGotoLabelLowering(t *testing.T) {
	input := `fn main() {
	done:
		goto done
	}`

	mod, lower := lowerInput(t, input)
	fn := namedFunc(t, mod, "main")

	if ds := lower.Collector().Drain(); len(ds) != 0 {
		t.Fatalf("expected goto to resolve with no diagnostics, got %d", len(ds))
	}

	out := blocksString(fn)
	if !strings.Contains(out, "label %bb_label_done") {
		t.Errorf("expected goto to target the label's block, got:\n%s", out)
	}
}

func TestUndeclaredLabelDiagnostic(t *testing.T) {
	input := `fn main() {
		goto nowhere
	}`

	_, lower := lowerInput(t, input)

	found := false
	for _, d := range lower.Collector().Drain() {
		if se, ok := d.Err.(diag.SemanticError); ok && se.SubKind == diag.UndeclaredLabelKind {
			found = true
		}
	}

	if !found {
		t.Error("expected an UndeclaredLabelKind diagnostic")
	}
}

func TestLabelRedeclarationDiagnostic(t *testing.T) {
	input := `fn main() {
	done:
	done:
		return
	}`

	_, lower := lowerInput(t, input)

	found := false
	for _, d := range lower.Collector().Drain() {
		if se, ok := d.Err.(diag.SemanticError); ok && se.SubKind == diag.LabelRedeclarationKind {
			found = true
		}
	}

	if !found {
		t.Error("expected a LabelRedeclarationKind diagnostic")
	}
}

func TestBreakOutsideLoopOrSwitchDiagnostic(t *testing.T) {
	input := `fn main() {
		break
	}`

	_, lower := lowerInput(t, input)

	found := false
	for _, d := range lower.Collector().Drain() {
		if se, ok := d.Err.(diag.SemanticError); ok && se.SubKind == diag.BreakContinueOutsideScope {
			found = true
		}
	}

	if !found {
		t.Error("expected a BreakContinueOutsideScope diagnostic")
	}
}

func TestUnreachableStatementStopsSequence(t *testing.T) {
	input := `fn main() {
		return
		let x: i32 = 1
		let y: i32 = 2
	}`

	mod, lower := lowerInput(t, input)
	fn := namedFunc(t, mod, "main")

	ds := lower.Collector().Drain()
	if len(ds) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d", len(ds))
	}

	se, ok := ds[0].Err.(diag.SemanticError)
	if !ok || se.SubKind != diag.UnreachableStatement {
		t.Fatalf("expected UnreachableStatement, got %#v", ds[0].Err)
	}

	out := blocksString(fn)
	if strings.Contains(out, "alloca") {
		t.Errorf("lowering should have stopped before the unreachable allocas, got:\n%s", out)
	}
}

func TestDeferStmtLowering(t *testing.T) {
	input := `fn cleanup() {
	}

	fn main() {
		defer cleanup()
	}`

	mod, _ := lowerInput(t, input)
	fn := namedFunc(t, mod, "main")

	out := blocksString(fn)
	for _, want := range []string{"defer_push call void @cleanup()", "defer_run_all", "ret void"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPropagateExprLowering(t *testing.T) {
	input := `fn may_fail() -> i32 {
		return 42
	}

	fn main() {
		let x: i32 = may_fail()?
	}`

	mod, _ := lowerInput(t, input)
	fn := namedFunc(t, mod, "main")

	out := blocksString(fn)
	for _, want := range []string{"call i32 @may_fail", "label %bb_check", "label %bb_error", "label %bb_ok"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
