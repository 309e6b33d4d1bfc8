package parser

import (
	"testing"

	"github.com/yarlson/yarlang/ast"
	"github.com/yarlson/yarlang/lexer"
)

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()

	errors := p.Errors()
	if len(errors) == 0 {
		return
	}

	t.Errorf("parser has %d errors", len(errors))

	for _, msg := range errors {
		t.Errorf("parser error: %q", msg)
	}

	t.FailNow()
}

func parseFuncBody(t *testing.T, src string) *ast.Block {
	t.Helper()

	l := lexer.New("fn main() { " + src + " }")
	p := New(l)
	file := p.ParseFile()

	checkParserErrors(t, p)

	if len(file.Items) != 1 {
		t.Fatalf("file has wrong number of items. got=%d", len(file.Items))
	}

	fn, ok := file.Items[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("item is not FuncDecl. got=%T", file.Items[0])
	}

	return fn.Body
}

func TestParseIntLiteral(t *testing.T) {
	body := parseFuncBody(t, "42;")

	stmt, ok := body.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("statement is not ExprStmt. got=%T", body.Stmts[0])
	}

	lit, ok := stmt.Expr.(*ast.IntLit)
	if !ok {
		t.Fatalf("expr is not IntLit. got=%T", stmt.Expr)
	}

	if lit.Value != "42" {
		t.Errorf("lit.Value wrong. got=%q", lit.Value)
	}
}

func TestParseFloatLiteral(t *testing.T) {
	body := parseFuncBody(t, "3.14;")

	stmt := body.Stmts[0].(*ast.ExprStmt)

	lit, ok := stmt.Expr.(*ast.FloatLit)
	if !ok {
		t.Fatalf("expr is not FloatLit. got=%T", stmt.Expr)
	}

	if lit.Value != "3.14" {
		t.Errorf("lit.Value wrong. got=%q", lit.Value)
	}
}

func TestParseBinaryExprPrecedence(t *testing.T) {
	body := parseFuncBody(t, "1 + 2 * 3;")

	stmt := body.Stmts[0].(*ast.ExprStmt)

	bin, ok := stmt.Expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expr is not BinaryExpr. got=%T", stmt.Expr)
	}

	if bin.Op != "+" {
		t.Fatalf("top operator wrong. got=%q", bin.Op)
	}

	if _, ok := bin.Left.(*ast.IntLit); !ok {
		t.Fatalf("left is not IntLit. got=%T", bin.Left)
	}

	right, ok := bin.Right.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("right is not BinaryExpr. got=%T", bin.Right)
	}

	if right.Op != "*" {
		t.Fatalf("nested operator wrong. got=%q", right.Op)
	}
}

func TestParseDeclStmtMultiple(t *testing.T) {
	body := parseFuncBody(t, "let x = 1, y = 2;")

	decl, ok := body.Stmts[0].(*ast.DeclStmt)
	if !ok {
		t.Fatalf("statement is not DeclStmt. got=%T", body.Stmts[0])
	}

	if len(decl.Decls) != 2 {
		t.Fatalf("expected 2 declarators, got %d", len(decl.Decls))
	}

	if decl.Decls[0].Node.Name != "x" || decl.Decls[1].Node.Name != "y" {
		t.Fatalf("unexpected declarator names: %q, %q", decl.Decls[0].Node.Name, decl.Decls[1].Node.Name)
	}
}

func TestParseAssignStmt(t *testing.T) {
	body := parseFuncBody(t, "x += 1;")

	stmt, ok := body.Stmts[0].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("statement is not AssignStmt. got=%T", body.Stmts[0])
	}

	if stmt.Op != "+=" {
		t.Errorf("op wrong. got=%q", stmt.Op)
	}

	if _, ok := stmt.Target.(*ast.Ident); !ok {
		t.Fatalf("target is not Ident. got=%T", stmt.Target)
	}
}

func TestParseReturnBare(t *testing.T) {
	body := parseFuncBody(t, "return;")

	stmt, ok := body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("statement is not ReturnStmt. got=%T", body.Stmts[0])
	}

	if stmt.Value != nil {
		t.Errorf("expected bare return, got value %v", stmt.Value)
	}
}

func TestParseReturnValue(t *testing.T) {
	body := parseFuncBody(t, "return 1 + 2;")

	stmt := body.Stmts[0].(*ast.ReturnStmt)

	if stmt.Value == nil {
		t.Fatalf("expected a return value")
	}
}

func TestParseIfElse(t *testing.T) {
	body := parseFuncBody(t, "if (x < 0) { return; } else { return; }")

	stmt, ok := body.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("statement is not IfStmt. got=%T", body.Stmts[0])
	}

	if stmt.Then == nil || len(stmt.Then.Stmts) != 1 {
		t.Fatalf("unexpected then-block: %+v", stmt.Then)
	}

	if stmt.Else == nil {
		t.Fatalf("expected an else branch")
	}
}

func TestParseIfElseIfChain(t *testing.T) {
	body := parseFuncBody(t, "if (x == 0) { } else if (x == 1) { } else { }")

	stmt := body.Stmts[0].(*ast.IfStmt)

	elseIf, ok := stmt.Else.(*ast.IfStmt)
	if !ok {
		t.Fatalf("else branch is not a chained IfStmt. got=%T", stmt.Else)
	}

	if elseIf.Else == nil {
		t.Fatalf("expected a final else block")
	}
}

func TestParseWhile(t *testing.T) {
	body := parseFuncBody(t, "while (x < 10) { x += 1; }")

	stmt, ok := body.Stmts[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("statement is not WhileStmt. got=%T", body.Stmts[0])
	}

	if stmt.Cond == nil {
		t.Fatalf("expected a condition")
	}
}

func TestParseDoWhile(t *testing.T) {
	body := parseFuncBody(t, "do { x += 1; } while (x < 10);")

	stmt, ok := body.Stmts[0].(*ast.DoStmt)
	if !ok {
		t.Fatalf("statement is not DoStmt. got=%T", body.Stmts[0])
	}

	if stmt.Cond == nil {
		t.Fatalf("expected a condition")
	}

	if len(stmt.Body.Stmts) != 1 {
		t.Fatalf("expected one body statement, got %d", len(stmt.Body.Stmts))
	}
}

func TestParseForThreeClause(t *testing.T) {
	body := parseFuncBody(t, "for (let i = 0; i < 10; i += 1) { }")

	stmt, ok := body.Stmts[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("statement is not ForStmt. got=%T", body.Stmts[0])
	}

	if stmt.Init == nil {
		t.Errorf("expected an init clause")
	}

	if stmt.Cond == nil {
		t.Errorf("expected a condition clause")
	}

	if stmt.Post == nil {
		t.Errorf("expected a post clause")
	}
}

func TestParseForEmptyClauses(t *testing.T) {
	body := parseFuncBody(t, "for (;;) { break; }")

	stmt, ok := body.Stmts[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("statement is not ForStmt. got=%T", body.Stmts[0])
	}

	if stmt.Init != nil || stmt.Cond != nil || stmt.Post != nil {
		t.Errorf("expected all clauses empty, got init=%v cond=%v post=%v", stmt.Init, stmt.Cond, stmt.Post)
	}
}

func TestParseSwitchCaseDefault(t *testing.T) {
	body := parseFuncBody(t, `
		switch (x) {
		case 1:
			break;
		case 2:
		default:
			break;
		}
	`)

	stmt, ok := body.Stmts[0].(*ast.SwitchStmt)
	if !ok {
		t.Fatalf("statement is not SwitchStmt. got=%T", body.Stmts[0])
	}

	switchBody, ok := stmt.Body.(*ast.Block)
	if !ok {
		t.Fatalf("switch body is not a Block. got=%T", stmt.Body)
	}

	// "case 2:" has no statement of its own before "default:" follows, so
	// per the labeled-statement grammar the default label nests inside it
	// as case 2's Inner rather than sitting beside it.
	if len(switchBody.Stmts) != 2 {
		t.Fatalf("expected 2 top-level statements inside switch body, got %d", len(switchBody.Stmts))
	}

	case1, ok := switchBody.Stmts[0].(*ast.CaseStmt)
	if !ok || case1.Value != 1 {
		t.Fatalf("expected case 1, got %+v", switchBody.Stmts[0])
	}

	case2, ok := switchBody.Stmts[1].(*ast.CaseStmt)
	if !ok || case2.Value != 2 {
		t.Fatalf("expected case 2, got %+v", switchBody.Stmts[1])
	}

	def, ok := case2.Inner.(*ast.DefaultStmt)
	if !ok {
		t.Fatalf("expected case 2 to nest a DefaultStmt, got %T", case2.Inner)
	}

	if _, ok := def.Inner.(*ast.BreakStmt); !ok {
		t.Fatalf("expected default to nest a BreakStmt, got %T", def.Inner)
	}
}

func TestParseGotoAndLabel(t *testing.T) {
	body := parseFuncBody(t, "goto done; done: return;")

	gotoStmt, ok := body.Stmts[0].(*ast.GotoStmt)
	if !ok || gotoStmt.Name != "done" {
		t.Fatalf("expected goto done, got %+v", body.Stmts[0])
	}

	label, ok := body.Stmts[1].(*ast.LabeledStmt)
	if !ok || label.Name != "done" {
		t.Fatalf("expected label done, got %+v", body.Stmts[1])
	}

	if _, ok := label.Inner.(*ast.ReturnStmt); !ok {
		t.Fatalf("expected label to guard a ReturnStmt, got %T", label.Inner)
	}
}

func TestParseBreakContinue(t *testing.T) {
	body := parseFuncBody(t, "while (true) { break; continue; }")

	while := body.Stmts[0].(*ast.WhileStmt)

	if _, ok := while.Body.Stmts[0].(*ast.BreakStmt); !ok {
		t.Fatalf("expected BreakStmt, got %T", while.Body.Stmts[0])
	}

	if _, ok := while.Body.Stmts[1].(*ast.ContinueStmt); !ok {
		t.Fatalf("expected ContinueStmt, got %T", while.Body.Stmts[1])
	}
}

func TestParseFuncDeclWithTypedParams(t *testing.T) {
	l := lexer.New("fn add(a: i32, mut b: i32) -> i32 { return a + b; }")
	p := New(l)
	file := p.ParseFile()

	checkParserErrors(t, p)

	fn, ok := file.Items[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("item is not FuncDecl. got=%T", file.Items[0])
	}

	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}

	if fn.Params[0].Name != "a" || fn.Params[0].Type == nil {
		t.Errorf("param 0 wrong: %+v", fn.Params[0])
	}

	if !fn.Params[1].Mut || fn.Params[1].Name != "b" {
		t.Errorf("param 1 wrong: %+v", fn.Params[1])
	}

	if fn.ReturnType == nil {
		t.Errorf("expected a return type")
	}
}

func TestParseNestedSwitchInLoop(t *testing.T) {
	body := parseFuncBody(t, `
		while (x < 10) {
			switch (x) {
			case 0:
				break;
			default:
				continue;
			}
			x += 1;
		}
	`)

	while, ok := body.Stmts[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("statement is not WhileStmt. got=%T", body.Stmts[0])
	}

	if len(while.Body.Stmts) != 2 {
		t.Fatalf("expected 2 statements in while body, got %d", len(while.Body.Stmts))
	}

	if _, ok := while.Body.Stmts[0].(*ast.SwitchStmt); !ok {
		t.Fatalf("expected SwitchStmt, got %T", while.Body.Stmts[0])
	}
}
