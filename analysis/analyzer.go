package analysis

import (
	"fmt"

	"github.com/yarlson/yarlang/ast"
)

// Analyzer builds an LSP-facing symbol table over a parsed file (spec's
// module map keeps this separate from diag.Collector: this is hover/
// go-to-definition support, not compiler diagnostics).
type Analyzer struct {
	file         *ast.File
	symbols      *SymbolTable
	diagnostics  []Diagnostic
	currentScope *Scope
}

// Analyze performs semantic analysis on a file.
func Analyze(file *ast.File) (*SymbolTable, []Diagnostic) {
	a := &Analyzer{
		file:        file,
		symbols:     NewSymbolTable(),
		diagnostics: []Diagnostic{},
	}

	a.analyzeFile()

	return a.symbols, a.diagnostics
}

func (a *Analyzer) analyzeFile() {
	globalScope := NewScope(nil)
	a.symbols.AddScope(globalScope)
	a.currentScope = globalScope

	a.addBuiltins(globalScope)

	for _, item := range a.file.Items {
		if fn, ok := item.(*ast.FuncDecl); ok {
			a.analyzeFuncDecl(fn)
		}
	}
}

func (a *Analyzer) addBuiltins(scope *Scope) {
	builtins := []string{
		"println",
		"print",
		"len",
		"panic",
	}

	for _, name := range builtins {
		scope.Define(name, &Symbol{
			Name:      name,
			Kind:      SymbolKindFunction,
			Type:      "builtin",
			DeclRange: ast.Range{}, // No source location for builtins
		})
	}
}

func (a *Analyzer) analyzeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		a.analyzeBlockStmt(s)
	case *ast.DeclStmt:
		a.analyzeDeclStmt(s)
	case *ast.ShortDecl:
		a.analyzeExpr(s.Value)
		a.currentScope.Define(s.Name, &Symbol{
			Name:      s.Name,
			Kind:      SymbolKindVariable,
			DeclRange: s.Location(),
			Type:      "dynamic",
		})
	case *ast.ConstStmt:
		a.analyzeExpr(s.Value)
		a.currentScope.Define(s.Name, &Symbol{
			Name:      s.Name,
			Kind:      SymbolKindVariable,
			DeclRange: s.Location(),
			Type:      "dynamic",
		})
	case *ast.UnsafeBlock:
		a.analyzeBlockStmt(s.Body)
	case *ast.AssignStmt:
		a.analyzeAssignStmt(s)
	case *ast.IfStmt:
		a.analyzeIfStmt(s)
	case *ast.WhileStmt:
		if s.Cond != nil {
			a.analyzeExpr(s.Cond)
		}

		a.analyzeBlockStmt(s.Body)
	case *ast.DoStmt:
		a.analyzeBlockStmt(s.Body)
		a.analyzeExpr(s.Cond)
	case *ast.ForStmt:
		a.analyzeForStmt(s)
	case *ast.SwitchStmt:
		a.analyzeExpr(s.Tag)
		a.analyzeStmt(s.Body)
	case *ast.CaseStmt:
		if s.Inner != nil {
			a.analyzeStmt(s.Inner)
		}
	case *ast.DefaultStmt:
		if s.Inner != nil {
			a.analyzeStmt(s.Inner)
		}
	case *ast.LabeledStmt:
		if s.Inner != nil {
			a.analyzeStmt(s.Inner)
		}
	case *ast.DeferStmt:
		a.analyzeExpr(s.Expr)
	case *ast.ReturnStmt:
		a.analyzeReturnStmt(s)
	case *ast.ExprStmt:
		a.analyzeExpr(s.Expr)
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.GotoStmt:
		// Nothing to analyze
	}
}

func (a *Analyzer) analyzeFuncDecl(fn *ast.FuncDecl) {
	symbol := &Symbol{
		Name:      fn.Name,
		Kind:      SymbolKindFunction,
		DeclRange: fn.NameLoc,
		Type:      "function",
		Node:      fn,
	}

	if existing := a.currentScope.LookupLocal(fn.Name); existing != nil {
		a.diagnostics = append(a.diagnostics, Diagnostic{
			Range:    fn.NameLoc,
			Severity: SeverityError,
			Message:  fmt.Sprintf("function %s already declared", fn.Name),
		})
	} else {
		a.currentScope.Define(fn.Name, symbol)
	}

	fnScope := NewScope(a.currentScope)
	fnScope.node = fn
	a.symbols.AddScope(fnScope)

	outerScope := a.currentScope
	a.currentScope = fnScope

	// ast.Param carries no per-parameter location; fall back to the
	// function's own declaration range for hover/go-to-definition.
	for _, param := range fn.Params {
		paramSym := &Symbol{
			Name:      param.Name,
			Kind:      SymbolKindParameter,
			DeclRange: fn.NameLoc,
			Type:      "dynamic",
		}
		fnScope.Define(param.Name, paramSym)
	}

	if fn.Body != nil {
		for _, stmt := range fn.Body.Stmts {
			a.analyzeStmt(stmt)
		}
	}

	a.currentScope = outerScope
}

func (a *Analyzer) analyzeDeclStmt(decl *ast.DeclStmt) {
	for _, ld := range decl.Decls {
		if ld.Node.Value != nil {
			a.analyzeExpr(ld.Node.Value)
		}

		symbol := &Symbol{
			Name:      ld.Node.Name,
			Kind:      SymbolKindVariable,
			DeclRange: ld.Loc,
			Type:      "dynamic",
		}
		a.currentScope.Define(ld.Node.Name, symbol)
	}
}

func (a *Analyzer) analyzeAssignStmt(assign *ast.AssignStmt) {
	a.analyzeExpr(assign.Value)

	target, ok := assign.Target.(*ast.Ident)
	if !ok {
		// Non-identifier targets (index/field expressions) are mutations
		// of an existing binding; just resolve their sub-expressions.
		a.analyzeExpr(assign.Target)
		return
	}

	if existing := a.currentScope.Lookup(target.Name); existing != nil {
		existing.References = append(existing.References, target.Location())
	} else {
		symbol := &Symbol{
			Name:      target.Name,
			Kind:      SymbolKindVariable,
			DeclRange: target.Location(),
			Type:      "dynamic",
		}
		a.currentScope.Define(target.Name, symbol)
	}
}

func (a *Analyzer) analyzeIfStmt(ifStmt *ast.IfStmt) {
	a.analyzeExpr(ifStmt.Cond)
	a.analyzeBlockStmt(ifStmt.Then)

	if ifStmt.Else != nil {
		a.analyzeStmt(ifStmt.Else)
	}
}

func (a *Analyzer) analyzeForStmt(forStmt *ast.ForStmt) {
	forScope := NewScope(a.currentScope)
	forScope.node = forStmt
	a.symbols.AddScope(forScope)

	outerScope := a.currentScope
	a.currentScope = forScope

	if forStmt.Init != nil {
		a.analyzeStmt(forStmt.Init)
	}

	if forStmt.Cond != nil {
		a.analyzeExpr(forStmt.Cond)
	}

	if forStmt.Post != nil {
		a.analyzeExpr(forStmt.Post)
	}

	if forStmt.Body != nil {
		for _, stmt := range forStmt.Body.Stmts {
			a.analyzeStmt(stmt)
		}
	}

	a.currentScope = outerScope
}

func (a *Analyzer) analyzeReturnStmt(ret *ast.ReturnStmt) {
	if ret.Value != nil {
		a.analyzeExpr(ret.Value)
	}
}

func (a *Analyzer) analyzeBlockStmt(block *ast.Block) {
	if block == nil {
		return
	}

	blockScope := NewScope(a.currentScope)
	blockScope.node = block
	a.symbols.AddScope(blockScope)

	outerScope := a.currentScope
	a.currentScope = blockScope

	for _, stmt := range block.Stmts {
		a.analyzeStmt(stmt)
	}

	a.currentScope = outerScope
}

func (a *Analyzer) analyzeExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Ident:
		if sym := a.currentScope.Lookup(e.Name); sym != nil {
			sym.References = append(sym.References, e.Loc)
		} else {
			a.diagnostics = append(a.diagnostics, Diagnostic{
				Range:    e.Loc,
				Severity: SeverityError,
				Message:  fmt.Sprintf("undefined: %s", e.Name),
			})
		}
	case *ast.CallExpr:
		a.analyzeExpr(e.Callee)

		for _, arg := range e.Args {
			a.analyzeExpr(arg)
		}
	case *ast.BinaryExpr:
		a.analyzeExpr(e.Left)
		a.analyzeExpr(e.Right)
	case *ast.UnaryExpr:
		a.analyzeExpr(e.Expr)
	case *ast.IndexExpr:
		a.analyzeExpr(e.Expr)
		a.analyzeExpr(e.Index)
	case *ast.FieldExpr:
		a.analyzeExpr(e.Expr)
	case *ast.PropagateExpr:
		a.analyzeExpr(e.Expr)
	case *ast.ArrayExpr:
		for _, el := range e.Elems {
			a.analyzeExpr(el)
		}
	case *ast.TupleExpr:
		for _, el := range e.Elems {
			a.analyzeExpr(el)
		}
	case *ast.IntLit, *ast.FloatLit, *ast.CharLit, *ast.StringLit, *ast.BoolLit, *ast.NilLit:
		// Literals don't need analysis
	}
}
