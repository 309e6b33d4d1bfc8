package semantic

import (
	"fmt"
	"strings"

	"github.com/yarlson/yarlang/ast"
)

type Scope struct {
	parent  *Scope
	symbols map[string]bool
}

func newScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]bool),
	}
}

func (s *Scope) define(name string) {
	s.symbols[name] = true
}

func (s *Scope) resolve(name string) bool {
	if _, ok := s.symbols[name]; ok {
		return true
	}

	if s.parent != nil {
		return s.parent.resolve(name)
	}

	return false
}

// Analyzer is the name-resolution pass (spec's module map calls this out as
// distinct from checker's type checking): it walks a file's function bodies
// and flags references to undeclared identifiers before checker ever runs.
type Analyzer struct {
	currentScope *Scope
	errors       []string
}

func New() *Analyzer {
	global := newScope(nil)

	// Define built-in functions
	global.define("print")
	global.define("println")
	global.define("len")
	global.define("panic")

	return &Analyzer{
		currentScope: global,
		errors:       []string{},
	}
}

// Analyze walks every function declared in file, resolving identifiers
// against the scope chain built up as it descends into bodies.
func (a *Analyzer) Analyze(file *ast.File) error {
	for _, item := range file.Items {
		if fn, ok := item.(*ast.FuncDecl); ok {
			a.currentScope.define(fn.Name)
		}
	}

	for _, item := range file.Items {
		if fn, ok := item.(*ast.FuncDecl); ok {
			a.analyzeFuncDecl(fn)
		}
	}

	if len(a.errors) > 0 {
		return fmt.Errorf("%s", a.errors[0])
	}

	return nil
}

func (a *Analyzer) enterScope() {
	a.currentScope = newScope(a.currentScope)
}

func (a *Analyzer) exitScope() {
	a.currentScope = a.currentScope.parent
}

func (a *Analyzer) analyzeFuncDecl(fn *ast.FuncDecl) {
	a.enterScope()

	for _, param := range fn.Params {
		a.currentScope.define(param.Name)
	}

	a.analyzeBlock(fn.Body)
	a.exitScope()
}

func (a *Analyzer) analyzeBlock(block *ast.Block) {
	if block == nil {
		return
	}

	a.enterScope()

	for _, stmt := range block.Stmts {
		a.analyzeStmt(stmt)
	}

	a.exitScope()
}

func (a *Analyzer) analyzeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		a.analyzeBlock(s)
	case *ast.DeclStmt:
		for _, ld := range s.Decls {
			if ld.Node.Value != nil {
				a.analyzeExpr(ld.Node.Value)
			}

			a.currentScope.define(ld.Node.Name)
		}
	case *ast.ShortDecl:
		a.analyzeExpr(s.Value)
		a.currentScope.define(s.Name)
	case *ast.ConstStmt:
		a.analyzeExpr(s.Value)
		a.currentScope.define(s.Name)
	case *ast.UnsafeBlock:
		a.analyzeBlock(s.Body)
	case *ast.ExprStmt:
		a.analyzeExpr(s.Expr)
	case *ast.AssignStmt:
		a.analyzeExpr(s.Value)
		a.analyzeExpr(s.Target)
	case *ast.ReturnStmt:
		if s.Value != nil {
			a.analyzeExpr(s.Value)
		}
	case *ast.IfStmt:
		a.analyzeExpr(s.Cond)
		a.analyzeBlock(s.Then)

		if s.Else != nil {
			a.analyzeStmt(s.Else)
		}
	case *ast.WhileStmt:
		if s.Cond != nil {
			a.analyzeExpr(s.Cond)
		}

		a.analyzeBlock(s.Body)
	case *ast.DoStmt:
		a.analyzeBlock(s.Body)
		a.analyzeExpr(s.Cond)
	case *ast.ForStmt:
		a.enterScope()

		if s.Init != nil {
			a.analyzeStmt(s.Init)
		}

		if s.Cond != nil {
			a.analyzeExpr(s.Cond)
		}

		if s.Post != nil {
			a.analyzeExpr(s.Post)
		}

		for _, bodyStmt := range s.Body.Stmts {
			a.analyzeStmt(bodyStmt)
		}

		a.exitScope()
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
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.GotoStmt:
		// Nothing to resolve.
	}
}

func (a *Analyzer) analyzeExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Ident:
		// Skip validation for qualified names (e.g., math::Add) - they're cross-module
		if !strings.Contains(e.Name, "::") && !a.currentScope.resolve(e.Name) {
			a.errors = append(a.errors, fmt.Sprintf("undefined variable: %s", e.Name))
		}
	case *ast.BinaryExpr:
		a.analyzeExpr(e.Left)
		a.analyzeExpr(e.Right)
	case *ast.UnaryExpr:
		a.analyzeExpr(e.Expr)
	case *ast.CallExpr:
		a.analyzeExpr(e.Callee)

		for _, arg := range e.Args {
			a.analyzeExpr(arg)
		}
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
		// Literals are always valid
	}
}

// ModuleInfo holds information about a module for cross-module analysis
type ModuleInfo struct {
	Name    string
	AST     *ast.File
	Exports map[string]*Symbol // Exported symbols only
}

// Symbol represents an exported symbol
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Exported   bool
	Definition ast.Node
}

type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolVariable
)

// CrossModuleAnalyzer performs semantic analysis across multiple modules
type CrossModuleAnalyzer struct {
	modules map[string]*ModuleInfo
	scopes  map[string]*Scope // Module name -> root scope
}

// NewCrossModuleAnalyzer creates a cross-module analyzer
func NewCrossModuleAnalyzer(modules map[string]*ModuleInfo) *CrossModuleAnalyzer {
	return &CrossModuleAnalyzer{
		modules: modules,
		scopes:  make(map[string]*Scope),
	}
}

// Analyze analyzes a module and all its imports
func (a *CrossModuleAnalyzer) Analyze(moduleName string) error {
	module, ok := a.modules[moduleName]
	if !ok {
		return fmt.Errorf("module %q not found", moduleName)
	}

	// First pass: collect exports from all modules
	for name, mod := range a.modules {
		if err := a.collectExports(name, mod); err != nil {
			return err
		}
	}

	// Second pass: analyze the target module with imported symbols
	return a.analyzeModule(moduleName, module)
}

func (a *CrossModuleAnalyzer) collectExports(name string, mod *ModuleInfo) error {
	exports := make(map[string]*Symbol)

	for _, item := range mod.AST.Items {
		if funcDecl, ok := item.(*ast.FuncDecl); ok {
			if funcDecl.Pub {
				exports[funcDecl.Name] = &Symbol{
					Name:       funcDecl.Name,
					Kind:       SymbolFunction,
					Exported:   true,
					Definition: funcDecl,
				}
			}
		}
	}

	mod.Exports = exports

	return nil
}

func (a *CrossModuleAnalyzer) analyzeModule(name string, mod *ModuleInfo) error {
	// Create scope for this module
	scope := NewScope(nil)
	a.scopes[name] = scope

	// Process imports (ast.UseDecl: "use path::to::mod as alias")
	imports := make(map[string]*ModuleInfo) // alias/name -> module

	for _, item := range mod.AST.Items {
		use, ok := item.(*ast.UseDecl)
		if !ok {
			continue
		}

		path := strings.Join(use.Path, "/")

		importedMod, ok := a.modules[path]
		if !ok {
			return fmt.Errorf("imported module %q not found", path)
		}

		namespace := path
		if use.Alias != "" {
			namespace = use.Alias
		}

		imports[namespace] = importedMod
	}

	// Walk AST and check symbol references
	return a.checkReferences(mod.AST, scope, imports)
}

func (a *CrossModuleAnalyzer) checkReferences(file *ast.File, scope *Scope, imports map[string]*ModuleInfo) error {
	for _, item := range file.Items {
		fn, ok := item.(*ast.FuncDecl)
		if !ok {
			continue
		}

		if err := a.checkFuncDecl(fn, scope, imports); err != nil {
			return err
		}
	}

	return nil
}

func (a *CrossModuleAnalyzer) checkFuncDecl(fn *ast.FuncDecl, scope *Scope, imports map[string]*ModuleInfo) error {
	scope.define(fn.Name)

	funcScope := NewScope(scope)
	for _, param := range fn.Params {
		funcScope.define(param.Name)
	}

	for _, stmt := range fn.Body.Stmts {
		if err := a.checkStmt(stmt, funcScope, imports); err != nil {
			return err
		}
	}

	return nil
}

func (a *CrossModuleAnalyzer) checkStmt(stmt ast.Stmt, scope *Scope, imports map[string]*ModuleInfo) error {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		return a.checkExpr(s.Expr, scope, imports)
	case *ast.AssignStmt:
		return a.checkExpr(s.Value, scope, imports)
	case *ast.ReturnStmt:
		if s.Value != nil {
			return a.checkExpr(s.Value, scope, imports)
		}
	case *ast.Block:
		for _, inner := range s.Stmts {
			if err := a.checkStmt(inner, scope, imports); err != nil {
				return err
			}
		}
	}

	return nil
}

func (a *CrossModuleAnalyzer) checkExpr(expr ast.Expr, scope *Scope, imports map[string]*ModuleInfo) error {
	e, ok := expr.(*ast.CallExpr)
	if !ok {
		return nil
	}

	// Check for qualified call: module::Function()
	if ident, ok := e.Callee.(*ast.Ident); ok && strings.Contains(ident.Name, "::") {
		parts := strings.SplitN(ident.Name, "::", 2)
		moduleName, symbolName := parts[0], parts[1]

		importedMod, ok := imports[moduleName]
		if !ok {
			return fmt.Errorf("module %q not imported", moduleName)
		}

		symbol, ok := importedMod.Exports[symbolName]
		if !ok {
			return fmt.Errorf("%q is not exported from module %q", symbolName, moduleName)
		}

		if !symbol.Exported {
			return fmt.Errorf("%q is not exported from module %q (lowercase)", symbolName, moduleName)
		}
	}

	for _, arg := range e.Args {
		if err := a.checkExpr(arg, scope, imports); err != nil {
			return err
		}
	}

	return nil
}

// NewScope creates a new scope with a parent
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]bool),
	}
}
