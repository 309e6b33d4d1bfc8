package ast

import (
	"fmt"
	"strings"
)

// Node is the base interface for all AST nodes
type Node interface {
	String() string
}

// Located pairs a payload with the Location it was parsed from (spec §3).
// Used uniformly for statements, expressions, and (via diag.Located) diagnostics.
type Located[T any] struct {
	Node T
	Loc  Location
}

// ===== Types =====

// Type represents a type expression
type Type interface {
	Node
	typeNode()
}

// TypePath represents a type path like i32, Vec<T>, std::io::File
type TypePath struct {
	Path []string // ["std", "io", "File"]
	Args []Type   // Generic arguments
}

func (t *TypePath) typeNode() {}
func (t *TypePath) String() string {
	s := strings.Join(t.Path, "::")
	if len(t.Args) > 0 {
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}

		s += "<" + strings.Join(args, ", ") + ">"
	}

	return s
}

// RefType represents &T or &mut T
type RefType struct {
	Mut  bool
	Elem Type
}

func (r *RefType) typeNode() {}
func (r *RefType) String() string {
	if r.Mut {
		return "&mut " + r.Elem.String()
	}

	return "&" + r.Elem.String()
}

// PtrType represents *T (unsafe raw pointer)
type PtrType struct {
	Elem Type
}

func (p *PtrType) typeNode() {}
func (p *PtrType) String() string {
	return "*" + p.Elem.String()
}

// SliceType represents []T
type SliceType struct {
	Elem Type
}

func (s *SliceType) typeNode() {}
func (s *SliceType) String() string {
	return "[]" + s.Elem.String()
}

// ArrayType represents [T; N]
type ArrayType struct {
	Elem Type
	Len  Expr
}

func (a *ArrayType) typeNode() {}
func (a *ArrayType) String() string {
	return fmt.Sprintf("[%s; %s]", a.Elem.String(), a.Len.String())
}

// TupleType represents (T1, T2, ...)
type TupleType struct {
	Elems []Type
}

func (t *TupleType) typeNode() {}
func (t *TupleType) String() string {
	elems := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.String()
	}

	return "(" + strings.Join(elems, ", ") + ")"
}

// VoidType represents void
type VoidType struct{}

func (v *VoidType) typeNode() {}
func (v *VoidType) String() string {
	return "void"
}

// ===== Expressions =====

// Expr represents an expression. Every expression carries the Location it
// was parsed from (spec §3).
type Expr interface {
	Node
	exprNode()
	Location() Location
}

// Ident represents an identifier
type Ident struct {
	Name string
	Loc  Location
}

func (i *Ident) exprNode()          {}
func (i *Ident) Location() Location { return i.Loc }
func (i *Ident) String() string     { return i.Name }

// IntLit represents an integer literal
type IntLit struct {
	Value string // "123", "0xFF", etc.
	Loc   Location
}

func (i *IntLit) exprNode()          {}
func (i *IntLit) Location() Location { return i.Loc }
func (i *IntLit) String() string     { return i.Value }

// FloatLit represents a float literal
type FloatLit struct {
	Value string
	Loc   Location
}

func (f *FloatLit) exprNode()          {}
func (f *FloatLit) Location() Location { return f.Loc }
func (f *FloatLit) String() string     { return f.Value }

// CharLit represents a char literal
type CharLit struct {
	Value string
	Loc   Location
}

func (c *CharLit) exprNode()          {}
func (c *CharLit) Location() Location { return c.Loc }
func (c *CharLit) String() string     { return "'" + c.Value + "'" }

// StringLit represents a string literal
type StringLit struct {
	Value string
	Loc   Location
}

func (s *StringLit) exprNode()          {}
func (s *StringLit) Location() Location { return s.Loc }
func (s *StringLit) String() string     { return `"` + s.Value + `"` }

// BoolLit represents true/false
type BoolLit struct {
	Value bool
	Loc   Location
}

func (b *BoolLit) exprNode()          {}
func (b *BoolLit) Location() Location { return b.Loc }
func (b *BoolLit) String() string {
	if b.Value {
		return "true"
	}

	return "false"
}

// NilLit represents nil
type NilLit struct {
	Loc Location
}

func (n *NilLit) exprNode()          {}
func (n *NilLit) Location() Location { return n.Loc }
func (n *NilLit) String() string     { return "nil" }

// BinaryExpr represents binary operations
type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
	Loc   Location
}

func (b *BinaryExpr) exprNode()          {}
func (b *BinaryExpr) Location() Location { return b.Loc }
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op, b.Right.String())
}

// UnaryExpr represents unary operations
type UnaryExpr struct {
	Op   string
	Expr Expr
	Loc  Location
}

func (u *UnaryExpr) exprNode()          {}
func (u *UnaryExpr) Location() Location { return u.Loc }
func (u *UnaryExpr) String() string {
	if u.Op == "&mut" {
		return fmt.Sprintf("(%s %s)", u.Op, u.Expr.String())
	}

	return fmt.Sprintf("(%s%s)", u.Op, u.Expr.String())
}

// CallExpr represents function calls
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Loc    Location
}

func (c *CallExpr) exprNode()          {}
func (c *CallExpr) Location() Location { return c.Loc }
func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}

	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(args, ", "))
}

// IndexExpr represents array/slice indexing
type IndexExpr struct {
	Expr  Expr
	Index Expr
	Loc   Location
}

func (i *IndexExpr) exprNode()          {}
func (i *IndexExpr) Location() Location { return i.Loc }
func (i *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", i.Expr.String(), i.Index.String())
}

// FieldExpr represents field access
type FieldExpr struct {
	Expr  Expr
	Field string
	Loc   Location
}

func (f *FieldExpr) exprNode()          {}
func (f *FieldExpr) Location() Location { return f.Loc }
func (f *FieldExpr) String() string {
	return fmt.Sprintf("%s.%s", f.Expr.String(), f.Field)
}

// PropagateExpr represents the ? operator (supplemental, see SPEC_FULL.md §4)
type PropagateExpr struct {
	Expr Expr
	Loc  Location
}

func (p *PropagateExpr) exprNode()          {}
func (p *PropagateExpr) Location() Location { return p.Loc }
func (p *PropagateExpr) String() string     { return p.Expr.String() + "?" }

// StructExpr represents struct literal
type StructExpr struct {
	Type  Type
	Inits []FieldInit
	Loc   Location
}

type FieldInit struct {
	Name string
	Val  Expr
}

func (s *StructExpr) exprNode()          {}
func (s *StructExpr) Location() Location { return s.Loc }
func (s *StructExpr) String() string {
	inits := make([]string, len(s.Inits))
	for i, init := range s.Inits {
		inits[i] = fmt.Sprintf("%s: %s", init.Name, init.Val.String())
	}

	return fmt.Sprintf("%s{ %s }", s.Type.String(), strings.Join(inits, ", "))
}

// ArrayExpr represents array literal
type ArrayExpr struct {
	Elems []Expr
	Loc   Location
}

func (a *ArrayExpr) exprNode()          {}
func (a *ArrayExpr) Location() Location { return a.Loc }
func (a *ArrayExpr) String() string {
	elems := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		elems[i] = e.String()
	}

	return "[" + strings.Join(elems, ", ") + "]"
}

// TupleExpr represents tuple literal
type TupleExpr struct {
	Elems []Expr
	Loc   Location
}

func (t *TupleExpr) exprNode()          {}
func (t *TupleExpr) Location() Location { return t.Loc }
func (t *TupleExpr) String() string {
	elems := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.String()
	}

	return "(" + strings.Join(elems, ", ") + ")"
}

// ===== Statements =====
//
// Stmt is the tagged variant over the full C statement grammar from spec §3:
// Compound (Block), Decl (DeclStmt), Expr (ExprStmt), Return (ReturnStmt),
// If (IfStmt), While (WhileStmt), Do (DoStmt), For (ForStmt), Switch
// (SwitchStmt), Case (CaseStmt), Default (DefaultStmt), Label (LabeledStmt),
// Goto (GotoStmt), Break (BreakStmt), Continue (ContinueStmt) — plus
// supplemental sugar the teacher already had (DeferStmt, ShortDecl,
// ConstStmt, UnsafeBlock; see SPEC_FULL.md §4). Every variant carries the
// Location it was parsed from.
type Stmt interface {
	Node
	stmtNode()
	Location() Location
}

// Declarator is one declarator within a Decl statement (spec §3: Decl is a
// sequence of Located<Declaration>).
type Declarator struct {
	Mut   bool
	Name  string
	Type  Type // nil if inferred
	Value Expr // nil if no initializer
}

func (d *Declarator) String() string {
	mut := ""
	if d.Mut {
		mut = "mut "
	}

	typ := ""
	if d.Type != nil {
		typ = ": " + d.Type.String()
	}

	if d.Value != nil {
		return fmt.Sprintf("%s%s%s = %s", mut, d.Name, typ, d.Value.String())
	}

	return fmt.Sprintf("%s%s%s", mut, d.Name, typ)
}

// DeclStmt represents a declaration statement: one or more declarators
// introduced together (spec §3 Decl).
type DeclStmt struct {
	Decls []Located[*Declarator]
	Loc   Location
}

func (d *DeclStmt) stmtNode()          {}
func (d *DeclStmt) Location() Location { return d.Loc }
func (d *DeclStmt) String() string {
	parts := make([]string, len(d.Decls))
	for i, ld := range d.Decls {
		parts[i] = ld.Node.String()
	}

	return "let " + strings.Join(parts, ", ")
}

// AssignStmt represents assignment
type AssignStmt struct {
	Target Expr
	Op     string // "=" or "+=", etc.
	Value  Expr
	Loc    Location
}

func (a *AssignStmt) stmtNode()          {}
func (a *AssignStmt) Location() Location { return a.Loc }
func (a *AssignStmt) String() string {
	return fmt.Sprintf("%s %s %s", a.Target.String(), a.Op, a.Value.String())
}

// ExprStmt represents expression statement
type ExprStmt struct {
	Expr Expr
	Loc  Location
}

func (e *ExprStmt) stmtNode()          {}
func (e *ExprStmt) Location() Location { return e.Loc }
func (e *ExprStmt) String() string     { return e.Expr.String() }

// ReturnStmt represents return
type ReturnStmt struct {
	Value Expr // nil for bare return
	Loc   Location
}

func (r *ReturnStmt) stmtNode()          {}
func (r *ReturnStmt) Location() Location { return r.Loc }
func (r *ReturnStmt) String() string {
	if r.Value != nil {
		return "return " + r.Value.String()
	}

	return "return"
}

// IfStmt represents if/else
type IfStmt struct {
	Cond Expr
	Then *Block
	Else Stmt // nil, *Block, or *IfStmt
	Loc  Location
}

func (i *IfStmt) stmtNode()          {}
func (i *IfStmt) Location() Location { return i.Loc }
func (i *IfStmt) String() string {
	s := fmt.Sprintf("if %s %s", i.Cond.String(), i.Then.String())
	if i.Else != nil {
		s += " else " + i.Else.String()
	}

	return s
}

// WhileStmt represents while loop
type WhileStmt struct {
	Cond Expr // nil means "while (true)" — used by desugared for(;;)
	Body *Block
	Loc  Location
}

func (w *WhileStmt) stmtNode()          {}
func (w *WhileStmt) Location() Location { return w.Loc }
func (w *WhileStmt) String() string {
	if w.Cond == nil {
		return fmt.Sprintf("while (true) %s", w.Body.String())
	}

	return fmt.Sprintf("while %s %s", w.Cond.String(), w.Body.String())
}

// DoStmt represents a do/while loop: the body runs once unconditionally,
// then Cond is tested (spec §4.2.2 Do-while).
type DoStmt struct {
	Body *Block
	Cond Expr
	Loc  Location
}

func (d *DoStmt) stmtNode()          {}
func (d *DoStmt) Location() Location { return d.Loc }
func (d *DoStmt) String() string {
	return fmt.Sprintf("do %s while %s", d.Body.String(), d.Cond.String())
}

// ForStmt represents a C-style three-clause for loop: for(init; cond; post) body.
// Any of Init/Cond/Post/Body may be nil/absent (spec §3 For).
type ForStmt struct {
	Init Stmt // optional; *DeclStmt, *AssignStmt, *ExprStmt, or nil
	Cond Expr // optional
	Post Expr // optional
	Body *Block
	Loc  Location
}

func (f *ForStmt) stmtNode()          {}
func (f *ForStmt) Location() Location { return f.Loc }
func (f *ForStmt) String() string {
	init, cond, post := "", "", ""
	if f.Init != nil {
		init = f.Init.String()
	}

	if f.Cond != nil {
		cond = f.Cond.String()
	}

	if f.Post != nil {
		post = f.Post.String()
	}

	body := "{ }"
	if f.Body != nil {
		body = f.Body.String()
	}

	return fmt.Sprintf("for (%s; %s; %s) %s", init, cond, post, body)
}

// SwitchStmt represents a switch statement. Body is typically a *Block whose
// statements are CaseStmt/DefaultStmt and the statements they guard (spec §3 Switch).
type SwitchStmt struct {
	Tag  Expr
	Body Stmt
	Loc  Location
}

func (s *SwitchStmt) stmtNode()          {}
func (s *SwitchStmt) Location() Location { return s.Loc }
func (s *SwitchStmt) String() string {
	return fmt.Sprintf("switch %s %s", s.Tag.String(), s.Body.String())
}

// CaseStmt represents a `case <const>:` label, optionally guarding an inner
// statement (spec §3 Case). Value is the unsigned 64-bit case constant.
type CaseStmt struct {
	Value uint64
	Inner Stmt // optional
	Loc   Location
}

func (c *CaseStmt) stmtNode()          {}
func (c *CaseStmt) Location() Location { return c.Loc }
func (c *CaseStmt) String() string {
	if c.Inner != nil {
		return fmt.Sprintf("case %d: %s", c.Value, c.Inner.String())
	}

	return fmt.Sprintf("case %d:", c.Value)
}

// DefaultStmt represents a `default:` label (spec §3 Default).
type DefaultStmt struct {
	Inner Stmt // optional
	Loc   Location
}

func (d *DefaultStmt) stmtNode()          {}
func (d *DefaultStmt) Location() Location { return d.Loc }
func (d *DefaultStmt) String() string {
	if d.Inner != nil {
		return "default: " + d.Inner.String()
	}

	return "default:"
}

// LabeledStmt represents a `name:` label (spec §3 Label).
type LabeledStmt struct {
	Name  string
	Inner Stmt // optional
	Loc   Location
}

func (l *LabeledStmt) stmtNode()          {}
func (l *LabeledStmt) Location() Location { return l.Loc }
func (l *LabeledStmt) String() string {
	if l.Inner != nil {
		return fmt.Sprintf("%s: %s", l.Name, l.Inner.String())
	}

	return l.Name + ":"
}

// GotoStmt represents `goto name` (spec §3 Goto).
type GotoStmt struct {
	Name string
	Loc  Location
}

func (g *GotoStmt) stmtNode()          {}
func (g *GotoStmt) Location() Location { return g.Loc }
func (g *GotoStmt) String() string     { return "goto " + g.Name }

// BreakStmt represents break
type BreakStmt struct {
	Loc Location
}

func (b *BreakStmt) stmtNode()          {}
func (b *BreakStmt) Location() Location { return b.Loc }
func (b *BreakStmt) String() string     { return "break" }

// ContinueStmt represents continue
type ContinueStmt struct {
	Loc Location
}

func (c *ContinueStmt) stmtNode()          {}
func (c *ContinueStmt) Location() Location { return c.Loc }
func (c *ContinueStmt) String() string     { return "continue" }

// DeferStmt represents defer (supplemental, see SPEC_FULL.md §4)
type DeferStmt struct {
	Expr Expr
	Loc  Location
}

func (d *DeferStmt) stmtNode()          {}
func (d *DeferStmt) Location() Location { return d.Loc }
func (d *DeferStmt) String() string     { return "defer " + d.Expr.String() }

// ShortDecl represents := declaration
type ShortDecl struct {
	Name  string
	Value Expr
	Loc   Location
}

func (s *ShortDecl) stmtNode()          {}
func (s *ShortDecl) Location() Location { return s.Loc }
func (s *ShortDecl) String() string {
	return fmt.Sprintf("%s := %s", s.Name, s.Value.String())
}

// ConstStmt represents block-level const statement
type ConstStmt struct {
	Name  string
	Type  Type
	Value Expr
	Loc   Location
}

func (c *ConstStmt) stmtNode()          {}
func (c *ConstStmt) Location() Location { return c.Loc }
func (c *ConstStmt) String() string {
	return fmt.Sprintf("const %s: %s = %s", c.Name, c.Type.String(), c.Value.String())
}

// UnsafeBlock represents unsafe { }
type UnsafeBlock struct {
	Body *Block
	Loc  Location
}

func (u *UnsafeBlock) stmtNode()          {}
func (u *UnsafeBlock) Location() Location { return u.Loc }
func (u *UnsafeBlock) String() string     { return "unsafe " + u.Body.String() }

// Block represents a compound statement: a brace-delimited sequence of
// statements (spec §3 Compound).
type Block struct {
	Stmts []Stmt
	Loc   Location
}

func (b *Block) stmtNode()          {}
func (b *Block) Location() Location { return b.Loc }
func (b *Block) String() string {
	if len(b.Stmts) == 0 {
		return "{ }"
	}

	stmts := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		stmts[i] = s.String()
	}

	return "{ " + strings.Join(stmts, "; ") + " }"
}

// ===== Declarations =====

// Decl represents a top-level declaration
type Decl interface {
	Node
	declNode()
}

// UseDecl represents use/import
type UseDecl struct {
	Path  []string
	Alias string // empty if no alias
	Loc   Location
}

func (u *UseDecl) declNode() {}
func (u *UseDecl) String() string {
	path := strings.Join(u.Path, "::")
	if u.Alias != "" {
		return fmt.Sprintf("use %s as %s", path, u.Alias)
	}

	return "use " + path
}

// ConstDecl represents const declaration
type ConstDecl struct {
	Name  string
	Type  Type
	Value Expr
	Loc   Location
}

func (c *ConstDecl) declNode() {}
func (c *ConstDecl) String() string {
	return fmt.Sprintf("const %s: %s = %s", c.Name, c.Type.String(), c.Value.String())
}

// TypeAlias represents type alias
type TypeAlias struct {
	Name string
	Type Type
	Loc  Location
}

func (t *TypeAlias) declNode() {}
func (t *TypeAlias) String() string {
	return fmt.Sprintf("type %s = %s", t.Name, t.Type.String())
}

// StructDecl represents struct definition
type StructDecl struct {
	Pub     bool
	Name    string
	TParams []string // Generic type parameters
	Fields  []Field
	Loc     Location
}

type Field struct {
	Name string
	Type Type
}

func (s *StructDecl) declNode() {}
func (s *StructDecl) String() string {
	pub := ""
	if s.Pub {
		pub = "pub "
	}

	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Type.String())
	}

	tparams := ""
	if len(s.TParams) > 0 {
		tparams = "<" + strings.Join(s.TParams, ", ") + ">"
	}

	return fmt.Sprintf("%sstruct %s%s { %s }", pub, s.Name, tparams, strings.Join(fields, ", "))
}

// EnumDecl represents enum definition
type EnumDecl struct {
	Pub      bool
	Name     string
	TParams  []string
	Variants []Variant
	Loc      Location
}

type Variant struct {
	Name  string
	Types []Type // nil if no payload
}

func (e *EnumDecl) declNode() {}
func (e *EnumDecl) String() string {
	pub := ""
	if e.Pub {
		pub = "pub "
	}

	tparams := ""
	if len(e.TParams) > 0 {
		tparams = "<" + strings.Join(e.TParams, ", ") + ">"
	}

	return fmt.Sprintf("%senum %s%s { ... }", pub, e.Name, tparams)
}

// TraitDecl represents trait definition
type TraitDecl struct {
	Pub     bool
	Name    string
	TParams []string
	Sigs    []FnSig
	Loc     Location
}

type FnSig struct {
	Name   string
	Params []Param
	Return Type
}

func (t *TraitDecl) declNode() {}
func (t *TraitDecl) String() string {
	pub := ""
	if t.Pub {
		pub = "pub "
	}

	tparams := ""
	if len(t.TParams) > 0 {
		tparams = "<" + strings.Join(t.TParams, ", ") + ">"
	}

	return fmt.Sprintf("%strait %s%s { ... }", pub, t.Name, tparams)
}

// ImplBlock represents impl block
type ImplBlock struct {
	Trait *TypePath // nil if inherent impl
	For   Type
	Fns   []*FuncDecl
	Loc   Location
}

func (i *ImplBlock) declNode() {}
func (i *ImplBlock) String() string {
	if i.Trait != nil {
		return fmt.Sprintf("impl %s for %s { ... }", i.Trait.String(), i.For.String())
	}

	return fmt.Sprintf("impl %s { ... }", i.For.String())
}

// FuncDecl represents function declaration
type FuncDecl struct {
	Pub        bool
	Name       string
	TParams    []string
	Params     []Param
	ReturnType Type
	Body       *Block
	Loc        Location
	NameLoc    Location
}

type Param struct {
	Mut  bool
	Name string
	Type Type
}

func (f *FuncDecl) declNode() {}
func (f *FuncDecl) String() string {
	pub := ""
	if f.Pub {
		pub = "pub "
	}

	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		mut := ""
		if p.Mut {
			mut = "mut "
		}

		params[i] = fmt.Sprintf("%s%s %s", mut, p.Name, p.Type.String())
	}

	tparams := ""
	if len(f.TParams) > 0 {
		tparams = "<" + strings.Join(f.TParams, ", ") + ">"
	}

	ret := "void"
	if f.ReturnType != nil {
		ret = f.ReturnType.String()
	}

	return fmt.Sprintf("%sfn %s%s(%s) %s", pub, f.Name, tparams, strings.Join(params, ", "), ret)
}

// File represents a source file
type File struct {
	Module []string // module path
	Items  []Decl
}

func (f *File) String() string {
	items := make([]string, len(f.Items))
	for i, it := range f.Items {
		items[i] = it.String()
	}

	return strings.Join(items, "\n")
}

// IsJumpTarget reports whether stmt may be entered from a non-fallthrough
// edge — a label, case, or default (spec §4.2.1, GLOSSARY "Jump target").
func IsJumpTarget(stmt Stmt) bool {
	switch stmt.(type) {
	case *CaseStmt, *DefaultStmt, *LabeledStmt:
		return true
	default:
		return false
	}
}
