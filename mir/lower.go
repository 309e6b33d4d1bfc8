package mir

import (
	"fmt"

	"github.com/yarlson/yarlang/ast"
	"github.com/yarlson/yarlang/diag"
)

// LoopContext is the pair (continue-target, break-target) pushed when
// lowering enters a while/do/for loop and popped on exit (spec §4.2.2,
// "Loop Context").
type LoopContext struct {
	Continue *BasicBlock
	Break    *BasicBlock
}

// SwitchContext accumulates one switch statement's jump table while its body
// is lowered: the (constant, target) pairs seen so far, the optional default
// target, and the block execution resumes at once the switch is exited
// (spec §4.2.2, "Switch Context").
type SwitchContext struct {
	Seen    map[uint64]bool
	Cases   []CaseEntry
	Default *BasicBlock
	End     *BasicBlock
}

// FunctionBuilder is the external collaborator the lowerer drives to build a
// function's CFG (spec §6). It is deliberately narrow: the lowerer never
// reaches into a BasicBlock's instruction list directly, so any builder
// honoring this contract - including a real target-IR builder - can stand
// in for blockBuilder.
type FunctionBuilder interface {
	NewBlock(hint string) *BasicBlock
	SwitchTo(b *BasicBlock)
	Current() *BasicBlock
	Emit(instr Instruction)
	Jump(target *BasicBlock)
	CondBranch(cond string, nonzero, zero *BasicBlock)
	Return(value string, ty Type)
	EmitSwitch(scrutinee string, cases []CaseEntry, def *BasicBlock)
}

// blockBuilder is the Lowerer's own FunctionBuilder, grounded on the
// teacher's flat currentBB/Blocks bookkeeping in the original lower.go.
type blockBuilder struct {
	fn        *Function
	cur       *BasicBlock
	bbCounter *int
}

func (b *blockBuilder) NewBlock(hint string) *BasicBlock {
	*b.bbCounter++
	bb := &BasicBlock{Label: fmt.Sprintf("%s_%d", hint, *b.bbCounter)}
	b.fn.Blocks = append(b.fn.Blocks, bb)

	return bb
}

func (b *blockBuilder) SwitchTo(bb *BasicBlock) { b.cur = bb }
func (b *blockBuilder) Current() *BasicBlock    { return b.cur }

func (b *blockBuilder) Emit(instr Instruction) {
	if b.cur == nil || b.cur.IsFilled() {
		return
	}

	b.cur.Instrs = append(b.cur.Instrs, instr)
	if b.cur.State == Pristine {
		b.cur.State = Open
	}
}

func (b *blockBuilder) terminate(instr Instruction) {
	if b.cur == nil || b.cur.IsFilled() {
		return
	}

	b.cur.Instrs = append(b.cur.Instrs, instr)
	b.cur.State = Filled
}

// Jump is idempotent: a block that already has a terminator is left alone
// (spec §4.2.2's repeated "terminates the current block only if it is not
// already terminated" rule).
func (b *blockBuilder) Jump(target *BasicBlock) {
	if b.cur == nil || b.cur.IsFilled() {
		return
	}

	b.terminate(&Br{Label: target.Label})
}

func (b *blockBuilder) CondBranch(cond string, nonzero, zero *BasicBlock) {
	b.terminate(&CondBr{Cond: cond, TrueLabel: nonzero.Label, FalseLabel: zero.Label})
}

func (b *blockBuilder) Return(value string, ty Type) {
	b.terminate(&Ret{Value: value, Type: ty})
}

func (b *blockBuilder) EmitSwitch(scrutinee string, cases []CaseEntry, def *BasicBlock) {
	b.terminate(&Switch{Scrutinee: scrutinee, Cases: cases, Default: def.Label})
}

// Lowerer lowers AST to MIR, implementing the per-statement rules of
// spec §4.2.2 against a FunctionBuilder.
type Lowerer struct {
	tmpCounter int
	bbCounter  int
	strCounter int
	module     *Module
	currentFn  *Function
	builder    FunctionBuilder
	collector  *diag.Collector

	loopStack   []*LoopContext
	switchStack []*SwitchContext
	labels      map[string]*BasicBlock
	lastSawLoop bool
}

// NewLowerer returns a Lowerer with its own private diagnostic collector.
func NewLowerer() *Lowerer {
	return NewLowererWithCollector(diag.NewCollector())
}

// NewLowererWithCollector returns a Lowerer that reports diagnostics into c,
// mirroring checker.NewCheckerWithCollector so the lowerer can share the
// driver's single collector (spec §2's "shared diagnostic collector").
func NewLowererWithCollector(c *diag.Collector) *Lowerer {
	return &Lowerer{
		module:    &Module{Globals: []Global{}, Functions: []*Function{}},
		collector: c,
	}
}

// Collector returns the Lowerer's diagnostic collector.
func (l *Lowerer) Collector() *diag.Collector { return l.collector }

func (l *Lowerer) newTemp() string {
	l.tmpCounter++
	return fmt.Sprintf("t%d", l.tmpCounter)
}

func (l *Lowerer) errorAt(kind diag.SemanticKind, loc ast.Location) {
	l.collector.Push(diag.SemanticError{SubKind: kind}, loc)
}

func (l *Lowerer) LowerFile(file *ast.File) *Module {
	for _, item := range file.Items {
		if fn, ok := item.(*ast.FuncDecl); ok {
			l.lowerFunc(fn)
		}
	}

	return l.module
}

func (l *Lowerer) lowerFunc(fn *ast.FuncDecl) {
	mirFn := &Function{
		Name:   fn.Name,
		Params: []Param{},
		RetTy:  l.lowerType(fn.ReturnType),
		Blocks: []*BasicBlock{},
	}

	for _, param := range fn.Params {
		mirFn.Params = append(mirFn.Params, Param{
			Name: param.Name,
			Type: l.lowerType(param.Type),
		})
	}

	l.currentFn = mirFn
	l.loopStack = nil
	l.switchStack = nil
	l.labels = make(map[string]*BasicBlock)
	l.lastSawLoop = false

	b := &blockBuilder{fn: mirFn, bbCounter: &l.bbCounter}
	entry := b.NewBlock("entry")
	b.SwitchTo(entry)
	l.builder = b

	if fn.Body != nil {
		l.LowerSequence(fn.Body.Stmts)
	}

	cur := l.builder.Current()
	if cur != nil && !cur.IsFilled() {
		if voidType, ok := mirFn.RetTy.(*PrimitiveType); ok && voidType.Name == "void" {
			l.builder.Emit(&DeferRunAll{})
			l.builder.Return("", &PrimitiveType{Name: "void"})
		}
	}

	l.module.Functions = append(l.module.Functions, mirFn)
	l.currentFn = nil
	l.builder = nil
}

// LowerSequence is the canonical entry point for lowering a run of
// statements (spec §4.2.1). Before lowering each statement, if the current
// block is already Filled and the statement is not a jump target, a single
// UnreachableStatement diagnostic is raised and lowering of the REST of the
// sequence stops - not just that one statement.
func (l *Lowerer) LowerSequence(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		if l.builder.Current().IsFilled() && !ast.IsJumpTarget(stmt) {
			l.errorAt(diag.UnreachableStatement, stmt.Location())
			return
		}

		l.lowerStmt(stmt)
	}
}

func (l *Lowerer) lowerBlock(block *ast.Block) {
	if block == nil {
		return
	}

	l.LowerSequence(block.Stmts)
}

func (l *Lowerer) lowerStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		l.LowerSequence(s.Stmts)
	case *ast.DeclStmt:
		l.lowerDeclStmt(s)
	case *ast.ShortDecl:
		l.builder.Emit(&Alloca{Name: s.Name, Type: &PrimitiveType{Name: "i32"}})
		val := l.lowerExpr(s.Value)
		l.builder.Emit(&Store{Value: val, Dest: s.Name, Type: &PrimitiveType{Name: "i32"}})
	case *ast.ConstStmt:
		l.builder.Emit(&Alloca{Name: s.Name, Type: l.lowerType(s.Type)})
		val := l.lowerExpr(s.Value)
		l.builder.Emit(&Store{Value: val, Dest: s.Name, Type: l.lowerType(s.Type)})
	case *ast.UnsafeBlock:
		l.lowerBlock(s.Body)
	case *ast.ExprStmt:
		l.lowerExpr(s.Expr)
	case *ast.AssignStmt:
		l.lowerAssignStmt(s)
	case *ast.ReturnStmt:
		l.builder.Emit(&DeferRunAll{})
		if s.Value != nil {
			val := l.lowerExpr(s.Value)
			l.builder.Return(val, &PrimitiveType{Name: "i32"})
		} else {
			l.builder.Return("", &PrimitiveType{Name: "void"})
		}
	case *ast.IfStmt:
		l.lowerIfStmt(s)
	case *ast.WhileStmt:
		l.lowerWhileStmt(s)
	case *ast.DoStmt:
		l.lowerDoStmt(s)
	case *ast.ForStmt:
		l.lowerForStmt(s)
	case *ast.SwitchStmt:
		l.lowerSwitchStmt(s)
	case *ast.CaseStmt:
		l.lowerCaseStmt(s)
	case *ast.DefaultStmt:
		l.lowerDefaultStmt(s)
	case *ast.LabeledStmt:
		l.lowerLabeledStmt(s)
	case *ast.GotoStmt:
		l.lowerGotoStmt(s)
	case *ast.BreakStmt:
		l.lowerLoopExit(true, s.Loc)
	case *ast.ContinueStmt:
		l.lowerLoopExit(false, s.Loc)
	case *ast.DeferStmt:
		l.lowerDeferStmt(s)
	}
}

func (l *Lowerer) lowerDeclStmt(stmt *ast.DeclStmt) {
	for _, ld := range stmt.Decls {
		decl := ld.Node
		ty := l.lowerType(decl.Type)
		l.builder.Emit(&Alloca{Name: decl.Name, Type: ty})

		if decl.Value != nil {
			val := l.lowerExpr(decl.Value)
			l.builder.Emit(&Store{Value: val, Dest: decl.Name, Type: ty})
		}
	}
}

func (l *Lowerer) lowerAssignStmt(stmt *ast.AssignStmt) {
	l.assign(stmt.Target, stmt.Op, stmt.Value)
}

// lowerAssignExpr handles assignment used in expression position, e.g. a
// for-loop's post-clause `i += 1` (parsed as a BinaryExpr, not an
// AssignStmt, since ForStmt.Post is an Expr - see parser.parseAssignExpr).
func (l *Lowerer) lowerAssignExpr(bin *ast.BinaryExpr) string {
	return l.assign(bin.Left, bin.Op, bin.Right)
}

// assign lowers target op= value (or target = value), storing the result
// and returning the value that was stored.
func (l *Lowerer) assign(target ast.Expr, op string, value ast.Expr) string {
	ident, ok := target.(*ast.Ident)
	if !ok {
		return "undef"
	}

	ty := &PrimitiveType{Name: "i32"}

	if op == "=" {
		val := l.lowerExpr(value)
		l.builder.Emit(&Store{Value: val, Dest: ident.Name, Type: ty})

		return val
	}

	// Compound assignment (+=, -=, ...): load, apply, store back.
	binOp := l.binOpKind(compoundBaseOp(op))
	cur := l.newTemp()
	l.builder.Emit(&Load{Dest: cur, Source: ident.Name, Type: ty})
	rhs := l.lowerExpr(value)
	result := l.newTemp()
	l.builder.Emit(&BinOp{Dest: result, Op: binOp, Left: cur, Right: rhs, Type: ty})
	l.builder.Emit(&Store{Value: result, Dest: ident.Name, Type: ty})

	return result
}

// isAssignOp reports whether op is one of the assignment operators the
// parser folds into a BinaryExpr when used in expression position (mirrors
// parser.isAssignOp).
func isAssignOp(op string) bool {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=":
		return true
	default:
		return false
	}
}

// compoundBaseOp strips the trailing "=" from a compound assignment operator,
// e.g. "+=" -> "+".
func compoundBaseOp(op string) string {
	if len(op) > 1 && op[len(op)-1] == '=' {
		return op[:len(op)-1]
	}

	return op
}

func (l *Lowerer) lowerExpr(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		if isAssignOp(e.Op) {
			return l.lowerAssignExpr(e)
		}

		left := l.lowerExpr(e.Left)
		right := l.lowerExpr(e.Right)
		result := l.newTemp()
		op := l.binOpKind(e.Op)
		l.builder.Emit(&BinOp{Dest: result, Op: op, Left: left, Right: right, Type: &PrimitiveType{Name: "i32"}})

		return result
	case *ast.UnaryExpr:
		return l.lowerExpr(e.Expr)
	case *ast.Ident:
		result := l.newTemp()
		l.builder.Emit(&Load{Dest: result, Source: e.Name, Type: &PrimitiveType{Name: "i32"}})

		return result
	case *ast.IntLit:
		return e.Value
	case *ast.BoolLit:
		if e.Value {
			return "1"
		}

		return "0"
	case *ast.StringLit:
		l.strCounter++
		globalName := fmt.Sprintf(".str.%d", l.strCounter)
		l.module.Globals = append(l.module.Globals, &GlobalString{
			Name:  globalName,
			Value: e.Value,
		})

		return "@" + globalName
	case *ast.CallExpr:
		return l.lowerCallExpr(e)
	case *ast.PropagateExpr:
		return l.lowerPropagateExpr(e)
	default:
		return "undef"
	}
}

func (l *Lowerer) lowerCallExpr(call *ast.CallExpr) string {
	var calleeName string
	if ident, ok := call.Callee.(*ast.Ident); ok {
		calleeName = ident.Name
	} else {
		return "undef"
	}

	args := make([]string, len(call.Args))
	for i, arg := range call.Args {
		args[i] = l.lowerExpr(arg)
	}

	var (
		retTy Type
		dest  string
	)

	if calleeName == "println" || calleeName == "panic" {
		retTy = &PrimitiveType{Name: "void"}
		dest = ""
	} else {
		retTy = l.getFunctionReturnType(calleeName)
		dest = l.newTemp()
	}

	l.builder.Emit(&Call{
		Dest:   dest,
		Callee: calleeName,
		Args:   args,
		RetTy:  retTy,
	})

	return dest
}

func (l *Lowerer) getFunctionReturnType(name string) Type {
	for _, fn := range l.module.Functions {
		if fn.Name == name {
			return fn.RetTy
		}
	}

	return &PrimitiveType{Name: "i32"}
}

func (l *Lowerer) lowerType(astType ast.Type) Type {
	if astType == nil {
		return &PrimitiveType{Name: "void"}
	}

	switch t := astType.(type) {
	case *ast.TypePath:
		if len(t.Path) == 1 {
			return &PrimitiveType{Name: t.Path[0]}
		}

		return &PrimitiveType{Name: "i32"}
	case *ast.VoidType:
		return &PrimitiveType{Name: "void"}
	case *ast.PtrType:
		return &PtrType{Elem: l.lowerType(t.Elem)}
	case *ast.RefType:
		return &PtrType{Elem: l.lowerType(t.Elem)}
	default:
		return &PrimitiveType{Name: "i32"}
	}
}

func (l *Lowerer) binOpKind(op string) OpKind {
	switch op {
	case "+":
		return Add
	case "-":
		return Sub
	case "*":
		return Mul
	case "/":
		return Div
	case "%":
		return Mod
	case "&":
		return And
	case "|":
		return Or
	case "^":
		return Xor
	case "<<":
		return Shl
	case ">>":
		return Shr
	case "==":
		return Eq
	case "!=":
		return Ne
	case "<":
		return Lt
	case "<=":
		return Le
	case ">":
		return Gt
	case ">=":
		return Ge
	default:
		return Add
	}
}

// lowerIfStmt implements spec §4.2.2's If/else rule, including the
// three-way end-block distinction from spec §9: when both branches
// terminate, control never switches to the end block at all, leaving the
// current block Filled so the enclosing LowerSequence's unreachable check
// fires on whatever (non-jump-target) statement follows.
func (l *Lowerer) lowerIfStmt(stmt *ast.IfStmt) {
	cond := l.lowerExpr(stmt.Cond)

	ifBody := l.builder.NewBlock("if_body")
	end := l.builder.NewBlock("end")

	if stmt.Else == nil {
		l.builder.CondBranch(cond, ifBody, end)

		l.builder.SwitchTo(ifBody)
		l.lowerBlock(stmt.Then)
		l.builder.Jump(end)

		l.builder.SwitchTo(end)

		return
	}

	elseBody := l.builder.NewBlock("else_body")
	l.builder.CondBranch(cond, ifBody, elseBody)

	l.builder.SwitchTo(ifBody)
	l.lowerBlock(stmt.Then)
	ifHasReturn := l.builder.Current().IsFilled()
	l.builder.Jump(end)

	l.builder.SwitchTo(elseBody)
	l.lowerElseBranch(stmt.Else)

	switch {
	case !l.builder.Current().IsFilled():
		l.builder.Jump(end)
		l.builder.SwitchTo(end)
	case !ifHasReturn:
		l.builder.SwitchTo(end)
	}
}

func (l *Lowerer) lowerElseBranch(s ast.Stmt) {
	if block, ok := s.(*ast.Block); ok {
		l.LowerSequence(block.Stmts)
		return
	}

	l.LowerSequence([]ast.Stmt{s})
}

// enterLoop creates the loop's (header, end) pair, pushes it onto the loop
// stack, and sets lastSawLoop - returning the prior value for exitLoop to
// restore (spec §4.2.2, "Loop helper").
func (l *Lowerer) enterLoop() (header, end *BasicBlock, prevLastSawLoop bool) {
	header = l.builder.NewBlock("loop_body")
	end = l.builder.NewBlock("end")

	l.loopStack = append(l.loopStack, &LoopContext{Continue: header, Break: end})
	prevLastSawLoop = l.lastSawLoop
	l.lastSawLoop = true

	l.builder.Jump(header)
	l.builder.SwitchTo(header)

	return header, end, prevLastSawLoop
}

func (l *Lowerer) exitLoop(prevLastSawLoop bool) {
	l.loopStack = l.loopStack[:len(l.loopStack)-1]
	l.lastSawLoop = prevLastSawLoop
}

// lowerWhileStmt implements spec §4.2.2's While rule. A nil Cond means an
// unconditional loop (the desugared form of for(;;)).
func (l *Lowerer) lowerWhileStmt(stmt *ast.WhileStmt) {
	header, end, prev := l.enterLoop()

	if stmt.Cond != nil {
		cond := l.lowerExpr(stmt.Cond)
		body := l.builder.NewBlock("body")
		l.builder.CondBranch(cond, body, end)
		l.builder.SwitchTo(body)
	}

	if stmt.Body != nil {
		l.LowerSequence(stmt.Body.Stmts)
	}

	l.builder.Jump(header)

	l.builder.SwitchTo(end)
	l.exitLoop(prev)
}

// lowerDoStmt implements spec §4.2.2's Do-while rule: the body runs before
// the condition is tested. If the body already filled the current block,
// the condition is dead code and a diagnostic is raised at its location -
// but unlike the original reference implementation, lowering still pops the
// loop context afterward (spec §5's resource-discipline requirement).
func (l *Lowerer) lowerDoStmt(stmt *ast.DoStmt) {
	header, end, prev := l.enterLoop()

	if stmt.Body != nil {
		l.LowerSequence(stmt.Body.Stmts)
	}

	if l.builder.Current().IsFilled() {
		l.errorAt(diag.UnreachableStatement, stmt.Cond.Location())
	} else {
		cond := l.lowerExpr(stmt.Cond)
		l.builder.CondBranch(cond, header, end)
	}

	l.builder.SwitchTo(end)
	l.exitLoop(prev)
}

// lowerForStmt implements spec §4.2.2's For rule: the optional init runs
// first, the optional post is spliced onto the end of the body, and the
// result is delegated entirely to the While rule. Because While's
// fallthrough block (the body) is distinct from the loop header, a continue
// inside the body jumps straight to the header and skips the spliced post -
// this is the literal behavior of the reference implementation this is
// grounded on, preserved here rather than "corrected".
func (l *Lowerer) lowerForStmt(stmt *ast.ForStmt) {
	if stmt.Init != nil {
		l.lowerStmt(stmt.Init)
	}

	body := spliceForPost(stmt.Body, stmt.Post, stmt.Loc)

	l.lowerWhileStmt(&ast.WhileStmt{Cond: stmt.Cond, Body: body, Loc: stmt.Loc})
}

func spliceForPost(body *ast.Block, post ast.Expr, loc ast.Location) *ast.Block {
	if post == nil {
		return body
	}

	postStmt := &ast.ExprStmt{Expr: post, Loc: post.Location()}

	if body == nil {
		return &ast.Block{Stmts: []ast.Stmt{postStmt}, Loc: loc}
	}

	stmts := make([]ast.Stmt, 0, len(body.Stmts)+1)
	stmts = append(stmts, body.Stmts...)
	stmts = append(stmts, postStmt)

	return &ast.Block{Stmts: stmts, Loc: body.Loc}
}

// lowerSwitchStmt implements spec §4.2.2's Switch rule: the scrutinee is
// evaluated in the calling block, which then jumps to a dummy block; the
// body is lowered into a fresh start block with last_saw_loop cleared and a
// SwitchContext pushed; once the body is lowered, the dummy block is filled
// in with the jump table and control resumes in the switch's end block.
func (l *Lowerer) lowerSwitchStmt(stmt *ast.SwitchStmt) {
	scrutinee := l.lowerExpr(stmt.Tag)

	dummy := l.builder.NewBlock("switch_dummy")
	l.builder.Jump(dummy)

	start := l.builder.NewBlock("switch_start")
	l.builder.SwitchTo(start)

	prevLastSawLoop := l.lastSawLoop
	l.lastSawLoop = false

	end := l.builder.NewBlock("switch_end")
	ctx := &SwitchContext{Seen: make(map[uint64]bool), End: end}
	l.switchStack = append(l.switchStack, ctx)

	l.lowerStmt(stmt.Body)

	l.switchStack = l.switchStack[:len(l.switchStack)-1]
	l.lastSawLoop = prevLastSawLoop

	l.builder.Jump(end)

	l.builder.SwitchTo(dummy)
	def := end
	if ctx.Default != nil {
		def = ctx.Default
	}
	l.builder.EmitSwitch(scrutinee, ctx.Cases, def)

	l.builder.SwitchTo(end)
}

func (l *Lowerer) lowerCaseStmt(stmt *ast.CaseStmt) {
	if len(l.switchStack) == 0 {
		l.collector.Push(diag.SemanticError{SubKind: diag.CaseOutsideSwitchKind, IsDefault: false}, stmt.Loc)
	} else {
		ctx := l.switchStack[len(l.switchStack)-1]
		cur := l.builder.Current()

		if cur.IsPristine() {
			if ctx.Seen[stmt.Value] {
				l.collector.Push(diag.SemanticError{SubKind: diag.DuplicateCaseKind, IsDefault: false}, stmt.Loc)
			} else {
				ctx.Seen[stmt.Value] = true
				ctx.Cases = append(ctx.Cases, CaseEntry{Const: stmt.Value, Target: cur.Label})
			}
		} else {
			isDup := ctx.Seen[stmt.Value]
			if isDup {
				l.collector.Push(diag.SemanticError{SubKind: diag.DuplicateCaseKind, IsDefault: false}, stmt.Loc)
			}

			nb := l.builder.NewBlock("case")
			if !isDup {
				ctx.Seen[stmt.Value] = true
				ctx.Cases = append(ctx.Cases, CaseEntry{Const: stmt.Value, Target: nb.Label})
			}

			l.builder.Jump(nb)
			l.builder.SwitchTo(nb)
		}
	}

	if stmt.Inner != nil {
		l.lowerStmt(stmt.Inner)
	}
}

func (l *Lowerer) lowerDefaultStmt(stmt *ast.DefaultStmt) {
	if len(l.switchStack) == 0 {
		l.collector.Push(diag.SemanticError{SubKind: diag.CaseOutsideSwitchKind, IsDefault: true}, stmt.Loc)
	} else {
		ctx := l.switchStack[len(l.switchStack)-1]
		cur := l.builder.Current()

		if cur.IsPristine() {
			if ctx.Default != nil {
				l.collector.Push(diag.SemanticError{SubKind: diag.DuplicateCaseKind, IsDefault: true}, stmt.Loc)
			} else {
				ctx.Default = cur
			}
		} else {
			isDup := ctx.Default != nil
			if isDup {
				l.collector.Push(diag.SemanticError{SubKind: diag.DuplicateCaseKind, IsDefault: true}, stmt.Loc)
			}

			nb := l.builder.NewBlock("default")
			if !isDup {
				ctx.Default = nb
			}

			l.builder.Jump(nb)
			l.builder.SwitchTo(nb)
		}
	}

	if stmt.Inner != nil {
		l.lowerStmt(stmt.Inner)
	}
}

// lowerLabeledStmt creates the label's block and switches to it before
// recording the name, so the block exists even when the name turns out to
// be a duplicate. Per spec §4.2.2's Label rule, a redeclaration raises a
// diagnostic but lowering continues into Inner.
func (l *Lowerer) lowerLabeledStmt(stmt *ast.LabeledStmt) {
	nb := l.builder.NewBlock("label_" + stmt.Name)
	l.builder.Jump(nb)
	l.builder.SwitchTo(nb)

	if _, dup := l.labels[stmt.Name]; dup {
		l.collector.Push(diag.SemanticError{SubKind: diag.LabelRedeclarationKind, Detail: stmt.Name}, stmt.Loc)
	} else {
		l.labels[stmt.Name] = nb
	}

	if stmt.Inner != nil {
		l.lowerStmt(stmt.Inner)
	}
}

// lowerGotoStmt resolves against labels seen so far in this single forward
// pass - a goto to a label declared later in the same function will not
// resolve, matching the reference implementation this is grounded on.
func (l *Lowerer) lowerGotoStmt(stmt *ast.GotoStmt) {
	target, ok := l.labels[stmt.Name]
	if !ok {
		l.collector.Push(diag.SemanticError{SubKind: diag.UndeclaredLabelKind, Detail: stmt.Name}, stmt.Loc)
		return
	}

	l.builder.Jump(target)
}

// lowerLoopExit implements spec §4.2.2's break/continue decision table.
// lastSawLoop records whether the innermost enclosing construct is a loop
// (routes through loopStack) or a switch (break jumps to its end block,
// continue is always an error).
func (l *Lowerer) lowerLoopExit(isBreak bool, loc ast.Location) {
	if l.lastSawLoop {
		if len(l.loopStack) == 0 {
			l.errorAt(diag.BreakContinueOutsideScope, loc)
			return
		}

		ctx := l.loopStack[len(l.loopStack)-1]
		if isBreak {
			l.builder.Jump(ctx.Break)
		} else {
			l.builder.Jump(ctx.Continue)
		}

		return
	}

	if !isBreak {
		l.errorAt(diag.BreakContinueOutsideScope, loc)
		return
	}

	if len(l.switchStack) == 0 {
		l.errorAt(diag.BreakContinueOutsideScope, loc)
		return
	}

	ctx := l.switchStack[len(l.switchStack)-1]
	l.builder.Jump(ctx.End)
}

// lowerDeferStmt lowers a defer statement to DeferPush instruction
func (l *Lowerer) lowerDeferStmt(stmt *ast.DeferStmt) {
	callExpr, ok := stmt.Expr.(*ast.CallExpr)
	if !ok {
		return
	}

	var calleeName string
	if ident, ok := callExpr.Callee.(*ast.Ident); ok {
		calleeName = ident.Name
	} else {
		return
	}

	args := make([]string, len(callExpr.Args))
	for i, arg := range callExpr.Args {
		args[i] = l.lowerExpr(arg)
	}

	retTy := l.getFunctionReturnType(calleeName)

	call := &Call{
		Dest:   "",
		Callee: calleeName,
		Args:   args,
		RetTy:  retTy,
	}

	l.builder.Emit(&DeferPush{Call: call})
}

// lowerPropagateExpr lowers ? operator for Result<T,E> error propagation
// Following SPEC_FULL.md §4's supplemental sugar:
//
//	t = X
//	if is_err(t) { return Err(extract_err(t)) }
//	v = extract_ok(t)
//
// is_err/extract_err/extract_ok have no Result<T,E> runtime support here:
// the error check compares the value with itself using ne, which is always
// false, so the error branch is never taken.
func (l *Lowerer) lowerPropagateExpr(expr *ast.PropagateExpr) string {
	resultVal := l.lowerExpr(expr.Expr)

	checkBlock := l.builder.NewBlock("check")
	errorBlock := l.builder.NewBlock("error")
	okBlock := l.builder.NewBlock("ok")

	l.builder.Jump(checkBlock)
	l.builder.SwitchTo(checkBlock)

	isErrTemp := l.newTemp()
	l.builder.Emit(&BinOp{
		Dest:  isErrTemp,
		Op:    Ne,
		Left:  resultVal,
		Right: resultVal,
		Type:  &PrimitiveType{Name: "i1"},
	})
	l.builder.CondBranch(isErrTemp, errorBlock, okBlock)

	l.builder.SwitchTo(errorBlock)
	l.builder.Emit(&DeferRunAll{})
	l.builder.Return(resultVal, &PrimitiveType{Name: "i32"})

	l.builder.SwitchTo(okBlock)

	return resultVal
}
