package codegen

import (
	"fmt"

	"github.com/yarlson/yarlang/mir"
	"tinygo.org/x/go-llvm"
)

// Codegen lowers a *mir.Module straight to LLVM IR: mir.BasicBlocks become
// llvm.BasicBlocks, the switch jump table becomes CreateSwitch, and every
// other mir.Instruction has a direct LLVM builder counterpart (spec's
// domain-stack plan for this package - see SPEC_FULL.md §3).
type Codegen struct {
	module  llvm.Module
	builder llvm.Builder
	context llvm.Context

	functions map[string]llvm.Value
	fnTypes   map[string]llvm.Type

	// per-function state, reset in genFunction
	blocks        map[string]llvm.BasicBlock
	values        map[string]llvm.Value // register name -> value
	allocas       map[string]llvm.Value // stack-slot name -> alloca
	deferredCalls []*mir.Call
}

// NewCodegen returns a Codegen targeting a fresh LLVM module.
func NewCodegen() *Codegen {
	context := llvm.GlobalContext()
	module := context.NewModule("yarlang")
	builder := context.NewBuilder()

	return &Codegen{
		module:    module,
		builder:   builder,
		context:   context,
		functions: make(map[string]llvm.Value),
		fnTypes:   make(map[string]llvm.Type),
	}
}

// GenModule emits mod's globals and functions into the underlying LLVM
// module and returns it, ready for String()/WriteBitcodeToFile.
func (g *Codegen) GenModule(mod *mir.Module) llvm.Module {
	for _, global := range mod.Globals {
		g.genGlobal(global)
	}

	for _, fn := range mod.Functions {
		g.declareFunction(fn)
	}

	for _, fn := range mod.Functions {
		g.genFunction(fn)
	}

	return g.module
}

func (g *Codegen) genGlobal(global mir.Global) {
	switch gl := global.(type) {
	case *mir.GlobalString:
		str := g.context.ConstString(gl.Value, true)
		gv := llvm.AddGlobal(g.module, str.Type(), gl.GlobalName())
		gv.SetInitializer(str)
		gv.SetGlobalConstant(true)
		gv.SetLinkage(llvm.PrivateLinkage)
	}
}

func (g *Codegen) llvmType(t mir.Type) llvm.Type {
	switch ty := t.(type) {
	case *mir.PrimitiveType:
		switch ty.Name {
		case "void":
			return g.context.VoidType()
		case "bool", "i1":
			return g.context.Int1Type()
		case "i8", "u8":
			return g.context.Int8Type()
		case "i16", "u16":
			return g.context.Int16Type()
		case "i64", "u64", "isize", "usize":
			return g.context.Int64Type()
		case "f32":
			return g.context.FloatType()
		case "f64":
			return g.context.DoubleType()
		case "char":
			return g.context.Int32Type()
		default: // i32, u32, and anything else this backend doesn't special-case
			return g.context.Int32Type()
		}
	case *mir.PtrType:
		return llvm.PointerType(g.llvmType(ty.Elem), 0)
	case *mir.StructType:
		fields := make([]llvm.Type, len(ty.Fields))
		for i, f := range ty.Fields {
			fields[i] = g.llvmType(f)
		}

		return g.context.StructType(fields, false)
	default:
		return g.context.Int32Type()
	}
}

func (g *Codegen) declareFunction(fn *mir.Function) {
	paramTypes := make([]llvm.Type, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = g.llvmType(p.Type)
	}

	fnType := llvm.FunctionType(g.llvmType(fn.RetTy), paramTypes, false)
	g.fnTypes[fn.Name] = fnType
	g.functions[fn.Name] = llvm.AddFunction(g.module, fn.Name, fnType)
}

func (g *Codegen) genFunction(fn *mir.Function) {
	llvmFn := g.functions[fn.Name]

	g.blocks = make(map[string]llvm.BasicBlock)
	g.values = make(map[string]llvm.Value)
	g.allocas = make(map[string]llvm.Value)
	g.deferredCalls = nil

	for _, bb := range fn.Blocks {
		g.blocks[bb.Label] = g.context.AddBasicBlock(llvmFn, "bb_"+bb.Label)
	}

	if len(fn.Blocks) == 0 {
		return
	}

	g.builder.SetInsertPointAtEnd(g.blocks[fn.Blocks[0].Label])

	for i, p := range fn.Params {
		ptr := g.builder.CreateAlloca(g.llvmType(p.Type), p.Name)
		g.builder.CreateStore(llvmFn.Param(i), ptr)
		g.allocas[p.Name] = ptr
	}

	for _, bb := range fn.Blocks {
		g.builder.SetInsertPointAtEnd(g.blocks[bb.Label])

		for _, instr := range bb.Instrs {
			g.genInstr(instr)
		}
	}
}

func (g *Codegen) genInstr(instr mir.Instruction) {
	switch in := instr.(type) {
	case *mir.Alloca:
		g.allocas[in.Name] = g.builder.CreateAlloca(g.llvmType(in.Type), in.Name)
	case *mir.Load:
		ptr, ok := g.allocas[in.Source]
		if !ok {
			return
		}

		g.values[in.Dest] = g.builder.CreateLoad(g.llvmType(in.Type), ptr, in.Dest)
	case *mir.Store:
		ptr, ok := g.allocas[in.Dest]
		if !ok {
			return
		}

		g.builder.CreateStore(g.operand(in.Value, in.Type), ptr)
	case *mir.BinOp:
		left := g.operand(in.Left, in.Type)
		right := g.operand(in.Right, in.Type)
		g.values[in.Dest] = g.genBinOp(in.Op, left, right, in.Dest)
	case *mir.Call:
		g.genCall(in)
	case *mir.Ret:
		if in.Value == "" {
			g.builder.CreateRetVoid()
			return
		}

		g.builder.CreateRet(g.operand(in.Value, in.Type))
	case *mir.Br:
		g.builder.CreateBr(g.blocks[in.Label])
	case *mir.CondBr:
		cond := g.operand(in.Cond, &mir.PrimitiveType{Name: "bool"})
		g.builder.CreateCondBr(cond, g.blocks[in.TrueLabel], g.blocks[in.FalseLabel])
	case *mir.Switch:
		scrutinee := g.operand(in.Scrutinee, &mir.PrimitiveType{Name: "i32"})
		sw := g.builder.CreateSwitch(scrutinee, g.blocks[in.Default], len(in.Cases))

		for _, c := range in.Cases {
			sw.AddCase(llvm.ConstInt(scrutinee.Type(), c.Const, false), g.blocks[c.Target])
		}
	case *mir.DeferPush:
		g.deferredCalls = append(g.deferredCalls, in.Call)
	case *mir.DeferRunAll:
		for i := len(g.deferredCalls) - 1; i >= 0; i-- {
			g.genCall(g.deferredCalls[i])
		}

		g.deferredCalls = nil
	}
}

func (g *Codegen) genBinOp(op mir.OpKind, left, right llvm.Value, name string) llvm.Value {
	switch op {
	case mir.Add:
		return g.builder.CreateAdd(left, right, name)
	case mir.Sub:
		return g.builder.CreateSub(left, right, name)
	case mir.Mul:
		return g.builder.CreateMul(left, right, name)
	case mir.Div:
		return g.builder.CreateSDiv(left, right, name)
	case mir.Mod:
		return g.builder.CreateSRem(left, right, name)
	case mir.And:
		return g.builder.CreateAnd(left, right, name)
	case mir.Or:
		return g.builder.CreateOr(left, right, name)
	case mir.Xor:
		return g.builder.CreateXor(left, right, name)
	case mir.Shl:
		return g.builder.CreateShl(left, right, name)
	case mir.Shr:
		return g.builder.CreateAShr(left, right, name)
	case mir.Eq:
		return g.builder.CreateICmp(llvm.IntEQ, left, right, name)
	case mir.Ne:
		return g.builder.CreateICmp(llvm.IntNE, left, right, name)
	case mir.Lt:
		return g.builder.CreateICmp(llvm.IntSLT, left, right, name)
	case mir.Le:
		return g.builder.CreateICmp(llvm.IntSLE, left, right, name)
	case mir.Gt:
		return g.builder.CreateICmp(llvm.IntSGT, left, right, name)
	case mir.Ge:
		return g.builder.CreateICmp(llvm.IntSGE, left, right, name)
	default:
		return left
	}
}

func (g *Codegen) genCall(call *mir.Call) {
	fn, ok := g.functions[call.Callee]
	if !ok {
		return
	}

	fnType := g.fnTypes[call.Callee]

	args := make([]llvm.Value, len(call.Args))
	for i, a := range call.Args {
		args[i] = g.operand(a, &mir.PrimitiveType{Name: "i32"})
	}

	result := g.builder.CreateCall(fnType, fn, args, call.Dest)
	if call.Dest != "" {
		g.values[call.Dest] = result
	}
}

// operand resolves a mir value string, which is either an immediate
// (number literal), a global reference (@name), or a register produced by
// an earlier instruction.
func (g *Codegen) operand(value string, ty mir.Type) llvm.Value {
	if value == "" {
		return llvm.Value{}
	}

	if v, ok := g.values[value]; ok {
		return v
	}

	if len(value) > 0 && value[0] == '@' {
		return g.module.NamedGlobal(value[1:])
	}

	var n int64
	if _, err := fmt.Sscanf(value, "%d", &n); err == nil {
		return llvm.ConstInt(g.llvmType(ty), uint64(n), true)
	}

	return llvm.ConstInt(g.llvmType(ty), 0, false)
}
