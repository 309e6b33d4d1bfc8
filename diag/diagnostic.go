// Package diag implements the shared diagnostic collector and recoverable
// result protocol consumed by the lexer, parser, checker, and mir lowerer.
package diag

import (
	"fmt"

	"github.com/yarlson/yarlang/ast"
)

// Location is re-exported from ast so callers never need to import both
// packages just to attach a position to a diagnostic.
type Location = ast.Location

// Located pairs a payload with the Location it was produced at (spec §3).
type Located[T any] = ast.Located[T]

// Kind is the top-level error taxonomy (spec §7). Open/non-exhaustive:
// callers switching over Kind must carry a default branch.
type Kind int

const (
	_ Kind = iota
	KindLex
	KindSyntax
	KindPreprocessor
	KindSemantic
)

func (k Kind) tag() string {
	switch k {
	case KindLex:
		return "invalid token"
	case KindSyntax:
		return "invalid syntax"
	case KindPreprocessor:
		return "invalid macro"
	case KindSemantic:
		return "invalid program"
	default:
		return "invalid program"
	}
}

// Lex sub-variants.
type LexError struct {
	Sub string // e.g. "unterminated block comment", "unterminated string", "illegal character"
}

func (e LexError) Kind() Kind      { return KindLex }
func (e LexError) Message() string { return e.Sub }

// Syntax sub-variants.
type SyntaxError struct {
	Sub string // e.g. "unexpected end-of-file", "non-statement where statement expected"
}

func (e SyntaxError) Kind() Kind      { return KindSyntax }
func (e SyntaxError) Message() string { return e.Sub }

// Preprocessor sub-variants.
type PreprocessorError struct {
	Sub string // e.g. "unexpected directive", "unterminated directive", "unexpected #endif", "empty #if", "invalid token in directive"
}

func (e PreprocessorError) Kind() Kind      { return KindPreprocessor }
func (e PreprocessorError) Message() string { return e.Sub }

// SemanticKind names the structured semantic sub-variants from spec §7.
type SemanticKind string

const (
	UndeclaredIdentifier      SemanticKind = "undeclared identifier"
	TypeMismatch              SemanticKind = "type mismatch"
	ConstantOverflow          SemanticKind = "constant overflow"
	NotAConstantExpression    SemanticKind = "not a constant expression"
	NotAssignable             SemanticKind = "not assignable"
	InvalidAddressOf          SemanticKind = "invalid address-of"
	DivideByZero              SemanticKind = "divide by zero"
	NegativeShiftAmount       SemanticKind = "negative shift amount"
	ShiftAmountExceedsWidth   SemanticKind = "shift amount exceeds type width"
	UnreachableStatement      SemanticKind = "unreachable statement"
	LabelRedeclarationKind    SemanticKind = "label redeclaration"
	UndeclaredLabelKind       SemanticKind = "undeclared label"
	CaseOutsideSwitchKind     SemanticKind = "case/default outside switch"
	DuplicateCaseKind         SemanticKind = "duplicate case/default"
	InvalidVoidParameter      SemanticKind = "invalid void parameter"
	TypedefInExpressionCtx    SemanticKind = "typedef in expression context"
	BreakContinueOutsideScope SemanticKind = "break/continue not in loop or switch"
)

// SemanticError is the catch-all Semantic ErrorKind (spec §7): everything
// the lowerer and type checker diagnose. Fields beyond Kind/Detail are
// populated only by the sub-variants that need them.
type SemanticError struct {
	SubKind SemanticKind
	Detail  string // free-form detail, e.g. identifier/label name, type name

	// IsDefault distinguishes the "default" flavor of CaseOutsideSwitch /
	// DuplicateCase from the "case" flavor, per spec §7's "(default-flagged)".
	IsDefault bool

	// LeftShift distinguishes the left/right flavor of NegativeShiftAmount.
	LeftShift bool
}

func (e SemanticError) Kind() Kind { return KindSemantic }
func (e SemanticError) Message() string {
	switch e.SubKind {
	case CaseOutsideSwitchKind:
		if e.IsDefault {
			return "default outside switch"
		}

		return "case outside switch"
	case DuplicateCaseKind:
		if e.IsDefault {
			return "duplicate default"
		}

		return "duplicate case"
	case NegativeShiftAmount:
		if e.LeftShift {
			return "negative left shift amount"
		}

		return "negative right shift amount"
	case UndeclaredIdentifier, UndeclaredLabelKind, LabelRedeclarationKind:
		if e.Detail != "" {
			return string(e.SubKind) + ": " + e.Detail
		}

		return string(e.SubKind)
	default:
		if e.Detail != "" {
			return string(e.SubKind) + ": " + e.Detail
		}

		return string(e.SubKind)
	}
}

// ErrorKind is the unified error interface every diagnostic payload
// implements (spec §3, §7). Open/non-exhaustive: new variants may be added,
// so consumers must tolerate an unrecognized Kind() via a default branch.
type ErrorKind interface {
	Kind() Kind
	Message() string
}

// Diagnostic is a Located<ErrorKind> (spec §3).
type Diagnostic struct {
	Err ErrorKind
	Loc Location
}

// String renders the stable "<kind tag>: <specific message>" textual format
// from spec §7. Location is rendered by the driver, not here.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Err.Kind().tag(), d.Err.Message())
}

// Warning is a located, non-fatal diagnostic (spec §4.1 warn).
type Warning struct {
	Message string
	Loc     Location
}

func (w Warning) String() string {
	return "warning: " + w.Message
}
