package parser

import (
	"fmt"
	"strconv"

	"github.com/yarlson/yarlang/ast"
	"github.com/yarlson/yarlang/diag"
	"github.com/yarlson/yarlang/lexer"
)

// Precedence levels
const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -= *= /= %= &= |= ^= <<= >>= (right-associative)
	OR          // ||
	AND         // &&
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // ! - & *
	CALL        // function() a[i] a.b
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:     ASSIGN,
	lexer.PLUS_EQ:    ASSIGN,
	lexer.MINUS_EQ:   ASSIGN,
	lexer.STAR_EQ:    ASSIGN,
	lexer.SLASH_EQ:   ASSIGN,
	lexer.PERCENT_EQ: ASSIGN,
	lexer.AMP_EQ:     ASSIGN,
	lexer.PIPE_EQ:    ASSIGN,
	lexer.CARET_EQ:   ASSIGN,
	lexer.SHL_EQ:     ASSIGN,
	lexer.SHR_EQ:     ASSIGN,
	lexer.OR:         OR,
	lexer.AND:        AND,
	lexer.EQ:       EQUALS,
	lexer.NEQ:      EQUALS,
	lexer.LT:       LESSGREATER,
	lexer.GT:       LESSGREATER,
	lexer.LTE:      LESSGREATER,
	lexer.GTE:      LESSGREATER,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.STAR:     PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.LPAREN:   CALL,
	lexer.LBRACKET: CALL,
	lexer.DOT:      CALL,
	lexer.QUESTION: CALL,
}

// Parser is a hand-written Pratt parser producing an *ast.File. Syntax
// diagnostics (spec §7) are pushed into the diag.Collector shared with the
// lexer that feeds it.
type Parser struct {
	l         *lexer.Lexer
	collector *diag.Collector
	errors    []string

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// ===== Position helpers =====

func (p *Parser) tokenStartPos() ast.Position {
	return ast.Position{Line: p.curToken.Line, Column: p.curToken.Column, Offset: -1}
}

func (p *Parser) tokenEndPos() ast.Position {
	return ast.Position{Line: p.curToken.Line, Column: p.curToken.Column + len(p.curToken.Literal), Offset: -1}
}

func (p *Parser) tokenLoc() ast.Location {
	return ast.Location{Start: p.tokenStartPos(), End: p.tokenEndPos()}
}

func (p *Parser) makeLoc(start, end ast.Position) ast.Location {
	return ast.Location{Start: start, End: end}
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:         l,
		collector: l.Collector(),
		errors:    []string{},
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.CHAR, p.parseCharLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBoolLiteral)
	p.registerPrefix(lexer.NIL, p.parseNilLiteral)
	p.registerPrefix(lexer.BANG, p.parseUnaryExpr)
	p.registerPrefix(lexer.MINUS, p.parseUnaryExpr)
	p.registerPrefix(lexer.TILDE, p.parseUnaryExpr)
	p.registerPrefix(lexer.STAR, p.parseUnaryExpr)
	p.registerPrefix(lexer.AMP, p.parseUnaryExpr)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpr)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.PLUS, p.parseBinaryExpr)
	p.registerInfix(lexer.MINUS, p.parseBinaryExpr)
	p.registerInfix(lexer.STAR, p.parseBinaryExpr)
	p.registerInfix(lexer.SLASH, p.parseBinaryExpr)
	p.registerInfix(lexer.PERCENT, p.parseBinaryExpr)
	p.registerInfix(lexer.EQ, p.parseBinaryExpr)
	p.registerInfix(lexer.NEQ, p.parseBinaryExpr)
	p.registerInfix(lexer.LT, p.parseBinaryExpr)
	p.registerInfix(lexer.GT, p.parseBinaryExpr)
	p.registerInfix(lexer.LTE, p.parseBinaryExpr)
	p.registerInfix(lexer.GTE, p.parseBinaryExpr)
	p.registerInfix(lexer.AND, p.parseBinaryExpr)
	p.registerInfix(lexer.OR, p.parseBinaryExpr)
	p.registerInfix(lexer.LPAREN, p.parseCallExpr)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpr)
	p.registerInfix(lexer.DOT, p.parseFieldExpr)
	p.registerInfix(lexer.QUESTION, p.parsePropagateExpr)
	p.registerInfix(lexer.ASSIGN, p.parseAssignExpr)
	p.registerInfix(lexer.PLUS_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.MINUS_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.STAR_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.SLASH_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.PERCENT_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.AMP_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.PIPE_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.CARET_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.SHL_EQ, p.parseAssignExpr)
	p.registerInfix(lexer.SHR_EQ, p.parseAssignExpr)

	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()

	for p.peekToken.Type == lexer.NEWLINE || p.peekToken.Type == lexer.COMMENT {
		p.peekToken = p.l.NextToken()
	}
}

// Errors returns the accumulated syntax error messages.
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) peekError(t lexer.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead at line %d",
		t, p.peekToken.Type, p.peekToken.Line)
	p.errors = append(p.errors, msg)
	p.collector.Push(diag.SyntaxError{Sub: msg}, p.tokenLoc())
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}

	p.peekError(t)

	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}

	return LOWEST
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// ===== Top level =====

// ParseFile parses an entire source file into an *ast.File (spec §3's
// statement tree sits inside each FuncDecl.Body).
func (p *Parser) ParseFile() *ast.File {
	file := &ast.File{}

	if p.curTokenIs(lexer.MODULE) {
		p.nextToken()

		for p.curTokenIs(lexer.IDENT) {
			file.Module = append(file.Module, p.curToken.Literal)

			if p.peekTokenIs(lexer.COLONCOLON) {
				p.nextToken()
				p.nextToken()

				continue
			}

			break
		}

		p.nextToken()
	}

	for !p.curTokenIs(lexer.EOF) {
		decl := p.parseTopDecl()
		if decl != nil {
			file.Items = append(file.Items, decl)
		}

		p.nextToken()
	}

	return file
}

func (p *Parser) parseTopDecl() ast.Decl {
	pub := false
	if p.curTokenIs(lexer.PUB) {
		pub = true
		p.nextToken()
	}

	switch p.curToken.Type {
	case lexer.USE:
		return p.parseUseDecl()
	case lexer.CONST:
		return p.parseConstDecl()
	case lexer.TYPE:
		return p.parseTypeAlias()
	case lexer.STRUCT:
		return p.parseStructDecl(pub)
	case lexer.ENUM:
		return p.parseEnumDecl(pub)
	case lexer.TRAIT:
		return p.parseTraitDecl(pub)
	case lexer.IMPL:
		return p.parseImplBlock()
	case lexer.FN:
		return p.parseFuncDecl(pub)
	default:
		msg := fmt.Sprintf("expected top-level declaration, got %s instead at line %d",
			p.curToken.Type, p.curToken.Line)
		p.errors = append(p.errors, msg)
		p.collector.Push(diag.SyntaxError{Sub: msg}, p.tokenLoc())

		return nil
	}
}

func (p *Parser) parseUseDecl() ast.Decl {
	start := p.tokenStartPos()

	p.nextToken()

	path := []string{}
	for p.curTokenIs(lexer.IDENT) {
		path = append(path, p.curToken.Literal)

		if p.peekTokenIs(lexer.COLONCOLON) {
			p.nextToken()
			p.nextToken()

			continue
		}

		break
	}

	alias := ""
	if p.peekTokenIs(lexer.AS) {
		p.nextToken()

		if p.expectPeek(lexer.IDENT) {
			alias = p.curToken.Literal
		}
	}

	return &ast.UseDecl{Path: path, Alias: alias, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parseConstDecl() ast.Decl {
	start := p.tokenStartPos()

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	name := p.curToken.Literal

	var typ ast.Type
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()

		typ = p.parseType()
	}

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}

	p.nextToken()

	value := p.parseExpression(LOWEST)

	return &ast.ConstDecl{Name: name, Type: typ, Value: value, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parseTypeAlias() ast.Decl {
	start := p.tokenStartPos()

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	name := p.curToken.Literal

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}

	p.nextToken()

	typ := p.parseType()

	return &ast.TypeAlias{Name: name, Type: typ, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parseStructDecl(pub bool) ast.Decl {
	start := p.tokenStartPos()

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	name := p.curToken.Literal

	tparams := p.parseOptionalTypeParams()

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	p.nextToken()

	fields := []ast.Field{}
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if !p.curTokenIs(lexer.IDENT) {
			p.nextToken()
			continue
		}

		fname := p.curToken.Literal

		if !p.expectPeek(lexer.COLON) {
			return nil
		}

		p.nextToken()

		ftype := p.parseType()

		fields = append(fields, ast.Field{Name: fname, Type: ftype})

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}

		p.nextToken()
	}

	return &ast.StructDecl{Pub: pub, Name: name, TParams: tparams, Fields: fields, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parseEnumDecl(pub bool) ast.Decl {
	start := p.tokenStartPos()

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	name := p.curToken.Literal
	tparams := p.parseOptionalTypeParams()

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	p.nextToken()

	variants := []ast.Variant{}
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if !p.curTokenIs(lexer.IDENT) {
			p.nextToken()
			continue
		}

		vname := p.curToken.Literal

		var types []ast.Type
		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			p.nextToken()

			for !p.curTokenIs(lexer.RPAREN) && !p.curTokenIs(lexer.EOF) {
				types = append(types, p.parseType())

				if p.peekTokenIs(lexer.COMMA) {
					p.nextToken()
					p.nextToken()

					continue
				}

				break
			}

			p.nextToken() // consume )
		}

		variants = append(variants, ast.Variant{Name: vname, Types: types})

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}

		p.nextToken()
	}

	return &ast.EnumDecl{Pub: pub, Name: name, TParams: tparams, Variants: variants, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parseTraitDecl(pub bool) ast.Decl {
	start := p.tokenStartPos()

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	name := p.curToken.Literal
	tparams := p.parseOptionalTypeParams()

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	p.nextToken()

	sigs := []ast.FnSig{}
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if !p.curTokenIs(lexer.FN) {
			p.nextToken()
			continue
		}

		sigs = append(sigs, p.parseFnSig())
		p.nextToken()
	}

	return &ast.TraitDecl{Pub: pub, Name: name, TParams: tparams, Sigs: sigs, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parseFnSig() ast.FnSig {
	p.nextToken() // consume 'fn'

	name := p.curToken.Literal

	p.expectPeek(lexer.LPAREN)

	params := p.parseParamList()

	var ret ast.Type
	if p.peekTokenIs(lexer.ARROW) {
		p.nextToken()
		p.nextToken()

		ret = p.parseType()
	}

	return ast.FnSig{Name: name, Params: params, Return: ret}
}

func (p *Parser) parseImplBlock() ast.Decl {
	start := p.tokenStartPos()

	p.nextToken()

	first := p.parseType()

	var trait *ast.TypePath
	var forType ast.Type

	if p.peekTokenIs(lexer.FOR) {
		if tp, ok := first.(*ast.TypePath); ok {
			trait = tp
		}

		p.nextToken()
		p.nextToken()

		forType = p.parseType()
	} else {
		forType = first
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	p.nextToken()

	fns := []*ast.FuncDecl{}
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if !p.curTokenIs(lexer.FN) && !p.curTokenIs(lexer.PUB) {
			p.nextToken()
			continue
		}

		pub := false
		if p.curTokenIs(lexer.PUB) {
			pub = true
			p.nextToken()
		}

		if fn, ok := p.parseFuncDecl(pub).(*ast.FuncDecl); ok {
			fns = append(fns, fn)
		}

		p.nextToken()
	}

	return &ast.ImplBlock{Trait: trait, For: forType, Fns: fns, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parseOptionalTypeParams() []string {
	if !p.peekTokenIs(lexer.LT) {
		return nil
	}

	p.nextToken()
	p.nextToken()

	var tparams []string
	for p.curTokenIs(lexer.IDENT) {
		tparams = append(tparams, p.curToken.Literal)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()

			continue
		}

		break
	}

	p.expectPeek(lexer.GT)

	return tparams
}

func (p *Parser) parseFuncDecl(pub bool) ast.Decl {
	start := p.tokenStartPos()

	p.nextToken() // consume 'fn'

	if !p.curTokenIs(lexer.IDENT) {
		p.errors = append(p.errors, "expected function name")
		return nil
	}

	name := p.curToken.Literal
	nameLoc := p.tokenLoc()

	tparams := p.parseOptionalTypeParams()

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	params := p.parseParamList()

	var ret ast.Type
	if p.peekTokenIs(lexer.ARROW) {
		p.nextToken()
		p.nextToken()

		ret = p.parseType()
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	body := p.parseBlock()

	return &ast.FuncDecl{
		Pub: pub, Name: name, TParams: tparams, Params: params, ReturnType: ret,
		Body: body, Loc: p.makeLoc(start, body.Loc.End), NameLoc: nameLoc,
	}
}

func (p *Parser) parseParamList() []ast.Param {
	params := []ast.Param{}

	p.nextToken() // move past (

	if p.curTokenIs(lexer.RPAREN) {
		return params
	}

	params = append(params, p.parseParam())

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()

		params = append(params, p.parseParam())
	}

	p.expectPeek(lexer.RPAREN)

	return params
}

func (p *Parser) parseParam() ast.Param {
	mut := false
	if p.curTokenIs(lexer.MUT) {
		mut = true
		p.nextToken()
	}

	name := p.curToken.Literal

	var typ ast.Type
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()

		typ = p.parseType()
	}

	return ast.Param{Mut: mut, Name: name, Type: typ}
}

// ===== Types =====

func (p *Parser) parseType() ast.Type {
	switch p.curToken.Type {
	case lexer.AMP:
		p.nextToken()

		mut := false
		if p.curTokenIs(lexer.MUT) {
			mut = true
			p.nextToken()
		}

		return &ast.RefType{Mut: mut, Elem: p.parseType()}
	case lexer.STAR:
		p.nextToken()
		return &ast.PtrType{Elem: p.parseType()}
	case lexer.LBRACKET:
		p.nextToken()

		if p.curTokenIs(lexer.RBRACKET) {
			p.nextToken()
			return &ast.SliceType{Elem: p.parseType()}
		}

		elem := p.parseType()
		p.expectPeek(lexer.SEMICOLON)
		p.nextToken()

		lenExpr := p.parseExpression(LOWEST)
		p.expectPeek(lexer.RBRACKET)

		return &ast.ArrayType{Elem: elem, Len: lenExpr}
	case lexer.LPAREN:
		p.nextToken()

		elems := []ast.Type{}
		for !p.curTokenIs(lexer.RPAREN) && !p.curTokenIs(lexer.EOF) {
			elems = append(elems, p.parseType())

			if p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()

				continue
			}

			break
		}

		p.expectPeek(lexer.RPAREN)

		return &ast.TupleType{Elems: elems}
	case lexer.VOID:
		return &ast.VoidType{}
	default:
		path := []string{p.curToken.Literal}

		for p.peekTokenIs(lexer.COLONCOLON) {
			p.nextToken()
			p.nextToken()

			path = append(path, p.curToken.Literal)
		}

		var args []ast.Type
		if p.peekTokenIs(lexer.LT) {
			p.nextToken()
			p.nextToken()

			args = append(args, p.parseType())

			for p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()

				args = append(args, p.parseType())
			}

			p.expectPeek(lexer.GT)
		}

		return &ast.TypePath{Path: path, Args: args}
	}
}

// ===== Statements =====

// parseBlock parses a brace-delimited compound statement (spec §3 Compound).
// curToken on entry must be '{'.
func (p *Parser) parseBlock() *ast.Block {
	start := p.tokenStartPos()
	block := &ast.Block{}

	p.nextToken() // move past {

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStmt()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}

		p.nextToken()
	}

	block.Loc = p.makeLoc(start, p.tokenEndPos())

	return block
}

// parseBody parses either a brace-delimited block or, per C's grammar, a
// single statement standing in for one (e.g. `if (c) return;`).
func (p *Parser) parseBody() *ast.Block {
	if p.curTokenIs(lexer.LBRACE) {
		return p.parseBlock()
	}

	start := p.tokenStartPos()
	stmt := p.parseStmt()

	return &ast.Block{Stmts: []ast.Stmt{stmt}, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.curToken.Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.LET:
		return p.parseDeclStmt(true)
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.DO:
		return p.parseDoStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.SWITCH:
		return p.parseSwitchStmt()
	case lexer.CASE:
		return p.parseCaseStmt()
	case lexer.DEFAULT:
		return p.parseDefaultStmt()
	case lexer.GOTO:
		return p.parseGotoStmt()
	case lexer.BREAK:
		loc := p.tokenLoc()
		p.consumeOptionalSemicolon()

		return &ast.BreakStmt{Loc: loc}
	case lexer.CONTINUE:
		loc := p.tokenLoc()
		p.consumeOptionalSemicolon()

		return &ast.ContinueStmt{Loc: loc}
	case lexer.DEFER:
		return p.parseDeferStmt()
	case lexer.CONST:
		return p.parseConstStmt()
	case lexer.UNSAFE:
		return p.parseUnsafeBlock()
	case lexer.IDENT:
		if p.peekTokenIs(lexer.COLON) {
			return p.parseLabeledStmt()
		}

		if p.peekTokenIs(lexer.COLONASSIGN) {
			return p.parseShortDecl()
		}

		return p.parseExprOrAssignStmt()
	case lexer.SEMICOLON:
		return &ast.ExprStmt{Loc: p.tokenLoc()}
	default:
		return p.parseExprOrAssignStmt()
	}
}

// consumeOptionalSemicolon advances past a trailing ';' if present. Used at
// the tail of statements that may terminate a block instead (e.g. `break`
// as the last statement before '}').
func (p *Parser) consumeOptionalSemicolon() {
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
}

func (p *Parser) parseDeclStmt(consumeSemicolon bool) ast.Stmt {
	start := p.tokenStartPos()

	decls := []ast.Located[*ast.Declarator]{}

	for {
		p.nextToken() // consume 'let' or ','

		mut := false
		if p.curTokenIs(lexer.MUT) {
			mut = true
			p.nextToken()
		}

		declStart := p.tokenStartPos()
		name := p.curToken.Literal

		var typ ast.Type
		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()

			typ = p.parseType()
		}

		var value ast.Expr
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()

			value = p.parseExpression(LOWEST)
		}

		decls = append(decls, ast.Located[*ast.Declarator]{
			Node: &ast.Declarator{Mut: mut, Name: name, Type: typ, Value: value},
			Loc:  p.makeLoc(declStart, p.tokenEndPos()),
		})

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}

		p.nextToken() // move onto ','
	}

	if consumeSemicolon {
		p.consumeOptionalSemicolon()
	}

	return &ast.DeclStmt{Decls: decls, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parseShortDecl() ast.Stmt {
	start := p.tokenStartPos()
	name := p.curToken.Literal

	p.nextToken() // move to :=
	p.nextToken() // move to value

	value := p.parseExpression(LOWEST)
	loc := p.makeLoc(start, p.tokenEndPos())

	p.consumeOptionalSemicolon()

	return &ast.ShortDecl{Name: name, Value: value, Loc: loc}
}

func (p *Parser) parseConstStmt() ast.Stmt {
	start := p.tokenStartPos()

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	name := p.curToken.Literal

	var typ ast.Type
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()

		typ = p.parseType()
	}

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}

	p.nextToken()

	value := p.parseExpression(LOWEST)
	loc := p.makeLoc(start, p.tokenEndPos())

	p.consumeOptionalSemicolon()

	return &ast.ConstStmt{Name: name, Type: typ, Value: value, Loc: loc}
}

func (p *Parser) parseUnsafeBlock() ast.Stmt {
	start := p.tokenStartPos()

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	body := p.parseBlock()

	return &ast.UnsafeBlock{Body: body, Loc: p.makeLoc(start, body.Loc.End)}
}

func (p *Parser) parseDeferStmt() ast.Stmt {
	start := p.tokenStartPos()

	p.nextToken()

	expr := p.parseExpression(LOWEST)
	loc := p.makeLoc(start, p.tokenEndPos())

	p.consumeOptionalSemicolon()

	return &ast.DeferStmt{Expr: expr, Loc: loc}
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.tokenStartPos()

	expr := p.parseExpression(LOWEST)
	loc := p.makeLoc(start, p.tokenEndPos())

	p.consumeOptionalSemicolon()

	return exprToStmt(expr, loc)
}

// exprToStmt converts an expression into an AssignStmt if it is an
// assignment (parsed as a BinaryExpr via parseAssignExpr), or wraps it in a
// bare ExprStmt otherwise.
func exprToStmt(expr ast.Expr, loc ast.Location) ast.Stmt {
	if bin, ok := expr.(*ast.BinaryExpr); ok && isAssignOp(bin.Op) {
		return &ast.AssignStmt{Target: bin.Left, Op: bin.Op, Value: bin.Right, Loc: loc}
	}

	return &ast.ExprStmt{Expr: expr, Loc: loc}
}

func isAssignOp(op string) bool {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=":
		return true
	default:
		return false
	}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.tokenStartPos()

	var value ast.Expr
	if !p.peekTokenIs(lexer.SEMICOLON) && !p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) &&
		p.peekToken.Line == p.curToken.Line {
		p.nextToken()

		value = p.parseExpression(LOWEST)
	}

	loc := p.makeLoc(start, p.tokenEndPos())

	p.consumeOptionalSemicolon()

	return &ast.ReturnStmt{Value: value, Loc: loc}
}

// parseIfStmt parses `if (cond) then [else else-branch]` (spec §3 If).
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.tokenStartPos()

	p.nextToken()

	paren := p.curTokenIs(lexer.LPAREN)
	if paren {
		p.nextToken()
	}

	cond := p.parseExpression(LOWEST)

	if paren {
		p.expectPeek(lexer.RPAREN)
	}

	p.nextToken()

	then := p.parseBody()

	var elseBranch ast.Stmt

	end := then.Loc.End

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		p.nextToken()

		if p.curTokenIs(lexer.IF) {
			elseBranch = p.parseIfStmt()
		} else {
			elseBranch = p.parseBody()
		}

		end = elseBranch.Location().End
	}

	return &ast.IfStmt{Cond: cond, Then: then, Else: elseBranch, Loc: p.makeLoc(start, end)}
}

// parseWhileStmt parses `while (cond) body` (spec §3 While).
func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.tokenStartPos()

	p.nextToken()

	paren := p.curTokenIs(lexer.LPAREN)
	if paren {
		p.nextToken()
	}

	cond := p.parseExpression(LOWEST)

	if paren {
		p.expectPeek(lexer.RPAREN)
	}

	p.nextToken()

	body := p.parseBody()

	return &ast.WhileStmt{Cond: cond, Body: body, Loc: p.makeLoc(start, body.Loc.End)}
}

// parseDoStmt parses `do body while (cond);` (spec §3 Do).
func (p *Parser) parseDoStmt() ast.Stmt {
	start := p.tokenStartPos()

	p.nextToken()

	body := p.parseBody()

	if !p.expectPeek(lexer.WHILE) {
		return nil
	}

	p.nextToken()

	paren := p.curTokenIs(lexer.LPAREN)
	if paren {
		p.nextToken()
	}

	cond := p.parseExpression(LOWEST)

	if paren {
		p.expectPeek(lexer.RPAREN)
	}

	loc := p.makeLoc(start, p.tokenEndPos())

	p.consumeOptionalSemicolon()

	return &ast.DoStmt{Body: body, Cond: cond, Loc: loc}
}

// parseForStmt parses the C-style three-clause `for (init; cond; post) body`
// (spec §3 For). Any clause may be empty.
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.tokenStartPos()

	p.nextToken()

	paren := p.curTokenIs(lexer.LPAREN)
	if paren {
		p.nextToken()
	}

	var init ast.Stmt
	if !p.curTokenIs(lexer.SEMICOLON) {
		init = p.parseForClauseStmt()
	}

	if !p.curTokenIs(lexer.SEMICOLON) {
		p.expectPeek(lexer.SEMICOLON)
	}

	p.nextToken() // move past first ';'

	var cond ast.Expr
	if !p.curTokenIs(lexer.SEMICOLON) {
		cond = p.parseExpression(LOWEST)
		p.nextToken()
	}

	p.nextToken() // move past second ';'

	var post ast.Expr
	closeTok := lexer.RPAREN
	if !paren {
		closeTok = lexer.LBRACE
	}

	if !p.curTokenIs(closeTok) {
		post = p.parseExpression(LOWEST)
		p.nextToken()
	}

	if paren && p.curTokenIs(lexer.RPAREN) {
		p.nextToken()
	}

	body := p.parseBody()

	return &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body, Loc: p.makeLoc(start, body.Loc.End)}
}

// parseForClauseStmt parses the init-clause of a for loop: a declaration,
// assignment, or bare expression, without consuming the clause-terminating
// ';' (the caller does).
func (p *Parser) parseForClauseStmt() ast.Stmt {
	if p.curTokenIs(lexer.LET) {
		return p.parseDeclStmt(false)
	}

	start := p.tokenStartPos()
	expr := p.parseExpression(LOWEST)

	return exprToStmt(expr, p.makeLoc(start, p.tokenEndPos()))
}

// parseSwitchStmt parses `switch (tag) body` (spec §3 Switch, §4.2.2).
func (p *Parser) parseSwitchStmt() ast.Stmt {
	start := p.tokenStartPos()

	p.nextToken()

	paren := p.curTokenIs(lexer.LPAREN)
	if paren {
		p.nextToken()
	}

	tag := p.parseExpression(LOWEST)

	if paren {
		p.expectPeek(lexer.RPAREN)
	}

	p.nextToken()

	body := p.parseStmt()

	return &ast.SwitchStmt{Tag: tag, Body: body, Loc: p.makeLoc(start, p.tokenEndPos())}
}

// parseCaseStmt parses `case <const>: [stmt]` (spec §3 Case). The case
// constant must be a non-negative integer literal; the checker, not the
// parser, rejects out-of-range/signed constants per SPEC_FULL.md §6.
func (p *Parser) parseCaseStmt() ast.Stmt {
	start := p.tokenStartPos()

	p.nextToken()

	neg := false
	if p.curTokenIs(lexer.MINUS) {
		neg = true
		p.nextToken()
	}

	value := uint64(0)

	if p.curTokenIs(lexer.INT) {
		v, err := strconv.ParseUint(p.curToken.Literal, 0, 64)
		if err != nil {
			msg := fmt.Sprintf("invalid case constant %q", p.curToken.Literal)
			p.errors = append(p.errors, msg)
			p.collector.Push(diag.SemanticError{SubKind: diag.ConstantOverflow, Detail: p.curToken.Literal}, p.tokenLoc())
		} else {
			value = v
		}
	}

	if neg {
		p.collector.Push(diag.SemanticError{SubKind: diag.ConstantOverflow, Detail: "negative case constant"}, p.tokenLoc())
	}

	if !p.expectPeek(lexer.COLON) {
		return nil
	}

	var inner ast.Stmt
	if !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()

		inner = p.parseStmt()
	}

	loc := p.makeLoc(start, p.tokenEndPos())

	return &ast.CaseStmt{Value: value, Inner: inner, Loc: loc}
}

// parseDefaultStmt parses `default: [stmt]` (spec §3 Default).
func (p *Parser) parseDefaultStmt() ast.Stmt {
	start := p.tokenStartPos()

	if !p.expectPeek(lexer.COLON) {
		return nil
	}

	var inner ast.Stmt
	if !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()

		inner = p.parseStmt()
	}

	return &ast.DefaultStmt{Inner: inner, Loc: p.makeLoc(start, p.tokenEndPos())}
}

// parseLabeledStmt parses `name: [stmt]` (spec §3 Label). curToken on entry
// is the IDENT; peekToken is ':'.
func (p *Parser) parseLabeledStmt() ast.Stmt {
	start := p.tokenStartPos()
	name := p.curToken.Literal

	p.nextToken() // move to ':'

	var inner ast.Stmt
	if !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()

		inner = p.parseStmt()
	}

	return &ast.LabeledStmt{Name: name, Inner: inner, Loc: p.makeLoc(start, p.tokenEndPos())}
}

// parseGotoStmt parses `goto name;` (spec §3 Goto).
func (p *Parser) parseGotoStmt() ast.Stmt {
	start := p.tokenStartPos()

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	name := p.curToken.Literal
	loc := p.makeLoc(start, p.tokenEndPos())

	p.consumeOptionalSemicolon()

	return &ast.GotoStmt{Name: name, Loc: loc}
}

// ===== Expressions =====

func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}

	leftExp := prefix()

	for !p.peekTokenIs(lexer.EOF) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) noPrefixParseFnError(t lexer.TokenType) {
	msg := fmt.Sprintf("no prefix parse function for %s found at line %d", t, p.curToken.Line)
	p.errors = append(p.errors, msg)
	p.collector.Push(diag.SyntaxError{Sub: msg}, p.tokenLoc())
}

func (p *Parser) parseIdentifier() ast.Expr {
	return &ast.Ident{Name: p.curToken.Literal, Loc: p.tokenLoc()}
}

func (p *Parser) parseIntLiteral() ast.Expr {
	return &ast.IntLit{Value: p.curToken.Literal, Loc: p.tokenLoc()}
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	return &ast.FloatLit{Value: p.curToken.Literal, Loc: p.tokenLoc()}
}

func (p *Parser) parseCharLiteral() ast.Expr {
	return &ast.CharLit{Value: p.curToken.Literal, Loc: p.tokenLoc()}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	loc := ast.Location{
		Start: p.tokenStartPos(),
		End: ast.Position{
			Line:   p.curToken.Line,
			Column: p.curToken.Column + len(p.curToken.Literal) + 2,
			Offset: -1,
		},
	}

	return &ast.StringLit{Value: p.curToken.Literal, Loc: loc}
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	return &ast.BoolLit{Value: p.curTokenIs(lexer.TRUE), Loc: p.tokenLoc()}
}

func (p *Parser) parseNilLiteral() ast.Expr {
	return &ast.NilLit{Loc: p.tokenLoc()}
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	start := p.tokenStartPos()
	op := p.curToken.Literal

	if op == "&" && p.peekTokenIs(lexer.MUT) {
		p.nextToken()

		op = "&mut"
	}

	p.nextToken()

	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}

	return &ast.UnaryExpr{Op: op, Expr: right, Loc: p.makeLoc(start, right.Location().End)}
}

// parseAssignExpr parses assignment as a right-associative expression
// operator, matching C's treatment of '=' (and the compound forms) as an
// expression rather than a statement — needed so a for-loop's post-clause
// (an Expr, not a Stmt) can hold `i += 1`.
func (p *Parser) parseAssignExpr(left ast.Expr) ast.Expr {
	op := p.curToken.Literal

	p.nextToken()

	right := p.parseExpression(ASSIGN - 1)
	if right == nil {
		return nil
	}

	return &ast.BinaryExpr{Left: left, Op: op, Right: right, Loc: p.makeLoc(left.Location().Start, right.Location().End)}
}

func (p *Parser) parseBinaryExpr(left ast.Expr) ast.Expr {
	op := p.curToken.Literal
	precedence := p.curPrecedence()

	p.nextToken()

	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}

	return &ast.BinaryExpr{Left: left, Op: op, Right: right, Loc: p.makeLoc(left.Location().Start, right.Location().End)}
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	p.nextToken()

	exp := p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	start := callee.Location().Start

	args := []ast.Expr{}

	p.nextToken() // move past (

	if p.curTokenIs(lexer.RPAREN) {
		return &ast.CallExpr{Callee: callee, Args: args, Loc: p.makeLoc(start, p.tokenEndPos())}
	}

	args = append(args, p.parseExpression(LOWEST))

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()

		args = append(args, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return &ast.CallExpr{Callee: callee, Args: args, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parseIndexExpr(left ast.Expr) ast.Expr {
	start := left.Location().Start

	p.nextToken()

	index := p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}

	return &ast.IndexExpr{Expr: left, Index: index, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parseFieldExpr(left ast.Expr) ast.Expr {
	start := left.Location().Start

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	return &ast.FieldExpr{Expr: left, Field: p.curToken.Literal, Loc: p.makeLoc(start, p.tokenEndPos())}
}

func (p *Parser) parsePropagateExpr(left ast.Expr) ast.Expr {
	return &ast.PropagateExpr{Expr: left, Loc: p.makeLoc(left.Location().Start, p.tokenEndPos())}
}
