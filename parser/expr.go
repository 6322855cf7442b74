package parser

import (
	"fmt"

	"github.com/justina-lang/justinavm/lexer"
	"github.com/justina-lang/justinavm/token"
	"github.com/justina-lang/justinavm/value"
)

// parseExpression parses one expression via operator-precedence
// climbing (spec §4.E "Operators"), emitting tokens as it goes, and
// returns with *pos at the first lexeme that is not part of the
// expression (a ';', ',', ')', or command keyword).
func (p *Parser) parseExpression(toks []lexer.Lexeme, pos *int, minPrec int) error {
	if err := p.parseUnary(toks, pos); err != nil {
		return err
	}
	for {
		if *pos >= len(toks) || toks[*pos].Type != lexer.Terminal {
			break
		}
		lex := toks[*pos].Literal
		op, ok := LookupOperator(lex, FixInfix)
		if !ok || op.Priority < minPrec {
			break
		}
		lhsOK := p.assignStillOK
		*pos++
		nextMin := op.Priority + 1
		if op.Flags&FlagRightToLeft != 0 || op.Flags&FlagIsAssignment != 0 {
			nextMin = op.Priority
		}
		if err := p.parseExpression(toks, pos, nextMin); err != nil {
			return err
		}
		if op.Flags&FlagIsAssignment != 0 && !lhsOK {
			return fmt.Errorf("operator-not-allowed-here: %q requires an assignable left-hand side", lex)
		}
		code, _ := TerminalCode(lex, FixInfix)
		if _, err := p.Stream.Emit(token.Token{Kind: token.KindTerminal, Code: code}); err != nil {
			return err
		}
		p.assignStillOK = false
	}
	return nil
}

// parseUnary handles optional prefix operators, then a primary, then
// optional postfix ++/--.
func (p *Parser) parseUnary(toks []lexer.Lexeme, pos *int) error {
	if *pos < len(toks) && toks[*pos].Type == lexer.Terminal {
		if op, ok := LookupOperator(toks[*pos].Literal, FixPrefix); ok {
			lex := toks[*pos].Literal
			*pos++
			if err := p.parseUnary(toks, pos); err != nil {
				return err
			}
			if op.Flags&FlagIsAssignment != 0 && !p.lastIsVariable {
				return fmt.Errorf("operator-not-allowed-here: prefix %q requires a variable operand", lex)
			}
			code, _ := TerminalCode(lex, FixPrefix)
			_, err := p.Stream.Emit(token.Token{Kind: token.KindTerminal, Code: code})
			return err
		}
	}
	if err := p.parsePrimary(toks, pos); err != nil {
		return err
	}
	if *pos < len(toks) && toks[*pos].Type == lexer.Terminal {
		if _, ok := LookupOperator(toks[*pos].Literal, FixPostfix); ok {
			if !p.lastIsVariable || p.lastIsConstVar {
				return fmt.Errorf("operator-not-allowed-here: postfix %q requires a non-const variable", toks[*pos].Literal)
			}
			code, _ := TerminalCode(toks[*pos].Literal, FixPostfix)
			if _, err := p.Stream.Emit(token.Token{Kind: token.KindTerminal, Code: code}); err != nil {
				return err
			}
			*pos++
			p.lastOpIsIncrDecr = true
		}
	}
	return nil
}

// parsePrimary parses one operand: a literal, a parenthesized
// expression, or an identifier (variable, function call, or symbolic
// constant) — spec §4.D items 3-10, §4.E "Parentheses".
func (p *Parser) parsePrimary(toks []lexer.Lexeme, pos *int) error {
	if *pos >= len(toks) {
		return fmt.Errorf("syntax-error: unexpected end of statement")
	}
	lex := toks[*pos]
	p.lastIsVariable = false
	p.lastIsConstVar = false
	p.lastOpIsIncrDecr = false
	p.assignStillOK = false

	switch lex.Type {
	case lexer.NumberLong:
		*pos++
		h := p.Pool.InternLong(lex.LongVal)
		_, err := p.Stream.Emit(token.Token{Kind: token.KindConstLong, StrHandle: h})
		return err

	case lexer.NumberFloat:
		*pos++
		h := p.Pool.InternFloat(lex.FloatVal)
		_, err := p.Stream.Emit(token.Token{Kind: token.KindConstFloat, StrHandle: h})
		return err

	case lexer.String:
		*pos++
		if len(lex.Literal) > maxIdentNameLen*8 {
			return p.errAt(lex, ErrIdentifierTooLong, "string literal too long")
		}
		h := p.Pool.InternString(p.Acct, lex.Literal)
		_, err := p.Stream.Emit(token.Token{Kind: token.KindConstString, StrHandle: h})
		return err

	case lexer.Terminal:
		if lex.Literal == "(" {
			*pos++
			if err := p.parseExpression(toks, pos, 0); err != nil {
				return err
			}
			if *pos >= len(toks) || toks[*pos].Literal != ")" {
				return p.errAt(lex, ErrParenthesisMismatch, "expected ')'")
			}
			*pos++
			return nil
		}
		return p.errAt(lex, ErrSyntax, fmt.Sprintf("unexpected %q", lex.Literal))

	case lexer.Ident:
		return p.parseIdentPrimary(toks, pos)

	default:
		return p.errAt(lex, ErrSyntax, "unexpected token")
	}
}

// parseIdentPrimary classifies an identifier lexeme in expression
// position following spec §4.D's order: keyword, symbolic constant,
// internal function, external function, user function, variable name,
// generic name.
func (p *Parser) parseIdentPrimary(toks []lexer.Lexeme, pos *int) error {
	lex := toks[*pos]
	name := lex.Literal
	if len(name) > maxIdentNameLen {
		return p.errAt(lex, ErrIdentifierTooLong, fmt.Sprintf("identifier %q exceeds %d characters", name, maxIdentNameLen))
	}

	if IsKeyword(name) {
		switch name {
		case "true", "on":
			*pos++
			h := p.Pool.InternLong(1)
			_, err := p.Stream.Emit(token.Token{Kind: token.KindConstLong, StrHandle: h})
			return err
		case "false", "off":
			*pos++
			h := p.Pool.InternLong(0)
			_, err := p.Stream.Emit(token.Token{Kind: token.KindConstLong, StrHandle: h})
			return err
		default:
			return p.errAt(lex, ErrNotAllowedHere, fmt.Sprintf("keyword %q not allowed in an expression", name))
		}
	}

	if code, ok := LookupSymbolicConst(name); ok {
		*pos++
		_, err := p.Stream.Emit(token.Token{Kind: token.KindSymbolicConst, Code: code})
		return err
	}

	followedByParen := *pos+1 < len(toks) && toks[*pos+1].Type == lexer.Terminal && toks[*pos+1].Literal == "("

	if b, ok := LookupBuiltin(name); ok && followedByParen {
		*pos += 2
		argc, err := p.parseCallArgs(toks, pos)
		if err != nil {
			return err
		}
		if argc < b.MinArgs || (b.MaxArgs >= 0 && argc > b.MaxArgs) {
			return fmt.Errorf("function-arg-count-wrong: %s expects %d..%d arguments, got %d", name, b.MinArgs, b.MaxArgs, argc)
		}
		_, err = p.Stream.Emit(token.Token{Kind: token.KindInternalFunc, Code: b.Code, ArgCount: uint8(argc)})
		return err
	}

	if followedByParen {
		return p.parseUserFuncCall(toks, pos, name)
	}

	return p.parseVariableRef(toks, pos, name)
}

// parseCallArgs consumes a parenthesized, comma-separated argument list
// and returns the argument count.
func (p *Parser) parseCallArgs(toks []lexer.Lexeme, pos *int) (int, error) {
	if *pos < len(toks) && toks[*pos].Literal == ")" {
		*pos++
		return 0, nil
	}
	count := 0
	for {
		if err := p.parseExpression(toks, pos, 0); err != nil {
			return 0, err
		}
		count++
		if *pos >= len(toks) {
			return 0, fmt.Errorf("parenthesis-mismatch: expected ')'")
		}
		if toks[*pos].Literal == "," {
			*pos++
			continue
		}
		if toks[*pos].Literal == ")" {
			*pos++
			return count, nil
		}
		return 0, fmt.Errorf("parenthesis-mismatch: expected ',' or ')'")
	}
}

// parseUserFuncCall handles a call to a (possibly forward-referenced)
// user-defined function, spec §4.E "Parentheses" bullets on user
// function calls.
func (p *Parser) parseUserFuncCall(toks []lexer.Lexeme, pos *int, name string) error {
	*pos += 2 // identifier + '('
	idx, existed := p.Vars.LookupFunction(name)
	if !existed {
		idx = p.Vars.DeclareFunction(name)
	}
	desc := p.Vars.Funcs[idx]

	argc, err := p.parseCallArgs(toks, pos)
	if err != nil {
		return err
	}
	if desc.PatternCommitted {
		if argc < desc.NumParams-len(desc.DefaultValues) || argc > desc.NumParams {
			return fmt.Errorf("function-previous-call-arg-count-wrong: %s called with %d arguments", name, argc)
		}
	}
	p.Vars.FuncNames.ObserveCall(idx, argc)

	_, err = p.Stream.Emit(token.Token{Kind: token.KindUserFunc, Code: uint16(idx), ArgCount: uint8(argc)})
	return err
}

// parseVariableRef resolves an identifier as a variable reference,
// searching the scopes visible at the current parse point (local/
// static/param of the enclosing function, then global, then — in
// immediate mode — user variables), per spec §4.E "Variables".
func (p *Parser) parseVariableRef(toks []lexer.Lexeme, pos *int, name string) error {
	lex := toks[*pos]
	*pos++

	scope := value.ScopeGlobal
	slotIdx, ok := p.Vars.LookupProgramVar(name)
	if !ok {
		if !p.InFunction {
			slotIdx, ok = p.Vars.LookupUserVar(name)
			scope = value.ScopeUser
		}
	} else {
		scope = p.Vars.ProgramSlots[slotIdx].Scope
	}
	if !ok {
		return p.errAt(lex, ErrVarNotDeclared, fmt.Sprintf("variable %q not declared", name))
	}

	var slot *value.Slot
	if scope == value.ScopeUser {
		slot = p.Vars.UserSlots[slotIdx]
	} else {
		slot = p.Vars.ProgramSlots[slotIdx]
	}
	slot.ReferencedByProgram = scope != value.ScopeUser

	p.lastIsVariable = true
	p.lastIsConstVar = slot.IsConst
	p.assignStillOK = !slot.IsConst

	// array subscripting
	varScopeByte := uint8(scope)
	subscripted := false
	if *pos < len(toks) && toks[*pos].Type == lexer.Terminal && toks[*pos].Literal == "(" {
		if !slot.IsArray {
			return fmt.Errorf("array-dim-wrong: %q is not an array", name)
		}
		*pos++
		ndims, err := p.parseCallArgs(toks, pos)
		if err != nil {
			return err
		}
		arrDims := 0
		if slot.Value.Arr != nil {
			arrDims = slot.Value.Arr.NDims
		}
		if ndims != arrDims {
			return fmt.Errorf("array-dim-wrong: %q has %d dimensions, got %d subscripts", name, arrDims, ndims)
		}
		subscripted = true
	}

	_, err := p.Stream.Emit(token.Token{Kind: token.KindVarRef, VarScope: varScopeByte, VarSlot: uint16(slotIdx), Subscripted: subscripted})
	return err
}
