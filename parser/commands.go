package parser

import (
	"fmt"

	"github.com/justina-lang/justinavm/lexer"
	"github.com/justina-lang/justinavm/token"
	"github.com/justina-lang/justinavm/value"
)

// parseCommand dispatches on the command framework (spec §4.E "Command
// framework"): it checks placement restrictions, then routes to the
// command's specific grammar (declarations, block keywords, or a
// generic argument-list command).
func (p *Parser) parseCommand(cmd *Command, toks []lexer.Lexeme, pos *int, line int) error {
	if err := p.restrictionsOK(cmd); err != nil {
		return err
	}
	*pos++ // consume the command keyword lexeme

	switch cmd.Name {
	case "var", "const", "static":
		return p.parseDeclaration(cmd, toks, pos)
	case "function":
		return p.parseFunctionHeader(toks, pos)
	case "end":
		if p.InFunction && len(p.blocks) == 1 && p.blocks[0].Keyword == "function" {
			p.InFunction = false
			p.CurrentFunc = -1
		}
		_, err := p.closeOrChainBlock(cmd)
		return err
	case "elseif", "else":
		_, err := p.closeOrChainBlock(cmd)
		if err != nil {
			return err
		}
		if cmd.Name == "elseif" {
			return p.parseExpression(toks, pos, 0)
		}
		return nil
	case "if", "while":
		if err := p.parseExpression(toks, pos, 0); err != nil {
			return err
		}
		_, err := p.pushBlock(cmd, -1, 1)
		return err
	case "for":
		return p.parseFor(toks, pos)
	case "trapErrors":
		if *pos >= len(toks) || toks[*pos].Type != lexer.Ident || !IsKeyword(toks[*pos].Literal) {
			return fmt.Errorf("syntax-error: expected \"on\" or \"off\"")
		}
		lit := toks[*pos].Literal
		*pos++
		on := lit == "on" || lit == "true"
		if !on && lit != "off" && lit != "false" {
			return fmt.Errorf("syntax-error: expected \"on\" or \"off\", got %q", lit)
		}
		enabled := uint8(0)
		if on {
			enabled = 1
		}
		_, err := p.Stream.Emit(token.Token{Kind: token.KindKeyword, Code: commandCode(cmd.Name), ArgCount: enabled})
		return err
	case "break", "continue":
		if !p.inOpenLoop() {
			return fmt.Errorf("not-allowed-here: %q outside a loop", cmd.Name)
		}
		_, err := p.Stream.Emit(token.Token{Kind: token.KindKeyword, Code: commandCode(cmd.Name)})
		return err
	case "return":
		if !p.InFunction && len(p.blocks) == 0 {
			// return from outermost immediate-mode statement: allowed,
			// simply ends execution (spec §4.G "return ... in immediate
			// mode simply ends execution").
		}
		hasValue := uint8(0)
		if *pos < len(toks) && toks[*pos].Type != lexer.EOF && toks[*pos].Literal != ";" {
			if err := p.parseExpression(toks, pos, 0); err != nil {
				return err
			}
			hasValue = 1
		}
		_, err := p.Stream.Emit(token.Token{Kind: token.KindKeyword, Code: commandCode(cmd.Name), ArgCount: hasValue})
		return err
	default:
		return p.parseGenericCommand(cmd, toks, pos)
	}
}

// parseGenericCommand handles every command described purely by its
// ArgSpec list: a fixed/optional/repeatable sequence of expression,
// identifier, or variable arguments.
func (p *Parser) parseGenericCommand(cmd *Command, toks []lexer.Lexeme, pos *int) error {
	count := 0
	valueCount := 0 // operand-producing args; only ArgKeyword (see "trapErrors") pushes nothing
	for i, spec := range cmd.Args {
		for {
			if *pos >= len(toks) || toks[*pos].Type == lexer.EOF || toks[*pos].Literal == ";" {
				if spec.Optional || count >= cmd.MinArgs {
					break
				}
				return fmt.Errorf("function-arg-count-wrong: %s requires at least %d argument(s)", cmd.Name, cmd.MinArgs)
			}
			if err := p.parseCommandArg(spec); err != nil {
				return err
			}
			if pErr := p.parseOneArg(toks, pos, spec); pErr != nil {
				return pErr
			}
			count++
			if spec.Kind != ArgKeyword {
				valueCount++
				if valueCount > 255 {
					return fmt.Errorf("function-arg-count-wrong: %s: too many arguments for one statement", cmd.Name)
				}
			}
			if cmd.MaxArgs >= 0 && count > cmd.MaxArgs {
				return fmt.Errorf("function-arg-count-wrong: %s takes at most %d argument(s)", cmd.Name, cmd.MaxArgs)
			}
			if *pos < len(toks) && toks[*pos].Type == lexer.Terminal && toks[*pos].Literal == "," {
				*pos++
				if spec.Multiple {
					continue
				}
				i++
				if i >= len(cmd.Args) {
					return fmt.Errorf("function-arg-count-wrong: %s: too many arguments", cmd.Name)
				}
				spec = cmd.Args[i]
				continue
			}
			break
		}
	}
	if count < cmd.MinArgs {
		return fmt.Errorf("function-arg-count-wrong: %s requires at least %d argument(s), got %d", cmd.Name, cmd.MinArgs, count)
	}
	_, err := p.Stream.Emit(token.Token{Kind: token.KindKeyword, Code: commandCode(cmd.Name), ArgCount: uint8(valueCount)})
	return err
}

// parseCommandArg is a placeholder hook kept symmetric with
// parseOneArg's signature; argument-kind-specific validation that
// needs no lookahead lives here.
func (p *Parser) parseCommandArg(spec ArgSpec) error { return nil }

func (p *Parser) parseOneArg(toks []lexer.Lexeme, pos *int, spec ArgSpec) error {
	switch spec.Kind {
	case ArgAnyExpression:
		return p.parseExpression(toks, pos, 0)
	case ArgUnqualifiedIdent:
		if *pos >= len(toks) || toks[*pos].Type != lexer.Ident {
			return fmt.Errorf("syntax-error: expected an identifier")
		}
		name := toks[*pos].Literal
		*pos++
		handle := p.Pool.InternGenericName(p.Acct, name)
		_, err := p.Stream.Emit(token.Token{Kind: token.KindGenericName, StrHandle: handle})
		return err
	case ArgVarNoAssign, ArgVarOptAssign:
		if *pos >= len(toks) || toks[*pos].Type != lexer.Ident {
			return fmt.Errorf("syntax-error: expected a variable name")
		}
		return p.parseVariableRef(toks, pos, toks[*pos].Literal)
	case ArgKeyword:
		if *pos >= len(toks) || toks[*pos].Type != lexer.Ident || !IsKeyword(toks[*pos].Literal) {
			return fmt.Errorf("syntax-error: expected a keyword")
		}
		*pos++
		return nil
	}
	return nil
}

// parseDeclaration handles var/const/static: one or more
// `name [(dims...)] [= initializer]` declarators (spec §4.E
// "Variables").
func (p *Parser) parseDeclaration(cmd *Command, toks []lexer.Lexeme, pos *int) error {
	scope := value.ScopeGlobal
	switch {
	case cmd.Name == "static":
		scope = value.ScopeStaticInFunc
	case p.InFunction:
		scope = value.ScopeLocalInFunc
	case !p.InFunction:
		scope = value.ScopeGlobal
	}
	isConst := cmd.Name == "const"

	count := 0
	for {
		if *pos >= len(toks) || toks[*pos].Type != lexer.Ident {
			return fmt.Errorf("syntax-error: expected a variable name in %s declaration", cmd.Name)
		}
		name := toks[*pos].Literal
		if len(name) > maxIdentNameLen {
			return p.errAt(toks[*pos], ErrIdentifierTooLong, fmt.Sprintf("identifier %q too long", name))
		}
		*pos++

		isArray := false
		var dims []int
		if *pos < len(toks) && toks[*pos].Type == lexer.Terminal && toks[*pos].Literal == "(" {
			isArray = true
			*pos++
			for {
				if *pos >= len(toks) || toks[*pos].Type != lexer.NumberLong {
					return fmt.Errorf("array-dim-wrong: expected an integer-constant dimension")
				}
				d := int(toks[*pos].LongVal)
				if d < 1 || d > value.MaxArrayDim {
					return fmt.Errorf("array-dim-wrong: dimension %d out of range 1..%d", d, value.MaxArrayDim)
				}
				dims = append(dims, d)
				*pos++
				if *pos < len(toks) && toks[*pos].Literal == "," {
					*pos++
					continue
				}
				break
			}
			if *pos >= len(toks) || toks[*pos].Literal != ")" {
				return fmt.Errorf("parenthesis-mismatch: expected ')' closing array dimensions")
			}
			*pos++
		}

		var initVal value.Value
		hasInit := false
		if *pos < len(toks) && toks[*pos].Type == lexer.Terminal && toks[*pos].Literal == "=" {
			*pos++
			v, err := p.parseConstInitializer(toks, pos)
			if err != nil {
				return err
			}
			initVal = v
			hasInit = true
		}

		idx, err := p.Vars.DeclareProgramVar(name, scope, isArray, isConst)
		if err != nil {
			return NewError(Position{Filename: p.Filename}, ErrVarRedeclared, err.Error())
		}
		slot := p.Vars.ProgramSlots[idx]
		if isArray {
			elemKind := value.KindLong
			if hasInit && initVal.Kind == value.KindString {
				if !initVal.IsEmpty() {
					return fmt.Errorf("array-dim-wrong: string arrays may only be initialized to empty")
				}
				elemKind = value.KindString
			} else if hasInit && initVal.Kind == value.KindFloat {
				elemKind = value.KindFloat
			}
			arr, aerr := value.NewArray(dims, elemKind)
			if aerr != nil {
				return aerr
			}
			if hasInit && elemKind != value.KindString {
				for i := range arr.Elems {
					arr.Elems[i] = initVal
				}
			}
			slot.Value = value.Value{Kind: value.KindArray, Arr: arr}
		} else if hasInit {
			if err := p.Vars.AssignScalar(slot, false, initVal); err != nil {
				return err
			}
		}

		count++
		if count > 15 {
			return fmt.Errorf("function-arg-count-wrong: at most 15 declarators per statement")
		}
		if *pos < len(toks) && toks[*pos].Type == lexer.Terminal && toks[*pos].Literal == "," {
			*pos++
			continue
		}
		break
	}
	_, err := p.Stream.Emit(token.Token{Kind: token.KindKeyword, Code: commandCode(cmd.Name)})
	return err
}

// parseConstInitializer parses a (possibly signed) numeric or string
// constant used as a declarator initializer.
func (p *Parser) parseConstInitializer(toks []lexer.Lexeme, pos *int) (value.Value, error) {
	neg := false
	if *pos < len(toks) && toks[*pos].Type == lexer.Terminal && (toks[*pos].Literal == "+" || toks[*pos].Literal == "-") {
		neg = toks[*pos].Literal == "-"
		*pos++
	}
	if *pos >= len(toks) {
		return value.Value{}, fmt.Errorf("syntax-error: expected a constant initializer")
	}
	lex := toks[*pos]
	switch lex.Type {
	case lexer.NumberLong:
		*pos++
		v := lex.LongVal
		if neg {
			v = -v
		}
		return value.Long32(v), nil
	case lexer.NumberFloat:
		*pos++
		v := lex.FloatVal
		if neg {
			v = -v
		}
		return value.Float32Val(v), nil
	case lexer.String:
		if neg {
			return value.Value{}, fmt.Errorf("syntax-error: a string constant cannot be signed")
		}
		*pos++
		return value.Str(lex.Literal), nil
	default:
		return value.Value{}, fmt.Errorf("syntax-error: expected a constant initializer")
	}
}

// parseFunctionHeader parses `function name(params)`, declaring the
// function descriptor and entering function-parsing mode.
func (p *Parser) parseFunctionHeader(toks []lexer.Lexeme, pos *int) error {
	if *pos >= len(toks) || toks[*pos].Type != lexer.Ident {
		return fmt.Errorf("syntax-error: expected a function name")
	}
	name := toks[*pos].Literal
	*pos++

	idx, existed := p.Vars.LookupFunction(name)
	if !existed {
		idx = p.Vars.DeclareFunction(name)
	}
	desc := p.Vars.Funcs[idx]
	if desc.StartToken != -1 {
		return fmt.Errorf("var-redeclared: function %q already defined", name)
	}

	numParams := 0
	numOptional := 0
	if *pos < len(toks) && toks[*pos].Literal == "(" {
		*pos++
		for *pos < len(toks) && toks[*pos].Literal != ")" {
			if toks[*pos].Type != lexer.Ident {
				return fmt.Errorf("syntax-error: expected a parameter name")
			}
			pname := toks[*pos].Literal
			*pos++
			isArray := false
			if *pos < len(toks) && toks[*pos].Literal == "(" {
				isArray = true
				*pos++
				if *pos < len(toks) && toks[*pos].Literal != ")" {
					return fmt.Errorf("array-dim-wrong: parameter array dimensions are fixed by the caller")
				}
				*pos++
			}
			if err := desc.ObserveArrayArg(numParams, isArray); err != nil {
				return err
			}
			pslot, err := p.Vars.DeclareProgramVar(pname, value.ScopeParamInFunc, isArray, false)
			if err != nil {
				return NewError(Position{Filename: p.Filename}, ErrVarRedeclared, err.Error())
			}
			if numParams == 0 {
				desc.ParamBase = pslot
			}
			if *pos < len(toks) && toks[*pos].Literal == "=" {
				*pos++
				v, err := p.parseConstInitializer(toks, pos)
				if err != nil {
					return err
				}
				if desc.DefaultValues == nil {
					desc.DefaultValues = map[int]value.Value{}
				}
				desc.DefaultValues[numParams] = v
				numOptional++
			} else if numOptional > 0 {
				return fmt.Errorf("syntax-error: mandatory parameter %q follows an optional one", pname)
			}
			numParams++
			if numParams > 15 {
				return fmt.Errorf("function-arg-count-wrong: at most 15 parameters")
			}
			if *pos < len(toks) && toks[*pos].Literal == "," {
				*pos++
				continue
			}
			break
		}
		if *pos >= len(toks) || toks[*pos].Literal != ")" {
			return fmt.Errorf("parenthesis-mismatch: expected ')' closing parameter list")
		}
		*pos++
	}

	desc.NumParams = numParams
	cursor, err := p.pushBlock(commands["function"], -1, 0)
	if err != nil {
		return err
	}
	desc.StartToken = cursor
	desc.CommitArrayPattern(desc.ParamIsArray)
	p.InFunction = true
	p.CurrentFunc = idx
	return nil
}

// parseFor parses `for v = start, end [, step]`, checking the loop
// variable isn't already the control variable of an enclosing open
// "for" in the same function (spec §4.E "Variables", last bullet).
func (p *Parser) parseFor(toks []lexer.Lexeme, pos *int) error {
	if *pos >= len(toks) || toks[*pos].Type != lexer.Ident {
		return fmt.Errorf("syntax-error: expected a loop control variable")
	}
	varName := toks[*pos].Literal
	slotIdx, ok := p.Vars.LookupProgramVar(varName)
	if !ok {
		return fmt.Errorf("var-not-declared: %q not declared", varName)
	}
	for _, b := range p.blocks {
		if b.Keyword == "for" && b.LoopVarSlot == slotIdx {
			return fmt.Errorf("not-allowed-here: %q is already the control variable of an enclosing loop", varName)
		}
	}
	if err := p.parseVariableRef(toks, pos, varName); err != nil {
		return err
	}
	if *pos >= len(toks) || toks[*pos].Literal != "=" {
		return fmt.Errorf("syntax-error: expected '=' after loop control variable")
	}
	*pos++
	if err := p.parseExpression(toks, pos, 0); err != nil {
		return err
	}
	if *pos >= len(toks) || toks[*pos].Literal != "," {
		return fmt.Errorf("syntax-error: expected ',' after loop start value")
	}
	*pos++
	if err := p.parseExpression(toks, pos, 0); err != nil {
		return err
	}
	if *pos < len(toks) && toks[*pos].Literal == "," {
		*pos++
		if err := p.parseExpression(toks, pos, 0); err != nil {
			return err
		}
	} else {
		// no explicit step: push a literal 1 so the runtime stack always
		// holds exactly four loop-control operands ahead of the keyword.
		handle := p.Pool.InternLong(1)
		if _, err := p.Stream.Emit(token.Token{Kind: token.KindConstLong, StrHandle: handle}); err != nil {
			return err
		}
	}
	_, err := p.pushBlock(commands["for"], slotIdx, 4)
	return err
}
