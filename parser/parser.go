// Package parser implements component E: a single-pass parser that
// consumes lexemes from package lexer and emits tokens into a
// token.Stream, enforcing scope and argument-arity rules and
// maintaining the parse-time parenthesis/block stacks of spec §4.E.
//
// Grounded on the command-dispatch and position-tracking shape of the
// teacher's parser/parser.go (a 916-line recursive-descent assembly
// parser), generalized from instruction mnemonics/directives/operands
// to this language's command framework, expression grammar, and
// variable-declaration rules.
package parser

import (
	"fmt"

	"github.com/justina-lang/justinavm/ident"
	"github.com/justina-lang/justinavm/lexer"
	"github.com/justina-lang/justinavm/token"
	"github.com/justina-lang/justinavm/value"
)

const maxIdentNameLen = 31

// blockFrame is one entry of the parse-time open-block stack (spec
// §4.E "Keyword blocks").
type blockFrame struct {
	Role          BlockRole
	Keyword       string
	KeywordCursor int // token-stream cursor of the opening keyword
	LastCursor    int // cursor of the most recent chain link (if/elseif/else), for fix-up
	LoopVarSlot   int // for "for": program-var slot index of the control variable, else -1
}

// parenFrame is one entry of the parse-time parenthesis stack (spec
// §4.E "Parentheses").
type parenFrame struct {
	Kind        ParenKind
	Cursor      int // cursor of the '(' terminal token, for context
	FuncIdx     int // function/builtin index, when Kind is a call
	ArgsSoFar   int
	MinArgs     int
	MaxArgs     int
	ArrayPos    uint16
	IsForward   bool
}

// ParenKind classifies what a '(' opened.
type ParenKind int

const (
	ParenGrouping ParenKind = iota
	ParenArraySubscript
	ParenInternalCall
	ParenExternalCall
	ParenUserCallKnown
	ParenUserCallForward
)

// Parser holds all parse-time state for one statement stream. A fresh
// Parser is reused across every statement of a program or immediate-
// mode line so its block/variable state persists between statements.
type Parser struct {
	Stream *token.Stream
	Vars   *value.Store
	Acct   *ident.Accounting
	Pool   *ConstPool

	Filename string

	InFunction  bool
	CurrentFunc int // index into Vars.Funcs, -1 when not inside a function body

	blocks []blockFrame
	parens []parenFrame

	// expression-syntax flags at the current sub-expression nesting
	// level (spec §4.E "Expression-syntax flags").
	lastIsVariable    bool
	lastIsConstVar    bool
	assignStillOK     bool
	lastOpIsIncrDecr  bool

	lastStmtLine int // source line of the previous statement-starting token

	// OnStatementBoundary, when set, is invoked after each statement's
	// separator token is emitted, letting the breakpoint subsystem
	// (component F) build its line-range table without this package
	// importing it.
	OnStatementBoundary func(line int, sepCursor int, isNewLine bool)
}

// NewParser creates a parser over a fresh token stream and variable
// store, ready to parse program or immediate-mode statements.
func NewParser(streamCap int, vars *value.Store, acct *ident.Accounting) *Parser {
	return &Parser{
		Stream:       token.NewStream(streamCap),
		Vars:         vars,
		Acct:         acct,
		Pool:         NewConstPool(),
		CurrentFunc:  -1,
		lastStmtLine: -1,
	}
}

// ParseLine tokenizes and parses every statement on one line of source
// text (immediate-mode input is always one line; program source is
// parsed line by line). Statements are separated by ';'; the last
// statement on the line may omit it. Whitespace-only lines parse to
// nothing.
func (p *Parser) ParseLine(text string, line int) error {
	lx := lexer.New(text)
	toks := lx.TokenizeAll()
	pos := 0
	for pos < len(toks) && toks[pos].Type != lexer.EOF {
		startCursor := p.Stream.Len()
		startHandle := p.Pool.Len()

		if err := p.parseStatement(toks, &pos, line); err != nil {
			p.Stream.Truncate(startCursor)
			p.Pool.TruncateFrom(p.Acct, startHandle)
			return err
		}
	}
	return nil
}

// parseStatement parses one ';'-terminated statement starting at
// toks[*pos], advancing *pos past the terminating ';'.
func (p *Parser) parseStatement(toks []lexer.Lexeme, pos *int, line int) error {
	if *pos >= len(toks) || toks[*pos].Type == lexer.EOF {
		return nil
	}

	isNewLine := line != p.lastStmtLine
	p.lastStmtLine = line

	lead := toks[*pos]
	if lead.Type == lexer.Ident {
		if cmd, ok := LookupCommand(lead.Literal); ok {
			if err := p.parseCommand(cmd, toks, pos, line); err != nil {
				return err
			}
			return p.emitSeparator(toks, pos, line, isNewLine)
		}
	}

	// Not a command: a bare expression statement (assignment or a
	// function call used for its side effect).
	if err := p.parseExpression(toks, pos, 0); err != nil {
		return err
	}
	return p.emitSeparator(toks, pos, line, isNewLine)
}

// emitSeparator consumes a trailing ';' (required unless at end of
// input) and emits the statement-separator token, then fires the
// statement-boundary hook.
func (p *Parser) emitSeparator(toks []lexer.Lexeme, pos *int, line int, isNewLine bool) error {
	if *pos < len(toks) && toks[*pos].Type == lexer.Terminal && toks[*pos].Literal == ";" {
		*pos++
	} else if *pos < len(toks) && toks[*pos].Type != lexer.EOF {
		return p.errAt(toks[*pos], ErrSyntax, "expected ';' to terminate statement")
	}
	cursor, err := p.Stream.Emit(token.Token{Kind: token.KindSeparator, Sep: token.SepPlain})
	if err != nil {
		return err
	}
	if p.OnStatementBoundary != nil {
		p.OnStatementBoundary(line, cursor, isNewLine)
	}
	return nil
}

func (p *Parser) errAt(lex lexer.Lexeme, kind ErrorKind, msg string) error {
	return NewError(Position{Filename: p.Filename, Line: lex.Pos.Line, Column: lex.Pos.Column}, kind, msg)
}

// restrictionsOK checks a command's placement restrictions against the
// parser's current nesting state (spec §4.E "usage restriction mask").
func (p *Parser) restrictionsOK(cmd *Command) error {
	if cmd.Restrictions&RestrInsideFunctionOnly != 0 && !p.InFunction {
		return fmt.Errorf("%s: not-allowed-here: only valid inside a function", cmd.Name)
	}
	if cmd.Restrictions&RestrOutsideFunctionOnly != 0 && p.InFunction {
		return fmt.Errorf("%s: not-allowed-here: not valid inside a function", cmd.Name)
	}
	return nil
}

// pushBlock opens a new block-stack frame for a block-start command,
// emitting the keyword token with an as-yet-unresolved block offset.
// argCount is the number of runtime operand values already pushed ahead
// of this token (1 for if/while's condition, 4 for for's loop-control
// values, 0 for function, whose header is skipped at runtime).
func (p *Parser) pushBlock(cmd *Command, loopVarSlot int, argCount uint8) (int, error) {
	cursor, err := p.Stream.Emit(token.Token{Kind: token.KindKeyword, Code: commandCode(cmd.Name), ArgCount: argCount})
	if err != nil {
		return 0, err
	}
	p.blocks = append(p.blocks, blockFrame{Role: BlockStart, Keyword: cmd.Name, KeywordCursor: cursor, LastCursor: cursor, LoopVarSlot: loopVarSlot})
	return cursor, nil
}

// closeOrChainBlock handles elseif/else/end: verifies the predecessor
// set, links the block chain via fix-ups, and for "end" pops the frame.
func (p *Parser) closeOrChainBlock(cmd *Command) (int, error) {
	if len(p.blocks) == 0 {
		return 0, fmt.Errorf("%s: not-allowed-here: no open block", cmd.Name)
	}
	top := &p.blocks[len(p.blocks)-1]
	allowed := false
	for _, pred := range cmd.Predecessors {
		if pred == top.Keyword {
			allowed = true
			break
		}
	}
	if !allowed {
		return 0, fmt.Errorf("%s: not-allowed-here: must follow one of %v, found %q", cmd.Name, cmd.Predecessors, top.Keyword)
	}

	cursor, err := p.Stream.Emit(token.Token{Kind: token.KindKeyword, Code: commandCode(cmd.Name)})
	if err != nil {
		return 0, err
	}
	offset := int16(cursor - top.LastCursor)
	if err := p.Stream.FixupBlockOffset(top.LastCursor, offset); err != nil {
		return 0, err
	}
	top.LastCursor = cursor
	top.Keyword = cmd.Name

	if cmd.Block == BlockEnd {
		if err := p.Stream.FixupBlockOffset(cursor, int16(top.KeywordCursor-cursor)); err != nil {
			return 0, err
		}
		p.blocks = p.blocks[:len(p.blocks)-1]
	}
	return cursor, nil
}

// inOpenLoop reports whether a loop frame is open anywhere on the
// block stack (for break/continue validity).
func (p *Parser) inOpenLoop() bool {
	for i := len(p.blocks) - 1; i >= 0; i-- {
		if p.blocks[i].Keyword == "for" || p.blocks[i].Keyword == "while" {
			return true
		}
	}
	return false
}

// commandCode assigns a stable code to each command keyword for the
// token stream's Code field.
func commandCode(name string) uint16 {
	i := uint16(1)
	// Deterministic ordering over the map would require sorting keys;
	// instead codes are assigned once at init from a fixed name list so
	// they stay stable across runs of the same binary.
	for _, n := range commandNameOrder {
		if n == name {
			return i
		}
		i++
	}
	return 0
}

// CommandNameByCode reverses commandCode, letting the engine package
// map a decoded KindKeyword token's Code back to the command it names
// without duplicating the name-order table.
func CommandNameByCode(code uint16) (string, bool) {
	if code < 1 || int(code) > len(commandNameOrder) {
		return "", false
	}
	return commandNameOrder[code-1], true
}

var commandNameOrder = func() []string {
	names := make([]string, 0, len(commands))
	// Fixed, explicit ordering (not map iteration order) so codes are
	// reproducible across runs.
	order := []string{
		"program", "function", "var", "const", "static", "for", "while", "if", "elseif", "else", "end",
		"break", "continue", "return", "stop", "nop", "go", "step", "stepOut", "stepOver", "bStepOut",
		"loop", "setNextLine", "abort", "debug", "setBP", "clearBP", "enableBP", "disableBP", "moveBP",
		"BPon", "BPoff", "BPactivate", "listBP", "raiseError", "trapErrors", "clearError", "quit",
		"cout", "coutLine", "coutList", "print", "printLine", "printList", "vprint",
		"listVars", "listFiles", "listCallStack", "input", "info", "dispWidth", "floatFmt", "intFmt",
		"dispMode", "tabSize", "angleMode", "startSD", "stopSD", "receiveFile", "sendFile", "copyFile",
		"clearMem", "clearProg", "loadProg", "delete",
	}
	for _, n := range order {
		if _, ok := commands[n]; ok {
			names = append(names, n)
		}
	}
	return names
}()
