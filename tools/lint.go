package tools

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"github.com/justina-lang/justinavm/ident"
	"github.com/justina-lang/justinavm/parser"
	"github.com/justina-lang/justinavm/value"
)

// LintLevel is the severity of a lint finding.
type LintLevel int

const (
	LintError   LintLevel = iota // the real parser rejected this line
	LintWarning                  // parses fine but is almost certainly a mistake
	LintInfo                     // style suggestion
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// LintIssue is a single finding.
type LintIssue struct {
	Level   LintLevel
	Line    int
	Column  int
	Message string
	Code    string
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("line %d:%d: %s: %s [%s]", i.Line, i.Column, i.Level, i.Message, i.Code)
}

// LintOptions controls which passes the linter runs beyond the
// mandatory parse pass.
type LintOptions struct {
	Strict         bool // treat warnings as errors in ExitCode
	CheckReach     bool // flag statements after break/continue/return/quit in the same block
	CheckEmptyBody bool // flag a block keyword immediately followed by its own "end"
}

// DefaultLintOptions returns the standard set of checks.
func DefaultLintOptions() *LintOptions {
	return &LintOptions{
		Strict:         false,
		CheckReach:     true,
		CheckEmptyBody: true,
	}
}

// Linter runs Justina source through the real parser (so every syntax,
// placement, and arity rule it enforces becomes a lint finding) plus a
// handful of whole-program checks the parser itself has no reason to
// make, since it only ever sees one line at a time.
type Linter struct {
	options *LintOptions
	issues  []*LintIssue
}

// NewLinter creates a linter with the given options (nil for defaults).
func NewLinter(options *LintOptions) *Linter {
	if options == nil {
		options = DefaultLintOptions()
	}
	return &Linter{options: options}
}

// Lint analyzes source and returns every finding, sorted by position.
func (l *Linter) Lint(source string) []*LintIssue {
	l.issues = nil

	l.runParsePass(source)

	res := Scan(source)
	for _, lex := range res.LexErrors {
		l.issues = append(l.issues, &LintIssue{
			Level:   LintError,
			Line:    lex.Pos.Line,
			Column:  lex.Pos.Column,
			Message: lex.Err.Error(),
			Code:    "LEX_ERROR",
		})
	}

	if l.options.CheckReach {
		l.checkUnreachable(res.Statements)
	}
	if l.options.CheckEmptyBody {
		l.checkEmptyBlocks(res.Statements)
	}

	sort.Slice(l.issues, func(i, j int) bool {
		if l.issues[i].Line == l.issues[j].Line {
			return l.issues[i].Column < l.issues[j].Column
		}
		return l.issues[i].Line < l.issues[j].Line
	})
	return l.issues
}

// runParsePass feeds source line by line through a fresh parser.Parser,
// the same way interp.Interpreter.LoadSource does, except it keeps
// going after an error instead of aborting the whole program, so one
// bad line doesn't hide findings on every line after it.
func (l *Linter) runParsePass(source string) {
	acct := ident.NewAccounting()
	vars := value.NewStore(acct, 16)
	p := parser.NewParser(4096, vars, acct)

	scanner := bufio.NewScanner(strings.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := p.ParseLine(scanner.Text(), line); err != nil {
			l.issues = append(l.issues, l.issueFromParseError(line, err))
		}
	}
}

// issueFromParseError translates a parser error into a finding. A
// *parser.Error carries a position from its own lexer.New(text) call,
// which runs on one line in isolation, so its Line is always relative
// to that line (effectively 1); sourceLine, the true line number from
// this pass's own scan, is used instead, keeping only the column.
func (l *Linter) issueFromParseError(sourceLine int, err error) *LintIssue {
	if perr, ok := err.(*parser.Error); ok {
		return &LintIssue{
			Level:   LintError,
			Line:    sourceLine,
			Column:  perr.Pos.Column,
			Message: perr.Message,
			Code:    perr.Kind.String(),
		}
	}
	return &LintIssue{
		Level:   LintError,
		Line:    sourceLine,
		Column:  1,
		Message: err.Error(),
		Code:    "PARSE_ERROR",
	}
}

// terminalKeywords end control flow unconditionally within their block;
// anything following one before the block's own elseif/else/end is dead.
var terminalKeywords = map[string]bool{
	"break": true, "continue": true, "return": true, "quit": true, "stop": true,
}

// checkUnreachable flags statements that follow an unconditional
// block-exit within the same block, before the next chain link or end.
func (l *Linter) checkUnreachable(stmts []*Statement) {
	sawTerminal := false
	for _, st := range stmts {
		switch {
		case st.Command != nil && IsBlockCloser(st.Command):
			sawTerminal = false
		case sawTerminal:
			l.issues = append(l.issues, &LintIssue{
				Level:   LintWarning,
				Line:    st.Line,
				Column:  1,
				Message: "unreachable statement after break/continue/return/quit/stop",
				Code:    "UNREACHABLE_CODE",
			})
			sawTerminal = false
		case st.Keyword != "" && terminalKeywords[st.Keyword]:
			sawTerminal = true
		}
	}
}

// checkEmptyBlocks flags a block-opening keyword immediately followed
// by its own closing keyword, with no body in between.
func (l *Linter) checkEmptyBlocks(stmts []*Statement) {
	for i := 0; i+1 < len(stmts); i++ {
		cur, next := stmts[i], stmts[i+1]
		if cur.Command == nil || cur.Command.Block != parser.BlockStart {
			continue
		}
		if next.Command != nil && IsBlockCloser(next.Command) {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintInfo,
				Line:    cur.Line,
				Column:  1,
				Message: fmt.Sprintf("empty %q block", cur.Keyword),
				Code:    "EMPTY_BLOCK",
			})
		}
	}
}

// HasErrors reports whether any finding (or, in strict mode, any
// warning) is severe enough to fail a build step.
func (l *Linter) HasErrors() bool {
	for _, i := range l.issues {
		if i.Level == LintError || (l.options.Strict && i.Level == LintWarning) {
			return true
		}
	}
	return false
}
