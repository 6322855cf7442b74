// Package tools implements the source-level developer tools that sit
// beside the interpreter proper: a pretty-printer, a static linter, and
// a cross-referencer, all operating directly on program text rather
// than on the interpreter's own token.Stream (a packed, execution-
// oriented binary format unsuited to text-preserving operations).
//
// Grounded on the teacher's architectural split between its execution
// encoder (package vm) and its separate, text-level parser.Program AST
// built purely to serve formatting/linting/cross-referencing; this
// package plays the same role here, built on top of the real lexer and
// command table (packages lexer and parser) instead of re-deriving its
// own lexical rules.
package tools

import (
	"github.com/justina-lang/justinavm/lexer"
	"github.com/justina-lang/justinavm/parser"
)

// Statement is one ';'-terminated statement, with any comments found
// immediately around it.
type Statement struct {
	Keyword         string // command name as written (e.g. "coutLine"), or "" for a bare expression statement
	Command         *parser.Command
	Tokens          []lexer.Lexeme // the statement's tokens, in source order, comments interleaved
	Line            int            // source line of the first token
	LeadingComments []lexer.Lexeme // standalone comment lines immediately preceding this statement
	TrailingComment *lexer.Lexeme  // a comment on the same source line as the statement's ';'
}

// ScanResult is the product of scanning one source text into statements.
type ScanResult struct {
	Statements []*Statement
	// TrailingComments holds standalone comments found after the last
	// statement (e.g. a file-ending remark with no statement to attach to).
	TrailingComments []lexer.Lexeme
	// LexErrors holds any lexemes the lexer flagged (unterminated string,
	// bad escape, unrecognised token, numeric overflow, ...).
	LexErrors []lexer.Lexeme
}

// Scan tokenizes source into a sequence of statements, preserving
// comments and line information so a formatter, linter, or
// cross-referencer can work from the same structure.
func Scan(source string) *ScanResult {
	lx := lexer.New(source)
	res := &ScanResult{}

	var cur []lexer.Lexeme
	var pending []lexer.Lexeme
	lastFlushedLine := -1

	flush := func() {
		if len(cur) == 0 {
			return
		}
		st := &Statement{
			Tokens:          cur,
			Line:            cur[0].Pos.Line,
			LeadingComments: pending,
		}
		if cur[0].Type == lexer.Ident {
			if cmd, ok := parser.LookupCommand(cur[0].Literal); ok {
				st.Keyword = cur[0].Literal
				st.Command = cmd
			}
		}
		pending = nil
		res.Statements = append(res.Statements, st)
		cur = nil
	}

	for {
		lex := lx.NextLexeme()
		if lex.Err != nil {
			res.LexErrors = append(res.LexErrors, lex)
		}

		switch {
		case lex.Type == lexer.EOF:
			flush()
			if len(pending) > 0 {
				res.TrailingComments = append(res.TrailingComments, pending...)
			}
			return res

		case lex.Type == lexer.Comment:
			switch {
			case len(cur) > 0:
				// Comment inside an in-progress statement (e.g. between
				// operands): keep it inline so the renderer can place it.
				cur = append(cur, lex)
			case len(res.Statements) > 0 && lex.Pos.Line == lastFlushedLine:
				res.Statements[len(res.Statements)-1].TrailingComment = &lex
			default:
				pending = append(pending, lex)
			}

		case lex.Type == lexer.Terminal && lex.Literal == ";":
			lastFlushedLine = lex.Pos.Line
			flush()

		default:
			cur = append(cur, lex)
		}
	}
}

// IsBlockCloser reports whether cmd dedents before being printed
// (elseif/else/end all close the previous chain link or frame).
func IsBlockCloser(cmd *parser.Command) bool {
	return cmd != nil && (cmd.Block == parser.BlockEnd || cmd.Block == parser.BlockGenericEnd)
}

// IsBlockOpener reports whether cmd indents everything following it
// (if/while/for/function, and elseif/else re-opening their branch).
func IsBlockOpener(cmd *parser.Command) bool {
	return cmd != nil && (cmd.Block == parser.BlockStart || cmd.Block == parser.BlockGenericEnd)
}
