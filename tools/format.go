package tools

import (
	"strings"

	"github.com/justina-lang/justinavm/lexer"
	"github.com/justina-lang/justinavm/parser"
)

// FormatStyle selects an overall formatting density.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // one statement per line, block-indented
	FormatCompact                     // no indentation, blank lines collapsed
	FormatExpanded                    // wider indent, blank line after each closed block
)

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	Style         FormatStyle
	IndentSize    int  // spaces per nesting level
	AlignComments bool // pad trailing comments to CommentColumn
	CommentColumn int
	BlankAfterEnd bool // insert a blank line after a closed block
}

// DefaultFormatOptions returns the standard formatting profile.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:         FormatDefault,
		IndentSize:    4,
		AlignComments: true,
		CommentColumn: 40,
	}
}

// CompactFormatOptions returns options for minimal-whitespace formatting.
func CompactFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:         FormatCompact,
		IndentSize:    0,
		AlignComments: false,
	}
}

// ExpandedFormatOptions returns options for a more spaced-out rendering.
func ExpandedFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:         FormatExpanded,
		IndentSize:    8,
		AlignComments: true,
		CommentColumn: 48,
		BlankAfterEnd: true,
	}
}

// Formatter pretty-prints Justina source text, indenting by keyword-
// block nesting (if/elseif/else/end, while/end, for/end, function/end)
// while leaving every token, string escape, and comment byte-for-byte
// as the lexer read it. Reformatting an already-formatted program is a
// no-op: the token sequence a formatted program re-lexes to is
// unchanged by formatting, so a second pass renders identically.
type Formatter struct {
	options *FormatOptions
}

// NewFormatter creates a formatter with the given options (nil for defaults).
func NewFormatter(options *FormatOptions) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options}
}

// Format reformats input, which need not be a complete program (an
// immediate-mode line formats just as well as a whole program).
func (f *Formatter) Format(input string) (string, error) {
	res := Scan(input)

	var out strings.Builder
	depth := 0

	writeComment := func(c lexer.Lexeme, d int) {
		out.WriteString(f.indent(d))
		out.WriteString(c.Literal)
		out.WriteString("\n")
	}

	for _, st := range res.Statements {
		for _, c := range st.LeadingComments {
			writeComment(c, depth)
		}

		lineDepth := depth
		closesBlock := IsBlockCloser(st.Command)
		opensBlock := IsBlockOpener(st.Command)
		if closesBlock {
			if depth > 0 {
				depth--
			}
			lineDepth = depth
		}

		out.WriteString(f.indent(lineDepth))
		out.WriteString(joinTokens(st.Tokens))
		out.WriteString(";")

		if st.TrailingComment != nil {
			f.writeTrailingComment(&out, st.TrailingComment.Literal)
		}
		out.WriteString("\n")

		if opensBlock {
			depth++
		}
		if f.options.BlankAfterEnd && st.Command != nil && st.Command.Block == parser.BlockEnd {
			out.WriteString("\n")
		}
	}

	for _, c := range res.TrailingComments {
		writeComment(c, depth)
	}

	return out.String(), nil
}

func (f *Formatter) indent(depth int) string {
	if f.options.Style == FormatCompact {
		return ""
	}
	n := f.options.IndentSize
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", depth*n)
}

func (f *Formatter) writeTrailingComment(out *strings.Builder, text string) {
	if f.options.AlignComments && f.options.CommentColumn > 0 {
		current := lastLineLen(out.String())
		if current < f.options.CommentColumn {
			out.WriteString(strings.Repeat(" ", f.options.CommentColumn-current))
		} else {
			out.WriteString(" ")
		}
	} else {
		out.WriteString(" ")
	}
	out.WriteString(text)
}

func lastLineLen(s string) int {
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return len(s) - idx - 1
	}
	return len(s)
}

var noSpaceBefore = map[string]bool{",": true, ")": true, "]": true, ".": true}
var noSpaceAfter = map[string]bool{"(": true, "[": true, ".": true}

// joinTokens renders a statement's token sequence with minimal,
// deterministic spacing: no space before closing brackets or commas,
// none after opening brackets or the member-access dot, none between a
// name/")"/"]" and a following "(" (a call or array subscript), a
// single space everywhere else. Comments embedded mid-statement render
// inline.
func joinTokens(toks []lexer.Lexeme) string {
	var sb strings.Builder
	for i, t := range toks {
		text := tokenText(t)
		if i > 0 && needsSpace(toks[i-1], t) {
			sb.WriteString(" ")
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func needsSpace(prev, cur lexer.Lexeme) bool {
	if noSpaceBefore[cur.Literal] || noSpaceAfter[prev.Literal] {
		return false
	}
	if cur.Literal == "(" && isCallable(prev) {
		return false
	}
	return true
}

func isCallable(t lexer.Lexeme) bool {
	return t.Type == lexer.Ident || t.Literal == ")" || t.Literal == "]"
}

func tokenText(t lexer.Lexeme) string {
	if t.Type == lexer.String {
		return quoteString(t.Literal)
	}
	return t.Literal
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// FormatString is a convenience function formatting with default options.
func FormatString(input string) (string, error) {
	return NewFormatter(DefaultFormatOptions()).Format(input)
}

// FormatStringWithStyle formats input using the named style.
func FormatStringWithStyle(input string, style FormatStyle) (string, error) {
	var options *FormatOptions
	switch style {
	case FormatCompact:
		options = CompactFormatOptions()
	case FormatExpanded:
		options = ExpandedFormatOptions()
	default:
		options = DefaultFormatOptions()
	}
	return NewFormatter(options).Format(input)
}
