package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/justina-lang/justinavm/lexer"
	"github.com/justina-lang/justinavm/parser"
)

// ReferenceType classifies one use of an identifier.
type ReferenceType int

const (
	RefDefinition ReferenceType = iota // var/const/static/function/for-loop declaration
	RefRead                            // value read
	RefWrite                           // assignment target
	RefCall                            // followed directly by '(': a function call or array subscript
)

func (r ReferenceType) String() string {
	switch r {
	case RefDefinition:
		return "definition"
	case RefRead:
		return "read"
	case RefWrite:
		return "write"
	case RefCall:
		return "call"
	default:
		return "unknown"
	}
}

// Reference is one occurrence of a name.
type Reference struct {
	Type   ReferenceType
	Line   int
	Column int
}

// Symbol collects every reference to one identifier across the source.
type Symbol struct {
	Name        string
	Definitions []*Reference
	Reads       []*Reference
	Writes      []*Reference
	Calls       []*Reference
	IsFunction  bool // declared via "function"
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

// XRefGenerator builds a cross-reference table by walking each
// statement's token sequence. It has no type information (that lives in
// value.Store at run time), so it classifies purely from lexical
// context: the declaring commands' own argument shapes, whether a name
// is immediately followed by an assignment operator, and whether it is
// immediately followed by '('.
type XRefGenerator struct {
	symbols map[string]*Symbol
}

// NewXRefGenerator creates an empty cross-reference generator.
func NewXRefGenerator() *XRefGenerator {
	return &XRefGenerator{symbols: make(map[string]*Symbol)}
}

// Generate scans source and returns its symbol table.
func (x *XRefGenerator) Generate(source string) (map[string]*Symbol, error) {
	res := Scan(source)
	for _, st := range res.Statements {
		x.visitStatement(st)
	}
	return x.symbols, nil
}

func (x *XRefGenerator) symbol(name string) *Symbol {
	sym, ok := x.symbols[name]
	if !ok {
		sym = &Symbol{Name: name}
		x.symbols[name] = sym
	}
	return sym
}

func (x *XRefGenerator) visitStatement(st *Statement) {
	toks := realTokens(st.Tokens)
	if len(toks) == 0 {
		return
	}

	if st.Command != nil && isDeclCommand(st.Keyword) {
		x.visitDeclaration(st.Keyword, toks)
		return
	}

	start := 0
	if st.Command != nil {
		start = 1 // skip the leading command keyword itself
	}
	x.visitExpressionTokens(toks[start:])
}

// isDeclCommand reports whether keyword introduces new identifiers
// rather than only referencing existing ones.
func isDeclCommand(keyword string) bool {
	switch keyword {
	case "var", "const", "static", "function", "for":
		return true
	}
	return false
}

// visitDeclaration records RefDefinition for the names a declaring
// command introduces, and treats everything else on the line (array
// dimensions, initializers, loop bounds) as ordinary expression uses.
func (x *XRefGenerator) visitDeclaration(keyword string, toks []lexer.Lexeme) {
	i := 1 // skip the keyword
	switch keyword {
	case "function":
		if i < len(toks) && toks[i].Type == lexer.Ident {
			sym := x.symbol(toks[i].Literal)
			sym.IsFunction = true
			sym.Definitions = append(sym.Definitions, &Reference{Type: RefDefinition, Line: toks[i].Pos.Line, Column: toks[i].Pos.Column})
			i++
		}
		x.visitExpressionTokens(toks[i:])

	case "for":
		if i < len(toks) && toks[i].Type == lexer.Ident {
			sym := x.symbol(toks[i].Literal)
			sym.Definitions = append(sym.Definitions, &Reference{Type: RefDefinition, Line: toks[i].Pos.Line, Column: toks[i].Pos.Column})
			i++
		}
		x.visitExpressionTokens(toks[i:])

	default: // var, const, static: comma-separated name[=init] list
		for i < len(toks) {
			if toks[i].Type == lexer.Ident {
				sym := x.symbol(toks[i].Literal)
				sym.Definitions = append(sym.Definitions, &Reference{Type: RefDefinition, Line: toks[i].Pos.Line, Column: toks[i].Pos.Column})
				i++
				continue
			}
			if toks[i].Literal == "=" {
				// everything up to the next top-level comma is an
				// initializer expression: ordinary reads/calls.
				j := i + 1
				depth := 0
			scanInit:
				for j < len(toks) {
					switch toks[j].Literal {
					case "(", "[":
						depth++
					case ")", "]":
						depth--
					case ",":
						if depth == 0 {
							break scanInit
						}
					}
					j++
				}
				x.visitExpressionTokens(toks[i+1 : j])
				i = j
				continue
			}
			i++
		}
	}
}

// visitExpressionTokens classifies every identifier in an ordinary
// (non-declaring) token run as a call, write, or read.
func (x *XRefGenerator) visitExpressionTokens(toks []lexer.Lexeme) {
	for i, t := range toks {
		if t.Type != lexer.Ident || parser.IsKeyword(t.Literal) {
			continue
		}
		sym := x.symbol(t.Literal)
		var next *lexer.Lexeme
		if i+1 < len(toks) {
			next = &toks[i+1]
		}
		switch {
		case next != nil && next.Literal == "(":
			sym.Calls = append(sym.Calls, &Reference{Type: RefCall, Line: t.Pos.Line, Column: t.Pos.Column})
		case next != nil && assignOps[next.Literal]:
			sym.Writes = append(sym.Writes, &Reference{Type: RefWrite, Line: t.Pos.Line, Column: t.Pos.Column})
		default:
			sym.Reads = append(sym.Reads, &Reference{Type: RefRead, Line: t.Pos.Line, Column: t.Pos.Column})
		}
	}
}

// realTokens strips inline comments out of a statement's token stream
// before cross-reference analysis.
func realTokens(toks []lexer.Lexeme) []lexer.Lexeme {
	out := make([]lexer.Lexeme, 0, len(toks))
	for _, t := range toks {
		if t.Type != lexer.Comment {
			out = append(out, t)
		}
	}
	return out
}

// GetSymbols returns every symbol found.
func (x *XRefGenerator) GetSymbols() map[string]*Symbol { return x.symbols }

// GetSymbol returns one symbol by name.
func (x *XRefGenerator) GetSymbol(name string) (*Symbol, bool) {
	sym, ok := x.symbols[name]
	return sym, ok
}

// GetFunctions returns every symbol declared with "function".
func (x *XRefGenerator) GetFunctions() []*Symbol {
	var out []*Symbol
	for _, sym := range x.symbols {
		if sym.IsFunction {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetUndefined returns symbols referenced but never declared.
func (x *XRefGenerator) GetUndefined() []*Symbol {
	var out []*Symbol
	for _, sym := range x.symbols {
		if len(sym.Definitions) == 0 {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetUnused returns symbols declared but never read, written, or called.
func (x *XRefGenerator) GetUnused() []*Symbol {
	var out []*Symbol
	for _, sym := range x.symbols {
		if len(sym.Definitions) > 0 && len(sym.Reads)+len(sym.Writes)+len(sym.Calls) == 0 {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// XRefReport renders a symbol table as a human-readable report.
type XRefReport struct {
	symbols []*Symbol
}

// NewXRefReport creates a report over symbols, sorted by name.
func NewXRefReport(symbols map[string]*Symbol) *XRefReport {
	sorted := make([]*Symbol, 0, len(symbols))
	for _, sym := range symbols {
		sorted = append(sorted, sym)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &XRefReport{symbols: sorted}
}

func (r *XRefReport) String() string {
	var sb strings.Builder
	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("=======================\n\n")

	for _, sym := range r.symbols {
		sb.WriteString(sym.Name)
		if sym.IsFunction {
			sb.WriteString(" [function]")
		}
		sb.WriteString("\n")

		if len(sym.Definitions) == 0 {
			sb.WriteString("  defined:  (never — used without declaration)\n")
		} else {
			lines := make([]string, len(sym.Definitions))
			for i, d := range sym.Definitions {
				lines[i] = fmt.Sprintf("%d", d.Line)
			}
			sb.WriteString(fmt.Sprintf("  defined:  line(s) %s\n", strings.Join(lines, ", ")))
		}

		for _, group := range []struct {
			label string
			refs  []*Reference
		}{
			{"written", sym.Writes},
			{"read", sym.Reads},
			{"called", sym.Calls},
		} {
			if len(group.refs) == 0 {
				continue
			}
			lines := make([]string, len(group.refs))
			for i, ref := range group.refs {
				lines[i] = fmt.Sprintf("%d", ref.Line)
			}
			sb.WriteString(fmt.Sprintf("  %-8s line(s) %s\n", group.label+":", strings.Join(lines, ", ")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// GenerateXRef is a convenience function producing a text report directly.
func GenerateXRef(source string) (string, error) {
	gen := NewXRefGenerator()
	symbols, err := gen.Generate(source)
	if err != nil {
		return "", err
	}
	return NewXRefReport(symbols).String(), nil
}
