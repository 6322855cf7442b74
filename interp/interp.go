// Package interp implements the orchestration layer: it wires
// ident+value+token+lexer+parser+breakpoint+engine+housekeeping into
// one runnable unit, mirroring the teacher's vm.VM as the single
// object a frontend (CLI, TUI, websocket API) drives.
//
// Grounded on vm.VM's role as the thing main.go constructs once and
// calls Step/InitializeStack/etc on, generalized from a fixed-memory
// ARM machine to a growing token stream plus its breakpoint/engine
// satellites.
package interp

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/justina-lang/justinavm/breakpoint"
	"github.com/justina-lang/justinavm/engine"
	"github.com/justina-lang/justinavm/housekeeping"
	"github.com/justina-lang/justinavm/ident"
	"github.com/justina-lang/justinavm/loader"
	"github.com/justina-lang/justinavm/parser"
	"github.com/justina-lang/justinavm/token"
	"github.com/justina-lang/justinavm/value"
)

// Limits bounds the fixed-size resources spec §2 calls out: the
// packed token stream's capacity, the breakpoint table's MAX_BP, and
// the last-values FIFO depth.
type Limits struct {
	StreamCapacity int
	MaxBreakpoints int
	FIFOSize       int
	LineRangeCap   int
}

// DefaultLimits mirrors spec §2's fixed-memory-region framing scaled
// to a comfortable desktop-hosted default; a microcontroller target
// would shrink these via config.Config.
var DefaultLimits = Limits{
	StreamCapacity: 64 * 1024,
	MaxBreakpoints: 64,
	FIFOSize:       8,
	LineRangeCap:   4096,
}

// Interpreter is the single object a frontend constructs and drives:
// one token stream, one variable store, one evaluation engine, the
// breakpoint subsystem sitting over it, and the housekeeping monitor
// that lets a host interrupt it between statements.
type Interpreter struct {
	Acct   *ident.Accounting
	Vars   *value.Store
	Parser *parser.Parser
	Engine *engine.Engine
	BP     *breakpoint.Table
	House  *housekeeping.Monitor

	// Root sandboxes loadProg's target path, if set; nil means paths
	// are taken as given (a frontend with no filesystem-root policy).
	Root *loader.Root

	lineRange *breakpoint.LineRangeBuilder
	prevSep   int // cursor of the previous statement's separator, -1 if none yet
	line      int // current source line counter, for ExecLine/LoadFile
	limits    Limits
}

// New creates a freshly wired Interpreter with the given limits and
// host. Pass housekeeping.New() (or nil to disable housekeeping
// polling entirely) as the monitor.
func New(limits Limits, host engine.Host, house *housekeeping.Monitor) *Interpreter {
	acct := ident.NewAccounting()
	vars := value.NewStore(acct, limits.FIFOSize)
	p := parser.NewParser(limits.StreamCapacity, vars, acct)

	lineRange := breakpoint.NewLineRangeBuilder(limits.LineRangeCap)
	bp := breakpoint.NewTable(lineRange.Table, limits.MaxBreakpoints)

	it := &Interpreter{
		Acct:      acct,
		Vars:      vars,
		Parser:    p,
		BP:        bp,
		House:     house,
		lineRange: lineRange,
		prevSep:   -1,
		limits:    limits,
	}

	p.OnStatementBoundary = it.onStatementBoundary

	eng := engine.NewEngine(p.Stream, vars, acct, p.Pool)
	eng.BP = bp
	eng.House = house
	eng.Debug = it
	if host != nil {
		eng.Host = host
	}
	it.Engine = eng

	return it
}

// onStatementBoundary feeds the parser's per-statement callback into
// the line-range builder, upgrading the previous statement's separator
// to BP-allowed whenever this statement starts a new source line (spec
// §4.E "Line-range table construction").
func (it *Interpreter) onStatementBoundary(line int, sepCursor int, isNewLine bool) {
	ev := breakpoint.BoundaryEvent{
		Line:          line,
		SepCursor:     sepCursor,
		PrevSepCursor: it.prevSep,
		IsNewLine:     isNewLine,
	}
	_ = it.lineRange.Handle(ev, func(cursor int) error {
		return it.Parser.Stream.FixupSeparator(cursor, token.SepBPAllowed)
	})
	it.prevSep = sepCursor
}

// ExecLine parses one line of immediate-mode (or program) input and
// runs it to completion (or to the next suspension point: breakpoint,
// stepBudget exhausted, or a housekeeping stop).
//
// Grounded on the teacher's RunCLI loop in debugger/interface.go (read
// a line, execute it, report errors), generalized from dispatching
// debugger commands to compiling-and-running Justina statements.
func (it *Interpreter) ExecLine(text string) error {
	it.line++
	startCursor := it.Engine.Cursor()
	if err := it.Parser.ParseLine(text, it.line); err != nil {
		return err
	}
	if err := it.lineRange.Flush(); err != nil {
		return err
	}
	return it.Engine.Run(startCursor)
}

// LoadFile parses a whole Justina source file line by line into the
// interpreter's shared token stream, then leaves it ready to run from
// the start (callers wanting immediate execution should follow with
// Run(0)). Mirrors loader.LoadProgramIntoVM's "read one input, produce
// one ready-to-run machine image" shape, but for a line-oriented text
// format instead of an assembled binary.
func (it *Interpreter) LoadFile(path string) error {
	f, err := os.Open(path) // #nosec G304 -- user-specified program path, same trust model as the teacher's asmFile argument
	if err != nil {
		return fmt.Errorf("opening program file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		it.line++
		if err := it.Parser.ParseLine(scanner.Text(), it.line); err != nil {
			return fmt.Errorf("%s:%d: %w", path, it.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading program file: %w", err)
	}
	return it.lineRange.Flush()
}

// LoadSource parses a whole program given as an in-memory string rather
// than a file path, for frontends (the HTTP API) that receive source
// text directly instead of a filesystem reference. Mirrors LoadFile's
// line-by-line scanning over a strings.Reader instead of an *os.File.
func (it *Interpreter) LoadSource(text string) error {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		it.line++
		if err := it.Parser.ParseLine(scanner.Text(), it.line); err != nil {
			return fmt.Errorf("line %d: %w", it.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading program source: %w", err)
	}
	return it.lineRange.Flush()
}

// Run starts (or resumes) execution at the given token-stream cursor.
func (it *Interpreter) Run(cursor int) error {
	return it.Engine.Run(cursor)
}

// ClearProgram discards the parsed token stream and variable store but
// keeps the breakpoint table, marking it draft per spec §4.F "Status
// draft": the table's program-step pointers are now stale until a
// fresh LoadFile re-arms it via RearmBreakpoints. Implements the
// clearProg command and engine.Debug.ClearProgram.
func (it *Interpreter) ClearProgram() error {
	it.Acct = ident.NewAccounting()
	it.Vars = value.NewStore(it.Acct, it.limits.FIFOSize)
	it.Parser = parser.NewParser(it.limits.StreamCapacity, it.Vars, it.Acct)
	it.Parser.OnStatementBoundary = it.onStatementBoundary
	it.lineRange.Reset()
	it.prevSep = -1
	it.line = 0

	eng := engine.NewEngine(it.Parser.Stream, it.Vars, it.Acct, it.Parser.Pool)
	eng.BP = it.BP
	eng.House = it.House
	eng.Host = it.Engine.Host
	eng.Debug = it
	it.Engine = eng

	it.BP.MarkDraft()
	return nil
}

// LoadProgram implements the loadProg command: clears the current
// program, reads path (through Root's sandbox if one is configured),
// and parses it into the fresh token stream. An empty path re-loads
// nothing, matching loadProg's bare form reusing whatever program was
// last loaded by a frontend outside the language itself.
func (it *Interpreter) LoadProgram(path string) error {
	if path == "" {
		return nil
	}
	if err := it.ClearProgram(); err != nil {
		return err
	}
	if it.Root == nil {
		return it.LoadFile(path)
	}
	resolved, err := it.Root.Resolve(path)
	if err != nil {
		return err
	}
	return it.LoadFile(resolved)
}

// ClearMemory implements the clearMem command: resets all user
// variables and heap-string accounting without discarding the parsed
// program, mirroring value.Store.Reset's "clearUserVars" mode.
func (it *Interpreter) ClearMemory() error {
	it.Vars.Reset(true)
	return nil
}

// DeleteVariable implements one name of the delete command.
func (it *Interpreter) DeleteVariable(name string) error {
	_, err := it.Vars.DeleteUserVariable(name)
	return err
}

// RearmBreakpoints re-locates every breakpoint-table row's program-step
// pointer after a fresh parse and clears draft status, per spec §4.F.
// Rows whose line no longer starts an executable statement are
// silently dropped (the reference path ties this to re-parsing, which
// this mirrors by re-running the same StatementLocator that Set uses).
func (it *Interpreter) RearmBreakpoints() error {
	kept := it.BP.Rows[:0]
	for _, row := range it.BP.Rows {
		step, err := it.statementLocator(it.lineRange.Table.LineToIndex(row.Line))
		if err != nil {
			continue
		}
		if ok, err := it.isExecutable(step); err != nil || !ok {
			continue
		}
		row.ProgramStep = step
		kept = append(kept, row)
	}
	it.BP.Rows = kept
	it.BP.Rearm()
	return nil
}
