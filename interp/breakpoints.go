package interp

import (
	"fmt"
	"strings"

	"github.com/justina-lang/justinavm/parser"
	"github.com/justina-lang/justinavm/token"
)

// statementLocator implements breakpoint.StatementLocator: scan the
// program area counting BP-allowed/BP-set separators until the
// seqIndex-th is found, per spec §4.F "Setting a breakpoint" — the
// token following that separator is the statement start.
func (it *Interpreter) statementLocator(seqIndex int) (int, error) {
	if seqIndex < 0 {
		return 0, fmt.Errorf("source line is not a breakpoint-allowed statement start")
	}
	stream := it.Parser.Stream
	cursor := 0
	seen := -1
	for cursor < stream.Len() {
		tok, err := stream.Decode(cursor)
		if err != nil {
			return 0, err
		}
		next, err := stream.Step(cursor)
		if err != nil {
			return 0, err
		}
		if tok.Kind == token.KindSeparator && (tok.Sep == token.SepBPAllowed || tok.Sep == token.SepBPSet) {
			seen++
			if seen == seqIndex {
				return next, nil
			}
		}
		cursor = next
	}
	return 0, fmt.Errorf("source line is not a breakpoint-allowed statement start")
}

// isExecutable implements breakpoint.IsExecutableLookup: a statement
// starting with a command marked skip-during-exec (var, function,
// clearProg, ...) may not carry a breakpoint.
func (it *Interpreter) isExecutable(programStep int) (bool, error) {
	tok, err := it.Parser.Stream.Decode(programStep)
	if err != nil {
		return false, err
	}
	if tok.Kind != token.KindKeyword {
		return true, nil
	}
	name, ok := parser.CommandNameByCode(tok.Code)
	if !ok {
		return true, nil
	}
	cmd, ok := parser.LookupCommand(name)
	if !ok {
		return true, nil
	}
	return cmd.Restrictions&parser.RestrSkipDuringExec == 0, nil
}

// SetBreakpoint implements the setBP command (spec §6): line plus
// optional view/hit-count/trigger attributes.
func (it *Interpreter) SetBreakpoint(line int, view string, hasView bool, hitCount int, trigger string, hasTrigger bool) error {
	return it.BP.Set(line, view, hasView, hitCount, trigger, hasTrigger, it.statementLocator, it.isExecutable)
}

// ClearBreakpoint implements clearBP for one line.
func (it *Interpreter) ClearBreakpoint(line int) error { return it.BP.Clear(line) }

// EnableBreakpoint/DisableBreakpoint implement enableBP/disableBP.
func (it *Interpreter) EnableBreakpoint(line int) error  { return it.BP.Enable(line) }
func (it *Interpreter) DisableBreakpoint(line int) error { return it.BP.Disable(line) }

// MoveBreakpoint implements moveBP.
func (it *Interpreter) MoveBreakpoint(from, to int) error { return it.BP.Move(from, to) }

// BreakpointsOn/BreakpointsOff implement BPon/BPoff: globally enable
// or disable breakpoint evaluation without touching individual rows.
func (it *Interpreter) BreakpointsOn()  { it.BP.On = true }
func (it *Interpreter) BreakpointsOff() { it.BP.On = false }

// ListBreakpoints implements listBP: a snapshot of the table's rows in
// sorted-by-line order, exactly as stored.
func (it *Interpreter) ListBreakpoints() []BreakpointRow {
	rows := make([]BreakpointRow, len(it.BP.Rows))
	for i, r := range it.BP.Rows {
		rows[i] = BreakpointRow{
			Line: r.Line, Enabled: r.Enabled,
			View: r.View, HasView: r.HasView,
			Trigger: r.Trigger, HasTrigger: r.HasTrigger,
			HitCount: r.HitCount, HasHitCount: r.HasHitCount,
			HitCounter: r.HitCounter,
		}
	}
	return rows
}

// FormatBreakpoints implements the listBP command: one line per row,
// sorted by source line as the table already keeps them.
func (it *Interpreter) FormatBreakpoints() string {
	if len(it.BP.Rows) == 0 {
		return "no breakpoints set\n"
	}
	var b strings.Builder
	for _, r := range it.BP.Rows {
		state := "enabled"
		if !r.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(&b, "line %d: %s", r.Line, state)
		if r.HasView {
			fmt.Fprintf(&b, ", view=%q", r.View)
		}
		if r.HasTrigger {
			fmt.Fprintf(&b, ", trigger=%q", r.Trigger)
		}
		if r.HasHitCount {
			fmt.Fprintf(&b, ", hitCount=%d (at %d)", r.HitCount, r.HitCounter)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// BreakpointRow is the frontend-facing (copy, not pointer-into-table)
// view of one breakpoint.Row, used by the CLI/TUI/API layers so they
// don't need to import breakpoint directly for display purposes.
type BreakpointRow struct {
	Line        int
	Enabled     bool
	View        string
	HasView     bool
	Trigger     string
	HasTrigger  bool
	HitCount    int
	HasHitCount bool
	HitCounter  int
}
