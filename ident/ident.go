// Package ident interns identifier names and tracks ownership of every
// heap string the interpreter allocates, grounded on the name-table
// lookups in the teacher's vm/symbol_resolver.go and the category
// counters described in the Justina reference's breakpoints/parsing
// sources (original_source/src/breakpoints.cpp, JustinaParse.cpp).
package ident

import "fmt"

// NameTable interns a single category of identifier name (program
// variable names, user variable names, or function names) and hands
// back a stable index for each distinct name, mirroring the reference's
// "stored once per distinct name" tables.
type NameTable struct {
	names []string
}

// NewNameTable creates an empty name table.
func NewNameTable() *NameTable {
	return &NameTable{}
}

// Intern returns the index of name, appending it if not already present.
func (t *NameTable) Intern(name string) int {
	if idx, ok := t.Lookup(name); ok {
		return idx
	}
	t.names = append(t.names, name)
	return len(t.names) - 1
}

// Lookup performs the linear scan the reference implementation does
// (length-prefixed byte comparison in C; direct string comparison here).
func (t *NameTable) Lookup(name string) (int, bool) {
	for i, n := range t.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Name returns the interned name at idx.
func (t *NameTable) Name(idx int) string {
	return t.names[idx]
}

// Remove deletes the name at idx, shifting later entries down by one;
// every name after idx ends up at an index one lower. It returns
// nothing, and it does not fix up references held elsewhere.
func (t *NameTable) Remove(idx int) {
	t.names = append(t.names[:idx], t.names[idx+1:]...)
}

// Len returns the number of interned names.
func (t *NameTable) Len() int { return len(t.names) }

// FuncNameEntry records a function name plus the observed argument-count
// range across all calls seen so far, matching the two extra bytes the
// reference keeps per function-name entry (min/max observed arg counts),
// plus a sentinel meaning "first occurrence only, range not yet narrowed".
type FuncNameEntry struct {
	Name            string
	MinArgsSeen     int
	MaxArgsSeen     int
	FirstOccurrence bool
}

// FuncTable interns function names with their observed-arity sentinel.
type FuncTable struct {
	entries []FuncNameEntry
}

// NewFuncTable creates an empty function-name table.
func NewFuncTable() *FuncTable {
	return &FuncTable{}
}

// Intern returns the index of name, creating a fresh first-occurrence
// entry if this is the first time the name is seen.
func (t *FuncTable) Intern(name string) int {
	if idx, ok := t.Lookup(name); ok {
		return idx
	}
	t.entries = append(t.entries, FuncNameEntry{Name: name, FirstOccurrence: true})
	return len(t.entries) - 1
}

// Lookup finds a function name's index.
func (t *FuncTable) Lookup(name string) (int, bool) {
	for i, e := range t.entries {
		if e.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Entry returns the entry at idx.
func (t *FuncTable) Entry(idx int) *FuncNameEntry {
	return &t.entries[idx]
}

// ObserveCall narrows (or sets, on first occurrence) the observed
// argument-count range for the function at idx.
func (t *FuncTable) ObserveCall(idx, argCount int) {
	e := &t.entries[idx]
	if e.FirstOccurrence {
		e.MinArgsSeen, e.MaxArgsSeen = argCount, argCount
		e.FirstOccurrence = false
		return
	}
	if argCount < e.MinArgsSeen {
		e.MinArgsSeen = argCount
	}
	if argCount > e.MaxArgsSeen {
		e.MaxArgsSeen = argCount
	}
}

// Len returns the number of interned function names.
func (t *FuncTable) Len() int { return len(t.entries) }

// StringCategory is one of the thirteen disjoint heap-string ownership
// categories the reference implementation tracks with global counters
// (see DESIGN.md for the per-category grounding).
type StringCategory int

const (
	CatProgramVarNames StringCategory = iota
	CatUserVarNames
	CatParsedConstants
	CatLastValueFIFO
	CatGlobalStaticVarStrings
	CatGlobalStaticArrayStorage
	CatUserVarStrings
	CatUserArrayStorage
	CatLocalVarStrings
	CatLocalArrayStorage
	CatLocalVarBaseAreas
	CatIntermediateStrings
	CatSystemStrings
	numStringCategories
)

var categoryNames = [numStringCategories]string{
	"programVarNames", "userVarNames", "parsedConstants", "lastValueFIFO",
	"globalStaticVarStrings", "globalStaticArrayStorage", "userVarStrings",
	"userArrayStorage", "localVarStrings", "localArrayStorage",
	"localVarBaseAreas", "intermediateStrings", "systemStrings",
}

func (c StringCategory) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("StringCategory(%d)", c)
	}
	return categoryNames[c]
}

// NumCategories is the number of tracked string ownership categories.
const NumCategories = int(numStringCategories)

// Accounting tracks live heap-string counts per category. Each
// allocation site calls Alloc exactly once; each free site calls Free
// exactly once for the same category. A mismatched Free increments an
// error counter instead of going negative, surfaced through sysVal()
// without aborting execution, per spec §4.A.
type Accounting struct {
	counts [numStringCategories]int64
	errs   [numStringCategories]int64
}

// NewAccounting creates a fresh, all-zero accounting ledger.
func NewAccounting() *Accounting {
	return &Accounting{}
}

// Alloc records a new live string in category cat.
func (a *Accounting) Alloc(cat StringCategory) {
	a.counts[cat]++
}

// Free records the destruction of a string in category cat.
func (a *Accounting) Free(cat StringCategory) {
	if a.counts[cat] <= 0 {
		a.errs[cat]++
		return
	}
	a.counts[cat]--
}

// Count returns the live count for category cat.
func (a *Accounting) Count(cat StringCategory) int64 {
	return a.counts[cat]
}

// ErrorCount returns the accumulated free/alloc mismatch count, surfaced
// by the sysVal() built-in.
func (a *Accounting) ErrorCount(cat StringCategory) int64 {
	return a.errs[cat]
}

// AllZero reports whether every tracked category is at zero live
// strings, the invariant checked after a full reset (spec invariant 1).
func (a *Accounting) AllZero() bool {
	for _, c := range a.counts {
		if c != 0 {
			return false
		}
	}
	return true
}

// Reset zeroes every live-string counter. Error counters are left
// intact so leak diagnostics survive a reset, matching the reference's
// "discrepancies accumulate" language in spec §4.A.
func (a *Accounting) Reset() {
	for i := range a.counts {
		a.counts[i] = 0
	}
}

// Snapshot returns a copy of the live counters, keyed by category, for
// diagnostics and tests.
func (a *Accounting) Snapshot() [NumCategories]int64 {
	return a.counts
}
