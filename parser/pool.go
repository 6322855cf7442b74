package parser

import (
	"github.com/justina-lang/justinavm/ident"
	"github.com/justina-lang/justinavm/value"
)

// ConstPool backs the indirect KindConstLong/Float/String/GenericName
// token fields: each emitted constant or not-yet-classified name gets
// one pool entry, and the token's StrHandle is the entry's index. This
// is what makes invariant 2 of spec §8 checkable ("every parsed
// string-constant pointer in the token stream references exactly one
// live allocation, and its counter equals the number of such pointers
// across all live token streams") — one pool entry per token occurrence,
// never deduplicated, so freeing a statement's tokens frees exactly its
// own entries.
type ConstPool struct {
	Entries []value.Value
	Names   []string // parallel slice: non-empty only for GenericName entries
}

// NewConstPool creates an empty constant pool.
func NewConstPool() *ConstPool {
	return &ConstPool{}
}

// InternLong adds a long constant, returning its handle.
func (p *ConstPool) InternLong(v int32) uint32 {
	p.Entries = append(p.Entries, value.Long32(v))
	p.Names = append(p.Names, "")
	return uint32(len(p.Entries) - 1)
}

// InternFloat adds a float constant, returning its handle.
func (p *ConstPool) InternFloat(v float32) uint32 {
	p.Entries = append(p.Entries, value.Float32Val(v))
	p.Names = append(p.Names, "")
	return uint32(len(p.Entries) - 1)
}

// InternString adds a string constant, accounting it in
// CatParsedConstants, returning its handle.
func (p *ConstPool) InternString(acct *ident.Accounting, s string) uint32 {
	v := value.NewString(acct, s, ident.CatParsedConstants)
	p.Entries = append(p.Entries, v)
	p.Names = append(p.Names, "")
	return uint32(len(p.Entries) - 1)
}

// InternGenericName adds a not-yet-classified identifier occurrence,
// accounted in CatIntermediateStrings until the parser resolves it.
func (p *ConstPool) InternGenericName(acct *ident.Accounting, name string) uint32 {
	v := value.NewString(acct, name, ident.CatIntermediateStrings)
	p.Entries = append(p.Entries, v)
	p.Names = append(p.Names, name)
	return uint32(len(p.Entries) - 1)
}

// Get returns the pool entry at handle.
func (p *ConstPool) Get(handle uint32) value.Value {
	return p.Entries[handle]
}

// Free releases handle's string payload (if it holds one) from the
// given category — used when truncating a partially emitted statement.
func (p *ConstPool) Free(acct *ident.Accounting, handle uint32, cat ident.StringCategory) {
	value.FreeString(acct, p.Entries[handle], cat)
}

// TruncateFrom drops every pool entry from handle onward, freeing their
// string payloads first; used alongside token.Stream.Truncate when a
// statement fails to parse (spec §4.E "Emission constraints").
func (p *ConstPool) TruncateFrom(acct *ident.Accounting, handle uint32) {
	for i := handle; int(i) < len(p.Entries); i++ {
		cat := ident.CatIntermediateStrings
		if p.Names[i] == "" {
			cat = ident.CatParsedConstants
		}
		value.FreeString(acct, p.Entries[i], cat)
	}
	p.Entries = p.Entries[:handle]
	p.Names = p.Names[:handle]
}

// Len returns the current number of pool entries.
func (p *ConstPool) Len() uint32 { return uint32(len(p.Entries)) }
