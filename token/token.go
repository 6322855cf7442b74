// Package token implements the packed token stream of spec §3/§4.C
// (component C): a byte-packed linear buffer holding parsed statements,
// with random-access walking and a sentinel end-of-stream marker. The
// buffer shape is grounded on the teacher's bit-packing style in
// encoder/encoder.go (ARM instruction word assembly), generalized from
// fixed 32-bit instruction words to variable-length, kind-tagged
// tokens.
package token

import (
	"encoding/binary"
	"fmt"
)

// Kind identifies what a token represents. Unlike the reference's 4-bit
// type nibble (a microcontroller memory-density trick), each token here
// starts with one full kind byte followed by kind-specific fixed
// fields; this trades a few bytes per token for code that stays
// readable, a deliberate simplification recorded in DESIGN.md.
type Kind uint8

const (
	KindNoToken Kind = iota // sentinel marking the current end of a stream area
	KindSeparator           // statement-terminating ';' — plain / BP-allowed / BP-set
	KindKeyword
	KindTerminal // operator or punctuation other than ';'
	KindConstLong
	KindConstFloat
	KindConstString
	KindSymbolicConst
	KindVarRef
	KindInternalFunc
	KindExternalFunc
	KindUserFunc
	KindGenericName
)

// SepKind distinguishes the three statement-separator variants of spec §3.
type SepKind uint8

const (
	SepPlain SepKind = iota
	SepBPAllowed
	SepBPSet
)

// Token is the in-memory (unpacked) representation of one token. Emit
// serializes it into the packed byte buffer; Step/decode reconstruct it
// from the buffer. BlockOffset carries the pre-resolved forward/backward
// branch spec §3 describes ("stored as 16-bit offsets inside the
// keyword token") for if/elseif/else/end, for/while...end,
// break/continue, and return.
type Token struct {
	Kind        Kind
	Code        uint16 // keyword code / terminal code / builtin code / function index
	Sep         SepKind
	BlockOffset int16 // byte-cursor delta to the linked block token; 0 = unresolved
	StrHandle   uint32
	VarScope    uint8
	VarSlot     uint16
	ExtBucket   uint8
	ArgCount    uint8 // InternalFunc/ExternalFunc/UserFunc: actual argument count from the call site
	Subscripted bool  // VarRef: true if a subscript expression list precedes this token
}

// encodedLen returns the total number of bytes Emit writes for a token
// of this kind (header byte included).
func (t Token) encodedLen() int {
	switch t.Kind {
	case KindNoToken:
		return 1
	case KindSeparator:
		return 2
	case KindKeyword:
		return 5 // kind + code(1) + blockOffset(2) + argCount(1)
	case KindTerminal:
		return 2
	case KindConstLong:
		return 5
	case KindConstFloat:
		return 5
	case KindConstString:
		return 5
	case KindSymbolicConst:
		return 3
	case KindVarRef:
		return 5 // kind + varScope(1) + varSlot(2) + subscripted(1)
	case KindInternalFunc:
		return 4 // kind + code(2) + argCount(1)
	case KindExternalFunc:
		return 5 // kind + extBucket(1) + code(2) + argCount(1)
	case KindUserFunc:
		return 4 // kind + code(2) + argCount(1)
	case KindGenericName:
		return 5
	default:
		return 1
	}
}

// Stream is the packed token buffer for one area (program or immediate
// mode). It always ends with a KindNoToken sentinel byte at End.
type Stream struct {
	Buf []byte
	End int // offset of the sentinel no-token byte
	Cap int // maximum size this area may grow to before program-memory-full
}

// ErrProgramMemoryFull is returned by Emit when appending would exceed
// the stream's capacity.
var ErrProgramMemoryFull = fmt.Errorf("program-memory-full")

// NewStream creates an empty stream with the given capacity and writes
// the initial sentinel.
func NewStream(capacity int) *Stream {
	s := &Stream{Buf: make([]byte, 1, capacity), Cap: capacity}
	s.Buf[0] = byte(KindNoToken)
	s.End = 0
	return s
}

// Emit appends tok after the current end-of-stream marker, advancing
// End past it and re-writing the sentinel. It returns the cursor
// (offset) of the newly emitted token.
func (s *Stream) Emit(tok Token) (int, error) {
	n := tok.encodedLen()
	if s.End+n+1 > s.Cap {
		return 0, ErrProgramMemoryFull
	}
	start := s.End
	buf := make([]byte, n)
	buf[0] = byte(tok.Kind)
	switch tok.Kind {
	case KindNoToken:
		// nothing more
	case KindSeparator:
		buf[1] = byte(tok.Sep)
	case KindKeyword:
		buf[1] = byte(tok.Code)
		binary.LittleEndian.PutUint16(buf[2:4], uint16(tok.BlockOffset))
		buf[4] = tok.ArgCount
	case KindTerminal:
		buf[1] = byte(tok.Code)
	case KindConstLong, KindConstFloat, KindConstString, KindGenericName:
		binary.LittleEndian.PutUint32(buf[1:5], tok.StrHandle)
	case KindSymbolicConst:
		binary.LittleEndian.PutUint16(buf[1:3], tok.Code)
	case KindInternalFunc, KindUserFunc:
		binary.LittleEndian.PutUint16(buf[1:3], tok.Code)
		buf[3] = tok.ArgCount
	case KindVarRef:
		buf[1] = tok.VarScope
		binary.LittleEndian.PutUint16(buf[2:4], tok.VarSlot)
		if tok.Subscripted {
			buf[4] = 1
		}
	case KindExternalFunc:
		buf[1] = tok.ExtBucket
		binary.LittleEndian.PutUint16(buf[2:4], tok.Code)
		buf[4] = tok.ArgCount
	}

	// Grow the backing slice, truncating the old sentinel, write the
	// token, then re-append the sentinel.
	s.Buf = s.Buf[:start]
	s.Buf = append(s.Buf, buf...)
	s.Buf = append(s.Buf, byte(KindNoToken))
	s.End = start + n
	return start, nil
}

// Decode reconstructs the token at cursor.
func (s *Stream) Decode(cursor int) (Token, error) {
	if cursor < 0 || cursor >= len(s.Buf) {
		return Token{}, fmt.Errorf("token cursor %d out of range", cursor)
	}
	kind := Kind(s.Buf[cursor])
	tok := Token{Kind: kind}
	buf := s.Buf
	switch kind {
	case KindNoToken:
	case KindSeparator:
		tok.Sep = SepKind(buf[cursor+1])
	case KindKeyword:
		tok.Code = uint16(buf[cursor+1])
		tok.BlockOffset = int16(binary.LittleEndian.Uint16(buf[cursor+2 : cursor+4]))
		tok.ArgCount = buf[cursor+4]
	case KindTerminal:
		tok.Code = uint16(buf[cursor+1])
	case KindConstLong, KindConstFloat, KindConstString, KindGenericName:
		tok.StrHandle = binary.LittleEndian.Uint32(buf[cursor+1 : cursor+5])
	case KindSymbolicConst:
		tok.Code = binary.LittleEndian.Uint16(buf[cursor+1 : cursor+3])
	case KindInternalFunc, KindUserFunc:
		tok.Code = binary.LittleEndian.Uint16(buf[cursor+1 : cursor+3])
		tok.ArgCount = buf[cursor+3]
	case KindVarRef:
		tok.VarScope = buf[cursor+1]
		tok.VarSlot = binary.LittleEndian.Uint16(buf[cursor+2 : cursor+4])
		tok.Subscripted = buf[cursor+4] != 0
	case KindExternalFunc:
		tok.ExtBucket = buf[cursor+1]
		tok.Code = binary.LittleEndian.Uint16(buf[cursor+2 : cursor+4])
		tok.ArgCount = buf[cursor+4]
	default:
		return Token{}, fmt.Errorf("corrupt token stream: unknown kind %d at %d", kind, cursor)
	}
	return tok, nil
}

// Step advances cursor past the token located there, returning the
// offset of the next token (or End+1 / past-sentinel at end of stream).
func (s *Stream) Step(cursor int) (int, error) {
	tok, err := s.Decode(cursor)
	if err != nil {
		return 0, err
	}
	return cursor + tok.encodedLen(), nil
}

// FindToken performs a linear scan from start looking for a token
// matching kind and code (code2/code3 are additional acceptable codes,
// -1 to ignore). Returns -1 if none is found before the sentinel.
func FindToken(s *Stream, start int, kind Kind, code int, code2, code3 int) (int, error) {
	cursor := start
	for cursor < s.End {
		tok, err := s.Decode(cursor)
		if err != nil {
			return -1, err
		}
		if tok.Kind == kind {
			c := int(tok.Code)
			if c == code || (code2 >= 0 && c == code2) || (code3 >= 0 && c == code3) {
				return cursor, nil
			}
		}
		next, err := s.Step(cursor)
		if err != nil {
			return -1, err
		}
		cursor = next
	}
	return -1, nil
}

// FixupBlockOffset rewrites the 16-bit block-chain offset field of a
// previously emitted keyword token, used to link if/elseif/else/end,
// loop bodies, and break/continue/return to their target.
func (s *Stream) FixupBlockOffset(cursor int, offset int16) error {
	tok, err := s.Decode(cursor)
	if err != nil {
		return err
	}
	if tok.Kind != KindKeyword {
		return fmt.Errorf("fixup target at %d is not a keyword token", cursor)
	}
	binary.LittleEndian.PutUint16(s.Buf[cursor+2:cursor+4], uint16(offset))
	return nil
}

// FixupSeparator rewrites a separator token's variant in place (used to
// promote plain -> BP-allowed -> BP-set and back, without re-emitting).
func (s *Stream) FixupSeparator(cursor int, sep SepKind) error {
	tok, err := s.Decode(cursor)
	if err != nil {
		return err
	}
	if tok.Kind != KindSeparator {
		return fmt.Errorf("fixup target at %d is not a separator token", cursor)
	}
	s.Buf[cursor+1] = byte(sep)
	return nil
}

// Truncate resets the end-of-stream marker back to cursor, discarding
// any tokens emitted after it (used when a partially-emitted statement
// fails to parse: spec §4.E "Emission constraints").
func (s *Stream) Truncate(cursor int) {
	s.Buf = s.Buf[:cursor]
	s.Buf = append(s.Buf, byte(KindNoToken))
	s.End = cursor
}

// Len returns the current logical length of the stream (up to but not
// including the sentinel).
func (s *Stream) Len() int { return s.End }
