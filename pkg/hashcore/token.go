package hashcore

// NullIndex is the reserved slot index representing the null key. It does
// not correspond to a physical array position.
const NullIndex int32 = 0x7FFFFFFF

// Token is an opaque, versioned handle to an entry. It packs a 32-bit table
// version with a 32-bit slot index so that a token minted before a
// structural mutation (insert triggering resize, removal triggering
// compaction) can be detected as stale by safe iteration.
type Token int64

// InvalidToken is returned wherever no entry exists to reference.
const InvalidToken Token = -1

func newToken(version uint32, index int32) Token {
	return Token(uint64(version)<<32 | uint64(uint32(index)))
}

// Version returns the table version this token was minted against.
func (t Token) Version() uint32 { return uint32(uint64(t) >> 32) }

// Index returns the slot index, or NullIndex for the null key.
func (t Token) Index() int32 { return int32(uint32(t)) }

// IsNullKey reports whether this token addresses the null key.
func (t Token) IsNullKey() bool { return t != InvalidToken && t.Index() == NullIndex }
