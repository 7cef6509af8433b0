// Package hashcore implements the dual-region open-addressing table that
// backs every container in pkg/primcol: a lo-region of chained entries and a
// hi-region of dense chain terminators, a versioned token protocol for safe
// and unsafe iteration, and the TypeOps/Mover capability traits that let the
// table stay agnostic to both key equality semantics and value storage
// strategy.
package hashcore

import (
	"fmt"

	"go.uber.org/zap"
)

// rekeyChainThreshold is the chain length past which an insert may trigger a
// same-capacity rehash with a new TypeOps before appending another
// lo-region entry.
const rekeyChainThreshold = 100

// Mover is implemented by the container (a pkg/primcol façade) that owns
// value storage parallel to a Core's key slots. Core never holds a V type
// parameter itself, so it can stay agnostic to whatever storage strategy
// (direct, nullable, bit-packed) the façade chooses.
type Mover interface {
	// PrepareResize allocates a fresh value store of the given capacity,
	// keeping the old one reachable until FinishResize.
	PrepareResize(newCapacity int)
	// RelocateValue copies the value at oldIndex (old store) to newIndex
	// (new store) during a resize or same-capacity rehash.
	RelocateValue(newIndex, oldIndex int)
	// FinishResize swaps the new store in as the active one.
	FinishResize()
	// MoveValue copies the value at src to dst within the current store,
	// used by remove-triggered compaction.
	MoveValue(dst, src int)
	// ClearValue releases any owned reference held at i, used when a
	// removed entry's slot happens to need no compacting move.
	ClearValue(i int)
}

// Core is the dual-region hash table of keys. K must be comparable so it can
// serve as a map key of last resort (rekey bookkeeping, tests); actual key
// equality for table operations always goes through ops.
type Core[K comparable] struct {
	ops   TypeOps[K]
	rekey RekeyFunc[K]
	mover Mover
	log   *zap.Logger

	useHashCache bool
	keys         []K
	hash         []uint32

	buckets []int32 // 1-based chain-head index per bucket; 0 = empty
	links   []int32 // next-index for lo-region entries

	loSize, hiSize int
	version        uint32

	hasNullKey bool

	rekeyAttempts int
}

// Option configures a Core at construction time.
type Option[K comparable] func(*Core[K])

// WithHashCache retains each entry's hash alongside its key, trading memory
// for avoiding a recompute on every comparison — worthwhile for object keys
// with an expensive Hash, wasteful for cheap primitive keys.
func WithHashCache[K comparable](enabled bool) Option[K] {
	return func(c *Core[K]) { c.useHashCache = enabled }
}

// WithRekey opts a key type into pathological-collision mitigation: past
// rekeyChainThreshold entries in one chain, the table rebuilds itself with
// a fresh TypeOps rather than keep appending to a degenerate chain.
func WithRekey[K comparable](fn RekeyFunc[K]) Option[K] {
	return func(c *Core[K]) { c.rekey = fn }
}

// WithLogger attaches a structured logger for diagnostic events (resizes,
// rekeys). Nil disables logging.
func WithLogger[K comparable](log *zap.Logger) Option[K] {
	return func(c *Core[K]) { c.log = log }
}

// NewCore constructs an empty table. mover must not be nil.
func NewCore[K comparable](ops TypeOps[K], mover Mover, opts ...Option[K]) *Core[K] {
	c := &Core[K]{ops: ops, mover: mover, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Capacity returns the physical size of the key array.
func (c *Core[K]) Capacity() int { return len(c.keys) }

// Size returns the number of live entries, including the null key if present.
func (c *Core[K]) Size() int {
	n := c.loSize + c.hiSize
	if c.hasNullKey {
		n++
	}
	return n
}

// Version returns the current structural-mutation counter.
func (c *Core[K]) Version() uint32 { return c.version }

func bucketIndex(h uint32, numBuckets int) int {
	return int(h&0x7FFFFFFF) % numBuckets
}

func (c *Core[K]) effectiveHash(i int) uint32 {
	if c.useHashCache {
		return c.hash[i]
	}
	return c.ops.Hash(c.keys[i])
}

func (c *Core[K]) ensureLinks(n int) {
	if n <= len(c.links) {
		return
	}
	newLen := len(c.links)
	if newLen == 0 {
		newLen = 8
	}
	for newLen < n {
		newLen *= 2
	}
	if cap := c.Capacity(); newLen > cap {
		newLen = cap
	}
	grown := make([]int32, newLen)
	copy(grown, c.links)
	c.links = grown
}

// move relocates the entry at src into dst within the current arrays: it
// finds whatever referenced src (a bucket head or a predecessor's link) and
// redirects it to dst, copies the lo-region link if src has one, copies the
// key/hash/value, and clears the src key slot so no stale reference lingers.
func (c *Core[K]) move(src, dst int) {
	if src == dst {
		return
	}
	h := c.effectiveHash(src)
	b := bucketIndex(h, len(c.buckets))
	head := int(c.buckets[b]) - 1
	if head == src {
		c.buckets[b] = int32(dst + 1)
	} else {
		p := head
		steps := 0
		for {
			steps++
			if p == -1 || steps > c.loSize+2 {
				corrupt("move: could not find referrer of slot %d", src)
			}
			if int(c.links[p]) == src {
				c.links[p] = int32(dst)
				break
			}
			p = int(c.links[p])
		}
	}
	if src < c.loSize {
		c.ensureLinks(dst + 1)
		c.links[dst] = c.links[src]
	}
	c.keys[dst] = c.keys[src]
	if c.useHashCache {
		c.hash[dst] = c.hash[src]
	}
	c.mover.MoveValue(dst, src)
	var zero K
	c.keys[src] = zero
}

// relocateAll rebuilds the table at newCapacity, optionally under a new
// TypeOps (nil keeps the current one). It serves initial allocation, growth
// resize, and same-capacity rekey mitigation alike.
func (c *Core[K]) relocateAll(newCapacity int, newOps TypeOps[K]) {
	oldKeys := c.keys
	oldLo, oldHi, oldCap := c.loSize, c.hiSize, c.Capacity()
	ops := c.ops
	if newOps != nil {
		ops = newOps
	}

	c.mover.PrepareResize(newCapacity)

	newB := nextPrime(newCapacity)
	newKeys := make([]K, newCapacity)
	var newHash []uint32
	if c.useHashCache {
		newHash = make([]uint32, newCapacity)
	}
	newBuckets := make([]int32, newB)
	newLinks := make([]int32, 0, oldLo+oldHi)
	newLo, newHi := 0, 0

	place := func(oldIdx int) {
		key := oldKeys[oldIdx]
		h := ops.Hash(key)
		b := bucketIndex(h, newB)
		head := int(newBuckets[b]) - 1
		var dst int
		if head == -1 {
			dst = newCapacity - 1 - newHi
			newHi++
		} else {
			dst = newLo
			newLo++
			newLinks = append(newLinks, int32(head))
		}
		newKeys[dst] = key
		if c.useHashCache {
			newHash[dst] = h
		}
		newBuckets[b] = int32(dst + 1)
		c.mover.RelocateValue(dst, oldIdx)
	}

	for i := 0; i < oldLo; i++ {
		place(i)
	}
	for i := oldCap - oldHi; i < oldCap; i++ {
		place(i)
	}

	c.keys, c.hash = newKeys, newHash
	c.buckets, c.links = newBuckets, newLinks
	c.loSize, c.hiSize = newLo, newHi
	c.ops = ops
	c.mover.FinishResize()
	c.version++

	c.log.Debug("hashcore: relocated table",
		zap.Int("old_capacity", oldCap), zap.Int("new_capacity", newCapacity),
		zap.Int("entries", newLo+newHi))
}

func (c *Core[K]) ensureInit() {
	if c.Capacity() == 0 {
		c.relocateAll(7, nil)
	}
}

// EnsureCapacity grows the table, if needed, to hold at least n entries
// without a further resize.
func (c *Core[K]) EnsureCapacity(n int) {
	if n <= c.Capacity() {
		return
	}
	c.relocateAll(nextPrime(n), nil)
}

// Trim shrinks the backing arrays to the smallest prime capacity that still
// fits the current size. The target is computed from the table's own size,
// so no live entry is ever discarded; an empty table is left as it is.
func (c *Core[K]) Trim() {
	n := c.loSize + c.hiSize
	if n == 0 {
		return
	}
	target := nextPrime(n)
	if target >= c.Capacity() {
		return
	}
	c.relocateAll(target, nil)
}

// Put inserts key if absent, or locates it if present. dst is the physical
// slot index the caller's value store must write to; wasNew reports whether
// this created a new entry (caller should increment its own counters) versus
// located an existing one (caller should overwrite in place).
func (c *Core[K]) Put(key K) (dst int, wasNew bool) {
	c.ensureInit()
	if c.loSize+c.hiSize == c.Capacity() {
		c.relocateAll(nextPrime(2*c.Capacity()), nil)
	}

	h := c.ops.Hash(key)
	b := bucketIndex(h, len(c.buckets))
	head := int(c.buckets[b]) - 1

	if head == -1 {
		dst := c.Capacity() - 1 - c.hiSize
		c.hiSize++
		c.keys[dst] = key
		if c.useHashCache {
			c.hash[dst] = h
		}
		c.buckets[b] = int32(dst + 1)
		c.version++
		return dst, true
	}

	idx := head
	chainLen := 0
	for {
		chainLen++
		if chainLen > c.loSize+2 {
			corrupt("put: chain walk exceeded lo_size+2 for bucket %d", b)
		}
		if c.matches(idx, h, key) {
			return idx, false
		}
		if idx >= c.loSize {
			break
		}
		idx = int(c.links[idx])
	}

	if chainLen > rekeyChainThreshold && c.rekey != nil {
		c.rekeyAttempts++
		newOps := c.rekey(c.rekeyAttempts, c.ops)
		c.log.Info("hashcore: rekeying table after long chain",
			zap.Int("chain_len", chainLen), zap.Int("attempt", c.rekeyAttempts))
		c.relocateAll(c.Capacity(), newOps)
		return c.Put(key)
	}

	dst = c.loSize
	c.loSize++
	c.ensureLinks(dst + 1)
	c.links[dst] = int32(head)
	c.keys[dst] = key
	if c.useHashCache {
		c.hash[dst] = h
	}
	c.buckets[b] = int32(dst + 1)
	c.version++
	return dst, true
}

func (c *Core[K]) matches(idx int, h uint32, key K) bool {
	if c.useHashCache && c.hash[idx] != h {
		return false
	}
	return c.ops.Equal(c.keys[idx], key)
}

// TokenOf returns a live token for key, or InvalidToken.
func (c *Core[K]) TokenOf(key K) Token {
	if c.Capacity() == 0 || len(c.buckets) == 0 {
		return InvalidToken
	}
	h := c.ops.Hash(key)
	b := bucketIndex(h, len(c.buckets))
	head := int(c.buckets[b]) - 1
	if head == -1 {
		return InvalidToken
	}
	idx := head
	chainLen := 0
	for {
		chainLen++
		if chainLen > c.loSize+2 {
			corrupt("tokenOf: chain walk exceeded lo_size+2 for bucket %d", b)
		}
		if c.matches(idx, h, key) {
			return newToken(c.version, int32(idx))
		}
		if idx >= c.loSize {
			return InvalidToken
		}
		idx = int(c.links[idx])
	}
}

// Remove deletes key if present, compacting the lo- or hi-region as needed.
func (c *Core[K]) Remove(key K) bool {
	if c.Capacity() == 0 || len(c.buckets) == 0 {
		return false
	}
	h := c.ops.Hash(key)
	b := bucketIndex(h, len(c.buckets))
	head := int(c.buckets[b]) - 1
	if head == -1 {
		return false
	}

	if head >= c.loSize {
		if !c.matches(head, h, key) {
			return false
		}
		c.buckets[b] = 0
		lastHi := c.Capacity() - c.hiSize
		if lastHi != head {
			c.move(lastHi, head)
		} else {
			var zero K
			c.keys[head] = zero
			c.mover.ClearValue(head)
		}
		c.hiSize--
		c.version++
		return true
	}

	pred := -1
	idx := head
	chainLen := 0
	for {
		chainLen++
		if chainLen > c.loSize+2 {
			corrupt("remove: chain walk exceeded lo_size+2 for bucket %d", b)
		}
		if c.matches(idx, h, key) {
			break
		}
		if idx >= c.loSize {
			return false
		}
		pred = idx
		idx = int(c.links[idx])
	}
	victim := idx

	var freed int
	switch {
	case pred == -1:
		c.buckets[b] = c.links[victim] + 1
		freed = victim
	case victim < c.loSize:
		c.links[pred] = c.links[victim]
		freed = victim
	default:
		c.move(pred, victim)
		freed = pred
	}

	lastLo := c.loSize - 1
	if freed != lastLo {
		c.move(lastLo, freed)
	} else {
		var zero K
		c.keys[freed] = zero
		c.mover.ClearValue(freed)
	}
	c.loSize--
	c.version++
	return true
}

// Clear removes every entry. Key slots that held owning references are
// zeroed; value storage is the façade's own responsibility and is left
// untouched (its contents will simply be overwritten by future inserts).
func (c *Core[K]) Clear() {
	var zero K
	for i := 0; i < c.loSize; i++ {
		c.keys[i] = zero
	}
	for i := c.Capacity() - c.hiSize; i < c.Capacity(); i++ {
		c.keys[i] = zero
	}
	for i := range c.buckets {
		c.buckets[i] = 0
	}
	c.loSize, c.hiSize = 0, 0
	c.hasNullKey = false
	c.version++
}

// PutNullKey marks the null key present. wasNew reports whether it was
// previously absent.
func (c *Core[K]) PutNullKey() (wasNew bool) {
	wasNew = !c.hasNullKey
	if wasNew {
		c.hasNullKey = true
		c.version++
	}
	return wasNew
}

// RemoveNullKey clears the null key, reporting whether it was present.
func (c *Core[K]) RemoveNullKey() bool {
	if !c.hasNullKey {
		return false
	}
	c.hasNullKey = false
	c.version++
	return true
}

// HasNullKey reports whether the null key is present.
func (c *Core[K]) HasNullKey() bool { return c.hasNullKey }

// NullKeyToken returns a live token for the null key, or InvalidToken.
func (c *Core[K]) NullKeyToken() Token {
	if !c.hasNullKey {
		return InvalidToken
	}
	return newToken(c.version, NullIndex)
}

// Key returns the key addressed by tok. The null key's K representation is
// K's zero value, since Core never stores a real K for it.
func (c *Core[K]) Key(tok Token) K {
	if tok.IsNullKey() {
		var zero K
		return zero
	}
	return c.keys[tok.Index()]
}

// unsafeNextIndex advances across the dense iteration order — [0,loSize)
// then [Capacity()-hiSize,Capacity()) — without any version check. idx=-1
// starts from the beginning.
func (c *Core[K]) unsafeNextIndex(idx int) int {
	hiStart := c.Capacity() - c.hiSize
	if idx < 0 {
		if c.loSize > 0 {
			return 0
		}
		if c.hiSize > 0 {
			return hiStart
		}
		return -1
	}
	if idx < c.loSize {
		if idx+1 < c.loSize {
			return idx + 1
		}
		if c.hiSize > 0 {
			return hiStart
		}
		return -1
	}
	if idx+1 < c.Capacity() {
		return idx + 1
	}
	return -1
}

// UnsafeNext advances from idx (or -1 to start) without checking the table
// version, for callers that accept undefined results under concurrent
// structural mutation in exchange for avoiding the version check.
func (c *Core[K]) UnsafeNext(idx int) int { return c.unsafeNextIndex(idx) }

// FirstToken returns a token for the first live entry in iteration order
// (keyed entries before the null key), or InvalidToken if empty.
func (c *Core[K]) FirstToken() Token {
	if i := c.unsafeNextIndex(-1); i != -1 {
		return newToken(c.version, int32(i))
	}
	if c.hasNullKey {
		return newToken(c.version, NullIndex)
	}
	return InvalidToken
}

// NextToken advances from prev, returning ErrConcurrentModification if prev
// was minted against a stale version and ErrInvalidArgument for
// InvalidToken.
func (c *Core[K]) NextToken(prev Token) (Token, error) {
	if prev == InvalidToken {
		return InvalidToken, ErrInvalidArgument
	}
	if prev.Version() != c.version {
		return InvalidToken, ErrConcurrentModification
	}
	if prev.IsNullKey() {
		return InvalidToken, nil
	}
	next := c.unsafeNextIndex(int(prev.Index()))
	if next != -1 {
		return newToken(c.version, int32(next)), nil
	}
	if c.hasNullKey {
		return newToken(c.version, NullIndex), nil
	}
	return InvalidToken, nil
}

// String reports size, capacity, and region split, for debugging.
func (c *Core[K]) String() string {
	return fmt.Sprintf("Core{size=%d capacity=%d lo=%d hi=%d version=%d}",
		c.Size(), c.Capacity(), c.loSize, c.hiSize, c.version)
}
