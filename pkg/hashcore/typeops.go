package hashcore

import (
	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/fasthash/fnv1a"
)

// TypeOps supplies the hash and equality capability a key type must provide.
// Core never assumes K implements any particular method set beyond
// comparable, so object keys (case-insensitive strings, structs keyed by a
// subset of their fields, and so on) can be supported by swapping TypeOps
// rather than by wrapping K.
type TypeOps[K any] interface {
	Hash(key K) uint32
	Equal(a, b K) bool
}

// FuncOps adapts two plain functions into a TypeOps, for one-off or
// composite key types that don't warrant a named implementation.
type FuncOps[K any] struct {
	HashFunc  func(K) uint32
	EqualFunc func(a, b K) bool
}

func (f FuncOps[K]) Hash(key K) uint32 { return f.HashFunc(key) }
func (f FuncOps[K]) Equal(a, b K) bool { return f.EqualFunc(a, b) }

func mix64to32(h uint64) uint32 {
	return uint32(h ^ (h >> 32))
}

// StringOps hashes string keys with xxhash and compares by ==.
var StringOps TypeOps[string] = stringOps{seed: 0}

type stringOps struct{ seed uint64 }

func (s stringOps) Hash(key string) uint32 {
	if s.seed == 0 {
		return mix64to32(xxhash.Sum64String(key))
	}
	d := xxhash.NewWithSeed(s.seed)
	_, _ = d.WriteString(key)
	return mix64to32(d.Sum64())
}
func (stringOps) Equal(a, b string) bool { return a == b }

// NewSeededStringOps returns a StringOps variant hashing with an alternate
// seed, used by RekeyFunc implementations to escape an adversarial chain
// without changing key equality semantics.
func NewSeededStringOps(seed uint64) TypeOps[string] {
	if seed == 0 {
		seed = 1
	}
	return stringOps{seed: seed}
}

// BytesOps hashes []byte keys with xxhash and compares byte-for-byte.
var BytesOps TypeOps[[]byte] = bytesOps{}

type bytesOps struct{}

func (bytesOps) Hash(key []byte) uint32 { return mix64to32(xxhash.Sum64(key)) }
func (bytesOps) Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Int64Ops hashes int64 keys with fnv1a's integer mixing.
var Int64Ops TypeOps[int64] = int64Ops{}

type int64Ops struct{}

func (int64Ops) Hash(key int64) uint32 { return mix64to32(fnv1a.HashUint64(uint64(key))) }
func (int64Ops) Equal(a, b int64) bool { return a == b }

// Uint64Ops hashes uint64 keys with fnv1a's integer mixing.
var Uint64Ops TypeOps[uint64] = uint64Ops{}

type uint64Ops struct{}

func (uint64Ops) Hash(key uint64) uint32 { return mix64to32(fnv1a.HashUint64(key)) }
func (uint64Ops) Equal(a, b uint64) bool { return a == b }

// IntOps hashes platform int keys with fnv1a's integer mixing.
var IntOps TypeOps[int] = intOps{}

type intOps struct{}

func (intOps) Hash(key int) uint32 { return mix64to32(fnv1a.HashUint64(uint64(key))) }
func (intOps) Equal(a, b int) bool { return a == b }

// Int32Ops hashes int32 keys with fnv1a's integer mixing.
var Int32Ops TypeOps[int32] = int32Ops{}

type int32Ops struct{}

func (int32Ops) Hash(key int32) uint32 { return fnv1a.HashUint32(uint32(key)) }
func (int32Ops) Equal(a, b int32) bool { return a == b }

// RekeyFunc produces a replacement TypeOps when a chain grows pathologically
// long, letting object-key maps escape an adversarial or unlucky hash
// distribution by re-seeding rather than failing. It is opted into per
// construction via WithRekey; HashCore never invokes one unless supplied.
type RekeyFunc[K any] func(attempt int, current TypeOps[K]) TypeOps[K]

// StringRekey builds a RekeyFunc for string keys that reseeds xxhash on
// every invocation.
func StringRekey() RekeyFunc[string] {
	return func(attempt int, _ TypeOps[string]) TypeOps[string] {
		return NewSeededStringOps(uint64(attempt)*0x9E3779B97F4A7C15 + 1)
	}
}
