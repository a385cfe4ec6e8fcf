package encoding

import (
	"encoding/binary"

	"github.com/mentalhealthdb/mhdb/pkg/store"
	"github.com/zeebo/xxh3"
)

// TripleKeySize is the width of an spo index key
const TripleKeySize = 3 * store.HashSize

// KeyEncoder hashes term strings with 128-bit xxhash3
type KeyEncoder struct{}

func NewKeyEncoder() *KeyEncoder {
	return &KeyEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string
func (e *KeyEncoder) Hash128(s string) [16]byte {
	hash := xxh3.HashString128(s)
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// Hash implements store.KeyEncoder
func (e *KeyEncoder) Hash(term string) store.Hash {
	return e.Hash128(term)
}

// TripleKey concatenates the three hashes so keys sort by subject first
func (e *KeyEncoder) TripleKey(subject, predicate, object store.Hash) []byte {
	key := make([]byte, 0, TripleKeySize)
	key = append(key, subject[:]...)
	key = append(key, predicate[:]...)
	return append(key, object[:]...)
}
