package store

// HashSize is the width of a term hash
const HashSize = 16

// Hash identifies a term string inside the key space
type Hash [HashSize]byte

// KeyEncoder turns term strings into fixed-width keys
type KeyEncoder interface {
	// Hash returns the 128-bit hash of a term
	Hash(term string) Hash

	// TripleKey concatenates hashes into a big-endian index key
	TripleKey(subject, predicate, object Hash) []byte

	// SplitTripleKey reverses TripleKey
	SplitTripleKey(key []byte) (subject, predicate, object Hash, err error)
}
