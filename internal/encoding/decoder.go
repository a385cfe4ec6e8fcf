package encoding

import (
	"fmt"

	"github.com/mentalhealthdb/mhdb/pkg/store"
)

// SplitTripleKey reverses TripleKey
func (e *KeyEncoder) SplitTripleKey(key []byte) (subject, predicate, object store.Hash, err error) {
	if len(key) != TripleKeySize {
		return subject, predicate, object, fmt.Errorf("invalid triple key length %d, expected %d", len(key), TripleKeySize)
	}
	copy(subject[:], key[0:store.HashSize])
	copy(predicate[:], key[store.HashSize:2*store.HashSize])
	copy(object[:], key[2*store.HashSize:])
	return subject, predicate, object, nil
}

var _ store.KeyEncoder = (*KeyEncoder)(nil)
