// Package idgen provides sortable identifiers for ledger rows, so the
// bounded-retention trim (ORDER BY id DESC LIMIT n) stays cheap on an index
// that already matches insertion order.
package idgen

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid"
)

// MonotonicULIDGenerator returns a generator safe for concurrent use, each
// call producing a ULID that sorts after the previous one within the same
// millisecond.
func MonotonicULIDGenerator() func() string {
	var m sync.Mutex
	entropy := ulid.Monotonic(rand.Reader, 0)

	return func() string {
		m.Lock()
		defer m.Unlock()
		return ulid.MustNew(ulid.Now(), entropy).String()
	}
}
