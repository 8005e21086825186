package gcpentry

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// NewInsertIDGenerator returns a function that produces insert ids which are
// unique across processes and lexically ordered by generation time: 11 hex
// digits of unix milliseconds, 8 hex digits of a per-process random salt,
// and 8 hex digits of a counter that breaks ties within one millisecond.
// The returned function is safe for concurrent use and never fails.
func NewInsertIDGenerator() func() string {
	salt := processSalt()
	var counter uint64

	return func() string {
		n := atomic.AddUint64(&counter, 1)
		return fmt.Sprintf("%011x%s%08x", time.Now().UnixMilli(), salt, n)
	}
}

func processSalt() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		binary.BigEndian.PutUint32(b[:], uint32(time.Now().UnixNano()))
	}
	return hex.EncodeToString(b[:])
}

// defaultInsertID backs entry construction when the caller supplies no id.
var defaultInsertID = NewInsertIDGenerator()
