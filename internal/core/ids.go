package core

import (
	"crypto/rand"
	"fmt"
	"time"
)

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", b[:])
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano()%10000)
	}
	return fmt.Sprintf("%x", b)
}

// NewFormID mints an accountability form identifier. The timestamp keeps ids
// roughly sortable; the random suffix disambiguates same-millisecond submits.
func NewFormID(now time.Time) string {
	return fmt.Sprintf("ACC-%d-%s", now.UnixMilli(), randomSuffix(3))
}

// NewDisposalID mints a disposal request identifier.
func NewDisposalID(now time.Time) string {
	return fmt.Sprintf("DSP-%d-%s", now.UnixMilli(), randomSuffix(3))
}
