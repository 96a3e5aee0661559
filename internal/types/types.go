// internal/types/types.go
package types

import (
	"time"
)

// PaymentMode selects how a buyer settles a purchase against the reserve asset.
type PaymentMode uint8

const (
	// PayNative settles from the buyer's native reserve balance; the engine
	// wraps the payment before crediting the curve's custodial account.
	PayNative PaymentMode = iota
	// PayWrapped settles directly from the buyer's wrapped reserve account.
	PayWrapped
)

func (m PaymentMode) String() string {
	switch m {
	case PayNative:
		return "native"
	case PayWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// Handle is the globally unique byte key identifying a creator token.
type Handle [32]byte

// HandleFromString builds a handle from a UTF-8 string, truncating at 32 bytes.
func HandleFromString(s string) Handle {
	var h Handle
	copy(h[:], s)
	return h
}

func (h Handle) String() string {
	end := len(h)
	for end > 0 && h[end-1] == 0 {
		end--
	}
	return string(h[:end])
}

// IsZero reports whether the handle is entirely unset.
func (h Handle) IsZero() bool {
	return h == Handle{}
}

// Clock abstracts time for vault and supporter bookkeeping. Trade logic never
// reads it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation used outside of tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
