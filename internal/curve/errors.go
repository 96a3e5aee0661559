// =============================
// File: internal/curve/errors.go
// =============================
package curve

import "errors"

var (
	// ErrCapacityExceeded is returned when a purchase would push the
	// circulating supply past the virtual token cap.
	ErrCapacityExceeded = errors.New("purchase exceeds virtual token capacity")

	// ErrArithmeticOverflow is returned when a price or supply computation
	// does not fit the 64-bit output width.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrCurveNotActive is returned when a trade is attempted against a curve
	// that has not been activated by deployment.
	ErrCurveNotActive = errors.New("bonding curve not active")

	// ErrInsufficientReserve is returned when a sell hits a curve whose
	// custodial reserve is empty.
	ErrInsufficientReserve = errors.New("insufficient funds in bonding curve")

	// ErrInsufficientFunds is returned when the trader's balance cannot cover
	// the trade.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
