// =============================
// File: internal/curve/pricing.go
// =============================
package curve

import (
	"github.com/holiman/uint256"
)

// Protocol constants. All amounts are in scaled units (9 decimals). The three
// supply ceilings are intentionally distinct literals: direct buys are bounded
// by VirtualTokenCap, spend-driven buys are clamped at SpendSupplyCeiling, and
// swap targets are bounded by SwapSupplyCeiling (see router package).
const (
	// VirtualReserve bootstraps the curve so pricing is defined at zero supply.
	VirtualReserve uint64 = 500_000_000

	// VirtualTokenCap is the supply ceiling enforced on direct buys.
	VirtualTokenCap uint64 = 10_000_000

	// SpendSupplyCeiling clamps the token amount computed for a fixed spend.
	SpendSupplyCeiling uint64 = 800_000_000

	// FeeDenominator converts basis points to a fraction.
	FeeDenominator uint64 = 10_000

	// ReserveUnitScale is the number of base units per whole reserve asset.
	ReserveUnitScale uint64 = 1_000_000_000

	// DefaultBuyFeeBps and DefaultSellFeeBps are fixed at deployment.
	DefaultBuyFeeBps  uint16 = 50
	DefaultSellFeeBps uint16 = 50
)

// currentReserve returns VirtualReserve + supply*initialPrice/1e9 with a
// 256-bit intermediate. Division truncates.
func currentReserve(supply, initialPrice uint64) *uint256.Int {
	r := new(uint256.Int).Mul(
		uint256.NewInt(supply),
		uint256.NewInt(initialPrice),
	)
	r.Div(r, uint256.NewInt(ReserveUnitScale))
	return r.Add(r, uint256.NewInt(VirtualReserve))
}

// PriceAtSupply returns the instantaneous price at the given circulating
// supply. The remaining virtual supply is floored at 1 so the price is defined
// at and beyond the cap.
func PriceAtSupply(supply, initialPrice uint64) (uint64, error) {
	remaining := uint64(1)
	if supply < VirtualTokenCap {
		remaining = VirtualTokenCap - supply
	}

	price := currentReserve(supply, initialPrice)
	price.Mul(price, uint256.NewInt(VirtualTokenCap))
	price.Div(price, uint256.NewInt(remaining))
	price.Mul(price, uint256.NewInt(initialPrice))
	price.Div(price, uint256.NewInt(VirtualTokenCap))

	if !price.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return price.Uint64(), nil
}

// buyQuote computes the fee-exclusive and fee-inclusive cost of buying amount
// tokens at the given supply.
func buyQuote(supply, amount uint64, feeBps uint16, initialPrice uint64) (base, total uint64, err error) {
	if amount >= VirtualTokenCap || supply >= VirtualTokenCap-amount {
		return 0, 0, ErrCapacityExceeded
	}

	cur := currentReserve(supply, initialPrice)
	next := new(uint256.Int).Mul(cur, uint256.NewInt(VirtualTokenCap))
	next.Div(next, uint256.NewInt(VirtualTokenCap-supply-amount))

	needed := new(uint256.Int).Sub(next, cur)
	withFee := new(uint256.Int).Mul(needed, uint256.NewInt(FeeDenominator+uint64(feeBps)))
	withFee.Div(withFee, uint256.NewInt(FeeDenominator))

	if !needed.IsUint64() || !withFee.IsUint64() {
		return 0, 0, ErrArithmeticOverflow
	}
	return needed.Uint64(), withFee.Uint64(), nil
}

// BuyPrice returns the total reserve cost, fee included, of buying amount
// tokens at the given supply. Fails with ErrCapacityExceeded when the purchase
// would exceed the virtual token cap.
func BuyPrice(supply, amount uint64, feeBps uint16, initialPrice uint64) (uint64, error) {
	_, total, err := buyQuote(supply, amount, feeBps, initialPrice)
	return total, err
}

// SellQuote carries the components of a sell computation. Raw is the
// theoretical pre-fee proceeds, Fee the protocol take computed on Raw, and Net
// what the seller is owed before the reserve cap is applied.
type SellQuote struct {
	Raw uint64
	Fee uint64
	Net uint64
}

// SellQuoteFor prices the sale of amount tokens at the given supply using a
// trapezoidal approximation of the curve integral. Selling more than the
// circulating supply quotes zero.
func SellQuoteFor(supply, amount uint64, feeBps uint16, initialPrice uint64) (SellQuote, error) {
	if amount > supply {
		return SellQuote{}, nil
	}

	priceHigh, err := PriceAtSupply(supply, initialPrice)
	if err != nil {
		return SellQuote{}, err
	}
	priceLow, err := PriceAtSupply(supply-amount, initialPrice)
	if err != nil {
		return SellQuote{}, err
	}

	avg := new(uint256.Int).Add(uint256.NewInt(priceHigh), uint256.NewInt(priceLow))
	avg.Div(avg, uint256.NewInt(2))

	raw := avg.Mul(avg, uint256.NewInt(amount))
	raw.Div(raw, uint256.NewInt(2))
	if !raw.IsUint64() {
		return SellQuote{}, ErrArithmeticOverflow
	}

	// The fee product can exceed 64 bits even when raw fits, so it stays in
	// 256-bit precision until after the division.
	fee := new(uint256.Int).Mul(raw, uint256.NewInt(uint64(feeBps)))
	fee.Div(fee, uint256.NewInt(FeeDenominator))

	q := SellQuote{Raw: raw.Uint64(), Fee: fee.Uint64()}
	q.Net = q.Raw - q.Fee
	return q, nil
}

// SellPrice returns the net proceeds of selling amount tokens at the given
// supply, zero when amount exceeds supply.
func SellPrice(supply, amount uint64, feeBps uint16, initialPrice uint64) (uint64, error) {
	q, err := SellQuoteFor(supply, amount, feeBps, initialPrice)
	if err != nil {
		return 0, err
	}
	return q.Net, nil
}

// BuyAmountForSpend inverts the buy relation: it returns the token amount a
// fixed reserve spend purchases at the given supply. The result is clamped so
// the resulting supply never exceeds SpendSupplyCeiling, which is deliberately
// a different bound from the direct-buy capacity check.
func BuyAmountForSpend(supply, spend uint64, feeBps uint16, initialPrice uint64) uint64 {
	adjusted := new(uint256.Int).Mul(uint256.NewInt(spend), uint256.NewInt(FeeDenominator))
	adjusted.Div(adjusted, uint256.NewInt(FeeDenominator+uint64(feeBps)))
	if adjusted.IsZero() {
		return 0
	}

	cur := currentReserve(supply, initialPrice)
	next := new(uint256.Int).Add(cur, adjusted)

	// Invert next = cur*T/(T-supply-amount) for amount.
	remaining := new(uint256.Int).Mul(cur, uint256.NewInt(VirtualTokenCap))
	remaining.Div(remaining, next)

	taken := new(uint256.Int).Add(uint256.NewInt(supply), remaining)
	cap256 := uint256.NewInt(VirtualTokenCap)
	if taken.Cmp(cap256) >= 0 {
		return 0
	}
	amount := new(uint256.Int).Sub(cap256, taken).Uint64()

	if supply >= SpendSupplyCeiling {
		return 0
	}
	if amount > SpendSupplyCeiling-supply {
		amount = SpendSupplyCeiling - supply
	}
	return amount
}
