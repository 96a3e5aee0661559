package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyPriceFromEmptyCurve(t *testing.T) {
	price, err := BuyPrice(0, 1000, DefaultBuyFeeBps, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(50255), price, "first 1000 tokens should cost 50255 with fee")
}

func TestBuyPriceSecondPurchaseCostsMore(t *testing.T) {
	first, err := BuyPrice(0, 1000, DefaultBuyFeeBps, 1)
	require.NoError(t, err)

	second, err := BuyPrice(1000, 1000, DefaultBuyFeeBps, 1)
	require.NoError(t, err)

	assert.Equal(t, uint64(100520), second)
	assert.Greater(t, second, first, "same amount must cost more at higher supply")
}

func TestBuyPriceMonotonicInSupply(t *testing.T) {
	var prev uint64
	for _, supply := range []uint64{0, 1000, 100_000, 1_000_000, 5_000_000} {
		price, err := BuyPrice(supply, 500, DefaultBuyFeeBps, 1)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, price, prev, "supply %d", supply)
		prev = price
	}
}

func TestBuyPriceCapacityExceeded(t *testing.T) {
	_, err := BuyPrice(VirtualTokenCap-10, 11, DefaultBuyFeeBps, 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// Exactly hitting the cap is rejected too: remaining would be zero.
	_, err = BuyPrice(0, VirtualTokenCap, DefaultBuyFeeBps, 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestBuyPriceOverflowWithHugeInitialPrice(t *testing.T) {
	_, err := BuyPrice(VirtualTokenCap-1000, 999, DefaultBuyFeeBps, ^uint64(0))
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestSellQuoteMatchesHalvedAverage(t *testing.T) {
	quote, err := SellQuoteFor(1000, 1000, DefaultSellFeeBps, 1)
	require.NoError(t, err)

	assert.Equal(t, uint64(25000), quote.Raw)
	assert.Equal(t, uint64(125), quote.Fee)
	assert.Equal(t, uint64(24875), quote.Net)
}

func TestSellQuoteFeeOnLargeProceeds(t *testing.T) {
	// Raw is close to the uint64 ceiling, so the fee product only fits in
	// extended precision.
	quote, err := SellQuoteFor(1_000_000, 1_000_000, DefaultSellFeeBps, 100_000_000_000)
	require.NoError(t, err)

	assert.Equal(t, uint64(2_916_666_665_000_000_000), quote.Raw)
	assert.Equal(t, uint64(14_583_333_325_000_000), quote.Fee)
	assert.Equal(t, quote.Raw-quote.Fee, quote.Net)
}

func TestSellPriceZeroWhenAmountExceedsSupply(t *testing.T) {
	price, err := SellPrice(500, 501, DefaultSellFeeBps, 1)
	require.NoError(t, err)
	assert.Zero(t, price)
}

func TestSellNeverExceedsBuy(t *testing.T) {
	// A buyer who immediately sells back must not profit.
	for _, amount := range []uint64{1, 10, 1000, 50_000, 1_000_000} {
		buy, err := BuyPrice(0, amount, DefaultBuyFeeBps, 1)
		require.NoError(t, err)

		sell, err := SellPrice(amount, amount, DefaultSellFeeBps, 1)
		require.NoError(t, err)

		assert.LessOrEqual(t, sell, buy, "amount %d", amount)
	}
}

func TestPriceAtSupplyFloorsRemainingAtOne(t *testing.T) {
	atCap, err := PriceAtSupply(VirtualTokenCap, 1)
	require.NoError(t, err)

	aboveCap, err := PriceAtSupply(VirtualTokenCap+500, 1)
	require.NoError(t, err)

	// Past the cap the divisor is pinned to 1, so the price stops growing
	// from the divisor but keeps growing with the reserve.
	assert.Greater(t, aboveCap, uint64(0))
	assert.GreaterOrEqual(t, aboveCap, atCap)
}

func TestBuyAmountForSpendInvertsBuyPrice(t *testing.T) {
	spend, err := BuyPrice(0, 1000, DefaultBuyFeeBps, 1)
	require.NoError(t, err)

	amount := BuyAmountForSpend(0, spend, DefaultBuyFeeBps, 1)
	// Truncating division loses at most a few base units.
	assert.InDelta(t, 1000, float64(amount), 2)
}

func TestBuyAmountForSpendClampedToCeiling(t *testing.T) {
	// An absurd spend cannot mint past the per-purchase ceiling.
	amount := BuyAmountForSpend(0, ^uint64(0)/2, DefaultBuyFeeBps, 1)
	assert.LessOrEqual(t, amount, uint64(SpendSupplyCeiling))
}

func TestBuyAmountForZeroSpend(t *testing.T) {
	assert.Zero(t, BuyAmountForSpend(0, 0, DefaultBuyFeeBps, 1))
}
