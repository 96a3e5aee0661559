// =============================
// File: internal/curve/curve.go
// =============================
package curve

import (
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/attenomics/curve-engine/internal/events"
	"github.com/attenomics/curve-engine/internal/ledger"
	"github.com/attenomics/curve-engine/internal/types"
)

// State is the lifecycle state of a curve. Active is terminal; there is no
// pause or resume.
type State uint8

const (
	StateUninitialized State = iota
	StateActive
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	default:
		return "invalid"
	}
}

// Curve is the per-token tradable market state. The engine holds exclusive
// access to a curve for the duration of one operation via Lock/Unlock; the
// monotonic supply invariant depends on that read-then-write atomicity.
type Curve struct {
	// Address identifies the curve itself; it is also the mint authority for
	// the token and the owner key of the custodial reserve account.
	Address        solana.PublicKey
	TokenMint      solana.PublicKey
	FeeCollector   solana.PublicKey
	ReserveAccount solana.PublicKey

	BuyFeeBps  uint16
	SellFeeBps uint16

	// PurchaseMarketSupply is the effective circulating supply priced by the
	// curve. Invariant: 0 <= PurchaseMarketSupply <= VirtualTokenCap after any
	// successful transition.
	PurchaseMarketSupply uint64
	LifetimeFees         uint64
	ReserveRatio         uint64
	InitialPrice         uint64

	state  State
	mu     sync.Mutex
	logger *zap.Logger
}

// NewCurve constructs an uninitialized curve for a token mint.
func NewCurve(address, tokenMint solana.PublicKey, logger *zap.Logger) *Curve {
	return &Curve{
		Address:   address,
		TokenMint: tokenMint,
		logger:    logger.Named("curve").With(zap.String("token_mint", tokenMint.String())),
	}
}

// Lock takes exclusive access to the curve for one operation.
func (c *Curve) Lock() { c.mu.Lock() }

// Unlock releases exclusive access.
func (c *Curve) Unlock() { c.mu.Unlock() }

// State returns the lifecycle state.
func (c *Curve) State() State { return c.state }

// Activate moves the curve Uninitialized -> Active at deployment. Fee rates
// are fixed; reserve ratio and initial price come from the caller's config.
func (c *Curve) Activate(feeCollector, reserveAccount solana.PublicKey, reserveRatio, initialPrice uint64) error {
	if c.state != StateUninitialized {
		return fmt.Errorf("activate %s curve: %w", c.state, ErrCurveNotActive)
	}
	c.FeeCollector = feeCollector
	c.ReserveAccount = reserveAccount
	c.BuyFeeBps = DefaultBuyFeeBps
	c.SellFeeBps = DefaultSellFeeBps
	c.PurchaseMarketSupply = 0
	c.LifetimeFees = 0
	c.ReserveRatio = reserveRatio
	c.InitialPrice = initialPrice
	c.state = StateActive
	return nil
}

// Buy purchases amount tokens for buyer, settling through the ledger. The full
// payment, fee included, is credited to the curve's custodial reserve; the fee
// portion is accumulated in LifetimeFees. The caller must hold the curve lock.
func (c *Curve) Buy(l *ledger.Ledger, buyer solana.PublicKey, amount uint64, mode types.PaymentMode, now time.Time) (*events.TokenBoughtEvent, error) {
	if c.state != StateActive {
		return nil, ErrCurveNotActive
	}

	base, total, err := buyQuote(c.PurchaseMarketSupply, amount, c.BuyFeeBps, c.InitialPrice)
	if err != nil {
		return nil, err
	}
	if c.PurchaseMarketSupply+amount < c.PurchaseMarketSupply {
		return nil, ErrArithmeticOverflow
	}

	// Mint and reserve headroom, so no settlement step can fail once the
	// payment has moved.
	if l.TokenBalance(ledger.ReserveMint, c.ReserveAccount) > ^uint64(0)-total {
		return nil, ledger.ErrBalanceOverflow
	}
	if l.TokenSupply(c.TokenMint) > ^uint64(0)-amount ||
		l.TokenBalance(c.TokenMint, buyer) > ^uint64(0)-amount {
		return nil, ledger.ErrBalanceOverflow
	}

	// Check-then-act: every balance check completes before any write.
	switch mode {
	case types.PayNative:
		if l.NativeBalance(buyer) < total {
			return nil, fmt.Errorf("buy %d tokens for %d: %w", amount, total, ErrInsufficientFunds)
		}
		if err := l.WrapNative(buyer, total); err != nil {
			return nil, err
		}
	case types.PayWrapped:
		if l.TokenBalance(ledger.ReserveMint, buyer) < total {
			return nil, fmt.Errorf("buy %d tokens for %d: %w", amount, total, ErrInsufficientFunds)
		}
	default:
		return nil, fmt.Errorf("unknown payment mode %d", mode)
	}

	if err := l.TransferToken(ledger.ReserveMint, buyer, c.ReserveAccount, total); err != nil {
		return nil, err
	}
	if err := l.Mint(c.TokenMint, buyer, amount, c.Address); err != nil {
		return nil, err
	}

	c.PurchaseMarketSupply += amount
	c.LifetimeFees += total - base

	c.logger.Info("Buy executed",
		zap.String("buyer", buyer.String()),
		zap.Uint64("amount", amount),
		zap.Uint64("price", total),
		zap.Uint64("fee", total-base),
		zap.String("payment_mode", mode.String()),
		zap.Uint64("supply", c.PurchaseMarketSupply))

	return &events.TokenBoughtEvent{
		BaseEvent: events.BaseEvent{EventType: events.TokenBought, EventTime: now},
		Buyer:     buyer,
		TokenMint: c.TokenMint,
		Amount:    amount,
		Price:     total,
	}, nil
}

// Sell burns amount tokens from seller and pays out of the custodial reserve.
// The payout is capped at the available reserve and floored at 1 base unit for
// any nonzero sale; the fee is accounted on the uncapped theoretical quote.
// The caller must hold the curve lock.
func (c *Curve) Sell(l *ledger.Ledger, seller solana.PublicKey, amount uint64, now time.Time) (*events.TokenSoldEvent, error) {
	if c.state != StateActive {
		return nil, ErrCurveNotActive
	}
	if amount > c.PurchaseMarketSupply {
		return nil, fmt.Errorf("sell %d with supply %d: %w", amount, c.PurchaseMarketSupply, ErrArithmeticOverflow)
	}

	quote, err := SellQuoteFor(c.PurchaseMarketSupply, amount, c.SellFeeBps, c.InitialPrice)
	if err != nil {
		return nil, err
	}

	reserve := l.TokenBalance(ledger.ReserveMint, c.ReserveAccount)
	if reserve == 0 {
		return nil, ErrInsufficientReserve
	}

	payout := quote.Net
	if payout > reserve {
		payout = reserve
	}
	if payout == 0 && amount > 0 {
		payout = 1
	}

	if l.TokenBalance(c.TokenMint, seller) < amount {
		return nil, fmt.Errorf("sell %d tokens: %w", amount, ErrInsufficientFunds)
	}

	if err := l.Burn(c.TokenMint, seller, amount, c.Address); err != nil {
		return nil, err
	}
	if err := l.TransferToken(ledger.ReserveMint, c.ReserveAccount, seller, payout); err != nil {
		return nil, err
	}

	c.PurchaseMarketSupply -= amount
	c.LifetimeFees += quote.Fee

	c.logger.Info("Sell executed",
		zap.String("seller", seller.String()),
		zap.Uint64("amount", amount),
		zap.Uint64("quoted", quote.Net),
		zap.Uint64("payout", payout),
		zap.Uint64("fee", quote.Fee),
		zap.Uint64("supply", c.PurchaseMarketSupply))

	return &events.TokenSoldEvent{
		BaseEvent: events.BaseEvent{EventType: events.TokenSold, EventTime: now},
		Seller:    seller,
		TokenMint: c.TokenMint,
		Amount:    amount,
		Price:     payout,
	}, nil
}

// AddSupply increments the circulating supply, failing on wraparound. Used by
// the swap composer after it has validated the target ceiling.
func (c *Curve) AddSupply(delta uint64) error {
	if c.PurchaseMarketSupply+delta < c.PurchaseMarketSupply {
		return ErrArithmeticOverflow
	}
	c.PurchaseMarketSupply += delta
	return nil
}

// SubSupply decrements the circulating supply, failing on underflow.
func (c *Curve) SubSupply(delta uint64) error {
	if delta > c.PurchaseMarketSupply {
		return ErrArithmeticOverflow
	}
	c.PurchaseMarketSupply -= delta
	return nil
}
