// =============================
// File: internal/swap/router.go
// =============================
package swap

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/attenomics/curve-engine/internal/curve"
	"github.com/attenomics/curve-engine/internal/events"
	"github.com/attenomics/curve-engine/internal/ledger"
)

// SwapSupplyCeiling bounds the target curve's supply after a swap. It is
// deliberately a different literal from both the direct-buy capacity and the
// spend clamp in the pricing model.
const SwapSupplyCeiling uint64 = 10_000_000_000_000_000

var (
	// ErrNotInitialized is returned when swapping before router setup.
	ErrNotInitialized = errors.New("swap router not initialized")

	// ErrAlreadyInitialized is returned on repeated router setup.
	ErrAlreadyInitialized = errors.New("swap router already initialized")

	// ErrSlippageExceeded is returned when the computed output is below the
	// caller's floor.
	ErrSlippageExceeded = errors.New("slippage exceeded")

	// ErrSameToken is returned when source and target are one curve.
	ErrSameToken = errors.New("source and target token must differ")
)

// Router chains a sell on one curve with a buy on another atomically.
type Router struct {
	mu          sync.RWMutex
	authority   solana.PublicKey
	initialized bool

	ledger *ledger.Ledger
	logger *zap.Logger
}

// NewRouter creates an uninitialized router over the ledger.
func NewRouter(l *ledger.Ledger, logger *zap.Logger) *Router {
	return &Router{
		ledger: l,
		logger: logger.Named("swap_router"),
	}
}

// Initialize sets the router authority. One-shot.
func (r *Router) Initialize(authority solana.PublicKey, now time.Time) (*events.SwapRouterInitializedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil, ErrAlreadyInitialized
	}
	r.authority = authority
	r.initialized = true

	r.logger.Info("Swap router initialized", zap.String("authority", authority.String()))

	return &events.SwapRouterInitializedEvent{
		BaseEvent: events.BaseEvent{EventType: events.SwapRouterInitialized, EventTime: now},
		Authority: authority,
	}, nil
}

// Initialized reports whether the router has been set up.
func (r *Router) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// SwapTokens sells amountIn on the source curve and buys on the target with
// the proceeds, atomically. Both curves are locked for the duration, acquired
// in token-mint order so concurrent swaps cannot deadlock. Every check runs
// before any state write; any failure leaves both curves untouched.
func (r *Router) SwapTokens(source, target *curve.Curve, user solana.PublicKey, amountIn, minAmountOut uint64, now time.Time) (*events.TokensSwappedEvent, error) {
	if !r.Initialized() {
		return nil, ErrNotInitialized
	}
	if source.TokenMint == target.TokenMint {
		return nil, ErrSameToken
	}

	first, second := source, target
	if bytes.Compare(source.TokenMint[:], target.TokenMint[:]) > 0 {
		first, second = target, source
	}
	first.Lock()
	defer first.Unlock()
	second.Lock()
	defer second.Unlock()

	if source.State() != curve.StateActive || target.State() != curve.StateActive {
		return nil, curve.ErrCurveNotActive
	}

	quote, err := curve.SellQuoteFor(source.PurchaseMarketSupply, amountIn, source.SellFeeBps, source.InitialPrice)
	if err != nil {
		return nil, err
	}
	reserveDelta := quote.Net

	amountOut := curve.BuyAmountForSpend(target.PurchaseMarketSupply, reserveDelta, target.BuyFeeBps, target.InitialPrice)
	if amountOut < minAmountOut {
		return nil, fmt.Errorf("amount out %d below floor %d: %w", amountOut, minAmountOut, ErrSlippageExceeded)
	}
	if amountOut > SwapSupplyCeiling || target.PurchaseMarketSupply > SwapSupplyCeiling-amountOut {
		return nil, curve.ErrCapacityExceeded
	}

	// Remaining preconditions, checked before any write.
	if amountIn > source.PurchaseMarketSupply {
		return nil, curve.ErrArithmeticOverflow
	}
	if r.ledger.TokenBalance(source.TokenMint, user) < amountIn {
		return nil, fmt.Errorf("swap %d of %s: %w", amountIn, source.TokenMint, curve.ErrInsufficientFunds)
	}
	if r.ledger.TokenBalance(ledger.ReserveMint, source.ReserveAccount) < reserveDelta {
		return nil, curve.ErrInsufficientReserve
	}
	// Target-side headroom, so neither the reserve transfer nor the mint can
	// fail after the source leg has executed.
	if r.ledger.TokenBalance(ledger.ReserveMint, target.ReserveAccount) > ^uint64(0)-reserveDelta {
		return nil, ledger.ErrBalanceOverflow
	}
	if r.ledger.TokenSupply(target.TokenMint) > ^uint64(0)-amountOut ||
		r.ledger.TokenBalance(target.TokenMint, user) > ^uint64(0)-amountOut {
		return nil, ledger.ErrBalanceOverflow
	}

	if err := r.ledger.Burn(source.TokenMint, user, amountIn, source.Address); err != nil {
		return nil, err
	}
	if err := source.SubSupply(amountIn); err != nil {
		return nil, err
	}
	if err := r.ledger.TransferToken(ledger.ReserveMint, source.ReserveAccount, target.ReserveAccount, reserveDelta); err != nil {
		return nil, err
	}
	if err := target.AddSupply(amountOut); err != nil {
		return nil, err
	}
	if err := r.ledger.Mint(target.TokenMint, user, amountOut, target.Address); err != nil {
		return nil, err
	}

	r.logger.Info("Swap executed",
		zap.String("user", user.String()),
		zap.String("source", source.TokenMint.String()),
		zap.String("target", target.TokenMint.String()),
		zap.Uint64("amount_in", amountIn),
		zap.Uint64("amount_out", amountOut),
		zap.Uint64("reserve_delta", reserveDelta))

	return &events.TokensSwappedEvent{
		BaseEvent:   events.BaseEvent{EventType: events.TokensSwapped, EventTime: now},
		User:        user,
		SourceToken: source.TokenMint,
		TargetToken: target.TokenMint,
		AmountIn:    amountIn,
		AmountOut:   amountOut,
		SolAmount:   reserveDelta,
	}, nil
}
