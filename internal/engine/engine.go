// =============================
// File: internal/engine/engine.go
// =============================
package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/attenomics/curve-engine/internal/curve"
	"github.com/attenomics/curve-engine/internal/events"
	"github.com/attenomics/curve-engine/internal/ledger"
	"github.com/attenomics/curve-engine/internal/metrics"
	"github.com/attenomics/curve-engine/internal/registry"
	"github.com/attenomics/curve-engine/internal/storage"
	"github.com/attenomics/curve-engine/internal/storage/models"
	"github.com/attenomics/curve-engine/internal/swap"
	"github.com/attenomics/curve-engine/internal/types"
)

const reserveDecimals = 9

// Options configures a new engine.
type Options struct {
	Logger          *zap.Logger
	Clock           types.Clock
	Journal         storage.Storage // optional
	EventBufferSize int
}

// Engine exposes the full operation surface: deployment, trading, swapping
// and agent administration. Every operation is an all-or-nothing transaction
// against the entities it touches; per-curve serialization is handled here.
type Engine struct {
	ledger   *ledger.Ledger
	registry *registry.Registry
	router   *swap.Router
	bus      *events.Bus
	journal  storage.Storage
	clock    types.Clock
	logger   *zap.Logger
}

// New assembles an engine with an empty ledger and registry.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = types.SystemClock{}
	}
	if opts.EventBufferSize == 0 {
		opts.EventBufferSize = 256
	}

	l := ledger.New(opts.Logger)
	return &Engine{
		ledger:   l,
		registry: registry.New(l, opts.Clock, opts.Logger),
		router:   swap.NewRouter(l, opts.Logger),
		bus:      events.NewBus(opts.Logger, opts.EventBufferSize),
		journal:  opts.Journal,
		clock:    opts.Clock,
		logger:   opts.Logger.Named("engine"),
	}
}

// Ledger exposes the underlying account state for hosts and tests.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

// Registry exposes the creator-token registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Bus exposes the event bus for subscribers.
func (e *Engine) Bus() *events.Bus { return e.bus }

// Initialize sets up the registry entry point.
func (e *Engine) Initialize(authority, protocolFeeAddress solana.PublicKey) error {
	return e.registry.Initialize(authority, protocolFeeAddress)
}

// SetAgent updates the agent allow-list. Authority-only.
func (e *Engine) SetAgent(ctx context.Context, caller, agent solana.PublicKey, allowed bool) error {
	evt, err := e.registry.SetAgent(caller, agent, allowed, e.clock.Now())
	if err != nil {
		return err
	}
	e.publish(evt)
	return nil
}

// DeployCreatorToken deploys a new creator token with its curve, vault,
// supporter pool and NFT record. All-or-nothing.
func (e *Engine) DeployCreatorToken(ctx context.Context, p registry.DeployParams) (*registry.CreatorToken, error) {
	tok, evt, err := e.registry.Deploy(p)
	if err != nil {
		return nil, err
	}
	e.publish(evt)
	e.publish(&events.BondingCurveUpdatedEvent{
		BaseEvent:    events.BaseEvent{EventType: events.BondingCurveUpdated, EventTime: evt.EventTime},
		TokenMint:    tok.TokenMint,
		ReserveRatio: tok.Curve.ReserveRatio,
		InitialPrice: tok.Curve.InitialPrice,
		Creator:      tok.Creator,
	})

	if e.journal != nil {
		rec := &models.Deployment{
			Handle:           tok.Handle.String(),
			Creator:          tok.Creator.String(),
			TokenMint:        tok.TokenMint.String(),
			Agent:            tok.Agent.String(),
			TokenID:          tok.TokenID,
			Name:             tok.Name,
			Symbol:           tok.Symbol,
			SelfPercent:      tok.SelfPercent,
			MarketPercent:    tok.MarketPercent,
			SupporterPercent: tok.SupporterPercent,
			InitialPrice:     tok.Curve.InitialPrice,
		}
		if err := e.journal.SaveDeployment(ctx, rec); err != nil {
			e.logger.Warn("Failed to journal deployment", zap.Error(err))
		}
	}
	return tok, nil
}

// MintInitialTokens performs the one-time allocation mint for a token.
func (e *Engine) MintInitialTokens(ctx context.Context, mint solana.PublicKey) error {
	evt, err := e.registry.MintInitialTokens(mint, e.clock.Now())
	if err != nil {
		return err
	}
	e.publish(evt)
	return nil
}

// Buy purchases amount tokens on a curve for buyer.
func (e *Engine) Buy(ctx context.Context, mint, buyer solana.PublicKey, amount uint64, mode types.PaymentMode) (*events.TokenBoughtEvent, error) {
	tok, err := e.registry.Token(mint)
	if err != nil {
		return nil, err
	}

	c := tok.Curve
	c.Lock()
	defer c.Unlock()

	base, quoteErr := curve.BuyPrice(c.PurchaseMarketSupply, amount, 0, c.InitialPrice)

	var evt *events.TokenBoughtEvent
	if err := metrics.Measure("buy", func() error {
		var buyErr error
		evt, buyErr = c.Buy(e.ledger, buyer, amount, mode, e.clock.Now())
		return buyErr
	}); err != nil {
		return nil, err
	}
	metrics.ReserveIn(evt.Price)
	e.publish(evt)

	if e.journal != nil && quoteErr == nil {
		e.journalTrade(ctx, &models.Trade{
			Side:      "buy",
			Trader:    buyer.String(),
			TokenMint: mint.String(),
			Amount:    amount,
			Price:     evt.Price,
			PriceSol:  decimal.NewFromUint64(evt.Price).Shift(-reserveDecimals),
			FeePaid:   evt.Price - base,
		})
	}
	return evt, nil
}

// Sell sells amount tokens back to the curve.
func (e *Engine) Sell(ctx context.Context, mint, seller solana.PublicKey, amount uint64) (*events.TokenSoldEvent, error) {
	tok, err := e.registry.Token(mint)
	if err != nil {
		return nil, err
	}

	c := tok.Curve
	c.Lock()
	defer c.Unlock()

	quote, quoteErr := curve.SellQuoteFor(c.PurchaseMarketSupply, amount, c.SellFeeBps, c.InitialPrice)

	var evt *events.TokenSoldEvent
	if err := metrics.Measure("sell", func() error {
		var sellErr error
		evt, sellErr = c.Sell(e.ledger, seller, amount, e.clock.Now())
		return sellErr
	}); err != nil {
		return nil, err
	}
	metrics.ReserveOut(evt.Price)
	e.publish(evt)

	if e.journal != nil && quoteErr == nil {
		e.journalTrade(ctx, &models.Trade{
			Side:      "sell",
			Trader:    seller.String(),
			TokenMint: mint.String(),
			Amount:    amount,
			Price:     evt.Price,
			PriceSol:  decimal.NewFromUint64(evt.Price).Shift(-reserveDecimals),
			FeePaid:   quote.Fee,
		})
	}
	return evt, nil
}

// InitializeSwapRouter sets up the swap router under the registry authority.
func (e *Engine) InitializeSwapRouter(ctx context.Context) error {
	entry := e.registry.EntryPoint()
	if entry.Authority.IsZero() {
		return registry.ErrNotInitialized
	}
	evt, err := e.router.Initialize(entry.Authority, e.clock.Now())
	if err != nil {
		return err
	}
	e.publish(evt)
	return nil
}

// SwapTokens swaps amountIn of the source token into the target token.
func (e *Engine) SwapTokens(ctx context.Context, sourceMint, targetMint, user solana.PublicKey, amountIn, minAmountOut uint64) (*events.TokensSwappedEvent, error) {
	src, err := e.registry.Token(sourceMint)
	if err != nil {
		return nil, err
	}
	dst, err := e.registry.Token(targetMint)
	if err != nil {
		return nil, err
	}

	var evt *events.TokensSwappedEvent
	if err := metrics.Measure("swap", func() error {
		var swapErr error
		evt, swapErr = e.router.SwapTokens(src.Curve, dst.Curve, user, amountIn, minAmountOut, e.clock.Now())
		return swapErr
	}); err != nil {
		return nil, err
	}
	e.publish(evt)

	if e.journal != nil {
		rec := &models.Swap{
			User:         user.String(),
			SourceMint:   sourceMint.String(),
			TargetMint:   targetMint.String(),
			AmountIn:     evt.AmountIn,
			AmountOut:    evt.AmountOut,
			ReserveMoved: evt.SolAmount,
			ReserveSol:   decimal.NewFromUint64(evt.SolAmount).Shift(-reserveDecimals),
		}
		if err := e.journal.SaveSwap(ctx, rec); err != nil {
			e.logger.Warn("Failed to journal swap", zap.Error(err))
		}
	}
	return evt, nil
}

// FundNative seeds a native reserve balance. Host-level helper, not part of
// the trading surface.
func (e *Engine) FundNative(owner solana.PublicKey, amount uint64) error {
	return e.ledger.FundNative(owner, amount)
}

// Shutdown drains the event bus.
func (e *Engine) Shutdown(ctx context.Context) error {
	if err := e.bus.Shutdown(ctx); err != nil {
		return fmt.Errorf("event bus shutdown: %w", err)
	}
	return nil
}

func (e *Engine) publish(evt events.Event) {
	if err := e.bus.Publish(evt); err != nil {
		e.logger.Warn("Failed to publish event",
			zap.String("event_type", string(evt.Type())),
			zap.Error(err))
	}
}

func (e *Engine) journalTrade(ctx context.Context, t *models.Trade) {
	if err := e.journal.SaveTrade(ctx, t); err != nil {
		e.logger.Warn("Failed to journal trade", zap.Error(err))
	}
}
