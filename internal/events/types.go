// internal/events/types.go
package events

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/attenomics/curve-engine/internal/types"
)

// EventType represents the type of event.
type EventType string

const (
	// Deployment events
	CreatorTokenDeployed EventType = "creator_token.deployed"
	InitialTokensMinted  EventType = "creator_token.initial_minted"
	BondingCurveUpdated  EventType = "bonding_curve.updated"

	// Trade events
	TokenBought   EventType = "trade.bought"
	TokenSold     EventType = "trade.sold"
	TokensSwapped EventType = "trade.swapped"

	// Administration events
	AgentUpdated          EventType = "agent.updated"
	SwapRouterInitialized EventType = "swap_router.initialized"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// Handler processes events delivered by the bus.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Subscription represents an active event subscription.
type Subscription interface {
	Unsubscribe()
}

// CreatorTokenDeployedEvent is emitted when a creator token and its linked
// accounts have been materialized.
type CreatorTokenDeployedEvent struct {
	BaseEvent
	Creator   solana.PublicKey
	TokenMint solana.PublicKey
	Handle    types.Handle
	TokenID   uint64
}

// InitialTokensMintedEvent is emitted after the one-time allocation mint.
type InitialTokensMintedEvent struct {
	BaseEvent
	TokenMint       solana.PublicKey
	VaultAmount     uint64
	SupporterAmount uint64
}

// BondingCurveUpdatedEvent is emitted when a curve becomes active.
type BondingCurveUpdatedEvent struct {
	BaseEvent
	TokenMint    solana.PublicKey
	ReserveRatio uint64
	InitialPrice uint64
	Creator      solana.PublicKey
}

// TokenBoughtEvent is emitted after a successful buy.
type TokenBoughtEvent struct {
	BaseEvent
	Buyer     solana.PublicKey
	TokenMint solana.PublicKey
	Amount    uint64
	Price     uint64
}

// TokenSoldEvent is emitted after a successful sell. Price is the actual
// payout, which can be lower than the theoretical quote when the curve's
// reserve caps it.
type TokenSoldEvent struct {
	BaseEvent
	Seller    solana.PublicKey
	TokenMint solana.PublicKey
	Amount    uint64
	Price     uint64
}

// TokensSwappedEvent is emitted after a successful cross-curve swap.
type TokensSwappedEvent struct {
	BaseEvent
	User        solana.PublicKey
	SourceToken solana.PublicKey
	TargetToken solana.PublicKey
	AmountIn    uint64
	AmountOut   uint64
	SolAmount   uint64
}

// AgentUpdatedEvent is emitted when the registry authority changes an agent
// record.
type AgentUpdatedEvent struct {
	BaseEvent
	Agent   solana.PublicKey
	Allowed bool
}

// SwapRouterInitializedEvent is emitted once when the swap router comes up.
type SwapRouterInitializedEvent struct {
	BaseEvent
	Authority solana.PublicKey
}
