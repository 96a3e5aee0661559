// =============================
// File: internal/ledger/ledger.go
// =============================
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the available
	// balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownMint is returned for operations against mints that were never
	// created.
	ErrUnknownMint = errors.New("unknown mint")

	// ErrMintExists is returned when creating a mint that already exists.
	ErrMintExists = errors.New("mint already exists")

	// ErrNotMintAuthority is returned when a mint or burn is signed by a key
	// other than the mint's authority.
	ErrNotMintAuthority = errors.New("not mint authority")

	// ErrBalanceOverflow is returned when a credit would wrap a balance.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// ReserveMint is the well-known mint of the wrapped reserve asset.
var ReserveMint = solana.WrappedSol

type mintInfo struct {
	authority solana.PublicKey
	supply    uint64
}

// Ledger is an in-memory stand-in for the account runtime: native reserve
// balances plus per-mint token balances. Amounts are pre-validated
// non-negative by construction (uint64); any failure is fatal to the
// enclosing engine operation.
type Ledger struct {
	mu       sync.RWMutex
	native   map[solana.PublicKey]uint64
	mints    map[solana.PublicKey]*mintInfo
	balances map[solana.PublicKey]map[solana.PublicKey]uint64
	logger   *zap.Logger
}

// New creates an empty ledger with the wrapped reserve mint pre-registered.
func New(logger *zap.Logger) *Ledger {
	l := &Ledger{
		native:   make(map[solana.PublicKey]uint64),
		mints:    make(map[solana.PublicKey]*mintInfo),
		balances: make(map[solana.PublicKey]map[solana.PublicKey]uint64),
		logger:   logger.Named("ledger"),
	}
	// The reserve mint has no external authority; supply enters via WrapNative.
	l.mints[ReserveMint] = &mintInfo{}
	l.balances[ReserveMint] = make(map[solana.PublicKey]uint64)
	return l
}

// CreateMint registers a new token mint controlled by authority.
func (l *Ledger) CreateMint(mint, authority solana.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.mints[mint]; ok {
		return fmt.Errorf("create mint %s: %w", mint, ErrMintExists)
	}
	l.mints[mint] = &mintInfo{authority: authority}
	l.balances[mint] = make(map[solana.PublicKey]uint64)
	return nil
}

// FundNative credits native reserve balance to an owner. Used by hosts and
// tests to seed accounts; there is no faucet in the engine itself.
func (l *Ledger) FundNative(owner solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.native[owner] > ^uint64(0)-amount {
		return ErrBalanceOverflow
	}
	l.native[owner] += amount
	return nil
}

// NativeBalance returns the owner's native reserve balance.
func (l *Ledger) NativeBalance(owner solana.PublicKey) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.native[owner]
}

// TokenBalance returns the owner's balance for a mint.
func (l *Ledger) TokenBalance(mint, owner solana.PublicKey) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[mint][owner]
}

// TokenSupply returns the total minted supply for a mint.
func (l *Ledger) TokenSupply(mint solana.PublicKey) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if info, ok := l.mints[mint]; ok {
		return info.supply
	}
	return 0
}

// Transfer moves native reserve balance between owners.
func (l *Ledger) Transfer(from, to solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.native[from] < amount {
		return fmt.Errorf("native transfer from %s: %w", from, ErrInsufficientFunds)
	}
	if l.native[to] > ^uint64(0)-amount {
		return ErrBalanceOverflow
	}
	l.native[from] -= amount
	l.native[to] += amount
	return nil
}

// TransferToken moves token balance between owners on one mint.
func (l *Ledger) TransferToken(mint, from, to solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	bals, ok := l.balances[mint]
	if !ok {
		return fmt.Errorf("transfer on %s: %w", mint, ErrUnknownMint)
	}
	if bals[from] < amount {
		return fmt.Errorf("token transfer from %s: %w", from, ErrInsufficientFunds)
	}
	if bals[to] > ^uint64(0)-amount {
		return ErrBalanceOverflow
	}
	bals[from] -= amount
	bals[to] += amount
	return nil
}

// Mint creates amount tokens for the recipient. The call must be signed by
// the mint authority.
func (l *Ledger) Mint(mint, to solana.PublicKey, amount uint64, authority solana.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.mints[mint]
	if !ok {
		return fmt.Errorf("mint on %s: %w", mint, ErrUnknownMint)
	}
	if info.authority != authority {
		return fmt.Errorf("mint on %s: %w", mint, ErrNotMintAuthority)
	}
	if info.supply > ^uint64(0)-amount || l.balances[mint][to] > ^uint64(0)-amount {
		return ErrBalanceOverflow
	}
	info.supply += amount
	l.balances[mint][to] += amount

	l.logger.Debug("Minted tokens",
		zap.String("mint", mint.String()),
		zap.String("to", to.String()),
		zap.Uint64("amount", amount))
	return nil
}

// Burn destroys amount tokens held by from. The call must be signed by the
// mint authority.
func (l *Ledger) Burn(mint, from solana.PublicKey, amount uint64, authority solana.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.mints[mint]
	if !ok {
		return fmt.Errorf("burn on %s: %w", mint, ErrUnknownMint)
	}
	if info.authority != authority {
		return fmt.Errorf("burn on %s: %w", mint, ErrNotMintAuthority)
	}
	if l.balances[mint][from] < amount {
		return fmt.Errorf("burn from %s: %w", from, ErrInsufficientFunds)
	}
	l.balances[mint][from] -= amount
	info.supply -= amount

	l.logger.Debug("Burned tokens",
		zap.String("mint", mint.String()),
		zap.String("from", from.String()),
		zap.Uint64("amount", amount))
	return nil
}

// WrapNative converts native reserve balance into wrapped reserve tokens,
// mirroring the wrapped-SOL flow of the original buy path.
func (l *Ledger) WrapNative(owner solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.native[owner] < amount {
		return fmt.Errorf("wrap for %s: %w", owner, ErrInsufficientFunds)
	}
	bals := l.balances[ReserveMint]
	if bals[owner] > ^uint64(0)-amount {
		return ErrBalanceOverflow
	}
	l.native[owner] -= amount
	bals[owner] += amount
	l.mints[ReserveMint].supply += amount
	return nil
}

// UnwrapReserve converts wrapped reserve tokens back to native balance.
func (l *Ledger) UnwrapReserve(owner solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	bals := l.balances[ReserveMint]
	if bals[owner] < amount {
		return fmt.Errorf("unwrap for %s: %w", owner, ErrInsufficientFunds)
	}
	bals[owner] -= amount
	l.mints[ReserveMint].supply -= amount
	l.native[owner] += amount
	return nil
}
