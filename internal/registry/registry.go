// =============================
// File: internal/registry/registry.go
// =============================
package registry

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/attenomics/curve-engine/internal/curve"
	"github.com/attenomics/curve-engine/internal/events"
	"github.com/attenomics/curve-engine/internal/ledger"
	"github.com/attenomics/curve-engine/internal/types"
)

// EntryPoint holds the global protocol configuration and the token id
// counter. It is owned by the registry, with init-on-first-use lifecycle.
type EntryPoint struct {
	Authority          solana.PublicKey
	ProtocolFeeAddress solana.PublicKey
	NextTokenID        uint64
	initialized        bool
}

// AgentRecord marks whether an agent may deploy tokens.
type AgentRecord struct {
	Agent   solana.PublicKey
	Allowed bool
}

// SelfTokenVault escrows the creator's own allocation. Vesting withdrawal is
// not reachable in this version; the schedule is stored, never applied.
type SelfTokenVault struct {
	TokenMint      solana.PublicKey
	Creator        solana.PublicKey
	VaultAccount   solana.PublicKey
	InitialBalance uint64
	Withdrawn      uint64
	StartTime      time.Time
	Initialized    bool
	Config         VaultConfig
}

// SupporterPool escrows the supporter allocation. Drip distribution is not
// reachable in this version.
type SupporterPool struct {
	TokenMint        solana.PublicKey
	Agent            solana.PublicKey
	PoolAccount      solana.PublicKey
	InitialBalance   uint64
	TotalDistributed uint64
	LastDripTime     time.Time
	Config           DistributorConfig
}

// NFTRecord tracks the ownership NFT minted alongside each creator token.
type NFTRecord struct {
	Owner        solana.PublicKey
	TokenID      uint64
	MetadataURI  string
	CreatorToken solana.PublicKey
}

// CreatorToken links a deployed token to all of its components.
type CreatorToken struct {
	Handle           types.Handle
	Creator          solana.PublicKey
	TokenMint        solana.PublicKey
	Agent            solana.PublicKey
	TotalSupply      bin.Uint128
	SelfPercent      uint8
	MarketPercent    uint8
	SupporterPercent uint8
	TokenID          uint64
	Name             string
	Symbol           string
	MetadataURI      string
	Initialized      bool

	Vault     *SelfTokenVault
	Curve     *curve.Curve
	Supporter *SupporterPool
	NFT       *NFTRecord

	initialMinted bool
}

// DeployParams carries everything one deployment needs.
type DeployParams struct {
	Creator                solana.PublicKey
	Config                 TokenConfig
	VaultConfigBytes       []byte
	DistributorConfigBytes []byte
	Name                   string
	Symbol                 string
	MetadataURI            string
	ReserveRatio           uint64
	InitialPrice           uint64
}

// Registry orchestrates creator-token deployment and owns the agent
// allow-list.
type Registry struct {
	mu       sync.RWMutex
	entry    EntryPoint
	byHandle map[types.Handle]*CreatorToken
	byMint   map[solana.PublicKey]*CreatorToken
	agents   map[solana.PublicKey]*AgentRecord

	ledger *ledger.Ledger
	clock  types.Clock
	logger *zap.Logger
}

// New creates an uninitialized registry backed by the given ledger.
func New(l *ledger.Ledger, clock types.Clock, logger *zap.Logger) *Registry {
	return &Registry{
		byHandle: make(map[types.Handle]*CreatorToken),
		byMint:   make(map[solana.PublicKey]*CreatorToken),
		agents:   make(map[solana.PublicKey]*AgentRecord),
		ledger:   l,
		clock:    clock,
		logger:   logger.Named("registry"),
	}
}

// Initialize sets the entry point authority and fee address. One-shot.
func (r *Registry) Initialize(authority, protocolFeeAddress solana.PublicKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entry.initialized {
		return ErrAlreadyInitialized
	}
	r.entry = EntryPoint{
		Authority:          authority,
		ProtocolFeeAddress: protocolFeeAddress,
		NextTokenID:        1,
		initialized:        true,
	}
	r.logger.Info("Registry initialized",
		zap.String("authority", authority.String()),
		zap.String("protocol_fee_address", protocolFeeAddress.String()))
	return nil
}

// EntryPoint returns a copy of the entry point state.
func (r *Registry) EntryPoint() EntryPoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entry
}

// SetAgent creates or updates an agent record. Only the registry authority
// may call it; disallowing an agent does not affect tokens already deployed.
func (r *Registry) SetAgent(caller, agent solana.PublicKey, allowed bool, now time.Time) (*events.AgentUpdatedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.entry.initialized {
		return nil, ErrNotInitialized
	}
	if caller != r.entry.Authority {
		return nil, fmt.Errorf("set agent by %s: %w", caller, ErrUnauthorized)
	}
	r.agents[agent] = &AgentRecord{Agent: agent, Allowed: allowed}

	r.logger.Info("Agent updated",
		zap.String("agent", agent.String()),
		zap.Bool("allowed", allowed))

	return &events.AgentUpdatedEvent{
		BaseEvent: events.BaseEvent{EventType: events.AgentUpdated, EventTime: now},
		Agent:     agent,
		Allowed:   allowed,
	}, nil
}

// Agent returns the record for an agent, or nil if none exists.
func (r *Registry) Agent(agent solana.PublicKey) *AgentRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agents[agent]
}

// Token returns the creator token for a mint.
func (r *Registry) Token(mint solana.PublicKey) (*CreatorToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tok, ok := r.byMint[mint]
	if !ok {
		return nil, fmt.Errorf("mint %s: %w", mint, ErrTokenNotFound)
	}
	return tok, nil
}

// TokenByHandle returns the creator token for a handle.
func (r *Registry) TokenByHandle(h types.Handle) (*CreatorToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tok, ok := r.byHandle[h]
	if !ok {
		return nil, fmt.Errorf("handle %q: %w", h.String(), ErrTokenNotFound)
	}
	return tok, nil
}

// Tokens returns all deployed creator tokens.
func (r *Registry) Tokens() []*CreatorToken {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*CreatorToken, 0, len(r.byMint))
	for _, tok := range r.byMint {
		out = append(out, tok)
	}
	return out
}

// Deploy validates the deployment request and atomically materializes the
// creator token, its active bonding curve, vault, supporter pool and NFT
// record. Any failure leaves no entity created.
func (r *Registry) Deploy(p DeployParams) (*CreatorToken, *events.CreatorTokenDeployedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.entry.initialized {
		return nil, nil, ErrNotInitialized
	}

	cfg := p.Config
	if int(cfg.SelfPercent)+int(cfg.MarketPercent)+int(cfg.SupporterPercent) != percentTotal {
		return nil, nil, fmt.Errorf("%d+%d+%d: %w",
			cfg.SelfPercent, cfg.MarketPercent, cfg.SupporterPercent, ErrInvalidPercentageSplit)
	}
	if len(p.Name) > maxNameLen {
		return nil, nil, ErrNameTooLong
	}
	if len(p.Symbol) > maxSymbolLen {
		return nil, nil, ErrSymbolTooLong
	}
	if len(p.MetadataURI) > maxMetadataURILen {
		return nil, nil, ErrMetadataURITooLong
	}
	if _, exists := r.byHandle[cfg.Handle]; exists {
		return nil, nil, fmt.Errorf("handle %q: %w", cfg.Handle.String(), ErrHandleAlreadyUsed)
	}

	agent, ok := r.agents[cfg.Agent]
	if !ok {
		return nil, nil, fmt.Errorf("agent %s: %w", cfg.Agent, ErrAgentNotRegistered)
	}
	if !agent.Allowed {
		return nil, nil, fmt.Errorf("agent %s: %w", cfg.Agent, ErrAgentNotAllowed)
	}
	if p.InitialPrice == 0 {
		return nil, nil, ErrInvalidCurveParams
	}

	selfAlloc, err := allocationU64(cfg.TotalSupply, cfg.SelfPercent)
	if err != nil {
		return nil, nil, err
	}
	supporterAlloc, err := allocationU64(cfg.TotalSupply, cfg.SupporterPercent)
	if err != nil {
		return nil, nil, err
	}

	vaultCfg, err := decodeVaultConfig(p.VaultConfigBytes)
	if err != nil {
		return nil, nil, err
	}
	distCfg, err := decodeDistributorConfig(p.DistributorConfigBytes, allocation(cfg.TotalSupply, cfg.SupporterPercent))
	if err != nil {
		return nil, nil, err
	}

	// All validation has passed; materialize the linked accounts.
	tokenMint := solana.NewWallet().PublicKey()
	curveAddr := solana.NewWallet().PublicKey()
	reserveAccount := solana.NewWallet().PublicKey()
	vaultAccount := solana.NewWallet().PublicKey()
	poolAccount := solana.NewWallet().PublicKey()

	if err := r.ledger.CreateMint(tokenMint, curveAddr); err != nil {
		return nil, nil, err
	}

	now := r.clock.Now()
	bondingCurve := curve.NewCurve(curveAddr, tokenMint, r.logger)
	if err := bondingCurve.Activate(r.entry.ProtocolFeeAddress, reserveAccount, p.ReserveRatio, p.InitialPrice); err != nil {
		return nil, nil, err
	}

	tok := &CreatorToken{
		Handle:           cfg.Handle,
		Creator:          p.Creator,
		TokenMint:        tokenMint,
		Agent:            cfg.Agent,
		TotalSupply:      cfg.TotalSupply,
		SelfPercent:      cfg.SelfPercent,
		MarketPercent:    cfg.MarketPercent,
		SupporterPercent: cfg.SupporterPercent,
		TokenID:          r.entry.NextTokenID,
		Name:             p.Name,
		Symbol:           p.Symbol,
		MetadataURI:      p.MetadataURI,
		Initialized:      true,
		Curve:            bondingCurve,
		Vault: &SelfTokenVault{
			TokenMint:      tokenMint,
			Creator:        p.Creator,
			VaultAccount:   vaultAccount,
			InitialBalance: selfAlloc,
			StartTime:      now,
			Initialized:    true,
			Config:         vaultCfg,
		},
		Supporter: &SupporterPool{
			TokenMint:      tokenMint,
			Agent:          cfg.Agent,
			PoolAccount:    poolAccount,
			InitialBalance: supporterAlloc,
			Config:         distCfg,
		},
		NFT: &NFTRecord{
			Owner:        p.Creator,
			TokenID:      r.entry.NextTokenID,
			MetadataURI:  p.MetadataURI,
			CreatorToken: tokenMint,
		},
	}

	r.byHandle[cfg.Handle] = tok
	r.byMint[tokenMint] = tok
	r.entry.NextTokenID++

	r.logger.Info("Creator token deployed",
		zap.String("handle", cfg.Handle.String()),
		zap.String("token_mint", tokenMint.String()),
		zap.Uint64("token_id", tok.TokenID),
		zap.String("creator", p.Creator.String()),
		zap.Uint8("self_percent", cfg.SelfPercent),
		zap.Uint8("market_percent", cfg.MarketPercent),
		zap.Uint8("supporter_percent", cfg.SupporterPercent))

	return tok, &events.CreatorTokenDeployedEvent{
		BaseEvent: events.BaseEvent{EventType: events.CreatorTokenDeployed, EventTime: now},
		Creator:   p.Creator,
		TokenMint: tokenMint,
		Handle:    cfg.Handle,
		TokenID:   tok.TokenID,
	}, nil
}

// MintInitialTokens mints the self and supporter allocations into their escrow
// accounts, signed by the curve's own authority. Guarded against re-invocation
// with an explicit minted flag.
func (r *Registry) MintInitialTokens(mint solana.PublicKey, now time.Time) (*events.InitialTokensMintedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tok, ok := r.byMint[mint]
	if !ok {
		return nil, fmt.Errorf("mint %s: %w", mint, ErrTokenNotFound)
	}
	if tok.initialMinted {
		return nil, fmt.Errorf("mint %s: %w", mint, ErrAlreadyMinted)
	}

	// Both mints must succeed or neither happens; rule out overflow up front.
	supply := r.ledger.TokenSupply(mint)
	if supply > ^uint64(0)-tok.Vault.InitialBalance ||
		supply+tok.Vault.InitialBalance > ^uint64(0)-tok.Supporter.InitialBalance {
		return nil, curve.ErrArithmeticOverflow
	}

	if err := r.ledger.Mint(mint, tok.Vault.VaultAccount, tok.Vault.InitialBalance, tok.Curve.Address); err != nil {
		return nil, err
	}
	if err := r.ledger.Mint(mint, tok.Supporter.PoolAccount, tok.Supporter.InitialBalance, tok.Curve.Address); err != nil {
		return nil, err
	}
	tok.initialMinted = true

	r.logger.Info("Initial allocations minted",
		zap.String("token_mint", mint.String()),
		zap.Uint64("vault_amount", tok.Vault.InitialBalance),
		zap.Uint64("supporter_amount", tok.Supporter.InitialBalance))

	return &events.InitialTokensMintedEvent{
		BaseEvent:       events.BaseEvent{EventType: events.InitialTokensMinted, EventTime: now},
		TokenMint:       mint,
		VaultAmount:     tok.Vault.InitialBalance,
		SupporterAmount: tok.Supporter.InitialBalance,
	}, nil
}

// allocationU64 computes totalSupply*percent/100 and requires the result to
// fit the 64-bit mint width.
func allocationU64(totalSupply bin.Uint128, percent uint8) (uint64, error) {
	a := allocation(totalSupply, percent)
	if a.Cmp(new(big.Int).SetUint64(^uint64(0))) > 0 {
		return 0, curve.ErrArithmeticOverflow
	}
	return a.Uint64(), nil
}
