package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/attenomics/curve-engine/internal/events"
	"github.com/attenomics/curve-engine/internal/registry"
	"github.com/attenomics/curve-engine/internal/types"
)

type engineFixture struct {
	engine    *Engine
	authority solana.PublicKey
	agent     solana.PublicKey
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		engine:    New(Options{Logger: zaptest.NewLogger(t)}),
		authority: solana.NewWallet().PublicKey(),
		agent:     solana.NewWallet().PublicKey(),
	}
	require.NoError(t, f.engine.Initialize(f.authority, solana.NewWallet().PublicKey()))
	require.NoError(t, f.engine.SetAgent(context.Background(), f.authority, f.agent, true))
	return f
}

func (f *engineFixture) deploy(t *testing.T, handle string) *registry.CreatorToken {
	t.Helper()
	vaultBytes, err := registry.EncodeVaultConfig(registry.VaultConfig{
		DripPercentage:   10,
		DripInterval:     86_400,
		LockTime:         86_400,
		LockedPercentage: 50,
	})
	require.NoError(t, err)
	distBytes, err := registry.EncodeDistributorConfig(registry.DistributorConfig{
		DailyDripAmount: 10_000_000,
		DripInterval:    86_400,
		TotalDays:       30,
	})
	require.NoError(t, err)

	tok, err := f.engine.DeployCreatorToken(context.Background(), registry.DeployParams{
		Creator: solana.NewWallet().PublicKey(),
		Config: registry.TokenConfig{
			TotalSupply:      bin.Uint128{Lo: 1_000_000_000},
			SelfPercent:      20,
			MarketPercent:    50,
			SupporterPercent: 30,
			Handle:           types.HandleFromString(handle),
			Agent:            f.agent,
		},
		VaultConfigBytes:       vaultBytes,
		DistributorConfigBytes: distBytes,
		Name:                   handle + " token",
		Symbol:                 "TKN",
		MetadataURI:            "https://example.com/" + handle,
		ReserveRatio:           50,
		InitialPrice:           1,
	})
	require.NoError(t, err)
	return tok
}

func TestEngineFullTradingFlow(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tok := f.deploy(t, "alice")
	require.NoError(t, f.engine.MintInitialTokens(ctx, tok.TokenMint))

	buyer := solana.NewWallet().PublicKey()
	require.NoError(t, f.engine.FundNative(buyer, 1_000_000))

	bought, err := f.engine.Buy(ctx, tok.TokenMint, buyer, 1000, types.PayNative)
	require.NoError(t, err)
	assert.Equal(t, uint64(50255), bought.Price)

	sold, err := f.engine.Sell(ctx, tok.TokenMint, buyer, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(24875), sold.Price)

	l := f.engine.Ledger()
	assert.Zero(t, l.TokenBalance(tok.TokenMint, buyer))
	assert.Equal(t, uint64(1_000_000-50255+24875), l.NativeBalance(buyer)+l.TokenBalance(
		solana.WrappedSol, buyer), "value conserved up to the curve's take")
}

func TestEngineSwapAcrossTwoTokens(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	src := f.deploy(t, "alice")
	dst := f.deploy(t, "bob")

	require.NoError(t, f.engine.InitializeSwapRouter(ctx))

	user := solana.NewWallet().PublicKey()
	require.NoError(t, f.engine.FundNative(user, 100_000_000))
	_, err := f.engine.Buy(ctx, src.TokenMint, user, 100_000, types.PayNative)
	require.NoError(t, err)

	evt, err := f.engine.SwapTokens(ctx, src.TokenMint, dst.TokenMint, user, 50_000, 1)
	require.NoError(t, err)
	assert.Greater(t, evt.AmountOut, uint64(0))
	assert.Equal(t, evt.AmountOut, f.engine.Ledger().TokenBalance(dst.TokenMint, user))
}

func TestEngineSwapRouterMustBeInitialized(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	src := f.deploy(t, "alice")
	dst := f.deploy(t, "bob")

	user := solana.NewWallet().PublicKey()
	_, err := f.engine.SwapTokens(ctx, src.TokenMint, dst.TokenMint, user, 10, 0)
	assert.Error(t, err)
}

func TestEngineRejectsUnknownToken(t *testing.T) {
	f := newEngineFixture(t)
	_, err := f.engine.Buy(context.Background(), solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(), 10, types.PayNative)
	assert.ErrorIs(t, err, registry.ErrTokenNotFound)
}

func TestEnginePublishesTradeEvents(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	var bought atomic.Int64
	sub := f.engine.Bus().SubscribeFunc(events.TokenBought, func(ctx context.Context, e events.Event) error {
		bought.Add(1)
		return nil
	})
	defer sub.Unsubscribe()

	tok := f.deploy(t, "alice")
	buyer := solana.NewWallet().PublicKey()
	require.NoError(t, f.engine.FundNative(buyer, 1_000_000))
	_, err := f.engine.Buy(ctx, tok.TokenMint, buyer, 1000, types.PayNative)
	require.NoError(t, err)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.engine.Shutdown(shutdownCtx))

	assert.Equal(t, int64(1), bought.Load())
}

func TestEngineFailedBuyJournalsNothing(t *testing.T) {
	f := newEngineFixture(t)
	tok := f.deploy(t, "alice")

	pauper := solana.NewWallet().PublicKey()
	_, err := f.engine.Buy(context.Background(), tok.TokenMint, pauper, 1000, types.PayNative)
	require.Error(t, err)
	assert.Zero(t, f.engine.Ledger().TokenBalance(tok.TokenMint, pauper))
}
