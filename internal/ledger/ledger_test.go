package ledger

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	return New(zaptest.NewLogger(t))
}

func TestCreateMintRejectsDuplicates(t *testing.T) {
	l := newLedger(t)
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	require.NoError(t, l.CreateMint(mint, authority))
	assert.ErrorIs(t, l.CreateMint(mint, authority), ErrMintExists)
	assert.ErrorIs(t, l.CreateMint(ReserveMint, authority), ErrMintExists,
		"the reserve mint is pre-registered")
}

func TestMintRequiresAuthority(t *testing.T) {
	l := newLedger(t)
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()
	holder := solana.NewWallet().PublicKey()
	require.NoError(t, l.CreateMint(mint, authority))

	assert.ErrorIs(t, l.Mint(mint, holder, 100, holder), ErrNotMintAuthority)

	require.NoError(t, l.Mint(mint, holder, 100, authority))
	assert.Equal(t, uint64(100), l.TokenBalance(mint, holder))
	assert.Equal(t, uint64(100), l.TokenSupply(mint))
}

func TestBurnShrinksSupply(t *testing.T) {
	l := newLedger(t)
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()
	holder := solana.NewWallet().PublicKey()
	require.NoError(t, l.CreateMint(mint, authority))
	require.NoError(t, l.Mint(mint, holder, 100, authority))

	assert.ErrorIs(t, l.Burn(mint, holder, 101, authority), ErrInsufficientFunds)
	assert.ErrorIs(t, l.Burn(mint, holder, 10, holder), ErrNotMintAuthority)

	require.NoError(t, l.Burn(mint, holder, 40, authority))
	assert.Equal(t, uint64(60), l.TokenBalance(mint, holder))
	assert.Equal(t, uint64(60), l.TokenSupply(mint))
}

func TestTransferNative(t *testing.T) {
	l := newLedger(t)
	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()
	require.NoError(t, l.FundNative(from, 1000))

	require.NoError(t, l.Transfer(from, to, 400))
	assert.Equal(t, uint64(600), l.NativeBalance(from))
	assert.Equal(t, uint64(400), l.NativeBalance(to))

	assert.ErrorIs(t, l.Transfer(from, to, 601), ErrInsufficientFunds)

	require.NoError(t, l.FundNative(to, ^uint64(0)-400))
	assert.ErrorIs(t, l.Transfer(from, to, 1), ErrBalanceOverflow)
	assert.Equal(t, uint64(600), l.NativeBalance(from), "failed transfer must not debit")
}

func TestTransferToken(t *testing.T) {
	l := newLedger(t)
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	require.NoError(t, l.CreateMint(mint, authority))
	require.NoError(t, l.Mint(mint, a, 100, authority))

	assert.ErrorIs(t, l.TransferToken(mint, a, b, 101), ErrInsufficientFunds)
	assert.ErrorIs(t, l.TransferToken(solana.NewWallet().PublicKey(), a, b, 1), ErrUnknownMint)

	require.NoError(t, l.TransferToken(mint, a, b, 30))
	assert.Equal(t, uint64(70), l.TokenBalance(mint, a))
	assert.Equal(t, uint64(30), l.TokenBalance(mint, b))
}

func TestWrapAndUnwrapConserveValue(t *testing.T) {
	l := newLedger(t)
	owner := solana.NewWallet().PublicKey()
	require.NoError(t, l.FundNative(owner, 1000))

	assert.ErrorIs(t, l.WrapNative(owner, 1001), ErrInsufficientFunds)

	require.NoError(t, l.WrapNative(owner, 600))
	assert.Equal(t, uint64(400), l.NativeBalance(owner))
	assert.Equal(t, uint64(600), l.TokenBalance(ReserveMint, owner))
	assert.Equal(t, uint64(600), l.TokenSupply(ReserveMint))

	require.NoError(t, l.UnwrapReserve(owner, 600))
	assert.Equal(t, uint64(1000), l.NativeBalance(owner))
	assert.Zero(t, l.TokenBalance(ReserveMint, owner))
	assert.Zero(t, l.TokenSupply(ReserveMint))
}

func TestFundNativeOverflow(t *testing.T) {
	l := newLedger(t)
	owner := solana.NewWallet().PublicKey()
	require.NoError(t, l.FundNative(owner, ^uint64(0)))
	assert.ErrorIs(t, l.FundNative(owner, 1), ErrBalanceOverflow)
}
