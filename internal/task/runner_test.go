package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/attenomics/curve-engine/internal/engine"
	"github.com/attenomics/curve-engine/internal/types"
)

func newRunnerFixture(t *testing.T) (*Runner, *engine.Engine, map[string]*Wallet) {
	t.Helper()
	log := zaptest.NewLogger(t)
	eng := engine.New(engine.Options{Logger: log})

	wallets := map[string]*Wallet{
		"admin":   GenerateWallet("admin"),
		"agent1":  GenerateWallet("agent1"),
		"creator": GenerateWallet("creator"),
		"trader":  GenerateWallet("trader"),
	}
	wallets["trader"].FundSol = 0.1

	require.NoError(t, eng.Initialize(wallets["admin"].PublicKey, GenerateWallet("fees").PublicKey))
	require.NoError(t, eng.InitializeSwapRouter(context.Background()))

	r := NewRunner(eng, wallets, 4, log)
	require.NoError(t, r.FundActors())
	return r, eng, wallets
}

func scenarioTasks() []*Task {
	deploy := func(name, handle string) *Task {
		return &Task{
			TaskName:         name,
			Operation:        OperationDeploy,
			ActorName:        "creator",
			Token:            handle,
			Name:             handle + " token",
			Symbol:           "TKN",
			TotalSupply:      1_000_000_000,
			SelfPercent:      20,
			MarketPercent:    50,
			SupporterPercent: 30,
			InitialPrice:     1,
			ReserveRatio:     50,
			AgentName:        "agent1",
		}
	}

	return []*Task{
		{TaskName: "allow-agent", Operation: OperationSetAgent, ActorName: "admin", AgentName: "agent1", Allowed: true},
		deploy("deploy-alice", "alice"),
		deploy("deploy-bob", "bob"),
		{TaskName: "mint-alice", Operation: OperationMintInitial, ActorName: "admin", Token: "alice"},
		{TaskName: "buy-alice", Operation: OperationBuy, ActorName: "trader", Token: "alice", Amount: 100_000, PaymentMode: "native"},
		{TaskName: "swap", Operation: OperationSwap, ActorName: "trader", Token: "alice", TargetToken: "bob", Amount: 50_000, MinAmountOut: 1},
		{TaskName: "sell-rest", Operation: OperationSell, ActorName: "trader", Token: "alice", Amount: 50_000},
	}
}

func TestRunnerExecutesScenarioInOrder(t *testing.T) {
	r, eng, wallets := newRunnerFixture(t)

	require.NoError(t, r.Run(context.Background(), scenarioTasks()))

	reg := eng.Registry()
	alice, err := reg.TokenByHandle(types.HandleFromString("alice"))
	require.NoError(t, err)
	bob, err := reg.TokenByHandle(types.HandleFromString("bob"))
	require.NoError(t, err)

	trader := wallets["trader"].PublicKey
	l := eng.Ledger()

	// The trader bought 100k, swapped 50k away and sold the remaining 50k.
	assert.Zero(t, l.TokenBalance(alice.TokenMint, trader))
	assert.Greater(t, l.TokenBalance(bob.TokenMint, trader), uint64(0))
	assert.Zero(t, alice.Curve.PurchaseMarketSupply)

	// mint_initial ran for alice only.
	assert.Equal(t, uint64(500_000_000), l.TokenBalance(alice.TokenMint, alice.Vault.VaultAccount)+
		l.TokenBalance(alice.TokenMint, alice.Supporter.PoolAccount))
	assert.Zero(t, l.TokenBalance(bob.TokenMint, bob.Vault.VaultAccount))
}

func TestRunnerFailsOnUnknownActor(t *testing.T) {
	r, _, _ := newRunnerFixture(t)

	tasks := []*Task{
		{TaskName: "ghost-buy", Operation: OperationBuy, ActorName: "ghost", Token: "alice", Amount: 10},
	}
	err := r.Run(context.Background(), tasks)
	assert.ErrorContains(t, err, "unknown actor")
}

func TestRunnerSetupFailureAborts(t *testing.T) {
	r, eng, _ := newRunnerFixture(t)

	// Deploy without allowing the agent first.
	tasks := scenarioTasks()[1:2]
	err := r.Run(context.Background(), tasks)
	assert.Error(t, err)
	assert.Empty(t, eng.Registry().Tokens())
}

func TestRunnerConcurrentBuysAllSettle(t *testing.T) {
	r, eng, wallets := newRunnerFixture(t)

	tasks := scenarioTasks()[:4] // allow agent, deploy both, mint alice
	for i := 0; i < 8; i++ {
		tasks = append(tasks, &Task{
			TaskName:    "buy",
			Operation:   OperationBuy,
			ActorName:   "trader",
			Token:       "alice",
			Amount:      1000,
			PaymentMode: "native",
		})
	}
	require.NoError(t, r.Run(context.Background(), tasks))

	alice, err := eng.Registry().TokenByHandle(types.HandleFromString("alice"))
	require.NoError(t, err)
	assert.Equal(t, uint64(8000), alice.Curve.PurchaseMarketSupply)
	assert.Equal(t, uint64(8000), eng.Ledger().TokenBalance(alice.TokenMint, wallets["trader"].PublicKey))
}

func TestFundLamportsConversion(t *testing.T) {
	w := GenerateWallet("x")
	w.FundSol = 1.5
	assert.Equal(t, uint64(1_500_000_000), w.FundLamports())

	w.FundSol = 0
	assert.Zero(t, w.FundLamports())
}
