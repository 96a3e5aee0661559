package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/attenomics/curve-engine/internal/types"
)

func writeTasksFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadTasksParsesScenario(t *testing.T) {
	path := writeTasksFile(t, `
tasks:
  - task_name: allow-agent
    operation: set_agent
    actor: admin
    agent: agent1
    allowed: true
  - task_name: deploy-alice
    operation: deploy
    actor: creator
    token: alice
    name: Alice Coin
    symbol: ALICE
    total_supply: 1000000000
    self_percent: 20
    market_percent: 50
    supporter_percent: 30
    initial_price: 1
    agent: agent1
  - task_name: buy-alice
    operation: buy
    actor: trader
    token: alice
    amount: 1000
    payment_mode: native
  - task_name: swap-to-bob
    operation: swap
    actor: trader
    token: alice
    target_token: bob
    amount: 500
    min_amount_out: 1
`)

	m := NewManager(zaptest.NewLogger(t))
	tasks, err := m.LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	assert.Equal(t, OperationSetAgent, tasks[0].Operation)
	assert.True(t, tasks[0].IsSetup())

	deploy := tasks[1]
	assert.Equal(t, OperationDeploy, deploy.Operation)
	assert.Equal(t, uint64(1_000_000_000), deploy.TotalSupply)
	assert.Equal(t, uint8(30), deploy.SupporterPercent)

	buy := tasks[2]
	assert.False(t, buy.IsSetup())
	mode, err := buy.Mode()
	require.NoError(t, err)
	assert.Equal(t, types.PayNative, mode)

	swap := tasks[3]
	assert.Equal(t, "bob", swap.TargetToken)
	assert.Equal(t, uint64(1), swap.MinAmountOut)
}

func TestLoadTasksSkipsInvalidEntries(t *testing.T) {
	path := writeTasksFile(t, `
tasks:
  - task_name: bad-op
    operation: teleport
    actor: admin
  - task_name: zero-amount
    operation: buy
    actor: trader
    token: alice
    amount: 0
  - task_name: good-buy
    operation: buy
    actor: trader
    token: alice
    amount: 100
`)

	m := NewManager(zaptest.NewLogger(t))
	tasks, err := m.LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "good-buy", tasks[0].TaskName)
}

func TestLoadTasksFailsWhenNothingValid(t *testing.T) {
	path := writeTasksFile(t, `
tasks:
  - task_name: nope
    operation: teleport
    actor: admin
`)

	m := NewManager(zaptest.NewLogger(t))
	_, err := m.LoadTasks(path)
	assert.Error(t, err)
}

func TestLoadTasksMissingFile(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	_, err := m.LoadTasks(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestTaskModeRejectsGarbage(t *testing.T) {
	task := &Task{PaymentMode: "barter"}
	_, err := task.Mode()
	assert.Error(t, err)
}
