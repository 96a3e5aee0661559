// =============================================
// File: internal/task/task.go
// =============================================
package task

import (
	"fmt"
	"time"

	"github.com/attenomics/curve-engine/internal/types"
)

// Constants
const LamportsPerSOL = 1_000_000_000

// OperationType defines the supported operation types
type OperationType string

const (
	OperationDeploy      OperationType = "deploy"
	OperationMintInitial OperationType = "mint_initial"
	OperationBuy         OperationType = "buy"
	OperationSell        OperationType = "sell"
	OperationSwap        OperationType = "swap"
	OperationSetAgent    OperationType = "set_agent"
)

// Task represents one scenario step from the tasks file. Which fields are
// required depends on the operation; Validate enforces the per-operation
// rules.
type Task struct {
	ID        int
	TaskName  string
	Operation OperationType
	ActorName string // wallet executing the operation

	// Token references are creator handles, resolved against the registry
	// at execution time.
	Token       string
	TargetToken string // swap only

	Amount       uint64 // buy/sell/swap: token amount
	MinAmountOut uint64 // swap only
	PaymentMode  string // buy only: "native" or "wrapped"

	// deploy only
	Name             string
	Symbol           string
	MetadataURI      string
	TotalSupply      uint64
	SelfPercent      uint8
	MarketPercent    uint8
	SupporterPercent uint8
	InitialPrice     uint64
	ReserveRatio     uint64
	AgentName        string // wallet name acting as the token's agent

	// set_agent only
	Allowed bool

	CreatedAt time.Time
}

// IsSetup reports whether the task mutates registry or router state rather
// than trading. Setup tasks run sequentially in file order.
func (t *Task) IsSetup() bool {
	switch t.Operation {
	case OperationDeploy, OperationMintInitial, OperationSetAgent:
		return true
	default:
		return false
	}
}

// Mode maps the task's payment mode string to a types.PaymentMode.
func (t *Task) Mode() (types.PaymentMode, error) {
	switch t.PaymentMode {
	case "", "native":
		return types.PayNative, nil
	case "wrapped":
		return types.PayWrapped, nil
	default:
		return 0, fmt.Errorf("invalid payment mode: %q", t.PaymentMode)
	}
}

// Validate checks if the task has valid parameters
func (t *Task) Validate() error {
	if t.TaskName == "" {
		return fmt.Errorf("task name cannot be empty")
	}

	if t.ActorName == "" {
		return fmt.Errorf("actor cannot be empty")
	}

	switch t.Operation {
	case OperationDeploy:
		if t.Token == "" {
			return fmt.Errorf("deploy requires a handle")
		}
		if t.Name == "" || t.Symbol == "" {
			return fmt.Errorf("deploy requires name and symbol")
		}
		if t.TotalSupply == 0 {
			return fmt.Errorf("total supply must be greater than zero")
		}
		if t.AgentName == "" {
			return fmt.Errorf("deploy requires an agent")
		}

	case OperationMintInitial:
		if t.Token == "" {
			return fmt.Errorf("mint_initial requires a token")
		}

	case OperationBuy, OperationSell:
		if t.Token == "" {
			return fmt.Errorf("%s requires a token", t.Operation)
		}
		if t.Amount == 0 {
			return fmt.Errorf("amount must be greater than zero")
		}
		if _, err := t.Mode(); err != nil {
			return err
		}

	case OperationSwap:
		if t.Token == "" || t.TargetToken == "" {
			return fmt.Errorf("swap requires source and target tokens")
		}
		if t.Token == t.TargetToken {
			return fmt.Errorf("swap source and target must differ")
		}
		if t.Amount == 0 {
			return fmt.Errorf("amount must be greater than zero")
		}

	case OperationSetAgent:
		if t.AgentName == "" {
			return fmt.Errorf("set_agent requires an agent")
		}

	default:
		return fmt.Errorf("invalid operation: %s", t.Operation)
	}

	return nil
}
