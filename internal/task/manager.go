package task

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manager loads and parses Task definitions.
type Manager struct {
	logger *zap.Logger
}

// TaskConfig represents the structure of the tasks YAML file
type TaskConfig struct {
	Tasks []struct {
		TaskName     string `yaml:"task_name"`
		Operation    string `yaml:"operation"`
		Actor        string `yaml:"actor"`
		Token        string `yaml:"token"`
		TargetToken  string `yaml:"target_token"`
		Amount       uint64 `yaml:"amount"`
		MinAmountOut uint64 `yaml:"min_amount_out"`
		PaymentMode  string `yaml:"payment_mode"`

		Name             string `yaml:"name"`
		Symbol           string `yaml:"symbol"`
		MetadataURI      string `yaml:"metadata_uri"`
		TotalSupply      uint64 `yaml:"total_supply"`
		SelfPercent      uint8  `yaml:"self_percent"`
		MarketPercent    uint8  `yaml:"market_percent"`
		SupporterPercent uint8  `yaml:"supporter_percent"`
		InitialPrice     uint64 `yaml:"initial_price"`
		ReserveRatio     uint64 `yaml:"reserve_ratio"`
		Agent            string `yaml:"agent"`
		Allowed          bool   `yaml:"allowed"`
	} `yaml:"tasks"`
}

// NewManager constructs a Manager with the given logger.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

func parseOperation(s string) (OperationType, error) {
	op := OperationType(s)
	switch op {
	case OperationDeploy, OperationMintInitial, OperationBuy,
		OperationSell, OperationSwap, OperationSetAgent:
		return op, nil
	default:
		return "", fmt.Errorf("unsupported operation: %q", s)
	}
}

// LoadTasks reads tasks from a YAML file. Invalid entries are skipped with a
// warning rather than failing the whole scenario.
func (m *Manager) LoadTasks(path string) ([]*Task, error) {
	if filepath.IsAbs(path) {
		m.logger.Warn("Using absolute path for tasks file", zap.String("path", path))
	}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config TaskConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(config.Tasks) == 0 {
		return nil, fmt.Errorf("no tasks found in configuration")
	}

	tasks := make([]*Task, 0, len(config.Tasks))
	for i, taskData := range config.Tasks {
		op, err := parseOperation(taskData.Operation)
		if err != nil {
			m.logger.Warn("Skipping invalid task", zap.String("task_name", taskData.TaskName), zap.Error(err))
			continue
		}

		task := &Task{
			ID:               i,
			TaskName:         taskData.TaskName,
			Operation:        op,
			ActorName:        taskData.Actor,
			Token:            taskData.Token,
			TargetToken:      taskData.TargetToken,
			Amount:           taskData.Amount,
			MinAmountOut:     taskData.MinAmountOut,
			PaymentMode:      taskData.PaymentMode,
			Name:             taskData.Name,
			Symbol:           taskData.Symbol,
			MetadataURI:      taskData.MetadataURI,
			TotalSupply:      taskData.TotalSupply,
			SelfPercent:      taskData.SelfPercent,
			MarketPercent:    taskData.MarketPercent,
			SupporterPercent: taskData.SupporterPercent,
			InitialPrice:     taskData.InitialPrice,
			ReserveRatio:     taskData.ReserveRatio,
			AgentName:        taskData.Agent,
			Allowed:          taskData.Allowed,
			CreatedAt:        time.Now(),
		}

		if err := task.Validate(); err != nil {
			m.logger.Warn("Skipping task that failed validation",
				zap.String("task_name", task.TaskName),
				zap.String("operation", string(task.Operation)),
				zap.Error(err))
			continue
		}

		tasks = append(tasks, task)
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("no valid tasks loaded")
	}

	m.logger.Info("Loaded tasks", zap.Int("count", len(tasks)))
	return tasks, nil
}
