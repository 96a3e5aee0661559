// =============================================
// File: internal/task/runner.go
// =============================================
package task

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/attenomics/curve-engine/internal/engine"
	"github.com/attenomics/curve-engine/internal/registry"
	"github.com/attenomics/curve-engine/internal/types"
)

// Default schedules applied to deployments that do not configure vesting or
// drip explicitly. The vault releases after a day-long cliff; the supporter
// pool drips over 30 days when the allocation is large enough to split.
const (
	defaultDripIntervalSec = 86_400
	defaultDripDays        = 30
	defaultDripPercentage  = 10
	defaultLockedPct       = 50
)

// Runner executes scenario tasks against an engine. Setup operations
// (deploy, mint_initial, set_agent) run sequentially in file order; runs of
// consecutive trade operations run concurrently on a bounded worker pool.
type Runner struct {
	engine  *engine.Engine
	wallets map[string]*Wallet
	workers int
	logger  *zap.Logger
}

// NewRunner builds a runner over the given engine and actor book.
func NewRunner(eng *engine.Engine, wallets map[string]*Wallet, workers int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		engine:  eng,
		wallets: wallets,
		workers: workers,
		logger:  logger.Named("runner"),
	}
}

// FundActors seeds every actor's configured native balance.
func (r *Runner) FundActors() error {
	for name, w := range r.wallets {
		lamports := w.FundLamports()
		if lamports == 0 {
			continue
		}
		if err := r.engine.FundNative(w.PublicKey, lamports); err != nil {
			return fmt.Errorf("fund actor %s: %w", name, err)
		}
		r.logger.Debug("Funded actor",
			zap.String("actor", name),
			zap.Uint64("lamports", lamports))
	}
	return nil
}

// Run executes the tasks. The first trade failure in a concurrent batch
// cancels the rest of that batch; setup failures abort the scenario.
func (r *Runner) Run(ctx context.Context, tasks []*Task) error {
	var batch []*Task

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)
		for _, t := range batch {
			g.Go(func() error {
				return r.execute(gctx, t)
			})
		}
		batch = nil
		return g.Wait()
	}

	for _, t := range tasks {
		if t.IsSetup() {
			if err := flush(); err != nil {
				return err
			}
			if err := r.execute(ctx, t); err != nil {
				return err
			}
			continue
		}
		batch = append(batch, t)
	}
	return flush()
}

func (r *Runner) execute(ctx context.Context, t *Task) error {
	actor, ok := r.wallets[t.ActorName]
	if !ok {
		return fmt.Errorf("task %q: unknown actor %q", t.TaskName, t.ActorName)
	}

	log := r.logger.With(
		zap.String("task", t.TaskName),
		zap.String("operation", string(t.Operation)),
		zap.String("actor", t.ActorName))

	var err error
	switch t.Operation {
	case OperationDeploy:
		err = r.deploy(ctx, t, actor)
	case OperationMintInitial:
		err = r.mintInitial(ctx, t)
	case OperationBuy:
		err = r.buy(ctx, t, actor)
	case OperationSell:
		err = r.sell(ctx, t, actor)
	case OperationSwap:
		err = r.swap(ctx, t, actor)
	case OperationSetAgent:
		err = r.setAgent(ctx, t, actor)
	default:
		err = fmt.Errorf("unsupported operation: %s", t.Operation)
	}

	if err != nil {
		log.Error("Task failed", zap.Error(err))
		return fmt.Errorf("task %q: %w", t.TaskName, err)
	}
	log.Info("Task completed")
	return nil
}

func (r *Runner) deploy(ctx context.Context, t *Task, actor *Wallet) error {
	agent, ok := r.wallets[t.AgentName]
	if !ok {
		return fmt.Errorf("unknown agent actor %q", t.AgentName)
	}

	supporterAlloc := t.TotalSupply / 100 * uint64(t.SupporterPercent)

	dripDays := uint16(defaultDripDays)
	dailyDrip := supporterAlloc / defaultDripDays
	if dailyDrip == 0 {
		dripDays = 1
		dailyDrip = supporterAlloc
	}

	vaultBytes, err := registry.EncodeVaultConfig(registry.VaultConfig{
		DripPercentage:   defaultDripPercentage,
		DripInterval:     defaultDripIntervalSec,
		LockTime:         defaultDripIntervalSec,
		LockedPercentage: defaultLockedPct,
	})
	if err != nil {
		return err
	}
	distBytes, err := registry.EncodeDistributorConfig(registry.DistributorConfig{
		DailyDripAmount: dailyDrip,
		DripInterval:    defaultDripIntervalSec,
		TotalDays:       dripDays,
	})
	if err != nil {
		return err
	}

	initialPrice := t.InitialPrice
	if initialPrice == 0 {
		initialPrice = 1
	}

	_, err = r.engine.DeployCreatorToken(ctx, registry.DeployParams{
		Creator: actor.PublicKey,
		Config: registry.TokenConfig{
			TotalSupply:      bin.Uint128{Lo: t.TotalSupply},
			SelfPercent:      t.SelfPercent,
			MarketPercent:    t.MarketPercent,
			SupporterPercent: t.SupporterPercent,
			Handle:           types.HandleFromString(t.Token),
			Agent:            agent.PublicKey,
		},
		VaultConfigBytes:       vaultBytes,
		DistributorConfigBytes: distBytes,
		Name:                   t.Name,
		Symbol:                 t.Symbol,
		MetadataURI:            t.MetadataURI,
		ReserveRatio:           t.ReserveRatio,
		InitialPrice:           initialPrice,
	})
	return err
}

func (r *Runner) mintInitial(ctx context.Context, t *Task) error {
	tok, err := r.engine.Registry().TokenByHandle(types.HandleFromString(t.Token))
	if err != nil {
		return err
	}
	return r.engine.MintInitialTokens(ctx, tok.TokenMint)
}

func (r *Runner) buy(ctx context.Context, t *Task, actor *Wallet) error {
	tok, err := r.engine.Registry().TokenByHandle(types.HandleFromString(t.Token))
	if err != nil {
		return err
	}
	mode, err := t.Mode()
	if err != nil {
		return err
	}
	_, err = r.engine.Buy(ctx, tok.TokenMint, actor.PublicKey, t.Amount, mode)
	return err
}

func (r *Runner) sell(ctx context.Context, t *Task, actor *Wallet) error {
	tok, err := r.engine.Registry().TokenByHandle(types.HandleFromString(t.Token))
	if err != nil {
		return err
	}
	_, err = r.engine.Sell(ctx, tok.TokenMint, actor.PublicKey, t.Amount)
	return err
}

func (r *Runner) swap(ctx context.Context, t *Task, actor *Wallet) error {
	reg := r.engine.Registry()
	src, err := reg.TokenByHandle(types.HandleFromString(t.Token))
	if err != nil {
		return err
	}
	dst, err := reg.TokenByHandle(types.HandleFromString(t.TargetToken))
	if err != nil {
		return err
	}
	_, err = r.engine.SwapTokens(ctx, src.TokenMint, dst.TokenMint, actor.PublicKey, t.Amount, t.MinAmountOut)
	return err
}

func (r *Runner) setAgent(ctx context.Context, t *Task, actor *Wallet) error {
	agent, ok := r.wallets[t.AgentName]
	if !ok {
		return fmt.Errorf("unknown agent actor %q", t.AgentName)
	}
	return r.engine.SetAgent(ctx, actor.PublicKey, agent.PublicKey, t.Allowed)
}
