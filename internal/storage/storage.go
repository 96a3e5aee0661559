// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/attenomics/curve-engine/internal/storage/models"
)

// Storage is the trade journal. The engine runs without one; when present,
// every successful operation is recorded after it commits.
type Storage interface {
	// Deployments
	SaveDeployment(ctx context.Context, d *models.Deployment) error
	GetDeployment(ctx context.Context, tokenMint string) (*models.Deployment, error)

	// Trades
	SaveTrade(ctx context.Context, t *models.Trade) error
	ListTrades(ctx context.Context, tokenMint string, limit, offset int) ([]*models.Trade, error)

	// Swaps
	SaveSwap(ctx context.Context, s *models.Swap) error
	ListSwaps(ctx context.Context, user string, limit, offset int) ([]*models.Swap, error)

	// Migrations
	RunMigrations() error
}
