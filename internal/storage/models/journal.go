// internal/storage/models/journal.go
package models

import (
	"github.com/shopspring/decimal"
)

// Deployment records one successful creator-token deployment.
type Deployment struct {
	BaseModel
	Handle           string `gorm:"unique;not null;type:varchar(32)"`
	Creator          string `gorm:"index;not null;type:varchar(44)"`
	TokenMint        string `gorm:"unique;not null;type:varchar(44)"`
	Agent            string `gorm:"index;not null;type:varchar(44)"`
	TokenID          uint64 `gorm:"uniqueIndex;not null"`
	Name             string `gorm:"not null;type:varchar(32)"`
	Symbol           string `gorm:"not null;type:varchar(10)"`
	SelfPercent      uint8  `gorm:"not null"`
	MarketPercent    uint8  `gorm:"not null"`
	SupporterPercent uint8  `gorm:"not null"`
	InitialPrice     uint64 `gorm:"not null"`
}

// Trade records one executed buy or sell against a single curve.
type Trade struct {
	BaseModel
	Side       string          `gorm:"index;not null;type:varchar(4)"` // buy | sell
	Trader     string          `gorm:"index;not null;type:varchar(44)"`
	TokenMint  string          `gorm:"index;not null;type:varchar(44)"`
	Amount     uint64          `gorm:"not null"`
	Price      uint64          `gorm:"not null"`
	PriceSol   decimal.Decimal `gorm:"type:decimal(20,9);not null"`
	FeePaid    uint64          `gorm:"not null"`
	CurveState string          `gorm:"type:varchar(20)"`
}

// Swap records one executed cross-curve swap.
type Swap struct {
	BaseModel
	User         string          `gorm:"index;not null;type:varchar(44)"`
	SourceMint   string          `gorm:"index;not null;type:varchar(44)"`
	TargetMint   string          `gorm:"index;not null;type:varchar(44)"`
	AmountIn     uint64          `gorm:"not null"`
	AmountOut    uint64          `gorm:"not null"`
	ReserveMoved uint64          `gorm:"not null"`
	ReserveSol   decimal.Decimal `gorm:"type:decimal(20,9);not null"`
}
