// =============================
// File: internal/registry/config.go
// =============================
package registry

import (
	"bytes"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/attenomics/curve-engine/internal/types"
)

const (
	maxNameLen        = 32
	maxSymbolLen      = 10
	maxMetadataURILen = 200

	percentTotal = 100
)

// TokenConfig defines the initial settings for a new creator token.
type TokenConfig struct {
	TotalSupply      bin.Uint128
	SelfPercent      uint8
	MarketPercent    uint8
	SupporterPercent uint8
	Handle           types.Handle
	Agent            solana.PublicKey
}

// VaultConfig defines the release schedule for the creator's vested
// allocation. It is stored for a future vesting version; no withdrawal
// transition reads it yet.
type VaultConfig struct {
	DripPercentage   uint8
	DripInterval     int64
	LockTime         int64
	LockedPercentage uint8
}

// DistributorConfig defines the drip schedule for the supporter allocation.
type DistributorConfig struct {
	DailyDripAmount uint64
	DripInterval    int64
	TotalDays       uint16
}

// decodeVaultConfig decodes the Borsh-encoded vault config blob.
func decodeVaultConfig(data []byte) (VaultConfig, error) {
	var cfg VaultConfig
	if err := bin.NewBorshDecoder(data).Decode(&cfg); err != nil {
		return VaultConfig{}, fmt.Errorf("%w: %v", ErrInvalidVaultConfig, err)
	}
	if cfg.DripPercentage > percentTotal || cfg.LockedPercentage > percentTotal {
		return VaultConfig{}, fmt.Errorf("%w: percentage above 100", ErrInvalidVaultConfig)
	}
	if cfg.DripInterval <= 0 || cfg.LockTime < 0 {
		return VaultConfig{}, fmt.Errorf("%w: non-positive schedule", ErrInvalidVaultConfig)
	}
	return cfg, nil
}

// decodeDistributorConfig decodes the Borsh-encoded distributor config blob
// and checks it against the supporter allocation.
func decodeDistributorConfig(data []byte, supporterAllocation *big.Int) (DistributorConfig, error) {
	var cfg DistributorConfig
	if err := bin.NewBorshDecoder(data).Decode(&cfg); err != nil {
		return DistributorConfig{}, fmt.Errorf("%w: %v", ErrInvalidDistributorConfig, err)
	}
	if cfg.DailyDripAmount == 0 || cfg.DripInterval <= 0 || cfg.TotalDays == 0 {
		return DistributorConfig{}, fmt.Errorf("%w: non-positive schedule", ErrInvalidDistributorConfig)
	}

	total := new(big.Int).Mul(
		new(big.Int).SetUint64(cfg.DailyDripAmount),
		big.NewInt(int64(cfg.TotalDays)),
	)
	if total.Cmp(supporterAllocation) > 0 {
		return DistributorConfig{}, fmt.Errorf("%w: total distribution exceeds supporter allocation", ErrInvalidDistributorConfig)
	}
	return cfg, nil
}

// EncodeVaultConfig Borsh-encodes a vault config. Hosts use it to build the
// deployment blob; the engine itself only decodes.
func EncodeVaultConfig(cfg VaultConfig) ([]byte, error) {
	return encodeBorsh(&cfg)
}

// EncodeDistributorConfig Borsh-encodes a distributor config.
func EncodeDistributorConfig(cfg DistributorConfig) ([]byte, error) {
	return encodeBorsh(&cfg)
}

func encodeBorsh(v interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, fmt.Errorf("borsh encode: %w", err)
	}
	return buf.Bytes(), nil
}

// allocation computes totalSupply*percent/100 in extended precision.
func allocation(totalSupply bin.Uint128, percent uint8) *big.Int {
	a := totalSupply.BigInt()
	a.Mul(a, big.NewInt(int64(percent)))
	return a.Div(a, big.NewInt(percentTotal))
}
