// ==================================
// File: internal/task/wallet.go
// ==================================
package task

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

// Wallet is a named scenario actor. Actors without a configured private key
// get a freshly generated keypair.
type Wallet struct {
	Name       string
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
	FundSol    float64 // native balance to seed before the scenario runs
}

// NewWallet creates a wallet from a base58-encoded private key.
func NewWallet(name, privateKeyBase58 string) (*Wallet, error) {
	privateKey, err := solana.PrivateKeyFromBase58(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &Wallet{
		Name:       name,
		PrivateKey: privateKey,
		PublicKey:  privateKey.PublicKey(),
	}, nil
}

// GenerateWallet creates a wallet with a fresh keypair.
func GenerateWallet(name string) *Wallet {
	w := solana.NewWallet()
	return &Wallet{
		Name:       name,
		PrivateKey: w.PrivateKey,
		PublicKey:  w.PublicKey(),
	}
}

// FundLamports converts the configured SOL funding amount to lamports.
func (w *Wallet) FundLamports() uint64 {
	if w.FundSol <= 0 {
		return 0
	}
	return uint64(w.FundSol * LamportsPerSOL)
}

// WalletConfig represents the structure of the wallets YAML file
type WalletConfig struct {
	Wallets []struct {
		Name       string  `yaml:"name"`
		PrivateKey string  `yaml:"private_key"`
		FundSol    float64 `yaml:"fund_sol"`
	} `yaml:"wallets"`
}

// LoadWallets loads scenario actors from a YAML file. Entries without a
// private key get generated keypairs.
func LoadWallets(path string) (map[string]*Wallet, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config WalletConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(config.Wallets) == 0 {
		return nil, fmt.Errorf("no wallets found in configuration")
	}

	wallets := make(map[string]*Wallet)
	for _, walletData := range config.Wallets {
		if walletData.Name == "" {
			continue
		}

		var w *Wallet
		if walletData.PrivateKey != "" {
			w, err = NewWallet(walletData.Name, walletData.PrivateKey)
			if err != nil {
				continue
			}
		} else {
			w = GenerateWallet(walletData.Name)
		}
		w.FundSol = walletData.FundSol
		wallets[walletData.Name] = w
	}

	if len(wallets) == 0 {
		return nil, fmt.Errorf("no valid wallets loaded")
	}

	return wallets, nil
}

// String returns the wallet's public key in base58.
func (w *Wallet) String() string {
	return w.PublicKey.String()
}
