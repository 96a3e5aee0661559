package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	authority := solana.NewWallet().PublicKey().String()
	feeAddr := solana.NewWallet().PublicKey().String()

	path := writeConfig(t, `{
		"authority": "`+authority+`",
		"protocol_fee_address": "`+feeAddr+`"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultEventBufferSize, cfg.EventBufferSize)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
	assert.Equal(t, DefaultTasksFile, cfg.TasksFile)
	assert.Equal(t, authority, cfg.AuthorityKey().String())
	assert.Equal(t, feeAddr, cfg.ProtocolFeeKey().String())
}

func TestLoadConfigRejectsMissingAuthority(t *testing.T) {
	path := writeConfig(t, `{"protocol_fee_address": "`+solana.NewWallet().PublicKey().String()+`"}`)
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "authority")
}

func TestLoadConfigRejectsBadPublicKey(t *testing.T) {
	path := writeConfig(t, `{
		"authority": "not-a-key",
		"protocol_fee_address": "`+solana.NewWallet().PublicKey().String()+`"
	}`)
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "invalid authority")
}

func TestLoadConfigRejectsZeroWorkers(t *testing.T) {
	path := writeConfig(t, `{
		"authority": "`+solana.NewWallet().PublicKey().String()+`",
		"protocol_fee_address": "`+solana.NewWallet().PublicKey().String()+`",
		"workers": 0
	}`)
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "workers")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
