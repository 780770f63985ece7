package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.StoreDriver)
	assert.Equal(t, "data.json", cfg.StorePath)
	assert.Equal(t, time.Duration(0), cfg.Latency)
	assert.Equal(t, 1000.0, cfg.WelcomeMin)
	assert.Equal(t, 16000.0, cfg.WelcomeMax)
	assert.Equal(t, 500000.0, cfg.LoanCeiling)
	assert.Equal(t, 12.0, cfg.LoanRate)
	assert.Equal(t, 60, cfg.LoanMaxTerm)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BANK_STORE_DRIVER", "sqlite")
	t.Setenv("BANK_STORE_PATH", "/tmp/bank.db")
	t.Setenv("BANK_LATENCY", "350ms")
	t.Setenv("BANK_LOAN_RATE", "15")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "/tmp/bank.db", cfg.StorePath)
	assert.Equal(t, 350*time.Millisecond, cfg.Latency)
	assert.Equal(t, 15.0, cfg.LoanRate)
}

func TestLoadRejectsBadRanges(t *testing.T) {
	t.Setenv("BANK_WELCOME_MIN", "500")
	t.Setenv("BANK_WELCOME_MAX", "100")

	_, err := Load()
	assert.Error(t, err)
}

func TestUsageListsVariables(t *testing.T) {
	assert.Contains(t, Usage(), "BANK_STORE_DRIVER")
}

func TestLoadRejectsZeroLoanRate(t *testing.T) {
	t.Setenv("BANK_LOAN_RATE", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "loan rate")
}
