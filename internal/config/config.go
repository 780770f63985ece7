// internal/config/config.go
//
// Package config 由環境變數載入設定（cleanenv），並提供預設值。
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config 為整個程式的設定。
type Config struct {
	StoreDriver string `env:"BANK_STORE_DRIVER" env-default:"json" env-description:"record store backend: memory, json or sqlite"`
	StorePath   string `env:"BANK_STORE_PATH" env-default:"data.json" env-description:"snapshot file or sqlite database path"`
	CatalogFile string `env:"BANK_CATALOG_FILE" env-description:"optional YAML file overriding bundles and FX rates"`
	LogLevel    string `env:"BANK_LOG_LEVEL" env-default:"info"`

	// Latency 為模擬網路延遲；0 表示不延遲。
	Latency time.Duration `env:"BANK_LATENCY" env-default:"0s"`

	WelcomeMin  float64 `env:"BANK_WELCOME_MIN" env-default:"1000"`
	WelcomeMax  float64 `env:"BANK_WELCOME_MAX" env-default:"16000"`
	LoanCeiling float64 `env:"BANK_LOAN_CEILING" env-default:"500000"`
	LoanRate    float64 `env:"BANK_LOAN_RATE" env-default:"12" env-description:"annual interest rate in percent"`
	LoanMaxTerm int     `env:"BANK_LOAN_MAX_TERM" env-default:"60" env-description:"longest loan term in months"`
}

// Load 讀取環境變數並驗證。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 檢查數值範圍。
func (c *Config) Validate() error {
	if c.WelcomeMin < 0 || c.WelcomeMax < c.WelcomeMin {
		return fmt.Errorf("invalid welcome balance range [%v, %v)", c.WelcomeMin, c.WelcomeMax)
	}
	if c.LoanCeiling <= 0 {
		return fmt.Errorf("loan ceiling must be > 0, got %v", c.LoanCeiling)
	}
	if c.LoanRate <= 0 {
		return fmt.Errorf("loan rate must be > 0, got %v", c.LoanRate)
	}
	if c.LoanMaxTerm <= 0 {
		return fmt.Errorf("loan max term must be > 0, got %d", c.LoanMaxTerm)
	}
	if c.Latency < 0 {
		return fmt.Errorf("latency must be >= 0, got %v", c.Latency)
	}
	return nil
}

// Usage 回傳所有環境變數說明，供 CLI 說明頁使用。
func Usage() string {
	text, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return text
}
