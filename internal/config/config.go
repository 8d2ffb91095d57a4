package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"FloorSentinel/internal/analytics"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration decodes yaml values in either time.ParseDuration form
// ("90s", "1m") or raw nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	// Int must be tried first: yaml decodes any scalar into a string.
	var ns int64
	if err := value.Decode(&ns); err == nil {
		*d = Duration(ns)
		return nil
	}
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Market struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"market"`
	Gas struct {
		EtherscanAPIKey string `yaml:"etherscan_api_key"`
	} `yaml:"gas"`
	Wallet struct {
		Address string `yaml:"address"`
	} `yaml:"wallet"`
	Scan struct {
		Collections    []string               `yaml:"collections"`
		MinDiscount    float64                `yaml:"min_discount"` // percent
		MaxResults     int                    `yaml:"max_results"`
		MaxRiskScore   int                    `yaml:"max_risk_score"`
		IncludeRarity  bool                   `yaml:"include_rarity"`
		RequestsPerSec int                    `yaml:"requests_per_sec"`
		RiskWeights    *analytics.RiskWeights `yaml:"risk_weights"`
	} `yaml:"scan"`
	Sweep struct {
		Enabled             bool     `yaml:"enabled"`
		DiscountThreshold   float64  `yaml:"discount_threshold"` // percent
		MaxPricePerItem     float64  `yaml:"max_price_per_item"` // ETH
		MaxTotalSpend       float64  `yaml:"max_total_spend"`    // ETH
		CheckInterval       Duration `yaml:"check_interval"`
		MaxItemsPerSweep    int      `yaml:"max_items_per_sweep"`
		MinRarityPercentile float64  `yaml:"min_rarity_percentile"`
		GasMultiplier       float64  `yaml:"gas_multiplier"`
		MaxGasPriceGwei     float64  `yaml:"max_gas_price_gwei"`
		PriorityFeeGwei     float64  `yaml:"priority_fee_gwei"`
	} `yaml:"sweep"`
	Schedule struct {
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	API struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"api"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy  string `yaml:"proxy"`
	DryRun bool   `yaml:"dry_run"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A .env file next to the binary is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Scan.IncludeRarity = true
	cfg.DryRun = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("RESERVOIR_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("RESERVOIR_API_KEY"); v != "" {
		cfg.Market.APIKey = v
	}
	if v := os.Getenv("ETHERSCAN_API_KEY"); v != "" {
		cfg.Gas.EtherscanAPIKey = v
	}
	if v := os.Getenv("WALLET_ADDRESS"); v != "" {
		cfg.Wallet.Address = v
	}
	if v := os.Getenv("COLLECTIONS"); v != "" {
		cfg.Scan.Collections = ParseCollectionIDs(v)
	}
	if v := os.Getenv("MAX_TOTAL_SPEND"); v != "" {
		var spend float64
		if _, err := fmt.Sscanf(v, "%f", &spend); err == nil {
			cfg.Sweep.MaxTotalSpend = spend
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("DRY_RUN"); v != "" {
		cfg.DryRun = v == "1" || strings.EqualFold(v, "true")
	}

	// Defaults
	if cfg.Market.BaseURL == "" {
		cfg.Market.BaseURL = "https://api.reservoir.tools"
	}
	if cfg.Scan.MinDiscount == 0 {
		cfg.Scan.MinDiscount = 5
	}
	if cfg.Scan.MaxResults == 0 {
		cfg.Scan.MaxResults = 10
	}
	if cfg.Scan.MaxRiskScore == 0 {
		cfg.Scan.MaxRiskScore = 70
	}
	if cfg.Scan.RequestsPerSec == 0 {
		cfg.Scan.RequestsPerSec = 5
	}
	if cfg.Sweep.DiscountThreshold == 0 {
		cfg.Sweep.DiscountThreshold = 10
	}
	if cfg.Sweep.CheckInterval == 0 {
		cfg.Sweep.CheckInterval = Duration(time.Minute)
	}
	if cfg.Sweep.MaxItemsPerSweep == 0 {
		cfg.Sweep.MaxItemsPerSweep = 3
	}
	if cfg.Sweep.MinRarityPercentile == 0 {
		cfg.Sweep.MinRarityPercentile = 50
	}
	if cfg.Sweep.GasMultiplier == 0 {
		cfg.Sweep.GasMultiplier = 1.1
	}
	if cfg.Sweep.MaxGasPriceGwei == 0 {
		cfg.Sweep.MaxGasPriceGwei = 50
	}
	if cfg.Sweep.PriorityFeeGwei == 0 {
		cfg.Sweep.PriorityFeeGwei = 1.5
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 9 * * *"
	}
	if cfg.API.ListenAddr == "" {
		cfg.API.ListenAddr = ":8080"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/floor_sentinel.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.Scan.Collections) == 0 {
		return fmt.Errorf("scan.collections is required")
	}
	if c.Sweep.Enabled {
		if c.Sweep.MaxPricePerItem <= 0 {
			return fmt.Errorf("sweep.max_price_per_item must be positive")
		}
		if c.Sweep.MaxTotalSpend <= 0 {
			return fmt.Errorf("sweep.max_total_spend must be positive")
		}
	}
	if !c.DryRun && c.Wallet.Address == "" {
		return fmt.Errorf("wallet.address is required unless dry_run is set")
	}
	return nil
}

// ParseCollectionIDs splits a comma-separated list of contract addresses,
// dropping entries that are not 0x-prefixed.
func ParseCollectionIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if strings.HasPrefix(id, "0x") {
			ids = append(ids, id)
		}
	}
	return ids
}
