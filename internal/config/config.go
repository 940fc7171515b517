package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"sku-pricing/internal/model"
	"sku-pricing/internal/pricing"
	"sku-pricing/internal/strategy"
)

// Config is the on-disk configuration shape (YAML).
// Sections left out of the file keep their defaults.
type Config struct {
	Pricing   PricingConfig   `yaml:"pricing"`
	RuleBased RuleBasedConfig `yaml:"rule_based"`
	Backtest  BacktestConfig  `yaml:"backtest"`
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Job       JobConfig       `yaml:"job"`
	Log       LogConfig       `yaml:"log"`
}

type PricingConfig struct {
	CandidateMultipliers   []float64          `yaml:"candidate_multipliers" json:"candidate_multipliers,omitempty"`
	MinMarginPct           float64            `yaml:"min_margin_pct" json:"min_margin_pct,omitempty"`
	MaxDailyPriceChangePct float64            `yaml:"max_daily_price_change_pct" json:"max_daily_price_change_pct,omitempty"`
	StockoutBufferDays     float64            `yaml:"stockout_buffer_days" json:"stockout_buffer_days,omitempty"`
	ClearanceWarningDays   int                `yaml:"clearance_warning_days" json:"clearance_warning_days,omitempty"`
	Elasticities           map[string]float64 `yaml:"elasticities" json:"elasticities,omitempty"`
	DefaultElasticity      float64            `yaml:"default_elasticity" json:"default_elasticity,omitempty"`
}

type RuleBasedConfig struct {
	OverstockDays      float64 `yaml:"overstock_days"`
	ScarcityDays       float64 `yaml:"scarcity_days"`
	DiscountMultiplier float64 `yaml:"discount_multiplier"`
	MarkupMultiplier   float64 `yaml:"markup_multiplier"`
}

type BacktestConfig struct {
	Strategies []string `yaml:"strategies"`
	// Workers bounds concurrent row simulation; 0 uses GOMAXPROCS.
	Workers int    `yaml:"workers"`
	OutDir  string `yaml:"out_dir"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	Env         string   `yaml:"env"`
	CORSOrigins []string `yaml:"cors_origins"`
	ResultTTL   string   `yaml:"result_ttl"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type JobConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	p := pricing.DefaultParams()
	elasticities := make(map[string]float64, len(p.Elasticities))
	for c, e := range p.Elasticities {
		elasticities[string(c)] = e
	}
	r := strategy.DefaultRuleParams()

	return Config{
		Pricing: PricingConfig{
			CandidateMultipliers:   p.CandidateMultipliers,
			MinMarginPct:           p.MinMarginPct,
			MaxDailyPriceChangePct: p.MaxDailyPriceChangePct,
			StockoutBufferDays:     p.StockoutBufferDays,
			ClearanceWarningDays:   p.ClearanceWarningDays,
			Elasticities:           elasticities,
			DefaultElasticity:      p.DefaultElasticity,
		},
		RuleBased: RuleBasedConfig{
			OverstockDays:      r.OverstockDays,
			ScarcityDays:       r.ScarcityDays,
			DiscountMultiplier: r.DiscountMultiplier,
			MarkupMultiplier:   r.MarkupMultiplier,
		},
		Backtest: BacktestConfig{
			Strategies: strategy.Names(),
			OutDir:     "evaluation_outputs",
		},
		Server: ServerConfig{
			Port:        "8080",
			Env:         "development",
			CORSOrigins: []string{"*"},
			ResultTTL:   "1h",
		},
		Store: StoreConfig{Path: "pricing.db"},
		Job: JobConfig{
			Enabled:  true,
			Schedule: "0 6 * * *",
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads a YAML file over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	c.ApplyEnv()
	return &c, nil
}

// LoadDotEnv loads the first .env file found into the process environment.
// Variables already set are not overwritten.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// ApplyEnv overlays environment variables onto the config.
func (c *Config) ApplyEnv() {
	c.Server.Port = getEnv("API_PORT", c.Server.Port)
	c.Server.Env = getEnv("API_ENV", c.Server.Env)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}
	c.Store.Path = getEnv("DATABASE_PATH", c.Store.Path)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Job.Schedule = getEnv("PRICING_SCHEDULE", c.Job.Schedule)
	c.Job.Enabled = getEnvAsBool("PRICING_JOB_ENABLED", c.Job.Enabled)
	c.Backtest.Workers = getEnvAsInt("BACKTEST_WORKERS", c.Backtest.Workers)
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := c.Pricing.ToParams(); err != nil {
		return fmt.Errorf("pricing config invalid: %w", err)
	}
	if err := c.RuleBased.ToRuleParams().Validate(); err != nil {
		return fmt.Errorf("rule_based config invalid: %w", err)
	}
	if c.Backtest.Workers < 0 {
		return errors.New("backtest.workers must be >= 0")
	}
	for _, name := range c.Backtest.Strategies {
		if _, err := strategy.Canonical(name); err != nil {
			return fmt.Errorf("backtest config invalid: %w", err)
		}
	}
	if _, err := c.Server.TTL(); err != nil {
		return err
	}
	if c.Job.Enabled && strings.TrimSpace(c.Job.Schedule) == "" {
		return errors.New("job.schedule is required when the job is enabled")
	}
	return nil
}

// ToParams maps the pricing section onto engine thresholds and validates them.
func (p PricingConfig) ToParams() (pricing.Params, error) {
	elasticities := make(map[model.Category]float64, len(p.Elasticities))
	for c, e := range p.Elasticities {
		elasticities[model.Category(strings.ToLower(strings.TrimSpace(c)))] = e
	}
	params := pricing.Params{
		CandidateMultipliers:   p.CandidateMultipliers,
		MinMarginPct:           p.MinMarginPct,
		MaxDailyPriceChangePct: p.MaxDailyPriceChangePct,
		StockoutBufferDays:     p.StockoutBufferDays,
		ClearanceWarningDays:   p.ClearanceWarningDays,
		Elasticities:           elasticities,
		DefaultElasticity:      p.DefaultElasticity,
	}
	if err := params.Validate(); err != nil {
		return pricing.Params{}, err
	}
	return params, nil
}

// Engine builds a decision engine from the pricing section.
func (p PricingConfig) Engine() (*pricing.Engine, error) {
	params, err := p.ToParams()
	if err != nil {
		return nil, err
	}
	return pricing.New(params)
}

func (r RuleBasedConfig) ToRuleParams() strategy.RuleParams {
	return strategy.RuleParams{
		OverstockDays:      r.OverstockDays,
		ScarcityDays:       r.ScarcityDays,
		DiscountMultiplier: r.DiscountMultiplier,
		MarkupMultiplier:   r.MarkupMultiplier,
	}
}

// TTL parses how long backtest results stay fetchable.
func (s ServerConfig) TTL() (time.Duration, error) {
	if s.ResultTTL == "" {
		return time.Hour, nil
	}
	d, err := time.ParseDuration(s.ResultTTL)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("server.result_ttl must be a positive duration, got %q", s.ResultTTL)
	}
	return d, nil
}

func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

// MergePricing overlays non-zero fields from override onto base.
// This is used to apply per-request threshold overrides to the configured ones.
func MergePricing(base, override PricingConfig) PricingConfig {
	out := base
	if len(override.CandidateMultipliers) > 0 {
		out.CandidateMultipliers = append([]float64(nil), override.CandidateMultipliers...)
	}
	// Note: a zero margin or buffer cannot be requested this way; set it in the file.
	if override.MinMarginPct != 0 {
		out.MinMarginPct = override.MinMarginPct
	}
	if override.MaxDailyPriceChangePct != 0 {
		out.MaxDailyPriceChangePct = override.MaxDailyPriceChangePct
	}
	if override.StockoutBufferDays != 0 {
		out.StockoutBufferDays = override.StockoutBufferDays
	}
	if override.ClearanceWarningDays != 0 {
		out.ClearanceWarningDays = override.ClearanceWarningDays
	}
	if len(override.Elasticities) > 0 {
		merged := make(map[string]float64, len(base.Elasticities)+len(override.Elasticities))
		for k, v := range base.Elasticities {
			merged[k] = v
		}
		for k, v := range override.Elasticities {
			merged[k] = v
		}
		out.Elasticities = merged
	}
	if override.DefaultElasticity != 0 {
		out.DefaultElasticity = override.DefaultElasticity
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
