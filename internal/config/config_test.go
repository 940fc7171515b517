package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sku-pricing/internal/model"
	"sku-pricing/internal/pricing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultMatchesEngineDefaults(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	params, err := c.Pricing.ToParams()
	require.NoError(t, err)
	assert.Equal(t, pricing.DefaultParams(), params)
	assert.Equal(t, []string{"static", "rule_based", "ml"}, c.Backtest.Strategies)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
pricing:
  min_margin_pct: 0.2
  elasticities:
    grocery: -2.0
rule_based:
  overstock_days: 45
backtest:
  strategies: [static, engine]
  workers: 4
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.2, c.Pricing.MinMarginPct)
	assert.Equal(t, 0.05, c.Pricing.MaxDailyPriceChangePct)
	assert.Equal(t, -2.0, c.Pricing.Elasticities["grocery"])
	assert.Equal(t, -0.6, c.Pricing.Elasticities["home"])
	assert.Equal(t, 45.0, c.RuleBased.OverstockDays)
	assert.Equal(t, 5.0, c.RuleBased.ScarcityDays)
	assert.Equal(t, 4, c.Backtest.Workers)

	params, err := c.Pricing.ToParams()
	require.NoError(t, err)
	assert.Equal(t, -2.0, params.Elasticities[model.CategoryGrocery])
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("DATABASE_PATH", "/tmp/x.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PRICING_SCHEDULE", "30 5 * * *")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PRICING_JOB_ENABLED", "false")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Server.Port)
	assert.Equal(t, "/tmp/x.db", c.Store.Path)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "30 5 * * *", c.Job.Schedule)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Server.CORSOrigins)
	assert.False(t, c.Job.Enabled)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "SKU_PRICING_TEST_VAR=from-dotenv\n")
	t.Setenv("SKU_PRICING_TEST_VAR", "")
	os.Unsetenv("SKU_PRICING_TEST_VAR")

	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path)
	assert.Equal(t, "from-dotenv", os.Getenv("SKU_PRICING_TEST_VAR"))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"margin out of range", func(c *Config) { c.Pricing.MinMarginPct = 1 }},
		{"cap out of range", func(c *Config) { c.Pricing.MaxDailyPriceChangePct = 0 }},
		{"negative buffer", func(c *Config) { c.Pricing.StockoutBufferDays = -1 }},
		{"bad multiplier", func(c *Config) { c.Pricing.CandidateMultipliers = []float64{0.9, 0} }},
		{"rule thresholds", func(c *Config) { c.RuleBased.ScarcityDays = 50 }},
		{"negative workers", func(c *Config) { c.Backtest.Workers = -1 }},
		{"unknown strategy", func(c *Config) { c.Backtest.Strategies = []string{"oracle"} }},
		{"bad ttl", func(c *Config) { c.Server.ResultTTL = "soon" }},
		{"empty schedule", func(c *Config) { c.Job.Schedule = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "pricing: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "invalid.yaml", "pricing:\n  min_margin_pct: 2\n"))
	assert.Error(t, err)
}

func TestServerTTL(t *testing.T) {
	d, err := ServerConfig{ResultTTL: "15m"}.TTL()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	d, err = ServerConfig{}.TTL()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	assert.True(t, ServerConfig{Env: "Production"}.IsProduction())
}

func TestMergePricing(t *testing.T) {
	base := Default().Pricing
	out := MergePricing(base, PricingConfig{
		MaxDailyPriceChangePct: 0.1,
		Elasticities:           map[string]float64{"home": -0.8},
	})
	assert.Equal(t, 0.1, out.MaxDailyPriceChangePct)
	assert.Equal(t, base.MinMarginPct, out.MinMarginPct)
	assert.Equal(t, -0.8, out.Elasticities["home"])
	assert.Equal(t, -1.5, out.Elasticities["grocery"])
	assert.Equal(t, -0.6, base.Elasticities["home"], "base is not mutated")

	out = MergePricing(base, PricingConfig{CandidateMultipliers: []float64{1}})
	assert.Equal(t, []float64{1}, out.CandidateMultipliers)
	_, err := out.Engine()
	assert.NoError(t, err)
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "examples", "config.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Pricing, c.Pricing)
	assert.Equal(t, def.RuleBased, c.RuleBased)
	assert.Equal(t, def.Backtest.Strategies, c.Backtest.Strategies)
}
