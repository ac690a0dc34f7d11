package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPort            = 8080
	DefaultShutdownTimeout = 10 * time.Second
	DefaultWriteTimeout    = 5 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogMaxSizeMB    = 100
	DefaultLogMaxAgeDays   = 7
	DefaultPricingSource   = "local"
	DefaultReferenceValue  = 10000.0
	DefaultVolatility      = 0.6
	DefaultRiskFreeRate    = 0.05
	DefaultTimeToExpiry    = 21 * 24 * time.Hour
	DefaultMinPremium      = 0.01
	DefaultMaxPremium      = 0.99
	DefaultFallbackRate    = 0.008
	DefaultLadderStep      = 500.0
	DefaultLadderCount     = 11
	DefaultLadderSpread    = 0.02
	DefaultLadderJitter    = 0.03
	DefaultConcurrency     = 8
	DefaultRefreshInterval = 5 * time.Second
	DefaultCollateralRate  = 0.1
	DefaultQuoteTTL        = 21 * 24 * time.Hour
	DefaultGatewayTimeout  = 10 * time.Second
	DefaultMaxRetries      = 3
	DefaultRetryBackoff    = 500 * time.Millisecond
	DefaultStoreBackend    = "memory"
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
)

// DefaultEvents mirrors the launch catalog of sports events.
func DefaultEvents() []EventConfig {
	return []EventConfig{
		{
			ID:          "football-championship-2025",
			Name:        "European Football Championship 2025",
			Description: "The final outcome of the highly anticipated European Football Championship.",
			Date:        time.Date(2025, 7, 20, 18, 0, 0, 0, time.UTC),
			Timelines:   []string{"teamAWins", "teamBWins"},
		},
		{
			ID:          "basketball-finals-2025",
			Name:        "NBA Finals 2025 Series Winner",
			Description: "Predict the winner of the 2025 NBA Finals series.",
			Date:        time.Date(2025, 6, 25, 2, 0, 0, 0, time.UTC),
			Timelines:   []string{"celticsWin", "lakersWin"},
		},
		{
			ID:          "tennis-slam-australian-open",
			Name:        "Australian Open 2026 Men's Singles",
			Description: "The champion of the men's singles tournament at the 2026 Australian Open.",
			Date:        time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC),
			Timelines:   []string{"djokovicWins", "alcarazWins"},
		},
	}
}

// ApplyDefaults fills every unset optional field.
func (c *Config) ApplyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.File != "" {
		if c.Log.MaxSizeMB == 0 {
			c.Log.MaxSizeMB = DefaultLogMaxSizeMB
		}
		if c.Log.MaxAgeDays == 0 {
			c.Log.MaxAgeDays = DefaultLogMaxAgeDays
		}
	}

	// Pricing defaults
	if c.Pricing.Source == "" {
		c.Pricing.Source = DefaultPricingSource
	}
	if c.Pricing.ReferenceValue == 0 {
		c.Pricing.ReferenceValue = DefaultReferenceValue
	}
	if c.Pricing.Volatility == 0 {
		c.Pricing.Volatility = DefaultVolatility
	}
	if c.Pricing.RiskFreeRate == 0 {
		c.Pricing.RiskFreeRate = DefaultRiskFreeRate
	}
	if c.Pricing.TimeToExpiry == 0 {
		c.Pricing.TimeToExpiry = DefaultTimeToExpiry
	}
	if c.Pricing.MinPremium == 0 {
		c.Pricing.MinPremium = DefaultMinPremium
	}
	if c.Pricing.MaxPremium == 0 {
		c.Pricing.MaxPremium = DefaultMaxPremium
	}
	if c.Pricing.FallbackRate == 0 {
		c.Pricing.FallbackRate = DefaultFallbackRate
	}

	// Ladder defaults (centered on the pricing reference unless overridden)
	if c.Ladder.Center == 0 {
		c.Ladder.Center = c.Pricing.ReferenceValue
	}
	if c.Ladder.Step == 0 {
		c.Ladder.Step = DefaultLadderStep
	}
	if c.Ladder.Count == 0 {
		c.Ladder.Count = DefaultLadderCount
	}
	if c.Ladder.Spread == nil {
		spread := DefaultLadderSpread
		c.Ladder.Spread = &spread
	}
	if c.Ladder.Jitter == nil {
		jitter := DefaultLadderJitter
		c.Ladder.Jitter = &jitter
	}
	if c.Ladder.Concurrency == 0 {
		c.Ladder.Concurrency = DefaultConcurrency
	}
	if c.Refresh.Interval == 0 {
		c.Refresh.Interval = DefaultRefreshInterval
	}

	// Trade defaults
	if c.Trade.CollateralRate == 0 {
		c.Trade.CollateralRate = DefaultCollateralRate
	}
	if c.Trade.QuoteTTL == 0 {
		c.Trade.QuoteTTL = DefaultQuoteTTL
	}

	applyGatewayDefaults(&c.Oracle)
	applyGatewayDefaults(&c.Settlement)

	// Store defaults
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultStoreBackend
	}
	applyDBDefaults(&c.Database)

	if len(c.Events) == 0 {
		c.Events = DefaultEvents()
	}
}

func applyGatewayDefaults(g *GatewayConfig) {
	if g.Timeout == 0 {
		g.Timeout = DefaultGatewayTimeout
	}
	if g.MaxRetries == 0 {
		g.MaxRetries = DefaultMaxRetries
	}
	if g.RetryBackoff == 0 {
		g.RetryBackoff = DefaultRetryBackoff
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
