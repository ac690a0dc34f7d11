package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxAgeDays < 0 || c.Log.MaxBackups < 0 {
		return errors.New("log.max_size_mb, log.max_age_days and log.max_backups must be >= 0")
	}

	if err := c.Pricing.validate(); err != nil {
		return err
	}
	if err := c.Ladder.validate(); err != nil {
		return err
	}

	if c.Refresh.Interval <= 0 {
		return errors.New("refresh.interval must be > 0")
	}

	if c.Trade.CollateralRate <= 0 {
		return errors.New("trade.collateral_rate must be > 0")
	}
	if c.Trade.QuoteTTL <= 0 {
		return errors.New("trade.quote_ttl must be > 0")
	}

	if c.Pricing.Source == "oracle" && c.Oracle.URL == "" {
		return errors.New("oracle.url is required when pricing.source is oracle")
	}

	switch c.Store.Backend {
	case "memory":
		if c.Store.Capacity < 0 {
			return errors.New("store.capacity must be >= 0")
		}
	case "postgres":
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("store.backend must be memory or postgres, got %q", c.Store.Backend)
	}

	seen := make(map[string]bool, len(c.Events))
	for i, ev := range c.Events {
		if ev.ID == "" {
			return fmt.Errorf("events[%d].id is required", i)
		}
		if seen[ev.ID] {
			return fmt.Errorf("events[%d].id %q is duplicated", i, ev.ID)
		}
		seen[ev.ID] = true
		if len(ev.Timelines) == 0 {
			return fmt.Errorf("events[%d].timelines must not be empty", i)
		}
	}

	return nil
}

func (p *PricingConfig) validate() error {
	if p.Source != "local" && p.Source != "oracle" {
		return fmt.Errorf("pricing.source must be local or oracle, got %q", p.Source)
	}
	if p.ReferenceValue <= 0 {
		return errors.New("pricing.reference_value must be > 0")
	}
	if p.Volatility <= 0 {
		return errors.New("pricing.volatility must be > 0")
	}
	if p.TimeToExpiry <= 0 {
		return errors.New("pricing.time_to_expiry must be > 0")
	}
	if p.MinPremium <= 0 || p.MaxPremium >= 1 || p.MinPremium >= p.MaxPremium {
		return fmt.Errorf("pricing premium bounds must satisfy 0 < min_premium (%g) < max_premium (%g) < 1", p.MinPremium, p.MaxPremium)
	}
	if p.FallbackRate <= 0 {
		return errors.New("pricing.fallback_rate must be > 0")
	}
	return nil
}

func (l *LadderConfig) validate() error {
	if l.Count < 1 {
		return errors.New("ladder.count must be >= 1")
	}
	if l.Step <= 0 {
		return errors.New("ladder.step must be > 0")
	}
	if l.Center-float64(l.Count/2)*l.Step <= 0 {
		return fmt.Errorf("ladder lowest strike must be > 0 (center %g, step %g, count %d)", l.Center, l.Step, l.Count)
	}
	if (l.Spread != nil && *l.Spread < 0) || (l.Jitter != nil && *l.Jitter < 0) {
		return errors.New("ladder.spread and ladder.jitter must be >= 0")
	}
	if l.Concurrency < 1 {
		return errors.New("ladder.concurrency must be >= 1")
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
