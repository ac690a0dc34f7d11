package config

import "time"

// Config is the root configuration for a pulse server instance.
type Config struct {
	Instance   InstanceConfig `yaml:"instance"`
	Server     ServerConfig   `yaml:"server"`
	Log        LogConfig      `yaml:"log"`
	Pricing    PricingConfig  `yaml:"pricing"`
	Ladder     LadderConfig   `yaml:"ladder"`
	Refresh    RefreshConfig  `yaml:"refresh"`
	Trade      TradeConfig    `yaml:"trade"`
	Oracle     GatewayConfig  `yaml:"oracle"`
	Settlement GatewayConfig  `yaml:"settlement"`
	Store      StoreConfig    `yaml:"store"`
	Database   DBConfig       `yaml:"database"`
	Events     []EventConfig  `yaml:"events"`
}

// InstanceConfig identifies this server.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"` // Per-frame websocket write deadline
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `yaml:"level"`        // debug, info, warn, error
	File       string `yaml:"file"`         // Optional rotated log file, stdout only when empty
	MaxSizeMB  int    `yaml:"max_size_mb"`  // Rotate after this many megabytes
	MaxAgeDays int    `yaml:"max_age_days"` // Delete rotated files older than this
	MaxBackups int    `yaml:"max_backups"`  // 0 keeps all
	Compress   bool   `yaml:"compress"`
}

// PricingConfig holds the closed-form pricing assumptions.
// None of these are market-derived; they are tunable demo parameters.
type PricingConfig struct {
	Source         string        `yaml:"source"`          // "local" or "oracle"
	ReferenceValue float64       `yaml:"reference_value"` // Underlying value strikes are priced against
	Volatility     float64       `yaml:"volatility"`
	RiskFreeRate   float64       `yaml:"risk_free_rate"`
	TimeToExpiry   time.Duration `yaml:"time_to_expiry"`
	MinPremium     float64       `yaml:"min_premium"`
	MaxPremium     float64       `yaml:"max_premium"`
	FallbackRate   float64       `yaml:"fallback_rate"` // Fallback premium = strike * rate
}

// LadderConfig holds the synthetic strike ladder policy.
type LadderConfig struct {
	Center      float64  `yaml:"center"`
	Step        float64  `yaml:"step"`
	Count       int      `yaml:"count"`
	Spread      *float64 `yaml:"spread"` // nil takes the default; 0 is a valid setting
	Jitter      *float64 `yaml:"jitter"` // nil takes the default; 0 disables jitter
	Concurrency int      `yaml:"concurrency"`
}

// RefreshConfig holds ladder regeneration settings.
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// TradeConfig holds quote and trade settings.
type TradeConfig struct {
	CollateralRate float64       `yaml:"collateral_rate"` // Collateral = strike * rate
	QuoteTTL       time.Duration `yaml:"quote_ttl"`
}

// GatewayConfig holds an external HTTP collaborator endpoint.
type GatewayConfig struct {
	URL            string        `yaml:"url"`
	APIKey         string        `yaml:"api_key"`          // Key ID sent with signed requests
	PrivateKeyPath string        `yaml:"private_key_path"` // RSA private key PEM for request signing
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`   // Oracle reads only; settlement is never retried
	RetryBackoff   time.Duration `yaml:"retry_backoff"` // Initial backoff, doubled per attempt
	RateLimit      float64       `yaml:"rate_limit"`    // Requests per second, 0 = unlimited
}

// StoreConfig selects the trade history backend.
type StoreConfig struct {
	Backend  string `yaml:"backend"`  // "memory" or "postgres"
	Capacity int    `yaml:"capacity"` // Memory backend quota, 0 = unlimited
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// EventConfig seeds the event catalog.
type EventConfig struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Date        time.Time `yaml:"date"`
	Timelines   []string  `yaml:"timelines"`
	Resolved    bool      `yaml:"resolved"`
}
