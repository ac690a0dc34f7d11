package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrStaleConnection = errors.New("connection stale (no pong)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage is one stream frame.
type TimestampedMessage struct {
	Data       []byte
	ReceivedAt time.Time // Local time the frame was read
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string        // Stream URL (e.g., ws://localhost:8080/ws/orderbook)
	APIKey       string        // Optional bearer token
	PingInterval time.Duration
	PingTimeout  time.Duration // Silence allowed before ErrStaleConnection
	WriteTimeout time.Duration // Control frame write deadline
	BufferSize   int           // Frames buffered before dropping
}

// DefaultClientConfig returns the stream client defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval: 30 * time.Second,
		PingTimeout:  90 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   64,
	}
}
