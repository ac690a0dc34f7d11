package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://oracle.example.com", "test-key")

		if c.baseURL != "https://oracle.example.com" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://oracle.example.com")
		}
		if c.apiKey != "test-key" {
			t.Errorf("apiKey = %q, want %q", c.apiKey, "test-key")
		}
		if c.httpClient.Timeout != 10*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 10*time.Second)
		}
		if c.maxRetries != 3 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 3)
		}
		if c.retryBackoff != 500*time.Millisecond {
			t.Errorf("retryBackoff = %v, want %v", c.retryBackoff, 500*time.Millisecond)
		}
		if c.limiter != nil {
			t.Error("limiter should be nil by default")
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with multiple options", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		customClient := &http.Client{Timeout: 3 * time.Second}
		c := NewClient("https://oracle.example.com", "key",
			WithHTTPClient(customClient),
			WithTimeout(15*time.Second),
			WithRetries(10, 250*time.Millisecond),
			WithLogger(logger),
			WithRateLimit(20),
		)
		if c.httpClient != customClient {
			t.Error("custom HTTP client not set")
		}
		if c.httpClient.Timeout != 15*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 15*time.Second)
		}
		if c.maxRetries != 10 || c.retryBackoff != 250*time.Millisecond {
			t.Errorf("retries = %d/%v, want 10/250ms", c.maxRetries, c.retryBackoff)
		}
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
		if c.limiter == nil || c.limiter.Burst() != 20 {
			t.Errorf("limiter = %v, want burst 20", c.limiter)
		}
	})

	t.Run("fractional rate limit keeps burst of one", func(t *testing.T) {
		c := NewClient("https://oracle.example.com", "", WithRateLimit(0.5))
		if c.limiter == nil || c.limiter.Burst() != 1 {
			t.Errorf("limiter burst = %v, want 1", c.limiter)
		}
	})

	t.Run("zero rate limit disables limiter", func(t *testing.T) {
		c := NewClient("https://oracle.example.com", "", WithRateLimit(0))
		if c.limiter != nil {
			t.Error("limiter should be nil")
		}
	})
}

// TestAPIError tests the APIError type.
func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 404, Message: "Not Found"}
	if err.Error() != "gateway error 404: Not Found" {
		t.Errorf("Error() = %q", err.Error())
	}

	tests := []struct {
		code     int
		expected bool
	}{
		{500, true},
		{502, true},
		{503, true},
		{429, true},
		{400, false},
		{401, false},
		{404, false},
		{499, false},
	}
	for _, tt := range tests {
		err := &APIError{StatusCode: tt.code}
		if got := err.IsRetryable(); got != tt.expected {
			t.Errorf("IsRetryable() for status %d = %v, want %v", tt.code, got, tt.expected)
		}
	}
}

type headerSigner struct{ calls atomic.Int32 }

func (s *headerSigner) Sign(req *http.Request) error {
	s.calls.Add(1)
	req.Header.Set("X-Test-Signed", "yes")
	return nil
}

// TestDoRequest tests the HTTP request functionality.
func TestDoRequest(t *testing.T) {
	t.Run("bearer key when unsigned", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept header = %q", r.Header.Get("Accept"))
			}
			if r.Header.Get("Authorization") != "Bearer test-key" {
				t.Errorf("Authorization header = %q, want %q", r.Header.Get("Authorization"), "Bearer test-key")
			}
			w.Write([]byte(`{"status": "ok"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "test-key")
		body, err := c.doRequest(context.Background(), http.MethodGet, "/test", nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `{"status": "ok"}` {
			t.Errorf("body = %q", string(body))
		}
	})

	t.Run("signer replaces bearer key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				t.Errorf("Authorization header should be empty, got %q", r.Header.Get("Authorization"))
			}
			if r.Header.Get("X-Test-Signed") != "yes" {
				t.Error("request was not signed")
			}
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		signer := &headerSigner{}
		c := NewClient(server.URL, "test-key", WithSigner(signer))
		if _, err := c.doRequest(context.Background(), http.MethodGet, "/test", nil, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if signer.calls.Load() != 1 {
			t.Errorf("signer calls = %d, want 1", signer.calls.Load())
		}
	})

	t.Run("4xx error returns APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "not found"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "key")
		_, err := c.doRequest(context.Background(), http.MethodGet, "/test", nil, nil)

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T", err)
		}
		if apiErr.StatusCode != 404 {
			t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, 404)
		}
		if !strings.Contains(string(apiErr.Body), "not found") {
			t.Errorf("Body should contain 'not found', got %q", string(apiErr.Body))
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		c := NewClient(server.URL, "key")
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := c.doRequest(ctx, http.MethodGet, "/test", nil, nil)
		if err == nil || !strings.Contains(err.Error(), "context canceled") {
			t.Errorf("error should contain 'context canceled', got %v", err)
		}
	})
}

// TestDoWithRetry tests the retry logic.
func TestDoWithRetry(t *testing.T) {
	t.Run("retries on 5xx and succeeds", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "key", WithRetries(3, 10*time.Millisecond))
		if _, err := c.doWithRetry(context.Background(), http.MethodGet, "/test", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if attempts != 3 {
			t.Errorf("attempts = %d, want 3", attempts)
		}
	})

	t.Run("does not retry on 4xx (except 429)", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		c := NewClient(server.URL, "key", WithRetries(3, 10*time.Millisecond))
		if _, err := c.doWithRetry(context.Background(), http.MethodGet, "/test", nil); err == nil {
			t.Fatal("expected error, got nil")
		}
		if attempts != 1 {
			t.Errorf("attempts = %d, want 1", attempts)
		}
	})

	t.Run("max retries exceeded", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := NewClient(server.URL, "key", WithRetries(2, 10*time.Millisecond))
		_, err := c.doWithRetry(context.Background(), http.MethodGet, "/test", nil)
		if err == nil || !strings.Contains(err.Error(), "max retries exceeded") {
			t.Errorf("error should contain 'max retries exceeded', got %v", err)
		}
		// 1 initial + 2 retries = 3 attempts
		if attempts != 3 {
			t.Errorf("attempts = %d, want 3", attempts)
		}
	})

	t.Run("context cancellation during retry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		c := NewClient(server.URL, "key", WithRetries(5, 50*time.Millisecond))
		ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
		defer cancel()

		_, err := c.doWithRetry(ctx, http.MethodGet, "/test", nil)
		if err == nil || !strings.Contains(err.Error(), "context") {
			t.Errorf("error should be context-related, got %v", err)
		}
	})
}

// TestGetPremium tests the oracle premium endpoint.
func TestGetPremium(t *testing.T) {
	t.Run("successful response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/premium" {
				t.Errorf("path = %q, want /premium", r.URL.Path)
			}
			if r.URL.Query().Get("strike") != "10500" || r.URL.Query().Get("side") != "P" {
				t.Errorf("query = %q", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode(PremiumResponse{Premium: 0.47})
		}))
		defer server.Close()

		c := NewClient(server.URL, "key")
		premium, err := c.GetPremium(context.Background(), 10500, "P")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if premium != 0.47 {
			t.Errorf("premium = %v, want 0.47", premium)
		}
	})

	t.Run("invalid side rejected without request", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
		}))
		defer server.Close()

		c := NewClient(server.URL, "key")
		if _, err := c.GetPremium(context.Background(), 10000, "X"); err == nil {
			t.Fatal("expected error, got nil")
		}
		if attempts != 0 {
			t.Errorf("attempts = %d, want 0", attempts)
		}
	})

	t.Run("error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := NewClient(server.URL, "key", WithRetries(0, time.Millisecond))
		if _, err := c.GetPremium(context.Background(), 10000, "C"); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

// TestSettle tests the settlement endpoint.
func TestSettle(t *testing.T) {
	req := SettleRequest{
		EventID:  "football-championship-2025",
		Outcome:  "teamAWins",
		Type:     "C",
		Side:     "buy",
		Strike:   10000,
		Quantity: "2",
		Total:    "0.94",
		Expiry:   time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC),
	}

	t.Run("successful settlement", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/settle" {
				t.Errorf("request = %s %s, want POST /settle", r.Method, r.URL.Path)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
			}
			var got SettleRequest
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if got.Total != "0.94" || got.Outcome != "teamAWins" {
				t.Errorf("body = %+v", got)
			}
			json.NewEncoder(w).Encode(SettleResponse{TxHash: "0xfeed"})
		}))
		defer server.Close()

		c := NewClient(server.URL, "key")
		resp, err := c.Settle(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.TxHash != "0xfeed" {
			t.Errorf("TxHash = %q, want 0xfeed", resp.TxHash)
		}
	})

	t.Run("gateway error decoded and not retried", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"code":"insufficient_funds","message":"balance too low","reason":"need 0.94 USDC"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "key", WithRetries(3, time.Millisecond))
		_, err := c.Settle(context.Background(), req)

		var gwErr *GatewayError
		if !errors.As(err, &gwErr) {
			t.Fatalf("expected *GatewayError, got %T: %v", err, err)
		}
		if gwErr.Code != CodeInsufficientFunds || gwErr.StatusCode != 503 {
			t.Errorf("GatewayError = %+v", gwErr)
		}
		if gwErr.Error() != "settlement insufficient_funds: need 0.94 USDC" {
			t.Errorf("Error() = %q", gwErr.Error())
		}
		if attempts != 1 {
			t.Errorf("attempts = %d, want 1", attempts)
		}
	})

	t.Run("unstructured failure keeps APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`upstream down`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "key")
		_, err := c.Settle(context.Background(), req)

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != 502 {
			t.Errorf("error = %v, want wrapped 502 APIError", err)
		}
	})

	t.Run("empty transaction hash", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "key")
		if _, err := c.Settle(context.Background(), req); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
