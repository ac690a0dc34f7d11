// streamtest connects to the ladder websocket and prints every snapshot.
// Usage: go run ./cmd/streamtest --url ws://localhost:8080/ws/orderbook
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"

	"github.com/sportpulse/pulse/internal/connection"
	"github.com/sportpulse/pulse/internal/orderbook"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws/orderbook", "ladder stream URL")
	verbose := flag.Bool("verbose", false, "print full snapshot JSON")
	onlyArb := flag.Bool("arb", false, "print only rows with an arbitrage opportunity")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	cfg := connection.DefaultClientConfig()
	cfg.URL = *url
	client := connection.NewClient(cfg, logger)

	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "url", *url, "error", err)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("streaming started - press Ctrl+C to stop", "url", *url)

	var sess session
	for {
		select {
		case <-ctx.Done():
			logSummary(logger, sess)
			return
		case err := <-client.Errors():
			logger.Error("stream closed", "error", err, "snapshots", sess.received)
			logSummary(logger, sess)
			os.Exit(1)
		case msg := <-client.Messages():
			snap, err := sess.observe(msg.Data)
			if err != nil {
				logger.Warn("failed to parse snapshot", "error", err)
				continue
			}

			if *verbose {
				fmt.Printf("[SNAPSHOT] %s\n", msg.Data)
				continue
			}
			printSnapshot(snap, msg.ReceivedAt, *onlyArb)
		}
	}
}

// session accumulates what the summary reports, whatever the output mode.
type session struct {
	received int
	best     []float64 // Best arbitrage percentage per snapshot
}

// observe decodes one frame and records its best arbitrage percentage.
func (s *session) observe(data []byte) (orderbook.Snapshot, error) {
	s.received++

	var snap orderbook.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return orderbook.Snapshot{}, err
	}
	if pct, ok := bestArbitrage(snap); ok {
		s.best = append(s.best, pct)
	}
	return snap, nil
}

func printSnapshot(snap orderbook.Snapshot, receivedAt time.Time, onlyArb bool) {
	fmt.Printf("[LADDER] generated=%s latency=%s rows=%d\n",
		snap.GeneratedAt.Format(time.RFC3339), receivedAt.Sub(snap.GeneratedAt).Round(time.Millisecond), len(snap.Rows))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Strike", "Call Bid", "Call Ask", "Put Bid", "Put Ask", "Cost", "Arb %", ""})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for i, row := range snap.Rows {
		var arb orderbook.Arbitrage
		if i < len(snap.Arbitrage) {
			arb = snap.Arbitrage[i]
		}
		if onlyArb && !arb.Opportunity {
			continue
		}

		marker := ""
		if arb.Opportunity {
			marker = "ARB"
		}
		table.Append([]string{
			fmt.Sprintf("%.0f", row.Strike),
			fmt.Sprintf("%.4f", row.Call.Bid),
			fmt.Sprintf("%.4f", row.Call.Ask),
			fmt.Sprintf("%.4f", row.Put.Bid),
			fmt.Sprintf("%.4f", row.Put.Ask),
			fmt.Sprintf("%.4f", arb.TotalCost),
			fmt.Sprintf("%+.2f", arb.Percentage),
			marker,
		})
	}
	table.Render()
}

// bestArbitrage returns the highest valid arbitrage percentage in snap.
func bestArbitrage(snap orderbook.Snapshot) (float64, bool) {
	best, found := 0.0, false
	for _, arb := range snap.Arbitrage {
		if arb.Valid && (!found || arb.Percentage > best) {
			best, found = arb.Percentage, true
		}
	}
	return best, found
}

func logSummary(logger *slog.Logger, sess session) {
	received, best := sess.received, sess.best
	if len(best) == 0 {
		logger.Info("shutdown complete", "snapshots", received)
		return
	}
	mean, _ := stats.Mean(best)
	median, _ := stats.Median(best)
	maxPct, _ := stats.Max(best)
	logger.Info("shutdown complete",
		"snapshots", received,
		"best_arb_mean_pct", fmt.Sprintf("%.3f", mean),
		"best_arb_median_pct", fmt.Sprintf("%.3f", median),
		"best_arb_max_pct", fmt.Sprintf("%.3f", maxPct),
	)
}
