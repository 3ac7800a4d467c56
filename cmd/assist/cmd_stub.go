package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"assistchat/internal/stubserver"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	stubAddr    string
	stubLatency time.Duration
)

// stubCmd runs a local backend for development
var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run a local stub backend speaking the POST /chat contract",
	Long: `Starts a small HTTP server that answers POST /chat with canned replies,
so the chat client can be exercised without the real assistant service.

Example:
  assist stub --addr :8000 &
  assist send "Order a pizza"`,
	Args: cobra.NoArgs,
	RunE: runStub,
}

func init() {
	stubCmd.Flags().StringVar(&stubAddr, "addr", "", "Listen address (default from config, :8000)")
	stubCmd.Flags().DurationVar(&stubLatency, "latency", 0, "Artificial delay before each reply")
}

func runStub(cmd *cobra.Command, args []string) error {
	addr := cfg.Stub.Addr
	if stubAddr != "" {
		addr = stubAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting stub backend",
		zap.String("addr", addr),
		zap.Float64("rate_limit", cfg.Stub.RateLimit),
		zap.Int("burst", cfg.Stub.Burst))

	srv := stubserver.New(stubserver.Options{
		Addr:      addr,
		RateLimit: rate.Limit(cfg.Stub.RateLimit),
		Burst:     cfg.Stub.Burst,
		Latency:   stubLatency,
	})
	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.Info("Stub backend stopped")
	return nil
}
