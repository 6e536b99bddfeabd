package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/epmcoin/stakekernel/internal/chainindex"
	"github.com/epmcoin/stakekernel/internal/consensus"
	"github.com/epmcoin/stakekernel/internal/diagnostics"
	"github.com/epmcoin/stakekernel/pkg/safe"
)

type config struct {
	StartHeight int64         `long:"start-height" env:"STAKEKERNEL_START_HEIGHT" description:"first height to report on" default:"1"`
	EndHeight   int64         `long:"end-height" env:"STAKEKERNEL_END_HEIGHT" description:"height to stop reporting at (exclusive)" required:"true"`
	AuditFlush  time.Duration `long:"audit-flush-interval" env:"STAKEKERNEL_AUDIT_FLUSH_INTERVAL" description:"audit sink flush interval" default:"5s"`
	AuditRPS    int           `long:"audit-rps" env:"STAKEKERNEL_AUDIT_RPS" description:"audit sink flush rate limit" default:"10"`
	MetricsAddr string        `long:"metrics-addr" env:"STAKEKERNEL_METRICS_ADDR" description:"address for metrics server" default:":2112"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("kernel diagnostics run failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	startHeight, err := safe.Uint32(cfg.StartHeight)
	if err != nil {
		return fmt.Errorf("start-height: %w", err)
	}
	endHeight, err := safe.Uint32(cfg.EndHeight)
	if err != nil {
		return fmt.Errorf("end-height: %w", err)
	}

	cctx, err := buildContext(logger)
	if err != nil {
		return fmt.Errorf("build consensus context: %w", err)
	}

	sink := diagnostics.NewAuditSink(logger, diagnostics.LogSink{Logger: logger}, 64, cfg.AuditFlush, cfg.AuditRPS)
	sink.Start(ctx)
	defer sink.Stop()

	report, err := diagnostics.RequiredPaymentsStrings(ctx, cctx, startHeight, endHeight)
	if err != nil {
		return fmt.Errorf("compute required payments: %w", err)
	}

	fmt.Print(diagnostics.FormatPaymentsReport(report))
	return nil
}

// buildContext wires a *consensus.Context against whatever chain state
// and collaborator implementations the deployment provides. This
// diagnostics binary has no built-in chain sync of its own (spec's
// Non-goals exclude networking and persistence); it is meant to be
// linked against a host application's implementations of
// consensus.DeterministicMNSubsystem, consensus.SuperblockSubsystem, and
// friends, or run against a populated chainindex.Index for offline
// recomputation.
func buildContext(logger *zap.Logger) (*consensus.Context, error) {
	logger.Warn("kernel-diagnostics started with an empty chain index; wire a real chainindex.Index and collaborator set for production use")
	return &consensus.Context{
		Params: &consensus.Params{},
		Chain:  chainindex.New(),
	}, nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
