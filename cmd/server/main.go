package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitclaim/internal/broadcast"
	"github.com/mmynk/splitclaim/internal/config"
	"github.com/mmynk/splitclaim/internal/identity"
	"github.com/mmynk/splitclaim/internal/ledger"
	"github.com/mmynk/splitclaim/internal/metrics"
	"github.com/mmynk/splitclaim/internal/middleware"
	"github.com/mmynk/splitclaim/internal/relay"
	"github.com/mmynk/splitclaim/internal/service"
	"github.com/mmynk/splitclaim/internal/storage/sqlite"
	"github.com/mmynk/splitclaim/pkg/api/apiconnect"
	"github.com/mmynk/splitclaim/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	reg := metrics.NewRegistry()

	users := identity.NewDirectory(store)
	var bills *ledger.Ledger
	ledgerMetrics := metrics.NewLedgerMetrics(reg, func() int { return bills.LiveBills() })
	bills = ledger.New(store, users, ledger.WithMetrics(ledgerMetrics))

	hub := broadcast.NewHub(
		broadcast.WithMaxViewers(cfg.MaxViewersPerBill),
		broadcast.WithWriteTimeout(cfg.WSWriteTimeout),
		broadcast.WithCheckOrigin(broadcast.AllowedOrigins(cfg.Origins())),
		broadcast.WithMetrics(metrics.NewBroadcastMetrics(reg)),
	)
	defer hub.Close()

	g, ctx := errgroup.WithContext(ctx)

	var notifier service.Notifier = hub
	if cfg.RedisURL != "" {
		client, err := relay.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		r := relay.New(client, hub)
		notifier = r
		g.Go(func() error { return r.Run(ctx, nil) })
		slog.Info("Cross-instance relay enabled")
	}

	interceptors := connect.WithInterceptors(
		middleware.Credentials(),
		middleware.LoggingInterceptor(metrics.NewRPCMetrics(reg)),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewBillServiceHandler(service.NewBillService(bills, notifier), interceptors))
	mux.Handle(apiconnect.NewUserServiceHandler(service.NewUserService(users), interceptors))
	mux.Handle(service.BillSocketPattern, service.BillSocketHandler(hub))
	mux.Handle("GET /metrics", metrics.Handler(reg))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler := middleware.HTTPLogging(middleware.CORS(cfg.Origins())(mux))

	// h2c serves HTTP/2 without TLS, which Connect clients use.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
