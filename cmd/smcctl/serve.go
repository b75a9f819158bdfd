package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/smckit/internal/api"
	"github.com/joshuapare/smckit/internal/metrics"
	"github.com/joshuapare/smckit/internal/service"
)

var (
	serveListen       string
	serveWatch        bool
	serveNoSensors    bool
	serveSaveInterval time.Duration
)

func init() {
	cmd := newServeCmd()
	cmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (defaults to metrics.listen from the configuration)")
	cmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the keys file when it changes")
	cmd.Flags().BoolVar(&serveNoSensors, "no-sensors", false, "Do not register the configured synthetic sensors")
	cmd.Flags().DurationVar(&serveSaveInterval, "save-interval", 5*time.Minute, "Save keys to NVRAM periodically (0 disables)")
	rootCmd.AddCommand(cmd)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the key store with its HTTP command API and metrics",
		Long: `The serve command keeps the key store running, registers synthetic
sensors, and serves the command API under /v1 and Prometheus metrics.
Keys are saved to NVRAM on shutdown.

Example:
  smcctl serve --config smckit.yaml
  smcctl serve --listen 127.0.0.1:9465 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	return cmd
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := openService(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := svc.Config()
	if !serveNoSensors {
		if err := svc.StartSensors(cfg.Sensors); err != nil {
			printError("some sensors were not registered: %v\n", err)
		}
	}

	listen := serveListen
	if listen == "" {
		listen = cfg.Metrics.Listen
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           newServeMux(svc, cfg.Metrics.Path),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		printInfo("Serving on http://%s (metrics at %s)\n", listen, cfg.Metrics.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if serveWatch {
		g.Go(func() error { return svc.WatchKeys(gctx) })
	}
	if serveSaveInterval > 0 {
		g.Go(func() error { return saveLoop(gctx, svc, serveSaveInterval) })
	}

	return g.Wait()
}

func newServeMux(svc *service.Service, metricsPath string) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector(svc.Store()))
	gatherers := prometheus.Gatherers{reg, prometheus.DefaultGatherer}

	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	gin.SetMode(gin.ReleaseMode)
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
	mux.Handle("/v1/", api.NewRouter(api.NewHandlers(svc.Commands())))
	return mux
}

func saveLoop(ctx context.Context, svc *service.Service, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := svc.Save(ctx)
			if err != nil {
				printError("periodic save: %v\n", err)
				continue
			}
			printVerbose("Saved %d keys\n", n)
		}
	}
}
