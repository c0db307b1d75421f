package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/colloquy"
	colloquyhttp "github.com/aretw0/colloquy/pkg/adapters/http"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests may take after a signal.
const ShutdownTimeout = 5 * time.Second

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	Dir   string
	Addr  string
	Debug bool
}

// Serve runs the session API until SIGINT or SIGTERM.
func Serve(opts ServeOptions) error {
	proj, err := OpenProject(opts.Dir, opts.Debug)
	if err != nil {
		return err
	}
	defer proj.Close()
	logger := proj.Logger

	addr := opts.Addr
	if addr == "" {
		addr = proj.Config.Server.Addr
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()
	g, ctx := errgroup.WithContext(sigCtx)

	router := chi.NewRouter()
	if proj.Config.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)
		proj.WithHooks(colloquy.WithLifecycleHooks(metrics.Hooks()))
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	api := colloquyhttp.NewServer(
		func(req colloquyhttp.StartRequest, collab domain.Collaborators) (*colloquy.Engine, error) {
			return proj.NewEngine(req.Profile, colloquy.WithCollaborators(collab))
		},
		colloquyhttp.WithLoader(proj.Loader),
		colloquyhttp.WithLogger(logger),
		colloquyhttp.WithBaseContext(ctx),
	)
	router.Mount("/", api.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		printSystemMessage("Starting Colloquy Server on %s", addr)
		printSystemMessage("Serving graphs from: %s", proj.Config.GraphsDir())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		if sig := sigCtx.Signal(); sig != nil {
			printSystemMessage("Start shutdown... Signal: %v", sig)
		}

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		api.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		printSystemMessage("Colloquy Server stopped gracefully")
		return nil
	})

	return g.Wait()
}
