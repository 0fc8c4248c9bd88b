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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raek/pladder-irc/internal/config"
	"github.com/raek/pladder-irc/internal/hooks"
	"github.com/raek/pladder-irc/internal/irc"
	"github.com/raek/pladder-irc/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Version information - set at build time via ldflags
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

type options struct {
	config        string
	systemd       bool
	dbus          bool
	verbose       bool
	transcriptDir string
	metricsListen string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "pladder-irc",
		Short:        "Relay an IRC network to the pladder bot",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flag errors are printed by cobra; run logs its own.
			cmd.SilenceErrors = true
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.config, "config", "c", "", "Config name (looked up in $XDG_CONFIG_HOME/pladder-irc) or path")
	flags.BoolVar(&opts.systemd, "systemd", false, "Log to the journal and notify systemd of readiness and liveness")
	flags.BoolVar(&opts.dbus, "dbus", false, "Run commands and log lines through the pladder D-Bus services")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log protocol traffic")
	flags.StringVar(&opts.transcriptDir, "transcript-dir", "", "Append chat lines to per-network files in this directory")
	flags.StringVar(&opts.metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address (e.g. localhost:9120)")
	_ = cmd.MarkFlagRequired("config")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pladder-irc version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", buildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", gitCommit)
		},
	})

	cmd.AddCommand(newTranscriptCmd())

	return cmd
}

func newTranscriptCmd() *cobra.Command {
	var (
		dir   string
		lines int
	)
	cmd := &cobra.Command{
		Use:   "transcript NETWORK",
		Short: "Print the last lines of a network's transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := &storage.Transcript{Dir: dir}
			entries, err := store.Load(args[0], lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s %s <%s> %s\n", e.Time.Format(time.RFC3339), e.Channel, e.Nick, e.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Transcript directory (as given to --transcript-dir)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Number of lines to print (default 500)")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func run(ctx context.Context, opts options) error {
	log, err := newLogger(opts.verbose, opts.systemd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		return err
	}
	defer log.Sync()

	hooks.Version = version
	hooks.BuildDate = buildDate
	hooks.GitCommit = gitCommit

	// Load configuration
	path, err := config.Resolve(opts.config)
	if err != nil {
		log.Error("Failed to locate configuration", zap.Error(err))
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Error("Failed to load configuration", zap.String("path", path), zap.Error(err))
		return err
	}
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", zap.String("path", path), zap.Error(err))
		return err
	}

	h, reg, cleanup, err := buildHooks(opts, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// Signal handling
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	sessionDone := make(chan struct{})
	g.Go(func() error {
		defer close(sessionDone)
		return irc.Run(gctx, cfg, h, log)
	})
	if reg != nil {
		srv := &http.Server{
			Addr:              opts.metricsListen,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-gctx.Done():
			case <-sessionDone:
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	switch {
	case err == nil:
		log.Info("Connection closed by server")
		return nil
	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		log.Info("Received shutdown signal")
		return nil
	}
	log.Error("Session failed", zap.Error(err))
	return err
}

// buildHooks assembles the hook chain selected by opts. The returned registry
// is nil unless metrics are enabled.
func buildHooks(opts options, log *zap.Logger) (irc.Hooks, *prometheus.Registry, func(), error) {
	cleanup := func() {}

	var h irc.Hooks = hooks.NewBuiltin()
	if opts.dbus {
		bus, err := hooks.DialBus(h, log)
		if err != nil {
			log.Error("Failed to connect to the session bus", zap.Error(err))
			return nil, nil, cleanup, err
		}
		cleanup = func() { bus.Close() }
		h = bus
	}
	if opts.transcriptDir != "" {
		store, err := storage.NewTranscript(opts.transcriptDir)
		if err != nil {
			log.Error("Failed to open transcript", zap.Error(err))
			cleanup()
			return nil, nil, func() {}, err
		}
		h = hooks.NewTranscript(h, store, log)
	}

	var reg *prometheus.Registry
	if opts.metricsListen != "" {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		h = hooks.NewMetrics(h, reg)
	}
	if opts.systemd {
		h = hooks.NewSystemd(h, log)
	}
	return hooks.NewLogging(h, log), reg, cleanup, nil
}
