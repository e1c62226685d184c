package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/CTAG07/quotechain/pkg/quotefault"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "quotechain",
	Short:         "Generate new quotes from a Markov chain of quotefault quotes",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fetch quotes once and print generated ones",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		v := currentVersion()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "quotechain version %s (commit %s, built %s)\n", v.Version, v.Commit, v.BuildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.json", "path to the JSON config file")

	generateCmd.Flags().IntP("count", "n", 0, "number of quotes to generate (default from config)")
	generateCmd.Flags().String("speaker", "", "only train on quotes by this speaker")
	generateCmd.Flags().String("submitter", "", "only train on quotes submitted by this user")

	rootCmd.AddCommand(serveCmd, generateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime loads the config and builds a logger writing to w.
func loadRuntime(w io.Writer) (*Config, *slog.Logger, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(config.Server.LogLevel)}))
	return config, logger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	config, logger, err := loadRuntime(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	app, err := NewApp(config, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.Generation.RefreshOnStart {
		if _, err = app.svc.Refresh(ctx, quotefault.Filter{}); err != nil {
			logger.Warn("Initial refresh failed, chain stays empty until /api/markov/refresh succeeds", "error", err)
		}
	}

	apiHttpServer := &http.Server{
		Addr:              config.Server.ApiAddr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting api server", "address", apiHttpServer.Addr)
		if err := apiHttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return apiHttpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("quotechain has shut down.")
	return err
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	config, logger, err := loadRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	count := config.Generation.DefaultCount
	if cmd.Flags().Changed("count") {
		count, _ = cmd.Flags().GetInt("count")
	}
	speaker, _ := cmd.Flags().GetString("speaker")
	submitter, _ := cmd.Flags().GetString("submitter")

	app, err := NewApp(config, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err = app.svc.Refresh(cmd.Context(), quotefault.Filter{Speaker: speaker, Submitter: submitter}); err != nil {
		return err
	}
	quotes, err := app.svc.Generate(count)
	if err != nil {
		return err
	}
	for _, quote := range quotes {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), quote)
	}
	return nil
}
