package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/utafrali/EcommerceGo/storefront/internal/app"
	"github.com/utafrali/EcommerceGo/storefront/internal/config"
	"github.com/utafrali/EcommerceGo/storefront/internal/storefront"
	"github.com/utafrali/EcommerceGo/storefront/pkg/health"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// Version information set at build time.
var version = "dev"

// cli carries the wired application between cobra hooks and commands.
type cli struct {
	app    *app.App
	logger *slog.Logger
}

func (r *cli) storefront() *storefront.Storefront {
	return r.app.Storefront()
}

// execute runs root and releases the app whether or not the command failed.
func (r *cli) execute(ctx context.Context, root *cobra.Command) error {
	defer r.close()
	return root.ExecuteContext(ctx)
}

func (r *cli) close() {
	if r.app != nil {
		r.app.Close(context.Background())
		r.app = nil
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt := &cli{}
	if err := rt.execute(ctx, newRootCmd(rt)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		cancel()
		os.Exit(1)
	}
}

func newRootCmd(rt *cli) *cobra.Command {

	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Drive the storefront state core against a live API",
		Long: `storefront runs catalog, cart and session operations against the
storefront REST API and prints the resulting store state.

Configuration is read from the environment (STOREFRONT_API_URL,
STOREFRONT_TOKEN_STORE, REDIS_HOST, LOG_LEVEL, ...). Use the redis
token store to keep a session between invocations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rt.logger = logger.New("storefront", cfg.LogLevel)

			a, err := app.NewApp(cmd.Context(), cfg, rt.logger)
			if err != nil {
				return fmt.Errorf("initialize application: %w", err)
			}
			rt.app = a

			if err := a.Storefront().Bootstrap(cmd.Context()); err != nil {
				rt.logger.Warn("session resume failed", slog.String("error", err.Error()))
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		productsCmd(rt),
		cartCmd(rt),
		authCmd(rt),
		healthCmd(rt),
		versionCmd(),
	)

	return rootCmd
}

func healthCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API and token store dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			report := rt.app.Health(cmd.Context())
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if report.Status != health.StatusUp {
				return fmt.Errorf("unhealthy: %s", strings.Join(report.Failing(), ", "))
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
