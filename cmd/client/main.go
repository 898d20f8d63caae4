package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/campusshop/internal/client/cli"
	"github.com/dmitrijs2005/campusshop/internal/client/config"
	"github.com/dmitrijs2005/campusshop/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "campusshop",
	Short:         "Campus Shop terminal client",
	Long:          "Interactive client for the campus marketplace: browse your cart, check out, pay and track orders.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		app.Run(cmd.Context())
		return nil
	},
}

// healthCmd checks that the shop API is reachable.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the shop API is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Health(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(healthCmd)
}

func buildApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	return cli.NewApp(cmd.Context(), cfg, log)
}
