package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/weeklypoll/internal/app"
	"github.com/vncsmyrnk/weeklypoll/internal/config"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
	"github.com/vncsmyrnk/weeklypoll/internal/core/render"
	"github.com/vncsmyrnk/weeklypoll/internal/core/services"
	"github.com/vncsmyrnk/weeklypoll/internal/logging"
)

// Set up by the root command before any subcommand runs.
var (
	cfg      *config.Config
	storage  *app.Storage
	polls    ports.PollService
	renderer *render.Renderer
)

var rootCmd = &cobra.Command{
	Use:           "pollctl",
	Short:         "Inspect and manage the weekly poll",
	Long:          `pollctl reads and changes the stored weekly poll directly, using the same store settings as the bot server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("store") {
			cfg.Store, _ = cmd.Flags().GetString("store")
		}
		if cmd.Flags().Changed("store-path") {
			cfg.StorePath, _ = cmd.Flags().GetString("store-path")
		}

		storage, err = app.OpenStorage(cmd.Context(), cfg, logging.NewNop())
		if err != nil {
			return err
		}
		polls = services.NewPollService(storage.Repository)
		renderer = cfg.Renderer()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if storage == nil {
			return nil
		}
		return storage.Close()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("store", "", "Poll store: file, postgres or redis (default from STORE)")
	rootCmd.PersistentFlags().String("store-path", "", "Poll file for the file store (default from STORE_PATH)")
}
