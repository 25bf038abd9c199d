package main

import (
	"fmt"

	"reservation-sync/config"
	"reservation-sync/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

// runtime is the config and logger shared by every subcommand.
type runtime struct {
	cfgPath string
	cfg     *config.Config
	log     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:           "syncd",
		Short:         "Provider reservation sync engine: outbound sync, webhook ingest, availability",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(rt.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rt.cfg = cfg
			rt.log = logger.New(cfg.Log.Level, cfg.Log.Pretty)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&rt.cfgPath, "config", "c", "", "config file (default ./config.yaml or ./config/config.yaml)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd(rt))
	root.AddCommand(newMigrateCmd(rt))
	root.AddCommand(newSweepCmd(rt))
	root.AddCommand(newTokenCmd(rt))

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "syncd %s (%s)\n", Version, CommitSHA)
		},
	}
}
