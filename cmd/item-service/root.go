package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/item-service/internal/config"
	"github.com/Sternrassler/item-service/pkg/logging"
)

// app carries state shared by the subcommands after PersistentPreRunE.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

// newRootCmd creates the root command. lookupEnv is injected for tests.
func newRootCmd(ver string, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	return a.rootCmd(ver, lookupEnv)
}

func (a *app) rootCmd(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	var (
		configPath string
		logLevel   string
		workers    int
		storeName  string
	)

	cmd := &cobra.Command{
		Use:          "item-service",
		Short:        "Item management service with parallel batch processing",
		Version:      ver,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, lookupEnv)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if flags.Changed("workers") {
				cfg.Pool.Workers = workers
			}
			if flags.Changed("store") {
				cfg.Store.Backend = storeName
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logging.Setup(cfg.Logging(a.stderr))
			return nil
		},
	}

	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.IntVar(&workers, "workers", 10, "number of batch workers")
	pf.StringVar(&storeName, "store", config.BackendMemory, "store backend (memory, redis)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newProcessCmd(a))

	return cmd
}
