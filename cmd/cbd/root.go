package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ib-77/cbd/pkg/config"
	"github.com/ib-77/cbd/pkg/logger"
	"github.com/ib-77/cbd/pkg/store"
	"github.com/ib-77/cbd/pkg/store/kvstore"
	"github.com/ib-77/cbd/pkg/store/sqlstore"
)

// app is the state shared by every subcommand once the root command has
// loaded the configuration.
type app struct {
	configPath string
	logMode    string

	cfg config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cbd",
		Short: "Collatz backbone distance generator",
		Long: `cbd computes, for every integer below an upper bound, how its Collatz
trajectory reaches the backbone of powers of two, stores the results and
renders them as scatter plots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logMode, "log-mode", "", "log mode: development, production or nop")

	root.AddCommand(
		newGenerateCmd(a),
		newQueryCmd(a),
		newPlotCmd(a),
		newRunsCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(a.resolveLogMode())
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// resolveLogMode picks the flag, then the config, then console output on a
// terminal and JSON otherwise.
func (a *app) resolveLogMode() string {
	switch {
	case a.logMode != "":
		return a.logMode
	case a.cfg.Run.LogMode != "":
		return a.cfg.Run.LogMode
	case isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()):
		return logger.ModeDevelopment
	default:
		return logger.ModeProduction
	}
}

// openStore opens the configured backend. It returns nil for driver "none".
func (a *app) openStore() (store.Store, error) {
	switch a.cfg.Store.Driver {
	case "sqlite":
		st, err := sqlstore.Open(a.cfg.Store.Path, a.log)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "badger":
		st, err := kvstore.Open(kvstore.Config{Path: a.cfg.Store.Path, SyncWrites: true}, a.log)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
	}
}

func (a *app) requireStore() (store.Store, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("store driver %q keeps no data; configure sqlite or badger", a.cfg.Store.Driver)
	}
	return st, nil
}
