package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/neri-gut/jwparse/internal/config"
	"github.com/neri-gut/jwparse/internal/jwpub"
	"github.com/neri-gut/jwparse/internal/keys"
)

// app holds process-wide wiring shared by all commands.
type app struct {
	log *slog.Logger
	cfg config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{
		log: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		cfg: config.Load(),
	}

	rootCmd := &cobra.Command{
		Use:           "jwparse",
		Short:         "Decode jwpub publication archives into documents, references and assets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newExtractCommand(a))
	rootCmd.AddCommand(newFetchCommand(a))
	rootCmd.AddCommand(newServeCommand(a))

	return rootCmd
}

// newParser builds the decode pipeline from configuration.
func (a *app) newParser() (*jwpub.Parser, error) {
	engine, err := keys.NewEngine(a.cfg.MasterKey)
	if err != nil {
		return nil, err
	}
	return jwpub.NewParser(engine, a.log, a.cfg.WorkerCount), nil
}
