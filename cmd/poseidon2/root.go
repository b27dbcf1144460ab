package main

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vocdoni/poseidon2"
	"github.com/vocdoni/poseidon2/program"
)

// cli holds the state shared by every subcommand.
type cli struct {
	logLevel string
	log      zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{log: zerolog.Nop()}
	root := &cobra.Command{
		Use:           "poseidon2",
		Short:         "Poseidon2 t=2 compression over the BLS12-381 scalar field",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := zerolog.ParseLevel(c.logLevel)
			if err != nil {
				return err
			}
			c.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
				Level(lvl).With().Timestamp().Logger()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(c.compressCmd())
	root.AddCommand(c.constantsCmd())
	root.AddCommand(c.programCmd())
	root.AddCommand(c.emitCmd())
	return root
}

func (c *cli) engine(mode string) (*poseidon2.Engine, error) {
	m, err := program.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return poseidon2.New(poseidon2.WithMode(m), poseidon2.WithLogger(c.log))
}

func addModeFlag(cmd *cobra.Command, mode *string) {
	cmd.Flags().StringVar(mode, "mode", program.ElideReductions.String(), "program variant (reduce, elide)")
}
