package main

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vocdoni/poseidon2/emit"
)

func (c *cli) emitCmd() *cobra.Command {
	var (
		mode string
		out  string
		cfg  = emit.DefaultConfig()
	)
	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Render the lowered program as a Solidity library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.engine(mode)
			if err != nil {
				return err
			}
			var (
				w io.Writer = cmd.OutOrStdout()
				f *os.File
			)
			if out != "" {
				if f, err = os.Create(out); err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			bw := bufio.NewWriter(w)
			if err := emit.Solidity(bw, e.Program(e.Mode()), cfg); err != nil {
				return err
			}
			if err := bw.Flush(); err != nil {
				return err
			}
			if f != nil {
				if err := f.Close(); err != nil {
					return err
				}
			}
			c.log.Info().Str("out", out).Str("library", cfg.LibraryName).Stringer("mode", e.Mode()).Msg("solidity written")
			return nil
		},
	}
	addModeFlag(cmd, &mode)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&cfg.LibraryName, "library", cfg.LibraryName, "Solidity library name")
	cmd.Flags().StringVar(&cfg.PragmaVersion, "pragma", cfg.PragmaVersion, "Solidity pragma version")
	return cmd
}
