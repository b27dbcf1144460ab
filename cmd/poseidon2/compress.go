package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) compressCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "compress <left> <right>",
		Short: "Compress two field elements given in decimal or 0x-prefixed hex",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.engine(mode)
			if err != nil {
				return err
			}
			out, err := e.CompressString(args[0], args[1])
			if err != nil {
				return err
			}
			c.log.Info().Str("left", args[0]).Str("right", args[1]).Stringer("mode", e.Mode()).Msg("compressed")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Compress Result: %s\n", out)
			return err
		},
	}
	addModeFlag(cmd, &mode)
	return cmd
}
