package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vocdoni/poseidon2/program"
)

func (c *cli) programCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "program",
		Short: "List the lowered word operations and their counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.engine(mode)
			if err != nil {
				return err
			}
			p := e.Program(e.Mode())
			w := cmd.OutOrStdout()
			for pc, ins := range p.Code {
				fmt.Fprintf(w, "%4d r%-3d %s\n", pc, ins.Round, ins)
			}
			fmt.Fprintf(w, "# output %s\n", p.Output)
			for _, op := range []program.Opcode{program.OpAdd, program.OpAddMod, program.OpMulMod, program.OpMod} {
				fmt.Fprintf(w, "# %s %d\n", op, p.Count(op))
			}
			_, err = fmt.Fprintf(w, "# reductions %d\n", p.Reductions())
			return err
		},
	}
	addModeFlag(cmd, &mode)
	return cmd
}
