package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSweepCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one retry sweep over failed external reservations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire(cmd.Context(), rt.cfg, rt.log)
			if err != nil {
				return err
			}
			defer c.close(rt.log)

			n, err := c.syncSvc.SweepDue(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "retried %d external reservation(s)\n", n)
			return nil
		},
	}
}
