package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newParticipantsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "participants",
		Short: "List known participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			participants, err := fetchProxies(adminAddr)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GUID PREFIX\tNAME\tALIVE\tWRITERS\tREADERS\tLEASE")
			for _, p := range participants {
				fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%d\t%s\n",
					p.GUIDPrefix, p.ParticipantName, p.IsAlive, len(p.Writers), len(p.Readers), p.LeaseDuration)
			}
			return w.Flush()
		},
	}
}
