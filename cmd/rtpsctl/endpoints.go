package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newEndpointsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List discovered writer and reader endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			participants, err := fetchProxies(adminAddr)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GUID\tKIND\tTOPIC\tTYPE\tALIVE\tOWNER")
			for _, p := range participants {
				for _, wd := range p.Writers {
					fmt.Fprintf(w, "%s\tWRITER\t%s\t%s\t%t\t%s\n", wd.GUID, wd.TopicName, wd.TypeName, wd.IsAlive, p.ParticipantName)
				}
				for _, rd := range p.Readers {
					fmt.Fprintf(w, "%s\tREADER\t%s\t%s\t%t\t%s\n", rd.GUID, rd.TopicName, rd.TypeName, rd.IsAlive, p.ParticipantName)
				}
			}
			return w.Flush()
		},
	}
}
