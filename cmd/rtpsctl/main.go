// Command rtpsctl is a diagnostic CLI for a running rtpsd (C10): it talks
// to the admin server's /debug/proxies endpoint and renders the
// participant/endpoint catalogue, in the subcommand style of the
// teacher's multicluster/cmd gateways command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var adminAddr string

func main() {
	root := &cobra.Command{
		Use:   "rtpsctl",
		Short: "Inspect a running rtpsd's discovered participants and endpoints",
	}
	root.PersistentFlags().StringVar(&adminAddr, "admin-addr", "http://localhost:9980", "base URL of the rtpsd admin server")
	root.AddCommand(newParticipantsCommand())
	root.AddCommand(newEndpointsCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
