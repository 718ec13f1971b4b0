package cmd

import (
	"github.com/spf13/cobra"

	"github.com/AJITHPRASAD95/door1/pkg/cmd/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the door control instance",
	Run:   server.RunServeDoorControl(c),
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
