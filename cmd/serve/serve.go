// Package serve runs the HTTP dashboard.
package serve

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/spend-dashboard/cmd/root"

	"github.com/spf13/cobra"
)

var addr string

// Cmd is the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Long: `Start the JSON API. Each upload creates a session; the dashboard of a
session is recomputed on every request from its filter parameters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if root.AppContainer == nil {
			return errors.New("application not initialized")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return root.AppContainer.NewServer(addr).Run(ctx)
	},
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")
}
