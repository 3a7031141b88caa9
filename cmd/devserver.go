package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/roomtodo/internal/devserver"
	"github.com/spf13/cobra"
)

// dev-server runs the in-memory backend fixture so two terminals can try the
// client locally. It is hidden because it is not the production backend.
func newDevServerCmd(app *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:    "dev-server",
		Short:  "Run a local in-memory backend for development",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := &http.Server{
				Addr:              addr,
				Handler:           devserver.New(app.logger).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dev server listening on %s\n", addr)
			return server.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8793", "listen address")
	return cmd
}
