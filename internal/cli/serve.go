package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/druarnfield/rootprobe/internal/probe"
	"github.com/druarnfield/rootprobe/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		addr string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the trust store and probe operations over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if addr == "" {
				addr = a.cfg.Server.ListenAddr
			}
			if port == 0 {
				port = a.cfg.Server.ListenPort
			}

			server := web.NewServer(a.store(), a.resolver(), a.probes(nil), a.logger)
			// Each websocket gets its own runner so streamed lines reach
			// only that connection.
			server.SetStreamFactory(func(sink probe.Sink) probe.Runner {
				return a.probes(sink)
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.ListenAndServe(ctx, addr, port)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default from config)")

	return cmd
}
