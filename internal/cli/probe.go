package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/druarnfield/rootprobe/internal/probe"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <backend> [target]",
		Short: "Run one TLS client backend against a target",
		Long: "probe spawns the selected backend (openssl or cryptoapi) against the\n" +
			"target and reports its outcome. Output lines stream as the backend\n" +
			"produces them. A failed probe is an observation, not an error.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := probe.ParseBackend(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			target := a.target(args[1:])

			var sink probe.Sink
			if !flagJSON {
				sink = func(line probe.Line) {
					fmt.Printf("[%s] %s\n", line.Source, line.Text)
				}
			}

			outcome := a.probes(sink).Run(cmd.Context(), target, backend)
			if flagJSON {
				return printJSON(outcome)
			}

			status := "FAILED"
			if outcome.Success {
				status = "OK"
			}
			fmt.Printf("\n%s backend against %s: %s (%s)\n", outcome.Backend, target, status, outcome.Message)
			return nil
		},
	}
}
