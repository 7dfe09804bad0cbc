package cli

import (
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <host>",
		Short: "Capture the root certificate a TLS endpoint presents",
		Long: "resolve connects to the host with verification disabled, captures the\n" +
			"certificate chain it presents, and reports the chain's last element as\n" +
			"the root. The connection is read-only; nothing is validated or stored.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			rec := a.resolver().ResolveRoot(cmd.Context(), args[0])
			if flagJSON {
				return printJSON(rec)
			}
			printRecord(rec)
			return nil
		},
	}
}
