package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/druarnfield/rootprobe/internal/truststore"
)

func newCheckCmd() *cobra.Command {
	var (
		thumbprint string
		subject    string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Look up a certificate in the OS trusted root store",
		Long: "check queries the OS trusted root store by thumbprint or subject and\n" +
			"reports whether the certificate is installed. Absence is a normal result,\n" +
			"not an error.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (thumbprint == "") == (subject == "") {
				return errors.New("provide exactly one of --thumbprint or --subject")
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			store := a.store()
			var rec truststore.Record
			if thumbprint != "" {
				rec = store.FindByThumbprint(thumbprint)
			} else {
				rec = store.FindBySubject(subject)
			}

			if flagJSON {
				return printJSON(rec)
			}
			printRecord(rec)
			return nil
		},
	}

	cmd.Flags().StringVar(&thumbprint, "thumbprint", "", "SHA-1 thumbprint to look up (separators and case ignored)")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject substring to look up (case-insensitive)")

	return cmd
}

func newRootsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roots",
		Short: "List every certificate in the OS trusted root store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			records := a.store().ListAll()
			if flagJSON {
				return printJSON(records)
			}

			for _, rec := range records {
				if rec.Thumbprint == "" {
					// Store-open failure comes back as a single message record.
					fmt.Println(rec.Message)
					continue
				}
				fmt.Printf("%s  %s\n", rec.Thumbprint, rec.Subject)
			}
			fmt.Printf("%d certificates\n", len(records))
			return nil
		},
	}
}
