package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/druarnfield/rootprobe/internal/compare"
	"github.com/druarnfield/rootprobe/internal/probe"
	"github.com/druarnfield/rootprobe/internal/report"
	"github.com/druarnfield/rootprobe/internal/tui/demo"
)

func newDemoCmd(version string) *cobra.Command {
	var (
		plain   bool
		explain bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "demo [target]",
		Short: "Run the full before/after auto-install demonstration",
		Long: "demo runs the six-step demonstration: resolve the target's root, check\n" +
			"the trust store, probe with the validate-always backend, re-check, probe\n" +
			"with the OS-deferring backend, check again. Every step runs even when an\n" +
			"expectation does not hold; the final verdict reports what was observed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			target := a.target(args)

			factory := func(target string, sink probe.Sink) *compare.Demonstration {
				return compare.New(target, a.store(), a.resolver(), a.probes(sink), a.logger)
			}

			var result compare.Result
			if plain || flagJSON {
				result = runPlainDemo(cmd, factory, target)
			} else {
				m := demo.New(factory, target, explain)
				final, err := tea.NewProgram(m).Run()
				if err != nil {
					return err
				}
				finished, ok := final.(demo.Model).Result()
				if !ok {
					// User quit before the run completed; nothing to report.
					return nil
				}
				result = finished
			}

			if flagJSON {
				if err := printJSON(result); err != nil {
					return err
				}
			}

			if output != "" {
				if err := report.Save(output, report.New(result, version)); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", output)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print step results as plain text instead of the interactive UI")
	cmd.Flags().BoolVar(&explain, "explain", false, "Show step explanations in the interactive UI")
	cmd.Flags().StringVar(&output, "output", "", "Write the full run as a JSON report to this file")

	return cmd
}

// runPlainDemo executes the demonstration without the interactive UI,
// printing each step as it completes.
func runPlainDemo(cmd *cobra.Command, factory demo.Factory, target string) compare.Result {
	quiet := flagJSON

	var sink probe.Sink
	if !quiet {
		sink = func(line probe.Line) {
			fmt.Printf("    [%s] %s\n", line.Source, line.Text)
		}
	}

	d := factory(target, sink)
	if !quiet {
		d.SetPreStepCallback(func(info compare.StepInfo, index, total int) {
			fmt.Printf("[%d/%d] %s\n", index+1, total, info.Name)
		})
		d.SetCallback(func(res compare.StepResult, index, total int) {
			marker := "ok"
			if !res.Match {
				marker = "!!"
			}
			fmt.Printf("  %s  expected: %s\n", marker, res.Expected)
			fmt.Printf("      actual:   %s\n", res.Actual)
		})
	}

	result := d.Run(cmd.Context())
	if !quiet {
		fmt.Printf("\n%s\n", result.Verdict())
	}
	return result
}
