// Package cli defines the rootprobe command tree. Commands print
// observations and exit zero; only invocation mistakes (bad flags,
// unwritable output) produce a nonzero exit.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/druarnfield/rootprobe/internal/chain"
	"github.com/druarnfield/rootprobe/internal/config"
	"github.com/druarnfield/rootprobe/internal/logging"
	"github.com/druarnfield/rootprobe/internal/platform"
	"github.com/druarnfield/rootprobe/internal/probe"
	"github.com/druarnfield/rootprobe/internal/truststore"
)

var (
	flagVerbose bool
	flagJSON    bool
	flagConfig  string
)

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rootprobe",
		Short: "Demonstrate Windows root certificate auto-install",
		Long: "rootprobe shows how Windows silently installs missing root certificates:\n" +
			"it captures the root a TLS endpoint presents, checks the OS trust store\n" +
			"before and after probing the endpoint with two different TLS clients, and\n" +
			"reports whether the store changed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Mirror log output to stderr")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print results as JSON")
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")

	cmd.AddCommand(newVersionCmd(version))
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newRootsCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newProbeCmd())
	cmd.AddCommand(newDemoCmd(version))
	cmd.AddCommand(newServeCmd())

	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print rootprobe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("rootprobe", version)
		},
	}
}

func Execute(version string) error {
	return newRootCmd(version).Execute()
}

// app bundles the config and logger every command needs, plus
// constructors for the components built from them.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newApp() (*app, error) {
	path := flagConfig
	explicit := path != ""
	if !explicit {
		path = config.ConfigFilePath()
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		if explicit {
			return nil, err
		}
		// No config file is the normal case; run on defaults.
		cfg = config.Defaults()
	}

	logger, err := logging.Setup(config.LogFilePath(), flagVerbose)
	if err != nil {
		logger = slog.New(logging.NopHandler{})
	}

	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) store() *truststore.Store {
	return truststore.New(platform.NewCertStore())
}

func (a *app) resolver() *chain.Resolver {
	return &chain.Resolver{
		Port:    a.cfg.Resolver.Port,
		Timeout: a.cfg.ResolverTimeout(),
	}
}

func (a *app) probes(sink probe.Sink) *probe.ExecRunner {
	r := probe.NewExecRunner(a.cfg.Probe.Interpreters, a.cfg.Probe.ScriptDirs, a.logger)
	r.Timeout = a.cfg.ProbeTimeout()
	r.Sink = sink
	return r
}

// target picks the positional target argument, falling back to the
// configured default.
func (a *app) target(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Target.Default
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRecord writes a certificate record in human-readable form,
// omitting fields the record doesn't carry.
func printRecord(rec truststore.Record) {
	if rec.Thumbprint != "" {
		fmt.Printf("Thumbprint: %s\n", rec.Thumbprint)
	}
	if rec.Subject != "" {
		fmt.Printf("Subject:    %s\n", rec.Subject)
	}
	if rec.Issuer != "" {
		fmt.Printf("Issuer:     %s\n", rec.Issuer)
	}
	if !rec.NotAfter.IsZero() {
		fmt.Printf("Expires:    %s\n", rec.NotAfter.Format("2006-01-02"))
	}
	installed := "no"
	if rec.Installed {
		installed = "yes"
	}
	fmt.Printf("Installed:  %s\n", installed)
	if rec.Message != "" {
		fmt.Printf("%s\n", rec.Message)
	}
}
