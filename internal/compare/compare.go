// Package compare sequences the trust store, chain resolver, and probe
// runner into the six-step demonstration protocol: capture the target's
// root, check the store, run the validate-always backend, re-check, run
// the OS-deferring backend, check again. It is the only package that
// encodes ordering assumptions about the others.
//
// A mismatched expectation is reported, never treated as a hard
// failure: a prior run may already have mutated the OS store, and the
// point is to show the actual before/after state.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/druarnfield/rootprobe/internal/logging"
	"github.com/druarnfield/rootprobe/internal/probe"
	"github.com/druarnfield/rootprobe/internal/truststore"
)

// StoreQuerier is the slice of the trust store accessor the
// demonstration needs.
type StoreQuerier interface {
	FindByThumbprint(thumbprint string) truststore.Record
}

// RootResolver captures a target's presented chain root.
type RootResolver interface {
	ResolveRoot(ctx context.Context, target string) truststore.Record
}

// StepInfo describes one demonstration step for UIs, before it runs.
type StepInfo struct {
	Name     string `json:"name"`
	Explain  string `json:"explain"`
	Expected string `json:"expected"`
}

// StepResult is the outcome of one executed step.
type StepResult struct {
	Name     string             `json:"name"`
	Expected string             `json:"expected"`
	Actual   string             `json:"actual"`
	Match    bool               `json:"match"`
	Record   *truststore.Record `json:"record,omitempty"`
	Outcome  *probe.Outcome     `json:"outcome,omitempty"`
	Elapsed  time.Duration      `json:"elapsed"`
}

// Result is the full demonstration record.
type Result struct {
	Target              string       `json:"target"`
	RootThumbprint      string       `json:"root_thumbprint"`
	RootSubject         string       `json:"root_subject"`
	Steps               []StepResult `json:"steps"`
	AutoInstallObserved bool         `json:"auto_install_observed"`
}

// Verdict summarizes the before/after narrative in one line.
func (r Result) Verdict() string {
	if r.RootThumbprint == "" {
		return "inconclusive: the target's root certificate could not be resolved"
	}
	if r.AutoInstallObserved {
		return "auto-install observed: the root was absent before the OS-deferring probe and present after it"
	}
	return "auto-install not observed: the trust store did not change as expected between probes"
}

// PreStepCallback fires before a step starts.
type PreStepCallback func(info StepInfo, index, total int)

// StepCallback fires after a step completes.
type StepCallback func(result StepResult, index, total int)

// Demonstration drives one run of the protocol against a single target.
// It holds no state between runs; the OS trust store is the only memory.
type Demonstration struct {
	target   string
	store    StoreQuerier
	resolver RootResolver
	probes   probe.Runner
	logger   *slog.Logger

	preCallback PreStepCallback
	callback    StepCallback
}

// New creates a Demonstration for the given target. A nil logger
// disables logging.
func New(target string, store StoreQuerier, resolver RootResolver, probes probe.Runner, logger *slog.Logger) *Demonstration {
	if logger == nil {
		logger = slog.New(logging.NopHandler{})
	}
	return &Demonstration{
		target:   target,
		store:    store,
		resolver: resolver,
		probes:   probes,
		logger:   logger,
	}
}

// SetPreStepCallback registers a callback fired before each step. Pass
// nil to clear.
func (d *Demonstration) SetPreStepCallback(cb PreStepCallback) {
	d.preCallback = cb
}

// SetCallback registers a callback fired after each step. Pass nil to
// clear.
func (d *Demonstration) SetCallback(cb StepCallback) {
	d.callback = cb
}

// Steps returns the step descriptions in execution order.
func (d *Demonstration) Steps() []StepInfo {
	return []StepInfo{
		{
			Name:     "resolve root certificate",
			Explain:  fmt.Sprintf("Connect to %s with verification disabled and capture the certificate chain it presents. The last chain element is the root under test.", d.target),
			Expected: "certificate chain resolved",
		},
		{
			Name:     "check trust store (before)",
			Explain:  "Look the root up in the OS trusted root store by thumbprint. On a clean system it is absent.",
			Expected: "root absent from trust store",
		},
		{
			Name:     "probe validate-always backend",
			Explain:  "Run the OpenSSL-based client, which validates against its own bundled CA set and never consults the OS store. It should fail closed.",
			Expected: "backend fails (nonzero exit)",
		},
		{
			Name:     "re-check trust store",
			Explain:  "The failed probe must not have changed the store; the root should still be absent.",
			Expected: "root still absent",
		},
		{
			Name:     "probe OS-deferring backend",
			Explain:  "Run the client that defers validation to the OS. On Windows this can make CryptoAPI fetch and silently install the missing root.",
			Expected: "backend succeeds (exit zero)",
		},
		{
			Name:     "check trust store (after)",
			Explain:  "Look the root up again. If the OS auto-installed it, it is now present.",
			Expected: "root now present",
		},
	}
}

// Run executes all six steps in order. It never aborts early: every
// step runs and reports its actual observation even when an earlier
// expectation did not hold.
func (d *Demonstration) Run(ctx context.Context) Result {
	result := Result{Target: d.target}

	// Step 1 establishes the root identity every later step keys on.
	d.runStep(&result, 0, func() StepResult {
		rec := d.resolver.ResolveRoot(ctx, d.target)
		result.RootThumbprint = rec.Thumbprint
		result.RootSubject = rec.Subject

		actual := rec.Message
		if rec.Thumbprint != "" {
			actual = fmt.Sprintf("root %s (%s)", rec.Subject, rec.Thumbprint)
		}
		return StepResult{Actual: actual, Match: rec.Thumbprint != "", Record: &rec}
	})

	before := d.storeCheck(&result, 1, false)
	d.runProbe(ctx, &result, 2, probe.BackendOpenSSL, false)
	stillAbsent := d.storeCheck(&result, 3, false)
	d.runProbe(ctx, &result, 4, probe.BackendCryptoAPI, true)
	after := d.storeCheck(&result, 5, true)

	result.AutoInstallObserved = result.RootThumbprint != "" &&
		!before && !stillAbsent && after

	d.logger.Info("demonstration complete",
		slog.String("target", d.target),
		slog.String("root", result.RootThumbprint),
		slog.Bool("auto_install_observed", result.AutoInstallObserved),
	)

	return result
}

// storeCheck runs one trust-store lookup step and reports whether the
// root was installed at that point.
func (d *Demonstration) storeCheck(result *Result, index int, expectPresent bool) bool {
	installed := false

	d.runStep(result, index, func() StepResult {
		if result.RootThumbprint == "" {
			return StepResult{Actual: "no root identity available to check", Match: false}
		}

		rec := d.store.FindByThumbprint(result.RootThumbprint)
		installed = rec.Installed

		actual := "root absent from trust store"
		if rec.Installed {
			actual = fmt.Sprintf("root present in trust store (%s)", rec.Subject)
		}
		return StepResult{Actual: actual, Match: rec.Installed == expectPresent, Record: &rec}
	})

	return installed
}

// runProbe runs one backend probe step.
func (d *Demonstration) runProbe(ctx context.Context, result *Result, index int, backend probe.Backend, expectSuccess bool) {
	d.runStep(result, index, func() StepResult {
		outcome := d.probes.Run(ctx, d.target, backend)

		actual := fmt.Sprintf("backend %s: %s", backend, outcome.Message)
		return StepResult{Actual: actual, Match: outcome.Success == expectSuccess, Outcome: &outcome}
	})
}

// runStep shares the pre/post callback and logging plumbing between the
// step helpers.
func (d *Demonstration) runStep(result *Result, index int, fn func() StepResult) {
	infos := d.Steps()
	info := infos[index]
	if d.preCallback != nil {
		d.preCallback(info, index, len(infos))
	}

	start := time.Now()
	res := fn()
	res.Name = info.Name
	res.Expected = info.Expected
	res.Elapsed = time.Since(start)

	d.logger.Info("demonstration step finished",
		slog.String("step", res.Name),
		slog.String("actual", res.Actual),
		slog.Bool("match", res.Match),
		slog.Duration("elapsed", res.Elapsed),
	)

	result.Steps = append(result.Steps, res)
	if d.callback != nil {
		d.callback(res, index, len(infos))
	}
}
