package demo

import (
	"github.com/druarnfield/rootprobe/internal/compare"
	"github.com/druarnfield/rootprobe/internal/probe"
)

// TargetConfirmMsg is sent when the user confirms a target host.
type TargetConfirmMsg struct {
	Target string
}

// StepStartMsg is sent when a demonstration step begins.
type StepStartMsg struct {
	Info  compare.StepInfo
	Index int
	Total int
}

// StepDoneMsg is sent when a demonstration step completes. A mismatch
// between expected and actual is an observation, not a failure.
type StepDoneMsg struct {
	Result compare.StepResult
	Index  int
	Total  int
}

// ProbeLineMsg carries one output line from a running backend probe.
type ProbeLineMsg struct {
	Line probe.Line
}

// DoneMsg is sent when all six steps have run.
type DoneMsg struct {
	Result compare.Result
}
