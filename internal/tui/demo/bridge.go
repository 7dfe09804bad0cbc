package demo

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/druarnfield/rootprobe/internal/compare"
	"github.com/druarnfield/rootprobe/internal/probe"
)

// Factory builds a Demonstration for a target, wiring captured probe
// output lines into the given sink.
type Factory func(target string, sink probe.Sink) *compare.Demonstration

// Bridge runs the demonstration in a background goroutine and produces
// tea.Msg values for the TUI via a channel.
type Bridge struct {
	demo   *compare.Demonstration
	msgs   chan tea.Msg
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBridge creates a Bridge for one demonstration run against target.
func NewBridge(factory Factory, target string) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		msgs:   make(chan tea.Msg, 64),
		ctx:    ctx,
		cancel: cancel,
	}
	b.demo = factory(target, func(line probe.Line) {
		b.send(ProbeLineMsg{Line: line})
	})
	return b
}

// Steps returns the step descriptions in execution order.
func (b *Bridge) Steps() []compare.StepInfo {
	return b.demo.Steps()
}

// Cancel signals the demonstration goroutine to stop.
func (b *Bridge) Cancel() {
	b.cancel()
}

// send delivers a message on the channel, respecting context cancellation
// to prevent deadlocks if the TUI has been shut down.
func (b *Bridge) send(msg tea.Msg) bool {
	select {
	case b.msgs <- msg:
		return true
	case <-b.ctx.Done():
		return false
	}
}

// Start launches the demonstration in a background goroutine and returns
// a tea.Cmd that delivers the first message.
func (b *Bridge) Start() tea.Cmd {
	b.demo.SetPreStepCallback(func(info compare.StepInfo, index, total int) {
		b.send(StepStartMsg{Info: info, Index: index, Total: total})
	})
	b.demo.SetCallback(func(result compare.StepResult, index, total int) {
		b.send(StepDoneMsg{Result: result, Index: index, Total: total})
	})

	go b.run()

	return b.NextMsg()
}

func (b *Bridge) run() {
	defer close(b.msgs)

	result := b.demo.Run(b.ctx)
	b.send(DoneMsg{Result: result})
}

// NextMsg returns a tea.Cmd that waits for the next message from the channel.
func (b *Bridge) NextMsg() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-b.msgs
		if !ok {
			return nil
		}
		return msg
	}
}
