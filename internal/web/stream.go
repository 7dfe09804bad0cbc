package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/druarnfield/rootprobe/internal/probe"
)

var upgrader = websocket.Upgrader{} // use default options

// streamEvent is one websocket frame: either a captured output line or
// the final outcome.
type streamEvent struct {
	Type    string         `json:"type"` // "line" or "outcome"
	Line    *probe.Line    `json:"line,omitempty"`
	Outcome *probe.Outcome `json:"outcome,omitempty"`
}

// SetStreamFactory installs a constructor for per-connection probe
// runners. Each websocket needs its own runner so captured lines flow
// to that connection only.
func (s *Server) SetStreamFactory(factory func(sink probe.Sink) probe.Runner) {
	s.streamFactory = factory
}

// handleProbeStream upgrades the connection and runs one probe,
// forwarding stdout/stderr lines as they arrive and closing with the
// final outcome.
func (s *Server) handleProbeStream(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if strings.TrimSpace(target) == "" {
		writeError(w, http.StatusBadRequest, "target must not be empty")
		return
	}

	backend, err := probe.ParseBackend(r.URL.Query().Get("backend"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	s.logger.Info("probe stream started",
		slog.String("remote", r.RemoteAddr),
		slog.String("target", target),
		slog.String("backend", string(backend)),
	)

	events := make(chan streamEvent, 100)

	runner := s.probes
	if s.streamFactory != nil {
		runner = s.streamFactory(func(line probe.Line) {
			events <- streamEvent{Type: "line", Line: &line}
		})
	}

	go func() {
		outcome := runner.Run(r.Context(), target, backend)
		events <- streamEvent{Type: "outcome", Outcome: &outcome}
		close(events)
	}()

	for ev := range events {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second)) //nolint:errcheck
		if err := conn.WriteJSON(ev); err != nil {
			s.logger.Info("probe stream client gone", slog.String("error", err.Error()))
			// Keep draining so the probe goroutine can finish.
			go func() {
				for range events {
				}
			}()
			return
		}
	}

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "probe finished")
	conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second)) //nolint:errcheck
}
