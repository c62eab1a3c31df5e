package tui

import (
	"context"
	"io"
	"strconv"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
)

var _ ports.Telemetry = (*Telemetry)(nil)

// Telemetry forwards every vertex to an inner telemetry and streams its
// progress as Bubble Tea messages.
type Telemetry struct {
	inner ports.Telemetry

	mu     sync.RWMutex
	events chan tea.Msg
	closed bool
	seq    uint64
}

// NewTelemetry creates a Telemetry that also records to inner.
func NewTelemetry(inner ports.Telemetry) *Telemetry {
	return &Telemetry{
		inner:  inner,
		events: make(chan tea.Msg, 64),
	}
}

// Events returns the message stream. It is closed by Close.
func (t *Telemetry) Events() <-chan tea.Msg {
	return t.events
}

// Record starts a vertex on the inner telemetry and announces it.
func (t *Telemetry) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	ctx, inner := t.inner.Record(ctx, name)

	t.mu.Lock()
	t.seq++
	id := strconv.FormatUint(t.seq, 10)
	t.mu.Unlock()

	v := &Vertex{id: id, inner: inner, t: t}
	t.send(MsgVertexStarted{ID: id, Name: name})
	return ports.ContextWithVertex(ctx, v), v
}

// Close ends the message stream. The inner telemetry is left open.
func (t *Telemetry) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.events)
	}
	return nil
}

// send drops messages once the stream is closed.
func (t *Telemetry) send(msg tea.Msg) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	t.events <- msg
}

// Vertex is one generation streamed to the UI.
type Vertex struct {
	id    string
	inner ports.Vertex
	t     *Telemetry
}

// Stdout returns the inner vertex output stream.
func (v *Vertex) Stdout() io.Writer {
	return v.inner.Stdout()
}

// Stderr returns the inner vertex error stream.
func (v *Vertex) Stderr() io.Writer {
	return v.inner.Stderr()
}

// Log records msg. Warnings and errors are also shown in the UI.
func (v *Vertex) Log(level domain.LogLevel, msg string) {
	v.inner.Log(level, msg)
	if level >= domain.LogLevelWarn {
		v.t.send(MsgVertexLog{ID: v.id, Text: msg})
	}
}

// Cached marks the vertex as satisfied from cache.
func (v *Vertex) Cached() {
	v.inner.Cached()
	v.t.send(MsgVertexCached{ID: v.id})
}

// Complete marks the vertex as finished.
func (v *Vertex) Complete(err error) {
	v.inner.Complete(err)
	v.t.send(MsgVertexCompleted{ID: v.id, Err: err})
}

// WaitForEvent returns a Bubble Tea command that reads the next message from
// events. It returns MsgStreamEnded once events is closed.
func WaitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return MsgStreamEnded{}
		}
		return msg
	}
}
