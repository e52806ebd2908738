package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/issuehub/internal/events"
)

// Adapter bridges the session event bus and the running dashboard
type Adapter struct {
	program     *tea.Program
	unsubscribe []func()
}

// NewAdapter creates a program for model
func NewAdapter(model Model, opts ...tea.ProgramOption) *Adapter {
	return &Adapter{
		program: tea.NewProgram(model, opts...),
	}
}

// Attach forwards session-ending events on bus to the dashboard
func (a *Adapter) Attach(bus *events.Bus) {
	if bus == nil {
		return
	}
	handler := SessionEndedHandler(a.program.Send)
	a.unsubscribe = append(a.unsubscribe,
		bus.Subscribe(events.EventUnauthenticated, "dashboard", handler),
		bus.Subscribe(events.EventLogout, "dashboard", handler),
	)
}

// Run blocks until the dashboard exits and detaches from the bus
func (a *Adapter) Run() error {
	defer a.detach()
	if _, err := a.program.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

func (a *Adapter) detach() {
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.unsubscribe = nil
}

// SessionEndedHandler turns session-ending events into UnauthenticatedMsg
func SessionEndedHandler(send func(tea.Msg)) events.Handler {
	return func(_ context.Context, _ *events.Event) {
		send(UnauthenticatedMsg{})
	}
}
