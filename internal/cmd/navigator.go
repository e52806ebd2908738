package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/felixgeelhaar/issuehub/internal/api"
	"github.com/felixgeelhaar/issuehub/internal/events"
)

// SessionExpiredNotice is printed once when the server rejects the token
const SessionExpiredNotice = "Session expired or invalid. Run 'issuehub auth login'."

// Navigator turns session signals into user-facing guidance. It is the
// CLI counterpart of redirecting to the login screen.
type Navigator struct {
	out io.Writer

	mu          sync.Mutex
	notified    bool
	loggedOut   bool
	unsubscribe []func()
}

// NewNavigator writes its notices to out
func NewNavigator(out io.Writer) *Navigator {
	return &Navigator{out: out}
}

// Attach subscribes to the session events on bus
func (n *Navigator) Attach(bus *events.Bus) {
	n.unsubscribe = append(n.unsubscribe,
		bus.Subscribe(events.EventUnauthenticated, "navigator", n.onUnauthenticated),
		bus.Subscribe(events.EventLogout, "navigator", n.onLogout),
	)
}

// Detach removes the subscriptions made by Attach
func (n *Navigator) Detach() {
	for _, unsubscribe := range n.unsubscribe {
		unsubscribe()
	}
	n.unsubscribe = nil
}

// Notified reports whether the expiry notice was printed
func (n *Navigator) Notified() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notified
}

func (n *Navigator) onUnauthenticated(_ context.Context, e *events.Event) {
	// Failed credentials on login or signup are reported by the command
	if api.IsAuthBoundary(e.GetString(events.KeyBoundary)) {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.notified || n.loggedOut {
		return
	}
	n.notified = true
	fmt.Fprintln(n.out, SessionExpiredNotice)
}

func (n *Navigator) onLogout(context.Context, *events.Event) {
	n.mu.Lock()
	n.loggedOut = true
	n.mu.Unlock()
}
