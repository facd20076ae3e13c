package broadcast

import "context"

// Event is one cache-invalidation notice crossing window boundaries.
// Windows share no memory; these notices are their only view into each
// other's writes.
type Event struct {
	// Key is the semantic path of what changed, e.g. ["human", "42"].
	Key []string `json:"key"`
	// Window identifies the emitter so it can skip its own events.
	Window string `json:"window"`
}

// Bus is one window's endpoint on the cross-window channel. Publish
// delivers to every other window's endpoint; delivery back to the
// emitter is filtered by window identity, not by the transport.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe registers a handler for incoming events. The returned
	// func detaches it.
	Subscribe(handler func(Event)) (func(), error)
	Close() error
}

// Named cross-window signals for shared account state. They ride the
// same bus as invalidation notices.
var (
	SignalLoggedIn  = []string{"auth", "logged-in"}
	SignalLoggedOut = []string{"auth", "logged-out"}
)
