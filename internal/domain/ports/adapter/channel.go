package adapter

import "context"

// MessageHandler receives one raw inbound push message, unmodified.
type MessageHandler func(raw []byte)

// DownHandler is invoked once when the channel gives up reconnecting.
type DownHandler func(err error)

// NotificationChannel is the port for the persistent push channel that
// delivers asynchronous job status updates.
type NotificationChannel interface {
	// Connect establishes the channel and starts delivering messages to the
	// registered handler. It returns once the first connection attempt
	// resolves; delivery is push-driven from then on.
	Connect(ctx context.Context) error

	// OnMessage registers the single message handler. Must be called before
	// Connect.
	OnMessage(h MessageHandler)

	// OnDown registers a handler for permanent channel failure.
	OnDown(h DownHandler)

	// Disconnect tears the channel down; no reconnection is attempted after
	// a client-initiated disconnect.
	Disconnect() error
}
