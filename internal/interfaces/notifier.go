package interfaces

import "context"

// Notifier reports delivery as a bool; failures never abort a tick.
type Notifier interface {
	SendMessage(ctx context.Context, text string) bool
}
