package interfaces

import (
	"context"

	"auto-trader/internal/types"
)

type Journal interface {
	RecordTick(ctx context.Context, tick *types.TickResult) error
	Close() error
}
