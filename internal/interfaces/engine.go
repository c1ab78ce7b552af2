package interfaces

import (
	"context"

	"auto-trader/internal/types"
)

type Engine interface {
	Step(ctx context.Context) (*types.TickResult, error)
}
