package main

import (
	"context"
	"fmt"
	"time"

	"auto-trader/internal/logger"
	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
)

type equityRefresher interface {
	Refresh(ctx context.Context) (decimal.Decimal, bool, error)
}

// run ticks immediately, then every poll interval, until ctx is done or
// iterations ticks have run. iterations <= 0 means unbounded.
func (b *bot) run(ctx context.Context, iterations int) error {
	ticker := time.NewTicker(b.cfg.PollInterval())
	defer ticker.Stop()

	for done := 0; iterations <= 0 || done < iterations; done++ {
		if done > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		b.tick(ctx)
		b.checkEOD(ctx, time.Now())
	}
	return nil
}

// tick never fails the loop: errors are logged and notified.
func (b *bot) tick(ctx context.Context) {
	if b.equity != nil {
		if _, _, err := b.equity.Refresh(ctx); err != nil {
			logger.Warn(ctx, "Day P&L refresh failed", "error", err)
		}
	}

	res, err := b.engine.Step(ctx)
	if msg := tickMessage(b.cfg.DryRun, b.cfg.Symbol, res, err); msg != "" {
		b.notifier.SendMessage(ctx, msg)
	}
	if err != nil || res == nil {
		return
	}
	if b.out != nil {
		_ = b.out.Encode(res)
	}
}

func (b *bot) checkEOD(ctx context.Context, now time.Time) {
	if ok, _ := b.eod.ShouldRunNow(now); ok {
		b.summarize(ctx, now)
	}
}

func (b *bot) summarize(ctx context.Context, day time.Time) {
	if p, err := b.eod.SummarizeDay(ctx, day); err == nil && p != "" {
		logger.Info(ctx, "EOD CSV written", "path", p)
	}
}

// tickMessage is the notification for a tick, or "" when nothing is worth
// sending: executed orders, guardrail blocks and failures are.
func tickMessage(dryRun bool, symbol string, res *types.TickResult, err error) string {
	prefix := ""
	if dryRun {
		prefix = "[DRY_RUN] "
	}
	if err != nil {
		return fmt.Sprintf("%s%s tick failed: %v", prefix, symbol, err)
	}
	if res == nil {
		return ""
	}
	if len(res.Execution.Orders) > 0 {
		o := res.Execution.Orders[0]
		return fmt.Sprintf("%s%s %s %s qty=%s @ %s (%s, order %s)",
			prefix, o.Side, res.Symbol, res.Signal.Signal, o.Quantity, o.RefPrice, o.Status, o.OrderID)
	}
	if !res.Risk.Allow && res.Risk.Severity == types.SeverityBlock {
		return fmt.Sprintf("%s%s blocked: %s", prefix, res.Symbol, res.Risk.Reason)
	}
	return ""
}
