package eod

import (
	"time"

	"auto-trader/internal/interfaces"
)

// DefaultCutoff is 23:55 UTC, shortly before the journal rolls to a new day.
const DefaultCutoff = 23*time.Hour + 55*time.Minute

type Option func(*summarizer)

// WithCutoff sets the time of day (UTC) after which ShouldRunNow fires.
func WithCutoff(at time.Duration) Option {
	return func(s *summarizer) {
		s.cutoff = at
	}
}

func NewSummarizer(journalDir string, opts ...Option) interfaces.EodSummarizer {
	s := &summarizer{dir: journalDir, cutoff: DefaultCutoff}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
