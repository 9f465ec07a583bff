package iopipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats is a snapshot of pipeline counters.
type Stats struct {
	Fetched    int64
	Cleaned    int64
	Rejected   int64
	Duplicates int64
	Embedded   int64
	Written    int64

	// LastID is the highest raw record id the reader fetched; it is the
	// checkpoint for a resumed run.
	LastID int64
}

// counters hold the live pipeline counters, updated from all stages.
type counters struct {
	fetched    atomic.Int64
	cleaned    atomic.Int64
	rejected   atomic.Int64
	duplicates atomic.Int64
	embedded   atomic.Int64
	written    atomic.Int64
	lastID     atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Fetched:    c.fetched.Load(),
		Cleaned:    c.cleaned.Load(),
		Rejected:   c.rejected.Load(),
		Duplicates: c.duplicates.Load(),
		Embedded:   c.embedded.Load(),
		Written:    c.written.Load(),
		LastID:     c.lastID.Load(),
	}
}

// noteLastID advances the checkpoint; ids arrive in order from the
// keyset reader but the compare loop keeps it safe regardless.
func (c *counters) noteLastID(id int64) {
	for {
		cur := c.lastID.Load()
		if id <= cur || c.lastID.CompareAndSwap(cur, id) {
			return
		}
	}
}

// monitor logs throughput every interval until ctx is cancelled.
func (c *counters) monitor(
	ctx context.Context,
	log *slog.Logger,
	interval time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := c.snapshot()
			elapsed := time.Since(start).Seconds()
			speed := int64(float64(s.Written) / elapsed)
			log.Info("pipeline progress",
				"fetched", humanize.Comma(s.Fetched),
				"cleaned", humanize.Comma(s.Cleaned),
				"rejected", humanize.Comma(s.Rejected),
				"written", humanize.Comma(s.Written),
				"records/sec", humanize.Comma(speed),
			)
		}
	}
}
