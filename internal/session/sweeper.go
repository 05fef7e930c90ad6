package session

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically expires idle sessions from a MemoryStore.
type Sweeper struct {
	cron *cron.Cron
}

// StartSweeper removes sessions idle for longer than ttl on the given cron
// spec (e.g. "@every 10m"). Call Stop on shutdown.
func StartSweeper(store *MemoryStore, ttl time.Duration, spec string, log *slog.Logger) (*Sweeper, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if n := store.Expire(time.Now().Add(-ttl)); n > 0 {
			log.Info("expired idle sessions", "count", n, "remaining", store.Len())
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return &Sweeper{cron: c}, nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
