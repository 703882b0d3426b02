package portfolio

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler re-prices every portfolio on a cron schedule so valuations stay
// close to the feed even when nobody clicks refresh.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler wires the refresh sweep onto a cron spec (e.g. "@every 10m").
func NewScheduler(svc *Service, users UserLister, schedule string) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := svc.RefreshAll(ctx, users); err != nil {
			log.Error().Err(err).Msg("scheduled refresh sweep failed")
		}
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
