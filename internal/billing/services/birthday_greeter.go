package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/fleetsvc/cars-bills/internal/billing/ports"
	"github.com/fleetsvc/cars-bills/internal/middleware"
)

// greetingHour is the local hour of day at which birthday greetings run.
const greetingHour = 14

// BirthdayGreeter runs the daily birthday congratulation job.
type BirthdayGreeter struct {
	driverService ports.DriverSvcFacade
	logger        *slog.Logger
	now           func() time.Time
}

// NewBirthdayGreeter creates a new BirthdayGreeter.
func NewBirthdayGreeter(driverService ports.DriverSvcFacade, logger *slog.Logger) *BirthdayGreeter {
	return &BirthdayGreeter{
		driverService: driverService,
		logger:        logger,
		now:           time.Now,
	}
}

// nextRun returns the next occurrence of the greeting hour after t.
func (g *BirthdayGreeter) nextRun(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), greetingHour, 0, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks until ctx is cancelled, firing the greeting job once a day at
// the greeting hour.
func (g *BirthdayGreeter) Run(ctx context.Context) {
	ctx = middleware.WithLogger(ctx, g.logger)
	for {
		wait := g.nextRun(g.now()).Sub(g.now())
		g.logger.Info("Birthday greeter sleeping", slog.Duration("until_next_run", wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := g.driverService.CongratulateBirthdays(ctx); err != nil {
			g.logger.Error("Birthday greeting run failed", slog.String("error", err.Error()))
		}
	}
}
