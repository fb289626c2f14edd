// Package worker runs the background jobs that expire lapsed holds and
// verification windows.
package worker

import (
	"context"
	"log/slog"
	"time"

	"tidebook/internal/pkg/config"
	"tidebook/internal/usecase/commands"
)

// Sweeper periodically expires lapsed holds and verification windows. Each
// pass is independent; an error in one sweep is logged and the ticker keeps
// going.
type Sweeper struct {
	holds    commands.HoldCommands
	payments commands.PaymentCommands
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(holds commands.HoldCommands, payments commands.PaymentCommands, cfg config.Config) *Sweeper {
	return &Sweeper{
		holds:    holds,
		payments: payments,
		interval: cfg.Booking.SweepInterval,
	}
}

func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sweeper) sweep(ctx context.Context) {
	if n, err := s.holds.ExpireHolds(ctx); err != nil {
		slog.Error("hold sweep failed", "error", err.Error())
	} else if n > 0 {
		slog.Info("expired lapsed holds", "count", n)
	}

	if n, err := s.payments.ExpireVerifications(ctx); err != nil {
		slog.Error("verification sweep failed", "error", err.Error())
	} else if n > 0 {
		slog.Info("expired lapsed verifications", "count", n)
	}
}
