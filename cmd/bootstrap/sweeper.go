package bootstrap

import (
	"context"

	"tidebook/internal/worker"

	"go.uber.org/fx"
)

var SweeperModule = fx.Module("sweeper",
	fx.Provide(
		worker.NewSweeper,
	),
	fx.Invoke(StartSweeper),
)

func StartSweeper(lc fx.Lifecycle, s *worker.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			s.Stop()
			return nil
		},
	})
}
