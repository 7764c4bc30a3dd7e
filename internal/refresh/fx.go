package refresh

import (
	"context"

	"github.com/smallbiznis/trueup/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("refresh",
	fx.Provide(func(p Params, cfg config.Config) *Refresher {
		return New(p, cfg.RefreshInterval)
	}),
	fx.Invoke(StartRefresher),
)

func StartRefresher(lc fx.Lifecycle, cfg config.Config, r *Refresher) {
	if cfg.RefreshInterval <= 0 {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go r.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
