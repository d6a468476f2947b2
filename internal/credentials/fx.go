package credentials

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("credentials",
	fx.Provide(NewGuard),
	fx.Invoke(func(lc fx.Lifecycle, g *Guard) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				g.Close()
				return nil
			},
		})
	}),
)
