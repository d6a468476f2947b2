package verification

import (
	"context"

	"github.com/smallbiznis/subshare/internal/verification/domain"
	"github.com/smallbiznis/subshare/internal/verification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("verification",
	fx.Provide(service.NewService),
	fx.Invoke(func(lc fx.Lifecycle, svc domain.Service) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				svc.Close()
				return nil
			},
		})
	}),
)
