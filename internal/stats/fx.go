package stats

import (
	"github.com/smallbiznis/subshare/internal/stats/service"
	"go.uber.org/fx"
)

var Module = fx.Module("stats",
	fx.Provide(
		service.NewService,
	),
)
