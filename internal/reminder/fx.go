package reminder

import (
	"github.com/smallbiznis/subshare/internal/reminder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reminder",
	fx.Provide(
		service.NewService,
	),
)
