package expense

import (
	"github.com/smallbiznis/subshare/internal/expense/service"
	"go.uber.org/fx"
)

var Module = fx.Module("expense",
	fx.Provide(
		service.NewService,
	),
)
