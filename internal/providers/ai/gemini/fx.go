package gemini

import (
	"github.com/smallbiznis/subshare/internal/config"
	"github.com/smallbiznis/subshare/internal/providers/ai"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewFromConfig(cfg config.Config, log *zap.Logger) ai.Verifier {
	return New(cfg.GeminiAPIKey, cfg.GeminiModel, log)
}

// Module wires the Gemini client as the application's ai.Verifier.
var Module = fx.Module("providers.gemini",
	fx.Provide(NewFromConfig),
)
