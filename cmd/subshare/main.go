package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/subshare/internal/clock"
	"github.com/smallbiznis/subshare/internal/config"
	"github.com/smallbiznis/subshare/internal/credentials"
	"github.com/smallbiznis/subshare/internal/expense"
	"github.com/smallbiznis/subshare/internal/logger"
	"github.com/smallbiznis/subshare/internal/migration"
	"github.com/smallbiznis/subshare/internal/observability"
	"github.com/smallbiznis/subshare/internal/providers/ai/gemini"
	"github.com/smallbiznis/subshare/internal/reminder"
	"github.com/smallbiznis/subshare/internal/seed"
	"github.com/smallbiznis/subshare/internal/server"
	"github.com/smallbiznis/subshare/internal/stats"
	"github.com/smallbiznis/subshare/internal/subscription"
	"github.com/smallbiznis/subshare/internal/verification"
	"github.com/smallbiznis/subshare/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,

		// Domains
		gemini.Module,
		subscription.Module,
		verification.Module,
		expense.Module,
		stats.Module,
		reminder.Module,
		credentials.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
