package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/checkout"
	"github.com/smallbiznis/trueup/internal/clock"
	"github.com/smallbiznis/trueup/internal/config"
	"github.com/smallbiznis/trueup/internal/invoice"
	"github.com/smallbiznis/trueup/internal/logger"
	"github.com/smallbiznis/trueup/internal/migration"
	"github.com/smallbiznis/trueup/internal/payoutaccount"
	"github.com/smallbiznis/trueup/internal/processor"
	"github.com/smallbiznis/trueup/internal/reconcile"
	"github.com/smallbiznis/trueup/internal/refresh"
	"github.com/smallbiznis/trueup/internal/server"
	"github.com/smallbiznis/trueup/internal/subscription"
	"github.com/smallbiznis/trueup/internal/webhook"
	"github.com/smallbiznis/trueup/internal/workorder"
	"github.com/smallbiznis/trueup/pkg/db"
	"github.com/smallbiznis/trueup/pkg/telemetry"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		telemetry.Module,
		migration.Module,

		// Processor integration
		processor.Module,
		reconcile.Module,
		webhook.Module,
		refresh.Module,

		// Functional domains
		subscription.Module,
		payoutaccount.Module,
		workorder.Module,
		invoice.Module,
		checkout.Module,

		// HTTP surface
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
