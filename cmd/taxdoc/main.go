package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxdoc/internal/clock"
	"github.com/smallbiznis/taxdoc/internal/config"
	"github.com/smallbiznis/taxdoc/internal/logger"
	"github.com/smallbiznis/taxdoc/internal/migration"
	"github.com/smallbiznis/taxdoc/internal/server"
	"github.com/smallbiznis/taxdoc/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		migration.Module,
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
