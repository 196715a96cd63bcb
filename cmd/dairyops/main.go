package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/clock"
	"github.com/freshvale/dairyops/internal/config"
	"github.com/freshvale/dairyops/internal/migration"
	"github.com/freshvale/dairyops/internal/observability"
	"github.com/freshvale/dairyops/internal/server"
	"github.com/freshvale/dairyops/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
