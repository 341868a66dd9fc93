package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/lumistone/atelier/internal/config"
	"github.com/lumistone/atelier/internal/observability"
	"github.com/lumistone/atelier/internal/server"
	"github.com/lumistone/atelier/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,

		// HTTP surface plus the functional domains it serves
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
