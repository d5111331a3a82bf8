package main

import (
	"github.com/tastemap/backend/internal/server"
	"github.com/tastemap/backend/internal/util"
	"github.com/tastemap/backend/pkg/logger"
	"github.com/tastemap/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
