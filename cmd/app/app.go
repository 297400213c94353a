package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/merchantops/shopsync-backend/internal/app"
	config "github.com/merchantops/shopsync-backend/internal/cfg"
	"github.com/merchantops/shopsync-backend/pkg/logger"
)

//	@title			Shop Sync API
//	@version		1.0
//	@description	Сверка и синхронизация каталогов между магазинами

//	@BasePath	/api/v1

func main() {
	log := logger.NewSlogLogger()

	// .env опционален: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	if err := app.Run(cfg, log); err != nil {
		os.Exit(1)
	}
}
