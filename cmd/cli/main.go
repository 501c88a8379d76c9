package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"catalog-service/internal/cli"
	"catalog-service/internal/repository"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
	"catalog-service/pkg/logger"
)

func main() {
	appConfig, err := config.Load("catalog-service")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	if err := logger.InitLogger(appConfig); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	defer log.Sync()

	db, err := database.Connect(appConfig)
	if err != nil {
		log.Fatal("Cannot start without a database connection", zap.Error(err))
	}
	defer database.Close(db)

	if err := repository.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	menu := cli.New(repository.NewStore(db, log), os.Stdin, os.Stdout)
	menu.Run(context.Background())
}
