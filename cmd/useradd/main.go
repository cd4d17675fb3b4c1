// Command useradd creates player accounts in the configured database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"transcendent/backend/internal/config"
	"transcendent/backend/internal/database"
	"transcendent/backend/internal/logger"
	"transcendent/backend/internal/user"
)

func main() {
	var (
		username string
		password string
		file     string
	)
	pflag.StringVarP(&username, "username", "u", "", "account name")
	pflag.StringVarP(&password, "password", "p", "", "account password")
	pflag.StringVarP(&file, "file", "f", "", "YAML file listing accounts to create")
	pflag.Parse()

	if file == "" && (username == "" || password == "") {
		fmt.Fprintln(os.Stderr, "usage: useradd -u NAME -p PASSWORD | useradd -f users.yaml")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zapLogger, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, logger.WithComponent(zapLogger, "database"))
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	users := user.NewStore(db, cfg.BcryptCost)

	if file != "" {
		created, err := user.LoadUsersFromYAML(ctx, file, users)
		if err != nil {
			zapLogger.Fatal("Failed to import accounts", zap.String("file", file), zap.Error(err))
		}
		zapLogger.Info("Imported accounts", zap.Int("created", created))
		return
	}

	u, err := users.Create(ctx, username, password)
	if err != nil {
		zapLogger.Fatal("Failed to create account", zap.String("username", username), zap.Error(err))
	}
	zapLogger.Info("Created account", zap.Uint("id", u.ID), zap.String("username", u.Username))
}
