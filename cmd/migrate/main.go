package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"go-timeoff/internal/app"
	"go-timeoff/internal/shared/config"
	"go-timeoff/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded SQL migrations",
}

var cfg *config.Config

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := app.NewLogger(cfg, "migrate")
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(
		gooseCommand("up", "migrate to the latest version"),
		gooseCommand("down", "roll back the latest version"),
		gooseCommand("status", "print the state of every migration"),
	)
}

func gooseCommand(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			zap.L().Info("running goose", zap.String("command", name))
			return goose.RunContext(cmd.Context(), name, db, ".")
		},
	}
}

func open() (*sql.DB, error) {
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("goose: open db: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose: ping db: %w", err)
	}
	return db, nil
}
