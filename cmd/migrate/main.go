// Package main applies pending SQL migrations from the migrations/
// directory using golang-migrate, replacing the ad hoc
// read-dir-then-exec-each-file loop the rest of the corpus hand-rolls: a
// real migration library tracks which files already ran and supports
// "down" migrations, which a sorted-glob-and-exec loop does not.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/evetabi/hotornot/internal/config"
)

func main() {
	direction := flag.String("direction", "up", `"up" or "down"`)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.MustLoad()

	m, err := migrate.New("file://migrations", "postgres://"+dsnToURL(cfg.DB.DSN))
	if err != nil {
		logger.Error("migrate: failed to initialize", "error", err)
		os.Exit(1)
	}

	switch *direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		logger.Error("migrate: unknown direction", "direction", *direction)
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("migrate: failed", "error", err)
		os.Exit(1)
	}

	logger.Info("migrate: complete", "direction", *direction)
}

// dsnToURL passes the config's key=value DSN straight through — lib/pq and
// golang-migrate's postgres driver both accept the same connection string
// shape, so no translation is needed beyond the scheme prefix added by the
// caller.
func dsnToURL(dsn string) string {
	return dsn
}
