// cmd/migrate/main.go
//
// Applies the SQL migrations in migrations/ against the configured
// database. Usage: migrate [up|down|version].
package main

import (
    "errors"
    "os"

    "github.com/golang-migrate/migrate/v4"
    _ "github.com/golang-migrate/migrate/v4/database/postgres"
    _ "github.com/golang-migrate/migrate/v4/source/file"
    "github.com/joho/godotenv"

    "github.com/unclebandit/sendmulticamp/internal/db"
    "github.com/unclebandit/sendmulticamp/internal/logger"
)

func main() {
    _ = godotenv.Load()
    log := logger.FromEnv()

    direction := "up"
    if len(os.Args) > 1 {
        direction = os.Args[1]
    }

    m, err := migrate.New("file://migrations", db.URL())
    if err != nil {
        log.Fatal().Err(err).Msg("migrate setup failed")
    }
    defer m.Close()

    switch direction {
    case "up":
        err = m.Up()
    case "down":
        err = m.Steps(-1)
    case "version":
        version, dirty, verr := m.Version()
        if verr != nil {
            log.Fatal().Err(verr).Msg("version lookup failed")
        }
        log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migration version")
        return
    default:
        log.Fatal().Str("direction", direction).Msg("unknown direction, want up, down or version")
    }

    if err != nil && !errors.Is(err, migrate.ErrNoChange) {
        log.Fatal().Err(err).Str("direction", direction).Msg("migration failed")
    }
    log.Info().Str("direction", direction).Msg("migrations applied")
}
