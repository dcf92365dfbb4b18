// cmd/seeder/main.go
//
// Loads the development fixtures in seed/ into the database.
package main

import (
    "os"

    "github.com/joho/godotenv"

    "github.com/unclebandit/sendmulticamp/internal/db"
    "github.com/unclebandit/sendmulticamp/internal/logger"
)

func main() {
    _ = godotenv.Load()
    log := logger.FromEnv()

    conn, err := db.Open()
    if err != nil {
        log.Fatal().Err(err).Msg("database connection failed")
    }
    defer conn.Close()

    seedFiles := []string{
        "seed/users.sql",
        "seed/lists.sql",
        "seed/subscribers.sql",
        "seed/smtp_servers.sql",
        "seed/campaigns.sql",
    }

    for _, file := range seedFiles {
        content, err := os.ReadFile(file)
        if err != nil {
            log.Fatal().Err(err).Str("file", file).Msg("failed to read seed file")
        }
        if _, err := conn.Exec(string(content)); err != nil {
            log.Fatal().Err(err).Str("file", file).Msg("failed to execute seed file")
        }
        log.Info().Str("file", file).Msg("seeded")
    }

    log.Info().Msg("database seeding completed")
}
