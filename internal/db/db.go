// internal/db/db.go
package db

import (
    "database/sql"
    "fmt"
    "os"

    _ "github.com/lib/pq"
)

// URL returns the Postgres connection string, taken from DATABASE_URL or
// assembled from the discrete DB_* environment variables.
func URL() string {
    if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
        return dsn
    }
    return fmt.Sprintf(
        "postgres://%s:%s@%s:%s/%s?sslmode=disable",
        os.Getenv("DB_USER"),
        os.Getenv("DB_PASSWORD"),
        os.Getenv("DB_HOST"),
        os.Getenv("DB_PORT"),
        os.Getenv("DB_NAME"),
    )
}

// Open connects to Postgres and verifies the connection.
func Open() (*sql.DB, error) {
    conn, err := sql.Open("postgres", URL())
    if err != nil {
        return nil, fmt.Errorf("open database: %w", err)
    }
    if err := conn.Ping(); err != nil {
        return nil, fmt.Errorf("ping database: %w", err)
    }
    return conn, nil
}
