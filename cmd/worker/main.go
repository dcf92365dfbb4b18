// cmd/worker/main.go
//
// Standalone dispatch worker. The API server publishes campaign dispatch
// jobs to RabbitMQ when AMQP_URL is set; this process consumes them and
// executes the runs, so slow sends never share a process with request
// handling.
package main

import (
    "os"

    "github.com/joho/godotenv"

    "github.com/unclebandit/sendmulticamp/internal/db"
    "github.com/unclebandit/sendmulticamp/internal/dispatch"
    "github.com/unclebandit/sendmulticamp/internal/logger"
    "github.com/unclebandit/sendmulticamp/internal/mailer"
    "github.com/unclebandit/sendmulticamp/internal/queue"
    "github.com/unclebandit/sendmulticamp/internal/repository"
)

func main() {
    _ = godotenv.Load()
    log := logger.FromEnv()

    url := os.Getenv("AMQP_URL")
    if url == "" {
        log.Fatal().Msg("AMQP_URL is required for the worker")
    }

    conn, err := db.Open()
    if err != nil {
        log.Fatal().Err(err).Msg("database connection failed")
    }
    defer conn.Close()

    q, err := queue.NewAMQPQueue(url, log)
    if err != nil {
        log.Fatal().Err(err).Msg("amqp connection failed")
    }
    defer q.Close()

    dispatcher := &dispatch.Dispatcher{
        Campaigns:  &repository.CampaignRepository{DB: conn},
        Transports: &repository.SMTPServerRepository{DB: conn},
        Ledger:     &repository.CampaignSendRepository{DB: conn},
        Resolver: &dispatch.Resolver{
            Lists:        &repository.ListRepository{DB: conn},
            Subscribers:  &repository.SubscriberRepository{DB: conn},
            Suppressions: &repository.SuppressionRepository{DB: conn},
        },
        Mailer: &mailer.SMTPSender{},
        Queue:  q,
        Log:    log,
    }

    if err := q.Subscribe(dispatch.Topic, dispatcher.Subscriber()); err != nil {
        log.Fatal().Err(err).Msg("dispatch subscription failed")
    }

    log.Info().Str("topic", dispatch.Topic).Msg("dispatch worker running")
    select {}
}
