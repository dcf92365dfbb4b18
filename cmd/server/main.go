// cmd/server/main.go
package main

import (
    "net/http"
    "os"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/joho/godotenv"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/robfig/cron/v3"

    "github.com/unclebandit/sendmulticamp/internal/auth"
    "github.com/unclebandit/sendmulticamp/internal/controller"
    "github.com/unclebandit/sendmulticamp/internal/db"
    "github.com/unclebandit/sendmulticamp/internal/dispatch"
    "github.com/unclebandit/sendmulticamp/internal/handler"
    "github.com/unclebandit/sendmulticamp/internal/logger"
    "github.com/unclebandit/sendmulticamp/internal/mailer"
    "github.com/unclebandit/sendmulticamp/internal/metrics"
    "github.com/unclebandit/sendmulticamp/internal/queue"
    "github.com/unclebandit/sendmulticamp/internal/repository"
    "github.com/unclebandit/sendmulticamp/internal/service"
)

func main() {
    // .env is optional; a missing file means the OS environment is used.
    _ = godotenv.Load()
    log := logger.FromEnv()

    conn, err := db.Open()
    if err != nil {
        log.Fatal().Err(err).Msg("database connection failed")
    }
    defer conn.Close()

    userRepo := &repository.UserRepository{DB: conn}
    listRepo := &repository.ListRepository{DB: conn}
    subscriberRepo := &repository.SubscriberRepository{DB: conn}
    campaignRepo := &repository.CampaignRepository{DB: conn}
    serverRepo := &repository.SMTPServerRepository{DB: conn}
    suppressionRepo := &repository.SuppressionRepository{DB: conn}
    sendRepo := &repository.CampaignSendRepository{DB: conn}

    secret := os.Getenv("JWT_SECRET")
    if secret == "" {
        log.Fatal().Msg("JWT_SECRET is required")
    }
    authService := &auth.Service{Users: userRepo, Secret: []byte(secret)}

    smtpSender := &mailer.SMTPSender{}

    // Dispatch runs execute in-process by default; pointing AMQP_URL at a
    // broker hands them to cmd/worker instead.
    var q queue.Queue
    if url := os.Getenv("AMQP_URL"); url != "" {
        amqpQueue, err := queue.NewAMQPQueue(url, log)
        if err != nil {
            log.Fatal().Err(err).Msg("amqp connection failed")
        }
        defer amqpQueue.Close()
        q = amqpQueue
    } else {
        q = queue.NewInMemoryQueue(log)
    }

    dispatcher := &dispatch.Dispatcher{
        Campaigns:  campaignRepo,
        Transports: serverRepo,
        Ledger:     sendRepo,
        Resolver: &dispatch.Resolver{
            Lists:        listRepo,
            Subscribers:  subscriberRepo,
            Suppressions: suppressionRepo,
        },
        Mailer: smtpSender,
        Queue:  q,
        Log:    log,
    }
    if _, ok := q.(*queue.InMemoryQueue); ok {
        if err := q.Subscribe(dispatch.Topic, dispatcher.Subscriber()); err != nil {
            log.Fatal().Err(err).Msg("dispatch subscriber registration failed")
        }
    }

    // Daily quota reset at midnight. Deployments resetting the counters
    // elsewhere can turn this off.
    if os.Getenv("QUOTA_RESET_DISABLED") == "" {
        c := cron.New()
        if _, err := c.AddFunc("0 0 * * *", func() {
            n, err := serverRepo.ResetDailyCounts()
            if err != nil {
                log.Error().Err(err).Msg("daily quota reset failed")
                return
            }
            log.Info().Int64("transports", n).Msg("daily quota counters reset")
        }); err != nil {
            log.Fatal().Err(err).Msg("cron registration failed")
        }
        c.Start()
        defer c.Stop()
    }

    campaignService := &service.CampaignService{
        Campaigns:  campaignRepo,
        Lists:      listRepo,
        Sends:      sendRepo,
        Dispatcher: dispatcher,
    }

    authHandler := &handler.AuthHandler{Auth: authService, Users: userRepo}
    listHandler := &handler.ListHandler{Lists: listRepo, Subscribers: subscriberRepo}
    serverHandler := &handler.SMTPServerHandler{Servers: serverRepo, Mailer: smtpSender}
    suppressionHandler := &handler.SuppressionHandler{Suppressions: suppressionRepo}
    campaignController := &controller.CampaignController{Campaigns: campaignService}

    r := chi.NewRouter()
    r.Use(middleware.Recoverer)
    r.Use(metrics.Middleware)

    r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        w.Write([]byte(`{"status":"ok"}`))
    })
    r.Handle("/metrics", promhttp.Handler())

    r.Post("/api/auth/register", authHandler.Register)
    r.Post("/api/auth/login", authHandler.Login)

    r.Group(func(r chi.Router) {
        r.Use(authService.Middleware)

        r.Get("/api/auth/me", authHandler.Me)

        r.Get("/api/lists", listHandler.List)
        r.Post("/api/lists", listHandler.Create)
        r.Get("/api/lists/{listId}/subscribers", listHandler.ListSubscribers)
        r.Post("/api/lists/{listId}/subscribers", listHandler.AddSubscriber)

        r.Get("/api/campaigns", campaignController.List)
        r.Post("/api/campaigns", campaignController.Create)
        r.Get("/api/campaigns/{id}", campaignController.Get)
        r.Put("/api/campaigns/{id}", campaignController.Update)
        r.Delete("/api/campaigns/{id}", campaignController.Delete)
        r.Post("/api/campaigns/{id}/send", campaignController.Send)
        r.Get("/api/campaigns/{id}/progress", campaignController.Progress)
        r.Get("/api/campaigns/{id}/stats", campaignController.Stats)
        r.Post("/api/campaigns/{id}/duplicate", campaignController.Duplicate)
        r.Post("/api/campaigns/{id}/personalized-preview", campaignController.PersonalizedPreview)

        r.Get("/api/smtp-servers", serverHandler.List)
        r.Post("/api/smtp-servers", serverHandler.Create)
        r.Put("/api/smtp-servers/{id}", serverHandler.Update)
        r.Delete("/api/smtp-servers/{id}", serverHandler.Delete)
        r.Post("/api/smtp-servers/{id}/test", serverHandler.Test)

        r.Get("/api/blacklist", suppressionHandler.ListBlacklist)
        r.Post("/api/blacklist", suppressionHandler.AddToBlacklist)
        r.Delete("/api/blacklist/{id}", suppressionHandler.RemoveFromBlacklist)

        r.Get("/api/unsubscribe-list", suppressionHandler.ListUnsubscribes)
        r.Post("/api/unsubscribe-list", suppressionHandler.AddUnsubscribe)
        r.Delete("/api/unsubscribe-list/{id}", suppressionHandler.RemoveUnsubscribe)
    })

    port := os.Getenv("PORT")
    if port == "" {
        port = "8080"
    }
    log.Info().Str("port", port).Msg("server running")
    if err := http.ListenAndServe(":"+port, r); err != nil {
        log.Fatal().Err(err).Msg("server stopped")
    }
}
