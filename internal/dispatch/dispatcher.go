// internal/dispatch/dispatcher.go
package dispatch

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    "github.com/rs/zerolog"
    "golang.org/x/time/rate"

    "github.com/unclebandit/sendmulticamp/internal/apperrors"
    "github.com/unclebandit/sendmulticamp/internal/mailer"
    "github.com/unclebandit/sendmulticamp/internal/metrics"
    "github.com/unclebandit/sendmulticamp/internal/model"
    "github.com/unclebandit/sendmulticamp/internal/repository"
)

// Topic is the queue topic carrying dispatch jobs.
const Topic = "campaign_dispatch"

// DefaultSendInterval is the minimum delay between consecutive delivery
// attempts within one run.
const DefaultSendInterval = 100 * time.Millisecond

// Job is the fire-and-forget handoff between the trigger and the run.
type Job struct {
    CampaignID string `json:"campaign_id"`
    UserID     string `json:"user_id"`
}

// Publisher is the slice of the queue the dispatcher needs.
type Publisher interface {
    Publish(topic string, payload any) error
}

// Dispatcher owns the campaign send state machine: synchronous
// precondition checks and the draft-to-sending transition on trigger, then
// one sequential background run per campaign that delivers to every
// eligible recipient and finishes the campaign as sent.
type Dispatcher struct {
    Campaigns  repository.CampaignRepositoryInterface
    Transports repository.SMTPServerRepositoryInterface
    Ledger     repository.CampaignSendRepositoryInterface
    Resolver   *Resolver
    Mailer     mailer.Sender
    Queue      Publisher
    Log        zerolog.Logger

    // SendInterval overrides DefaultSendInterval, mainly for tests.
    SendInterval time.Duration
}

// StartResult acknowledges an accepted trigger.
type StartResult struct {
    CampaignID string `json:"campaign_id"`
    Total      int    `json:"total"`
}

// Start validates a send request and, if every precondition holds, moves
// the campaign to "sending" and enqueues the run. It returns before any
// delivery is attempted; the run proceeds independently of the request.
//
// Precondition failures (campaign not found or foreign-owned, campaign
// already sending, empty eligible set, no usable transport) are returned
// synchronously with no state mutated.
func (d *Dispatcher) Start(campaignID, userID string) (*StartResult, error) {
    campaign, err := d.Campaigns.GetByID(campaignID, userID)
    if err != nil {
        return nil, err
    }
    if campaign.Status == model.CampaignSending {
        return nil, apperrors.ErrAlreadySending
    }

    recipients, err := d.Resolver.Resolve(campaign.ListID, userID)
    if err != nil {
        return nil, err
    }
    if len(recipients) == 0 {
        return nil, apperrors.ErrEmptyRecipients
    }

    transports, err := d.Transports.ListActive(userID)
    if err != nil {
        return nil, err
    }
    // Quota-exhausted transports are active but unusable; a pool that
    // cannot take a single send fails the trigger up front.
    if _, err := NewTransportPool(transports, d.Transports); err != nil {
        return nil, err
    }

    if err := d.Campaigns.MarkSending(campaignID, len(recipients)); err != nil {
        return nil, err
    }

    if err := d.Queue.Publish(Topic, Job{CampaignID: campaignID, UserID: userID}); err != nil {
        return nil, err
    }

    d.Log.Info().
        Str("campaign_id", campaignID).
        Int("recipients", len(recipients)).
        Msg("campaign dispatch accepted")

    return &StartResult{CampaignID: campaignID, Total: len(recipients)}, nil
}

// Subscriber adapts Run into a queue handler.
func (d *Dispatcher) Subscriber() func(payload any) error {
    return func(payload any) error {
        switch job := payload.(type) {
        case Job:
            return d.Run(job.CampaignID, job.UserID)
        case *Job:
            return d.Run(job.CampaignID, job.UserID)
        case []byte:
            // Deliveries arriving over AMQP are JSON bytes.
            var decoded Job
            if err := json.Unmarshal(job, &decoded); err != nil {
                d.Log.Warn().Err(err).Msg("dispatch subscriber: undecodable payload")
                return nil
            }
            return d.Run(decoded.CampaignID, decoded.UserID)
        default:
            d.Log.Warn().Msgf("dispatch subscriber: unexpected payload %T", payload)
            return nil
        }
    }
}

// Run executes one dispatch run to completion. It expects the campaign to
// be in the sending state (Start or a queue worker put it there) and
// always terminates the campaign as sent, no matter how many individual
// deliveries failed. Per-recipient errors go to the ledger; bookkeeping
// errors are logged and never abort the run.
func (d *Dispatcher) Run(campaignID, userID string) error {
    campaign, err := d.Campaigns.GetByID(campaignID, userID)
    if err != nil {
        return err
    }
    if campaign.Status != model.CampaignSending {
        d.Log.Warn().
            Str("campaign_id", campaignID).
            Str("status", campaign.Status).
            Msg("dispatch run skipped: campaign is not sending")
        return nil
    }

    recipients, err := d.Resolver.Resolve(campaign.ListID, userID)
    if err != nil {
        return err
    }

    transports, err := d.Transports.ListActive(userID)
    if err != nil {
        return err
    }
    pool, err := NewTransportPool(transports, d.Transports)
    if err != nil {
        // Quota ran out between trigger and pickup. Nothing was
        // attempted; close the run out with every recipient skipped.
        d.finish(campaignID, recipients, 0)
        return nil
    }

    interval := d.SendInterval
    if interval <= 0 {
        interval = DefaultSendInterval
    }
    throttle := rate.NewLimiter(rate.Every(interval), 1)
    ctx := context.Background()

    log := d.Log.With().Str("campaign_id", campaignID).Logger()
    var sent, failed int

    for i := range recipients {
        sub := &recipients[i]

        // Fixed minimum delay between consecutive attempts. The limiter
        // starts with one token, so the first attempt is not delayed;
        // waiting up front means the error paths below pay the delay too.
        _ = throttle.Wait(ctx)

        server, err := pool.AcquireNext()
        if err != nil {
            if errors.Is(err, apperrors.ErrPoolExhausted) {
                log.Info().Int("remaining", len(recipients)-i).Msg("transport pool exhausted, truncating run")
                d.finish(campaignID, recipients, i)
                log.Info().Int("sent", sent).Int("failed", failed).Msg("campaign dispatch completed")
                return nil
            }
            // Quota store failure: treat like a delivery failure for
            // this recipient and keep going.
            d.record(log, campaignID, sub.ID, model.SendFailed, err.Error())
            failed++
            continue
        }

        msg := RenderMessage(campaign, sub)
        if err := d.Mailer.Send(ctx, server, msg); err != nil {
            if relErr := pool.Release(server); relErr != nil {
                log.Error().Err(relErr).Str("server_id", server.ID).Msg("failed to release quota slot")
            }
            d.record(log, campaignID, sub.ID, model.SendFailed, err.Error())
            failed++
        } else {
            d.record(log, campaignID, sub.ID, model.SendSent, "")
            sent++
        }
    }

    d.finish(campaignID, recipients, len(recipients))
    log.Info().Int("sent", sent).Int("failed", failed).Msg("campaign dispatch completed")
    return nil
}

// record writes one ledger row. A failed write is a known consistency
// risk for that iteration's bookkeeping, logged but never fatal.
func (d *Dispatcher) record(log zerolog.Logger, campaignID, subscriberID, status, errorMessage string) {
    if err := d.Ledger.RecordOutcome(campaignID, subscriberID, status, errorMessage); err != nil {
        log.Error().Err(err).
            Str("subscriber_id", subscriberID).
            Str("status", status).
            Msg("failed to record send outcome")
        return
    }
    metrics.Deliveries.WithLabelValues(status).Inc()
}

// finish marks unattempted recipients (everything from index attempted on)
// as skipped and terminates the campaign as sent.
func (d *Dispatcher) finish(campaignID string, recipients []model.Subscriber, attempted int) {
    log := d.Log.With().Str("campaign_id", campaignID).Logger()

    for i := attempted; i < len(recipients); i++ {
        d.record(log, campaignID, recipients[i].ID, model.SendSkipped, "daily sending limit reached on all transports")
    }

    if err := d.Campaigns.MarkSent(campaignID); err != nil {
        log.Error().Err(err).Msg("failed to mark campaign sent")
    }
    metrics.DispatchRuns.Inc()
}
