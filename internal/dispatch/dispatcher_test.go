// internal/dispatch/dispatcher_test.go
package dispatch_test

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "testing"
    "time"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/unclebandit/sendmulticamp/internal/apperrors"
    "github.com/unclebandit/sendmulticamp/internal/dispatch"
    "github.com/unclebandit/sendmulticamp/internal/mailer"
    "github.com/unclebandit/sendmulticamp/internal/model"
)

type sentMail struct {
    To       string
    ServerID string
    At       time.Time
}

type fakeMailer struct {
    mu      sync.Mutex
    sends   []sentMail
    failFor map[string]error
}

func (m *fakeMailer) Send(_ context.Context, server *model.SMTPServer, msg mailer.Message) error {
    m.mu.Lock()
    defer m.mu.Unlock()

    if err, ok := m.failFor[msg.To]; ok {
        return err
    }
    m.sends = append(m.sends, sentMail{To: msg.To, ServerID: server.ID, At: time.Now()})
    return nil
}

func (m *fakeMailer) sent() []sentMail {
    m.mu.Lock()
    defer m.mu.Unlock()
    return append([]sentMail(nil), m.sends...)
}

type capturePublisher struct {
    mu   sync.Mutex
    jobs []dispatch.Job
}

func (p *capturePublisher) Publish(topic string, payload any) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if job, ok := payload.(dispatch.Job); ok {
        p.jobs = append(p.jobs, job)
    }
    return nil
}

// fixture wires a dispatcher against in-memory fakes for one user with one
// campaign targeting one list.
type fixture struct {
    dispatcher *dispatch.Dispatcher
    campaigns  *fakeCampaigns
    transports *fakeTransportStore
    ledger     *fakeLedger
    mailer     *fakeMailer
    publisher  *capturePublisher
}

func newFixture(subscribers []model.Subscriber, suppressions *stubSuppressions, servers []*model.SMTPServer) *fixture {
    campaigns := newFakeCampaigns(&model.Campaign{
        ID:          "c1",
        UserID:      "user-1",
        ListID:      "list-1",
        Name:        "Launch",
        Subject:     "Hello {{first_name}}",
        FromName:    "Acme",
        FromEmail:   "news@acme.test",
        HTMLContent: "<p>Hi {{first_name}}</p>",
        Status:      model.CampaignDraft,
    })
    transports := &fakeTransportStore{servers: servers}
    ledger := &fakeLedger{campaigns: campaigns}
    sender := &fakeMailer{failFor: map[string]error{}}
    publisher := &capturePublisher{}

    return &fixture{
        dispatcher: &dispatch.Dispatcher{
            Campaigns:  campaigns,
            Transports: transports,
            Ledger:     ledger,
            Resolver: &dispatch.Resolver{
                Lists:        &stubLists{list: &model.List{ID: "list-1", UserID: "user-1"}},
                Subscribers:  &stubSubscribers{subscribers: subscribers},
                Suppressions: suppressions,
            },
            Mailer:       sender,
            Queue:        publisher,
            Log:          zerolog.Nop(),
            SendInterval: time.Millisecond,
        },
        campaigns:  campaigns,
        transports: transports,
        ledger:     ledger,
        mailer:     sender,
        publisher:  publisher,
    }
}

func makeSubscribers(n int) []model.Subscriber {
    subs := make([]model.Subscriber, 0, n)
    for i := 1; i <= n; i++ {
        subs = append(subs, model.Subscriber{
            ID:        fmt.Sprintf("s%d", i),
            ListID:    "list-1",
            Email:     fmt.Sprintf("sub%d@example.com", i),
            FirstName: fmt.Sprintf("Sub%d", i),
            Status:    model.SubscriberActive,
        })
    }
    return subs
}

func oneServer(dailyLimit int) []*model.SMTPServer {
    return []*model.SMTPServer{
        {ID: "srv-1", UserID: "user-1", Name: "Primary", IsActive: true, DailyLimit: dailyLimit},
    }
}

func TestStartAcceptsAndEnqueues(t *testing.T) {
    f := newFixture(makeSubscribers(3), &stubSuppressions{blacklisted: []string{"sub2@example.com"}}, oneServer(0))

    result, err := f.dispatcher.Start("c1", "user-1")
    require.NoError(t, err)
    assert.Equal(t, 2, result.Total)

    c := f.campaigns.get("c1")
    assert.Equal(t, model.CampaignSending, c.Status)
    assert.Equal(t, 2, c.TotalSubscribers)
    assert.Zero(t, c.SentCount)

    require.Len(t, f.publisher.jobs, 1)
    assert.Equal(t, dispatch.Job{CampaignID: "c1", UserID: "user-1"}, f.publisher.jobs[0])

    // Nothing is delivered until the queued run executes.
    assert.Empty(t, f.mailer.sent())
}

func TestStartRejectsWhileSending(t *testing.T) {
    f := newFixture(makeSubscribers(2), &stubSuppressions{}, oneServer(0))

    _, err := f.dispatcher.Start("c1", "user-1")
    require.NoError(t, err)

    _, err = f.dispatcher.Start("c1", "user-1")
    assert.ErrorIs(t, err, apperrors.ErrAlreadySending)
    assert.Len(t, f.publisher.jobs, 1, "the second trigger must not enqueue")
}

func TestStartRejectsEmptyRecipientSet(t *testing.T) {
    f := newFixture(makeSubscribers(2), &stubSuppressions{
        blacklisted:  []string{"sub1@example.com"},
        unsubscribed: []string{"sub2@example.com"},
    }, oneServer(0))

    _, err := f.dispatcher.Start("c1", "user-1")
    assert.ErrorIs(t, err, apperrors.ErrEmptyRecipients)
    assert.Equal(t, model.CampaignDraft, f.campaigns.get("c1").Status, "a refused trigger mutates nothing")
}

func TestStartRejectsWithoutUsableTransport(t *testing.T) {
    exhausted := []*model.SMTPServer{
        {ID: "srv-1", UserID: "user-1", IsActive: true, DailyLimit: 50, EmailsSentToday: 50},
    }
    f := newFixture(makeSubscribers(2), &stubSuppressions{}, exhausted)

    _, err := f.dispatcher.Start("c1", "user-1")
    assert.ErrorIs(t, err, apperrors.ErrNoActiveTransports)
    assert.Equal(t, model.CampaignDraft, f.campaigns.get("c1").Status)
}

func TestStartRejectsForeignCampaign(t *testing.T) {
    f := newFixture(makeSubscribers(2), &stubSuppressions{}, oneServer(0))

    _, err := f.dispatcher.Start("c1", "intruder")
    assert.True(t, apperrors.IsNotFound(err))
}

func TestRunDeliversAndFinishes(t *testing.T) {
    f := newFixture(makeSubscribers(3), &stubSuppressions{blacklisted: []string{"sub2@example.com"}}, oneServer(0))

    _, err := f.dispatcher.Start("c1", "user-1")
    require.NoError(t, err)
    require.NoError(t, f.dispatcher.Run("c1", "user-1"))

    sent := f.mailer.sent()
    require.Len(t, sent, 2)
    assert.Equal(t, "sub1@example.com", sent[0].To)
    assert.Equal(t, "sub3@example.com", sent[1].To)

    c := f.campaigns.get("c1")
    assert.Equal(t, model.CampaignSent, c.Status)
    assert.Equal(t, 2, c.SentCount)
    require.NotNil(t, c.SentAt)

    assert.Len(t, f.ledger.byStatus(model.SendSent), 2)
    assert.Empty(t, f.ledger.byStatus(model.SendFailed))
    assert.Equal(t, 2, f.transports.sentToday("srv-1"))
}

func TestRunSkipsRemainderWhenQuotaRunsOut(t *testing.T) {
    f := newFixture(makeSubscribers(5), &stubSuppressions{}, oneServer(3))

    _, err := f.dispatcher.Start("c1", "user-1")
    require.NoError(t, err)
    require.NoError(t, f.dispatcher.Run("c1", "user-1"))

    assert.Len(t, f.mailer.sent(), 3)

    skipped := f.ledger.byStatus(model.SendSkipped)
    require.Len(t, skipped, 2)
    assert.Equal(t, "s4", skipped[0].SubscriberID)
    assert.Equal(t, "s5", skipped[1].SubscriberID)
    assert.Contains(t, skipped[0].ErrorMessage, "daily sending limit")

    c := f.campaigns.get("c1")
    assert.Equal(t, model.CampaignSent, c.Status)
    assert.Equal(t, 3, c.SentCount)
    assert.Equal(t, 5, c.TotalSubscribers)
}

func TestRunRecordsFailureAndReleasesQuota(t *testing.T) {
    f := newFixture(makeSubscribers(4), &stubSuppressions{}, oneServer(0))
    f.mailer.failFor["sub2@example.com"] = errors.New("connection refused")

    _, err := f.dispatcher.Start("c1", "user-1")
    require.NoError(t, err)
    require.NoError(t, f.dispatcher.Run("c1", "user-1"))

    failed := f.ledger.byStatus(model.SendFailed)
    require.Len(t, failed, 1)
    assert.Equal(t, "s2", failed[0].SubscriberID)
    assert.Equal(t, "connection refused", failed[0].ErrorMessage)

    c := f.campaigns.get("c1")
    assert.Equal(t, model.CampaignSent, c.Status, "individual failures never block completion")
    assert.Equal(t, 3, c.SentCount)

    // The failed delivery's quota slot was handed back.
    assert.Equal(t, 3, f.transports.sentToday("srv-1"))
}

func TestRunRotatesAcrossTransports(t *testing.T) {
    servers := []*model.SMTPServer{
        {ID: "srv-1", UserID: "user-1", IsActive: true},
        {ID: "srv-2", UserID: "user-1", IsActive: true},
    }
    f := newFixture(makeSubscribers(4), &stubSuppressions{}, servers)

    _, err := f.dispatcher.Start("c1", "user-1")
    require.NoError(t, err)
    require.NoError(t, f.dispatcher.Run("c1", "user-1"))

    perServer := map[string]int{}
    for _, s := range f.mailer.sent() {
        perServer[s.ServerID]++
    }
    assert.Equal(t, map[string]int{"srv-1": 2, "srv-2": 2}, perServer)
}

func TestRunIgnoresCampaignNotSending(t *testing.T) {
    f := newFixture(makeSubscribers(2), &stubSuppressions{}, oneServer(0))

    require.NoError(t, f.dispatcher.Run("c1", "user-1"))
    assert.Empty(t, f.mailer.sent())
    assert.Equal(t, model.CampaignDraft, f.campaigns.get("c1").Status)
}

func TestRunClosesOutWhenQuotaGoneBeforePickup(t *testing.T) {
    f := newFixture(makeSubscribers(2), &stubSuppressions{}, oneServer(2))

    _, err := f.dispatcher.Start("c1", "user-1")
    require.NoError(t, err)

    // Another run drains the quota between trigger and pickup.
    f.transports.servers[0].EmailsSentToday = 2

    require.NoError(t, f.dispatcher.Run("c1", "user-1"))
    assert.Empty(t, f.mailer.sent())
    assert.Len(t, f.ledger.byStatus(model.SendSkipped), 2)
    assert.Equal(t, model.CampaignSent, f.campaigns.get("c1").Status)
}

func TestRunSpacesConsecutiveDeliveries(t *testing.T) {
    f := newFixture(makeSubscribers(3), &stubSuppressions{}, oneServer(0))
    f.dispatcher.SendInterval = 30 * time.Millisecond

    _, err := f.dispatcher.Start("c1", "user-1")
    require.NoError(t, err)
    require.NoError(t, f.dispatcher.Run("c1", "user-1"))

    sent := f.mailer.sent()
    require.Len(t, sent, 3)
    for i := 1; i < len(sent); i++ {
        gap := sent[i].At.Sub(sent[i-1].At)
        assert.GreaterOrEqual(t, gap, 25*time.Millisecond,
            "delivery %d followed %d after only %s", i+1, i, gap)
    }
}

func TestRunPacesQuotaStoreErrors(t *testing.T) {
    f := newFixture(makeSubscribers(3), &stubSuppressions{}, oneServer(0))
    f.dispatcher.SendInterval = 30 * time.Millisecond

    _, err := f.dispatcher.Start("c1", "user-1")
    require.NoError(t, err)

    // Every reservation fails, so all three recipients take the
    // record-failed path. Those iterations still pay the delay.
    f.transports.reserveErr = errors.New("quota store down")

    started := time.Now()
    require.NoError(t, f.dispatcher.Run("c1", "user-1"))
    elapsed := time.Since(started)

    assert.Len(t, f.ledger.byStatus(model.SendFailed), 3)
    assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond,
        "three failing attempts finished in %s", elapsed)
    assert.Equal(t, model.CampaignSent, f.campaigns.get("c1").Status)
}

// Two campaigns draining one quota-limited transport at the same time:
// each campaign's sent_count must equal its sent ledger rows, every
// recipient must get exactly one row, and the combined successes can
// never exceed the daily limit.
func TestConcurrentRunsKeepLedgerAndCounterConsistent(t *testing.T) {
    const trials = 20

    for trial := 0; trial < trials; trial++ {
        campaigns := newFakeCampaigns(
            &model.Campaign{
                ID: "c1", UserID: "user-1", ListID: "list-1",
                Subject: "A", TextContent: "one", Status: model.CampaignDraft,
            },
            &model.Campaign{
                ID: "c2", UserID: "user-1", ListID: "list-1",
                Subject: "B", TextContent: "two", Status: model.CampaignDraft,
            },
        )
        transports := &fakeTransportStore{servers: []*model.SMTPServer{
            {ID: "srv-1", UserID: "user-1", IsActive: true, DailyLimit: 6},
        }}
        ledger := &fakeLedger{campaigns: campaigns}

        d := &dispatch.Dispatcher{
            Campaigns:  campaigns,
            Transports: transports,
            Ledger:     ledger,
            Resolver: &dispatch.Resolver{
                Lists:        &stubLists{list: &model.List{ID: "list-1", UserID: "user-1"}},
                Subscribers:  &stubSubscribers{subscribers: makeSubscribers(5)},
                Suppressions: &stubSuppressions{},
            },
            Mailer:       &fakeMailer{failFor: map[string]error{}},
            Queue:        &capturePublisher{},
            Log:          zerolog.Nop(),
            SendInterval: time.Millisecond,
        }

        _, err := d.Start("c1", "user-1")
        require.NoError(t, err)
        _, err = d.Start("c2", "user-1")
        require.NoError(t, err)

        var wg sync.WaitGroup
        runErrs := make([]error, 2)
        for i, id := range []string{"c1", "c2"} {
            wg.Add(1)
            go func(i int, id string) {
                defer wg.Done()
                runErrs[i] = d.Run(id, "user-1")
            }(i, id)
        }
        wg.Wait()
        require.NoError(t, runErrs[0])
        require.NoError(t, runErrs[1])

        totalSent := 0
        for _, id := range []string{"c1", "c2"} {
            c := campaigns.get(id)
            assert.Equal(t, model.CampaignSent, c.Status, "trial %d campaign %s", trial, id)

            sentRows := ledger.countFor(id, model.SendSent)
            assert.Equal(t, sentRows, c.SentCount,
                "trial %d campaign %s: sent_count diverged from sent ledger rows", trial, id)

            accounted := sentRows +
                ledger.countFor(id, model.SendFailed) +
                ledger.countFor(id, model.SendSkipped)
            assert.Equal(t, 5, accounted, "trial %d campaign %s: recipients without a ledger row", trial, id)

            totalSent += sentRows
        }
        assert.Equal(t, 6, totalSent, "trial %d: combined successes must drain exactly the daily limit", trial)
        assert.Equal(t, 6, transports.sentToday("srv-1"), "trial %d", trial)
    }
}

func TestSubscriberDecodesJSONPayload(t *testing.T) {
    f := newFixture(makeSubscribers(2), &stubSuppressions{}, oneServer(0))

    _, err := f.dispatcher.Start("c1", "user-1")
    require.NoError(t, err)

    handler := f.dispatcher.Subscriber()
    require.NoError(t, handler([]byte(`{"campaign_id":"c1","user_id":"user-1"}`)))

    assert.Len(t, f.mailer.sent(), 2)
    assert.Equal(t, model.CampaignSent, f.campaigns.get("c1").Status)
}
