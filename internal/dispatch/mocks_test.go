// internal/dispatch/mocks_test.go
package dispatch_test

import (
    "sort"
    "sync"
    "time"

    "github.com/unclebandit/sendmulticamp/internal/apperrors"
    "github.com/unclebandit/sendmulticamp/internal/model"
)

// fakeTransportStore backs both ListActive and the quota counter, the way
// the smtp_servers table does in production.
type fakeTransportStore struct {
    mu      sync.Mutex
    servers []*model.SMTPServer

    reserveErr error
}

func (f *fakeTransportStore) find(id string) *model.SMTPServer {
    for _, s := range f.servers {
        if s.ID == id {
            return s
        }
    }
    return nil
}

func (f *fakeTransportStore) ListActive(userID string) ([]model.SMTPServer, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    var active []model.SMTPServer
    for _, s := range f.servers {
        if s.UserID == userID && s.IsActive {
            active = append(active, *s)
        }
    }
    sort.SliceStable(active, func(i, j int) bool {
        return active[i].EmailsSentToday < active[j].EmailsSentToday
    })
    return active, nil
}

func (f *fakeTransportStore) ReserveQuotaSlot(id string) (bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    if f.reserveErr != nil {
        return false, f.reserveErr
    }
    s := f.find(id)
    if s == nil || !s.IsActive {
        return false, nil
    }
    if s.DailyLimit > 0 && s.EmailsSentToday >= s.DailyLimit {
        return false, nil
    }
    s.EmailsSentToday++
    return true, nil
}

func (f *fakeTransportStore) ReleaseQuotaSlot(id string) error {
    f.mu.Lock()
    defer f.mu.Unlock()

    if s := f.find(id); s != nil && s.EmailsSentToday > 0 {
        s.EmailsSentToday--
    }
    return nil
}

func (f *fakeTransportStore) sentToday(id string) int {
    f.mu.Lock()
    defer f.mu.Unlock()
    if s := f.find(id); s != nil {
        return s.EmailsSentToday
    }
    return 0
}

func (f *fakeTransportStore) Create(*model.SMTPServer) error  { return nil }
func (f *fakeTransportStore) Update(*model.SMTPServer) error  { return nil }
func (f *fakeTransportStore) Delete(id, userID string) error  { return nil }
func (f *fakeTransportStore) ResetDailyCounts() (int64, error) { return 0, nil }
func (f *fakeTransportStore) ListByUser(userID string) ([]model.SMTPServer, error) {
    return nil, nil
}
func (f *fakeTransportStore) GetByID(id, userID string) (*model.SMTPServer, error) {
    if s := f.find(id); s != nil && s.UserID == userID {
        return s, nil
    }
    return nil, apperrors.NewNotFound("smtp server", id)
}

type fakeCampaigns struct {
    mu        sync.Mutex
    campaigns map[string]*model.Campaign
}

func newFakeCampaigns(cs ...*model.Campaign) *fakeCampaigns {
    f := &fakeCampaigns{campaigns: make(map[string]*model.Campaign)}
    for _, c := range cs {
        f.campaigns[c.ID] = c
    }
    return f
}

func (f *fakeCampaigns) GetByID(id, userID string) (*model.Campaign, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    c, ok := f.campaigns[id]
    if !ok || c.UserID != userID {
        return nil, apperrors.NewNotFound("campaign", id)
    }
    copied := *c
    return &copied, nil
}

func (f *fakeCampaigns) MarkSending(id string, totalSubscribers int) error {
    f.mu.Lock()
    defer f.mu.Unlock()

    c, ok := f.campaigns[id]
    if !ok {
        return apperrors.NewNotFound("campaign", id)
    }
    if c.Status == model.CampaignSending {
        return apperrors.ErrAlreadySending
    }
    c.Status = model.CampaignSending
    c.TotalSubscribers = totalSubscribers
    c.SentCount = 0
    return nil
}

func (f *fakeCampaigns) MarkSent(id string) error {
    f.mu.Lock()
    defer f.mu.Unlock()

    c, ok := f.campaigns[id]
    if !ok {
        return apperrors.NewNotFound("campaign", id)
    }
    now := time.Now()
    c.Status = model.CampaignSent
    c.SentAt = &now
    return nil
}

func (f *fakeCampaigns) addSent(id string) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if c, ok := f.campaigns[id]; ok {
        c.SentCount++
    }
}

func (f *fakeCampaigns) get(id string) model.Campaign {
    f.mu.Lock()
    defer f.mu.Unlock()
    return *f.campaigns[id]
}

func (f *fakeCampaigns) Create(*model.Campaign) error              { return nil }
func (f *fakeCampaigns) Update(*model.Campaign) error              { return nil }
func (f *fakeCampaigns) Delete(id, userID string) error            { return nil }
func (f *fakeCampaigns) ListByUser(string) ([]model.Campaign, error) { return nil, nil }

type ledgerRow struct {
    CampaignID   string
    SubscriberID string
    Status       string
    ErrorMessage string
}

// fakeLedger mirrors the production ledger's coupling: a sent row also
// bumps the campaign's sent_count.
type fakeLedger struct {
    mu        sync.Mutex
    rows      []ledgerRow
    campaigns *fakeCampaigns
}

func (f *fakeLedger) RecordOutcome(campaignID, subscriberID, status, errorMessage string) error {
    f.mu.Lock()
    f.rows = append(f.rows, ledgerRow{
        CampaignID:   campaignID,
        SubscriberID: subscriberID,
        Status:       status,
        ErrorMessage: errorMessage,
    })
    f.mu.Unlock()

    if status == model.SendSent && f.campaigns != nil {
        f.campaigns.addSent(campaignID)
    }
    return nil
}

func (f *fakeLedger) Summarize(campaignID string) (map[string]int, error) {
    f.mu.Lock()
    defer f.mu.Unlock()

    summary := map[string]int{
        model.SendSent:    0,
        model.SendFailed:  0,
        model.SendSkipped: 0,
    }
    for _, row := range f.rows {
        summary[row.Status]++
    }
    return summary, nil
}

func (f *fakeLedger) countFor(campaignID, status string) int {
    f.mu.Lock()
    defer f.mu.Unlock()

    n := 0
    for _, row := range f.rows {
        if row.CampaignID == campaignID && row.Status == status {
            n++
        }
    }
    return n
}

func (f *fakeLedger) byStatus(status string) []ledgerRow {
    f.mu.Lock()
    defer f.mu.Unlock()

    var out []ledgerRow
    for _, row := range f.rows {
        if row.Status == status {
            out = append(out, row)
        }
    }
    return out
}

type stubLists struct {
    list *model.List
}

func (s *stubLists) GetByID(id, userID string) (*model.List, error) {
    if s.list != nil && s.list.ID == id && s.list.UserID == userID {
        copied := *s.list
        return &copied, nil
    }
    return nil, apperrors.NewNotFound("list", id)
}

func (s *stubLists) Create(*model.List) error                  { return nil }
func (s *stubLists) ListByUser(string) ([]model.List, error)   { return nil, nil }

type stubSubscribers struct {
    subscribers []model.Subscriber
}

func (s *stubSubscribers) ListActive(listID string) ([]model.Subscriber, error) {
    var active []model.Subscriber
    for _, sub := range s.subscribers {
        if sub.ListID == listID && sub.Status == model.SubscriberActive {
            active = append(active, sub)
        }
    }
    return active, nil
}

func (s *stubSubscribers) Create(*model.Subscriber) error { return nil }
func (s *stubSubscribers) ListByList(listID string) ([]model.Subscriber, error) {
    return s.subscribers, nil
}

type stubSuppressions struct {
    blacklisted  []string
    unsubscribed []string
}

func (s *stubSuppressions) BlacklistedEmails(string) ([]string, error)  { return s.blacklisted, nil }
func (s *stubSuppressions) UnsubscribedEmails(string) ([]string, error) { return s.unsubscribed, nil }

func (s *stubSuppressions) AddToBlacklist(*model.BlacklistEntry) error { return nil }
func (s *stubSuppressions) ListBlacklist(string) ([]model.BlacklistEntry, error) {
    return nil, nil
}
func (s *stubSuppressions) RemoveFromBlacklist(id, userID string) error { return nil }
func (s *stubSuppressions) AddUnsubscribe(*model.UnsubscribeEntry) error { return nil }
func (s *stubSuppressions) ListUnsubscribes(string) ([]model.UnsubscribeEntry, error) {
    return nil, nil
}
func (s *stubSuppressions) RemoveUnsubscribe(id, userID string) error { return nil }
