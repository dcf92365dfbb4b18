// internal/service/campaign_service.go
package service

import (
    "strings"

    "github.com/unclebandit/sendmulticamp/internal/apperrors"
    "github.com/unclebandit/sendmulticamp/internal/dispatch"
    "github.com/unclebandit/sendmulticamp/internal/model"
    "github.com/unclebandit/sendmulticamp/internal/repository"
)

type CampaignService struct {
    Campaigns  repository.CampaignRepositoryInterface
    Lists      repository.ListRepositoryInterface
    Sends      repository.CampaignSendRepositoryInterface
    Dispatcher *dispatch.Dispatcher
}

type CampaignInput struct {
    Name        string `json:"name"`
    ListID      string `json:"list_id"`
    Subject     string `json:"subject"`
    FromName    string `json:"from_name"`
    FromEmail   string `json:"from_email"`
    ReplyTo     string `json:"reply_to"`
    HTMLContent string `json:"html_content"`
    TextContent string `json:"text_content"`
}

// Progress is the polling view of a running or finished campaign.
type Progress struct {
    Status           string `json:"status"`
    SentCount        int    `json:"sent_count"`
    TotalSubscribers int    `json:"total_subscribers"`
}

// Preview is a rendered campaign for a sample recipient.
type Preview struct {
    Subject string `json:"subject"`
    HTML    string `json:"html"`
    Text    string `json:"text"`
}

func (s *CampaignService) Create(userID string, in CampaignInput) (*model.Campaign, error) {
    // The target list must belong to the campaign's owner.
    if _, err := s.Lists.GetByID(in.ListID, userID); err != nil {
        return nil, err
    }

    c := &model.Campaign{
        UserID:      userID,
        ListID:      in.ListID,
        Name:        in.Name,
        Subject:     in.Subject,
        FromName:    in.FromName,
        FromEmail:   in.FromEmail,
        ReplyTo:     in.ReplyTo,
        HTMLContent: in.HTMLContent,
        TextContent: in.TextContent,
        Status:      model.CampaignDraft,
    }
    if err := s.Campaigns.Create(c); err != nil {
        return nil, err
    }
    return c, nil
}

func (s *CampaignService) List(userID string) ([]model.Campaign, error) {
    return s.Campaigns.ListByUser(userID)
}

func (s *CampaignService) Get(id, userID string) (*model.Campaign, error) {
    return s.Campaigns.GetByID(id, userID)
}

func (s *CampaignService) Update(id, userID string, in CampaignInput) (*model.Campaign, error) {
    c, err := s.Campaigns.GetByID(id, userID)
    if err != nil {
        return nil, err
    }
    if c.Status == model.CampaignSending {
        return nil, apperrors.ErrAlreadySending
    }

    if in.Name != "" {
        c.Name = in.Name
    }
    if in.Subject != "" {
        c.Subject = in.Subject
    }
    if in.FromName != "" {
        c.FromName = in.FromName
    }
    if in.FromEmail != "" {
        c.FromEmail = in.FromEmail
    }
    if in.ReplyTo != "" {
        c.ReplyTo = in.ReplyTo
    }
    if in.HTMLContent != "" {
        c.HTMLContent = in.HTMLContent
    }
    if in.TextContent != "" {
        c.TextContent = in.TextContent
    }

    if err := s.Campaigns.Update(c); err != nil {
        return nil, err
    }
    return c, nil
}

func (s *CampaignService) Delete(id, userID string) error {
    return s.Campaigns.Delete(id, userID)
}

// Duplicate copies a campaign's content into a fresh draft.
func (s *CampaignService) Duplicate(id, userID string) (*model.Campaign, error) {
    original, err := s.Campaigns.GetByID(id, userID)
    if err != nil {
        return nil, err
    }

    copy := &model.Campaign{
        UserID:      original.UserID,
        ListID:      original.ListID,
        Name:        original.Name + " (Copy)",
        Subject:     original.Subject,
        FromName:    original.FromName,
        FromEmail:   original.FromEmail,
        ReplyTo:     original.ReplyTo,
        HTMLContent: original.HTMLContent,
        TextContent: original.TextContent,
        Status:      model.CampaignDraft,
    }
    if err := s.Campaigns.Create(copy); err != nil {
        return nil, err
    }
    return copy, nil
}

// Send triggers a dispatch run and returns once the run is accepted.
func (s *CampaignService) Send(id, userID string) (*dispatch.StartResult, error) {
    return s.Dispatcher.Start(id, userID)
}

// GetProgress reports the dispatch state the UI polls for.
func (s *CampaignService) GetProgress(id, userID string) (*Progress, error) {
    c, err := s.Campaigns.GetByID(id, userID)
    if err != nil {
        return nil, err
    }
    return &Progress{
        Status:           c.Status,
        SentCount:        c.SentCount,
        TotalSubscribers: c.TotalSubscribers,
    }, nil
}

// GetStats returns ledger outcome counts grouped by status.
func (s *CampaignService) GetStats(id, userID string) (map[string]int, error) {
    if _, err := s.Campaigns.GetByID(id, userID); err != nil {
        return nil, err
    }
    return s.Sends.Summarize(id)
}

// RenderPreview renders the campaign for a sample recipient without
// sending anything.
func (s *CampaignService) RenderPreview(id, userID string, sample model.Subscriber) (*Preview, error) {
    c, err := s.Campaigns.GetByID(id, userID)
    if err != nil {
        return nil, err
    }
    if strings.TrimSpace(sample.Email) == "" {
        sample.Email = "subscriber@example.com"
    }

    msg := dispatch.RenderMessage(c, &sample)
    return &Preview{Subject: msg.Subject, HTML: msg.HTML, Text: msg.Text}, nil
}
