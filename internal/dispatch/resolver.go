// internal/dispatch/resolver.go
package dispatch

import (
    "strings"

    "github.com/unclebandit/sendmulticamp/internal/model"
    "github.com/unclebandit/sendmulticamp/internal/repository"
)

// Resolver computes the eligible recipient set for a run: the active
// subscribers of an owned list, minus every address found in the user's
// blacklist or unsubscribe list. Eligibility is evaluated once per run.
type Resolver struct {
    Lists        repository.ListRepositoryInterface
    Subscribers  repository.SubscriberRepositoryInterface
    Suppressions repository.SuppressionRepositoryInterface
}

// Resolve returns the eligible subscribers in list order. An empty result
// is not an error. Comparison against the suppression sets is
// case-insensitive on the email address; no other normalization applies.
func (r *Resolver) Resolve(listID, userID string) ([]model.Subscriber, error) {
    if _, err := r.Lists.GetByID(listID, userID); err != nil {
        return nil, err
    }

    subscribers, err := r.Subscribers.ListActive(listID)
    if err != nil {
        return nil, err
    }

    suppressed, err := r.suppressedSet(userID)
    if err != nil {
        return nil, err
    }

    eligible := make([]model.Subscriber, 0, len(subscribers))
    for _, sub := range subscribers {
        if _, ok := suppressed[strings.ToLower(sub.Email)]; ok {
            continue
        }
        eligible = append(eligible, sub)
    }
    return eligible, nil
}

func (r *Resolver) suppressedSet(userID string) (map[string]struct{}, error) {
    blacklisted, err := r.Suppressions.BlacklistedEmails(userID)
    if err != nil {
        return nil, err
    }
    unsubscribed, err := r.Suppressions.UnsubscribedEmails(userID)
    if err != nil {
        return nil, err
    }

    set := make(map[string]struct{}, len(blacklisted)+len(unsubscribed))
    for _, email := range blacklisted {
        set[strings.ToLower(email)] = struct{}{}
    }
    for _, email := range unsubscribed {
        set[strings.ToLower(email)] = struct{}{}
    }
    return set, nil
}
