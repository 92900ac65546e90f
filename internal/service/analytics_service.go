// internal/service/analytics_service.go
package service

import (
	"context"

	"github.com/shopspring/decimal"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/repository"
)

type CampaignSummary struct {
	ID              string          `json:"id"`
	CollectedAmount decimal.Decimal `json:"collectedAmount"`
	Closed          bool            `json:"closed"`
}

type CharityAnalytics struct {
	CharityID      string            `json:"charityId"`
	Name           string            `json:"name"`
	Tags           int               `json:"tags"`
	Indexed        bool              `json:"indexed"`
	Geohash        string            `json:"geohash,omitempty"`
	Campaigns      []CampaignSummary `json:"campaigns"`
	TotalCollected decimal.Decimal   `json:"totalCollected"`
}

type CampaignAnalytics struct {
	CampaignID             string          `json:"campaignId"`
	CharityID              string          `json:"charityId"`
	CollectedAmount        decimal.Decimal `json:"collectedAmount"`
	ConfirmedNotifications bool            `json:"confirmedNotifications"`
	Closed                 bool            `json:"closed"`
	Posts                  int             `json:"posts"`
	Comments               int             `json:"comments"`
	Notifications          int             `json:"notifications"`
}

type AnalyticsService struct {
	Store repository.Store
}

// CharityAnalytics aggregates a charity's index state and the campaigns it lists or owns.
func (s *AnalyticsService) CharityAnalytics(ctx context.Context, subject, charityID string) (*CharityAnalytics, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	charity, err := tx.GetCharity(ctx, charityID)
	if err != nil {
		return nil, err
	}
	if charity.CreatorID != subject {
		return nil, appErrors.NewForbidden("Insufficient permissions")
	}

	out := &CharityAnalytics{
		CharityID:      charity.ID,
		Name:           charity.Name,
		Tags:           len(charity.Tags),
		Campaigns:      []CampaignSummary{},
		TotalCollected: decimal.Zero,
	}

	locations, err := tx.FindLocationsByCharity(ctx, charityID)
	if err != nil {
		return nil, err
	}
	if len(locations) > 0 {
		out.Indexed = true
		out.Geohash = locations[0].Geohash
	}

	ids := append([]string{}, charity.Campaigns...)
	if owned, err := tx.FindCampaignByCreator(ctx, charityID); err != nil {
		return nil, err
	} else if owned != nil {
		ids = append(ids, owned.ID)
	}

	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		campaign, err := tx.GetCampaign(ctx, id)
		if appErrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out.Campaigns = append(out.Campaigns, CampaignSummary{
			ID:              campaign.ID,
			CollectedAmount: campaign.CollectedAmount,
			Closed:          campaign.Closed,
		})
		out.TotalCollected = out.TotalCollected.Add(campaign.CollectedAmount)
	}
	return out, nil
}

// CampaignAnalytics is visible to the creator of the charity that owns the campaign.
func (s *AnalyticsService) CampaignAnalytics(ctx context.Context, subject, campaignID string) (*CampaignAnalytics, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	campaign, err := tx.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := requireCharityOwner(ctx, tx, campaign.CreatorID, subject); err != nil {
		return nil, err
	}

	stats, err := tx.GetCampaignStats(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return &CampaignAnalytics{
		CampaignID:             campaign.ID,
		CharityID:              campaign.CreatorID,
		CollectedAmount:        campaign.CollectedAmount,
		ConfirmedNotifications: campaign.ConfirmedNotifications,
		Closed:                 campaign.Closed,
		Posts:                  stats.Posts,
		Comments:               stats.Comments,
		Notifications:          stats.Notifications,
	}, nil
}

// requireCharityOwner checks that subject created the charity owning a campaign.
func requireCharityOwner(ctx context.Context, tx repository.Tx, charityID, subject string) error {
	charity, err := tx.GetCharity(ctx, charityID)
	if appErrors.IsNotFound(err) {
		return appErrors.NewForbidden("Insufficient permissions")
	}
	if err != nil {
		return err
	}
	if charity.CreatorID != subject {
		return appErrors.NewForbidden("Insufficient permissions")
	}
	return nil
}
