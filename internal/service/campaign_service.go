// internal/service/campaign_service.go
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/model"
	"github.com/unclebandit/charity-backend/internal/payment"
	"github.com/unclebandit/charity-backend/internal/repository"
)

type CampaignInput struct {
	Yoomoney string `json:"yoomoney"`
	Secret   string `json:"secret"`
	OwnerID  string `json:"ownerId"`
}

type CampaignService struct {
	Store repository.Store
	// Dedup skips notifications whose operation_id was already applied.
	Dedup bool
}

// PaymentResult describes what ApplyNotification did.
type PaymentResult struct {
	Test      bool
	Duplicate bool
	Amount    decimal.Decimal
}

// CreateCampaignAndPayment registers the owner's payment account and webhook secret.
// An owner has at most one campaign; calling again updates it in place. When a
// concurrent first call wins the insert, the upsert is retried once as an update.
func (s *CampaignService) CreateCampaignAndPayment(ctx context.Context, in CampaignInput) (string, error) {
	if strings.TrimSpace(in.Yoomoney) == "" || strings.TrimSpace(in.Secret) == "" || strings.TrimSpace(in.OwnerID) == "" {
		return "", appErrors.NewBadRequest("Bad request")
	}

	campaignID, err := s.upsertCampaign(ctx, in)
	if errors.Is(err, repository.ErrConflict) {
		log.Warn().Str("owner_id", in.OwnerID).Msg("⚠️ concurrent campaign insert, retrying as update")
		campaignID, err = s.upsertCampaign(ctx, in)
	}
	return campaignID, err
}

func (s *CampaignService) upsertCampaign(ctx context.Context, in CampaignInput) (string, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	existing, err := tx.FindCampaignByCreator(ctx, in.OwnerID)
	if err != nil {
		return "", err
	}

	var campaignID string
	if existing != nil {
		campaignID = existing.ID
		tx.UpdateCampaignAccount(campaignID, in.Yoomoney)
	} else {
		campaignID = uuid.NewString()
		tx.CreateCampaign(model.Campaign{
			ID:              campaignID,
			CreatorID:       in.OwnerID,
			Yoomoney:        in.Yoomoney,
			CollectedAmount: decimal.Zero,
		})
	}
	tx.PutPaymentSecret(model.CampaignPaymentSecret{CampaignID: campaignID, Secret: in.Secret})

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	log.Info().Str("campaign_id", campaignID).Str("owner_id", in.OwnerID).Bool("existing", existing != nil).Msg("campaign payment registered")
	return campaignID, nil
}

// ApplyNotification authenticates a provider notification against the campaign's
// secret and applies it. Nothing is written when the signature does not match.
func (s *CampaignService) ApplyNotification(ctx context.Context, campaignID string, n payment.Notification) (*PaymentResult, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	secret, err := tx.GetPaymentSecret(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := payment.Verify(n, secret.Secret); err != nil {
		log.Warn().Str("campaign_id", campaignID).Str("operation_id", n.OperationID).Msg("⚠️ rejected notification with bad signature")
		return nil, appErrors.NewBadRequest("Bad signature")
	}

	result := &PaymentResult{Test: n.IsTest()}
	if result.Test {
		tx.ConfirmNotifications(campaignID)
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		log.Info().Str("campaign_id", campaignID).Msg("test notification confirmed")
		return result, nil
	}

	amount, err := n.ParseAmount()
	if err != nil {
		return nil, appErrors.NewBadRequest("Bad amount")
	}
	result.Amount = amount

	seen := false
	if n.OperationID != "" {
		if seen, err = tx.NotificationExists(ctx, campaignID, n.OperationID); err != nil {
			return nil, err
		}
	}
	if seen && s.Dedup {
		result.Duplicate = true
		log.Info().Str("campaign_id", campaignID).Str("operation_id", n.OperationID).Msg("duplicate notification ignored")
		return result, nil
	}

	tx.IncrementCollected(campaignID, amount)
	if n.OperationID != "" && !seen {
		tx.RecordNotification(model.PaymentNotification{
			CampaignID:  campaignID,
			OperationID: n.OperationID,
			Amount:      amount,
			Currency:    n.Currency,
			Datetime:    n.Datetime,
			Sender:      n.Sender,
			Label:       n.Label,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	log.Info().Str("campaign_id", campaignID).Str("operation_id", n.OperationID).Str("amount", amount.String()).Msg("payment applied")
	return result, nil
}
