package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/model"
)

const campaignColumns = `id, creator_id, yoomoney, collected_amount, confirmed_notifications, closed`

func (t *sqlTx) scanCampaign(row *sql.Row) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(&c.ID, &c.CreatorID, &c.Yoomoney, &c.CollectedAmount, &c.ConfirmedNotifications, &c.Closed)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *sqlTx) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	query := t.forUpdate(`SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`)
	c, err := t.scanCampaign(t.queryRow(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

// FindCampaignByCreator returns nil, nil when the creator has no campaign yet.
func (t *sqlTx) FindCampaignByCreator(ctx context.Context, creatorID string) (*model.Campaign, error) {
	query := t.forUpdate(`SELECT ` + campaignColumns + ` FROM campaigns WHERE creator_id=$1`)
	c, err := t.scanCampaign(t.queryRow(ctx, query, creatorID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (t *sqlTx) GetCampaignStats(ctx context.Context, campaignID string) (model.CampaignStats, error) {
	var stats model.CampaignStats
	query := `
        SELECT
            (SELECT COUNT(*) FROM posts WHERE campaign_id=$1),
            (SELECT COUNT(*) FROM comments WHERE campaign_id=$2),
            (SELECT COUNT(*) FROM payment_notifications WHERE campaign_id=$3)
    `
	err := t.queryRow(ctx, query, campaignID, campaignID, campaignID).Scan(&stats.Posts, &stats.Comments, &stats.Notifications)
	return stats, err
}

func (t *sqlTx) CreateCampaign(c model.Campaign) {
	t.stage(`
        INSERT INTO campaigns (`+campaignColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, c.ID, c.CreatorID, c.Yoomoney, c.CollectedAmount, c.ConfirmedNotifications, c.Closed)
}

func (t *sqlTx) UpdateCampaignAccount(campaignID, yoomoney string) {
	t.stage(`UPDATE campaigns SET yoomoney=$1 WHERE id=$2`, yoomoney, campaignID)
}

func (t *sqlTx) CloseCampaign(campaignID string) {
	t.stage(`UPDATE campaigns SET closed=TRUE WHERE id=$1`, campaignID)
}

func (t *sqlTx) ConfirmNotifications(campaignID string) {
	t.stage(`UPDATE campaigns SET confirmed_notifications=TRUE WHERE id=$1`, campaignID)
}

// IncrementCollected adds amount to the campaign total. PostgreSQL adds NUMERICs in the
// database. SQLite keeps the total as decimal text, so the sum is computed here while the
// immediate transaction holds the write lock.
func (t *sqlTx) IncrementCollected(campaignID string, amount decimal.Decimal) {
	if t.dialect != SQLite {
		t.stage(`UPDATE campaigns SET collected_amount = collected_amount + $1 WHERE id=$2`, amount, campaignID)
		return
	}
	t.stageFunc(func(ctx context.Context, tx *sql.Tx) error {
		var current decimal.Decimal
		err := tx.QueryRowContext(ctx, t.rebind(`SELECT collected_amount FROM campaigns WHERE id=$1`), campaignID).Scan(&current)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, t.rebind(`UPDATE campaigns SET collected_amount=$1 WHERE id=$2`), current.Add(amount).String(), campaignID)
		return err
	})
}

// ====================== Payment secrets and ledger ======================

func (t *sqlTx) GetPaymentSecret(ctx context.Context, campaignID string) (*model.CampaignPaymentSecret, error) {
	var s model.CampaignPaymentSecret
	err := t.queryRow(ctx, `SELECT campaign_id, secret FROM campaign_payment_secrets WHERE campaign_id=$1`, campaignID).
		Scan(&s.CampaignID, &s.Secret)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewPaymentSecretNotFound(campaignID)
		}
		return nil, err
	}
	return &s, nil
}

func (t *sqlTx) PutPaymentSecret(s model.CampaignPaymentSecret) {
	t.stage(`
        INSERT INTO campaign_payment_secrets (campaign_id, secret) VALUES ($1, $2)
        ON CONFLICT (campaign_id) DO UPDATE SET secret=excluded.secret
    `, s.CampaignID, s.Secret)
}

func (t *sqlTx) NotificationExists(ctx context.Context, campaignID, operationID string) (bool, error) {
	var count int
	err := t.queryRow(ctx, `
        SELECT COUNT(*)
        FROM payment_notifications
        WHERE campaign_id=$1 AND operation_id=$2`, campaignID, operationID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (t *sqlTx) RecordNotification(n model.PaymentNotification) {
	if n.ReceivedAt.IsZero() {
		n.ReceivedAt = time.Now().UTC()
	}
	t.stage(`
        INSERT INTO payment_notifications
        (campaign_id, operation_id, amount, currency, datetime, sender, label, received_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, n.CampaignID, n.OperationID, n.Amount, n.Currency, n.Datetime, n.Sender, n.Label, n.ReceivedAt)
}
