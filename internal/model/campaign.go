// internal/model/campaign.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Campaign struct {
	ID                     string          `db:"id" json:"id"`
	CreatorID              string          `db:"creator_id" json:"creatorid"`
	Yoomoney               string          `db:"yoomoney" json:"yoomoney"`
	CollectedAmount        decimal.Decimal `db:"collected_amount" json:"collectedamount"`
	ConfirmedNotifications bool            `db:"confirmed_notifications" json:"confirmednotifications"`
	Closed                 bool            `db:"closed" json:"closed"`
}

// CampaignPaymentSecret never leaves the server.
type CampaignPaymentSecret struct {
	CampaignID string `db:"campaign_id" json:"-"`
	Secret     string `db:"secret" json:"-"`
}

// PaymentNotification is a ledger entry for an applied provider notification.
type PaymentNotification struct {
	CampaignID  string          `db:"campaign_id" json:"campaignid"`
	OperationID string          `db:"operation_id" json:"operation_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Currency    string          `db:"currency" json:"currency"`
	Datetime    string          `db:"datetime" json:"datetime"`
	Sender      string          `db:"sender" json:"sender"`
	Label       string          `db:"label" json:"label"`
	ReceivedAt  time.Time       `db:"received_at" json:"received_at"`
}

// CampaignStats are counts aggregated over a campaign's sub-records.
type CampaignStats struct {
	Posts         int `json:"posts"`
	Comments      int `json:"comments"`
	Notifications int `json:"notifications"`
}
