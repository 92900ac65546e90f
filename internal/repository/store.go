package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/unclebandit/charity-backend/internal/model"
)

// Store opens units of work. Each request runs in exactly one Tx.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx reads through a lock-holding transaction and stages writes until Commit.
// Reads never observe the Tx's own staged writes.
type Tx interface {
	// Charities
	GetCharity(ctx context.Context, id string) (*model.Charity, error)
	PutCharity(c model.Charity)
	DeleteCharity(id string)

	// Geo index
	FindLocationsByCharity(ctx context.Context, charityID string) ([]model.CharityLocation, error)
	InsertLocation(loc model.CharityLocation)
	UpdateLocation(loc model.CharityLocation)
	DeleteLocation(id string)

	// Campaigns and payments
	GetCampaign(ctx context.Context, id string) (*model.Campaign, error)
	FindCampaignByCreator(ctx context.Context, creatorID string) (*model.Campaign, error)
	GetCampaignStats(ctx context.Context, campaignID string) (model.CampaignStats, error)
	CreateCampaign(c model.Campaign)
	UpdateCampaignAccount(campaignID, yoomoney string)
	CloseCampaign(campaignID string)
	GetPaymentSecret(ctx context.Context, campaignID string) (*model.CampaignPaymentSecret, error)
	PutPaymentSecret(s model.CampaignPaymentSecret)
	NotificationExists(ctx context.Context, campaignID, operationID string) (bool, error)
	RecordNotification(n model.PaymentNotification)
	IncrementCollected(campaignID string, amount decimal.Decimal)
	ConfirmNotifications(campaignID string)

	// Posts, comments, users
	GetPost(ctx context.Context, campaignID, postID string) (*model.Post, error)
	InsertPost(p model.Post)
	InsertComment(c model.Comment)
	IncrementCommentCount(campaignID, postID string)
	PutUser(u model.User)

	// Staged reports how many writes are waiting for Commit.
	Staged() int
	Commit(ctx context.Context) error
	Rollback() error
}
