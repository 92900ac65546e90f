package service_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/unclebandit/charity-backend/internal/model"
	"github.com/unclebandit/charity-backend/internal/repository"
	"github.com/unclebandit/charity-backend/internal/service"
)

func boolPtr(b bool) *bool { return &b }

func validCharity(creator string) service.CharityInput {
	return service.CharityInput{
		Name:             "A",
		BriefDescription: "b",
		Description:      "d",
		Campaigns:        []string{},
		CreatorID:        creator,
		ManagerContact:   "m",
		Organization:     boolPtr(false),
		Tags:             []string{"x"},
	}
}

// failingStore hands out transactions whose Commit always fails.
type failingStore struct {
	inner repository.Store
}

type failingTx struct {
	repository.Tx
}

var errCommit = errors.New("commit failed")

func (s failingStore) Begin(ctx context.Context) (repository.Tx, error) {
	tx, err := s.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &failingTx{Tx: tx}, nil
}

func (t *failingTx) Commit(ctx context.Context) error {
	t.Tx.Rollback()
	return errCommit
}

// seedCampaign stores a campaign owned by charityID with a webhook secret.
func seedCampaign(store *repository.MemoryStore, id, charityID, secret string) {
	ctx := context.Background()
	tx, _ := store.Begin(ctx)
	tx.CreateCampaign(model.Campaign{ID: id, CreatorID: charityID, Yoomoney: "4100"})
	if secret != "" {
		tx.PutPaymentSecret(model.CampaignPaymentSecret{CampaignID: id, Secret: secret})
	}
	tx.Commit(ctx)
}

func seedCharity(store *repository.MemoryStore, c model.Charity) {
	ctx := context.Background()
	tx, _ := store.Begin(ctx)
	tx.PutCharity(c)
	tx.Commit(ctx)
}

// racingStore lets a competing insert land before the first Commit, which then
// fails the way a unique constraint does.
type racingStore struct {
	inner *repository.MemoryStore
	race  func()
	raced bool
}

type racingTx struct {
	repository.Tx
	store *racingStore
}

func (s *racingStore) Begin(ctx context.Context) (repository.Tx, error) {
	tx, err := s.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &racingTx{Tx: tx, store: s}, nil
}

func (t *racingTx) Commit(ctx context.Context) error {
	if t.store.raced {
		return t.Tx.Commit(ctx)
	}
	t.store.raced = true
	t.Tx.Rollback()
	t.store.race()
	return fmt.Errorf("staged write 0: %w", repository.ErrConflict)
}
