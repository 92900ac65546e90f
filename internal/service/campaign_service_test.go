package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/payment"
	"github.com/unclebandit/charity-backend/internal/repository"
	"github.com/unclebandit/charity-backend/internal/service"
)

func signed(n payment.Notification, secret string) payment.Notification {
	n.SHA1Hash = payment.Sign(n, secret)
	return n
}

func incoming(opID, amount string) payment.Notification {
	return payment.Notification{
		NotificationType: "p2p-incoming",
		OperationID:      opID,
		Amount:           amount,
		Currency:         "643",
		Datetime:         "2024-01-01T00:00:00Z",
		Sender:           "41001000040",
		Codepro:          "false",
		Label:            "",
	}
}

func collected(t *testing.T, store *repository.MemoryStore, id string) decimal.Decimal {
	t.Helper()
	c, ok := store.Campaign(id)
	if !ok {
		t.Fatalf("campaign %s missing", id)
	}
	return c.CollectedAmount
}

func TestCreateCampaignAndPayment(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := &service.CampaignService{Store: store, Dedup: true}
	ctx := context.Background()

	id, err := svc.CreateCampaignAndPayment(ctx, service.CampaignInput{Yoomoney: "4100", Secret: "s1", OwnerID: "charity-1"})
	if err != nil {
		t.Fatal(err)
	}

	again, err := svc.CreateCampaignAndPayment(ctx, service.CampaignInput{Yoomoney: "4200", Secret: "s2", OwnerID: "charity-1"})
	if err != nil {
		t.Fatal(err)
	}
	if again != id {
		t.Fatalf("expected the owner's campaign to be reused, got %s and %s", id, again)
	}

	c, _ := store.Campaign(id)
	if c.Yoomoney != "4200" || c.CreatorID != "charity-1" {
		t.Errorf("unexpected campaign %+v", c)
	}

	// The rotated secret is the one that authenticates now.
	old := signed(incoming("op-1", "10"), "s1")
	if _, err := svc.ApplyNotification(ctx, id, old); appErrors.KindOf(err) != appErrors.BadRequest {
		t.Errorf("old secret should no longer verify, got %v", err)
	}
	if _, err := svc.ApplyNotification(ctx, id, signed(incoming("op-1", "10"), "s2")); err != nil {
		t.Errorf("new secret should verify, got %v", err)
	}
}

func TestCreateCampaignAndPaymentRetriesAfterConcurrentInsert(t *testing.T) {
	inner := repository.NewMemoryStore()
	store := &racingStore{inner: inner, race: func() { seedCampaign(inner, "winner", "charity-1", "other") }}
	svc := &service.CampaignService{Store: store, Dedup: true}
	ctx := context.Background()

	id, err := svc.CreateCampaignAndPayment(ctx, service.CampaignInput{Yoomoney: "4300", Secret: "s3", OwnerID: "charity-1"})
	if err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if id != "winner" {
		t.Fatalf("expected the concurrent campaign to be reused, got %s", id)
	}
	c, _ := inner.Campaign(id)
	if c.Yoomoney != "4300" {
		t.Errorf("expected the account to be updated, got %+v", c)
	}
	if _, err := svc.ApplyNotification(ctx, id, signed(incoming("op-1", "5"), "s3")); err != nil {
		t.Errorf("retried secret should verify, got %v", err)
	}
}

func TestCreateCampaignAndPaymentSurfacesOtherCommitErrors(t *testing.T) {
	svc := &service.CampaignService{Store: failingStore{inner: repository.NewMemoryStore()}}
	_, err := svc.CreateCampaignAndPayment(context.Background(), service.CampaignInput{Yoomoney: "4100", Secret: "s", OwnerID: "charity-1"})
	if !errors.Is(err, errCommit) {
		t.Fatalf("expected commit error, got %v", err)
	}
}

func TestCreateCampaignAndPaymentRequiresFields(t *testing.T) {
	svc := &service.CampaignService{Store: repository.NewMemoryStore()}
	inputs := []service.CampaignInput{
		{Secret: "s", OwnerID: "o"},
		{Yoomoney: "4100", OwnerID: "o"},
		{Yoomoney: "4100", Secret: "s"},
	}
	for _, in := range inputs {
		if _, err := svc.CreateCampaignAndPayment(context.Background(), in); appErrors.KindOf(err) != appErrors.BadRequest {
			t.Errorf("%+v: expected bad request, got %v", in, err)
		}
	}
}

func TestApplyNotificationIncrementsCollected(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCampaign(store, "camp", "charity-1", "secret")
	svc := &service.CampaignService{Store: store, Dedup: true}

	res, err := svc.ApplyNotification(context.Background(), "camp", signed(incoming("op-1", "100"), "secret"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Test || res.Duplicate || !res.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected result %+v", res)
	}
	if got := collected(t, store, "camp"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("collected = %s, want 100", got)
	}

	if _, err := svc.ApplyNotification(context.Background(), "camp", signed(incoming("op-2", "0.50"), "secret")); err != nil {
		t.Fatal(err)
	}
	if got := collected(t, store, "camp"); !got.Equal(decimal.RequireFromString("100.50")) {
		t.Errorf("collected = %s, want 100.50", got)
	}
}

func TestApplyNotificationBadSignatureChangesNothing(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCampaign(store, "camp", "charity-1", "secret")
	svc := &service.CampaignService{Store: store, Dedup: true}

	n := signed(incoming("op-1", "100"), "secret")
	n.Amount = "1000"
	_, err := svc.ApplyNotification(context.Background(), "camp", n)
	if appErrors.KindOf(err) != appErrors.BadRequest || appErrors.Message(err) != "Bad signature" {
		t.Fatalf("expected bad signature, got %v", err)
	}
	if got := collected(t, store, "camp"); !got.IsZero() {
		t.Errorf("collected changed to %s", got)
	}

	test := incoming("", "0")
	test.TestNotification = "true"
	test.SHA1Hash = "deadbeef"
	if _, err := svc.ApplyNotification(context.Background(), "camp", test); err == nil {
		t.Fatal("expected unsigned test notification to be rejected")
	}
	if c, _ := store.Campaign("camp"); c.ConfirmedNotifications {
		t.Error("confirmation flag set by an unauthenticated notification")
	}
}

func TestApplyTestNotification(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCampaign(store, "camp", "charity-1", "secret")
	svc := &service.CampaignService{Store: store, Dedup: true}

	n := incoming("test-notification", "100")
	n.TestNotification = "true"
	res, err := svc.ApplyNotification(context.Background(), "camp", signed(n, "secret"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Test {
		t.Error("expected test result")
	}
	c, _ := store.Campaign("camp")
	if !c.ConfirmedNotifications || !c.CollectedAmount.IsZero() {
		t.Errorf("unexpected campaign after test notification %+v", c)
	}
}

func TestApplyNotificationLookupFailures(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCampaign(store, "no-secret", "charity-1", "")
	svc := &service.CampaignService{Store: store, Dedup: true}
	ctx := context.Background()

	_, err := svc.ApplyNotification(ctx, "missing", signed(incoming("op", "1"), "x"))
	if !appErrors.IsNotFound(err) || appErrors.Message(err) != "Campaign not found" {
		t.Errorf("expected campaign not found, got %v", err)
	}

	_, err = svc.ApplyNotification(ctx, "no-secret", signed(incoming("op", "1"), "x"))
	if !appErrors.IsNotFound(err) || appErrors.Message(err) != "Payment secret not found" {
		t.Errorf("expected secret not found, got %v", err)
	}
}

func TestApplyNotificationBadAmount(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCampaign(store, "camp", "charity-1", "secret")
	svc := &service.CampaignService{Store: store, Dedup: true}

	_, err := svc.ApplyNotification(context.Background(), "camp", signed(incoming("op", "ten"), "secret"))
	if appErrors.KindOf(err) != appErrors.BadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
	if got := collected(t, store, "camp"); !got.IsZero() {
		t.Errorf("collected changed to %s", got)
	}
}

func TestReplayIsIgnoredWithDedup(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCampaign(store, "camp", "charity-1", "secret")
	svc := &service.CampaignService{Store: store, Dedup: true}
	n := signed(incoming("op-1", "100"), "secret")

	if _, err := svc.ApplyNotification(context.Background(), "camp", n); err != nil {
		t.Fatal(err)
	}
	res, err := svc.ApplyNotification(context.Background(), "camp", n)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Duplicate {
		t.Error("expected replay to be reported as duplicate")
	}
	if got := collected(t, store, "camp"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("collected = %s, want 100", got)
	}
}

func TestReplayDoubleCountsWithoutDedup(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCampaign(store, "camp", "charity-1", "secret")
	svc := &service.CampaignService{Store: store, Dedup: false}
	n := signed(incoming("op-1", "100"), "secret")

	for i := 0; i < 2; i++ {
		res, err := svc.ApplyNotification(context.Background(), "camp", n)
		if err != nil {
			t.Fatal(err)
		}
		if res.Duplicate {
			t.Error("legacy mode never reports duplicates")
		}
	}
	if got := collected(t, store, "camp"); !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("collected = %s, want 200", got)
	}
}
