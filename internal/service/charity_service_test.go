package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/geoindex"
	"github.com/unclebandit/charity-backend/internal/model"
	"github.com/unclebandit/charity-backend/internal/repository"
	"github.com/unclebandit/charity-backend/internal/service"
)

func TestValidate(t *testing.T) {
	ok := validCharity("u1")
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid charity, got %v", err)
	}

	org := validCharity("u1")
	org.Organization = boolPtr(true)
	if appErrors.KindOf(org.Validate()) != appErrors.BadRequest {
		t.Error("organization without legal ids must be rejected")
	}
	org.Egrul, org.Ogrn = "1027700132195", "1027700132195"
	if err := org.Validate(); err != nil {
		t.Errorf("organization with legal ids should pass, got %v", err)
	}

	mutations := map[string]func(*service.CharityInput){
		"name":             func(c *service.CharityInput) { c.Name = "" },
		"briefDescription": func(c *service.CharityInput) { c.BriefDescription = "" },
		"description":      func(c *service.CharityInput) { c.Description = "" },
		"creatorid":        func(c *service.CharityInput) { c.CreatorID = "" },
		"managerContact":   func(c *service.CharityInput) { c.ManagerContact = " " },
		"campaigns":        func(c *service.CharityInput) { c.Campaigns = nil },
		"tags":             func(c *service.CharityInput) { c.Tags = nil },
		"organization":     func(c *service.CharityInput) { c.Organization = nil },
	}
	for field, mutate := range mutations {
		in := validCharity("u1")
		mutate(&in)
		if appErrors.KindOf(in.Validate()) != appErrors.BadRequest {
			t.Errorf("missing %s should be a bad request", field)
		}
	}
}

func TestValidateLocationRange(t *testing.T) {
	cases := []struct {
		name     string
		lat, lng float64
		ok       bool
	}{
		{"origin", 0, 0, true},
		{"corners", -90, 180, true},
		{"other corners", 90, -180, true},
		{"latitude too high", 90.0001, 0, false},
		{"latitude too low", -91, 0, false},
		{"longitude too high", 0, 180.5, false},
		{"longitude too low", 0, -181, false},
		{"not a number", math.NaN(), 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCharity("u1")
			in.Location = &model.Location{Latitude: tc.lat, Longitude: tc.lng}
			err := in.Validate()
			if tc.ok && err != nil {
				t.Errorf("expected valid location, got %v", err)
			}
			if !tc.ok && appErrors.KindOf(err) != appErrors.BadRequest {
				t.Errorf("expected bad request, got %v", err)
			}
		})
	}
}

func TestCreateCharityRejectsOutOfRangeLocation(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := &service.CharityService{Store: store}

	in := validCharity("u1")
	in.Location = &model.Location{Latitude: 123, Longitude: 45}
	if _, err := svc.Create(context.Background(), in); appErrors.KindOf(err) != appErrors.BadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
	if ids := store.CharityIDs(); len(ids) != 0 {
		t.Errorf("nothing should be stored, got %v", ids)
	}
}

func TestCreateCharityWithoutLocation(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := &service.CharityService{Store: store}

	id, err := svc.Create(context.Background(), validCharity("u1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	c, ok := store.Charity(id)
	if !ok || c.CreatorID != "u1" || c.Confirmed {
		t.Errorf("unexpected stored charity %+v", c)
	}
	if locs := store.LocationsOf(id); len(locs) != 0 {
		t.Errorf("expected no location records, got %d", len(locs))
	}
}

func TestCreateCharityWithLocation(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := &service.CharityService{Store: store}

	in := validCharity("u1")
	in.Location = &model.Location{Latitude: 55.7558, Longitude: 37.6173}
	id, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}

	locs := store.LocationsOf(id)
	if len(locs) != 1 {
		t.Fatalf("expected exactly one location, got %d", len(locs))
	}
	if locs[0].Geohash != geoindex.Encode(*in.Location) {
		t.Errorf("geohash mismatch: %s", locs[0].Geohash)
	}
	if locs[0].Point != [2]float64{55.7558, 37.6173} {
		t.Errorf("unexpected point %v", locs[0].Point)
	}
}

func TestCreateCharityIsAtomic(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := &service.CharityService{Store: failingStore{inner: store}}

	in := validCharity("u1")
	in.Location = &model.Location{Latitude: 1, Longitude: 2}
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, errCommit) {
		t.Fatalf("expected commit error, got %v", err)
	}
	if ids := store.CharityIDs(); len(ids) != 0 {
		t.Errorf("failed commit left charities behind: %v", ids)
	}
}

func TestUpdateCharityByNonOwnerIsForbidden(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := &service.CharityService{Store: store}
	ctx := context.Background()

	id, _ := svc.Create(ctx, validCharity("u1"))

	in := validCharity("u1")
	in.ID = id
	in.Name = "hijacked"
	if _, err := svc.Update(ctx, "u2", in); appErrors.KindOf(err) != appErrors.Forbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// Claiming ownership in the body is not enough either.
	in.CreatorID = "u2"
	if _, err := svc.Update(ctx, "u2", in); appErrors.KindOf(err) != appErrors.Forbidden {
		t.Fatalf("expected forbidden for stolen creatorid, got %v", err)
	}

	c, _ := store.Charity(id)
	if c.Name != "A" || c.CreatorID != "u1" {
		t.Errorf("record changed: %+v", c)
	}
}

func TestUpdateCharityNotFound(t *testing.T) {
	svc := &service.CharityService{Store: repository.NewMemoryStore()}
	in := validCharity("u1")
	in.ID = "missing"
	if _, err := svc.Update(context.Background(), "u1", in); !appErrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	in.ID = ""
	if _, err := svc.Update(context.Background(), "u1", in); appErrors.KindOf(err) != appErrors.BadRequest {
		t.Fatalf("expected bad request without id, got %v", err)
	}
}

func TestUpdateCharityLocationTransitions(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := &service.CharityService{Store: store}
	ctx := context.Background()

	first := model.Location{Latitude: 10, Longitude: 20}
	in := validCharity("u1")
	in.Location = &first
	id, _ := svc.Create(ctx, in)
	in.ID = id
	originalLocID := store.LocationsOf(id)[0].ID

	// present -> present, changed: updated in place
	moved := model.Location{Latitude: 11, Longitude: 21}
	in.Location = &moved
	if _, err := svc.Update(ctx, "u1", in); err != nil {
		t.Fatal(err)
	}
	locs := store.LocationsOf(id)
	if len(locs) != 1 || locs[0].ID != originalLocID || locs[0].Geohash != geoindex.Encode(moved) {
		t.Fatalf("expected in-place update, got %+v", locs)
	}

	// present -> absent
	in.Location = nil
	if _, err := svc.Update(ctx, "u1", in); err != nil {
		t.Fatal(err)
	}
	if n := len(store.LocationsOf(id)); n != 0 {
		t.Fatalf("expected location removed, got %d", n)
	}
	if c, _ := store.Charity(id); c.Location != nil {
		t.Errorf("charity location should be cleared")
	}

	// absent -> present: exactly one record again
	final := model.Location{Latitude: -5, Longitude: 7}
	in.Location = &final
	if _, err := svc.Update(ctx, "u1", in); err != nil {
		t.Fatal(err)
	}
	locs = store.LocationsOf(id)
	if len(locs) != 1 || locs[0].Point != [2]float64{-5, 7} {
		t.Fatalf("expected a single record at final coordinates, got %+v", locs)
	}

	// unchanged: nothing moves
	before := locs[0]
	if _, err := svc.Update(ctx, "u1", in); err != nil {
		t.Fatal(err)
	}
	if after := store.LocationsOf(id); len(after) != 1 || after[0] != before {
		t.Errorf("unchanged location must not touch the index: %+v", after)
	}
}

func TestUpdateCharityPreservesConfirmation(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := &service.CharityService{Store: store}
	seedCharity(store, model.Charity{ID: "c1", CreatorID: "u1", Name: "old", Confirmed: true})

	in := validCharity("u1")
	in.ID = "c1"
	if _, err := svc.Update(context.Background(), "u1", in); err != nil {
		t.Fatal(err)
	}
	c, _ := store.Charity("c1")
	if !c.Confirmed || c.Name != "A" {
		t.Errorf("expected replaced record with confirmation kept, got %+v", c)
	}
}

func TestDeleteCharity(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := &service.CharityService{Store: store}
	ctx := context.Background()

	in := validCharity("u1")
	in.Location = &model.Location{Latitude: 1, Longitude: 1}
	id, _ := svc.Create(ctx, in)

	if err := svc.Delete(ctx, "u2", id); appErrors.KindOf(err) != appErrors.Forbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, ok := store.Charity(id); !ok {
		t.Fatal("charity must survive a forbidden delete")
	}

	if err := svc.Delete(ctx, "u1", id); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Charity(id); ok {
		t.Error("charity still present")
	}
	if n := len(store.LocationsOf(id)); n != 0 {
		t.Errorf("expected locations removed, got %d", n)
	}

	if err := svc.Delete(ctx, "u1", id); !appErrors.IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}
