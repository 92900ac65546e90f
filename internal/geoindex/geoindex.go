// Package geoindex keeps the charity_locations index in step with charity records.
//
// Reconcile never writes on its own: lookups go through the caller's transaction and
// every mutation is staged into it, so the index commits together with the charity.
package geoindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"

	"github.com/unclebandit/charity-backend/internal/model"
)

// Precision is the geohash length stored in the index.
const Precision = 10

type Transition int

const (
	None    Transition = iota // nothing to do
	Insert                    // absent -> present
	Update                    // present -> present, changed
	Delete                    // present -> absent
	Missing                   // index record expected but not found
)

func (t Transition) String() string {
	switch t {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Missing:
		return "missing"
	default:
		return "none"
	}
}

type Lookup interface {
	FindLocationsByCharity(ctx context.Context, charityID string) ([]model.CharityLocation, error)
}

type Writer interface {
	InsertLocation(loc model.CharityLocation)
	UpdateLocation(loc model.CharityLocation)
	DeleteLocation(id string)
}

// Batch is the slice of a storage transaction the index needs.
type Batch interface {
	Lookup
	Writer
}

func Encode(loc model.Location) string {
	return geohash.EncodeWithPrecision(loc.Latitude, loc.Longitude, Precision)
}

// NewRecord builds a fresh index record for a charity at loc.
func NewRecord(charityID string, loc model.Location) model.CharityLocation {
	return model.CharityLocation{
		ID:        uuid.NewString(),
		CharityID: charityID,
		Geohash:   Encode(loc),
		Point:     [2]float64{loc.Latitude, loc.Longitude},
	}
}

// Reconcile stages the index writes needed to move a charity from prev to next.
func Reconcile(ctx context.Context, b Batch, charityID string, prev, next *model.Location) (Transition, error) {
	if model.SameLocation(prev, next) {
		return None, nil
	}

	if prev == nil {
		b.InsertLocation(NewRecord(charityID, *next))
		return Insert, nil
	}

	existing, err := b.FindLocationsByCharity(ctx, charityID)
	if err != nil {
		return None, fmt.Errorf("lookup location of charity %s: %w", charityID, err)
	}
	if len(existing) == 0 {
		return Missing, nil
	}

	if next == nil {
		b.DeleteLocation(existing[0].ID)
		return Delete, nil
	}

	rec := existing[0]
	rec.Geohash = Encode(*next)
	rec.Point = [2]float64{next.Latitude, next.Longitude}
	b.UpdateLocation(rec)
	return Update, nil
}

// DeleteAll stages removal of every index record of a charity and returns how many.
func DeleteAll(ctx context.Context, b Batch, charityID string) (int, error) {
	existing, err := b.FindLocationsByCharity(ctx, charityID)
	if err != nil {
		return 0, fmt.Errorf("lookup locations of charity %s: %w", charityID, err)
	}
	for _, loc := range existing {
		b.DeleteLocation(loc.ID)
	}
	return len(existing), nil
}
