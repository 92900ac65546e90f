// internal/service/charity_service.go
package service

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/geoindex"
	"github.com/unclebandit/charity-backend/internal/model"
	"github.com/unclebandit/charity-backend/internal/repository"
)

// CharityInput is a charity as submitted by a client. Nil slices and a nil
// Organization mean the field was absent from the request.
type CharityInput struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	FullName         string          `json:"fullName"`
	BriefDescription string          `json:"briefDescription"`
	Description      string          `json:"description"`
	Organization     *bool           `json:"organization"`
	Egrul            string          `json:"egrul"`
	Ogrn             string          `json:"ogrn"`
	CreatorID        string          `json:"creatorid"`
	ManagerContact   string          `json:"managerContact"`
	Address          *string         `json:"address"`
	URL              *string         `json:"url"`
	PhotoURL         *string         `json:"photourl"`
	Location         *model.Location `json:"location"`
	Tags             []string        `json:"tags"`
	Campaigns        []string        `json:"campaigns"`
}

// Validate checks the fields every full charity record must carry. Legal
// identifiers are required only for organizations; a location must be a real
// coordinate pair.
func (in CharityInput) Validate() error {
	required := []string{in.Name, in.BriefDescription, in.Description, in.CreatorID, in.ManagerContact}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return appErrors.NewBadRequest("Bad request")
		}
	}
	if in.Campaigns == nil || in.Tags == nil || in.Organization == nil {
		return appErrors.NewBadRequest("Bad request")
	}
	if *in.Organization && (strings.TrimSpace(in.Egrul) == "" || strings.TrimSpace(in.Ogrn) == "") {
		return appErrors.NewBadRequest("Bad request")
	}
	if loc := in.Location; loc != nil && (math.IsNaN(loc.Latitude) || math.IsNaN(loc.Longitude) ||
		loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180) {
		return appErrors.NewBadRequest("Bad request")
	}
	return nil
}

func (in CharityInput) toModel(id string, confirmed bool) model.Charity {
	c := model.Charity{
		ID:               id,
		Name:             in.Name,
		FullName:         in.FullName,
		BriefDescription: in.BriefDescription,
		Description:      in.Description,
		Organization:     *in.Organization,
		CreatorID:        in.CreatorID,
		ManagerContact:   in.ManagerContact,
		Address:          emptyToNil(in.Address),
		URL:              emptyToNil(in.URL),
		PhotoURL:         emptyToNil(in.PhotoURL),
		Location:         in.Location,
		Tags:             in.Tags,
		Campaigns:        in.Campaigns,
		Confirmed:        confirmed,
	}
	if c.Organization {
		c.Egrul, c.Ogrn = in.Egrul, in.Ogrn
	}
	return c
}

type CharityService struct {
	Store repository.Store
}

// Create stores a new charity and, when it has a location, its index record.
func (s *CharityService) Create(ctx context.Context, in CharityInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	charity := in.toModel(id, false)
	tx.PutCharity(charity)
	if _, err := geoindex.Reconcile(ctx, tx, id, nil, charity.Location); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	log.Info().Str("charity_id", id).Bool("located", charity.Location != nil).Msg("charity created")
	return id, nil
}

// Update replaces the charity with the submitted full record. Only the creator may
// update it, and the submitted creator must stay the same person.
func (s *CharityService) Update(ctx context.Context, subject string, in CharityInput) (string, error) {
	if strings.TrimSpace(in.ID) == "" {
		return "", appErrors.NewBadRequest("Bad request")
	}
	if err := in.Validate(); err != nil {
		return "", err
	}
	if in.CreatorID != subject {
		return "", appErrors.NewForbidden("Insufficient permissions")
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	prev, err := tx.GetCharity(ctx, in.ID)
	if err != nil {
		return "", err
	}
	if prev.CreatorID != subject {
		return "", appErrors.NewForbidden("Insufficient permissions")
	}

	next := in.toModel(in.ID, prev.Confirmed)
	transition, err := geoindex.Reconcile(ctx, tx, in.ID, prev.Location, next.Location)
	if err != nil {
		return "", err
	}
	if transition == geoindex.Missing {
		log.Warn().Str("charity_id", in.ID).Msg("⚠️ location index record missing, left untouched")
	}
	tx.PutCharity(next)

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	log.Info().Str("charity_id", in.ID).Str("location", transition.String()).Msg("charity updated")
	return in.ID, nil
}

// Delete removes the charity and every index record pointing at it.
func (s *CharityService) Delete(ctx context.Context, subject, charityID string) error {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	charity, err := tx.GetCharity(ctx, charityID)
	if err != nil {
		return err
	}
	if charity.CreatorID != subject {
		return appErrors.NewForbidden("Insufficient permissions")
	}

	tx.DeleteCharity(charityID)
	removed, err := geoindex.DeleteAll(ctx, tx, charityID)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Info().Str("charity_id", charityID).Int("locations", removed).Msg("charity deleted")
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
