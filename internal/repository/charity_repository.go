package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
	"github.com/unclebandit/charity-backend/internal/model"
)

const charityColumns = `id, name, full_name, brief_description, description, organization, egrul, ogrn,
    creator_id, manager_contact, address, url, photo_url, latitude, longitude, tags, campaigns, confirmed`

func (t *sqlTx) GetCharity(ctx context.Context, id string) (*model.Charity, error) {
	query := t.forUpdate(`SELECT ` + charityColumns + ` FROM charities WHERE id=$1`)

	var (
		c              model.Charity
		address        sql.NullString
		url            sql.NullString
		photoURL       sql.NullString
		lat, lng       sql.NullFloat64
		tags, campaign string
	)
	err := t.queryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.FullName, &c.BriefDescription, &c.Description, &c.Organization,
		&c.Egrul, &c.Ogrn, &c.CreatorID, &c.ManagerContact, &address, &url, &photoURL,
		&lat, &lng, &tags, &campaign, &c.Confirmed,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCharityNotFound(id)
		}
		return nil, err
	}

	c.Address = nullableString(address)
	c.URL = nullableString(url)
	c.PhotoURL = nullableString(photoURL)
	if lat.Valid && lng.Valid {
		c.Location = &model.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
		return nil, fmt.Errorf("charity %s tags: %w", id, err)
	}
	if err := json.Unmarshal([]byte(campaign), &c.Campaigns); err != nil {
		return nil, fmt.Errorf("charity %s campaigns: %w", id, err)
	}
	return &c, nil
}

// PutCharity stages a full overwrite of the charity row.
func (t *sqlTx) PutCharity(c model.Charity) {
	var lat, lng interface{}
	if c.Location != nil {
		lat, lng = c.Location.Latitude, c.Location.Longitude
	}
	t.stage(`
        INSERT INTO charities (`+charityColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        ON CONFLICT (id) DO UPDATE SET
            name=excluded.name, full_name=excluded.full_name,
            brief_description=excluded.brief_description, description=excluded.description,
            organization=excluded.organization, egrul=excluded.egrul, ogrn=excluded.ogrn,
            creator_id=excluded.creator_id, manager_contact=excluded.manager_contact,
            address=excluded.address, url=excluded.url, photo_url=excluded.photo_url,
            latitude=excluded.latitude, longitude=excluded.longitude,
            tags=excluded.tags, campaigns=excluded.campaigns, confirmed=excluded.confirmed
    `,
		c.ID, c.Name, c.FullName, c.BriefDescription, c.Description, c.Organization, c.Egrul, c.Ogrn,
		c.CreatorID, c.ManagerContact, nullString(c.Address), nullString(c.URL), nullString(c.PhotoURL),
		lat, lng, jsonList(c.Tags), jsonList(c.Campaigns), c.Confirmed,
	)
}

func (t *sqlTx) DeleteCharity(id string) {
	t.stage(`DELETE FROM charities WHERE id=$1`, id)
}

// ====================== Geo index ======================

func (t *sqlTx) FindLocationsByCharity(ctx context.Context, charityID string) ([]model.CharityLocation, error) {
	query := t.forUpdate(`SELECT id, charity_id, geohash, latitude, longitude FROM charity_locations WHERE charity_id=$1 ORDER BY id`)
	rows, err := t.query(ctx, query, charityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := []model.CharityLocation{}
	for rows.Next() {
		var l model.CharityLocation
		if err := rows.Scan(&l.ID, &l.CharityID, &l.Geohash, &l.Point[0], &l.Point[1]); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (t *sqlTx) InsertLocation(loc model.CharityLocation) {
	t.stage(`INSERT INTO charity_locations (id, charity_id, geohash, latitude, longitude) VALUES ($1, $2, $3, $4, $5)`,
		loc.ID, loc.CharityID, loc.Geohash, loc.Point[0], loc.Point[1])
}

func (t *sqlTx) UpdateLocation(loc model.CharityLocation) {
	t.stage(`UPDATE charity_locations SET geohash=$1, latitude=$2, longitude=$3 WHERE id=$4`,
		loc.Geohash, loc.Point[0], loc.Point[1], loc.ID)
}

func (t *sqlTx) DeleteLocation(id string) {
	t.stage(`DELETE FROM charity_locations WHERE id=$1`, id)
}

// ====================== helpers ======================

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}
