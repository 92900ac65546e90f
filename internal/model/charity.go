// internal/model/charity.go
package model

// Location is a latitude/longitude pair. Two locations are equal only when both
// coordinates are exactly equal.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SameLocation reports whether a and b are both absent or both present and equal.
func SameLocation(a, b *Location) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type Charity struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	FullName         string    `db:"full_name" json:"fullName,omitempty"`
	BriefDescription string    `db:"brief_description" json:"briefDescription"`
	Description      string    `db:"description" json:"description"`
	Organization     bool      `db:"organization" json:"organization"`
	Egrul            string    `db:"egrul" json:"egrul,omitempty"`
	Ogrn             string    `db:"ogrn" json:"ogrn,omitempty"`
	CreatorID        string    `db:"creator_id" json:"creatorid"`
	ManagerContact   string    `db:"manager_contact" json:"managerContact"`
	Address          *string   `db:"address" json:"address"`
	URL              *string   `db:"url" json:"url"`
	PhotoURL         *string   `db:"photo_url" json:"photourl"`
	Location         *Location `json:"location"`
	Tags             []string  `db:"tags" json:"tags"`
	Campaigns        []string  `db:"campaigns" json:"campaigns"`
	Confirmed        bool      `db:"confirmed" json:"confirmed"`
}

// CharityLocation is the geo index record of a charity. It is only ever written as a
// side effect of a charity write.
type CharityLocation struct {
	ID        string     `db:"id" json:"id"`
	CharityID string     `db:"charity_id" json:"charityid"`
	Geohash   string     `db:"geohash" json:"g"`
	Point     [2]float64 `json:"l"`
}
