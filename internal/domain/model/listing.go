package model

import "time"

// Listing carries the fields the billing flows need: ownership for the
// boost purchase check and the title used on the checkout item. The full
// listing document (photos, location, amenities) lives outside this core.
type Listing struct {
	ID        string // UUID
	OwnerID   string
	Title     string
	Active    bool
	CreatedAt time.Time
}
