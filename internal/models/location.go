package models

import "time"

// LiveLocation is the most recent reported position for one role on one
// request. It lives only in the relay cache and is never persisted.
type LiveLocation struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequestLocations holds both sides of a request, either possibly absent.
type RequestLocations struct {
	Requester *LiveLocation `json:"requester"`
	Provider  *LiveLocation `json:"provider"`
}
