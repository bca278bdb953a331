package models

import "time"

// Request statuses.
const (
	StatusPending    = "pending"
	StatusAccepted   = "accepted"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Service categories a request can be created with.
const (
	CategoryGeneral    = "general"
	CategoryRepair     = "repair"
	CategoryEmergency  = "emergency"
	CategoryInspection = "inspection"
)

var Categories = map[string]struct{}{
	CategoryGeneral:    {},
	CategoryRepair:     {},
	CategoryEmergency:  {},
	CategoryInspection: {},
}

// RequestLocation is the address the request was created for.
type RequestLocation struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type Feedback struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type Request struct {
	ID          string          `json:"id"`
	RequesterID string          `json:"requester_id"`
	ProviderID  *string         `json:"provider_id,omitempty"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Location    RequestLocation `json:"location"`
	Status      string          `json:"status"`
	Feedback    *Feedback       `json:"feedback,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Display names joined from the identity store for list endpoints.
	RequesterName string `json:"requester_name,omitempty"`
	ProviderName  string `json:"provider_name,omitempty"`
}
