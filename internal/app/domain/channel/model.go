// Package channel defines the payable action channel domain model.
package channel

import "time"

// Record is the persisted unit for a registered channel. Records are
// immutable after creation; the route is the unique lookup key.
type Record struct {
	Route        string    `json:"route"`
	ChannelName  string    `json:"channelName"`
	Description  string    `json:"description"`
	Fee          float64   `json:"fee"`
	CoverImage   string    `json:"coverImage"`
	OwnerAddress string    `json:"ownerAddress"`
	ExternalLink string    `json:"externalLink"`
	ContactLink  string    `json:"contactLink"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary is the public-safe projection of a Record. The owner address is
// deliberately absent.
type Summary struct {
	Route       string    `json:"route"`
	ChannelName string    `json:"channelName"`
	Description string    `json:"description"`
	Fee         float64   `json:"fee"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summarize projects a record to its listing form.
func Summarize(rec Record) Summary {
	return Summary{
		Route:       rec.Route,
		ChannelName: rec.ChannelName,
		Description: rec.Description,
		Fee:         rec.Fee,
		CreatedAt:   rec.CreatedAt,
	}
}
