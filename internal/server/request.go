package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/record"
	"github.com/go-playground/validator/v10"
)

// validate is shared by every request type; validator caches struct metadata.
var validate = validator.New()

// Date is a request timestamp. It accepts RFC 3339 or a plain YYYY-MM-DD
// day, which means midnight UTC of that day.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return fmt.Errorf("invalid date %q: want RFC 3339 or YYYY-MM-DD", value)
	}
	d.Time = t
	return nil
}

// ReportRequest asks for the full retention-risk page of a snapshot.
type ReportRequest struct {
	// AsOf: evaluation time; defaults to the time the request is received.
	AsOf *Date `json:"asOf"`
	// Snapshot: the fetched roster, transactions and listings.
	Snapshot record.Snapshot `json:"snapshot"`
	// TopAlerts: alert list length; 0 uses the configured default.
	TopAlerts int `json:"topAlerts" validate:"gte=0,lte=1000"`
}

// Validate checks the request against its validation tags.
func (r *ReportRequest) Validate() error {
	return validate.Struct(r)
}

// AgentRequest asks for the profile of a single agent.
type AgentRequest struct {
	AsOf                 *Date                `json:"asOf"`
	Agent                record.Roster        `json:"agent" validate:"required,min=1"`
	Closed               []record.Transaction `json:"closed"`
	Pending              []record.Transaction `json:"pending"`
	Listings             []record.Listing     `json:"listings"`
	TotalBrokerageVolume float64              `json:"totalBrokerageVolume" validate:"gte=0"`
}

// Validate checks the request against its validation tags.
func (r *AgentRequest) Validate() error {
	return validate.Struct(r)
}

// ErrorResponse is the body of every 4xx answer.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}
