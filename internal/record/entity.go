package record

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field resolution order per entity. The first usable key wins.
var (
	RosterIDFields       = []string{"id", "agent_id", "rezen_id"}
	RosterNameFields     = []string{"name", "display_name", "full_name"}
	RosterJoinDateFields = []string{"join_date", "joined_at", "anniversary_date", "created_at"}
	RosterCappedFields   = []string{"capped", "is_capped", "cap_reached"}

	TransactionAgentNameFields = []string{"agent_name", "listing_agent_name", "listing_agent", "buying_agent_name", "buying_agent"}
	TransactionAgentIDFields   = []string{"agent_id", "rezen_agent_id"}
	TransactionDateFields      = []string{"close_date", "closing_date", "created_at", "expected_close_date"}
	TransactionVolumeFields    = []string{"volume", "price", "sale_price", "close_price"}
	TransactionGCIFields       = []string{"gci", "gross_commission"}

	ListingAgentNameFields = []string{"agent_name", "listing_agent_name", "list_agent_name"}
	ListingAgentIDFields   = []string{"agent_id", "rezen_agent_id"}
	ListingStatusFields    = []string{"status", "listing_status"}
	ListingDateFields      = []string{"listing_date", "list_date", "created_at"}
)

// Roster is one member of the brokerage roster.
type Roster map[string]any

// ID returns the roster member's agent id.
func (r Roster) ID() string {
	return Record(r).String(RosterIDFields...)
}

// Name returns the display name, falling back to "first last".
func (r Roster) Name() string {
	if name := Record(r).String(RosterNameFields...); name != "" {
		return name
	}
	first := Record(r).String("first_name")
	last := Record(r).String("last_name")
	return strings.TrimSpace(first + " " + last)
}

// JoinDate returns the date the agent joined the brokerage.
func (r Roster) JoinDate() (time.Time, bool) {
	return Record(r).Time(RosterJoinDateFields...)
}

// Status returns the lowercased roster status.
func (r Roster) Status() string {
	return strings.ToLower(Record(r).String("status"))
}

// Capped reports whether the agent has reached the commission cap this period.
func (r Roster) Capped() bool {
	return Record(r).Bool(RosterCappedFields...)
}

// Transaction is a closed or pending deal.
type Transaction map[string]any

// AgentName returns the name of the agent credited with the deal.
func (t Transaction) AgentName() string {
	return Record(t).String(TransactionAgentNameFields...)
}

// AgentID returns the id of the agent credited with the deal.
func (t Transaction) AgentID() string {
	return Record(t).String(TransactionAgentIDFields...)
}

// Date returns the closing date, or the expected one for pending deals.
func (t Transaction) Date() (time.Time, bool) {
	return Record(t).Time(TransactionDateFields...)
}

// Volume returns the sale price of the deal.
func (t Transaction) Volume() decimal.Decimal {
	return Record(t).Money(TransactionVolumeFields...)
}

// GCI returns the gross commission income of the deal.
func (t Transaction) GCI() decimal.Decimal {
	return Record(t).Money(TransactionGCIFields...)
}

// Listing is an MLS listing attributed to an agent.
type Listing map[string]any

// AgentName returns the listing agent's name.
func (l Listing) AgentName() string {
	return Record(l).String(ListingAgentNameFields...)
}

// AgentID returns the listing agent's id.
func (l Listing) AgentID() string {
	return Record(l).String(ListingAgentIDFields...)
}

// Status returns the lowercased listing status.
func (l Listing) Status() string {
	return strings.ToLower(Record(l).String(ListingStatusFields...))
}

// Date returns the date the listing went live.
func (l Listing) Date() (time.Time, bool) {
	return Record(l).Time(ListingDateFields...)
}

// Active reports whether the listing counts towards an agent's live inventory.
func (l Listing) Active() bool {
	switch l.Status() {
	case "active", "new":
		return true
	}
	return false
}

// Snapshot is one fetch of every data set a dashboard page needs.
type Snapshot struct {
	Roster   []Roster      `json:"roster" validate:"required,min=1"`
	Closed   []Transaction `json:"closed"`
	Pending  []Transaction `json:"pending"`
	Listings []Listing     `json:"listings"`
}

// LoadSnapshot reads a JSON snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(content, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	return snapshot, nil
}
