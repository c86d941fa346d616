package record

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_String_PriorityOrder(t *testing.T) {
	r := Record{"agent_name": "  ", "listing_agent_name": "Jane Doe", "buying_agent": "Other"}

	assert.Equal(t, "Jane Doe", r.String(TransactionAgentNameFields...), "blank values should fall through")
	assert.Equal(t, "", r.String("missing"))
}

func TestRecord_Money(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{"number", Record{"volume": 450000.0}, "450000"},
		{"formatted string", Record{"price": "$1,250,000.50"}, "1250000.5"},
		{"zero falls through", Record{"volume": 0, "price": 300000}, "300000"},
		{"empty string falls through", Record{"volume": "", "sale_price": "200000"}, "200000"},
		{"garbage", Record{"volume": "n/a"}, "0"},
		{"missing", Record{}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.record.Money(TransactionVolumeFields...)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestRecord_Time(t *testing.T) {
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record Record
	}{
		{"date only", Record{"close_date": "2025-03-14"}},
		{"rfc3339", Record{"close_date": "2025-03-14T00:00:00Z"}},
		{"us format", Record{"close_date": "03/14/2025"}},
		{"epoch millis", Record{"close_date": float64(want.UnixMilli())}},
		{"epoch seconds", Record{"close_date": want.Unix()}},
		{"epoch seconds string", Record{"close_date": "1741910400"}},
		{"compact date", Record{"close_date": "20250314"}},
		{"alias fallback", Record{"close_date": "", "closing_date": "2025-03-14"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.record.Time(TransactionDateFields...)
			require.True(t, ok)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	_, ok := Record{"close_date": "someday"}.Time(TransactionDateFields...)
	assert.False(t, ok)
	_, ok = Record{"close_date": 0}.Time(TransactionDateFields...)
	assert.False(t, ok)
}

func TestRecord_Bool(t *testing.T) {
	assert.True(t, Record{"capped": true}.Bool(RosterCappedFields...))
	assert.True(t, Record{"is_capped": "yes"}.Bool(RosterCappedFields...))
	assert.True(t, Record{"capped": false, "cap_reached": "true"}.Bool(RosterCappedFields...))
	assert.False(t, Record{"capped": "no"}.Bool(RosterCappedFields...))
	assert.False(t, Record{}.Bool(RosterCappedFields...))
}

func TestRoster_Name(t *testing.T) {
	assert.Equal(t, "Jane Doe", Roster{"name": "Jane Doe"}.Name())
	assert.Equal(t, "Jane Doe", Roster{"first_name": "Jane", "last_name": "Doe"}.Name())
	assert.Equal(t, "Jane", Roster{"first_name": "Jane"}.Name())
	assert.Equal(t, "", Roster{}.Name())
}

func TestRoster_IDFromNumber(t *testing.T) {
	assert.Equal(t, "42", Roster{"id": 42}.ID())
}

func TestListing_Active(t *testing.T) {
	assert.True(t, Listing{"status": "Active"}.Active())
	assert.True(t, Listing{"listing_status": "NEW"}.Active())
	assert.False(t, Listing{"status": "Pending"}.Active())
	assert.False(t, Listing{}.Active())
}

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	content := `{
  "roster": [{"id": 1, "name": "Jane Doe", "join_date": "2022-01-10"}],
  "closed": [{"agent_name": "Jane Doe", "close_date": "2025-01-02", "price": 500000, "gci": 15000}],
  "pending": [],
  "listings": [{"agent_name": "Jane Doe", "status": "Active"}]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	snapshot, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snapshot.Roster, 1)
	assert.Equal(t, "1", snapshot.Roster[0].ID())
	require.Len(t, snapshot.Closed, 1)
	assert.True(t, decimal.NewFromInt(500000).Equal(snapshot.Closed[0].Volume()))
	assert.Len(t, snapshot.Listings, 1)
}

func TestLoadSnapshot_Errors(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = LoadSnapshot(path)
	assert.Error(t, err)
}
