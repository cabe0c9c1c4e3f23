package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSession(t *testing.T) {
	for _, raw := range []string{"morning", "evening", "fullday"} {
		s, ok := ParseSession(raw)
		require.True(t, ok, raw)
		assert.Equal(t, Session(raw), s)
	}

	for _, raw := range []string{"", "Morning", "full-day", "night", "fullday "} {
		_, ok := ParseSession(raw)
		assert.False(t, ok, raw)
	}
}

func TestCapacityRecordCanBook(t *testing.T) {
	tests := []struct {
		name    string
		rec     CapacityRecord
		session Session
		want    bool
	}{
		{"empty morning", CapacityRecord{TotalLimit: 400}, SessionMorning, true},
		{"empty evening", CapacityRecord{TotalLimit: 400}, SessionEvening, true},
		{"empty fullday", CapacityRecord{TotalLimit: 400}, SessionFullDay, true},
		{
			"399 morning blocks fullday",
			CapacityRecord{MorningSold: 399, TotalLimit: 400},
			SessionFullDay,
			true, // 399 < 400, fullday only checks the combined total
		},
		{
			"400 total blocks everything",
			CapacityRecord{MorningSold: 400, TotalLimit: 400},
			SessionMorning,
			false,
		},
		{
			"morning pool full via fullday overlap",
			CapacityRecord{MorningSold: 200, FulldaySold: 200, TotalLimit: 400},
			SessionMorning,
			false,
		},
		{
			"evening still open when morning pool is full",
			CapacityRecord{MorningSold: 300, FulldaySold: 99, TotalLimit: 400},
			SessionEvening,
			true,
		},
		{
			"unknown session never bookable",
			CapacityRecord{TotalLimit: 400},
			Session("vip"),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.CanBook(tt.session))
		})
	}
}

// At 399 morning seats one more booking of any category still fits: the
// combined total only reaches 400. The 400th sale exhausts everything.
func TestCapacityRecordNearLimit(t *testing.T) {
	rec := CapacityRecord{MorningSold: 399, TotalLimit: 400}

	require.True(t, rec.CanBook(SessionMorning))
	require.True(t, rec.CanBook(SessionFullDay))
	rec.MorningSold++

	assert.False(t, rec.CanBook(SessionMorning))
	assert.False(t, rec.CanBook(SessionEvening))
	assert.False(t, rec.CanBook(SessionFullDay))
	assert.True(t, rec.Valid())
}

func TestCapacityRecordAvailability(t *testing.T) {
	rec := CapacityRecord{MorningSold: 100, EveningSold: 50, FulldaySold: 200, TotalLimit: 400}
	av := rec.Availability()

	assert.Equal(t, 50, av.Morning) // min(400-350, 400-300)
	assert.Equal(t, 50, av.Evening) // min(400-350, 400-250)
	assert.Equal(t, 50, av.Fullday)
	assert.Equal(t, 400, av.Limit)

	full := CapacityRecord{MorningSold: 200, EveningSold: 200, TotalLimit: 400}
	av = full.Availability()
	assert.Zero(t, av.Morning)
	assert.Zero(t, av.Evening)
	assert.Zero(t, av.Fullday)
}

func TestTicketIDFormat(t *testing.T) {
	assert.Equal(t, "TEDX-00001", FormatTicketID(1))
	assert.Equal(t, "TEDX-00420", FormatTicketID(420))
	assert.Equal(t, "TEDX-123456", FormatTicketID(123456))

	assert.True(t, ValidTicketID("TEDX-00001"))
	assert.True(t, ValidTicketID("TEDX-123456"))
	assert.False(t, ValidTicketID("TEDX-1"))
	assert.False(t, ValidTicketID("tedx-00001"))
	assert.False(t, ValidTicketID("TEDX00001"))
	assert.False(t, ValidTicketID(""))
	assert.False(t, ValidTicketID("TEDX-00001x"))
}
