package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		aStart string
		aEnd   string
		bStart string
		bEnd   string
		want   bool
	}{
		{"identical intervals", "2024-04-01", "2024-04-05", "2024-04-01", "2024-04-05", true},
		{"partial overlap", "2024-04-01", "2024-04-05", "2024-04-03", "2024-04-07", true},
		{"contained", "2024-04-01", "2024-04-10", "2024-04-03", "2024-04-05", true},
		{"one shared day", "2024-04-01", "2024-04-05", "2024-04-04", "2024-04-08", true},
		{"adjacent, b after a", "2024-04-01", "2024-04-05", "2024-04-05", "2024-04-10", false},
		{"adjacent, a after b", "2024-04-05", "2024-04-10", "2024-04-01", "2024-04-05", false},
		{"disjoint", "2024-04-01", "2024-04-03", "2024-04-10", "2024-04-12", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(date(tt.aStart), date(tt.aEnd), date(tt.bStart), date(tt.bEnd))
			assert.Equal(t, tt.want, got)

			// Swapping existing and candidate roles must not change the answer.
			swapped := Overlaps(date(tt.bStart), date(tt.bEnd), date(tt.aStart), date(tt.aEnd))
			assert.Equal(t, got, swapped)
		})
	}
}

func TestDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	local := time.Date(2024, 4, 1, 23, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Day(local))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-04-01")
	assert.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	_, err = ParseDate("01.04.2024")
	assert.Error(t, err)
}

func TestReservationNights(t *testing.T) {
	r := Reservation{CheckIn: date("2024-04-01"), CheckOut: date("2024-04-05")}
	assert.Equal(t, 4, r.Nights())
}

func TestReservationPatch(t *testing.T) {
	assert.True(t, ReservationPatch{}.Empty())

	id := int64(3)
	p := ReservationPatch{GuestID: &id}
	assert.False(t, p.Empty())
	assert.False(t, p.TouchesSchedule())

	ci := date("2024-04-01")
	p = ReservationPatch{CheckIn: &ci}
	assert.True(t, p.TouchesSchedule())
}
