package domain_test

import (
	"testing"
	"time"

	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	aTuesday  = time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
	aSaturday = time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)
	aSunday   = time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
)

func TestAvailableSlots_WeekdayWindow(t *testing.T) {
	slots := domain.AvailableSlots(aTuesday)
	require.Len(t, slots, 10) // 2 x (22 - 17)
	assert.Equal(t, "5:00 PM", slots[0])
	assert.Equal(t, "9:30 PM", slots[len(slots)-1])
}

func TestAvailableSlots_WeekendWindow(t *testing.T) {
	for _, d := range []time.Time{aSaturday, aSunday} {
		slots := domain.AvailableSlots(d)
		require.Len(t, slots, 22) // 2 x (23 - 12)
		assert.Equal(t, "12:00 PM", slots[0])
		assert.Equal(t, "10:30 PM", slots[len(slots)-1])
	}
}

func TestAvailableSlots_StrictlyIncreasing(t *testing.T) {
	for _, d := range []time.Time{aTuesday, aSaturday} {
		slots := domain.AvailableSlots(d)
		prev := -1
		for _, s := range slots {
			m := slotMinutes(t, s)
			require.Greater(t, m, prev, "slot %q out of order", s)
			prev = m
		}
	}
}

func TestAvailableSlots_Idempotent(t *testing.T) {
	assert.Equal(t, domain.AvailableSlots(aSaturday), domain.AvailableSlots(aSaturday))
	assert.Equal(t, domain.AvailableSlots(aTuesday), domain.AvailableSlots(aTuesday))
}

func TestSlotAvailable(t *testing.T) {
	assert.True(t, domain.SlotAvailable(aSaturday, "12:00 PM"))
	assert.False(t, domain.SlotAvailable(aTuesday, "12:00 PM"))
	assert.True(t, domain.SlotAvailable(aTuesday, "5:30 PM"))
	assert.False(t, domain.SlotAvailable(aTuesday, "10:00 PM"))
}

func slotMinutes(t *testing.T, label string) int {
	tm, err := time.Parse("3:04 PM", label)
	require.NoError(t, err)
	return tm.Hour()*60 + tm.Minute()
}
