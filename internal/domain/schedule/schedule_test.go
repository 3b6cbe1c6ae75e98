package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salonworks/booking-api/internal/models"
)

func day(hour, min int) time.Time {
	// 2026-03-02 is a Monday.
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func TestFreeSlotsNoBookings(t *testing.T) {
	window := Interval{Start: day(9, 0), End: day(18, 0)}

	slots := FreeSlots(window, nil)
	require.Equal(t, []TimeSlot{{Start: "09:00", End: "18:00"}}, slots)
}

func TestFreeSlotsSplitsAroundBusy(t *testing.T) {
	window := Interval{Start: day(9, 0), End: day(18, 0)}
	busy := []Interval{
		{Start: day(12, 0), End: day(13, 0)},
		{Start: day(10, 0), End: day(10, 30)},
	}

	slots := FreeSlots(window, busy)
	require.Equal(t, []TimeSlot{
		{Start: "09:00", End: "10:00"},
		{Start: "10:30", End: "12:00"},
		{Start: "13:00", End: "18:00"},
	}, slots)
}

func TestFreeSlotsAdjacentBusyDoesNotSplit(t *testing.T) {
	window := Interval{Start: day(9, 0), End: day(12, 0)}
	busy := []Interval{
		{Start: day(10, 0), End: day(11, 0)},
		{Start: day(11, 0), End: day(11, 30)},
	}

	slots := FreeSlots(window, busy)
	require.Equal(t, []TimeSlot{
		{Start: "09:00", End: "10:00"},
		{Start: "11:30", End: "12:00"},
	}, slots)
}

func TestFreeSlotsBusyCoversWindow(t *testing.T) {
	window := Interval{Start: day(9, 0), End: day(12, 0)}
	busy := []Interval{{Start: day(8, 0), End: day(13, 0)}}

	require.Empty(t, FreeSlots(window, busy))
}

func TestFreeSlotsOverlappingBusyMerged(t *testing.T) {
	window := Interval{Start: day(9, 0), End: day(12, 0)}
	busy := []Interval{
		{Start: day(9, 30), End: day(10, 30)},
		{Start: day(10, 0), End: day(11, 0)},
	}

	slots := FreeSlots(window, busy)
	require.Equal(t, []TimeSlot{
		{Start: "09:00", End: "09:30"},
		{Start: "11:00", End: "12:00"},
	}, slots)
}

func weeklyHours() []models.StoreBusinessHours {
	hours := make([]models.StoreBusinessHours, 0, 7)
	for d := 0; d <= 6; d++ {
		h := models.StoreBusinessHours{
			DayOfWeek: d,
			OpenTime:  "10:00",
			CloseTime: "20:00",
		}
		if d == 0 {
			// Closed Sundays.
			h.IsClosed = true
			h.OpenTime = ""
			h.CloseTime = ""
		}
		hours = append(hours, h)
	}
	return hours
}

func TestIsStoreOpen(t *testing.T) {
	hours := weeklyHours()

	require.True(t, IsStoreOpen(hours, nil, day(10, 0)))
	require.True(t, IsStoreOpen(hours, nil, day(19, 59)))
	require.False(t, IsStoreOpen(hours, nil, day(20, 0)))
	require.False(t, IsStoreOpen(hours, nil, day(9, 59)))

	sunday := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.False(t, IsStoreOpen(hours, nil, sunday))
}

func TestIsStoreOpenDuringClosure(t *testing.T) {
	hours := weeklyHours()
	closures := []models.StoreClosure{{
		StartDatetime: day(12, 0),
		EndDatetime:   day(14, 0),
	}}

	require.False(t, IsStoreOpen(hours, closures, day(13, 0)))
	require.True(t, IsStoreOpen(hours, closures, day(14, 0)))
}

func TestNextOpenTimeSameDay(t *testing.T) {
	hours := weeklyHours()

	next := NextOpenTime(hours, nil, day(8, 0))
	require.NotNil(t, next)
	require.Equal(t, day(10, 0), *next)
}

func TestNextOpenTimeAlreadyOpen(t *testing.T) {
	hours := weeklyHours()

	next := NextOpenTime(hours, nil, day(11, 0))
	require.NotNil(t, next)
	require.Equal(t, day(11, 0), *next)
}

func TestNextOpenTimeSkipsClosedSunday(t *testing.T) {
	hours := weeklyHours()

	saturdayNight := time.Date(2026, 3, 7, 21, 0, 0, 0, time.UTC)
	next := NextOpenTime(hours, nil, saturdayNight)
	require.NotNil(t, next)

	monday := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	require.Equal(t, monday, *next)
}

func TestNextOpenTimePushedPastClosure(t *testing.T) {
	hours := weeklyHours()
	closures := []models.StoreClosure{{
		StartDatetime: day(10, 0),
		EndDatetime:   day(15, 0),
	}}

	next := NextOpenTime(hours, closures, day(8, 0))
	require.NotNil(t, next)
	require.Equal(t, day(15, 0), *next)
}

func TestNextOpenTimeNoneWithinHorizon(t *testing.T) {
	allClosed := []models.StoreBusinessHours{}
	for d := 0; d <= 6; d++ {
		allClosed = append(allClosed, models.StoreBusinessHours{
			DayOfWeek: d,
			IsClosed:  true,
		})
	}

	require.Nil(t, NextOpenTime(allClosed, nil, day(8, 0)))
}

func TestOnDateAndValidHM(t *testing.T) {
	require.True(t, ValidHM("09:30"))
	require.False(t, ValidHM("24:00"))
	require.False(t, ValidHM("930"))

	anchored := OnDate("14:45", day(0, 0))
	require.Equal(t, day(14, 45), anchored)

	require.True(t, OnDate("bogus", day(0, 0)).IsZero())
}
