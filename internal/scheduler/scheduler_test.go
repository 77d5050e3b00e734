package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCronRejectsMalformedExpression(t *testing.T) {
	s := New()
	err := s.AddCron("bad", "every other tuesday", func() {})
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestAddCronComputesFirstRun(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC) // Monday
	s.now = func() time.Time { return base }

	require.NoError(t, s.AddCron("hourly", "0 * * * *", func() {}))

	due := s.DueTasks(base.Add(20 * time.Minute)) // 10:50, before 11:00
	assert.Empty(t, due)

	due = s.DueTasks(base.Add(31 * time.Minute)) // 11:01
	require.Len(t, due, 1)
	assert.Equal(t, "hourly", due[0].Name)
}

func TestDueTasksAdvancesOnlyReturnedTasks(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	require.NoError(t, s.AddCron("hourly", "0 * * * *", func() {}))
	require.NoError(t, s.AddCron("daily", "0 0 * * *", func() {}))

	now := base.Add(61 * time.Minute) // 11:01
	due := s.DueTasks(now)
	require.Len(t, due, 1)
	assert.Equal(t, "hourly", due[0].Name)
	assert.Equal(t, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), due[0].NextRun)

	// Not due again until the recomputed next run passes.
	assert.Empty(t, s.DueTasks(now.Add(time.Minute)))
}

func TestDueTasksInclusiveBoundary(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	require.NoError(t, s.AddCron("hourly", "0 * * * *", func() {}))

	due := s.DueTasks(time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC))
	require.Len(t, due, 1)
}

func TestScheduleRollover(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) // Monday
	s.now = func() time.Time { return base }

	var fired []string
	s.ScheduleRollover("ESM6", DefaultCalendar(), "XNYS", func(sym string) {
		fired = append(fired, sym)
	})
	require.Equal(t, 1, s.Len())

	// XNYS closes 16:00 New York = 21:00 UTC in March (EST).
	due := s.DueTasks(time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC))
	require.Len(t, due, 1)
	due[0].Callback()
	assert.Equal(t, []string{"ESM6"}, fired)

	// Subsequent runs follow the weekly cron.
	assert.Equal(t, time.Friday, due[0].NextRun.Weekday())
}

func TestRemove(t *testing.T) {
	s := New()
	require.NoError(t, s.AddCron("t", "* * * * *", func() {}))
	s.Remove("t")
	assert.Equal(t, 0, s.Len())
}

func TestCalendarIsOpen(t *testing.T) {
	cal := DefaultCalendar()

	// 2026-03-02 is a Monday; 15:00 UTC = 10:00 New York.
	open := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	assert.True(t, cal.IsOpen("XNYS", open))

	// 02:00 UTC = 21:00 New York the prior evening.
	assert.False(t, cal.IsOpen("XNYS", time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)))

	// Saturday: equities closed, crypto open.
	sat := time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)
	assert.False(t, cal.IsOpen("XNYS", sat))
	assert.True(t, cal.IsOpen("CRYPTO", sat))

	// Unknown calendars are treated as always open.
	assert.True(t, cal.IsOpen("LUNAR", sat))
}

func TestCalendarNextOpenClose(t *testing.T) {
	cal := DefaultCalendar()

	// Mid-session Monday: same-day window.
	ts := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	open, close := cal.NextOpenClose("XNYS", ts)
	assert.Equal(t, time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC), open)
	assert.Equal(t, time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC), close)

	// After the close the window rolls to the next day.
	open, _ = cal.NextOpenClose("XNYS", time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 3, 3, 14, 30, 0, 0, time.UTC), open)
}

func TestNewCalendarRejectsUnknownTimezone(t *testing.T) {
	_, err := NewCalendar(map[string]Session{
		"X": {Open: TimeOfDay{9, 0}, Close: TimeOfDay{17, 0}, Timezone: "Nowhere/Atlantis"},
	})
	require.Error(t, err)
}
