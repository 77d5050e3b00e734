package scheduler

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock instant within a session's local day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) minutes() int { return t.Hour*60 + t.Minute }

// Session describes a market's daily trading window in its home timezone.
type Session struct {
	Open     TimeOfDay
	Close    TimeOfDay
	Timezone string
	Weekend  bool // true when the market also trades Saturday/Sunday
}

type session struct {
	Session
	loc *time.Location
}

// Calendar resolves market session windows by calendar name.
type Calendar struct {
	sessions map[string]session
}

// NewCalendar validates every session's timezone up front; an unrecognized
// timezone is a configuration error.
func NewCalendar(sessions map[string]Session) (*Calendar, error) {
	c := &Calendar{sessions: make(map[string]session, len(sessions))}
	for name, s := range sessions {
		loc, err := time.LoadLocation(s.Timezone)
		if err != nil {
			return nil, fmt.Errorf("calendar %s: load timezone %q: %w", name, s.Timezone, err)
		}
		c.sessions[name] = session{Session: s, loc: loc}
	}
	return c, nil
}

// DefaultCalendar covers the markets the platform trades out of the box.
func DefaultCalendar() *Calendar {
	c, err := NewCalendar(map[string]Session{
		"CRYPTO": {Open: TimeOfDay{0, 0}, Close: TimeOfDay{23, 59}, Timezone: "UTC", Weekend: true},
		"FX":     {Open: TimeOfDay{17, 0}, Close: TimeOfDay{17, 0}, Timezone: "America/New_York"},
		"XNYS":   {Open: TimeOfDay{9, 30}, Close: TimeOfDay{16, 0}, Timezone: "America/New_York"},
		"CME":    {Open: TimeOfDay{18, 0}, Close: TimeOfDay{17, 0}, Timezone: "America/Chicago"},
	})
	if err != nil {
		// The built-in table only uses IANA zones shipped with the tzdata;
		// failing here means the environment itself is broken.
		panic(err)
	}
	return c
}

// IsOpen reports whether the named market is trading at ts. Unknown calendar
// names are treated as always open.
func (c *Calendar) IsOpen(name string, ts time.Time) bool {
	s, ok := c.sessions[name]
	if !ok {
		return true
	}
	local := ts.In(s.loc)
	if !s.Weekend && (local.Weekday() == time.Saturday || local.Weekday() == time.Sunday) {
		return false
	}
	now := local.Hour()*60 + local.Minute()
	return s.Open.minutes() <= now && now <= s.Close.minutes()
}

// NextOpenClose returns the UTC open and close instants of the session day
// containing ts, rolling to the next day once the close has passed. Unknown
// calendars return (ts, ts).
func (c *Calendar) NextOpenClose(name string, ts time.Time) (time.Time, time.Time) {
	s, ok := c.sessions[name]
	if !ok {
		return ts, ts
	}
	local := ts.In(s.loc)
	day := local
	if local.Hour()*60+local.Minute() > s.Close.minutes() {
		day = local.AddDate(0, 0, 1)
	}
	open := time.Date(day.Year(), day.Month(), day.Day(), s.Open.Hour, s.Open.Minute, 0, 0, s.loc)
	close := time.Date(day.Year(), day.Month(), day.Day(), s.Close.Hour, s.Close.Minute, 0, 0, s.loc)
	return open.UTC(), close.UTC()
}
