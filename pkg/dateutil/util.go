package dateutil

import "time"

// Stamp formats a message time relative to now: the clock for today, the
// weekday within the last week and the date otherwise.
func Stamp(t, now time.Time) string {
	t = t.In(now.Location())

	switch {
	case sameDay(t, now):
		return t.Format("15:04")
	case sameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday " + t.Format("15:04")
	case now.Sub(t) < 7*24*time.Hour && t.Before(now):
		return t.Format("Mon 15:04")
	case t.Year() == now.Year():
		return t.Format("Jan 2 15:04")
	default:
		return t.Format("Jan 2 2006")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
