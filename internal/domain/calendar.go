package domain

import (
	"net/url"
	"time"
)

const calendarStampLayout = "20060102T150405Z"

// GoogleCalendarLink builds a prefilled Google Calendar event link for a
// booked appointment. Events are one hour long. Returns "" when the
// appointment's date or time cannot be parsed.
func GoogleCalendarLink(a Appointment) string {
	start, err := a.StartsAt()
	if err != nil {
		return ""
	}
	end := start.Add(time.Hour)

	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", a.Title)
	params.Set("dates", start.UTC().Format(calendarStampLayout)+"/"+end.UTC().Format(calendarStampLayout))
	params.Set("details", a.Description)
	params.Set("location", "Office")

	return "https://calendar.google.com/calendar/render?" + params.Encode()
}
