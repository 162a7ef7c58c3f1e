package models

import "time"

// Photo is a reference to an image taken on a particular day. The library
// serves bytes separately; the aggregator only carries references.
type Photo struct {
	Path    string    `json:"path"`
	TakenAt time.Time `json:"takenAt"`
	Size    int64     `json:"size"`
}

// CalendarRef identifies one calendar in the user's calendar account
type CalendarRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color,omitempty"`
}

// Event is a calendar event occurring on the queried day
type Event struct {
	ID       string    `json:"id"`
	Calendar string    `json:"calendar"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"allDay"`
	Location string    `json:"location,omitempty"`
}
