package domain

import "time"

// Event represents one journaled record on the timeline
type Event struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Note  string    `json:"note"`
	Date  time.Time `json:"date"`
	Tag   string    `json:"tag"`
	Media []string  `json:"media"`
}

// IsFuture reports whether the event is dated strictly after now
func (e Event) IsFuture(now time.Time) bool {
	return e.Date.After(now)
}

// Category vocabulary shared by the store's callers. The store itself does not enforce it.
const (
	TagPersonal = "Personal"
	TagWork     = "Work"
	TagStudy    = "Study"
	TagTravel   = "Travel"
	TagSport    = "Sport"

	// TagAll is only meaningful as a filter value and is never stored.
	TagAll = "All"

	DefaultTag = TagPersonal
)

// Tags returns the category vocabulary in display order
func Tags() []string {
	return []string{TagPersonal, TagWork, TagStudy, TagTravel, TagSport}
}

// IsKnownTag reports whether tag belongs to the vocabulary
func IsKnownTag(tag string) bool {
	for _, t := range Tags() {
		if t == tag {
			return true
		}
	}
	return false
}
