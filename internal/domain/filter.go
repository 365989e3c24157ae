package domain

import "strings"

// Filter narrows a timeline by title substring and category
type Filter struct {
	Query string
	Tag   string
}

// Matches reports whether e passes the filter. The title match ignores case;
// an empty tag or TagAll matches every category.
func (f Filter) Matches(e Event) bool {
	if f.Tag != "" && f.Tag != TagAll && e.Tag != f.Tag {
		return false
	}
	q := strings.ToLower(f.Query)
	return q == "" || strings.Contains(strings.ToLower(e.Title), q)
}

// Apply returns the matching events, preserving their order
func (f Filter) Apply(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
