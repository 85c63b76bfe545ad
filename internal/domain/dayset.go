package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
)

// DaySet is an ordered set of calendar days, oldest first.
// The zero value is an empty set. Mutating methods return a new set.
type DaySet struct {
	days []civil.Date
}

// NewDaySet builds a set from days in any order, collapsing duplicates.
func NewDaySet(days ...civil.Date) DaySet {
	var s DaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

func (s DaySet) search(d civil.Date) int {
	return sort.Search(len(s.days), func(i int) bool {
		return !s.days[i].Before(d)
	})
}

// Len returns the number of days in the set.
func (s DaySet) Len() int {
	return len(s.days)
}

// Contains reports whether d is in the set.
func (s DaySet) Contains(d civil.Date) bool {
	i := s.search(d)
	return i < len(s.days) && s.days[i] == d
}

// With returns a copy of the set that includes d.
func (s DaySet) With(d civil.Date) DaySet {
	i := s.search(d)
	if i < len(s.days) && s.days[i] == d {
		return s
	}
	out := make([]civil.Date, 0, len(s.days)+1)
	out = append(out, s.days[:i]...)
	out = append(out, d)
	out = append(out, s.days[i:]...)
	return DaySet{days: out}
}

// Without returns a copy of the set that excludes d.
func (s DaySet) Without(d civil.Date) DaySet {
	i := s.search(d)
	if i >= len(s.days) || s.days[i] != d {
		return s
	}
	out := make([]civil.Date, 0, len(s.days)-1)
	out = append(out, s.days[:i]...)
	out = append(out, s.days[i+1:]...)
	return DaySet{days: out}
}

// Latest returns the most recent day, or false when the set is empty.
func (s DaySet) Latest() (civil.Date, bool) {
	if len(s.days) == 0 {
		return civil.Date{}, false
	}
	return s.days[len(s.days)-1], true
}

// Days returns the days in ascending order.
func (s DaySet) Days() []civil.Date {
	out := make([]civil.Date, len(s.days))
	copy(out, s.days)
	return out
}

// Descending returns the days newest first.
func (s DaySet) Descending() []civil.Date {
	out := make([]civil.Date, len(s.days))
	for i, d := range s.days {
		out[len(s.days)-1-i] = d
	}
	return out
}

// Equal reports whether both sets hold the same days.
func (s DaySet) Equal(other DaySet) bool {
	if len(s.days) != len(other.days) {
		return false
	}
	for i := range s.days {
		if s.days[i] != other.days[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as an ascending array of YYYY-MM-DD strings.
func (s DaySet) MarshalJSON() ([]byte, error) {
	out := make([]string, len(s.days))
	for i, d := range s.days {
		out[i] = d.String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an array of YYYY-MM-DD strings. Duplicates collapse.
func (s *DaySet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("DaySet: %w", err)
	}
	var set DaySet
	for _, r := range raw {
		d, err := civil.ParseDate(r)
		if err != nil {
			return fmt.Errorf("DaySet: parsing %q: %w", r, err)
		}
		set = set.With(d)
	}
	*s = set
	return nil
}
