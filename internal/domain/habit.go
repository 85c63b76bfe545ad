package domain

import "cloud.google.com/go/civil"

// Habit is a daily habit and the set of days it was completed.
// Streak and LastCompleted are derived from History except after a manual adjustment.
type Habit struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Streak        int         `json:"streak"`
	LastCompleted *civil.Date `json:"lastCompleted"`
	History       DaySet      `json:"history"`
	ReminderTime  string      `json:"reminderTime,omitempty"`
	Category      string      `json:"category"`
}

// DefaultHabitCategory is used when a habit carries no category.
const DefaultHabitCategory = "General"
