// Package habits maintains daily habit completion history and streaks.
package habits

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/lifeos/internal/domain"
)

// HabitXP is awarded when a habit is completed and taken back when the completion is undone.
const HabitXP = 50

// New validates and creates a habit with an empty history.
func New(id, name, category, reminder string) (domain.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Habit{}, fmt.Errorf("New: %w", domain.Invalid("name", "must not be empty"))
	}
	reminder = strings.TrimSpace(reminder)
	if reminder != "" {
		if _, err := time.Parse("15:04", reminder); err != nil {
			return domain.Habit{}, fmt.Errorf("New: %w", domain.Invalid("reminderTime", fmt.Sprintf("%q is not HH:MM", reminder)))
		}
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = domain.DefaultHabitCategory
	}
	return domain.Habit{
		ID:           id,
		Name:         name,
		Category:     category,
		ReminderTime: reminder,
	}, nil
}

// ComputeStreak counts consecutive completed days ending today, or ending
// yesterday when today is not yet done.
func ComputeStreak(history domain.DaySet, today civil.Date) int {
	cursor := today
	if !history.Contains(cursor) {
		cursor = today.AddDays(-1)
		if !history.Contains(cursor) {
			return 0
		}
	}

	streak := 0
	for history.Contains(cursor) {
		streak++
		cursor = cursor.AddDays(-1)
	}
	return streak
}

// Toggle marks today done, or undoes today's completion, then recomputes the
// streak and last completion from history. completed reports the new state of today.
func Toggle(h domain.Habit, today civil.Date) (domain.Habit, bool) {
	completed := !h.History.Contains(today)
	if completed {
		h.History = h.History.With(today)
	} else {
		h.History = h.History.Without(today)
	}

	h.Streak = ComputeStreak(h.History, today)
	h.LastCompleted = nil
	if latest, ok := h.History.Latest(); ok {
		h.LastCompleted = &latest
	}
	return h, completed
}

// ManualAdjust shifts the stored streak by delta without touching history.
// The next Toggle recomputes the streak from history and discards the adjustment.
func ManualAdjust(h domain.Habit, delta int) domain.Habit {
	h.Streak += delta
	if h.Streak < 0 {
		h.Streak = 0
	}
	return h
}

// Refresh zeroes the stored streak when the chain is broken, i.e. the habit was
// last completed before yesterday. An intact streak, adjusted or not, is kept.
func Refresh(h domain.Habit, today civil.Date) domain.Habit {
	if h.Streak == 0 {
		return h
	}
	if h.LastCompleted == nil || h.LastCompleted.Before(today.AddDays(-1)) {
		h.Streak = 0
	}
	return h
}

// FindByName returns the index of the first habit whose name contains fragment,
// ignoring case, or -1.
func FindByName(habits []domain.Habit, fragment string) int {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return -1
	}
	for i, h := range habits {
		if strings.Contains(strings.ToLower(h.Name), fragment) {
			return i
		}
	}
	return -1
}

// FindByID returns the index of the habit with id, or -1.
func FindByID(habits []domain.Habit, id string) int {
	for i, h := range habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}
