package app

import (
	"context"
	"fmt"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/habits"
	"github.com/dvloznov/lifeos/internal/metrics"
)

// AddHabit creates a habit with an empty history.
func (a *App) AddHabit(ctx context.Context, name, category, reminder string) (domain.Habit, error) {
	h, err := habits.New(a.newID(), name, category, reminder)
	if err != nil {
		return domain.Habit{}, fmt.Errorf("AddHabit: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := append(append([]domain.Habit{}, a.habits...), h)
	if err := a.commitHabits(next); err != nil {
		return domain.Habit{}, fmt.Errorf("AddHabit: %w", err)
	}
	return h, nil
}

// ToggleHabit completes or un-completes habit id for today and moves XP accordingly.
// The habit is committed first; if the XP update then fails the toggled habit is
// returned together with the error.
func (a *App) ToggleHabit(ctx context.Context, id string) (domain.Habit, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := habits.FindByID(a.habits, id)
	if idx < 0 {
		return domain.Habit{}, false, fmt.Errorf("ToggleHabit: habit %s: %w", id, domain.ErrNotFound)
	}
	return a.toggleAt(idx)
}

// ToggleHabitByName toggles the first habit whose name contains fragment.
func (a *App) ToggleHabitByName(ctx context.Context, fragment string) (domain.Habit, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := habits.FindByName(a.habits, fragment)
	if idx < 0 {
		return domain.Habit{}, false, fmt.Errorf("ToggleHabitByName: %q: %w", fragment, domain.ErrNotFound)
	}
	return a.toggleAt(idx)
}

func (a *App) toggleAt(idx int) (domain.Habit, bool, error) {
	h, completed := habits.Toggle(a.habits[idx], a.Today())

	next := append([]domain.Habit{}, a.habits...)
	next[idx] = h
	if err := a.commitHabits(next); err != nil {
		return domain.Habit{}, false, fmt.Errorf("toggle %s: %w", h.ID, err)
	}

	xp := habits.HabitXP
	if !completed {
		xp = -xp
	}
	if err := a.commitProfile(metrics.AddXP(a.profile, xp)); err != nil {
		a.log.Error().Err(err).Str("habit", h.ID).Int("xp", xp).Msg("Habit toggled but XP was not saved")
		return h, completed, fmt.Errorf("toggle %s: awarding xp: %w", h.ID, err)
	}

	a.log.Info().Str("habit", h.Name).Bool("completed", completed).Int("streak", h.Streak).Msg("Habit toggled")
	return h, completed, nil
}

// AdjustStreak shifts the stored streak of habit id by delta without touching its history.
func (a *App) AdjustStreak(ctx context.Context, id string, delta int) (domain.Habit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := habits.FindByID(a.habits, id)
	if idx < 0 {
		return domain.Habit{}, fmt.Errorf("AdjustStreak: habit %s: %w", id, domain.ErrNotFound)
	}

	next := append([]domain.Habit{}, a.habits...)
	next[idx] = habits.ManualAdjust(next[idx], delta)
	if err := a.commitHabits(next); err != nil {
		return domain.Habit{}, fmt.Errorf("AdjustStreak: %w", err)
	}
	return next[idx], nil
}

func (a *App) DeleteHabit(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := habits.FindByID(a.habits, id)
	if idx < 0 {
		return fmt.Errorf("DeleteHabit: habit %s: %w", id, domain.ErrNotFound)
	}

	next := make([]domain.Habit, 0, len(a.habits)-1)
	next = append(next, a.habits[:idx]...)
	next = append(next, a.habits[idx+1:]...)
	if err := a.commitHabits(next); err != nil {
		return fmt.Errorf("DeleteHabit: %w", err)
	}
	return nil
}
