package habits

import (
	"errors"
	"math/rand"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/lifeos/internal/domain"
)

func day(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeStreak(t *testing.T) {
	today := day("2024-03-10")

	tests := []struct {
		name    string
		history []string
		want    int
	}{
		{name: "empty", want: 0},
		{name: "only today", history: []string{"2024-03-10"}, want: 1},
		{name: "yesterday grace", history: []string{"2024-03-08", "2024-03-09"}, want: 2},
		{name: "gap breaks", history: []string{"2024-03-06", "2024-03-08", "2024-03-09", "2024-03-10"}, want: 3},
		{name: "two days ago is broken", history: []string{"2024-03-07", "2024-03-08"}, want: 0},
		{name: "across month boundary", history: []string{"2024-02-28", "2024-02-29", "2024-03-01"}, want: 0},
		{name: "future days ignored", history: []string{"2024-03-11", "2024-03-10"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var days []civil.Date
			for _, s := range tt.history {
				days = append(days, day(s))
			}
			if got := ComputeStreak(domain.NewDaySet(days...), today); got != tt.want {
				t.Errorf("ComputeStreak() = %d, want %d", got, tt.want)
			}
		})
	}

	leap := domain.NewDaySet(day("2024-02-28"), day("2024-02-29"), day("2024-03-01"))
	if got := ComputeStreak(leap, day("2024-03-01")); got != 3 {
		t.Errorf("leap day streak = %d, want 3", got)
	}
}

func TestToggle_DoubleToggleRestoresHabit(t *testing.T) {
	today := day("2024-03-10")
	last := day("2024-03-09")
	h := domain.Habit{
		ID:            "h1",
		Name:          "Read",
		History:       domain.NewDaySet(day("2024-03-08"), last),
		LastCompleted: &last,
		Streak:        2,
	}

	on, completed := Toggle(h, today)
	if !completed || on.Streak != 3 || *on.LastCompleted != today {
		t.Fatalf("after first toggle: completed=%v %+v", completed, on)
	}

	off, completed := Toggle(on, today)
	if completed {
		t.Error("second toggle should report not completed")
	}
	if !off.History.Equal(h.History) || off.Streak != h.Streak || *off.LastCompleted != *h.LastCompleted {
		t.Errorf("after double toggle = %+v, want %+v", off, h)
	}
}

func TestToggle_NeverDuplicatesHistory(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	h := domain.Habit{ID: "h1", Name: "Run"}
	start := day("2024-01-01")

	for i := 0; i < 500; i++ {
		today := start.AddDays(rng.Intn(30))
		var completed bool
		before := h.History.Contains(today)
		h, completed = Toggle(h, today)
		if completed == before {
			t.Fatalf("step %d: completed=%v but day was already present=%v", i, completed, before)
		}

		days := h.History.Days()
		for j := 1; j < len(days); j++ {
			if !days[j-1].Before(days[j]) {
				t.Fatalf("step %d: history not strictly ascending: %v", i, days)
			}
		}
		latest, ok := h.History.Latest()
		if ok != (h.LastCompleted != nil) || (ok && latest != *h.LastCompleted) {
			t.Fatalf("step %d: LastCompleted %v does not match history %v", i, h.LastCompleted, days)
		}
	}
}

func TestToggle_UndoLastDayClearsLastCompleted(t *testing.T) {
	today := day("2024-03-10")
	h, _ := Toggle(domain.Habit{ID: "h1", Name: "Meditate"}, today)
	h, _ = Toggle(h, today)
	if h.LastCompleted != nil || h.Streak != 0 || h.History.Len() != 0 {
		t.Errorf("habit = %+v", h)
	}
}

func TestManualAdjust(t *testing.T) {
	h := domain.Habit{Streak: 3, History: domain.NewDaySet(day("2024-03-10"))}

	up := ManualAdjust(h, 4)
	if up.Streak != 7 || up.History.Len() != 1 {
		t.Errorf("ManualAdjust(+4) = %+v", up)
	}
	if down := ManualAdjust(h, -10); down.Streak != 0 {
		t.Errorf("ManualAdjust(-10).Streak = %d, want 0", down.Streak)
	}
}

func TestRefresh(t *testing.T) {
	today := day("2024-03-10")
	yesterday := day("2024-03-09")
	old := day("2024-03-01")

	kept := Refresh(domain.Habit{Streak: 12, LastCompleted: &yesterday}, today)
	if kept.Streak != 12 {
		t.Errorf("intact streak = %d, want 12", kept.Streak)
	}
	broken := Refresh(domain.Habit{Streak: 12, LastCompleted: &old}, today)
	if broken.Streak != 0 {
		t.Errorf("broken streak = %d, want 0", broken.Streak)
	}
}

func TestNew(t *testing.T) {
	h, err := New("h1", "  Journal ", "", "07:30")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if h.Name != "Journal" || h.Category != domain.DefaultHabitCategory || h.ReminderTime != "07:30" {
		t.Errorf("habit = %+v", h)
	}

	for _, tc := range []struct{ name, reminder string }{{"", ""}, {"x", "7pm"}} {
		if _, err := New("h", tc.name, "", tc.reminder); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("New(%q, %q) error = %v, want ErrValidation", tc.name, tc.reminder, err)
		}
	}
}

func TestFindByName(t *testing.T) {
	habits := []domain.Habit{{ID: "1", Name: "Morning Run"}, {ID: "2", Name: "Evening run"}, {ID: "3", Name: "Read"}}

	tests := []struct {
		fragment string
		want     int
	}{
		{"RUN", 0},
		{"evening", 1},
		{"read", 2},
		{"swim", -1},
		{"  ", -1},
	}
	for _, tt := range tests {
		if got := FindByName(habits, tt.fragment); got != tt.want {
			t.Errorf("FindByName(%q) = %d, want %d", tt.fragment, got, tt.want)
		}
	}
	if FindByID(habits, "3") != 2 || FindByID(habits, "9") != -1 {
		t.Error("FindByID mismatch")
	}
}
