package assistant

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/metrics"
)

// HabitState is a habit as the assistant sees it.
type HabitState struct {
	Name   string `json:"name"`
	Streak int    `json:"streak"`
}

// Objective is a legacy project in progress.
type Objective struct {
	Title    string `json:"title"`
	Progress int    `json:"progress"`
}

// Snapshot is the read-only context sent with every assistant query.
type Snapshot struct {
	LiquidCash     decimal.Decimal `json:"liquidCash"`
	NetWorth       decimal.Decimal `json:"netWorth"`
	Habits         []HabitState    `json:"habits"`
	CompletedBooks []string        `json:"completedBooks"`
	Objectives     []Objective     `json:"objectives"`
	Rank           string          `json:"rank"`
	Level          int             `json:"level"`
	Mission        string          `json:"mission,omitempty"`
}

// maxObjectives caps how many legacy projects go into a snapshot.
const maxObjectives = 3

// NewSnapshot captures the current state. Objectives are the top legacy projects by progress.
func NewSnapshot(rec domain.FinancialRecord, habits []domain.Habit, books []domain.Book, p domain.UserProfile) Snapshot {
	s := Snapshot{
		LiquidCash:     metrics.LiquidCash(rec),
		NetWorth:       metrics.NetWorth(rec),
		Habits:         make([]HabitState, 0, len(habits)),
		CompletedBooks: []string{},
		Objectives:     []Objective{},
		Rank:           p.Rank,
		Level:          p.Level,
		Mission:        p.Mission,
	}

	for _, h := range habits {
		s.Habits = append(s.Habits, HabitState{Name: h.Name, Streak: h.Streak})
	}
	for _, b := range books {
		if b.Status == domain.BookCompleted {
			s.CompletedBooks = append(s.CompletedBooks, b.Title)
		}
	}

	projects := append([]domain.LegacyProject{}, rec.LegacyProjects...)
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Progress > projects[j].Progress
	})
	for i := 0; i < len(projects) && i < maxObjectives; i++ {
		s.Objectives = append(s.Objectives, Objective{Title: projects[i].Title, Progress: projects[i].Progress})
	}
	return s
}
