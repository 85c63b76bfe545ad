package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
)

func day(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDaySet_WithCollapsesDuplicates(t *testing.T) {
	s := NewDaySet(day("2024-03-02"), day("2024-03-01"), day("2024-03-02"))

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	days := s.Days()
	if days[0] != day("2024-03-01") || days[1] != day("2024-03-02") {
		t.Errorf("Days() = %v, want ascending order", days)
	}
}

func TestDaySet_WithoutAndContains(t *testing.T) {
	s := NewDaySet(day("2024-03-01"), day("2024-03-02"))
	s2 := s.Without(day("2024-03-01"))

	if s2.Contains(day("2024-03-01")) {
		t.Error("expected day to be removed")
	}
	if !s.Contains(day("2024-03-01")) {
		t.Error("Without must not modify the receiver")
	}
	if got := s2.Without(day("2024-01-01")); !got.Equal(s2) {
		t.Error("removing an absent day should be a no-op")
	}
}

func TestDaySet_Latest(t *testing.T) {
	var empty DaySet
	if _, ok := empty.Latest(); ok {
		t.Error("empty set should have no latest day")
	}

	s := NewDaySet(day("2024-02-10"), day("2024-03-05"), day("2024-01-01"))
	latest, ok := s.Latest()
	if !ok || latest != day("2024-03-05") {
		t.Errorf("Latest() = %v, %v", latest, ok)
	}
	desc := s.Descending()
	if desc[0] != day("2024-03-05") || desc[2] != day("2024-01-01") {
		t.Errorf("Descending() = %v", desc)
	}
}

func TestDaySet_JSON(t *testing.T) {
	var s DaySet
	if err := json.Unmarshal([]byte(`["2024-03-02","2024-03-01","2024-03-02"]`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `["2024-03-01","2024-03-02"]` {
		t.Errorf("Marshal = %s", out)
	}

	var empty DaySet
	out, _ = json.Marshal(empty)
	if string(out) != `[]` {
		t.Errorf("empty set should encode as [], got %s", out)
	}
}

func TestRankFor(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, "Initiate"},
		{4, "Initiate"},
		{5, "Operator"},
		{10, "Strategist"},
		{20, "Architect"},
		{49, "Architect"},
		{50, "Sovereign"},
	}
	for _, tt := range tests {
		if got := RankFor(tt.level); got != tt.want {
			t.Errorf("RankFor(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestValidationError_Is(t *testing.T) {
	err := Invalid("amount", "must be a number")
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError should match ErrValidation")
	}
	if err.Error() != "invalid amount: must be a number" {
		t.Errorf("Error() = %q", err.Error())
	}
}
