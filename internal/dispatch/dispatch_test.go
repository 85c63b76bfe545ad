package dispatch

import (
	"context"
	"errors"
	"io"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/lifeos/internal/assistant"
	"github.com/dvloznov/lifeos/internal/config"
	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/ledger"
)

// MockActions is a mock implementation of Actions for testing
type MockActions struct {
	LogExpenseFunc        func(ctx context.Context, form ledger.Form) (domain.Transaction, error)
	ToggleHabitByNameFunc func(ctx context.Context, fragment string) (domain.Habit, bool, error)
	AskFunc               func(ctx context.Context, question string) (assistant.Reply, error)

	logged    []ledger.Form
	toggled   []string
	questions []string
}

func (m *MockActions) LogExpense(ctx context.Context, form ledger.Form) (domain.Transaction, error) {
	m.logged = append(m.logged, form)
	if m.LogExpenseFunc != nil {
		return m.LogExpenseFunc(ctx, form)
	}
	return ledger.Build(form, "tx-1", civil.Date{Year: 2024, Month: 5, Day: 1})
}

func (m *MockActions) ToggleHabitByName(ctx context.Context, fragment string) (domain.Habit, bool, error) {
	m.toggled = append(m.toggled, fragment)
	if m.ToggleHabitByNameFunc != nil {
		return m.ToggleHabitByNameFunc(ctx, fragment)
	}
	return domain.Habit{}, false, domain.ErrNotFound
}

func (m *MockActions) Ask(ctx context.Context, question string) (assistant.Reply, error) {
	m.questions = append(m.questions, question)
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question)
	}
	return assistant.Reply{Text: "answer"}, nil
}

func newDispatcher(a Actions) *Dispatcher {
	return New(config.DefaultSections(), a, zerolog.New(io.Discard))
}

func TestDispatch_Navigate(t *testing.T) {
	tests := []struct {
		line    string
		section string
	}{
		{"open finance", "finance"},
		{"Show me my HABITS please", "habits"},
		{"library", "library"},
		{"go home.", "dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m := &MockActions{}
			out, err := newDispatcher(m).Dispatch(context.Background(), tt.line)
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if out.Kind != KindNavigate || out.Section != tt.section {
				t.Errorf("outcome = %+v, want navigate to %s", out, tt.section)
			}
			if len(m.questions) != 0 {
				t.Error("navigation must not reach the assistant")
			}
		})
	}
}

func TestDispatch_KeywordsMatchWholeWords(t *testing.T) {
	m := &MockActions{}
	out, err := newDispatcher(m).Dispatch(context.Background(), "how is my homework going")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != KindReply {
		t.Errorf("outcome = %+v, keyword inside a word must not navigate", out)
	}
}

func TestDispatch_Log(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantDesc string
	}{
		{name: "with description", line: "/log 12.50 coffee and cake", wantDesc: "coffee and cake"},
		{name: "without description", line: "/log 7", wantDesc: QuickExpenseDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockActions{}
			out, err := newDispatcher(m).Dispatch(context.Background(), tt.line)
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if out.Kind != KindExpenseLogged || out.Transaction == nil {
				t.Fatalf("outcome = %+v", out)
			}
			if len(m.logged) != 1 {
				t.Fatalf("logged = %+v", m.logged)
			}
			form := m.logged[0]
			if form.Type != ledger.Expense || form.TargetBank != domain.BankC || form.Category != domain.CategoryNeeds {
				t.Errorf("form = %+v", form)
			}
			if form.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", form.Description, tt.wantDesc)
			}
			if !out.Transaction.Amount.IsNegative() {
				t.Errorf("logged amount = %s, want negative", out.Transaction.Amount)
			}
		})
	}
}

func TestDispatch_LogBadAmountFallsThrough(t *testing.T) {
	for _, line := range []string{"/log abc lunch", "/log -5 lunch", "/log"} {
		t.Run(line, func(t *testing.T) {
			m := &MockActions{}
			out, err := newDispatcher(m).Dispatch(context.Background(), line)
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if out.Kind != KindReply || len(m.logged) != 0 {
				t.Errorf("outcome = %+v, logged = %v", out, m.logged)
			}
			if len(m.questions) != 1 || m.questions[0] != line {
				t.Errorf("assistant got %v, want the verbatim line", m.questions)
			}
		})
	}
}

func TestDispatch_LogValidationError(t *testing.T) {
	m := &MockActions{
		LogExpenseFunc: func(ctx context.Context, form ledger.Form) (domain.Transaction, error) {
			return domain.Transaction{}, domain.Invalid("description", "too long")
		},
	}
	_, err := newDispatcher(m).Dispatch(context.Background(), "/log 3 tea")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestDispatch_Done(t *testing.T) {
	m := &MockActions{
		ToggleHabitByNameFunc: func(ctx context.Context, fragment string) (domain.Habit, bool, error) {
			if fragment == "run" {
				return domain.Habit{Name: "Morning Run", Streak: 3}, true, nil
			}
			return domain.Habit{}, false, domain.ErrNotFound
		},
	}
	d := newDispatcher(m)

	out, err := d.Dispatch(context.Background(), "/done run")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if out.Kind != KindHabitToggled || !out.Completed || out.Habit.Name != "Morning Run" {
		t.Errorf("outcome = %+v", out)
	}

	out, err = d.Dispatch(context.Background(), "/done swim")
	if err != nil {
		t.Fatalf("not-found must be an outcome, got error %v", err)
	}
	if out.Kind != KindHabitNotFound {
		t.Errorf("outcome = %+v, want habit_not_found", out)
	}
}

func TestDispatch_AssistantFallback(t *testing.T) {
	m := &MockActions{
		AskFunc: func(ctx context.Context, question string) (assistant.Reply, error) {
			return assistant.Reply{Text: assistant.OfflineMessage, Offline: true}, nil
		},
	}
	out, err := newDispatcher(m).Dispatch(context.Background(), "what should I focus on?")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if out.Kind != KindReply || !out.Reply.Offline {
		t.Errorf("outcome = %+v", out)
	}

	if _, err := newDispatcher(m).Dispatch(context.Background(), "  "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty line error = %v, want ErrValidation", err)
	}
}

func TestDispatch_CustomSections(t *testing.T) {
	sections := []config.Section{{Name: "net-worth", Keywords: []string{"net worth"}}}
	d := New(sections, &MockActions{}, zerolog.New(io.Discard))

	out, err := d.Dispatch(context.Background(), "what's my Net Worth?")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != KindNavigate || out.Section != "net-worth" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestOutcomeMessage_FormatsAmount(t *testing.T) {
	m := &MockActions{
		LogExpenseFunc: func(ctx context.Context, form ledger.Form) (domain.Transaction, error) {
			return domain.Transaction{Amount: decimal.RequireFromString("-4.5"), Description: form.Description}, nil
		},
	}
	out, err := newDispatcher(m).Dispatch(context.Background(), "/log 4.5 bus")
	if err != nil {
		t.Fatal(err)
	}
	if out.Message != "Logged 4.50: bus" {
		t.Errorf("Message = %q", out.Message)
	}
}
