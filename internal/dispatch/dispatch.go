// Package dispatch turns one line of palette input into navigation, a quick action or an assistant query.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/dvloznov/lifeos/internal/assistant"
	"github.com/dvloznov/lifeos/internal/config"
	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/ledger"
)

// Command prefixes.
const (
	PrefixLog  = "/log"
	PrefixDone = "/done"
)

// QuickExpenseDescription is used when /log carries no description.
const QuickExpenseDescription = "Quick expense"

// Kind says which branch handled a line.
type Kind string

const (
	KindNavigate      Kind = "navigate"
	KindExpenseLogged Kind = "expense_logged"
	KindHabitToggled  Kind = "habit_toggled"
	KindHabitNotFound Kind = "habit_not_found"
	KindReply         Kind = "reply"
)

// Outcome is the user-visible result of a dispatched line.
type Outcome struct {
	Kind        Kind                `json:"kind"`
	Section     string              `json:"section,omitempty"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	Habit       *domain.Habit       `json:"habit,omitempty"`
	Completed   bool                `json:"completed,omitempty"`
	Reply       *assistant.Reply    `json:"reply,omitempty"`
	Message     string              `json:"message"`
}

// Actions are the state mutations and queries a line can trigger.
type Actions interface {
	LogExpense(ctx context.Context, form ledger.Form) (domain.Transaction, error)
	// ToggleHabitByName toggles today for the first habit matching fragment.
	// It returns an error wrapping domain.ErrNotFound when nothing matches.
	ToggleHabitByName(ctx context.Context, fragment string) (domain.Habit, bool, error)
	Ask(ctx context.Context, question string) (assistant.Reply, error)
}

type Dispatcher struct {
	sections []config.Section
	actions  Actions
	log      zerolog.Logger
}

func New(sections []config.Section, actions Actions, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{sections: sections, actions: actions, log: log}
}

// Dispatch checks, in order: a section keyword anywhere in the line, then a
// /log or /done command, then falls back to an assistant query.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) (Outcome, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Outcome{}, fmt.Errorf("Dispatch: %w", domain.Invalid("command", "must not be empty"))
	}

	if section, ok := d.matchSection(line); ok {
		d.log.Debug().Str("section", section).Msg("Dispatch: navigate")
		return Outcome{Kind: KindNavigate, Section: section, Message: "Opening " + section}, nil
	}

	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case PrefixLog:
		if out, ok, err := d.logExpense(ctx, fields[1:]); ok || err != nil {
			return out, err
		}
	case PrefixDone:
		return d.done(ctx, strings.Join(fields[1:], " "))
	}

	reply, err := d.actions.Ask(ctx, line)
	if err != nil {
		return Outcome{}, fmt.Errorf("Dispatch: asking assistant: %w", err)
	}
	return Outcome{Kind: KindReply, Reply: &reply, Message: reply.Text}, nil
}

// logExpense reports ok=false when the amount does not parse, so the line falls through.
func (d *Dispatcher) logExpense(ctx context.Context, args []string) (Outcome, bool, error) {
	if len(args) == 0 {
		return Outcome{}, false, nil
	}
	if _, err := ledger.ParseAmount(args[0]); err != nil {
		d.log.Debug().Str("amount", args[0]).Msg("Dispatch: /log amount did not parse, falling through")
		return Outcome{}, false, nil
	}

	desc := strings.Join(args[1:], " ")
	if desc == "" {
		desc = QuickExpenseDescription
	}
	tx, err := d.actions.LogExpense(ctx, ledger.Form{
		Type:        ledger.Expense,
		Amount:      args[0],
		Description: desc,
		Category:    domain.CategoryNeeds,
		TargetBank:  domain.BankC,
	})
	if err != nil {
		return Outcome{}, true, fmt.Errorf("Dispatch: logging expense: %w", err)
	}
	return Outcome{
		Kind:        KindExpenseLogged,
		Transaction: &tx,
		Message:     fmt.Sprintf("Logged %s: %s", tx.Amount.Abs().StringFixed(2), tx.Description),
	}, true, nil
}

func (d *Dispatcher) done(ctx context.Context, fragment string) (Outcome, error) {
	h, completed, err := d.actions.ToggleHabitByName(ctx, fragment)
	if errors.Is(err, domain.ErrNotFound) {
		return Outcome{Kind: KindHabitNotFound, Message: fmt.Sprintf("No habit matches %q", fragment)}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("Dispatch: toggling habit: %w", err)
	}

	msg := fmt.Sprintf("%s done, streak %d", h.Name, h.Streak)
	if !completed {
		msg = fmt.Sprintf("%s undone, streak %d", h.Name, h.Streak)
	}
	return Outcome{Kind: KindHabitToggled, Habit: &h, Completed: completed, Message: msg}, nil
}

func (d *Dispatcher) matchSection(line string) (string, bool) {
	words := " " + strings.Join(tokenize(line), " ") + " "
	for _, s := range d.sections {
		for _, kw := range s.Keywords {
			kw = strings.Join(tokenize(kw), " ")
			if kw != "" && strings.Contains(words, " "+kw+" ") {
				return s.Name, true
			}
		}
	}
	return "", false
}

// tokenize lowercases s and splits it into runs of letters and digits.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
