package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/lifeos/internal/assistant"
	"github.com/dvloznov/lifeos/internal/dispatch"
	"github.com/dvloznov/lifeos/internal/domain"
)

// Ask records the question, queries the assistant outside the lock, and records the reply.
// A second question may be asked while one is in flight; replies are appended in arrival order.
func (a *App) Ask(ctx context.Context, question string) (assistant.Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return assistant.Reply{}, fmt.Errorf("Ask: %w", domain.Invalid("question", "must not be empty"))
	}

	a.mu.Lock()
	snap := a.snapshot()
	a.appendChat(domain.ChatMessage{ID: a.newID(), Role: domain.RoleUser, Text: question, At: a.now()})
	a.mu.Unlock()

	reply, err := a.assistant.Ask(ctx, question, snap)
	if err != nil {
		return assistant.Reply{}, fmt.Errorf("Ask: %w", err)
	}

	a.mu.Lock()
	a.appendChat(domain.ChatMessage{ID: a.newID(), Role: domain.RoleAssistant, Text: reply.Text, Offline: reply.Offline, At: reply.At})
	a.mu.Unlock()
	return reply, nil
}

// appendChat keeps the message in memory even if it cannot be saved; the next
// successful save or Close writes it out.
func (a *App) appendChat(msg domain.ChatMessage) {
	next := append(append([]domain.ChatMessage{}, a.chat...), msg)
	if err := a.commitChat(next); err != nil {
		a.log.Warn().Err(err).Str("role", msg.Role).Msg("Failed to save chat message")
		a.chat = next
	}
}

// Dispatch interprets one command palette line.
func (a *App) Dispatch(ctx context.Context, line string) (dispatch.Outcome, error) {
	return a.dispatcher.Dispatch(ctx, line)
}
