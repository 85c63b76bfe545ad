// Package assistant answers free-form questions about the user's state.
// Any failure of the model degrades to a canned offline reply.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/lifeos/internal/domain"
)

// OfflineMessage is returned whenever the model cannot be reached.
const OfflineMessage = "The assistant is offline right now. Your data is safe locally; try again when the connection is back."

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Asker provides an interface for AI question answering.
// This interface enables mocking and testing of the model call.
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// GeminiAsker is the concrete implementation of Asker that uses Gemini.
type GeminiAsker struct {
	client *genai.Client
	model  string
}

// NewGeminiAsker creates a Gemini client for the given API key.
func NewGeminiAsker(ctx context.Context, apiKey, model string) (*GeminiAsker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewGeminiAsker: %w", domain.Invalid("apiKey", "must not be empty"))
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiAsker: create genai client: %w", err)
	}
	return &GeminiAsker{client: client, model: model}, nil
}

func (g *GeminiAsker) Ask(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Ask: generate content: %w", err)
	}

	text := cleanReply(resp.Text())
	if text == "" {
		return "", fmt.Errorf("Ask: empty response from model")
	}
	return text, nil
}

// BuildPrompt combines the question with the state snapshot as JSON.
func BuildPrompt(question string, snap Snapshot) string {
	state, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		state = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("You are the user's personal strategy assistant. ")
	b.WriteString("Answer concisely using the current state below. Amounts are in the user's currency.\n\n")
	b.WriteString("Current state:\n")
	b.Write(state)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n")
	return b.String()
}

// Reply is the outcome of a query. Offline replies carry OfflineMessage.
type Reply struct {
	Text    string    `json:"text"`
	Offline bool      `json:"offline"`
	At      time.Time `json:"at"`
}

// Service bounds model calls by a timeout and substitutes the offline reply on failure.
type Service struct {
	asker   Asker
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// NewService creates a Service. A nil asker makes every reply offline.
func NewService(asker Asker, timeout time.Duration, log zerolog.Logger) *Service {
	return &Service{asker: asker, timeout: timeout, log: log, now: time.Now}
}

// Ask always resolves: the only error is an empty question.
func (s *Service) Ask(ctx context.Context, question string, snap Snapshot) (Reply, error) {
	if strings.TrimSpace(question) == "" {
		return Reply{}, fmt.Errorf("Ask: %w", domain.Invalid("question", "must not be empty"))
	}
	if s.asker == nil {
		return s.offline(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.asker.Ask(ctx, BuildPrompt(question, snap))
	if err != nil {
		s.log.Warn().Err(fmt.Errorf("%w: %w", domain.ErrNetwork, err)).Msg("Assistant unavailable, replying offline")
		return s.offline(), nil
	}
	return Reply{Text: text, At: s.now()}, nil
}

func (s *Service) offline() Reply {
	return Reply{Text: OfflineMessage, Offline: true, At: s.now()}
}

// cleanReply strips Markdown code fences a model sometimes wraps around the whole answer.
func cleanReply(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (``` or ```markdown).
	idx := strings.Index(s, "\n")
	if idx == -1 {
		return strings.Trim(s, "`")
	}
	s = s[idx+1:]
	if end := strings.LastIndex(s, "```"); end != -1 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}
