package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/jobs"
	"github.com/dvloznov/lifeos/internal/store"
)

// ChatPayload is the payload of a chat task.
type ChatPayload struct {
	Question string `json:"question"`
}

// PushPayload is the payload of a push task. An empty key pushes every synced record.
type PushPayload struct {
	Key string `json:"key,omitempty"`
}

// PushResult is the result of a push task.
type PushResult struct {
	Keys []string `json:"keys"`
}

// HandleTask runs a queued chat or push task against the application state.
func (a *App) HandleTask(ctx context.Context, task *jobs.Task) (json.RawMessage, error) {
	switch task.Kind {
	case jobs.TaskKindChat:
		var p ChatPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return nil, fmt.Errorf("HandleTask: decoding chat payload: %w", err)
		}
		reply, err := a.Ask(ctx, p.Question)
		if err != nil {
			return nil, fmt.Errorf("HandleTask: %w", err)
		}
		return json.Marshal(reply)

	case jobs.TaskKindPush:
		var p PushPayload
		if len(task.Payload) > 0 {
			if err := json.Unmarshal(task.Payload, &p); err != nil {
				return nil, fmt.Errorf("HandleTask: decoding push payload: %w", err)
			}
		}
		if p.Key == "" {
			if err := a.PushAll(ctx); err != nil {
				return nil, fmt.Errorf("HandleTask: %w", err)
			}
			keys := make([]string, 0, len(store.SyncKeys))
			for _, k := range store.SyncKeys {
				keys = append(keys, k.Short())
			}
			return json.Marshal(PushResult{Keys: keys})
		}

		key, err := store.ParseKey(p.Key)
		if err != nil {
			return nil, fmt.Errorf("HandleTask: %w", err)
		}
		if err := a.Push(ctx, key); err != nil {
			return nil, fmt.Errorf("HandleTask: %w", err)
		}
		return json.Marshal(PushResult{Keys: []string{key.Short()}})
	}
	return nil, fmt.Errorf("HandleTask: %w", domain.Invalid("kind", string(task.Kind)))
}
