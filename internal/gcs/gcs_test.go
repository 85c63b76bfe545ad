package gcs

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/lifeos/internal/domain"
)

func TestJoinPrefix(t *testing.T) {
	tests := []struct {
		prefix, name, want string
	}{
		{"lifeos/", "lifeos-habits.json", "lifeos/lifeos-habits.json"},
		{"/lifeos", "/lifeos-habits.json", "lifeos/lifeos-habits.json"},
		{"", "lifeos-habits.json", "lifeos-habits.json"},
		{"users/42/", "x.json", "users/42/x.json"},
	}
	for _, tt := range tests {
		if got := JoinPrefix(tt.prefix, tt.name); got != tt.want {
			t.Errorf("JoinPrefix(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
		}
	}
}

func TestClientURI(t *testing.T) {
	c := &Client{bucket: "backups", prefix: "lifeos/"}
	if got := c.URI("lifeos-profile.json"); got != "gs://backups/lifeos/lifeos-profile.json" {
		t.Errorf("URI() = %q", got)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if _, err := m.GetNamed(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetNamed(missing) error = %v, want ErrNotFound", err)
	}

	data := []byte(`{"a":1}`)
	if err := m.PutNamed(ctx, "doc", data); err != nil {
		t.Fatalf("PutNamed() error = %v", err)
	}
	data[0] = 'X'

	got, err := m.GetNamed(ctx, "doc")
	if err != nil {
		t.Fatalf("GetNamed() error = %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("GetNamed() = %s, stored blob must not alias the caller's slice", got)
	}

	if err := m.PutNamed(ctx, "doc", []byte(`{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	got, _ = m.GetNamed(ctx, "doc")
	if string(got) != `{"a":2}` {
		t.Errorf("upsert by name failed: %s", got)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := m.PutNamed(cancelled, "doc", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("PutNamed(cancelled) error = %v", err)
	}
}
