package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// Book statuses.
const (
	BookReading   = "reading"
	BookCompleted = "completed"
)

// NeuralNote is one idea extracted from a book.
type NeuralNote struct {
	ID      string `json:"id"`
	Concept string `json:"concept"`
	Problem string `json:"problem"`
	Action  string `json:"action"`
	Example string `json:"example"`
}

// Book owns its notes; notes are appended, edited and deleted by id.
type Book struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Author string       `json:"author"`
	Status string       `json:"status"`
	Notes  []NeuralNote `json:"notes"`
}

// JournalEntry is a dated free-text journal entry.
type JournalEntry struct {
	ID      string     `json:"id"`
	Date    civil.Date `json:"date"`
	Content string     `json:"content"`
	Mood    string     `json:"mood,omitempty"`
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	ID      string    `json:"id"`
	Role    string    `json:"role"`
	Text    string    `json:"text"`
	Offline bool      `json:"offline,omitempty"`
	At      time.Time `json:"at"`
}
