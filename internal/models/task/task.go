package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Status string

const StatusPending Status = "pending"
const StatusInProgress Status = "in-progress"
const StatusCompleted Status = "completed"

var (
	ErrEmptyTitle    = errors.New("title is required")
	ErrInvalidStatus = errors.New("status must be one of pending, in-progress, completed")
)

// Statuses lists every accepted status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus is the only way a raw string becomes a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: got %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Validate checks the invariants every stored task must hold.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidStatus, string(t.Status))
	}
	return nil
}

// Filter narrows a task listing. Zero values mean "no filter".
type Filter struct {
	Keyword string
	Status  Status
}

// Matches reports whether t passes the filter: Status must be equal and
// Keyword must occur in the title or description, ignoring case.
func (f Filter) Matches(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Keyword == "" {
		return true
	}
	keyword := strings.ToLower(f.Keyword)
	return strings.Contains(strings.ToLower(t.Title), keyword) ||
		strings.Contains(strings.ToLower(t.Description), keyword)
}
