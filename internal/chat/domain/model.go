package domain

import (
	"errors"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrNotFound covers both a missing project and a project owned by
	// someone else.
	ErrNotFound = errors.New("project not found")

	// ErrEmptyContent rejects blank turn content before anything is written.
	ErrEmptyContent = errors.New("message content is empty")
)

// Message is one immutable turn in a project's conversation. Seq is the
// store-assigned ordering key; within a project it is strictly increasing
// in insertion order.
type Message struct {
	Seq       int64     `json:"-"`
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
