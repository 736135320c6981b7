package entity

import "time"

type UserEventType string

const (
	UserCreated UserEventType = "created"
	UserUpdated UserEventType = "updated"
	UserDeleted UserEventType = "deleted"
)

// UserEvent is published after a row change has been committed.
type UserEvent struct {
	Type       UserEventType `json:"type"`
	User       User          `json:"user"`
	OccurredAt time.Time     `json:"occurred_at"`
}
