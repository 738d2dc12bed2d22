package domain

import "time"

// OrderCreatedEvent is published after the order transaction commits. The
// receipt worker re-loads the order by id, so the payload carries identity,
// not the full snapshot.
type OrderCreatedEvent struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}
