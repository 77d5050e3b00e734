package events

import "time"

// Category names well-known event categories on the bus. Publishers may use
// arbitrary strings; these are the ones the core itself emits.
type Category = string

const (
	CategoryOrderSubmitted Category = "order.submitted"
	CategoryOrderCancelled Category = "order.cancelled"
	CategoryRiskBreach     Category = "risk.breach"
	CategoryLifecycle      Category = "lifecycle"
)

// Event is a single record on the bus. Ids are assigned by the bus, start at
// 1, and are strictly increasing and gap-free for the process lifetime.
// Events are never mutated after publication.
type Event struct {
	ID        uint64         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Category  Category       `json:"category"`
	Payload   map[string]any `json:"payload"`
}
