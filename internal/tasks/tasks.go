package tasks

import (
	"encoding/json"
	"time"
)

const (
	TopicEmail   = "tasks.email"
	TopicCatalog = "tasks.catalog"
)

const (
	TaskActivationEmail = "ActivationEmail"
	TaskRegenerateIndex = "RegenerateIndex"
)

type Envelope struct {
	TaskID      string          `json:"task_id"` // uuid
	TaskType    string          `json:"task_type"`
	TaskVersion int             `json:"task_version"` // 1
	OccurredAt  time.Time       `json:"occurred_at"`  // RFC3339
	Producer    string          `json:"producer"`     // e.g., "storefront-api"
	Payload     json.RawMessage `json:"payload"`
}

type ActivationEmailPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type RegenerateIndexPayload struct {
	Reason string `json:"reason,omitempty"`
}

// Partition key = user email / constant, supaya task sejenis menjaga urutan.
func PartitionKey(s string) []byte { return []byte(s) }
