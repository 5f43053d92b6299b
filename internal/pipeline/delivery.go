package pipeline

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Delivery is one raw webhook body as received from the upstream service,
// before any decoding. Upstream delivers at least once; the ID is what the
// deduper keys on.
type Delivery struct {
	ID         string          `json:"id"`
	ReceivedAt time.Time       `json:"received_at"`
	Payload    json.RawMessage `json:"payload"`
}

// StoredEvent is a normalized event ready for persistence.
type StoredEvent struct {
	DeliveryID  string
	CallID      string
	AgentID     string
	EventType   string
	Payload     []byte
	ReceivedAt  time.Time
	ProcessedAt time.Time
}

// NewDelivery ensures ID + timestamp are set
func NewDelivery(d Delivery) Delivery {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.ReceivedAt.IsZero() {
		d.ReceivedAt = time.Now().UTC()
	}
	return d
}
