// Package webhook normalizes inbound video-agent webhook payloads into a
// small set of fixed output shapes. Everything here is a pure function over
// plain decoded JSON; transport, storage and host integration live elsewhere.
package webhook

// Recognized event_type discriminator values. Anything else falls through
// to the minimal UnknownEvent shape.
const (
	EventTypeMessage   = "message"
	EventTypeCallEnded = "call_ended"
	EventTypeAll       = "all" // filter wildcard, never a payload value
)

// RawEvent is an untrusted decoded webhook payload. No field is assumed
// present or correctly typed; every access goes through the tolerant
// helpers below.
type RawEvent map[string]any

// Normalized is the tagged union of the three output shapes.
type Normalized interface {
	EventKind() string
}

type User struct {
	Name string `json:"name"`
}

type MessageBody struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// MessageEvent is the normalized form of an event_type="message" payload.
type MessageEvent struct {
	CallID    string      `json:"call_id"`
	AgentID   string      `json:"agent_id"`
	User      User        `json:"user"`
	Message   MessageBody `json:"message"`
	EventType string      `json:"event_type"`
}

func (*MessageEvent) EventKind() string { return EventTypeMessage }

type CallDetails struct {
	DurationMinutes float64 `json:"duration_minutes"`
	MessageCount    float64 `json:"message_count"`
	Topic           string  `json:"topic"`
	UserSentiment   string  `json:"user_sentiment"`
}

type CallSummary struct {
	DurationMinutes float64 `json:"duration_minutes"`
	MessageCount    float64 `json:"message_count"`
	FirstMessage    string  `json:"first_message"`
	LastMessage     string  `json:"last_message"`
	UserSentiment   string  `json:"user_sentiment"`
}

type TranscriptMessage struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// CallEndedEvent is the normalized form of an event_type="call_ended"
// payload. call_details and call_summary overlap on purpose: downstream
// consumers read both, so both stay in the contract. They are projected
// from one set of coerced values and can never disagree.
type CallEndedEvent struct {
	CallID      string              `json:"call_id"`
	AgentID     string              `json:"agent_id"`
	CallDetails CallDetails         `json:"call_details"`
	User        User                `json:"user"`
	CallSummary CallSummary         `json:"call_summary"`
	Messages    []TranscriptMessage `json:"messages"`
	EventType   string              `json:"event_type"`
}

func (*CallEndedEvent) EventKind() string { return EventTypeCallEnded }

// UnknownEvent is the minimal passthrough for unrecognized event kinds.
type UnknownEvent struct {
	EventType string `json:"event_type"`
	CallID    string `json:"call_id"`
	AgentID   string `json:"agent_id"`
}

func (e *UnknownEvent) EventKind() string { return e.EventType }

// stringField returns m[key] if it is a string, else "".
func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// mapField returns m[key] if it is an object, else nil. Indexing the nil
// result is safe, which keeps the normalizers free of presence checks.
func mapField(m map[string]any, key string) map[string]any {
	child, _ := m[key].(map[string]any)
	return child
}

// sliceField returns m[key] if it is an array, else nil.
func sliceField(m map[string]any, key string) []any {
	list, _ := m[key].([]any)
	return list
}
