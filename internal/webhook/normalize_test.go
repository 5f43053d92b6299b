package webhook

import (
	"encoding/json"
	"testing"
)

func TestNormalizeMessageEvent(t *testing.T) {
	e, err := Parse(`{
		"event_type": "message",
		"call_id": "c1",
		"message": {"sender": "user", "message": "hi", "sent_at": "t0"},
		"call_data": {"userName": "Ann", "agentId": "a1"}
	}`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	got, err := json.Marshal(Normalize(e))
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	want := `{"call_id":"c1","agent_id":"a1","user":{"name":"Ann"},"message":{"sender":"user","content":"hi","timestamp":"t0"},"event_type":"message"}`
	if string(got) != want {
		t.Errorf("wire shape mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestNormalizeMessageEventDefaults(t *testing.T) {
	out := Normalize(RawEvent{"event_type": "message"})
	msg, ok := out.(*MessageEvent)
	if !ok {
		t.Fatalf("expected *MessageEvent, got %T", out)
	}
	if msg.CallID != "" || msg.AgentID != "" {
		t.Errorf("expected empty identifiers, got call_id=%q agent_id=%q", msg.CallID, msg.AgentID)
	}
	if msg.User.Name != "Unknown" {
		t.Errorf("expected user name Unknown, got %q", msg.User.Name)
	}
	if msg.Message.Sender != "" || msg.Message.Content != "" || msg.Message.Timestamp != "" {
		t.Errorf("expected empty message fields, got %+v", msg.Message)
	}
}

func TestNormalizeCallEnded(t *testing.T) {
	e, err := Parse(`{
		"event_type": "call_ended",
		"call_id": "c9",
		"user_name": "Bob",
		"evaluation": {"duration_minutes": "12", "messages_count": 2, "topic": "demo", "user_sentiment": "positive"},
		"messages": [
			{"sender": "a", "message": "hi", "sent_at": "t1"},
			{"sender": "b", "message": "bye", "sent_at": "t2"}
		],
		"call_data": {"agentId": "a1"}
	}`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	out := Normalize(e)
	ended, ok := out.(*CallEndedEvent)
	if !ok {
		t.Fatalf("expected *CallEndedEvent, got %T", out)
	}

	if ended.CallID != "c9" || ended.AgentID != "a1" {
		t.Errorf("unexpected identifiers: call_id=%q agent_id=%q", ended.CallID, ended.AgentID)
	}
	if ended.User.Name != "Bob" {
		t.Errorf("expected user name Bob, got %q", ended.User.Name)
	}

	// string "12" coerces to the number 12, in both projections
	if ended.CallDetails.DurationMinutes != 12 || ended.CallSummary.DurationMinutes != 12 {
		t.Errorf("expected duration 12 in both projections, got %v and %v",
			ended.CallDetails.DurationMinutes, ended.CallSummary.DurationMinutes)
	}
	if ended.CallDetails.MessageCount != 2 || ended.CallSummary.MessageCount != 2 {
		t.Errorf("expected message count 2 in both projections, got %v and %v",
			ended.CallDetails.MessageCount, ended.CallSummary.MessageCount)
	}
	if ended.CallDetails.Topic != "demo" || ended.CallDetails.UserSentiment != "positive" {
		t.Errorf("unexpected evaluation fields: %+v", ended.CallDetails)
	}

	if ended.CallSummary.FirstMessage != "hi" {
		t.Errorf("expected first message hi, got %q", ended.CallSummary.FirstMessage)
	}
	if ended.CallSummary.LastMessage != "bye" {
		t.Errorf("expected last message bye, got %q", ended.CallSummary.LastMessage)
	}

	if len(ended.Messages) != 2 {
		t.Fatalf("expected 2 transcript messages, got %d", len(ended.Messages))
	}
	if ended.Messages[0].Sender != "a" || ended.Messages[0].Message != "hi" || ended.Messages[0].Timestamp != "t1" {
		t.Errorf("unexpected first transcript message: %+v", ended.Messages[0])
	}
	if ended.EventType != "call_ended" {
		t.Errorf("expected event_type call_ended, got %q", ended.EventType)
	}
}

func TestNormalizeCallEndedWithoutEvaluation(t *testing.T) {
	out := Normalize(RawEvent{"event_type": "call_ended"})
	ended, ok := out.(*CallEndedEvent)
	if !ok {
		t.Fatalf("expected *CallEndedEvent, got %T", out)
	}

	if ended.CallDetails.Topic != "Unknown" {
		t.Errorf("expected topic Unknown, got %q", ended.CallDetails.Topic)
	}
	if ended.CallDetails.UserSentiment != "Unknown" {
		t.Errorf("expected sentiment Unknown, got %q", ended.CallDetails.UserSentiment)
	}
	if ended.CallDetails.DurationMinutes != 0 || ended.CallDetails.MessageCount != 0 {
		t.Errorf("expected zero duration and count, got %+v", ended.CallDetails)
	}
	if ended.CallSummary.FirstMessage != "" || ended.CallSummary.LastMessage != "" {
		t.Errorf("expected empty first/last message, got %+v", ended.CallSummary)
	}
	if ended.User.Name != "Unknown" {
		t.Errorf("expected user name Unknown, got %q", ended.User.Name)
	}
	if ended.Messages == nil || len(ended.Messages) != 0 {
		t.Errorf("expected empty (not nil) transcript, got %#v", ended.Messages)
	}
}

func TestNormalizeCallEndedSingleMessage(t *testing.T) {
	out := Normalize(RawEvent{
		"event_type": "call_ended",
		"messages": []any{
			map[string]any{"sender": "user", "message": "only", "sent_at": "t1"},
		},
	})
	ended := out.(*CallEndedEvent)
	if ended.CallSummary.FirstMessage != "only" || ended.CallSummary.LastMessage != "only" {
		t.Errorf("expected first == last == only, got %+v", ended.CallSummary)
	}
}

func TestNormalizeCallEndedUserNameFallback(t *testing.T) {
	out := Normalize(RawEvent{
		"event_type": "call_ended",
		"call_data":  map[string]any{"userName": "Carol"},
	})
	if got := out.(*CallEndedEvent).User.Name; got != "Carol" {
		t.Errorf("expected fallback to call_data.userName, got %q", got)
	}
}

func TestNormalizeCountFallsBackToTranscript(t *testing.T) {
	out := Normalize(RawEvent{
		"event_type": "call_ended",
		"messages": []any{
			map[string]any{"message": "a"},
			map[string]any{"message": "b"},
			map[string]any{"message": "c"},
		},
	})
	ended := out.(*CallEndedEvent)
	if ended.CallDetails.MessageCount != 3 {
		t.Errorf("expected count 3 from transcript, got %v", ended.CallDetails.MessageCount)
	}
}

func TestNormalizeUnrecognizedEvent(t *testing.T) {
	got, err := json.Marshal(Normalize(RawEvent{"event_type": "ping"}))
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	want := `{"event_type":"ping","call_id":"","agent_id":""}`
	if string(got) != want {
		t.Errorf("wire shape mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestNormalizeMissingEventType(t *testing.T) {
	out := Normalize(RawEvent{"call_id": "c4", "call_data": map[string]any{"agentId": "a9"}})
	unknown, ok := out.(*UnknownEvent)
	if !ok {
		t.Fatalf("expected *UnknownEvent, got %T", out)
	}
	if unknown.EventType != "unknown" {
		t.Errorf("expected event_type unknown, got %q", unknown.EventType)
	}
	if unknown.CallID != "c4" || unknown.AgentID != "a9" {
		t.Errorf("expected passthrough identifiers, got %+v", unknown)
	}
}

func TestNormalizeJSONRoundTripIdempotent(t *testing.T) {
	e := RawEvent{
		"event_type": "call_ended",
		"call_id":    "c1",
		"user_name":  "Ann",
		"evaluation": map[string]any{
			"duration_minutes": "15",
			"topic":            "support",
		},
		"messages": []any{
			map[string]any{"sender": "user", "message": "hello", "sent_at": "t1"},
		},
		"call_data": map[string]any{"agentId": "a1"},
	}

	direct, err := json.Marshal(Normalize(e))
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	text, err := json.Marshal(map[string]any(e))
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	reparsed, err := Parse(string(text))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	roundTripped, err := json.Marshal(Normalize(reparsed))
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	if string(direct) != string(roundTripped) {
		t.Errorf("round trip changed output:\n direct %s\n round  %s", direct, roundTripped)
	}
}
