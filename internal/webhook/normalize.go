package webhook

// Normalize dispatches on event_type and produces one of the three fixed
// output shapes. It never fails: absent or mistyped fields are defaulted,
// because the upstream payloads are inherently loosely typed.
func Normalize(e RawEvent) Normalized {
	switch stringField(e, "event_type") {
	case EventTypeCallEnded:
		return normalizeCallEnded(e)
	case EventTypeMessage:
		return normalizeMessage(e)
	default:
		return normalizeUnknown(e)
	}
}

func normalizeMessage(e RawEvent) *MessageEvent {
	msg := mapField(e, "message")

	name := stringField(mapField(e, "call_data"), "userName")
	if name == "" {
		name = "Unknown"
	}

	return &MessageEvent{
		CallID:  stringField(e, "call_id"),
		AgentID: ExtractAgentID(e),
		User:    User{Name: name},
		Message: MessageBody{
			Sender:    stringField(msg, "sender"),
			Content:   stringField(msg, "message"),
			Timestamp: stringField(msg, "sent_at"),
		},
		EventType: EventTypeMessage,
	}
}

func normalizeCallEnded(e RawEvent) *CallEndedEvent {
	eval := mapField(e, "evaluation")
	rawMessages := sliceField(e, "messages")

	duration := CoerceDuration(eval["duration_minutes"])
	count := CoerceMessageCount(eval["messages_count"], rawMessages)

	topic := stringField(eval, "topic")
	if topic == "" {
		topic = "Unknown"
	}
	sentiment := stringField(eval, "user_sentiment")
	if sentiment == "" {
		sentiment = "Unknown"
	}

	messages := make([]TranscriptMessage, 0, len(rawMessages))
	for _, raw := range rawMessages {
		m, _ := raw.(map[string]any)
		messages = append(messages, TranscriptMessage{
			Sender:    stringField(m, "sender"),
			Message:   stringField(m, "message"),
			Timestamp: stringField(m, "sent_at"),
		})
	}

	first, last := "", ""
	if len(messages) > 0 {
		first = messages[0].Message
		last = messages[len(messages)-1].Message
	}

	name := stringField(e, "user_name")
	if name == "" {
		name = stringField(mapField(e, "call_data"), "userName")
	}
	if name == "" {
		name = "Unknown"
	}

	return &CallEndedEvent{
		CallID:  stringField(e, "call_id"),
		AgentID: ExtractAgentID(e),
		CallDetails: CallDetails{
			DurationMinutes: duration,
			MessageCount:    count,
			Topic:           topic,
			UserSentiment:   sentiment,
		},
		User: User{Name: name},
		CallSummary: CallSummary{
			DurationMinutes: duration,
			MessageCount:    count,
			FirstMessage:    first,
			LastMessage:     last,
			UserSentiment:   sentiment,
		},
		Messages:  messages,
		EventType: EventTypeCallEnded,
	}
}

func normalizeUnknown(e RawEvent) *UnknownEvent {
	kind := stringField(e, "event_type")
	if kind == "" {
		kind = "unknown"
	}
	return &UnknownEvent{
		EventType: kind,
		CallID:    stringField(e, "call_id"),
		AgentID:   ExtractAgentID(e),
	}
}
