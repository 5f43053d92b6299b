package webhook

import (
	"encoding/json"
	"fmt"
)

// Parse turns a raw webhook body into a RawEvent. Textual input is JSON
// decoded; already-decoded objects pass through. Anything that is not a
// JSON object fails with InvalidPayloadError. No deeper shape validation
// happens here: missing or mistyped fields are defaulted downstream,
// never rejected.
func Parse(raw any) (RawEvent, error) {
	switch v := raw.(type) {
	case nil:
		return nil, &InvalidPayloadError{Reason: "payload is empty"}
	case string:
		return parseBytes([]byte(v))
	case []byte:
		return parseBytes(v)
	case json.RawMessage:
		return parseBytes(v)
	case RawEvent:
		if v == nil {
			return nil, &InvalidPayloadError{Reason: "payload is null"}
		}
		return v, nil
	case map[string]any:
		if v == nil {
			return nil, &InvalidPayloadError{Reason: "payload is null"}
		}
		return RawEvent(v), nil
	default:
		return nil, &InvalidPayloadError{Reason: fmt.Sprintf("payload must be a JSON object, got %T", raw)}
	}
}

func parseBytes(b []byte) (RawEvent, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, &InvalidPayloadError{Reason: err.Error()}
	}
	if m == nil {
		return nil, &InvalidPayloadError{Reason: "payload is null"}
	}
	return RawEvent(m), nil
}
