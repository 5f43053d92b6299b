package webhook

import "strings"

// FilterConfig decides which events get normalized. Supplied once per
// batch and immutable while the batch runs.
type FilterConfig struct {
	// EventType is "message", "call_ended", or "all" (also the zero
	// value "" for convenience).
	EventType string
	// FilterByAgentIDs turns on allow-list filtering. Enabling it with
	// an empty AgentIDs list is a misconfiguration, not a match-nothing
	// filter.
	FilterByAgentIDs bool
	AgentIDs         []string
}

// ParseAgentIDs splits a comma-separated allow-list, trimming each element
// and dropping empties, so "a1, a2," yields ["a1" "a2"].
func ParseAgentIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ShouldProcess reports whether the event passes the configured filters.
// Event-type mismatches and allow-list misses skip the event. A requested
// agent-ID filter with an empty allow-list fails with FilterConfigError
// regardless of event content.
func (c FilterConfig) ShouldProcess(e RawEvent) (bool, error) {
	if c.EventType != "" && c.EventType != EventTypeAll {
		if stringField(e, "event_type") != c.EventType {
			return false, nil
		}
	}

	if c.FilterByAgentIDs {
		if len(c.AgentIDs) == 0 {
			return false, &FilterConfigError{
				Reason: "agent IDs are required when agent ID filtering is enabled",
			}
		}
		id := ExtractAgentID(e)
		if id == "" {
			return false, nil
		}
		allowed := false
		for _, want := range c.AgentIDs {
			if id == want {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, nil
		}
	}

	return true, nil
}
