package webhook

// ExtractAgentID resolves the canonical agent identifier of an event.
// The one recognized location is call_data.agentId; the deprecated
// aliases (call_data.agent_id, top-level agentId/agent_id) are no longer
// consulted. Returns "" when the ID is absent, empty, or not a string,
// meaning "unknown agent".
func ExtractAgentID(e RawEvent) string {
	return stringField(mapField(e, "call_data"), "agentId")
}
