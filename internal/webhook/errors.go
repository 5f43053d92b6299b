package webhook

// InvalidPayloadError reports a webhook body that could not be decoded
// into a JSON object. It is item-scoped: one bad delivery never fails
// the surrounding batch unless the caller opted out of fail-tolerance.
type InvalidPayloadError struct {
	Reason string
}

func (e *InvalidPayloadError) Error() string {
	return "invalid webhook payload: " + e.Reason
}

// FilterConfigError reports a misconfigured filter, currently only the
// case where agent-ID filtering is enabled without any agent IDs. It is
// raised per item rather than silently skipping everything.
type FilterConfigError struct {
	Reason string
}

func (e *FilterConfigError) Error() string {
	return e.Reason
}
