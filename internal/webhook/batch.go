package webhook

import "fmt"

// Result is the outcome for one batch item. Exactly one of Event, Skipped
// or Err is meaningful; Index always points at the originating input item.
type Result struct {
	Index   int
	Event   Normalized
	Skipped bool
	Err     error
}

// ItemError binds an item-scoped error to the item's batch position. It is
// what ProcessBatch returns in fail-fast mode.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// ProcessBatch runs parse -> filter -> normalize over each payload in
// order, producing one Result per input item. With continueOnFail set,
// item errors are recorded in the Result and processing continues; without
// it, the first error aborts the batch and comes back as an ItemError
// alongside the results accumulated so far.
func ProcessBatch(payloads []any, cfg FilterConfig, continueOnFail bool) ([]Result, error) {
	results := make([]Result, 0, len(payloads))

	for i, payload := range payloads {
		event, skipped, err := processOne(payload, cfg)
		if err != nil {
			if !continueOnFail {
				return results, &ItemError{Index: i, Err: err}
			}
			results = append(results, Result{Index: i, Err: err})
			continue
		}
		results = append(results, Result{Index: i, Event: event, Skipped: skipped})
	}

	return results, nil
}

func processOne(payload any, cfg FilterConfig) (Normalized, bool, error) {
	event, err := Parse(payload)
	if err != nil {
		return nil, false, err
	}

	ok, err := cfg.ShouldProcess(event)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, true, nil
	}

	return Normalize(event), false, nil
}
