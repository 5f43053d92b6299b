package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"videoagent-pipeline/internal/webhook"
	"videoagent-pipeline/pkg/logger"
)

type Worker struct {
	id       int
	jobChan  <-chan Delivery
	pipeline *Pipeline
	wg       *sync.WaitGroup
}

func (w *Worker) Start(ctx context.Context) {
	log := logger.Get().With("worker", w.id)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		for {
			select {
			case job, ok := <-w.jobChan:
				if !ok {
					// channel closed, no more jobs
					log.Infow("worker exiting", "reason", "channel closed")
					return
				}
				w.pipeline.metrics.IncReceived()
				w.processDelivery(ctx, job)

			case <-ctx.Done():
				// drain remaining jobs if any
				for job := range w.jobChan {
					w.pipeline.metrics.IncReceived()
					w.processDelivery(ctx, job)
				}
				log.Infow("worker exiting", "reason", "context cancelled")
				return
			}
		}
	}()
}

func (w *Worker) processDelivery(ctx context.Context, job Delivery) {
	log := logger.Get().With(
		"worker", w.id,
		"delivery_id", job.ID,
	)

	start := time.Now()

	// Dedup (optional). A dedup backend error is not worth losing the
	// delivery over; log and process anyway.
	if w.pipeline.deduper != nil {
		dup, err := w.pipeline.deduper.Seen(ctx, job.ID)
		if err != nil {
			log.Warnw("dedup check failed, processing anyway", "error", err)
		} else if dup {
			w.pipeline.metrics.IncDuplicate()
			log.Debugw("duplicate delivery dropped")
			return
		}
	}

	// Parse
	event, err := webhook.Parse(job.Payload)
	if err != nil {
		log.Warnw("payload rejected", "error", err)
		w.pipeline.metrics.IncFailed()
		return
	}

	// Filter
	pass, err := w.pipeline.filter.ShouldProcess(event)
	if err != nil {
		log.Errorw("filter misconfigured", "error", err)
		w.pipeline.metrics.IncFailed()
		return
	}
	if !pass {
		w.pipeline.metrics.IncSkipped()
		log.Debugw("delivery filtered out")
		return
	}

	// Normalize
	normalized := webhook.Normalize(event)
	payload, err := json.Marshal(normalized)
	if err != nil {
		log.Errorw("marshaling normalized event failed", "error", err)
		w.pipeline.metrics.IncFailed()
		return
	}

	callID, _ := event["call_id"].(string)
	stored := StoredEvent{
		DeliveryID:  job.ID,
		CallID:      callID,
		AgentID:     webhook.ExtractAgentID(event),
		EventType:   normalized.EventKind(),
		Payload:     payload,
		ReceivedAt:  job.ReceivedAt,
		ProcessedAt: time.Now().UTC(),
	}

	// Store with retries (from config)
	maxRetries := w.pipeline.cfg.MaxRetries
	baseBackoff := w.pipeline.cfg.RetryBaseBackoff

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = w.pipeline.storage.Store(ctx, []StoredEvent{stored})
		if err == nil {
			break
		}
		log.Warnw("storage attempt failed, will retry",
			"attempt", attempt,
			"max_attempts", maxRetries,
			"error", err,
		)
		time.Sleep(time.Duration(attempt) * baseBackoff)
	}

	if err != nil {
		log.Errorw("storage permanently failed", "attempts", maxRetries, "error", err)
		w.pipeline.metrics.IncFailed()
		return
	}

	// Success
	latency := time.Since(start).Milliseconds()
	w.pipeline.metrics.AddLatency(latency)
	w.pipeline.metrics.IncEmitted()

	log.Infow("delivery normalized",
		"event_type", stored.EventType,
		"call_id", stored.CallID,
		"agent_id", stored.AgentID,
		"latency_ms", latency,
	)
}
