package pipeline

import (
	"context"
	"sync"
	"time"

	"videoagent-pipeline/internal/config"
	"videoagent-pipeline/internal/webhook"
	"videoagent-pipeline/pkg/logger"
)

// Pipeline pulls webhook deliveries off a buffered channel and runs each
// through dedup -> parse -> filter -> normalize -> store on a worker pool.
// Item failures are always item-scoped: a bad delivery increments a
// counter and never stops a worker.
type Pipeline struct {
	ingestionChan chan Delivery
	workerPool    []*Worker
	storage       Storage
	deduper       Deduper
	filter        webhook.FilterConfig
	metrics       *Metrics
	cfg           *config.Config
	ctx           context.Context
	cancel        context.CancelFunc
	startTime     time.Time
	wg            sync.WaitGroup
}

// NewPipeline starts the worker pool. deduper may be nil, which disables
// duplicate detection.
func NewPipeline(store Storage, deduper Deduper, filter webhook.FilterConfig, metrics *Metrics, cfg *config.Config) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		ingestionChan: make(chan Delivery, cfg.QueueSize),
		storage:       store,
		deduper:       deduper,
		filter:        filter,
		metrics:       metrics,
		cfg:           cfg,
		ctx:           ctx,
		cancel:        cancel,
		startTime:     time.Now(),
	}

	log := logger.Get()
	log.Infow("starting pipeline",
		"workers", cfg.WorkerCount,
		"queue_size", cfg.QueueSize,
		"max_retries", cfg.MaxRetries,
		"retry_backoff_ms", cfg.RetryBaseBackoff.Milliseconds(),
		"event_type_filter", filter.EventType,
		"filter_by_agent_ids", filter.FilterByAgentIDs,
		"dedup_enabled", deduper != nil,
	)

	for i := 0; i < cfg.WorkerCount; i++ {
		w := &Worker{
			id:       i + 1,
			jobChan:  p.ingestionChan,
			pipeline: p,
			wg:       &p.wg,
		}
		p.workerPool = append(p.workerPool, w)
		w.Start(ctx)
		log.Infow("worker started", "worker_id", w.id)
	}

	log.Infow("pipeline started", "worker_count", cfg.WorkerCount)
	return p
}

func (p *Pipeline) Ingest(d Delivery) {
	p.ingestionChan <- NewDelivery(d)
	logger.Get().Debugw("delivery ingested",
		"delivery_id", d.ID,
		"bytes", len(d.Payload),
	)
}

func (p *Pipeline) Shutdown() {
	log := logger.Get()
	log.Info("initiating graceful shutdown")

	// close channel → lets workers finish draining
	close(p.ingestionChan)

	// cancel context → in case workers are blocked in select
	p.cancel()

	// wait for workers
	p.wg.Wait()

	log.Info("all workers stopped, shutdown complete")
}

func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

func (p *Pipeline) Queue() chan Delivery {
	return p.ingestionChan
}

func (p *Pipeline) Filter() webhook.FilterConfig {
	return p.filter
}

func (p *Pipeline) WorkerCount() int {
	return len(p.workerPool)
}

func (p *Pipeline) StartTime() time.Time {
	return p.startTime
}

func (p *Pipeline) Context() context.Context {
	return p.ctx
}
