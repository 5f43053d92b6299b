package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"videoagent-pipeline/internal/agentapi"
	"videoagent-pipeline/internal/pipeline"
	"videoagent-pipeline/internal/webhook"
	"videoagent-pipeline/pkg/logger"
)

type Server struct {
	Pipeline *pipeline.Pipeline
	Agents   *agentapi.Client
	Registry *prometheus.Registry
}

// NormalizeRequest is the synchronous batch-normalization input. Each
// element of Events is one raw webhook payload.
type NormalizeRequest struct {
	Events         []json.RawMessage `json:"events"`
	ContinueOnFail bool              `json:"continue_on_fail"`
}

func NewServer(p *pipeline.Pipeline, agents *agentapi.Client, reg *prometheus.Registry) *Server {
	return &Server{Pipeline: p, Agents: agents, Registry: reg}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Wrap all handlers with request ID middleware
	mux.Handle("/webhook", RequestIDMiddleware(http.HandlerFunc(s.handleWebhook)))
	mux.Handle("/normalize", RequestIDMiddleware(http.HandlerFunc(s.handleNormalize)))
	mux.Handle("/agents", RequestIDMiddleware(http.HandlerFunc(s.handleCreateAgent)))
	mux.Handle("/avatars", RequestIDMiddleware(http.HandlerFunc(s.handleListAvatars)))
	mux.Handle("/health", RequestIDMiddleware(http.HandlerFunc(s.handleHealth)))
	mux.Handle("/stats", RequestIDMiddleware(http.HandlerFunc(s.handleStats)))
	mux.Handle("/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))
}

// handleWebhook accepts one raw delivery and queues it for asynchronous
// normalization. It always accepts well-formed HTTP: payload problems are
// handled per item inside the pipeline, mirroring how upstream treats
// webhook endpoints (registration always succeeds, delivery is best
// effort).
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rid := GetRequestID(r.Context())
	log := logger.Get().With("request_id", rid)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		log.Warnw("request rejected", "method", r.Method, "path", r.URL.Path, "status", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		log.Warnw("body read failed", "error", err, "status", http.StatusBadRequest)
		return
	}

	d := pipeline.NewDelivery(pipeline.Delivery{
		ID:      r.Header.Get("X-Delivery-ID"),
		Payload: body,
	})
	s.Pipeline.Ingest(d)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"delivery_id": d.ID})

	log.Infow("delivery accepted",
		"delivery_id", d.ID,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// handleNormalize runs the batch driver synchronously and returns one
// result per emitted or errored item, input order preserved, skipped
// items omitted. Without continue_on_fail the first bad item aborts the
// batch with a 422 naming its position.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rid := GetRequestID(r.Context())
	log := logger.Get().With("request_id", rid)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		log.Warnw("request rejected", "method", r.Method, "path", r.URL.Path, "status", http.StatusMethodNotAllowed)
		return
	}

	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		log.Warnw("invalid JSON body", "error", err, "status", http.StatusBadRequest)
		return
	}

	payloads := make([]any, len(req.Events))
	for i, e := range req.Events {
		payloads[i] = e
	}

	results, err := webhook.ProcessBatch(payloads, s.Pipeline.Filter(), req.ContinueOnFail)
	if err != nil {
		item, _ := err.(*webhook.ItemError)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		resp := map[string]any{"error": err.Error()}
		if item != nil {
			resp["index"] = item.Index
		}
		_ = json.NewEncoder(w).Encode(resp)
		log.Warnw("batch aborted", "error", err, "status", http.StatusUnprocessableEntity)
		return
	}

	out := make([]any, 0, len(results))
	emitted, skipped, failed := 0, 0, 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			out = append(out, map[string]string{"error": res.Err.Error()})
			failed++
		case res.Skipped:
			skipped++
		default:
			out = append(out, res.Event)
			emitted++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"results": out})

	log.Infow("batch normalized",
		"items", len(payloads),
		"emitted", emitted,
		"skipped", skipped,
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rid := GetRequestID(r.Context())
	log := logger.Get().With("request_id", rid)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		log.Warnw("request rejected", "method", r.Method, "path", r.URL.Path, "status", http.StatusMethodNotAllowed)
		return
	}

	var req agentapi.CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		log.Warnw("invalid JSON body", "error", err, "status", http.StatusBadRequest)
		return
	}

	agent, err := s.Agents.CreateAgent(r.Context(), req)
	if err != nil {
		http.Error(w, "agent API request failed", http.StatusBadGateway)
		log.Errorw("create agent failed", "error", err, "status", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(agent)

	log.Infow("agent created",
		"agent_id", agent.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *Server) handleListAvatars(w http.ResponseWriter, r *http.Request) {
	rid := GetRequestID(r.Context())
	log := logger.Get().With("request_id", rid)

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		log.Warnw("request rejected", "method", r.Method, "path", r.URL.Path, "status", http.StatusMethodNotAllowed)
		return
	}

	avatars, err := s.Agents.ListAvatars(r.Context())
	if err != nil {
		http.Error(w, "agent API request failed", http.StatusBadGateway)
		log.Errorw("list avatars failed", "error", err, "status", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"avatars": avatars})

	log.Debugw("avatars listed", "count", len(avatars))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rid := GetRequestID(r.Context())
	log := logger.Get().With("request_id", rid)

	healthy := s.Pipeline.Context().Err() == nil
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]bool{"healthy": healthy}
	_ = json.NewEncoder(w).Encode(resp)

	log.Debugw("health check", "path", r.URL.Path, "remote_addr", r.RemoteAddr, "healthy", healthy)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	rid := GetRequestID(r.Context())
	log := logger.Get().With("request_id", rid)

	m := s.Pipeline.Metrics()
	stats := map[string]interface{}{
		"deliveries_received":        m.GetReceived(),
		"events_emitted":             m.GetEmitted(),
		"events_skipped":             m.GetSkipped(),
		"events_failed":              m.GetFailed(),
		"duplicate_deliveries":       m.GetDuplicates(),
		"average_processing_latency": m.AvgLatencyMS(),
		"current_queue_depth":        len(s.Pipeline.Queue()),
		"active_workers":             s.Pipeline.WorkerCount(),
		"uptime_seconds":             int(time.Since(s.Pipeline.StartTime()).Seconds()),
		"events_per_second":          m.EPS(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)

	log.Debugw("stats requested",
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)
}
