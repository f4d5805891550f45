// Package bridge exposes the analytics offload worker and the record store
// to the UI: a WebSocket channel carrying request/response envelopes plus a
// small REST surface for records and quotes.
package bridge

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mwhelan/daybreak/internal/offload"
	"github.com/mwhelan/daybreak/internal/risk"
	"github.com/mwhelan/daybreak/internal/store"
)

// Handler wires the store and the offload worker to HTTP.
type Handler struct {
	repo          store.Repository
	worker        *offload.Worker
	windowDays    int
	allowedOrigin string
	logger        *slog.Logger

	mu      sync.Mutex
	pending map[string]chan offload.Response
}

// New creates a bridge handler. windowDays is the default recent-history
// window for risk requests that don't specify one.
func New(repo store.Repository, worker *offload.Worker, windowDays int, allowedOrigin string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		repo:          repo,
		worker:        worker,
		windowDays:    windowDays,
		allowedOrigin: allowedOrigin,
		logger:        logger,
		pending:       make(map[string]chan offload.Response),
	}
}

// Start launches the response router that correlates worker responses back
// to the connection that asked. Must be called once before serving.
func (h *Handler) Start(ctx context.Context) {
	go h.route(ctx)
}

func (h *Handler) route(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case resp, ok := <-h.worker.Responses():
			if !ok {
				return
			}
			h.deliver(resp)
		}
	}
}

func (h *Handler) deliver(resp offload.Response) {
	h.mu.Lock()
	ch := h.pending[resp.ID]
	delete(h.pending, resp.ID)
	h.mu.Unlock()

	if ch == nil {
		h.logger.Warn("response for unknown request", "id", resp.ID, "kind", resp.Kind)
		return
	}
	ch <- resp
}

// register reserves a correlation ID and returns the channel its response
// will arrive on. The channel is buffered so delivery never blocks the
// router.
func (h *Handler) register(id string) chan offload.Response {
	ch := make(chan offload.Response, 1)
	h.mu.Lock()
	h.pending[id] = ch
	h.mu.Unlock()
	return ch
}

func (h *Handler) unregister(id string) {
	h.mu.Lock()
	delete(h.pending, id)
	h.mu.Unlock()
}

// riskInput assembles the recent-history snapshot for a risk request.
func (h *Handler) riskInput(ctx context.Context, windowDays int, now time.Time) (risk.Input, error) {
	if windowDays <= 0 {
		windowDays = h.windowDays
	}
	return store.BuildRiskInput(ctx, h.repo, windowDays, now)
}
