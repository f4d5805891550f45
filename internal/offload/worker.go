package offload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/mwhelan/daybreak/internal/insights"
	"github.com/mwhelan/daybreak/internal/risk"
)

// Submission errors. The worker itself never returns errors through the
// response channel for these; they are caller-side conditions.
var (
	ErrQueueFull = errors.New("offload: request queue full")
	ErrStopped   = errors.New("offload: worker stopped")
)

// Worker owns the single background goroutine that runs analytics off the
// interactive path. Requests are handled to completion one at a time in
// arrival order, and every accepted request produces exactly one response.
type Worker struct {
	requests  chan Request
	responses chan Response
	logger    *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stopped   chan struct{}
	done      chan struct{}
}

// NewWorker creates a worker with the given request queue size. A nil logger
// falls back to slog.Default.
func NewWorker(queueSize int, logger *slog.Logger) *Worker {
	if queueSize <= 0 {
		queueSize = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		requests:  make(chan Request, queueSize),
		responses: make(chan Response, queueSize),
		logger:    logger,
		stopped:   make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the dispatch goroutine. Safe to call once; the worker runs
// until Stop is called or ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		go w.loop(ctx)
	})
}

// Submit enqueues a request without blocking the caller. Returns ErrQueueFull
// when the queue is saturated and ErrStopped after shutdown; in both cases
// the request was not accepted and no response will arrive for it.
func (w *Worker) Submit(req Request) error {
	select {
	case <-w.stopped:
		return ErrStopped
	default:
	}
	select {
	case w.requests <- req:
		return nil
	case <-w.stopped:
		return ErrStopped
	default:
		return ErrQueueFull
	}
}

// Responses is the channel the worker emits responses on. Callers correlate
// them to pending requests by ID.
func (w *Worker) Responses() <-chan Response {
	return w.responses
}

// Stop prevents new submissions, lets already-queued requests drain, then
// closes the response channel. Blocks until the loop has exited. Must only
// be called after Start.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopped)
	})
	<-w.done
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)
	defer close(w.responses)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("offload worker stopping", "reason", ctx.Err())
			return
		case <-w.stopped:
			w.drain(ctx)
			return
		case req := <-w.requests:
			if !w.respond(ctx, w.Handle(req)) {
				return
			}
		}
	}
}

// drain answers requests that were already accepted before Stop.
func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case req := <-w.requests:
			if !w.respond(ctx, w.Handle(req)) {
				return
			}
		default:
			return
		}
	}
}

func (w *Worker) respond(ctx context.Context, resp Response) bool {
	select {
	case w.responses <- resp:
		return true
	case <-ctx.Done():
		return false
	}
}

// Handle runs one request to completion and returns its response. This is
// the dispatch core: it decodes the operation tag, routes to the matching
// analytics function, and converts every failure (protocol, computation, or
// panic) into an error response. It never panics outward, so one bad
// request cannot take the loop down.
func (w *Worker) Handle(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("offload request panicked", "id", req.ID, "op", req.Op, "panic", r)
			resp = errorResponse(req.ID, fmt.Sprintf("internal failure: %v", r), string(debug.Stack()))
		}
	}()

	switch req.Op {
	case OpPredictRisk, OpGenerateInsights:
	default:
		return errorResponse(req.ID, fmt.Sprintf("unrecognized operation %q", req.Op), "")
	}

	if req.Payload == nil {
		return errorResponse(req.ID, fmt.Sprintf("missing payload for operation %q", req.Op), "")
	}
	if got := req.Payload.op(); got != req.Op {
		return errorResponse(req.ID, fmt.Sprintf("payload for %q sent with operation %q", got, req.Op), "")
	}

	switch p := req.Payload.(type) {
	case RiskPayload:
		assessment, err := risk.Assess(p.Input)
		if err != nil {
			return errorResponse(req.ID, err.Error(), "")
		}
		return Response{ID: req.ID, Kind: KindRiskResult, Risk: &assessment}

	case InsightsPayload:
		result, err := insights.Generate(p.CheckIns, p.Meetings, p.Meditations)
		if err != nil {
			return errorResponse(req.ID, err.Error(), "")
		}
		return Response{ID: req.ID, Kind: KindInsightsResult, Insights: &result}

	default:
		return errorResponse(req.ID, fmt.Sprintf("unsupported payload type %T", req.Payload), "")
	}
}

func errorResponse(id, message, stack string) Response {
	return Response{ID: id, Kind: KindError, Err: &ErrorInfo{Message: message, Stack: stack}}
}
