package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/mwhelan/daybreak/internal/offload"
	"github.com/mwhelan/daybreak/internal/record"
)

// requestEnvelope is the wire form the UI sends. The id correlates the
// response; when the client omits it the server assigns one and echoes it
// back.
type requestEnvelope struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// responseEnvelope is the wire form sent back. Type determines the payload
// shape: an assessment, an insights result, or an error descriptor.
type responseEnvelope struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// riskWire is the optional PREDICT_RISK payload.
type riskWire struct {
	WindowDays int `json:"windowDays,omitempty"`
}

// insightsWire is the optional GENERATE_INSIGHTS payload. When all three
// collections are absent the server loads them from the store.
type insightsWire struct {
	CheckIns    []record.CheckIn           `json:"checkIns,omitempty"`
	Meetings    []record.MeetingAttendance `json:"meetings,omitempty"`
	Meditations []record.MeditationSession `json:"meditations,omitempty"`
}

func (h *Handler) serveAnalytics(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if h.allowedOrigin != "" {
		opts.OriginPatterns = []string{h.allowedOrigin}
	}
	ws, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer ws.Close(websocket.StatusNormalClosure, "session ended")

	h.logger.Info("analytics channel opened", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbound := make(chan responseEnvelope, 32)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case env := <-outbound:
				data, err := json.Marshal(env)
				if err != nil {
					h.logger.Error("marshal response envelope", "error", err)
					continue
				}
				if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			h.logger.Info("analytics channel closed", "remote", r.RemoteAddr)
			return
		}
		h.handleMessage(ctx, data, outbound)
	}
}

// handleMessage turns one wire envelope into an offload request and arranges
// for its response to be written back. Wire-level problems are answered with
// an ERROR envelope on the spot; the channel and the worker stay up.
func (h *Handler) handleMessage(ctx context.Context, data []byte, outbound chan<- responseEnvelope) {
	var env requestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.send(ctx, outbound, errorEnvelope("", fmt.Sprintf("malformed request envelope: %v", err)))
		return
	}
	if env.ID == "" {
		env.ID = uuid.NewString()
	}

	req, err := h.buildRequest(ctx, env)
	if err != nil {
		h.send(ctx, outbound, errorEnvelope(env.ID, err.Error()))
		return
	}

	ch := h.register(req.ID)
	if err := h.worker.Submit(req); err != nil {
		h.unregister(req.ID)
		h.send(ctx, outbound, errorEnvelope(env.ID, fmt.Sprintf("submit request: %v", err)))
		return
	}

	go func() {
		select {
		case <-ctx.Done():
			h.unregister(req.ID)
		case resp := <-ch:
			h.send(ctx, outbound, toEnvelope(resp))
		}
	}()
}

// buildRequest decodes the tagged payload into a typed offload request. For
// risk requests the store supplies the history snapshot; insights requests
// may carry their collections inline or fall back to the store.
func (h *Handler) buildRequest(ctx context.Context, env requestEnvelope) (offload.Request, error) {
	switch offload.Op(env.Type) {
	case offload.OpPredictRisk:
		var wire riskWire
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &wire); err != nil {
				return offload.Request{}, fmt.Errorf("malformed %s payload: %v", env.Type, err)
			}
		}
		in, err := h.riskInput(ctx, wire.WindowDays, time.Now().UTC())
		if err != nil {
			return offload.Request{}, fmt.Errorf("assemble risk input: %v", err)
		}
		return offload.Request{ID: env.ID, Op: offload.OpPredictRisk, Payload: offload.RiskPayload{Input: in}}, nil

	case offload.OpGenerateInsights:
		var wire insightsWire
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &wire); err != nil {
				return offload.Request{}, fmt.Errorf("malformed %s payload: %v", env.Type, err)
			}
		}
		if wire.CheckIns == nil && wire.Meetings == nil && wire.Meditations == nil {
			var err error
			if wire.CheckIns, err = h.repo.CheckIns(ctx); err != nil {
				return offload.Request{}, fmt.Errorf("load check-ins: %v", err)
			}
			if wire.Meetings, err = h.repo.Meetings(ctx); err != nil {
				return offload.Request{}, fmt.Errorf("load meetings: %v", err)
			}
			if wire.Meditations, err = h.repo.Meditations(ctx); err != nil {
				return offload.Request{}, fmt.Errorf("load meditations: %v", err)
			}
		}
		return offload.Request{
			ID: env.ID,
			Op: offload.OpGenerateInsights,
			Payload: offload.InsightsPayload{
				CheckIns:    wire.CheckIns,
				Meetings:    wire.Meetings,
				Meditations: wire.Meditations,
			},
		}, nil

	default:
		return offload.Request{}, fmt.Errorf("unrecognized operation %q", env.Type)
	}
}

func (h *Handler) send(ctx context.Context, outbound chan<- responseEnvelope, env responseEnvelope) {
	select {
	case outbound <- env:
	case <-ctx.Done():
	}
}

func toEnvelope(resp offload.Response) responseEnvelope {
	switch resp.Kind {
	case offload.KindRiskResult:
		return responseEnvelope{ID: resp.ID, Type: string(offload.KindRiskResult), Payload: resp.Risk}
	case offload.KindInsightsResult:
		return responseEnvelope{ID: resp.ID, Type: string(offload.KindInsightsResult), Payload: resp.Insights}
	default:
		return responseEnvelope{ID: resp.ID, Type: string(offload.KindError), Payload: resp.Err}
	}
}

func errorEnvelope(id, message string) responseEnvelope {
	return responseEnvelope{
		ID:      id,
		Type:    string(offload.KindError),
		Payload: &offload.ErrorInfo{Message: message},
	}
}
