// Package offload carries analytics requests from the interactive path to a
// dedicated background worker and returns typed results or structured errors.
// A single worker goroutine handles requests one at a time; a failure in one
// request never affects the next, and a caller never blocks on computation.
package offload

import (
	"github.com/google/uuid"

	"github.com/mwhelan/daybreak/internal/insights"
	"github.com/mwhelan/daybreak/internal/record"
	"github.com/mwhelan/daybreak/internal/risk"
)

// Op tags the operation a request asks for. The set is closed: anything else
// is a protocol violation answered with an error response.
type Op string

const (
	OpPredictRisk      Op = "PREDICT_RISK"
	OpGenerateInsights Op = "GENERATE_INSIGHTS"
)

// Kind tags a response and fully determines its payload shape.
type Kind string

const (
	KindRiskResult     Kind = "PREDICT_RISK_RESULT"
	KindInsightsResult Kind = "GENERATE_INSIGHTS_RESULT"
	KindError          Kind = "ERROR"
)

// Payload is the sealed set of request payloads. Pairing each operation with
// its exact payload type at compile time is what lets the dispatch loop
// avoid unchecked casts; a tag/payload mismatch still degrades to an error
// response rather than a crash.
type Payload interface {
	op() Op
}

// RiskPayload asks the worker for a relapse-risk assessment.
type RiskPayload struct {
	Input risk.Input
}

func (RiskPayload) op() Op { return OpPredictRisk }

// InsightsPayload asks the worker for behavioral insights over the three
// history collections.
type InsightsPayload struct {
	CheckIns    []record.CheckIn
	Meetings    []record.MeetingAttendance
	Meditations []record.MeditationSession
}

func (InsightsPayload) op() Op { return OpGenerateInsights }

// Request is one unit of work for the worker. ID correlates the response
// back to the caller; the envelope itself has no identity beyond the single
// exchange.
type Request struct {
	ID      string
	Op      Op
	Payload Payload
}

// Response is the worker's answer. Exactly one of Risk, Insights, or Err is
// set, determined by Kind.
type Response struct {
	ID       string
	Kind     Kind
	Risk     *risk.Assessment
	Insights *insights.Result
	Err      *ErrorInfo
}

// ErrorInfo describes a failed request: the message is always present, the
// stack only when the failure was a recovered panic.
type ErrorInfo struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// NewRiskRequest builds a PREDICT_RISK request with a fresh correlation ID.
func NewRiskRequest(in risk.Input) Request {
	return Request{ID: uuid.NewString(), Op: OpPredictRisk, Payload: RiskPayload{Input: in}}
}

// NewInsightsRequest builds a GENERATE_INSIGHTS request with a fresh
// correlation ID.
func NewInsightsRequest(checkIns []record.CheckIn, meetings []record.MeetingAttendance, meditations []record.MeditationSession) Request {
	return Request{
		ID: uuid.NewString(),
		Op: OpGenerateInsights,
		Payload: InsightsPayload{
			CheckIns:    checkIns,
			Meetings:    meetings,
			Meditations: meditations,
		},
	}
}
