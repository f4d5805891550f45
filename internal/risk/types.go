package risk

import "github.com/mwhelan/daybreak/internal/record"

// Input is the recent-history snapshot a caller assembles before asking for
// an assessment. The window plus the derived recency signals are everything
// the predictor sees; it never reaches into storage or the clock.
type Input struct {
	CheckIns []record.CheckIn // recent window, any order

	// Derived signals. Negative means "never recorded".
	DaysSinceLastMeeting    float64
	DaysSinceLastMeditation float64

	SoberDays  int
	WindowDays int // size of the window in days (informational)
}

// Level is a discrete risk category derived from the score.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Confidence qualifies how much history backed an assessment.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceNormal Confidence = "normal"
)

// Factor is one contributing-factor explanation: which signal pushed the
// score up and by how many points.
type Factor struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// Assessment is the predictor's output.
type Assessment struct {
	Score      int        `json:"score"` // 0-100, higher is riskier
	Level      Level      `json:"level"`
	Factors    []Factor   `json:"factors"`
	Confidence Confidence `json:"confidence"`
}
