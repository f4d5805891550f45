package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mwhelan/daybreak/internal/risk"
)

// BuildRiskInput assembles the recent-history snapshot a risk request
// carries: the check-in window plus recency signals derived against now.
// The predictor itself never touches storage or the clock; this is where
// both are allowed.
func BuildRiskInput(ctx context.Context, repo Repository, windowDays int, now time.Time) (risk.Input, error) {
	since := now.AddDate(0, 0, -windowDays)

	window, err := repo.CheckInsSince(ctx, since)
	if err != nil {
		return risk.Input{}, fmt.Errorf("load check-in window: %w", err)
	}

	in := risk.Input{
		CheckIns:                window,
		WindowDays:              windowDays,
		DaysSinceLastMeeting:    -1,
		DaysSinceLastMeditation: -1,
	}

	if last, err := repo.LastMeeting(ctx); err != nil {
		return risk.Input{}, fmt.Errorf("load last meeting: %w", err)
	} else if last != nil {
		in.DaysSinceLastMeeting = now.Sub(last.Timestamp).Hours() / 24
	}

	if last, err := repo.LastMeditation(ctx); err != nil {
		return risk.Input{}, fmt.Errorf("load last meditation: %w", err)
	} else if last != nil {
		in.DaysSinceLastMeditation = now.Sub(last.Timestamp).Hours() / 24
	}

	all, err := repo.CheckIns(ctx)
	if err != nil {
		return risk.Input{}, fmt.Errorf("load check-ins: %w", err)
	}
	if len(all) > 0 {
		in.SoberDays = int(now.Sub(all[0].Timestamp).Hours() / 24)
	}

	return in, nil
}
