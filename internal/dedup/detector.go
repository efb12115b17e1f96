package dedup

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kamthamc/wealthwise/internal/model"
)

// DefaultWindowDays bounds the candidate search around each imported
// row's date. Wide enough for posting-date vs value-date skew, narrow
// enough to keep comparison cost bounded.
const DefaultWindowDays = 3

// CandidateFetcher retrieves existing transactions that could
// plausibly match an imported row.
type CandidateFetcher interface {
	FindInWindow(ctx context.Context, accountID string, date time.Time, windowDays int) ([]model.Transaction, error)
}

// Detector classifies a single parsed transaction against the ledger.
type Detector struct {
	fetcher    CandidateFetcher
	windowDays int
}

// NewDetector creates a detector over the given candidate source.
func NewDetector(fetcher CandidateFetcher, windowDays int) *Detector {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Detector{fetcher: fetcher, windowDays: windowDays}
}

// Detect fetches candidates for the row's date window, scores each,
// and returns the ordered match list. A fetch failure propagates; the
// row's duplicate status is indeterminate, never assumed new.
func (d *Detector) Detect(ctx context.Context, accountID string, parsed model.ParsedTransaction) (model.DuplicateCheckResult, error) {
	candidates, err := d.fetcher.FindInWindow(ctx, accountID, parsed.Date, d.windowDays)
	if err != nil {
		return model.DuplicateCheckResult{}, fmt.Errorf("fetching candidates: %w", err)
	}
	return matchAgainst(parsed, candidates), nil
}

// matchAgainst scores every candidate and assembles the result.
// Zero-score candidates are discarded. Sort key is (score desc,
// existing date desc, existing id asc) so ties are deterministic.
func matchAgainst(parsed model.ParsedTransaction, candidates []model.Transaction) model.DuplicateCheckResult {
	var matches []model.DuplicateMatch
	for _, candidate := range candidates {
		score, reasons := Score(parsed, candidate)
		if score == 0 {
			continue
		}
		matches = append(matches, model.DuplicateMatch{
			Existing:     candidate,
			Confidence:   model.ConfidenceForScore(score),
			MatchReasons: reasons,
			Score:        score,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if !matches[i].Existing.Date.Equal(matches[j].Existing.Date) {
			return matches[i].Existing.Date.After(matches[j].Existing.Date)
		}
		return matches[i].Existing.ID < matches[j].Existing.ID
	})

	return model.NewCheckResult(matches)
}
