package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kamthamc/wealthwise/internal/model"
)

// RangeFetcher retrieves all of an account's transactions in a date
// range with a single call, so a whole batch can be checked against
// the full ledger without one round trip per row.
type RangeFetcher interface {
	FindInRange(ctx context.Context, accountID string, start, end time.Time) ([]model.Transaction, error)
}

// BatchChecker runs duplicate detection over an entire imported batch.
type BatchChecker struct {
	fetcher    RangeFetcher
	windowDays int
}

// NewBatchChecker creates a batch checker over the given range source.
func NewBatchChecker(fetcher RangeFetcher, windowDays int) *BatchChecker {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &BatchChecker{fetcher: fetcher, windowDays: windowDays}
}

// CheckBatch returns one result per parsed row, index-aligned with the
// input. The candidate fetch covers the union of all row windows in
// one call; if it fails, the whole batch fails and no partial results
// are returned, so a reviewer never decides on incomplete data.
func (c *BatchChecker) CheckBatch(ctx context.Context, accountID string, batch []model.ParsedTransaction) ([]model.DuplicateCheckResult, error) {
	results := make([]model.DuplicateCheckResult, 0, len(batch))
	if len(batch) == 0 {
		return results, nil
	}

	start, end := batchSpan(batch)
	start = start.AddDate(0, 0, -c.windowDays)
	end = end.AddDate(0, 0, c.windowDays)

	candidates, err := c.fetcher.FindInRange(ctx, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates for batch: %w", err)
	}

	slog.Debug("Checking batch for duplicates",
		"account_id", accountID,
		"rows", len(batch),
		"candidates", len(candidates),
		"window_days", c.windowDays)

	for _, parsed := range batch {
		inWindow := filterWindow(candidates, parsed.Date, c.windowDays)
		results = append(results, matchAgainst(parsed, inWindow))
	}
	return results, nil
}

// batchSpan returns the earliest and latest row dates.
func batchSpan(batch []model.ParsedTransaction) (start, end time.Time) {
	start, end = batch[0].Date, batch[0].Date
	for _, p := range batch[1:] {
		if p.Date.Before(start) {
			start = p.Date
		}
		if p.Date.After(end) {
			end = p.Date
		}
	}
	return start, end
}

// filterWindow keeps candidates within +/- windowDays of date.
func filterWindow(candidates []model.Transaction, date time.Time, windowDays int) []model.Transaction {
	var out []model.Transaction
	for _, c := range candidates {
		if dateDistanceDays(date, c.Date) <= windowDays {
			out = append(out, c)
		}
	}
	return out
}
