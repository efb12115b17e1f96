// Package review turns duplicate-check results into reviewable items
// and translates the reviewer's final per-row actions into ledger
// operations.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/kamthamc/wealthwise/internal/model"
	"github.com/kamthamc/wealthwise/internal/service"
)

// NewItems pairs each parsed row with its detection result and the
// safe default action. Input order is preserved; results must be
// index-aligned with the batch.
func NewItems(batch []model.ParsedTransaction, results []model.DuplicateCheckResult) ([]*model.ReviewItem, error) {
	if len(batch) != len(results) {
		return nil, fmt.Errorf("batch has %d rows but %d results", len(batch), len(results))
	}

	items := make([]*model.ReviewItem, len(batch))
	for i := range batch {
		items[i] = &model.ReviewItem{
			Parsed: batch[i],
			Result: results[i],
			Action: model.DefaultAction(results[i]),
		}
	}
	return items, nil
}

// Committer applies reviewed items to the ledger.
type Committer struct {
	repo        service.TransactionRepository
	progressOut func(total int) *progressbar.ProgressBar
}

// NewCommitter creates a committer over the given repository.
func NewCommitter(repo service.TransactionRepository) *Committer {
	return &Committer{repo: repo}
}

// WithProgress attaches a progress bar factory invoked at commit start.
func (c *Committer) WithProgress(factory func(total int) *progressbar.ProgressBar) *Committer {
	c.progressOut = factory
	return c
}

// Commit translates each item's action into a repository call:
// skip -> nothing, import/force -> create, update -> patch the best
// match. A failed row is recorded and does not abort the rest; the
// aggregate counts report both outcomes. Item order is preserved so
// FailedAt indices correlate with review order.
func (c *Committer) Commit(ctx context.Context, items []*model.ReviewItem, batch model.ImportBatch, accountID string) (service.CommitStats, error) {
	var stats service.CommitStats

	var bar *progressbar.ProgressBar
	if c.progressOut != nil {
		bar = c.progressOut(len(items))
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		var err error
		switch item.Action {
		case model.ActionSkip:
			stats.Skipped++
		case model.ActionImport, model.ActionForce:
			err = c.createFrom(ctx, item.Parsed, batch, accountID)
			if err == nil {
				stats.Created++
			}
		case model.ActionUpdate:
			best := item.Result.BestMatch()
			if best == nil {
				// Unrepresentable via ReviewItem.SetAction; a nil
				// match here is a caller bug.
				return stats, fmt.Errorf("row %d: update action without a duplicate match", i)
			}
			err = c.repo.Update(ctx, best.Existing.ID, patchFrom(item.Parsed))
			if err == nil {
				stats.Updated++
			}
		default:
			err = fmt.Errorf("invalid review action: %q", item.Action)
		}

		if err != nil {
			stats.Failed++
			stats.FailedAt = append(stats.FailedAt, i)
			slog.Error("Failed to commit review item",
				"row", i,
				"action", item.Action,
				"description", item.Parsed.Description,
				"error", err)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	c.recordRun(ctx, batch, accountID, stats)
	return stats, nil
}

func (c *Committer) createFrom(ctx context.Context, parsed model.ParsedTransaction, batch model.ImportBatch, accountID string) error {
	txn := &model.Transaction{
		AccountID:       accountID,
		Date:            parsed.Date,
		Description:     parsed.Description,
		Category:        parsed.Category,
		Type:            parsed.Type,
		Amount:          parsed.Amount,
		ExternalRef:     externalRef(parsed),
		ImportReference: batch.Reference,
		FileHash:        batch.FileHash,
		ImportSource:    batch.Source,
		ImportDate:      batch.ImportedAt,
	}
	_, err := c.repo.Create(ctx, txn)
	return err
}

// externalRef uses the bank reference when present, otherwise
// synthesizes a stable id from the date and description.
func externalRef(parsed model.ParsedTransaction) string {
	if ref := strings.TrimSpace(parsed.Reference); ref != "" {
		return ref
	}

	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, parsed.Description)
	if len(prefix) > 12 {
		prefix = prefix[:12]
	}
	return fmt.Sprintf("txn_%s_%s_%s", parsed.Date.Format("20060102"), prefix, parsed.Amount.StringFixed(2))
}

func patchFrom(parsed model.ParsedTransaction) model.TransactionPatch {
	date := parsed.Date
	desc := parsed.Description
	txnType := parsed.Type
	amount := parsed.Amount
	patch := model.TransactionPatch{
		Date:        &date,
		Description: &desc,
		Type:        &txnType,
		Amount:      &amount,
	}
	if parsed.Category != "" {
		category := parsed.Category
		patch.Category = &category
	}
	if ref := strings.TrimSpace(parsed.Reference); ref != "" {
		patch.ExternalRef = &ref
	}
	return patch
}

// recordRun persists import provenance. Failure here is logged, not
// fatal: the commit outcome already happened.
func (c *Committer) recordRun(ctx context.Context, batch model.ImportBatch, accountID string, stats service.CommitStats) {
	run := &model.ImportRun{
		Reference:    batch.Reference,
		AccountID:    accountID,
		FileHash:     batch.FileHash,
		FileName:     batch.FileName,
		Source:       batch.Source,
		CreatedCount: stats.Created,
		UpdatedCount: stats.Updated,
		SkippedCount: stats.Skipped,
		FailedCount:  stats.Failed,
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.repo.RecordImportRun(ctx, run); err != nil {
		slog.Warn("Failed to record import run",
			"import_reference", batch.Reference,
			"error", err)
	}
}
