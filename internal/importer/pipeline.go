// Package importer ties statement parsing, column mapping, duplicate
// detection, human review and commit into one import pipeline.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kamthamc/wealthwise/internal/common"
	"github.com/kamthamc/wealthwise/internal/dedup"
	"github.com/kamthamc/wealthwise/internal/mapping"
	"github.com/kamthamc/wealthwise/internal/model"
	"github.com/kamthamc/wealthwise/internal/parse"
	"github.com/kamthamc/wealthwise/internal/review"
	"github.com/kamthamc/wealthwise/internal/service"
)

// State identifies where an import session currently is.
type State string

// Pipeline states. Error is reachable from FileSelected, Parsed,
// DuplicatesChecked and Committing; any state resets to Idle on
// explicit cancellation.
const (
	StateIdle              State = "idle"
	StateFileSelected      State = "file_selected"
	StateParsed            State = "parsed"
	StateColumnsMapped     State = "columns_mapped"
	StateDuplicatesChecked State = "duplicates_checked"
	StateUserReviewing     State = "user_reviewing"
	StateCommitting        State = "committing"
	StateDone              State = "done"
	StateError             State = "error"
)

// ErrCanceled reports that the user canceled the import.
var ErrCanceled = errors.New("import canceled")

// Options configures one import session.
type Options struct {
	Retry service.RetryOptions
	// WindowDays bounds the duplicate-detection candidate window.
	WindowDays int
	// SkipDuplicateCheck imports without detection, marking every row
	// new. Explicit user opt-in only; never a silent fallback.
	SkipDuplicateCheck bool
}

// Pipeline is a single-flow import session: one file at a time,
// driven stage by stage.
type Pipeline struct {
	repo     service.TransactionRepository
	registry *parse.Registry
	prompter service.ReviewPrompter
	checker  *dedup.BatchChecker

	err       error
	state     State
	accountID string
	content   []byte
	batch     model.ImportBatch
	statement *service.Statement
	parsed    []model.ParsedTransaction
	results   []model.DuplicateCheckResult
	items     []*model.ReviewItem
	opts      Options
}

// New creates an idle pipeline. Dependencies are injected so the
// pipeline is testable with fakes; there is no ambient state.
func New(repo service.TransactionRepository, registry *parse.Registry, prompter service.ReviewPrompter, opts Options) *Pipeline {
	return &Pipeline{
		repo:     repo,
		registry: registry,
		prompter: prompter,
		checker:  dedup.NewBatchChecker(repo, opts.WindowDays),
		opts:     opts,
		state:    StateIdle,
	}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State { return p.state }

// Err returns the error that moved the pipeline into StateError.
func (p *Pipeline) Err() error { return p.err }

// Items exposes the review items while in StateUserReviewing.
func (p *Pipeline) Items() []*model.ReviewItem { return p.items }

// Reset discards all in-flight data and returns to Idle. Legal from
// any state except mid-commit.
func (p *Pipeline) Reset() error {
	if p.state == StateCommitting {
		return fmt.Errorf("cannot cancel while committing")
	}
	*p = Pipeline{
		repo:     p.repo,
		registry: p.registry,
		prompter: p.prompter,
		checker:  p.checker,
		opts:     p.opts,
		state:    StateIdle,
	}
	return nil
}

// fail records err and moves to StateError. The session stays
// resettable to Idle.
func (p *Pipeline) fail(err error) error {
	p.err = err
	p.state = StateError
	return err
}

func (p *Pipeline) requireState(want State) error {
	if p.state != want {
		return fmt.Errorf("pipeline is %s, expected %s", p.state, want)
	}
	return nil
}

// SelectFile validates the file type and account, records batch
// provenance, and warns on re-import of a previously seen file.
func (p *Pipeline) SelectFile(ctx context.Context, accountID, fileName string, content []byte) error {
	if err := p.requireState(StateIdle); err != nil {
		return err
	}

	if _, err := p.repo.GetAccount(ctx, accountID); err != nil {
		return p.fail(common.NewUserError("Account not found", fmt.Errorf("%w: %v", common.ErrInvalidAccount, err)))
	}

	if _, err := p.registry.ForFile(fileName); err != nil {
		return p.fail(err)
	}

	source := mapping.DetectSource(fileName, nil)
	p.batch = model.NewImportBatch(fileName, source, content)

	if prior, err := p.repo.GetImportRunByFileHash(ctx, p.batch.FileHash); err == nil {
		proceed, confirmErr := p.prompter.ConfirmReimport(ctx, prior)
		if confirmErr != nil {
			return p.fail(confirmErr)
		}
		if !proceed {
			_ = p.Reset()
			return ErrCanceled
		}
	}

	p.accountID = accountID
	p.content = content
	p.state = StateFileSelected

	slog.Info("File selected for import",
		"file", fileName,
		"account_id", accountID,
		"source", source,
		"file_hash", p.batch.FileHash)
	return nil
}

// Parse extracts headers and rows from the selected file.
func (p *Pipeline) Parse(ctx context.Context) error {
	if err := p.requireState(StateFileSelected); err != nil {
		return err
	}

	parser, err := p.registry.ForFile(p.batch.FileName)
	if err != nil {
		return p.fail(err)
	}

	stmt, err := parser.Parse(ctx, bytes.NewReader(p.content))
	if err != nil {
		return p.fail(err)
	}
	if len(stmt.Rows) == 0 {
		return p.fail(common.NewUserError("File contains no transaction rows", common.ErrNoValidRows))
	}

	if p.batch.Source == "unknown" {
		p.batch.Source = mapping.DetectSource(p.batch.FileName, stmt.Headers)
	}

	p.statement = stmt
	p.state = StateParsed

	slog.Info("Parsed statement",
		"format", parser.Format(),
		"rows", len(stmt.Rows),
		"columns", len(stmt.Headers))
	return nil
}

// MapColumns proposes a column mapping, has the user confirm it, and
// materializes parsed transactions. Rows missing required fields are
// filtered; an empty result fails the stage.
func (p *Pipeline) MapColumns(ctx context.Context) error {
	if err := p.requireState(StateParsed); err != nil {
		return err
	}

	proposal := mapping.Propose(p.statement.Headers)
	confirmed, err := p.prompter.ConfirmMapping(ctx, p.statement.Headers, proposal)
	if err != nil {
		return p.fail(err)
	}

	parsed, err := mapping.Apply(p.statement, confirmed)
	if err != nil {
		return p.fail(err)
	}

	p.parsed = parsed
	p.state = StateColumnsMapped

	slog.Info("Columns mapped", "transactions", len(parsed))
	return nil
}

// CheckDuplicates runs the batch duplicate check. A fetch failure
// fails the whole stage; the pipeline never proceeds to review with
// partial or assumed results. With SkipDuplicateCheck (explicit
// opt-in) every row is marked new instead.
func (p *Pipeline) CheckDuplicates(ctx context.Context) error {
	if err := p.requireState(StateColumnsMapped); err != nil {
		return err
	}

	if p.opts.SkipDuplicateCheck {
		slog.Warn("Duplicate detection skipped by user request",
			"rows", len(p.parsed))
		p.results = make([]model.DuplicateCheckResult, len(p.parsed))
		for i := range p.results {
			p.results[i] = model.NewCheckResult(nil)
		}
		p.state = StateDuplicatesChecked
		return nil
	}

	var results []model.DuplicateCheckResult
	err := common.WithRetry(ctx, func() error {
		var checkErr error
		results, checkErr = p.checker.CheckBatch(ctx, p.accountID, p.parsed)
		return checkErr
	}, p.opts.Retry)
	if err != nil {
		return p.fail(common.NewUserError("Duplicate detection failed",
			fmt.Errorf("%w: %v", common.ErrDetectionFailed, err)))
	}

	p.results = results
	p.state = StateDuplicatesChecked

	flagged := 0
	for _, r := range results {
		if !r.IsNewTransaction {
			flagged++
		}
	}
	slog.Info("Duplicate check complete",
		"rows", len(results),
		"flagged", flagged)
	return nil
}

// Review builds review items with default actions and hands them to
// the prompter. Returns ErrCanceled and resets when the user backs
// out; item order is preserved end to end.
func (p *Pipeline) Review(ctx context.Context) error {
	if err := p.requireState(StateDuplicatesChecked); err != nil {
		return err
	}

	items, err := review.NewItems(p.parsed, p.results)
	if err != nil {
		return p.fail(err)
	}
	p.items = items
	p.state = StateUserReviewing

	confirmed, err := p.prompter.ReviewTransactions(ctx, items)
	if err != nil {
		return p.fail(err)
	}
	if !confirmed {
		_ = p.Reset()
		return ErrCanceled
	}
	return nil
}

// Commit applies the reviewed actions. Partial failure is reported in
// the stats, not fatal: the pipeline reaches Done regardless.
func (p *Pipeline) Commit(ctx context.Context, committer *review.Committer) (service.CommitStats, error) {
	if err := p.requireState(StateUserReviewing); err != nil {
		return service.CommitStats{}, err
	}

	p.state = StateCommitting
	stats, err := committer.Commit(ctx, p.items, p.batch, p.accountID)
	if err != nil {
		return stats, p.fail(err)
	}

	p.state = StateDone
	slog.Info("Import complete",
		"import_reference", p.batch.Reference,
		"created", stats.Created,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return stats, nil
}

// Run drives the whole pipeline from file selection through commit.
func (p *Pipeline) Run(ctx context.Context, accountID, fileName string, content []byte, committer *review.Committer) (service.CommitStats, error) {
	steps := []func(context.Context) error{
		func(ctx context.Context) error { return p.SelectFile(ctx, accountID, fileName, content) },
		p.Parse,
		p.MapColumns,
		p.CheckDuplicates,
		p.Review,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return service.CommitStats{}, err
		}
	}
	return p.Commit(ctx, committer)
}
