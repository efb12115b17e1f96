package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kamthamc/wealthwise/internal/model"
)

// Prompter implements the interactive review surface over a terminal.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
	// AutoConfirm accepts every proposal and default action without
	// prompting (the --yes flag).
	AutoConfirm bool
}

// NewPrompter creates a prompter over the given reader and writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

func (p *Prompter) say(format string, args ...any) {
	_, _ = fmt.Fprintf(p.writer, format, args...)
}

// readLine reads one trimmed input line, honoring ctx cancellation.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	type result struct {
		err  error
		line string
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil && res.line == "" {
			return "", res.err
		}
		return res.line, nil
	}
}

// promptChoice asks until the user enters one of the valid choices.
// Empty input selects the first choice.
func (p *Prompter) promptChoice(ctx context.Context, prompt string, valid []string) (string, error) {
	for {
		p.say("%s [%s]: ", PromptStyle.Render(prompt), strings.Join(valid, "/"))
		line, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}
		if line == "" {
			return valid[0], nil
		}
		line = strings.ToLower(line)
		for _, v := range valid {
			if line == v {
				return v, nil
			}
		}
		p.say("%s\n", ErrorStyle.Render("Please enter one of: "+strings.Join(valid, ", ")))
	}
}

// ConfirmMapping shows the proposed column mapping and lets the user
// accept it or reassign columns one by one.
func (p *Prompter) ConfirmMapping(ctx context.Context, headers []string, proposal model.ColumnMapping) (model.ColumnMapping, error) {
	mapping := make(model.ColumnMapping, len(proposal))
	for col, field := range proposal {
		mapping[col] = field
	}

	for {
		p.say("\n%s\n", TitleStyle.Render("Column mapping"))
		for _, header := range headers {
			field := mapping[header]
			rendered := string(field)
			if field == model.FieldSkip {
				rendered = SubtleStyle.Render(rendered)
			} else {
				rendered = SuccessStyle.Render(rendered)
			}
			p.say("  %-30s -> %s\n", header, rendered)
		}

		if !mapping.Complete() {
			p.say("%s\n", WarningStyle.Render("Mapping is incomplete: date, description and an amount column are required."))
		} else if p.AutoConfirm {
			return mapping, nil
		}

		choice, err := p.promptChoice(ctx, "Accept mapping?", []string{"y", "e", "n"})
		if err != nil {
			return nil, err
		}
		switch choice {
		case "y":
			if mapping.Complete() {
				return mapping, nil
			}
			p.say("%s\n", ErrorStyle.Render("Cannot accept an incomplete mapping."))
		case "n":
			return nil, fmt.Errorf("column mapping rejected")
		case "e":
			if err := p.editMapping(ctx, headers, mapping); err != nil {
				return nil, err
			}
		}
	}
}

func (p *Prompter) editMapping(ctx context.Context, headers []string, mapping model.ColumnMapping) error {
	p.say("Enter column number to reassign (blank to finish):\n")
	for i, header := range headers {
		p.say("  [%d] %s (%s)\n", i+1, header, mapping[header])
	}

	for {
		p.say("%s: ", PromptStyle.Render("Column"))
		line, err := p.readLine(ctx)
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}

		var idx int
		if _, err := fmt.Sscanf(line, "%d", &idx); err != nil || idx < 1 || idx > len(headers) {
			p.say("%s\n", ErrorStyle.Render("Invalid column number."))
			continue
		}

		p.say("Field (date, description, amount, amount_debit, amount_credit, type, category, reference, skip): ")
		fieldLine, err := p.readLine(ctx)
		if err != nil {
			return err
		}
		field := model.Field(strings.ToLower(strings.TrimSpace(fieldLine)))
		if !model.ValidField(field) {
			p.say("%s\n", ErrorStyle.Render("Unknown field."))
			continue
		}
		mapping[headers[idx-1]] = field
	}
}

// ConfirmReimport warns that this exact file was imported before.
func (p *Prompter) ConfirmReimport(ctx context.Context, prior *model.ImportRun) (bool, error) {
	p.say("\n%s\n", WarningStyle.Render("This file was already imported."))
	p.say("  Previous import: %s (%s)\n", prior.Reference, prior.CreatedAt.Format("2006-01-02 15:04"))
	p.say("  Created %d, updated %d, skipped %d\n\n", prior.CreatedCount, prior.UpdatedCount, prior.SkippedCount)

	if p.AutoConfirm {
		return true, nil
	}
	choice, err := p.promptChoice(ctx, "Import again anyway?", []string{"n", "y"})
	if err != nil {
		return false, err
	}
	return choice == "y", nil
}

// ReviewTransactions walks the user through every flagged duplicate
// and summarizes new rows, then asks for final confirmation.
// Returning false cancels the import before anything is committed.
func (p *Prompter) ReviewTransactions(ctx context.Context, items []*model.ReviewItem) (bool, error) {
	newCount := 0
	for _, item := range items {
		if item.Result.IsNewTransaction {
			newCount++
		}
	}

	p.say("\n%s\n", TitleStyle.Render(fmt.Sprintf("Review: %d transactions (%d new, %d flagged)",
		len(items), newCount, len(items)-newCount)))

	for i, item := range items {
		if item.Result.IsNewTransaction {
			continue
		}
		if err := p.reviewDuplicate(ctx, i, item); err != nil {
			return false, err
		}
	}

	p.say("\n%s\n", p.summarize(items))
	if p.AutoConfirm {
		return true, nil
	}

	choice, err := p.promptChoice(ctx, "Commit these actions?", []string{"y", "n"})
	if err != nil {
		return false, err
	}
	return choice == "y", nil
}

func (p *Prompter) reviewDuplicate(ctx context.Context, index int, item *model.ReviewItem) error {
	best := item.Result.BestMatch()

	var b strings.Builder
	fmt.Fprintf(&b, "Row %d: %s  %s  %s\n", index+1,
		item.Parsed.Date.Format("2006-01-02"),
		item.Parsed.Amount.StringFixed(2),
		item.Parsed.Description)
	fmt.Fprintf(&b, "Matches existing: %s  %s  %s\n",
		best.Existing.Date.Format("2006-01-02"),
		best.Existing.Amount.StringFixed(2),
		best.Existing.Description)
	fmt.Fprintf(&b, "Confidence: %s (score %d)\n", best.Confidence, best.Score)
	for _, reason := range best.MatchReasons {
		fmt.Fprintf(&b, "  - %s\n", reason)
	}
	if extra := len(item.Result.DuplicateMatches) - 1; extra > 0 {
		fmt.Fprintf(&b, "  (+%d weaker match(es))\n", extra)
	}
	p.say("%s\n", RenderBox("Possible duplicate", b.String()))

	if p.AutoConfirm {
		return nil // keep the safe default action
	}

	p.say("  [s] Skip (default)  [i] Import anyway  [u] Update existing  [f] Force import\n")
	choice, err := p.promptChoice(ctx, "Action", []string{"s", "i", "u", "f"})
	if err != nil {
		return err
	}

	actions := map[string]model.ReviewAction{
		"s": model.ActionSkip,
		"i": model.ActionImport,
		"u": model.ActionUpdate,
		"f": model.ActionForce,
	}
	return item.SetAction(actions[choice])
}

func (p *Prompter) summarize(items []*model.ReviewItem) string {
	counts := map[model.ReviewAction]int{}
	for _, item := range items {
		counts[item.Action]++
	}
	return fmt.Sprintf("Planned: %s import, %s update, %s skip, %s force",
		BoldStyle.Render(fmt.Sprintf("%d", counts[model.ActionImport])),
		BoldStyle.Render(fmt.Sprintf("%d", counts[model.ActionUpdate])),
		BoldStyle.Render(fmt.Sprintf("%d", counts[model.ActionSkip])),
		BoldStyle.Render(fmt.Sprintf("%d", counts[model.ActionForce])))
}
