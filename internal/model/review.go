package model

import "fmt"

// ReviewAction is the per-row decision a reviewer makes before commit.
type ReviewAction string

// Review actions.
const (
	ActionSkip   ReviewAction = "skip"
	ActionImport ReviewAction = "import"
	ActionUpdate ReviewAction = "update"
	ActionForce  ReviewAction = "force"
)

// ReviewItem pairs a parsed row with its detection result and the
// reviewer's chosen action. Created with a default action when review
// opens, mutated by the reviewer, consumed once at commit.
type ReviewItem struct {
	Parsed ParsedTransaction
	Result DuplicateCheckResult
	Action ReviewAction
}

// DefaultAction returns the safe initial action for a detection
// result: import for new transactions, skip for flagged duplicates.
// Never defaults to overwriting existing data.
func DefaultAction(result DuplicateCheckResult) ReviewAction {
	if result.IsNewTransaction {
		return ActionImport
	}
	return ActionSkip
}

// SetAction applies a reviewer override. Update is only legal when a
// match exists; choosing it without one is a caller bug.
func (i *ReviewItem) SetAction(action ReviewAction) error {
	switch action {
	case ActionSkip, ActionImport, ActionForce:
	case ActionUpdate:
		if i.Result.BestMatch() == nil {
			return fmt.Errorf("update requires a duplicate match")
		}
	default:
		return fmt.Errorf("invalid review action: %q", action)
	}
	i.Action = action
	return nil
}
