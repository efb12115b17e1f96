package model

// MatchConfidence classifies how certain a duplicate match is.
type MatchConfidence string

// Confidence levels, derived from the numeric score.
const (
	ConfidenceExact    MatchConfidence = "exact"
	ConfidenceHigh     MatchConfidence = "high"
	ConfidencePossible MatchConfidence = "possible"
)

// Score thresholds for confidence classification.
const (
	ExactThreshold = 90
	HighThreshold  = 70
	MaxScore       = 100
)

// ConfidenceForScore maps a score to its confidence level. Scores of
// zero carry no confidence; callers must not build a match from them.
func ConfidenceForScore(score int) MatchConfidence {
	switch {
	case score >= ExactThreshold:
		return ConfidenceExact
	case score >= HighThreshold:
		return ConfidenceHigh
	default:
		return ConfidencePossible
	}
}

// DuplicateMatch pairs an imported row with one existing candidate.
type DuplicateMatch struct {
	Existing     Transaction
	Confidence   MatchConfidence
	MatchReasons []string
	Score        int
}

// DuplicateCheckResult is the detection outcome for one parsed
// transaction. Matches are ordered highest score first.
type DuplicateCheckResult struct {
	DuplicateMatches []DuplicateMatch
	IsNewTransaction bool
}

// BestMatch returns the highest-scoring match, or nil for a new
// transaction.
func (r *DuplicateCheckResult) BestMatch() *DuplicateMatch {
	if len(r.DuplicateMatches) == 0 {
		return nil
	}
	return &r.DuplicateMatches[0]
}

// NewCheckResult builds a result from an ordered match list, keeping
// IsNewTransaction consistent with match emptiness.
func NewCheckResult(matches []DuplicateMatch) DuplicateCheckResult {
	return DuplicateCheckResult{
		DuplicateMatches: matches,
		IsNewTransaction: len(matches) == 0,
	}
}
