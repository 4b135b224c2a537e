package metrics

import (
	"fmt"
	"math"

	"github.com/statebench/multiturn/transcript"
)

// MismatchStatus classifies one tracked API's state consistency across a
// whole transcript.
type MismatchStatus int

const (
	// StatusNotApplicable means the API never appeared in any end-of-turn
	// snapshot of the transcript.
	StatusNotApplicable MismatchStatus = iota
	// StatusConsistent means the API appeared and matched ground truth on
	// every compared turn.
	StatusConsistent
	// StatusMismatch means the API diverged from ground truth at least once.
	StatusMismatch
)

func (s MismatchStatus) String() string {
	switch s {
	case StatusNotApplicable:
		return "not_applicable"
	case StatusConsistent:
		return "consistent"
	case StatusMismatch:
		return "mismatch"
	default:
		return fmt.Sprintf("MismatchStatus(%d)", int(s))
	}
}

// MarshalJSON encodes the status as its string form.
func (s MismatchStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// APIStateMismatch classifies every tracked API as not applicable (never
// observed in this transcript), consistent, or mismatched. Once an API is
// marked mismatched it stays marked. When the ground-truth log is
// misaligned with the turn count, every observed API is marked mismatched.
//
// Snapshot entries whose class name is not in the tracked-API table are
// ignored.
func (e *Evaluator) APIStateMismatch(t *transcript.Transcript) map[string]MismatchStatus {
	result := make(map[string]MismatchStatus, len(e.apis))
	tracked := make(map[string]bool, len(e.apis))
	for _, api := range e.apis {
		result[api] = StatusNotApplicable
		tracked[api] = true
	}

	for _, turn := range t.TurnResponses {
		for _, st := range turn.EndOfTurnState {
			if tracked[st.ClassName] && result[st.ClassName] == StatusNotApplicable {
				result[st.ClassName] = StatusConsistent
			}
		}
	}

	if !t.GroundTruthAligned() {
		for api, status := range result {
			if status == StatusConsistent {
				result[api] = StatusMismatch
			}
		}
		return result
	}

	for turnIdx, turn := range t.TurnResponses {
		truth := t.GroundTruthLog[turnIdx+1]
		n := min(len(truth), len(turn.EndOfTurnState))
		for i := 0; i < n; i++ {
			if !truth[i].Equal(turn.EndOfTurnState[i]) && tracked[truth[i].ClassName] {
				result[truth[i].ClassName] = StatusMismatch
			}
		}
	}
	return result
}

// turnStateMatches reports whether every positional pair of predicted and
// ground-truth API states for the given turn is structurally equal. Pairs
// are zipped to the shorter snapshot; surplus entries on either side are
// not compared. A misaligned ground-truth log degrades every turn to a
// mismatch, the same worst-case policy APIStateMismatch applies.
func turnStateMatches(t *transcript.Transcript, turnIdx int) bool {
	if !t.GroundTruthAligned() {
		return false
	}
	predicted := t.TurnResponses[turnIdx].EndOfTurnState
	truth := t.GroundTruthLog[turnIdx+1]
	n := min(len(predicted), len(truth))
	for i := 0; i < n; i++ {
		if !predicted[i].Equal(truth[i]) {
			return false
		}
	}
	return true
}

// TaskProcessRate returns the zero-based index of the earliest turn whose
// end-of-turn state diverges from ground truth, divided by the turn count.
// It measures how early the model goes wrong: 0 means the very first turn
// already diverged. Returns +Inf when no turn ever diverges. A misaligned
// ground-truth log counts every turn as divergent.
func (e *Evaluator) TaskProcessRate(t *transcript.Transcript) float64 {
	for turnIdx := range t.TurnResponses {
		if !turnStateMatches(t, turnIdx) {
			return float64(turnIdx) / float64(len(t.TurnResponses))
		}
	}
	return math.Inf(1)
}

// AverageTurnSuccessRate returns the proportion of turns whose end-of-turn
// state exactly matches ground truth. NaN for a transcript with zero
// turns; 0 when the ground-truth log is misaligned.
func (e *Evaluator) AverageTurnSuccessRate(t *transcript.Transcript) float64 {
	if len(t.TurnResponses) == 0 {
		return nan()
	}
	score := 0
	for turnIdx := range t.TurnResponses {
		if turnStateMatches(t, turnIdx) {
			score++
		}
	}
	return float64(score) / float64(len(t.TurnResponses))
}

// SoftAverageTurnSuccessRate is AverageTurnSuccessRate with recency-aware
// discounting: a correct turn following an incorrect one contributes
// 1 - e^-(turnIdx - lastIncorrectIdx) instead of a full point, approaching
// a full point again as the distance from the last failure grows. Turns
// before the first failure always score a full point.
// NaN for a transcript with zero turns.
func (e *Evaluator) SoftAverageTurnSuccessRate(t *transcript.Transcript) float64 {
	if len(t.TurnResponses) == 0 {
		return nan()
	}
	score := 0.0
	lastIncorrect := math.Inf(1)
	for turnIdx := range t.TurnResponses {
		if !turnStateMatches(t, turnIdx) {
			lastIncorrect = float64(turnIdx)
			continue
		}
		if float64(turnIdx) < lastIncorrect {
			score++
		} else {
			score += 1 - math.Exp(-(float64(turnIdx) - lastIncorrect))
		}
	}
	return score / float64(len(t.TurnResponses))
}

func APIStateMismatch(t *transcript.Transcript) map[string]MismatchStatus {
	return defaultEvaluator.APIStateMismatch(t)
}
func TaskProcessRate(t *transcript.Transcript) float64 { return defaultEvaluator.TaskProcessRate(t) }
func AverageTurnSuccessRate(t *transcript.Transcript) float64 {
	return defaultEvaluator.AverageTurnSuccessRate(t)
}
func SoftAverageTurnSuccessRate(t *transcript.Transcript) float64 {
	return defaultEvaluator.SoftAverageTurnSuccessRate(t)
}
