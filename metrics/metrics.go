// Package metrics computes evaluation metrics over recorded multi-turn
// agent transcripts: effort (steps, tool calls), failure signals
// (apologetic language, tool errors, harness error tags), and
// state-consistency correctness against the ground-truth log.
//
// Every metric is a side-effect-free reduction over one transcript. The
// package-level functions use the default phrase and API tables; build an
// Evaluator to run the same metrics against custom tables.
//
// Empty-input policy: every rate metric returns NaN for a transcript with
// zero turns. No metric panics on well-typed input.
package metrics

import (
	"encoding/json"
	"strings"

	"github.com/statebench/multiturn/transcript"
)

// ApologeticPhrases are the case-insensitive substrings whose presence in a
// turn's closing message marks the turn apologetic. Treated as immutable.
var ApologeticPhrases = []string{
	"sorry",
	"apologize",
	"cannot",
	"could not",
	"couldn't",
	"can't",
	"unable",
	"unfortunately",
	"not successful",
	"lacks",
}

// TrackedAPIs are the simulated API domains whose state is compared against
// ground truth. Treated as immutable.
var TrackedAPIs = []string{
	"GorillaFileSystem",
	"MathAPI",
	"MessageAPI",
	"TwitterAPI",
	"TicketAPI",
	"TradingBot",
	"TravelAPI",
	"VehicleControlAPI",
}

// Evaluator computes transcript metrics against a fixed phrase table and
// tracked-API table. The zero value is not usable; construct with New.
type Evaluator struct {
	phrases []string // pre-lowercased
	apis    []string
}

// New returns an Evaluator using the given apologetic phrase table and
// tracked-API table. A nil slice falls back to the package default.
func New(phrases, apis []string) *Evaluator {
	if phrases == nil {
		phrases = ApologeticPhrases
	}
	if apis == nil {
		apis = TrackedAPIs
	}
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	// Copy so later mutation of the caller's slice cannot reach the
	// evaluator; the phrase table already gets its own backing via lowering.
	return &Evaluator{phrases: lowered, apis: append([]string(nil), apis...)}
}

var defaultEvaluator = New(nil, nil)

// AverageNumSteps returns the mean number of steps per turn.
// NaN for a transcript with zero turns.
func (e *Evaluator) AverageNumSteps(t *transcript.Transcript) float64 {
	steps := make([]float64, 0, len(t.TurnResponses))
	for _, turn := range t.TurnResponses {
		steps = append(steps, float64(turn.NumSteps))
	}
	return mean(steps)
}

// AverageNumTools returns the mean over turns of the per-turn mean tool
// count, ignoring each turn's final step (the closing message carries no
// new tool calls). Turns without a qualifying step contribute no sample;
// NaN when no turn qualifies.
func (e *Evaluator) AverageNumTools(t *transcript.Transcript) float64 {
	var perTurn []float64
	for _, turn := range t.TurnResponses {
		if len(turn.StepResponses) < 2 {
			continue
		}
		counts := make([]float64, 0, len(turn.StepResponses)-1)
		for _, step := range turn.StepResponses[:len(turn.StepResponses)-1] {
			counts = append(counts, float64(step.NumTools))
		}
		perTurn = append(perTurn, mean(counts))
	}
	return mean(perTurn)
}

// turnApologetic reports whether a turn's closing message contains any
// apologetic phrase. A turn whose closing message is absent or null also
// counts as apologetic.
func (e *Evaluator) turnApologetic(turn *transcript.Turn) bool {
	msg, ok := turn.ClosingMessage()
	if !ok {
		return true
	}
	lower := strings.ToLower(msg)
	for _, phrase := range e.phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Apologetic reports whether any turn closed with an apologetic message.
// Short-circuits on the first match.
func (e *Evaluator) Apologetic(t *transcript.Transcript) bool {
	for i := range t.TurnResponses {
		if e.turnApologetic(&t.TurnResponses[i]) {
			return true
		}
	}
	return false
}

// ApologeticRate returns the proportion of turns that closed with an
// apologetic message. NaN for a transcript with zero turns.
func (e *Evaluator) ApologeticRate(t *transcript.Transcript) float64 {
	if len(t.TurnResponses) == 0 {
		return nan()
	}
	count := 0
	for i := range t.TurnResponses {
		if e.turnApologetic(&t.TurnResponses[i]) {
			count++
		}
	}
	return float64(count) / float64(len(t.TurnResponses))
}

// NoFuncCallRate counts, within each turn, the steps preceding the first
// step that issued a function call, and divides the transcript-wide step
// count by the number of turns. The numerator is step-level while the
// denominator is turn-level, so the value can exceed 1.
// NaN for a transcript with zero turns.
func (e *Evaluator) NoFuncCallRate(t *transcript.Transcript) float64 {
	if len(t.TurnResponses) == 0 {
		return nan()
	}
	count := 0
	for _, turn := range t.TurnResponses {
		for i := range turn.StepResponses {
			if turn.StepResponses[i].CalledFunction() {
				break
			}
			count++
		}
	}
	return float64(count) / float64(len(t.TurnResponses))
}

// toolResponseHasError reports whether a tool response content decodes to a
// JSON object carrying an "error" key. Content that is not valid JSON, or
// not an object, carries no error signal; the lenient skip is deliberate.
func toolResponseHasError(tr *transcript.ToolResponse) bool {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(tr.Content), &decoded); err != nil {
		return false
	}
	_, found := decoded["error"]
	return found
}

// NumToolErrors returns the total count of tool responses reporting an
// error, across all turns and steps.
func (e *Evaluator) NumToolErrors(t *transcript.Transcript) int {
	count := 0
	for _, turn := range t.TurnResponses {
		for _, step := range turn.StepResponses {
			for i := range step.ToolResponses {
				if toolResponseHasError(&step.ToolResponses[i]) {
					count++
				}
			}
		}
	}
	return count
}

// NumTurnsWithErrors returns the number of turns containing at least one
// tool response reporting an error.
func (e *Evaluator) NumTurnsWithErrors(t *transcript.Transcript) int {
	count := 0
	for _, turn := range t.TurnResponses {
		if turnHasToolError(&turn) {
			count++
		}
	}
	return count
}

func turnHasToolError(turn *transcript.Turn) bool {
	for _, step := range turn.StepResponses {
		for i := range step.ToolResponses {
			if toolResponseHasError(&step.ToolResponses[i]) {
				return true
			}
		}
	}
	return false
}

// ForceTerminated reports whether the harness force-terminated the run.
func (e *Evaluator) ForceTerminated(t *transcript.Transcript) bool {
	return t.HasErrorTag(transcript.TagForceTerminated)
}

// StateInconsistent reports whether the harness flagged a mismatch between
// predicted and ground-truth instance state.
func (e *Evaluator) StateInconsistent(t *transcript.Transcript) bool {
	return t.HasErrorTag(transcript.TagStateMismatch)
}

// ResponseInconsistent reports whether the harness flagged a mismatch in
// execution responses.
func (e *Evaluator) ResponseInconsistent(t *transcript.Transcript) bool {
	return t.HasErrorTag(transcript.TagResponseMismatch)
}

// Package-level variants of every metric, computed with the default phrase
// and tracked-API tables.

func AverageNumSteps(t *transcript.Transcript) float64 { return defaultEvaluator.AverageNumSteps(t) }
func AverageNumTools(t *transcript.Transcript) float64 { return defaultEvaluator.AverageNumTools(t) }
func Apologetic(t *transcript.Transcript) bool         { return defaultEvaluator.Apologetic(t) }
func ApologeticRate(t *transcript.Transcript) float64  { return defaultEvaluator.ApologeticRate(t) }
func NoFuncCallRate(t *transcript.Transcript) float64  { return defaultEvaluator.NoFuncCallRate(t) }
func NumToolErrors(t *transcript.Transcript) int       { return defaultEvaluator.NumToolErrors(t) }
func NumTurnsWithErrors(t *transcript.Transcript) int {
	return defaultEvaluator.NumTurnsWithErrors(t)
}
func ForceTerminated(t *transcript.Transcript) bool { return defaultEvaluator.ForceTerminated(t) }
func StateInconsistent(t *transcript.Transcript) bool {
	return defaultEvaluator.StateInconsistent(t)
}
func ResponseInconsistent(t *transcript.Transcript) bool {
	return defaultEvaluator.ResponseInconsistent(t)
}
