// Package transcript defines the typed schema for recorded multi-turn agent
// conversations and the ingestion-boundary validation and decoding that
// turns raw records into it.
//
// A transcript is produced by an external execution/simulation harness: one
// record per conversation, holding the per-turn step responses, the
// end-of-turn snapshots of simulated API state, and the ground-truth state
// log those snapshots are compared against. Nothing in this package mutates
// a transcript after it is built.
package transcript

import (
	"encoding/json"

	"github.com/google/go-cmp/cmp"
)

// Error tags attached to a transcript by the simulation harness when a run
// is flagged. Absence of a tag means that failure mode did not occur.
const (
	TagForceTerminated  = "multi_turn:force_terminated"
	TagStateMismatch    = "multi_turn:instance_state_mismatch"
	TagResponseMismatch = "multi_turn:execution_response_mismatch"
)

// Transcript is one recorded conversation.
//
// GroundTruthLog holds one snapshot per turn boundary: index 0 is the
// pre-conversation state and index i+1 is the state expected after turn i,
// so a well-formed record satisfies
// len(GroundTruthLog) == len(TurnResponses)+1.
type Transcript struct {
	TurnResponses  []Turn          `json:"turn_responses" mapstructure:"turn_responses"`
	GroundTruthLog []StateSnapshot `json:"ground_truth_log" mapstructure:"ground_truth_log"`
	ErrorTypes     []string        `json:"error_type,omitempty" mapstructure:"error_type"`
}

// Turn is one exchange cycle: a sequence of steps ending with a snapshot of
// the simulated API state.
type Turn struct {
	NumSteps       int           `json:"num_steps" mapstructure:"num_steps"`
	StepResponses  []Step        `json:"step_responses" mapstructure:"step_responses"`
	EndOfTurnState StateSnapshot `json:"end_of_turn_state" mapstructure:"end_of_turn_state"`
}

// Step is one model action within a turn: either a tool invocation (with
// tool responses and a handler response) or a closing natural-language
// reply (the final step of the turn).
type Step struct {
	NumTools      int            `json:"num_tools" mapstructure:"num_tools"`
	ToolResponses []ToolResponse `json:"tool_response,omitempty" mapstructure:"tool_response"`

	// HandlerResponse holds the raw handler payload. Its presence — even an
	// explicit null — signals that this step issued a function call; the
	// content itself is never interpreted by the metric layer.
	HandlerResponse json.RawMessage `json:"handler_response,omitempty" mapstructure:"handler_response"`

	// AssistantResponse is set on the final step of a turn and carries the
	// model's closing natural-language message.
	AssistantResponse *AssistantResponse `json:"assistant_response,omitempty" mapstructure:"assistant_response"`
}

// ToolResponse is one tool result. Content is a JSON-encoded string which
// may encode an object with an "error" key, or be malformed entirely.
type ToolResponse struct {
	Content string `json:"content" mapstructure:"content"`
}

// AssistantResponse is the model's closing message for a turn. Content is a
// pointer so a null message stays distinguishable from an empty one.
type AssistantResponse struct {
	Content *string `json:"content" mapstructure:"content"`
}

// StateSnapshot is an ordered sequence of per-API state records. Predicted
// and ground-truth snapshots are compared positionally.
type StateSnapshot []APIState

// APIState is the state of one simulated API, identified by ClassName. The
// state content is opaque to this layer; only structural equality matters.
type APIState struct {
	ClassName string         `json:"class_name" mapstructure:"class_name"`
	State     map[string]any `json:"state,omitempty" mapstructure:"state"`
}

// Equal reports structural equality with other: same class name and deeply
// equal state content. A mismatch on any field is a full mismatch.
func (a APIState) Equal(other APIState) bool {
	return a.ClassName == other.ClassName && cmp.Equal(a.State, other.State)
}

// CalledFunction reports whether this step issued a function call, i.e.
// whether the raw record carried a handler_response key at all.
func (s *Step) CalledFunction() bool {
	return len(s.HandlerResponse) > 0
}

// AssistantContent returns the step's closing message. ok is false when the
// step has no assistant response or its content is null.
func (s *Step) AssistantContent() (string, bool) {
	if s.AssistantResponse == nil || s.AssistantResponse.Content == nil {
		return "", false
	}
	return *s.AssistantResponse.Content, true
}

// ClosingMessage returns the assistant content of the turn's final step.
// ok is false for a zero-step turn or when the final step carries no
// message.
func (t *Turn) ClosingMessage() (string, bool) {
	if len(t.StepResponses) == 0 {
		return "", false
	}
	return t.StepResponses[len(t.StepResponses)-1].AssistantContent()
}

// HasErrorTag reports whether the harness flagged this transcript with tag.
func (t *Transcript) HasErrorTag(tag string) bool {
	for _, et := range t.ErrorTypes {
		if et == tag {
			return true
		}
	}
	return false
}

// GroundTruthAligned reports whether the ground-truth log has exactly one
// snapshot per turn boundary. A violation is not an error; the metric layer
// degrades it to a worst-case mismatch signal.
func (t *Transcript) GroundTruthAligned() bool {
	return len(t.GroundTruthLog) == len(t.TurnResponses)+1
}
