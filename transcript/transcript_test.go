package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAPIStateEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b APIState
		want bool
	}{
		{
			name: "identical",
			a:    APIState{ClassName: "MathAPI", State: map[string]any{"value": 3.0}},
			b:    APIState{ClassName: "MathAPI", State: map[string]any{"value": 3.0}},
			want: true,
		},
		{
			name: "different class name",
			a:    APIState{ClassName: "MathAPI"},
			b:    APIState{ClassName: "TicketAPI"},
			want: false,
		},
		{
			name: "single field diff is a full mismatch",
			a:    APIState{ClassName: "TicketAPI", State: map[string]any{"open": 1.0, "closed": 2.0}},
			b:    APIState{ClassName: "TicketAPI", State: map[string]any{"open": 1.0, "closed": 3.0}},
			want: false,
		},
		{
			name: "nested state compared deeply",
			a:    APIState{ClassName: "GorillaFileSystem", State: map[string]any{"root": map[string]any{"files": []any{"a.txt"}}}},
			b:    APIState{ClassName: "GorillaFileSystem", State: map[string]any{"root": map[string]any{"files": []any{"a.txt"}}}},
			want: true,
		},
		{
			name: "nested state diff",
			a:    APIState{ClassName: "GorillaFileSystem", State: map[string]any{"root": map[string]any{"files": []any{"a.txt"}}}},
			b:    APIState{ClassName: "GorillaFileSystem", State: map[string]any{"root": map[string]any{"files": []any{"b.txt"}}}},
			want: false,
		},
		{
			name: "nil state equals nil state",
			a:    APIState{ClassName: "TradingBot"},
			b:    APIState{ClassName: "TradingBot"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.a.Equal(tt.b))
			require.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestStepAccessors(t *testing.T) {
	t.Run("no handler response means no function call", func(t *testing.T) {
		s := Step{}
		require.False(t, s.CalledFunction())
	})

	t.Run("handler response marks a function call", func(t *testing.T) {
		s := Step{HandlerResponse: []byte(`{"status":"ok"}`)}
		require.True(t, s.CalledFunction())
	})

	t.Run("explicit null handler response still marks a function call", func(t *testing.T) {
		s := Step{HandlerResponse: []byte(`null`)}
		require.True(t, s.CalledFunction())
	})

	t.Run("assistant content present", func(t *testing.T) {
		s := Step{AssistantResponse: &AssistantResponse{Content: strPtr("done")}}
		msg, ok := s.AssistantContent()
		require.True(t, ok)
		require.Equal(t, "done", msg)
	})

	t.Run("nil assistant response", func(t *testing.T) {
		s := Step{}
		_, ok := s.AssistantContent()
		require.False(t, ok)
	})

	t.Run("null assistant content", func(t *testing.T) {
		s := Step{AssistantResponse: &AssistantResponse{}}
		_, ok := s.AssistantContent()
		require.False(t, ok)
	})
}

func TestTurnClosingMessage(t *testing.T) {
	t.Run("uses the final step", func(t *testing.T) {
		turn := Turn{StepResponses: []Step{
			{AssistantResponse: &AssistantResponse{Content: strPtr("first")}},
			{AssistantResponse: &AssistantResponse{Content: strPtr("last")}},
		}}
		msg, ok := turn.ClosingMessage()
		require.True(t, ok)
		require.Equal(t, "last", msg)
	})

	t.Run("zero-step turn has no closing message", func(t *testing.T) {
		turn := Turn{}
		_, ok := turn.ClosingMessage()
		require.False(t, ok)
	})
}

func TestTranscriptAccessors(t *testing.T) {
	t.Run("error tags", func(t *testing.T) {
		tr := Transcript{ErrorTypes: []string{TagForceTerminated}}
		require.True(t, tr.HasErrorTag(TagForceTerminated))
		require.False(t, tr.HasErrorTag(TagStateMismatch))
		require.False(t, tr.HasErrorTag(TagResponseMismatch))
	})

	t.Run("ground truth alignment", func(t *testing.T) {
		tr := Transcript{
			TurnResponses:  []Turn{{}, {}},
			GroundTruthLog: []StateSnapshot{{}, {}, {}},
		}
		require.True(t, tr.GroundTruthAligned())

		tr.GroundTruthLog = tr.GroundTruthLog[:2]
		require.False(t, tr.GroundTruthAligned())
	})

	t.Run("empty transcript is misaligned", func(t *testing.T) {
		tr := Transcript{}
		require.False(t, tr.GroundTruthAligned())
	})
}
