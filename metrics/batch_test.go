package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/statebench/multiturn/transcript"
)

func TestEvaluateAll(t *testing.T) {
	t.Run("results arrive in input order", func(t *testing.T) {
		ts := []*transcript.Transcript{
			stateTranscript(true),
			stateTranscript(false),
			stateTranscript(true, true, false),
		}

		summaries, err := EvaluateAll(context.Background(), ts, 2)
		require.NoError(t, err)
		require.Len(t, summaries, 3)

		require.Equal(t, 1.0, summaries[0].AverageTurnSuccessRate)
		require.Equal(t, 0.0, summaries[1].AverageTurnSuccessRate)
		require.Equal(t, 2.0/3.0, summaries[2].AverageTurnSuccessRate)
	})

	t.Run("non-positive worker count falls back to the default", func(t *testing.T) {
		summaries, err := EvaluateAll(context.Background(), []*transcript.Transcript{stateTranscript(true)}, 0)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
	})

	t.Run("empty batch", func(t *testing.T) {
		summaries, err := EvaluateAll(context.Background(), nil, 4)
		require.NoError(t, err)
		require.Empty(t, summaries)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := EvaluateAll(ctx, []*transcript.Transcript{stateTranscript(true)}, 1)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("batch matches sequential evaluation", func(t *testing.T) {
		ts := []*transcript.Transcript{
			stateTranscript(false, true, true),
			stateTranscript(true, false),
		}
		// Populate steps so no summary field is NaN; NaN defeats the deep
		// equality below.
		for _, tr := range ts {
			for i := range tr.TurnResponses {
				tr.TurnResponses[i].NumSteps = 2
				tr.TurnResponses[i].StepResponses = []transcript.Step{
					toolStep(1, `{"result": 1}`),
					msgStep("Done."),
				}
			}
		}
		summaries, err := EvaluateAll(context.Background(), ts, 3)
		require.NoError(t, err)
		for i, tr := range ts {
			require.Equal(t, Summarize(tr), summaries[i])
		}
	})
}
