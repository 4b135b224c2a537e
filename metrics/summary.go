package metrics

import "github.com/statebench/multiturn/transcript"

// Summary holds every metric for one transcript, ready for downstream
// aggregation. Rate fields follow the package empty-input policy and may be
// NaN; TaskProcessRate may be +Inf.
type Summary struct {
	AverageNumSteps            float64                   `json:"average_num_steps"`
	AverageNumTools            float64                   `json:"average_num_tools"`
	Apologetic                 bool                      `json:"apologetic"`
	ApologeticRate             float64                   `json:"apologetic_rate"`
	NoFuncCallRate             float64                   `json:"no_func_call_rate"`
	NumToolErrors              int                       `json:"num_tool_errors"`
	NumTurnsWithErrors         int                       `json:"num_turns_with_errors"`
	APIStateMismatch           map[string]MismatchStatus `json:"api_state_mismatch"`
	ForceTerminated            bool                      `json:"force_terminated"`
	StateInconsistent          bool                      `json:"state_inconsistent"`
	ResponseInconsistent       bool                      `json:"response_inconsistent"`
	TaskProcessRate            float64                   `json:"task_process_rate"`
	AverageTurnSuccessRate     float64                   `json:"average_turn_success_rate"`
	SoftAverageTurnSuccessRate float64                   `json:"soft_average_turn_success_rate"`
}

// Summarize computes every metric for one transcript.
func (e *Evaluator) Summarize(t *transcript.Transcript) *Summary {
	return &Summary{
		AverageNumSteps:            e.AverageNumSteps(t),
		AverageNumTools:            e.AverageNumTools(t),
		Apologetic:                 e.Apologetic(t),
		ApologeticRate:             e.ApologeticRate(t),
		NoFuncCallRate:             e.NoFuncCallRate(t),
		NumToolErrors:              e.NumToolErrors(t),
		NumTurnsWithErrors:         e.NumTurnsWithErrors(t),
		APIStateMismatch:           e.APIStateMismatch(t),
		ForceTerminated:            e.ForceTerminated(t),
		StateInconsistent:          e.StateInconsistent(t),
		ResponseInconsistent:       e.ResponseInconsistent(t),
		TaskProcessRate:            e.TaskProcessRate(t),
		AverageTurnSuccessRate:     e.AverageTurnSuccessRate(t),
		SoftAverageTurnSuccessRate: e.SoftAverageTurnSuccessRate(t),
	}
}

// Summarize computes every metric with the default tables.
func Summarize(t *transcript.Transcript) *Summary {
	return defaultEvaluator.Summarize(t)
}
