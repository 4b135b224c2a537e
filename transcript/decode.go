package transcript

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

var rawMessageType = reflect.TypeOf(json.RawMessage(nil))

// rawMessageHook re-marshals arbitrary decoded values into json.RawMessage
// fields. Without it mapstructure cannot populate Step.HandlerResponse from
// a generic row, and the key-presence signal would be lost.
func rawMessageHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != rawMessageType || from == rawMessageType {
		return data, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("re-encode value for raw field: %w", err)
	}
	return json.RawMessage(b), nil
}

// Decode converts one generic transcript row, as handed over by the
// execution harness, into a typed Transcript. Unknown keys on the row are
// ignored; the harness records more than this layer consumes.
//
// Note: a handler_response key holding an explicit nil is indistinguishable
// from an absent key on a generic row. Records arriving as JSON bytes keep
// the distinction; use Parse for those.
func Decode(row map[string]any) (*Transcript, error) {
	var t Transcript
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &t,
		DecodeHook: rawMessageHook,
	})
	if err != nil {
		return nil, fmt.Errorf("build transcript decoder: %w", err)
	}
	if err := dec.Decode(row); err != nil {
		return nil, fmt.Errorf("decode transcript row: %w", err)
	}
	return &t, nil
}

// Parse unmarshals a JSON-encoded transcript record, validates it against
// the record schema, and returns the typed form.
func Parse(data []byte) (*Transcript, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse transcript record: %w", err)
	}
	if err := ValidateRecord(raw); err != nil {
		return nil, err
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode transcript record: %w", err)
	}

	slog.Debug("parsed transcript",
		"turns", len(t.TurnResponses),
		"groundTruthEntries", len(t.GroundTruthLog),
		"errorTags", len(t.ErrorTypes))

	return &t, nil
}
