package transcript

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// recordSchema is the JSON Schema every raw transcript record must satisfy
// before decoding. It pins the shape described by the record contract:
// per-turn step responses, end-of-turn snapshots, and the ground-truth log.
const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["turn_responses", "ground_truth_log"],
  "properties": {
    "turn_responses": {
      "type": "array",
      "items": {"$ref": "#/$defs/turn"}
    },
    "ground_truth_log": {
      "type": "array",
      "items": {"$ref": "#/$defs/snapshot"}
    },
    "error_type": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "$defs": {
    "turn": {
      "type": "object",
      "required": ["num_steps", "step_responses", "end_of_turn_state"],
      "properties": {
        "num_steps": {"type": "integer", "minimum": 0},
        "step_responses": {
          "type": "array",
          "items": {"$ref": "#/$defs/step"}
        },
        "end_of_turn_state": {"$ref": "#/$defs/snapshot"}
      }
    },
    "step": {
      "type": "object",
      "properties": {
        "num_tools": {"type": "integer", "minimum": 0},
        "tool_response": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["content"],
            "properties": {"content": {"type": "string"}}
          }
        },
        "assistant_response": {
          "type": ["object", "null"],
          "properties": {"content": {"type": ["string", "null"]}}
        }
      }
    },
    "snapshot": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["class_name"],
        "properties": {
          "class_name": {"type": "string"},
          "state": {"type": ["object", "null"]}
        }
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(recordSchema))
	if err != nil {
		return nil, fmt.Errorf("parse transcript record schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("transcript.json", doc); err != nil {
		return nil, fmt.Errorf("add transcript schema resource: %w", err)
	}

	schema, err := compiler.Compile("transcript.json")
	if err != nil {
		return nil, fmt.Errorf("compile transcript record schema: %w", err)
	}
	return schema, nil
})

// ValidateRecord checks an already-unmarshaled raw record (the result of
// json.Unmarshal into any) against the transcript record schema.
func ValidateRecord(v any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("transcript record failed schema validation: %w", err)
	}
	return nil
}
