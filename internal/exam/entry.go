package exam

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
)

// ErrInvalidEntry is returned when an exam entry fails validation.
type ErrInvalidEntry struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidEntry) Error() string {
	return fmt.Sprintf("invalid exam entry: %v", e.Err)
}

func (e *ErrInvalidEntry) Unwrap() error {
	return e.Err
}

const entrySchemaURL = "schema://exam-entry.json"

// entrySchema describes an exam entry as submitted by a client.
var entrySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{"type": "string"},
		"examDay": map[string]any{
			"type":    "string",
			"pattern": `^[0-9]{4}-[0-9]{2}-[0-9]{2}`,
		},
		"lessonNumberPair": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "integer", "minimum": 1},
			"minItems": 2,
			"maxItems": 2,
		},
		"examStats": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"correct":      map[string]any{"type": "integer", "minimum": 0},
				"total":        map[string]any{"type": "integer", "minimum": 0},
				"score":        map[string]any{"type": "number", "minimum": 0},
				"durationSecs": map[string]any{"type": "integer", "minimum": 0},
			},
		},
		"recordedAt": map[string]any{"type": "string"},
	},
	"required": []any{"examDay", "lessonNumberPair"},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func entryValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler expects decoded JSON values, not Go literals.
		defBytes, err := json.Marshal(entrySchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(entrySchemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(entrySchemaURL)
	})
	return compiled, compileErr
}

// ValidateEntryJSON checks raw against the exam entry schema.
// Returns *ErrInvalidEntry on failure.
func ValidateEntryJSON(raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidEntry{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := entryValidator()
	if err != nil {
		return &ErrInvalidEntry{Content: raw, Err: fmt.Errorf("compile schema: %w", err)}
	}
	if err := schema.Validate(parsed); err != nil {
		return &ErrInvalidEntry{Content: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

// ParseEntry validates raw and decodes it into an ExamRecord.
func ParseEntry(raw json.RawMessage) (progress.ExamRecord, error) {
	if err := ValidateEntryJSON(raw); err != nil {
		return progress.ExamRecord{}, err
	}
	var rec progress.ExamRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return progress.ExamRecord{}, &ErrInvalidEntry{Content: raw, Err: err}
	}
	return rec, nil
}
