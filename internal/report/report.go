// Package report parses the evaluation emitted by the final pipeline
// stage into the object carried on a job's complete event.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// schema describes the shape the evaluation stage is instructed to
// emit. Only match_score is mandatory; keyword lists may be absent.
const schema = `{
	"type": "object",
	"required": ["match_score"],
	"properties": {
		"match_score": {"type": "number"},
		"chosen_keywords": {"type": "array", "items": {"type": "string"}},
		"missing_keywords": {"type": "array", "items": {"type": "string"}}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(schema)

// ValidationError reports which report fields failed schema checks.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single validation failure at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("report validation failed:")
	for _, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %s: %s;", err.Field, err.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Clean strips the markdown code fences the model may wrap around the
// JSON, then trims surrounding whitespace.
func Clean(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// Validate checks that text is a JSON object carrying the required
// report fields.
func Validate(text string) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(text))
	if err != nil {
		return fmt.Errorf("report is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// Report is the decoded evaluation for display surfaces. The HTTP API
// forwards the raw JSON untouched; only the CLI decodes it.
type Report struct {
	MatchScore      int      `json:"match_score"`
	ChosenKeywords  []string `json:"chosen_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

// Decode parses an object produced by Parse into a Report. ok is false
// for the degraded error shape and for anything else the schema rejects.
func Decode(raw json.RawMessage) (*Report, bool) {
	if err := Validate(string(raw)); err != nil {
		return nil, false
	}
	var r Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false
	}
	return &r, true
}

// degraded is the fallback object for report text that cannot be used.
type degraded struct {
	Error string `json:"error"`
	Raw   string `json:"raw"`
}

// Parse turns raw report text into the JSON object for the complete
// event. An empty report yields {}. Text that does not parse, or that
// parses into something the schema rejects, degrades to an error-shaped
// object carrying the cleaned text; the job itself still completes.
func Parse(raw string) json.RawMessage {
	cleaned := Clean(raw)
	if cleaned == "" {
		return json.RawMessage("{}")
	}
	if err := Validate(cleaned); err == nil {
		return json.RawMessage(cleaned)
	}

	fallback, _ := json.Marshal(degraded{Error: "Failed to parse report", Raw: cleaned})
	return fallback
}
