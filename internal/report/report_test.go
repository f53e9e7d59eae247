package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanStripsFences(t *testing.T) {
	assert.Equal(t, `{"match_score": 80}`, Clean("```json\n{\"match_score\": 80}\n```"))
	assert.Equal(t, `{"match_score": 80}`, Clean("```\n{\"match_score\": 80}\n```"))
	assert.Equal(t, "not json", Clean("  not json  "))
	assert.Equal(t, "", Clean("```json\n```"))
}

func TestCleanRemovesAllFenceOccurrences(t *testing.T) {
	raw := "```json\n{\"a\": 1}\n```\n```json\n{\"b\": 2}\n```"
	cleaned := Clean(raw)
	assert.NotContains(t, cleaned, "```")
}

func TestParseValidReport(t *testing.T) {
	raw := `{"match_score": 87, "chosen_keywords": ["Go", "Kubernetes"], "missing_keywords": []}`

	var got map[string]any
	require.NoError(t, json.Unmarshal(Parse(raw), &got))

	assert.Equal(t, float64(87), got["match_score"])
	assert.Equal(t, []any{"Go", "Kubernetes"}, got["chosen_keywords"])
	assert.Empty(t, got["missing_keywords"])
	assert.NotContains(t, got, "error")
}

func TestParseFencedReport(t *testing.T) {
	raw := "```json\n{\"match_score\": 55, \"chosen_keywords\": [], \"missing_keywords\": [\"AWS\"]}\n```"

	var got map[string]any
	require.NoError(t, json.Unmarshal(Parse(raw), &got))
	assert.Equal(t, float64(55), got["match_score"])
}

func TestParseNonJSONDegrades(t *testing.T) {
	var got map[string]any
	require.NoError(t, json.Unmarshal(Parse("not json"), &got))

	assert.Equal(t, "Failed to parse report", got["error"])
	assert.Equal(t, "not json", got["raw"])
}

func TestParseMissingScoreDegrades(t *testing.T) {
	raw := `{"chosen_keywords": ["Python"]}`

	var got map[string]any
	require.NoError(t, json.Unmarshal(Parse(raw), &got))
	assert.Equal(t, "Failed to parse report", got["error"])
	assert.Equal(t, raw, got["raw"])
}

func TestParseWrongScoreTypeDegrades(t *testing.T) {
	var got map[string]any
	require.NoError(t, json.Unmarshal(Parse(`{"match_score": "high"}`), &got))
	assert.Equal(t, "Failed to parse report", got["error"])
}

func TestParseNonObjectDegrades(t *testing.T) {
	var got map[string]any
	require.NoError(t, json.Unmarshal(Parse(`[1, 2, 3]`), &got))
	assert.Equal(t, "Failed to parse report", got["error"])
}

func TestParseEmptyReport(t *testing.T) {
	assert.Equal(t, json.RawMessage("{}"), Parse(""))
	assert.Equal(t, json.RawMessage("{}"), Parse("```json\n```"))
}

func TestDecode(t *testing.T) {
	raw := Parse(`{"match_score": 87, "chosen_keywords": ["Go"], "missing_keywords": ["AWS"]}`)

	r, ok := Decode(raw)
	require.True(t, ok)
	assert.Equal(t, 87, r.MatchScore)
	assert.Equal(t, []string{"Go"}, r.ChosenKeywords)
	assert.Equal(t, []string{"AWS"}, r.MissingKeywords)
}

func TestDecodeRejectsDegradedShape(t *testing.T) {
	_, ok := Decode(Parse("not json"))
	assert.False(t, ok)

	_, ok = Decode(json.RawMessage("{}"))
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(`{"match_score": 42}`))

	err := Validate(`{"chosen_keywords": []}`)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
	assert.Contains(t, ve.Error(), "match_score")
}

func TestValidateRejectsMalformedJSON(t *testing.T) {
	err := Validate(`{"match_score":`)
	require.Error(t, err)

	var ve *ValidationError
	assert.False(t, json.Valid([]byte(`{"match_score":`)))
	assert.NotErrorAs(t, err, &ve)
}
