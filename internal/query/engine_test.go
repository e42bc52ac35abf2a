package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/rugsearch/pkg/types"
)

func sampleResponse() *types.SearchResponse {
	return &types.SearchResponse{
		Results: []types.SearchResult{
			{Title: "Beige Rug", Price: types.Float64Ptr(4500), Score: types.Float64Ptr(0.91), Image: "/images/a.jpg"},
			{Title: "Blue Runner", Price: types.Float64Ptr(1200), Score: types.Float64Ptr(0.55)},
			{Title: "Unpriced", Score: types.Float64Ptr(0.3)},
		},
		ParsedQuery: &types.ParsedQuery{Size: "8x10", Color: "beige"},
	}
}

func TestEngine_Query_Simple(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Query([]byte(`{"name": "John", "age": 30}`), ".name", 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"John"}, result.Values)
	assert.Equal(t, 1, result.RawCount)
}

func TestEngine_Query_MaxResults(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Query([]byte(`{"items": [1, 2, 3, 4, 5]}`), ".items[]", 3)
	require.NoError(t, err)
	assert.Len(t, result.Values, 3)
	assert.Equal(t, 5, result.RawCount)
}

func TestEngine_Query_InvalidExpression(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Query([]byte(`{}`), ".[invalid", 0)
	assert.ErrorContains(t, err, "invalid jq expression")
}

func TestEngine_Query_InvalidJSON(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Query([]byte(`not json`), ".", 0)
	assert.ErrorContains(t, err, "invalid JSON data")
}

func TestEngine_QueryResponse_Select(t *testing.T) {
	engine := NewEngine()

	result, err := engine.QueryResponse(sampleResponse(), `.results[] | select(.price != null and .price < 2000) | .title`, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"Blue Runner"}, result.Values)
}

func TestEngine_QueryResponse_ParsedQuery(t *testing.T) {
	engine := NewEngine()

	result, err := engine.QueryResponse(sampleResponse(), `.parsed_query.size`, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"8x10"}, result.Values)
}

func TestEngine_QueryResponse_NilResponse(t *testing.T) {
	engine := NewEngine()

	result, err := engine.QueryResponse(nil, `.results | length`, 0)
	require.NoError(t, err)
	require.Len(t, result.Values, 1)
	assert.EqualValues(t, 0, result.Values[0])
}

func TestEngine_QueryResponse_RuntimeErrorHint(t *testing.T) {
	engine := NewEngine()

	result, err := engine.QueryResponse(sampleResponse(), `.parsed_query.missing[]`, 0)
	require.NoError(t, err)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "the path may not exist")
}

func TestEngine_ValidateExpression(t *testing.T) {
	engine := NewEngine()

	assert.NoError(t, engine.ValidateExpression(".results[].title"))
	assert.Error(t, engine.ValidateExpression(".results[?"))
	assert.Error(t, engine.ValidateExpression("undefined_function_xyz"))
}
