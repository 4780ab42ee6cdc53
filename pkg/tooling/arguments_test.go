package tooling

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = ObjectSchema(Properties{
	"city":    Property("string", ""),
	"days":    Property("integer", ""),
	"ratio":   Property("number", ""),
	"metric":  Property("boolean", ""),
	"tags":    Property("array", ""),
	"options": Property("object", ""),
	"units":   {Type: "string", Enum: []any{"c", "f"}},
}, "city")

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantField string
		wantErr   bool
	}{
		{name: "valid", raw: `{"city":"Lagos","days":3,"ratio":0.5,"metric":true,"tags":["a"],"options":{}}`},
		{name: "unknown fields pass", raw: `{"city":"Lagos","extra":1}`},
		{name: "missing required", raw: `{"days":3}`, wantErr: true, wantField: "city"},
		{name: "wrong string type", raw: `{"city":42}`, wantErr: true, wantField: "city"},
		{name: "fractional integer", raw: `{"city":"x","days":1.5}`, wantErr: true, wantField: "days"},
		{name: "wrong boolean type", raw: `{"city":"x","metric":"yes"}`, wantErr: true, wantField: "metric"},
		{name: "value outside enum", raw: `{"city":"x","units":"k"}`, wantErr: true, wantField: "units"},
		{name: "malformed json", raw: `{"city":`, wantErr: true},
		{name: "not an object", raw: `[1,2]`, wantErr: true},
		{name: "empty payload misses required", raw: "", wantErr: true, wantField: "city"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := ParseArguments(testSchema, tt.raw)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "Lagos", args["city"])
				return
			}

			require.ErrorIs(t, err, ErrArgumentParse)
			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.wantField, argErr.Field)
			if tt.wantField != "" {
				assert.Contains(t, err.Error(), tt.wantField)
			}
		})
	}
}

func TestParseArgumentsRoundTrip(t *testing.T) {
	original := map[string]any{
		"city":    "Lagos",
		"days":    float64(7),
		"ratio":   3.5,
		"metric":  false,
		"tags":    []any{"hot", "dry"},
		"options": map[string]any{"units": "c"},
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	args, err := ParseArguments(testSchema, string(raw))
	require.NoError(t, err)
	assert.Equal(t, original, map[string]any(args))
}

func TestArgumentsDecode(t *testing.T) {
	args, err := ParseArguments(SumTool.Parameters, `{"number1": 2, "number2": 3.5}`)
	require.NoError(t, err)

	var sum SumArguments
	require.NoError(t, args.Decode(&sum))
	assert.Equal(t, SumArguments{Number1: 2, Number2: 3.5}, sum)
}

func TestParseArgumentsHonoursSchemaKeywords(t *testing.T) {
	minLength, minimum := 2, 1.0
	schema := ObjectSchema(Properties{
		"name":  {Type: "string", MinLength: &minLength},
		"count": {Type: "integer", Minimum: &minimum},
	}, "name")

	_, err := ParseArguments(schema, `{"name":"ab","count":3}`)
	require.NoError(t, err)

	_, err = ParseArguments(schema, `{"name":"a"}`)
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "name", argErr.Field)

	_, err = ParseArguments(schema, `{"name":"ab","count":0}`)
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "count", argErr.Field)
}

func TestToolParseUsesResolvedSchema(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(WeatherTool, func(context.Context, Arguments) (any, error) { return "", nil }))

	tool, err := registry.Resolve(WeatherTool.Name)
	require.NoError(t, err)

	args, err := tool.Parse(`{"city":"Lagos"}`)
	require.NoError(t, err)
	assert.Equal(t, "Lagos", args["city"])

	_, err = tool.Parse(`{"city":7}`)
	assert.ErrorIs(t, err, ErrArgumentParse)
	assert.ErrorContains(t, err, "city")
}

func TestParametersMap(t *testing.T) {
	m := WeatherTool.ParametersMap()

	assert.Equal(t, "object", m["type"])
	assert.Equal(t, []any{"city"}, m["required"])
	properties := m["properties"].(map[string]any)
	assert.Equal(t, map[string]any{
		"type":        "string",
		"description": "The name of the city to get weather for",
	}, properties["city"])

	assert.Equal(t, map[string]any{"type": "object"}, Descriptor{Parameters: ObjectSchema(nil)}.ParametersMap())
}
