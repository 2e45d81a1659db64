package query

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// JQ runs a jq expression over the JSON form of v and returns every result.
func JQ(v any, expr string) ([]any, error) {
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	input, err := toJSONValue(v)
	if err != nil {
		return nil, err
	}

	results := []any{}
	iter := code.Run(input)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := out.(error); isErr {
			return nil, fmt.Errorf("query error: %w", err)
		}
		results = append(results, out)
	}
	return results, nil
}

// toJSONValue converts v to the plain maps and slices gojq operates on.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode query input: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode query input: %w", err)
	}
	return out, nil
}
