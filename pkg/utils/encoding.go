package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeJSON decodes data into T, rejecting empty input and trailing garbage.
func DecodeJSON[T any](data []byte) (T, error) {
	var result T
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return result, fmt.Errorf("JSON data is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if dec.More() {
		return result, fmt.Errorf("unexpected data after JSON value")
	}
	return result, nil
}
