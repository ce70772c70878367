package gleam

import (
	"encoding/json"
	"fmt"

	"github.com/gleamhunt/gleam-finder/internal/models"
)

// payloadValue wraps a generically decoded JSON value. The campaign blob
// carries no schema guarantee beyond the keys we look up, so values are
// walked with typed accessors that fail naming the offending key instead
// of decoding into a rigid struct.
type payloadValue struct {
	path string
	v    any
}

func parsePayload(raw string) (payloadValue, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return payloadValue{}, fmt.Errorf("%w: campaign payload is not valid JSON: %v", models.ErrInvalidResponse, err)
	}
	return payloadValue{path: "$", v: v}, nil
}

// field descends into an object key.
func (p payloadValue) field(key string) (payloadValue, error) {
	obj, ok := p.v.(map[string]any)
	if !ok {
		return payloadValue{}, fmt.Errorf("%w: %s is not an object", models.ErrInvalidResponse, p.path)
	}
	child, ok := obj[key]
	if !ok {
		return payloadValue{}, fmt.Errorf("%w: required key %s.%s missing", models.ErrInvalidResponse, p.path, key)
	}
	return payloadValue{path: p.path + "." + key, v: child}, nil
}

func (p payloadValue) str() (string, error) {
	s, ok := p.v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", models.ErrInvalidResponse, p.path)
	}
	return s, nil
}

func (p payloadValue) integer() (int64, error) {
	// encoding/json decodes all numbers as float64.
	f, ok := p.v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a number", models.ErrInvalidResponse, p.path)
	}
	return int64(f), nil
}

func (p payloadValue) array() ([]payloadValue, error) {
	arr, ok := p.v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an array", models.ErrInvalidResponse, p.path)
	}
	out := make([]payloadValue, len(arr))
	for i, elem := range arr {
		out[i] = payloadValue{path: fmt.Sprintf("%s[%d]", p.path, i), v: elem}
	}
	return out, nil
}
