package tangle

import "encoding/json"

// NormalizeData renders a data payload as the JSON text handed to the
// engine. nil becomes the empty object; strings pass through unchanged so
// already-encoded input is never re-encoded; everything else is marshaled.
func NormalizeData(data any) (string, error) {
	switch v := data.(type) {
	case nil:
		return "{}", nil
	case string:
		return v, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
