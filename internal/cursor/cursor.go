// Package cursor implements the opaque pagination tokens shared by every
// list endpoint. Tokens are base64-encoded JSON objects with the padding
// stripped. Decoding is fail-soft: anything malformed decodes to an empty
// map, which callers treat as "no cursor supplied".
package cursor

import (
	"encoding/base64"
	"encoding/json"
)

// MaxTokenLen is the byte ceiling for incoming tokens. Longer tokens are
// rejected as empty rather than parsed.
const MaxTokenLen = 2048

// Encode serializes the given values into an opaque token.
// Values must be JSON-serializable (numbers, strings, timestamps).
func Encode(values map[string]any) string {
	if len(values) == 0 {
		return ""
	}
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode parses a token back into its values. A token that is too long,
// not valid base64, not valid JSON, or not a JSON object all yield an
// empty map so a malformed cursor degrades to "start from the beginning".
func Decode(token string) map[string]any {
	if token == "" || len(token) > MaxTokenLen {
		return map[string]any{}
	}

	data, err := decodeBase64(token)
	if err != nil {
		return map[string]any{}
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil || values == nil {
		return map[string]any{}
	}
	return values
}

// decodeBase64 accepts both raw and padded URL-safe or standard encodings,
// since tokens may round-trip through clients that re-pad them.
func decodeBase64(token string) ([]byte, error) {
	if data, err := base64.RawURLEncoding.DecodeString(token); err == nil {
		return data, nil
	}
	if data, err := base64.URLEncoding.DecodeString(token); err == nil {
		return data, nil
	}
	if data, err := base64.StdEncoding.DecodeString(token); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(token)
}

// Int64 reads an integer field from decoded cursor values. JSON numbers
// arrive as float64; anything else returns ok=false.
func Int64(values map[string]any, key string) (int64, bool) {
	v, ok := values[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// String reads a string field from decoded cursor values.
func String(values map[string]any, key string) (string, bool) {
	v, ok := values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float64 reads a numeric field from decoded cursor values.
func Float64(values map[string]any, key string) (float64, bool) {
	v, ok := values[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}
