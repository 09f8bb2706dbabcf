package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoJSON is returned when a response holds no well-formed JSON object.
var ErrNoJSON = errors.New("no JSON object found in response")

// ParseJSON extracts the first well-formed {...} block from an LLM response
// and unmarshals it into T. Surrounding prose and markdown fences are ignored.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	jsonStr, ok := FirstJSONObject(response)
	if !ok {
		return zero, ErrNoJSON
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return result, nil
}

// FirstJSONObject returns the first balanced object that is also valid JSON.
// Candidates that balance but fail validation are skipped.
func FirstJSONObject(s string) (string, bool) {
	for start := strings.IndexByte(s, '{'); start != -1; {
		if end, ok := balancedEnd(s, start); ok {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return "", false
}

// balancedEnd finds the index of the brace closing the one at start,
// skipping braces inside string literals.
func balancedEnd(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// FlexibleString decodes a JSON value that should be a string but may arrive
// as a number or boolean.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexibleString(strconv.FormatBool(b))
		return nil
	}

	return fmt.Errorf("cannot decode %s as string", raw)
}

// FlexibleFloat decodes a number that may arrive quoted. Set is false when
// the field was absent, null, or not numeric.
type FlexibleFloat struct {
	Value float64
	Set   bool
}

func (f *FlexibleFloat) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*f = FlexibleFloat{}
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleFloat{Value: n, Set: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*f = FlexibleFloat{Value: v, Set: true}
			return nil
		}
	}

	// Unusable confidence values fall back to the caller's default.
	*f = FlexibleFloat{}
	return nil
}

// CollapseWhitespace trims s and folds inner whitespace runs to one space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
