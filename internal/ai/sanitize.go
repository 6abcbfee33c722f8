package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedResponse is returned when a reply cannot be parsed as the
// structured value the caller asked for.
var ErrMalformedResponse = errors.New("malformed response")

var jsonToken = regexp.MustCompile(`(?i)json`)

// strip removes the fenced-code-block noise generative services wrap around
// structured output: every "json" token (any case) and every backtick.
func strip(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = jsonToken.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "`", "")
	return strings.TrimSpace(cleaned)
}

// SanitizeObject strips raw and parses it as a JSON object.
func SanitizeObject(raw string) (map[string]any, error) {
	cleaned := strip(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: invalid json object: %v", ErrMalformedResponse, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: expected a json object", ErrMalformedResponse)
	}

	return data, nil
}

// SanitizeArray strips raw, keeps the span from the first '[' to the last ']'
// and parses it as a JSON array.
func SanitizeArray(raw string) ([]any, error) {
	cleaned := strip(raw)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end < start {
		return nil, fmt.Errorf("%w: no json array found", ErrMalformedResponse)
	}

	var data []any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &data); err != nil {
		return nil, fmt.Errorf("%w: invalid json array: %v", ErrMalformedResponse, err)
	}

	return data, nil
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
