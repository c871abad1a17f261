package rag

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrParseFailure is returned when model output holds no decodable JSON object.
var ErrParseFailure = errors.New("model output is not valid json")

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_-]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?```$")
	objectSpan    = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON returns the bytes of the JSON object carried by raw model output.
// It tries, in order: the text with code fences stripped, then the greedy span from the first
// '{' to the last '}'.
func ExtractJSON(raw string) ([]byte, error) {
	cleaned := stripFences(raw)
	if isObject(cleaned) {
		return []byte(cleaned), nil
	}
	if span := objectSpan.FindString(cleaned); span != "" && isObject(span) {
		return []byte(span), nil
	}
	return nil, ErrParseFailure
}

// ParseObject decodes raw model output into a generic mapping.
func ParseObject(raw string) (map[string]any, error) {
	b, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return out, nil
}

// Decode extracts the JSON object from raw model output and unmarshals it into v.
func Decode(raw string, v any) error {
	b, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func isObject(s string) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal([]byte(s), &obj) == nil
}

// Text is a string field that tolerates off-type model output: numbers and booleans keep their
// JSON spelling, null is empty, arrays and objects become compact JSON.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Text(TextOf(v))
	return nil
}

// Lines is a list of bullet lines. Models sometimes answer with one newline-separated
// string instead of an array, or with a bare scalar; every shape decodes to a list.
type Lines []string

func (l *Lines) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = LinesOf(v)
	return nil
}

// TextOf renders a decoded JSON value as trimmed text.
func TextOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// LinesOf turns a decoded JSON value into non-empty lines. Arrays keep one line per element,
// strings are split on newlines, anything else becomes a single line.
func LinesOf(v any) Lines {
	out := Lines{}
	switch x := v.(type) {
	case nil:
	case []any:
		for _, item := range x {
			if s := TextOf(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		out = append(out, SplitLines(x)...)
	default:
		out = append(out, TextOf(x))
	}
	return out
}

// SplitLines splits text on newlines and keeps the non-empty trimmed lines.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}
