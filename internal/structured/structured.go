// Package structured parses JSON objects out of semi-structured model output.
//
// LLM completions are untyped text: the JSON we asked for may arrive wrapped in
// markdown fences, preceded by prose, or followed by commentary. This package
// isolates all extraction, decoding, and schema validation in one place so that
// every caller receives either a validated record or a typed failure, never a
// panic or a raw decode error.
package structured

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind classifies a parse failure.
type Kind int

const (
	// KindDecode means the extracted span was not valid JSON.
	KindDecode Kind = iota

	// KindSchema means the JSON was valid but required fields were missing
	// or had uncoercible types.
	KindSchema

	// KindUnknown covers any other failure during extraction or decoding.
	KindUnknown
)

// String returns a short label for the failure kind.
func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode_error"
	case KindSchema:
		return "schema_error"
	default:
		return "unknown_error"
	}
}

// Error is a typed parse failure. It is the only error type returned by this
// package; callers branch on Kind to pick a fallback path.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("structured parse (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Record is a decode target that can validate its own required fields.
type Record interface {
	Validate() error
}

// Unmarshal extracts the first complete JSON object from raw model output,
// decodes it into dst, and validates it. Any failure is returned as *Error;
// panics inside decoding or validation are converted to KindUnknown.
func Unmarshal(raw string, dst Record) (err *Error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: KindUnknown, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	span := ExtractObject(raw)

	if jsonErr := json.Unmarshal([]byte(span), dst); jsonErr != nil {
		return &Error{Kind: KindDecode, Err: jsonErr}
	}

	if vErr := dst.Validate(); vErr != nil {
		return &Error{Kind: KindSchema, Err: vErr}
	}

	return nil
}

// ExtractObject returns the first complete, balanced {...} span in text after
// stripping a single surrounding markdown code fence. Brace depth is tracked
// explicitly (string literals and escapes included) rather than pattern
// matched, because model output routinely nests objects and appends trailing
// prose that a greedy first-{-to-last-} match would swallow. If no balanced
// object is found the stripped text is returned unchanged so the JSON decoder
// reports the real failure.
func ExtractObject(text string) string {
	text = stripFence(text)

	var (
		start    = -1
		depth    = 0
		inString = false
		escaped  = false
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start != -1 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start == -1 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return text
}

// stripFence removes one leading/trailing markdown code fence if present.
// Tolerates both ```json and bare ``` markers.
func stripFence(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-len("```")]
	}

	return strings.TrimSpace(text)
}

// FlexString is a string that also accepts JSON numbers and booleans,
// coercing them to their literal text. Models are asked to echo candidate ids
// verbatim but frequently emit numeric ids unquoted.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}

	// Numbers and booleans keep their literal form.
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	switch probe.(type) {
	case float64, bool:
		*f = FlexString(trimmed)
		return nil
	default:
		return fmt.Errorf("cannot coerce %s to string", trimmed)
	}
}

func (f FlexString) String() string {
	return string(f)
}
