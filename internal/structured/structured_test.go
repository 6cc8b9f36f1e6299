package structured

import (
	"errors"
	"strings"
	"testing"
)

type testRecord struct {
	Name  string     `json:"name"`
	Count int        `json:"count"`
	ID    FlexString `json:"id"`
}

func (r *testRecord) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func TestExtractObject_BareJSON(t *testing.T) {
	in := `{"name": "acme", "count": 2}`
	if got := ExtractObject(in); got != in {
		t.Errorf("expected unchanged input, got %q", got)
	}
}

func TestExtractObject_StripsFences(t *testing.T) {
	cases := []string{
		"```json\n{\"name\": \"acme\"}\n```",
		"```\n{\"name\": \"acme\"}\n```",
		"  ```json\n{\"name\": \"acme\"}\n```  ",
	}
	for _, in := range cases {
		if got := ExtractObject(in); got != `{"name": "acme"}` {
			t.Errorf("ExtractObject(%q) = %q", in, got)
		}
	}
}

func TestExtractObject_SurroundingProse(t *testing.T) {
	in := "Here is your answer:\n{\"name\": \"acme\"}\nLet me know if you need more."
	if got := ExtractObject(in); got != `{"name": "acme"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractObject_NestedObjects(t *testing.T) {
	// The full outer object must be captured, not the first closing brace.
	in := `prose {"a": {"b": {"c": 1}}, "d": 2} trailing commentary`
	want := `{"a": {"b": {"c": 1}}, "d": 2}`
	if got := ExtractObject(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractObject_TopLevelSiblings(t *testing.T) {
	// Only the first complete object is extracted; a greedy first-{ to
	// last-} match would capture both.
	in := `{"a": 1} and also {"b": 2}`
	if got := ExtractObject(in); got != `{"a": 1}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractObject_BracesInsideStrings(t *testing.T) {
	in := `{"name": "curly } brace { vendor", "count": 1} done`
	want := `{"name": "curly } brace { vendor", "count": 1}`
	if got := ExtractObject(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractObject_EscapedQuoteInString(t *testing.T) {
	in := `{"name": "he said \"}\" loudly"} trailing`
	want := `{"name": "he said \"}\" loudly"}`
	if got := ExtractObject(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractObject_UnbalancedReturnsInput(t *testing.T) {
	in := `{"name": "acme", "count":`
	if got := ExtractObject(in); got != in {
		t.Errorf("expected unbalanced input returned as-is, got %q", got)
	}
}

func TestUnmarshal_Success(t *testing.T) {
	var rec testRecord
	raw := "```json\n{\"name\": \"acme\", \"count\": 3, \"id\": 42}\n```"

	if err := Unmarshal(raw, &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Name != "acme" || rec.Count != 3 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.ID.String() != "42" {
		t.Errorf("expected numeric id coerced to \"42\", got %q", rec.ID)
	}
}

func TestUnmarshal_DecodeError(t *testing.T) {
	var rec testRecord
	err := Unmarshal(`{"name": "acme", "count":`, &rec)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != KindDecode {
		t.Errorf("expected KindDecode, got %v", err.Kind)
	}
}

func TestUnmarshal_SchemaError(t *testing.T) {
	var rec testRecord
	err := Unmarshal(`{"count": 7}`, &rec)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != KindSchema {
		t.Errorf("expected KindSchema, got %v", err.Kind)
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Errorf("expected validation message in error, got %q", err.Error())
	}
}

func TestUnmarshal_WrongTypeIsDecodeError(t *testing.T) {
	var rec testRecord
	err := Unmarshal(`{"name": "acme", "count": "many"}`, &rec)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != KindDecode {
		t.Errorf("expected KindDecode for uncoercible type, got %v", err.Kind)
	}
}

func TestFlexString_Coercion(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`"7"`, "7"},
		{`7`, "7"},
		{`3.5`, "3.5"},
		{`true`, "true"},
		{`null`, ""},
	}
	for _, tc := range cases {
		var f FlexString
		if err := f.UnmarshalJSON([]byte(tc.in)); err != nil {
			t.Errorf("UnmarshalJSON(%s): %v", tc.in, err)
			continue
		}
		if f.String() != tc.want {
			t.Errorf("UnmarshalJSON(%s) = %q, want %q", tc.in, f, tc.want)
		}
	}

	var f FlexString
	if err := f.UnmarshalJSON([]byte(`["x"]`)); err == nil {
		t.Error("expected error coercing array to string")
	}
}
