package validation

import (
	"errors"
	"testing"
)

var updateSchema = MustCompile("update", map[string]any{
	"type":     "object",
	"required": []any{"content", "title"},
	"properties": map[string]any{
		"content":  map[string]any{"type": "string"},
		"title":    map[string]any{"type": "string"},
		"position": map[string]any{"type": "integer"},
	},
})

func TestSchemaValidate(t *testing.T) {
	cases := []struct {
		name    string
		payload any
		want    string
	}{
		{name: "valid", payload: map[string]any{"content": "x", "title": ""}},
		{name: "missing title", payload: map[string]any{"content": "x"}, want: "title is required"},
		{name: "null content", payload: map[string]any{"content": nil, "title": "t"}, want: "content is required"},
		{name: "wrong type", payload: map[string]any{"content": 42, "title": "t"}, want: "content must be a string"},
		{name: "integer field", payload: map[string]any{"content": "", "title": "", "position": "x"}, want: "position must be an integer"},
		{name: "both missing", payload: map[string]any{}, want: "content is required; title is required"},
		{name: "not an object", payload: []any{"x"}, want: "request body must be a JSON object"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := updateSchema.Validate(tc.payload)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrSchemaValidation) {
				t.Fatalf("expected ErrSchemaValidation, got %v", err)
			}
			if err.Error() != tc.want {
				t.Fatalf("unexpected message %q, want %q", err.Error(), tc.want)
			}
		})
	}
}

func TestIssues(t *testing.T) {
	err := updateSchema.Validate(map[string]any{"content": "x"})
	issues := Issues(err)
	if len(issues) != 1 || issues[0].Field != "title" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if Issues(nil) != nil {
		t.Fatalf("expected nil issues for nil error")
	}
}

func TestCompileRejectsInvalidSchema(t *testing.T) {
	_, err := Compile("broken", map[string]any{"type": 12})
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}
