package ai

import "testing"

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fenced json with leading prose",
			input: "here is json: ```json\n{\"pros\":[\"good\"]}\n```",
			want:  `{"pros":["good"]}`,
		},
		{
			name:  "fence without language tag",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "bare json passes through",
			input: "  {\"a\":1}\n",
			want:  `{"a":1}`,
		},
		{
			name:  "fenced array",
			input: "```json\n[{\"a\":1}]\n```",
			want:  `[{"a":1}]`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSONBlock(tc.input); got != tc.want {
				t.Fatalf("ExtractJSONBlock() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_Variants(t *testing.T) {
	type summary struct {
		Pros []string `json:"pros"`
	}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "valid json",
			input: `{"pros":["good"]}`,
			want:  []string{"good"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{pros: ['good']}`,
			want:  []string{"good"},
		},
		{
			name:  "trailing comma",
			input: `{"pros":["good"],}`,
			want:  []string{"good"},
		},
		{
			name:  "truncated object",
			input: `{"pros":["good"`,
			want:  []string{"good"},
		},
		{
			name:  "double-encoded string",
			input: `"{\"pros\":[\"good\"]}"`,
			want:  []string{"good"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got summary
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if len(got.Pros) != len(tc.want) {
				t.Fatalf("UnmarshalFlexible() pros = %v, want %v", got.Pros, tc.want)
			}
			for i := range got.Pros {
				if got.Pros[i] != tc.want[i] {
					t.Fatalf("UnmarshalFlexible() pros[%d] = %q, want %q", i, got.Pros[i], tc.want[i])
				}
			}
		})
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	var out map[string]any
	if err := UnmarshalFlexible("no json here at all", &out); err == nil {
		t.Fatal("expected error for unrecoverable input")
	}
}

func TestExtractThenUnmarshal_FencedResponse(t *testing.T) {
	// A model answering "here is json: ```json ... ```" must still yield
	// parsed fields.
	type fields struct {
		Pros []string `json:"pros"`
	}
	raw := "here is json: ```json\n{\"pros\":[\"good\"]}\n```"

	var got fields
	if err := UnmarshalFlexible(ExtractJSONBlock(raw), &got); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(got.Pros) != 1 || got.Pros[0] != "good" {
		t.Fatalf("pros = %v, want [good]", got.Pros)
	}
}
