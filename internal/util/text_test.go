package util

import "testing"

func TestSanitizePostgresText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "korean text untouched",
			input: "파스타가 맛있는 집",
			want:  "파스타가 맛있는 집",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "nul byte stripped",
			input: "강남\x00 맛집",
			want:  "강남 맛집",
		},
		{
			name:  "truncated multibyte sequence dropped",
			input: "메뉴" + string([]byte{0xeb, 0xa7}) + "판",
			want:  "메뉴판",
		},
		{
			name:  "stray continuation byte dropped",
			input: string([]byte{'a', 0x80, 'b'}),
			want:  "ab",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizePostgresText(tc.input); got != tc.want {
				t.Fatalf("SanitizePostgresText(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
