package jsonutil

import "testing"

func TestPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "Bare object",
			raw:  `{"genre": "drama"}`,
			want: `{"genre": "drama"}`,
		},
		{
			name: "Json code fence",
			raw:  "```json\n{\"genre\": \"drama\"}\n```",
			want: `{"genre": "drama"}`,
		},
		{
			name: "Plain code fence",
			raw:  "```\n{\"genre\": \"drama\"}\n```",
			want: `{"genre": "drama"}`,
		},
		{
			name: "Prose around object",
			raw:  "Here is the scene:\n{\"genre\": \"drama\"}\nHope that helps!",
			want: `{"genre": "drama"}`,
		},
		{
			name: "Array payload",
			raw:  "Result: [1, 2, 3] done",
			want: `[1, 2, 3]`,
		},
		{
			name: "Nested braces",
			raw:  `{"a": {"b": 1}}`,
			want: `{"a": {"b": 1}}`,
		},
		{
			name: "Leading whitespace",
			raw:  "\n\n  {\"x\": 1}",
			want: `{"x": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Payload(tt.raw)
			if err != nil {
				t.Fatalf("Payload() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Payload() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPayloadErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"Empty", ""},
		{"Prose only", "I could not produce a scene."},
		{"Unclosed object", `{"genre": "drama"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Payload(tt.raw); err == nil {
				t.Errorf("Payload(%q) error = nil, want error", tt.raw)
			}
		})
	}
}
