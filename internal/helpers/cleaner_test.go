package helpers

import "testing"

func TestExtractJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"causes":["listener down"],"notes":""}`,
			want: `{"causes":["listener down"],"notes":""}`,
		},
		{
			name: "fenced with language tag",
			in:   "```json\n{\"causes\": []}\n```",
			want: `{"causes": []}`,
		},
		{
			name: "prose around payload",
			in:   "Here you go: {\"notes\": \"use } carefully\", \"causes\": [\"a\"]} thanks",
			want: `{"notes": "use } carefully", "causes": ["a"]}`,
		},
		{
			name: "escaped quote inside string",
			in:   `{"notes": "say \"hi\" {"}`,
			want: `{"notes": "say \"hi\" {"}`,
		},
		{
			name: "skips unbalanced opener",
			in:   `prefix ] { "a": [1, 2 } {"b": 1}`,
			want: `{"b": 1}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ExtractJSON(tt.in)
			if err != nil {
				t.Fatalf("ExtractJSON returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONNoPayload(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "no json here", "{\"open\": true"} {
		if _, err := ExtractJSON(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
