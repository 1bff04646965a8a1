package langdetect

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
	}{
		{"English", "the quick brown fox jumps over the lazy dog", "en"},
		{"Spanish", "el rápido zorro marrón salta sobre el perro perezoso", "es"},
		{"Empty", "", ""},
		{"Whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, name := Detect(tt.text)
			if code != tt.wantCode {
				t.Errorf("Detect(%q) code = %q, want %q", tt.text, code, tt.wantCode)
			}
			if tt.wantCode != "" && name == "" {
				t.Errorf("Detect(%q) returned empty name for code %q", tt.text, code)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "English"},
		{"ja", "Japanese"},
		{"", ""},
		{"zz-bogus", "zz-bogus"},
	}

	for _, tt := range tests {
		if got := DisplayName(tt.code); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
