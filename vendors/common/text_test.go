package common

import "testing"

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "no ANSI codes",
			input: "display ont info 0 1",
			want:  "display ont info 0 1",
		},
		{
			name:  "colored error",
			input: "\x1b[31mFailure: ONT does not exist\x1b[0m",
			want:  "Failure: ONT does not exist",
		},
		{
			name:  "cursor movement",
			input: "\x1b[2J\x1b[HMA5683T>",
			want:  "MA5683T>",
		},
		{
			name:  "prompt with erase sequence",
			input: "\x1b[0mZXAN#\x1b[K show card",
			want:  "ZXAN# show card",
		},
		{
			name:  "mixed with newlines",
			input: "\x1b[32mONU online\x1b[0m\nONU offline",
			want:  "ONU online\nONU offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripANSI(tt.input)
			if got != tt.want {
				t.Errorf("StripANSI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidatePortName(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		wantErr bool
	}{
		{"plain uplink port", "gei_1/1/1", false},
		{"gpon interface", "gpon-olt_1/2/3", false},
		{"dotted name", "xgei_1.100", false},
		{"command injection", "gei_1/1/1; reboot", true},
		{"embedded space", "gei_1/1/1 shutdown", true},
		{"newline", "gei_1/1/1\nreboot", true},
		{"control character", "gei\x00_1/1/1", true},
		{"empty", "", true},
		{"backtick", "gei`date`", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePortName(tt.port)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePortName(%q) error = %v, wantErr %v", tt.port, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already safe", "customer-42_fiber", "customer-42_fiber"},
		{"spaces collapse", "apartment 12 west", "apartment_12_west"},
		{"injection neutralized", "desc; ont delete 0 1", "desc_ont_delete_0_1"},
		{"ansi stripped first", "\x1b[31mflat 7\x1b[0m", "flat_7"},
		{"only unsafe chars", ";;;", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeDescription(tt.input); got != tt.want {
				t.Errorf("SanitizeDescription(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
