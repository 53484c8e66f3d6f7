package cli

import (
	"testing"

	"github.com/nanoncore/nano-access/types"
)

func TestShellPromptMatching(t *testing.T) {
	tests := []struct {
		name   string
		vendor types.Vendor
		line   string
		want   bool
	}{
		{"huawei user view", types.VendorHuawei, "<MA5683T>", true},
		{"huawei privileged", types.VendorHuawei, "MA5683T#", true},
		{"huawei config", types.VendorHuawei, "MA5683T(config)#", true},
		{"huawei gpon interface", types.VendorHuawei, "MA5683T(config-if-gpon-0/0)#", true},
		{"huawei bracket view", types.VendorHuawei, "[MA5683T-gpon-0/0]", true},
		{"huawei hash mid-line", types.VendorHuawei, "Use # to comment out a line", false},
		{"huawei banner", types.VendorHuawei, "Warning: The current device mode is common.", false},
		{"zte exec", types.VendorZTE, "ZXAN#", true},
		{"zte user mode", types.VendorZTE, "ZXAN>", true},
		{"zte config", types.VendorZTE, "ZXAN(config)#", true},
		{"zte onu interface", types.VendorZTE, "ZXAN(config-if)#", true},
		{"zte pager line", types.VendorZTE, "--More--", false},
		{"zte progress", types.VendorZTE, "Building configuration...", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompts := PromptsFor(tt.vendor)
			if got := prompts.Shell.MatchString(tt.line); got != tt.want {
				t.Errorf("Shell.MatchString(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestLoginPromptMatching(t *testing.T) {
	tests := []struct {
		name     string
		vendor   types.Vendor
		line     string
		username bool
		password bool
	}{
		{"huawei username", types.VendorHuawei, ">>User name:", true, false},
		{"huawei password", types.VendorHuawei, ">>User password:", false, true},
		{"zte username", types.VendorZTE, "Username:", true, false},
		{"zte password", types.VendorZTE, "Password:", false, true},
		{"generic login", types.VendorMock, "login: ", true, false},
		{"not a prompt", types.VendorZTE, "Connected to 10.0.0.2.", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompts := PromptsFor(tt.vendor)
			if got := prompts.Username.MatchString(tt.line); got != tt.username {
				t.Errorf("Username.MatchString(%q) = %v, want %v", tt.line, got, tt.username)
			}
			if got := prompts.Password.MatchString(tt.line); got != tt.password {
				t.Errorf("Password.MatchString(%q) = %v, want %v", tt.line, got, tt.password)
			}
		})
	}
}

func TestCommandFailedMatching(t *testing.T) {
	tests := []struct {
		name   string
		vendor types.Vendor
		output string
		want   bool
	}{
		{"huawei failure", types.VendorHuawei, "  Failure: Make configuration repeatedly", true},
		{"huawei parameter error", types.VendorHuawei, "Parameter error, the ONT ID is out of range", true},
		{"huawei ok output", types.VendorHuawei, "Number of ONTs: 12", false},
		{"zte error code", types.VendorZTE, "%Error 20201: The ONU is not authenticated", true},
		{"zte invalid input", types.VendorZTE, "Invalid input detected at '^' marker.", true},
		{"zte ok output", types.VendorZTE, "Onu interface is up", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompts := PromptsFor(tt.vendor)
			if got := prompts.CommandFailed.MatchString(tt.output); got != tt.want {
				t.Errorf("CommandFailed.MatchString(%q) = %v, want %v", tt.output, got, tt.want)
			}
		})
	}
}

func TestLoginFailedMatching(t *testing.T) {
	tests := []struct {
		name   string
		vendor types.Vendor
		line   string
		want   bool
	}{
		{"huawei invalid", types.VendorHuawei, "Username or password invalid.", true},
		{"huawei retry limit", types.VendorHuawei, "Reenter times have reached the upper limit.", true},
		{"huawei motd", types.VendorHuawei, "Huawei Integrated Access Software.", false},
		{"zte bad password", types.VendorZTE, "bad password", true},
		{"zte banner", types.VendorZTE, "Welcome to ZXAN product system.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompts := PromptsFor(tt.vendor)
			if got := prompts.LoginFailed.MatchString(tt.line); got != tt.want {
				t.Errorf("LoginFailed.MatchString(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestPromptsFor(t *testing.T) {
	if got := PromptsFor(types.VendorHuawei); got != VendorPrompts[types.VendorHuawei] {
		t.Error("PromptsFor(huawei) did not return the huawei prompt set")
	}
	if got := PromptsFor(types.Vendor("unknown")); got != DefaultPrompts {
		t.Error("PromptsFor(unknown) did not fall back to DefaultPrompts")
	}
}

func TestCleanOutput(t *testing.T) {
	tests := []struct {
		name    string
		vendor  types.Vendor
		command string
		output  string
		want    string
	}{
		{
			name:    "huawei strips echo and prompt",
			vendor:  types.VendorHuawei,
			command: "display version",
			output:  "display version\nVERSION : MA5683TV800R013\nPATCH : SPC105\n<MA5683T>",
			want:    "VERSION : MA5683TV800R013\nPATCH : SPC105",
		},
		{
			name:    "zte strips echo and prompt",
			vendor:  types.VendorZTE,
			command: "show card",
			output:  "show card\nSlot CfgType RealType Status\n4    GTGO    GTGO     INSERVICE\nZXAN#",
			want:    "Slot CfgType RealType Status\n4    GTGO    GTGO     INSERVICE",
		},
		{
			name:    "output without echo survives",
			vendor:  types.VendorZTE,
			command: "show clock",
			output:  "12:30:01 UTC Thu Aug 20 2026\nZXAN#",
			want:    "12:30:01 UTC Thu Aug 20 2026",
		},
		{
			name:    "prompt only collapses to empty",
			vendor:  types.VendorHuawei,
			command: "save",
			output:  "save\nMA5683T#",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &ExpectSession{prompts: PromptsFor(tt.vendor)}
			if got := s.cleanOutput(tt.output, tt.command); got != tt.want {
				t.Errorf("cleanOutput() = %q, want %q", got, tt.want)
			}
		})
	}
}
