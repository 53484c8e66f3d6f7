package cli

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	expect "github.com/google/goexpect"
	"golang.org/x/crypto/ssh"
	"google.golang.org/grpc/codes"

	"github.com/nanoncore/nano-access/types"
)

// PromptSet is the per-vendor configuration of the session driver: the
// patterns that frame a line-oriented CLI conversation.
type PromptSet struct {
	// Username and Password match the login prompts
	Username *regexp.Regexp
	Password *regexp.Regexp

	// Shell matches the command prompt in any CLI mode
	Shell *regexp.Regexp

	// LoginFailed matches the device's rejection banner
	LoginFailed *regexp.Regexp

	// CommandFailed matches device-reported command errors in output
	CommandFailed *regexp.Regexp
}

// DefaultPrompts matches common CLI prompts like "hostname#" or "hostname>"
var DefaultPrompts = &PromptSet{
	Username:      regexp.MustCompile(`(?i)(username|login)\s*:\s*$`),
	Password:      regexp.MustCompile(`(?i)password\s*:\s*$`),
	Shell:         regexp.MustCompile(`(?m)[\w\-.()/]+[#>]\s*$`),
	LoginFailed:   regexp.MustCompile(`(?i)(invalid|incorrect|authentication fail|access denied|bad password)`),
	CommandFailed: regexp.MustCompile(`(?im)^\s*%?\s*(error|failure|invalid input|unknown command|incomplete command)`),
}

// VendorPrompts contains vendor-specific prompt patterns.
// Huawei shells show <name>, [name] or name#; ZTE shows name# or name>.
var VendorPrompts = map[types.Vendor]*PromptSet{
	types.VendorHuawei: {
		Username:      regexp.MustCompile(`(?i)(user\s?name|login)\s*:\s*$`),
		Password:      regexp.MustCompile(`(?i)password\s*:\s*$`),
		Shell:         regexp.MustCompile(`(?m)(<[\w\-.]+>|\[[\w\-.~/()]+\]|[\w\-.()/]+#)\s*$`),
		LoginFailed:   regexp.MustCompile(`(?i)(username or password invalid|reenter times have reached|access denied|authentication fail)`),
		CommandFailed: regexp.MustCompile(`(?im)^\s*(failure:|error:|%\s*unknown command|parameter error|command exists)`),
	},
	types.VendorZTE: {
		Username:      regexp.MustCompile(`(?i)(username|login)\s*:\s*$`),
		Password:      regexp.MustCompile(`(?i)password\s*:\s*$`),
		Shell:         regexp.MustCompile(`(?m)[\w\-.()/]+[#>]\s*$`),
		LoginFailed:   regexp.MustCompile(`(?i)(invalid|bad password|authentication fail|login failed)`),
		CommandFailed: regexp.MustCompile(`(?im)^\s*(%\s*error|error\s?:|invalid input|incomplete command|unknown command)`),
	},
}

// PagerDisableCommands contains commands to disable paging per vendor
var PagerDisableCommands = map[types.Vendor]string{
	types.VendorHuawei: "screen-length 0 temporary",
	types.VendorZTE:    "terminal length 0",
}

// PromptsFor returns the prompt set for a vendor, falling back to the
// generic patterns.
func PromptsFor(vendor types.Vendor) *PromptSet {
	if p, ok := VendorPrompts[vendor]; ok {
		return p
	}
	return DefaultPrompts
}

// ExpectSession wraps google/goexpect for network equipment CLI
// interaction over either transport.
type ExpectSession struct {
	expecter *expect.GExpect
	prompts  *PromptSet
	timeout  time.Duration
	vendor   types.Vendor
	target   string
}

// spawnOptions returns the expect options shared by both transports.
func spawnOptions() []expect.Option {
	return []expect.Option{
		expect.Verbose(false),
		expect.CheckDuration(500 * time.Millisecond),
	}
}

// NewSSHSession creates an interactive session on top of an established
// SSH client. The transport has already authenticated; the session only
// waits for the first shell prompt.
func NewSSHSession(client *ssh.Client, vendor types.Vendor, timeout time.Duration) (*ExpectSession, error) {
	if client == nil {
		return nil, fmt.Errorf("SSH client is required")
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	exp, _, err := expect.SpawnSSH(client, timeout, spawnOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn SSH expect session: %w", err)
	}

	return &ExpectSession{
		expecter: exp,
		prompts:  PromptsFor(vendor),
		timeout:  timeout,
		vendor:   vendor,
		target:   client.RemoteAddr().String(),
	}, nil
}

// NewTelnetSession creates an interactive session over a raw TCP
// connection with Telnet option negotiation filtered out. The device is
// expected to present its login prompt next; Login drives it.
func NewTelnetSession(conn net.Conn, vendor types.Vendor, timeout time.Duration) (*ExpectSession, error) {
	if conn == nil {
		return nil, fmt.Errorf("connection is required")
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	tc := newTelnetConn(conn)
	closed := make(chan struct{})
	exp, _, err := expect.SpawnGeneric(&expect.GenOptions{
		In:  tc,
		Out: tc,
		Wait: func() error {
			<-closed
			return nil
		},
		Close: func() error {
			close(closed)
			return tc.Close()
		},
		Check: func() bool { return true },
	}, timeout, spawnOptions()...)
	if err != nil {
		tc.Close()
		return nil, fmt.Errorf("failed to spawn telnet expect session: %w", err)
	}

	return &ExpectSession{
		expecter: exp,
		prompts:  PromptsFor(vendor),
		timeout:  timeout,
		vendor:   vendor,
		target:   conn.RemoteAddr().String(),
	}, nil
}

// Login drives the username/password prompt exchange until a shell
// prompt appears. A rejection banner or a repeated credential prompt is
// an authentication failure, distinct from transport trouble.
func (s *ExpectSession) Login(username, password string) error {
	batch := []expect.Caser{
		&expect.Case{R: s.prompts.Username, S: username + "\n",
			T: expect.Continue(expect.NewStatus(codes.OK, "username sent")), Rt: 2},
		&expect.Case{R: s.prompts.Password, S: password + "\n",
			T: expect.Continue(expect.NewStatus(codes.OK, "password sent")), Rt: 2},
		&expect.Case{R: s.prompts.LoginFailed,
			T: expect.Fail(expect.NewStatus(codes.PermissionDenied, "login rejected"))},
		&expect.Case{R: s.prompts.Shell, T: expect.OK()},
	}

	started := time.Now()
	_, _, _, err := s.expecter.ExpectSwitchCase(batch, s.timeout)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "login rejected") || strings.Contains(msg, "PermissionDenied"):
			return &types.AuthenticationError{Target: s.target, User: username, Reason: "device rejected credentials"}
		case strings.Contains(msg, "retry limit"):
			// A credential prompt that keeps coming back means the device
			// silently discarded what we sent.
			return &types.AuthenticationError{Target: s.target, User: username, Reason: "login prompt loop"}
		case time.Since(started) >= s.timeout:
			return &types.TimeoutError{Op: "login", Timeout: s.timeout, Err: err}
		default:
			return &types.ConnectionError{Target: s.target, Err: err}
		}
	}

	// Disable pagination so long command output arrives unchunked.
	// Non-fatal: some firmware revisions reject the command.
	if cmd, ok := PagerDisableCommands[s.vendor]; ok {
		_, _ = s.Execute(cmd, s.timeout)
	}

	return nil
}

// WaitReady waits for the first shell prompt on transports that
// authenticate before the CLI appears (SSH).
func (s *ExpectSession) WaitReady() error {
	if _, _, err := s.expecter.Expect(s.prompts.Shell, s.timeout); err != nil {
		return &types.ConnectionError{Target: s.target, Err: fmt.Errorf("no shell prompt: %w", err)}
	}
	if cmd, ok := PagerDisableCommands[s.vendor]; ok {
		_, _ = s.Execute(cmd, s.timeout)
	}
	return nil
}

// Execute sends a command and waits for the prompt, returning the
// cleaned output. Device-reported errors in the output surface as
// CommandError; an expired wait surfaces as TimeoutError.
func (s *ExpectSession) Execute(command string, timeout time.Duration) (string, error) {
	if s.expecter == nil {
		return "", &types.ConnectionError{Target: s.target, Err: fmt.Errorf("session not initialized")}
	}
	if timeout <= 0 {
		timeout = s.timeout
	}

	if err := s.expecter.Send(command + "\n"); err != nil {
		return "", &types.ConnectionError{Target: s.target, Err: fmt.Errorf("send failed: %w", err)}
	}

	started := time.Now()
	output, _, err := s.expecter.Expect(s.prompts.Shell, timeout)
	cleaned := s.cleanOutput(output, command)
	if err != nil {
		if time.Since(started) >= timeout {
			return cleaned, &types.TimeoutError{Op: fmt.Sprintf("command %q", command), Timeout: timeout, Err: err}
		}
		return cleaned, &types.CommandError{Command: command, Output: cleaned, Err: err}
	}

	if s.prompts.CommandFailed != nil && s.prompts.CommandFailed.MatchString(cleaned) {
		return cleaned, &types.CommandError{Command: command, Output: cleaned}
	}

	return cleaned, nil
}

// cleanOutput removes command echo and prompt lines from output
func (s *ExpectSession) cleanOutput(output, command string) string {
	lines := strings.Split(output, "\n")
	var cleaned []string

	for i, line := range lines {
		// Skip the first line if it's the command echo
		if i == 0 && strings.Contains(line, command) {
			continue
		}
		// Skip lines that match the prompt pattern
		if s.prompts.Shell.MatchString(strings.TrimSpace(line)) {
			continue
		}
		cleaned = append(cleaned, line)
	}

	result := strings.Join(cleaned, "\n")
	return strings.TrimSpace(result)
}

// Close closes the expect session
func (s *ExpectSession) Close() error {
	if s.expecter != nil {
		return s.expecter.Close()
	}
	return nil
}

// SetTimeout updates the default command timeout
func (s *ExpectSession) SetTimeout(timeout time.Duration) {
	s.timeout = timeout
}
