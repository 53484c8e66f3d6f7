package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nanoncore/nano-access/model"
	"github.com/nanoncore/nano-access/types"
)

// Driver simulates a device CLI without touching real equipment. It
// records every command, answers from a scripted response table, and
// can be told to fail specific commands, which makes it the executor
// of choice for tests and for simulation mode.
type Driver struct {
	config *types.EquipmentConfig

	mu        sync.RWMutex
	connected bool
	loggedIn  bool
	history   []string
	responses map[string]string
	failures  map[string]string
	autofind  []model.ONUDiscovery
}

// NewDriver creates a mock CLI executor.
func NewDriver(config *types.EquipmentConfig) (*Driver, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &Driver{
		config:    config,
		responses: make(map[string]string),
		failures:  make(map[string]string),
	}, nil
}

// Script registers a canned output for an exact command line.
func (d *Driver) Script(command, output string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses[command] = output
}

// FailOn makes the given command fail with the message as device output.
func (d *Driver) FailOn(command, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[command] = message
}

// SeedAutofind populates the unprovisioned-ONU list reported by
// autofind-style commands.
func (d *Driver) SeedAutofind(onus []model.ONUDiscovery) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.autofind = append([]model.ONUDiscovery(nil), onus...)
}

// Connect marks the session connected.
func (d *Driver) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &types.ConnectionError{Target: d.config.Address, Err: err}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = true
	return nil
}

// Login checks the credentials against the config when the config
// carries any.
func (d *Driver) Login(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return &types.ConnectionError{Target: d.config.Address, Err: err}
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return &types.ConnectionError{Target: d.config.Address, Err: fmt.Errorf("not connected")}
	}
	if d.config.Username != "" && (username != d.config.Username || password != d.config.Password) {
		return &types.AuthenticationError{
			Target: d.config.Address,
			User:   username,
			Reason: "login rejected",
		}
	}
	d.loggedIn = true
	return nil
}

// ExecCommand records the command and answers it: scripted failures
// first, then scripted responses, then a few built-in recognizers.
func (d *Driver) ExecCommand(ctx context.Context, command string, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &types.ConnectionError{Target: d.config.Address, Err: err}
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected || !d.loggedIn {
		return "", &types.ConnectionError{Target: d.config.Address, Err: fmt.Errorf("no ready session")}
	}

	d.history = append(d.history, command)

	if msg, ok := d.failures[command]; ok {
		return msg, &types.CommandError{Command: command, Output: msg}
	}
	if out, ok := d.responses[command]; ok {
		return out, nil
	}

	lower := strings.ToLower(command)
	switch {
	case strings.Contains(lower, "autofind") || strings.Contains(lower, "uncfg"):
		return d.renderAutofind(), nil
	case strings.Contains(lower, "version"):
		return "Mock OLT Simulator 1.0.0", nil
	}

	return "", nil
}

// ExecCommands runs the batch in order with fail-fast semantics.
// The mock never sleeps, whatever delay says.
func (d *Driver) ExecCommands(ctx context.Context, commands []string, delay time.Duration) ([]types.CommandResult, error) {
	results := make([]types.CommandResult, 0, len(commands))
	for _, cmd := range commands {
		output, err := d.ExecCommand(ctx, cmd, 0)
		if err != nil {
			results = append(results, types.CommandResult{
				Command: cmd,
				Output:  output,
				Success: false,
				Error:   err.Error(),
			})
			return results, err
		}
		results = append(results, types.CommandResult{
			Command: cmd,
			Output:  output,
			Success: true,
		})
	}
	return results, nil
}

// Disconnect resets the session.
func (d *Driver) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
	d.loggedIn = false
	return nil
}

// IsConnected reports whether the session can execute commands.
func (d *Driver) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected && d.loggedIn
}

// History returns a copy of every command executed so far.
func (d *Driver) History() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	history := make([]string, len(d.history))
	copy(history, d.history)
	return history
}

func (d *Driver) renderAutofind() string {
	var sb strings.Builder
	sb.WriteString("Port      Serial              State\n")
	sb.WriteString("--------  ------------------  ----------\n")
	for _, onu := range d.autofind {
		sb.WriteString(fmt.Sprintf("%-8s  %-18s  %s\n", onu.PONPort, onu.Serial, onu.State))
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %d ONU(s) discovered\n", len(d.autofind)))
	return sb.String()
}

var _ types.CLIExecutor = (*Driver)(nil)
