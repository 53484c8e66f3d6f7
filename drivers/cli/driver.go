package cli

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/nanoncore/nano-access/types"
)

// State names a phase of the driver's connection lifecycle.
type State string

const (
	StateDisconnected   State = "disconnected"
	StateConnecting     State = "connecting"
	StateAuthenticating State = "authenticating"
	StateReady          State = "ready"
	StateExecuting      State = "executing"
)

// Driver implements types.CLIExecutor over Telnet or SSH. A Driver owns
// exactly one device session at a time; it is not safe for concurrent
// use by multiple goroutines.
type Driver struct {
	config *types.EquipmentConfig
	logger *zap.Logger

	state     State
	conn      net.Conn
	sshClient *ssh.Client
	session   *ExpectSession
}

// NewDriver validates the config and returns an unconnected driver.
// A nil logger disables logging.
func NewDriver(config *types.EquipmentConfig, logger *zap.Logger) (*Driver, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.Address == "" {
		return nil, fmt.Errorf("address is required")
	}

	switch config.Protocol {
	case types.ProtocolTelnet:
		if config.Port == 0 {
			config.Port = 23
		}
	case types.ProtocolSSH:
		if config.Port == 0 {
			config.Port = 22
		}
	default:
		return nil, fmt.Errorf("protocol %q is not a CLI transport", config.Protocol)
	}

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Driver{
		config: config,
		logger: logger.With(zap.String("equipment", config.Name)),
		state:  StateDisconnected,
	}, nil
}

// State returns the current lifecycle phase.
func (d *Driver) State() State {
	return d.state
}

func (d *Driver) target() string {
	return fmt.Sprintf("%s:%d", d.config.Address, d.config.Port)
}

// Connect opens the transport. For SSH this includes the handshake and
// transport-level authentication; for Telnet only the TCP connection.
// Login completes the session either way.
func (d *Driver) Connect(ctx context.Context) error {
	if d.state != StateDisconnected {
		return &types.ConnectionError{
			Target: d.target(),
			Err:    fmt.Errorf("connect attempted in state %s", d.state),
		}
	}

	d.state = StateConnecting
	d.logger.Debug("connecting",
		zap.String("target", d.target()),
		zap.String("protocol", string(d.config.Protocol)))

	var err error
	switch d.config.Protocol {
	case types.ProtocolTelnet:
		err = d.connectTelnet(ctx)
	case types.ProtocolSSH:
		err = d.connectSSH(ctx)
	default:
		err = &types.ConnectionError{
			Target: d.target(),
			Err:    fmt.Errorf("protocol %q is not a CLI transport", d.config.Protocol),
		}
	}

	if err != nil {
		d.teardown()
		d.state = StateDisconnected
		return err
	}

	d.state = StateAuthenticating
	return nil
}

func (d *Driver) connectTelnet(ctx context.Context) error {
	dialer := &net.Dialer{Timeout: d.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.target())
	if err != nil {
		return &types.ConnectionError{Target: d.target(), Err: err}
	}
	d.conn = conn

	session, err := NewTelnetSession(conn, d.config.Vendor, d.config.Timeout)
	if err != nil {
		return &types.ConnectionError{Target: d.target(), Err: err}
	}
	d.session = session
	return nil
}

func (d *Driver) connectSSH(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &types.ConnectionError{Target: d.target(), Err: err}
	}

	// Some OLT firmwares only offer keyboard-interactive, answering every
	// question with the password covers those.
	keyboardInteractive := ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = d.config.Password
		}
		return answers, nil
	})

	sshConfig := &ssh.ClientConfig{
		User: d.config.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(d.config.Password),
			keyboardInteractive,
		},
		Timeout:         d.config.Timeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // OLT host keys change across firmware upgrades
	}

	client, err := ssh.Dial("tcp", d.target(), sshConfig)
	if err != nil {
		if strings.Contains(err.Error(), "unable to authenticate") {
			return &types.AuthenticationError{
				Target: d.target(),
				User:   d.config.Username,
				Reason: "ssh authentication rejected",
			}
		}
		return &types.ConnectionError{Target: d.target(), Err: err}
	}
	d.sshClient = client

	session, err := NewSSHSession(client, d.config.Vendor, d.config.Timeout)
	if err != nil {
		return &types.ConnectionError{Target: d.target(), Err: err}
	}
	d.session = session
	return nil
}

// Login completes device authentication. Over Telnet it drives the
// login/password prompt exchange; over SSH, where the transport already
// authenticated, it only waits for the first shell prompt. Empty
// credentials fall back to the config.
func (d *Driver) Login(ctx context.Context, username, password string) error {
	if d.state != StateAuthenticating {
		return &types.ConnectionError{
			Target: d.target(),
			Err:    fmt.Errorf("login attempted in state %s", d.state),
		}
	}
	if err := ctx.Err(); err != nil {
		return &types.ConnectionError{Target: d.target(), Err: err}
	}

	if username == "" {
		username = d.config.Username
	}
	if password == "" {
		password = d.config.Password
	}

	var err error
	if d.config.Protocol == types.ProtocolSSH {
		err = d.session.WaitReady()
	} else {
		err = d.session.Login(username, password)
	}
	if err != nil {
		d.logger.Warn("login failed", zap.String("user", username), zap.Error(err))
		return err
	}

	d.state = StateReady
	d.logger.Info("session ready", zap.String("user", username))
	return nil
}

// ExecCommand sends one command line and collects output until the next
// shell prompt. Zero timeout uses the config default.
func (d *Driver) ExecCommand(ctx context.Context, command string, timeout time.Duration) (string, error) {
	if d.state != StateReady {
		return "", &types.ConnectionError{
			Target: d.target(),
			Err:    fmt.Errorf("exec attempted in state %s", d.state),
		}
	}
	if err := ctx.Err(); err != nil {
		return "", &types.ConnectionError{Target: d.target(), Err: err}
	}
	if timeout == 0 {
		timeout = d.config.Timeout
	}

	d.state = StateExecuting
	defer func() { d.state = StateReady }()

	start := time.Now()
	output, err := d.session.Execute(command, timeout)
	d.logger.Debug("command executed",
		zap.String("command", command),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("ok", err == nil))
	return output, err
}

// ExecCommands runs the batch in order, waiting delay between commands.
// It stops at the first failure: the returned slice then has exactly one
// entry per attempted command, the last one carrying the failure.
func (d *Driver) ExecCommands(ctx context.Context, commands []string, delay time.Duration) ([]types.CommandResult, error) {
	results := make([]types.CommandResult, 0, len(commands))

	for i, cmd := range commands {
		if i > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return results, &types.ConnectionError{Target: d.target(), Err: ctx.Err()}
			}
		}

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

// Disconnect tears the session down. Safe to call in any state, and
// always leaves the driver disconnected.
func (d *Driver) Disconnect() error {
	d.teardown()
	d.state = StateDisconnected
	d.logger.Debug("disconnected")
	return nil
}

func (d *Driver) teardown() {
	if d.session != nil {
		_ = d.session.Close()
		d.session = nil
		// Telnet session close already closed the TCP conn
		d.conn = nil
	}
	if d.sshClient != nil {
		_ = d.sshClient.Close()
		d.sshClient = nil
	}
	if d.conn != nil {
		_ = d.conn.Close()
		d.conn = nil
	}
}

// IsConnected reports whether the session can execute commands.
func (d *Driver) IsConnected() bool {
	return d.state == StateReady || d.state == StateExecuting
}

var _ types.CLIExecutor = (*Driver)(nil)
