package olt

import (
	"context"

	"go.uber.org/zap"

	"github.com/nanoncore/nano-access/drivers/cli"
	"github.com/nanoncore/nano-access/types"
)

// Executor runs a prepared command batch against one device. The driver
// builds the full list first and executes it in one shot.
type Executor interface {
	Execute(ctx context.Context, commands []string) ([]types.CommandResult, error)
}

// SimulationExecutor logs the would-be commands and reports every one
// successful. Used when no device access is desired.
type SimulationExecutor struct {
	logger *zap.Logger
}

// NewSimulationExecutor returns an executor that never touches a device.
func NewSimulationExecutor(logger *zap.Logger) *SimulationExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulationExecutor{logger: logger}
}

// Execute logs each command and fabricates a successful result.
func (e *SimulationExecutor) Execute(ctx context.Context, commands []string) ([]types.CommandResult, error) {
	results := make([]types.CommandResult, len(commands))
	for i, command := range commands {
		e.logger.Info("simulated command", zap.String("command", command))
		results[i] = types.CommandResult{Command: command, Success: true}
	}
	return results, nil
}

// SessionExecutor replays command batches over a fresh CLI session per
// call: connect, authenticate, execute fail-fast, disconnect. The
// session is torn down on every exit path.
type SessionExecutor struct {
	config *types.EquipmentConfig
	logger *zap.Logger

	// open builds the session; swapped out in tests
	open func() (types.CLIExecutor, error)
}

// NewSessionExecutor returns an executor that dials the configured
// device for every batch.
func NewSessionExecutor(config *types.EquipmentConfig, logger *zap.Logger) *SessionExecutor {
	return NewSessionExecutorWithOpener(config, func() (types.CLIExecutor, error) {
		return cli.NewDriver(config, logger)
	}, logger)
}

// NewSessionExecutorWithOpener returns an executor over a
// caller-supplied session opener. The mock vendor plugs in here.
func NewSessionExecutorWithOpener(config *types.EquipmentConfig, open func() (types.CLIExecutor, error), logger *zap.Logger) *SessionExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionExecutor{config: config, logger: logger, open: open}
}

// Execute opens a session, authenticates with the configured
// credentials and replays the batch fail-fast.
func (e *SessionExecutor) Execute(ctx context.Context, commands []string) ([]types.CommandResult, error) {
	session, err := e.open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := session.Disconnect(); err != nil {
			e.logger.Debug("session disconnect failed", zap.Error(err))
		}
	}()

	if err := session.Connect(ctx); err != nil {
		return nil, err
	}
	if err := session.Login(ctx, e.config.Username, e.config.Password); err != nil {
		return nil, err
	}
	return session.ExecCommands(ctx, commands, e.config.InterCommandDelay)
}

var (
	_ Executor = (*SimulationExecutor)(nil)
	_ Executor = (*SessionExecutor)(nil)
)
