// Package olt exposes the high-level OLT operations: each one builds
// the full vendor command list through a catalog and executes it once
// through an executor strategy. Operations report uniform result
// records instead of raising.
package olt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nanoncore/nano-access/model"
	"github.com/nanoncore/nano-access/types"
	"github.com/nanoncore/nano-access/vendors/common"
)

// Driver drives one OLT. Polymorphic over vendor through the command
// catalog; simulation vs real execution is the injected executor.
type Driver struct {
	catalog  types.CommandCatalog
	executor Executor
	logger   *zap.Logger
}

// NewDriver assembles a driver from a vendor catalog and an executor
// strategy.
func NewDriver(catalog types.CommandCatalog, executor Executor, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		catalog:  catalog,
		executor: executor,
		logger:   logger.With(zap.String("vendor", string(catalog.Vendor()))),
	}
}

// ProvisionONU registers the ONU and applies its service profile and
// VLAN in one batch.
func (d *Driver) ProvisionONU(ctx context.Context, req model.ProvisionRequest) *types.ExecutionResult {
	if !common.ValidCLIArgument(req.Serial) {
		return rejected("provision ONU", fmt.Sprintf("serial %q contains unsafe characters", req.Serial))
	}
	if req.ONUType != "" && !common.ValidCLIArgument(req.ONUType) {
		return rejected("provision ONU", fmt.Sprintf("ONU type %q contains unsafe characters", req.ONUType))
	}
	req.Description = common.SanitizeDescription(req.Description)

	var commands []string
	commands = append(commands, d.catalog.AddONUCommands(req)...)
	commands = append(commands, d.catalog.ServiceCommands(req)...)
	commands = append(commands, d.catalog.VLANCommands(req)...)

	return d.run(ctx, "provision ONU", commands)
}

// DeprovisionONU removes the ONU and its service mappings.
func (d *Driver) DeprovisionONU(ctx context.Context, frame, slot, port, onuID int) *types.ExecutionResult {
	return d.run(ctx, "deprovision ONU", d.catalog.RemoveONUCommands(frame, slot, port, onuID))
}

// RebootONU power-cycles one ONU.
func (d *Driver) RebootONU(ctx context.Context, frame, slot, port, onuID int) *types.ExecutionResult {
	return d.run(ctx, "reboot ONU", d.catalog.RebootONUCommands(frame, slot, port, onuID))
}

// CreateVLAN creates a chassis VLAN.
func (d *Driver) CreateVLAN(ctx context.Context, vlanID int, name string) *types.ExecutionResult {
	return d.run(ctx, "create VLAN", d.catalog.CreateVLANCommands(vlanID, common.SanitizeDescription(name)))
}

// DeleteVLAN removes a chassis VLAN.
func (d *Driver) DeleteVLAN(ctx context.Context, vlanID int) *types.ExecutionResult {
	return d.run(ctx, "delete VLAN", d.catalog.DeleteVLANCommands(vlanID))
}

// ConfigureVLANTrunk sets the VLAN handling of a physical uplink port.
// The port name is validated before any command is built.
func (d *Driver) ConfigureVLANTrunk(ctx context.Context, req model.TrunkRequest) *types.ExecutionResult {
	if err := common.ValidatePortName(req.PortName); err != nil {
		return rejected("configure trunk", err.Error())
	}
	return d.run(ctx, "configure trunk", d.catalog.TrunkCommands(req))
}

// ProvisionTR069 pushes the ACS bootstrap parameters onto the OLT.
func (d *Driver) ProvisionTR069(ctx context.Context, req model.TR069Bootstrap) *types.ExecutionResult {
	for _, value := range []string{req.URL, req.Username, req.Password, req.ProfileName} {
		if strings.ContainsAny(value, " \t\r\n\"'") {
			return rejected("provision TR-069", fmt.Sprintf("parameter %q contains unsafe characters", value))
		}
	}
	return d.run(ctx, "provision TR-069", d.catalog.TR069Commands(req))
}

// SaveConfig persists the running configuration.
func (d *Driver) SaveConfig(ctx context.Context) *types.ExecutionResult {
	return d.run(ctx, "save configuration", d.catalog.SaveCommands())
}

// DiscoverONUs lists unprovisioned ONUs waiting on the PON ports. A
// simulated session produces no output and therefore no records.
func (d *Driver) DiscoverONUs(ctx context.Context) ([]model.ONUDiscovery, error) {
	commands := d.catalog.DiscoverCommands()
	results, err := d.executor.Execute(ctx, commands)
	if err != nil {
		return nil, fmt.Errorf("running discovery commands: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	records := d.catalog.ParseDiscovery(results[len(results)-1].Output)
	d.logger.Info("ONU discovery finished", zap.Int("found", len(records)))
	return records, nil
}

// run executes one prepared batch and folds the outcome into the
// uniform result record. An empty batch is a successful no-op.
func (d *Driver) run(ctx context.Context, operation string, commands []string) *types.ExecutionResult {
	result := &types.ExecutionResult{Commands: commands}

	if len(commands) == 0 {
		result.Success = true
		result.Message = operation + ": nothing to do"
		result.Timestamp = time.Now()
		return result
	}

	results, err := d.executor.Execute(ctx, commands)
	result.Results = results
	result.Timestamp = time.Now()

	if err != nil {
		result.Error = err.Error()
		result.Message = operation + " failed"
		d.logger.Error(operation+" failed",
			zap.Int("commands", len(commands)),
			zap.Int("executed", len(results)),
			zap.Error(err))
		return result
	}

	result.Success = true
	result.Message = operation + " completed"
	d.logger.Info(operation+" completed", zap.Int("commands", len(commands)))
	return result
}

// rejected reports a validation failure without touching the device.
func rejected(operation, reason string) *types.ExecutionResult {
	return &types.ExecutionResult{
		Message:   operation + " rejected",
		Error:     reason,
		Timestamp: time.Now(),
	}
}
