package access

// Re-export types from the types sub-package so callers can use
// access.EquipmentConfig, access.Vendor, etc. without importing both
// packages.

import (
	"github.com/nanoncore/nano-access/types"
)

// Type aliases for the root package surface
type (
	Protocol        = types.Protocol
	Vendor          = types.Vendor
	ExecutionMode   = types.ExecutionMode
	EquipmentConfig = types.EquipmentConfig
	CLIExecutor     = types.CLIExecutor
	SNMPExecutor    = types.SNMPExecutor
	CommandCatalog  = types.CommandCatalog
	OLTMonitor      = types.OLTMonitor
	CommandResult   = types.CommandResult
	ExecutionResult = types.ExecutionResult
)

// Re-export constants
const (
	ProtocolTelnet = types.ProtocolTelnet
	ProtocolSSH    = types.ProtocolSSH
	ProtocolSNMP   = types.ProtocolSNMP

	VendorHuawei = types.VendorHuawei
	VendorZTE    = types.VendorZTE
	VendorMock   = types.VendorMock

	ModeSimulation = types.ModeSimulation
	ModeReal       = types.ModeReal
)
