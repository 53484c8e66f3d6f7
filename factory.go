package access

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nanoncore/nano-access/drivers/mock"
	"github.com/nanoncore/nano-access/drivers/snmp"
	"github.com/nanoncore/nano-access/olt"
	"github.com/nanoncore/nano-access/vendors/common"
	"github.com/nanoncore/nano-access/vendors/huawei"
	"github.com/nanoncore/nano-access/vendors/zte"
)

// CapabilityMatrix defines what each vendor supports
var CapabilityMatrix = map[Vendor]VendorCapabilities{
	VendorHuawei: {
		PrimaryProtocol: ProtocolTelnet,
		CLIProtocols: []Protocol{
			ProtocolTelnet,
			ProtocolSSH,
		},
		TelemetryMethod: ProtocolSNMP,
	},
	VendorZTE: {
		PrimaryProtocol: ProtocolTelnet,
		CLIProtocols: []Protocol{
			ProtocolTelnet,
			ProtocolSSH,
		},
		TelemetryMethod: ProtocolSNMP,
	},
	VendorMock: {
		PrimaryProtocol: ProtocolTelnet,
		CLIProtocols: []Protocol{
			ProtocolTelnet,
			ProtocolSSH,
		},
		// no SNMP agent in the simulator
		TelemetryMethod: "",
	},
}

// VendorCapabilities defines what protocols a vendor supports
type VendorCapabilities struct {
	PrimaryProtocol Protocol
	CLIProtocols    []Protocol

	// TelemetryMethod is empty when no monitor is available
	TelemetryMethod Protocol
}

// NewCatalog returns the vendor's command catalog. The mock vendor
// speaks the ZXAN dialect so its scripted discovery output stays
// parseable.
func NewCatalog(vendor Vendor) (CommandCatalog, error) {
	switch vendor {
	case VendorHuawei:
		return huawei.NewCatalog(), nil
	case VendorZTE, VendorMock:
		return zte.NewCatalog(), nil
	default:
		return nil, fmt.Errorf("unsupported vendor: %s", vendor)
	}
}

// NewOLTDriver builds the provisioning driver for one chassis. Mode
// selects between logging the command batches and replaying them over
// a CLI session; empty mode means real execution.
func NewOLTDriver(config *EquipmentConfig, mode ExecutionMode, logger *zap.Logger) (*olt.Driver, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.Protocol == "" {
		caps := CapabilityMatrix[config.Vendor]
		config.Protocol = caps.PrimaryProtocol
	}

	catalog, err := NewCatalog(config.Vendor)
	if err != nil {
		return nil, err
	}

	var executor olt.Executor
	switch mode {
	case ModeSimulation:
		executor = olt.NewSimulationExecutor(logger)
	case ModeReal, "":
		if config.Vendor == VendorMock {
			executor = olt.NewSessionExecutorWithOpener(config, func() (CLIExecutor, error) {
				return mock.NewDriver(config)
			}, logger)
		} else {
			executor = olt.NewSessionExecutor(config, logger)
		}
	default:
		return nil, fmt.Errorf("unsupported execution mode: %s", mode)
	}

	return olt.NewDriver(catalog, executor, logger), nil
}

// NewMonitor builds the SNMP telemetry adapter for one chassis. The
// ZTE adapter picks its OID branch from the "olt_model" metadata key.
func NewMonitor(config *EquipmentConfig, logger *zap.Logger) (OLTMonitor, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	client, err := snmp.NewClient(config, logger)
	if err != nil {
		return nil, err
	}

	switch config.Vendor {
	case VendorHuawei:
		return huawei.NewAdapter(client, logger), nil
	case VendorZTE:
		oltModel := common.MetadataStringDefault(config.Metadata, "", "olt_model", "model")
		return zte.NewAdapter(client, logger, oltModel), nil
	default:
		client.Close()
		return nil, fmt.Errorf("no telemetry adapter for vendor: %s", config.Vendor)
	}
}

// GetSupportedVendors returns a list of all supported vendors
func GetSupportedVendors() []Vendor {
	vendors := make([]Vendor, 0, len(CapabilityMatrix))
	for v := range CapabilityMatrix {
		vendors = append(vendors, v)
	}
	return vendors
}

// GetVendorCapabilities returns the capabilities for a vendor
func GetVendorCapabilities(vendor Vendor) (VendorCapabilities, bool) {
	caps, ok := CapabilityMatrix[vendor]
	return caps, ok
}
