package types

import (
	"context"
	"time"

	"github.com/nanoncore/nano-access/model"
)

// Protocol represents the transport used to manage a device
type Protocol string

const (
	ProtocolTelnet Protocol = "telnet"
	ProtocolSSH    Protocol = "ssh"
	ProtocolSNMP   Protocol = "snmp"
)

// Vendor represents the OLT vendor
type Vendor string

const (
	VendorHuawei Vendor = "huawei"
	VendorZTE    Vendor = "zte"
	VendorMock   Vendor = "mock" // For testing/simulation
)

// ExecutionMode selects how command batches are executed
type ExecutionMode string

const (
	// ModeSimulation logs the would-be commands and reports success
	ModeSimulation ExecutionMode = "simulation"

	// ModeReal opens a CLI session and replays the commands on the device
	ModeReal ExecutionMode = "real"
)

// EquipmentConfig contains configuration for a managed device connection
type EquipmentConfig struct {
	// Name is a unique identifier for this equipment
	Name string

	// Vendor is the equipment vendor
	Vendor Vendor

	// Address is the management IP/hostname
	Address string

	// Port is the CLI management port (default per protocol: 23 telnet, 22 ssh)
	Port int

	// Protocol is the CLI transport
	Protocol Protocol

	// Username for CLI authentication
	Username string

	// Password for CLI authentication
	Password string

	// EnablePassword for privileged mode, when the device asks for one
	EnablePassword string

	// SNMPPort is the SNMP agent port (default 161)
	SNMPPort int

	// SNMPCommunity is the read community
	SNMPCommunity string

	// SNMPWriteCommunity is the write community, when set operations are needed
	SNMPWriteCommunity string

	// Timeout for blocking operations (dial, prompt wait, SNMP request)
	Timeout time.Duration

	// InterCommandDelay is the pause between commands in a batch
	InterCommandDelay time.Duration

	// Metadata contains vendor-specific configuration
	// (e.g. "snmp_version": "2c", "onu_type": "ZTE-F660")
	Metadata map[string]string
}

// CLIExecutor is a stateful session against one device's command line.
// Implementations own exactly one underlying connection and must not be
// shared across concurrent callers.
type CLIExecutor interface {
	// Connect opens the transport connection
	Connect(ctx context.Context) error

	// Login authenticates against the device's login/password prompts
	Login(ctx context.Context, username, password string) error

	// ExecCommand writes one command line and blocks until the shell
	// prompt reappears or timeout elapses
	ExecCommand(ctx context.Context, command string, timeout time.Duration) (string, error)

	// ExecCommands runs the list sequentially with delay between commands,
	// stopping at the first failure and returning the partial result list
	ExecCommands(ctx context.Context, commands []string, delay time.Duration) ([]CommandResult, error)

	// Disconnect closes the connection, best-effort
	Disconnect() error

	// IsConnected returns true while the session can execute commands
	IsConnected() bool
}

// SNMPExecutor performs scalar and subtree queries against one device
type SNMPExecutor interface {
	// GetSNMP retrieves the given OIDs in one request
	GetSNMP(ctx context.Context, oids []string) (map[string]interface{}, error)

	// WalkSNMP walks an OID subtree, keyed by the index suffix below the base
	WalkSNMP(ctx context.Context, oid string) (map[string]interface{}, error)

	// TestConnection probes the agent with a single cheap GET.
	// Returns false instead of an error on any failure.
	TestConnection(ctx context.Context) bool

	// Close releases the underlying socket
	Close() error
}

// CommandCatalog builds vendor CLI command sequences. Implementations are
// pure: no I/O, deterministic output for identical input.
type CommandCatalog interface {
	// Vendor identifies which CLI dialect the catalog emits
	Vendor() Vendor

	// AddONUCommands registers an ONU by serial on its PON position
	AddONUCommands(req model.ProvisionRequest) []string

	// ServiceCommands maps the service profile (bandwidth, VLAN, GEM/TCONT)
	// onto the ONU. Nil profile yields an empty list.
	ServiceCommands(req model.ProvisionRequest) []string

	// VLANCommands applies the ONU-side VLAN (native/PVID on the ONU port).
	// Nil profile yields an empty list.
	VLANCommands(req model.ProvisionRequest) []string

	// RemoveONUCommands deletes the ONU and its service mappings
	RemoveONUCommands(frame, slot, port, onuID int) []string

	// RebootONUCommands power-cycles one ONU
	RebootONUCommands(frame, slot, port, onuID int) []string

	// CreateVLANCommands creates a chassis VLAN
	CreateVLANCommands(vlanID int, name string) []string

	// DeleteVLANCommands removes a chassis VLAN
	DeleteVLANCommands(vlanID int) []string

	// TrunkCommands configures an uplink port as trunk/access/hybrid
	// with an allowed-VLAN list and optional native VLAN
	TrunkCommands(req model.TrunkRequest) []string

	// TR069Commands pushes ACS bootstrap parameters onto the OLT
	TR069Commands(req model.TR069Bootstrap) []string

	// DiscoverCommands lists unprovisioned ONUs waiting on the PON ports
	DiscoverCommands() []string

	// ParseDiscovery extracts discovery records from DiscoverCommands output
	ParseDiscovery(output string) []model.ONUDiscovery

	// SaveCommands persists the running configuration
	SaveCommands() []string
}

// OLTMonitor reads telemetry from one OLT over SNMP
type OLTMonitor interface {
	// GetSystemInfo fetches standard and vendor system data concurrently;
	// either batch failing degrades the result instead of failing the call
	GetSystemInfo(ctx context.Context) (*model.SystemInfo, error)

	// GetONUCount sums the per-PON-port ONU counters
	GetONUCount(ctx context.Context) (int, error)

	// GetONUOpticalPower reads RX/TX power and distance for one ONU
	GetONUOpticalPower(ctx context.Context, ponPort, onuID int) (*model.OpticalReading, error)

	// RefreshONUs polls the whole ONU table in one walk and correlates the
	// rows back to the given records by PON port and ONU ID. Records with
	// no matching row are presumed offline.
	RefreshONUs(ctx context.Context, onus []model.ONU) ([]model.ONU, error)

	// TestConnection probes the agent, never errors
	TestConnection(ctx context.Context) bool
}

// CommandResult is the outcome of one CLI command
type CommandResult struct {
	// Command is the literal command line sent
	Command string `json:"command"`

	// Output is the captured text between command echo and next prompt
	Output string `json:"output"`

	// Success is false when the command failed or timed out
	Success bool `json:"success"`

	// Error holds the failure description when Success is false
	Error string `json:"error,omitempty"`
}

// ExecutionResult is the uniform record returned by every high-level OLT
// operation. Operations never raise; the caller always gets a terminal
// answer.
type ExecutionResult struct {
	// Success is true when every command in the batch succeeded
	Success bool `json:"success"`

	// Message is a human-readable summary
	Message string `json:"message"`

	// Commands is the full list that was (or would have been) sent
	Commands []string `json:"commands"`

	// Results holds per-command outcomes, partial on failure
	Results []CommandResult `json:"results,omitempty"`

	// Error holds the first failure, empty on success
	Error string `json:"error,omitempty"`

	// Timestamp is when the operation finished
	Timestamp time.Time `json:"timestamp"`
}
