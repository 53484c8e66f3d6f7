// Package model contains the plain data records exchanged with the
// surrounding application. The records carry no behavior beyond small
// accessors; storage and lifecycle belong to the caller.
package model

import (
	"fmt"
	"time"
)

// ONU operational states as stored on the record.
const (
	ONUStatusOnline  = "online"
	ONUStatusOffline = "offline"
	ONUStatusLOS     = "los"
)

// OLTDevice identifies one managed OLT chassis and how to reach it.
// Created and edited by the surrounding application; read-only here.
type OLTDevice struct {
	// Name is the unique identifier for this OLT
	Name string

	// Vendor is "huawei" or "zte"
	Vendor string

	// Address is the management IP/hostname
	Address string

	// TelnetPort is the CLI port (default 23)
	TelnetPort int

	// Username and Password authenticate the CLI session
	Username string
	Password string

	// EnablePassword unlocks privileged mode when the device asks
	EnablePassword string

	// SNMPPort is the agent port (default 161)
	SNMPPort int

	// SNMPReadCommunity and SNMPWriteCommunity are the v1/v2c communities
	SNMPReadCommunity  string
	SNMPWriteCommunity string

	// ACSURL is the TR-069 server the OLT pushes to its ONUs
	ACSURL string

	// ACSUsername and ACSPassword are the bootstrap credentials
	ACSUsername string
	ACSPassword string

	// InformInterval is the periodic Inform interval in seconds
	InformInterval int

	// AutoProvision enables provisioning newly discovered ONUs
	AutoProvision bool

	// DefaultProfile names the service profile used by auto-provisioning
	DefaultProfile string
}

// ONU is one optical network unit attached to a PON port.
// Serial is immutable and vendor-assigned; telemetry fields are refreshed
// by the SNMP poller and written back by the caller.
type ONU struct {
	// Serial is the vendor-assigned serial number (e.g. "HWTC12AB34CD")
	Serial string `json:"serial"`

	// PONPort is the vendor's numeric PON port index
	PONPort int `json:"pon_port"`

	// ONUID is the unit's index within the PON port
	ONUID int `json:"onu_id"`

	// Status is online/offline/los
	Status string `json:"status"`

	// RxPowerDBm is the receive optical power
	RxPowerDBm float64 `json:"rx_power_dbm"`

	// TxPowerDBm is the transmit optical power
	TxPowerDBm float64 `json:"tx_power_dbm"`

	// DistanceM is the measured fiber distance in meters
	DistanceM int `json:"distance_m"`

	// LastSeen is when telemetry was last refreshed
	LastSeen time.Time `json:"last_seen,omitempty"`
}

// Key returns the composite index the vendor ONU tables use.
func (o ONU) Key() string {
	return fmt.Sprintf("%d.%d", o.PONPort, o.ONUID)
}

// ServiceProfile parameterizes provisioning commands. Read-only input to
// the command catalogs.
type ServiceProfile struct {
	// Name identifies the profile
	Name string `json:"name"`

	// DownloadMbps and UploadMbps are the rate limits
	DownloadMbps int `json:"download_mbps"`
	UploadMbps   int `json:"upload_mbps"`

	// VLAN is the service VLAN carried to the subscriber
	VLAN int `json:"vlan"`

	// GemPort is the GPON encapsulation port (default 1)
	GemPort int `json:"gemport,omitempty"`

	// TCONT is the upstream traffic container (default 1)
	TCONT int `json:"tcont,omitempty"`
}

// ProvisionRequest carries everything the catalogs need to register one
// ONU and map its service. Profile may be nil: builders then return an
// empty command list instead of failing.
type ProvisionRequest struct {
	// Frame, Slot, Port locate the PON port on the chassis
	Frame int `json:"frame"`
	Slot  int `json:"slot"`
	Port  int `json:"port"`

	// ONUID is the unit index to assign on that port
	ONUID int `json:"onu_id"`

	// Serial authenticates the ONU (sn-auth)
	Serial string `json:"serial"`

	// Description is a free-text label, already sanitized by the caller
	Description string `json:"description,omitempty"`

	// Profile carries bandwidth, VLAN and GEM/TCONT mapping
	Profile *ServiceProfile `json:"profile,omitempty"`

	// LineProfileID and ServiceProfileID select preconfigured chassis
	// templates (Huawei; default 1)
	LineProfileID    int `json:"line_profile_id,omitempty"`
	ServiceProfileID int `json:"service_profile_id,omitempty"`

	// ONUType names the unit model for vendors that register by type (ZTE)
	ONUType string `json:"onu_type,omitempty"`
}

// Trunk port modes.
const (
	PortModeTrunk  = "trunk"
	PortModeAccess = "access"
	PortModeHybrid = "hybrid"
)

// TrunkRequest configures a physical uplink port's VLAN handling.
type TrunkRequest struct {
	// PortName is the physical port (e.g. "gei_1/1/1"), validated by the
	// caller before it gets here
	PortName string `json:"port_name"`

	// Mode is trunk/access/hybrid
	Mode string `json:"mode"`

	// VLANs is the allowed-VLAN list
	VLANs []int `json:"vlans"`

	// NativeVLAN is the untagged/PVID VLAN, 0 when unset
	NativeVLAN int `json:"native_vlan,omitempty"`
}

// TR069Bootstrap carries the ACS parameters the OLT relays to its ONUs.
type TR069Bootstrap struct {
	// URL is the ACS endpoint
	URL string `json:"url"`

	// Username and Password authenticate the ONUs against the ACS
	Username string `json:"username"`
	Password string `json:"password"`

	// InformInterval is the periodic Inform interval in seconds
	InformInterval int `json:"inform_interval"`

	// ProfileName labels the server profile on the chassis
	ProfileName string `json:"profile_name,omitempty"`

	// Frame, Slot, Port, ONUID bind the profile to one unit when set;
	// ONUID < 0 means chassis-wide
	Frame int `json:"frame,omitempty"`
	Slot  int `json:"slot,omitempty"`
	Port  int `json:"port,omitempty"`
	ONUID int `json:"onu_id,omitempty"`
}

// SystemInfo is the merged result of the standard and vendor SNMP batches.
// A failed batch leaves its fields at zero values rather than failing the
// whole read.
type SystemInfo struct {
	// Name and Description come from MIB-2 sysName/sysDescr
	Name        string `json:"name"`
	Description string `json:"description"`

	// Firmware is pattern-matched out of the description, best-effort
	Firmware string `json:"firmware,omitempty"`

	// UptimeSeconds is sysUpTime converted from centiseconds
	UptimeSeconds int64 `json:"uptime_seconds"`

	// CPUPercent, MemoryPercent, Temperature come from the vendor branch
	CPUPercent    float64 `json:"cpu_percent,omitempty"`
	MemoryPercent float64 `json:"memory_percent,omitempty"`
	Temperature   float64 `json:"temperature_c,omitempty"`
}

// OpticalReading is one ONU's optical measurements.
type OpticalReading struct {
	PONPort int `json:"pon_port"`
	ONUID   int `json:"onu_id"`

	// RxPowerDBm and TxPowerDBm are converted from the device's
	// hundredths-of-a-dBm encoding
	RxPowerDBm float64 `json:"rx_power_dbm"`
	TxPowerDBm float64 `json:"tx_power_dbm"`

	// DistanceM is the fiber distance in meters, -1 when unknown
	DistanceM int `json:"distance_m"`

	Timestamp time.Time `json:"timestamp"`
}

// ONUDiscovery is one unprovisioned ONU reported by the chassis.
type ONUDiscovery struct {
	// PONPort is the port as printed by the CLI (e.g. "0/1" or "1/1/1")
	PONPort string `json:"pon_port"`

	// Serial is the unit's serial number
	Serial string `json:"serial"`

	// State is the vendor's autofind state string, when printed
	State string `json:"state,omitempty"`

	// DiscoveredAt is when the listing was parsed
	DiscoveredAt time.Time `json:"discovered_at"`
}
