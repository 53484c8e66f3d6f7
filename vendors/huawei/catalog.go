package huawei

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nanoncore/nano-access/model"
	"github.com/nanoncore/nano-access/types"
)

// Catalog builds Huawei SmartAX (MA5600T/MA5683T/MA5800) CLI command
// sequences. All builders are pure; interpolated values are constrained
// upstream by the boundary validation in vendors/common.
//
// AddONUCommands starts from the login shell and ends in config mode, so
// ServiceCommands and VLANCommands can be concatenated directly after it.
// Every other builder is self-contained from the login shell.
type Catalog struct{}

// NewCatalog returns the SmartAX command catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Vendor identifies the CLI dialect.
func (c *Catalog) Vendor() types.Vendor {
	return types.VendorHuawei
}

// AddONUCommands registers the ONU on its PON port with serial-number
// authentication. Line/service profile IDs default to 1, the chassis
// default templates.
func (c *Catalog) AddONUCommands(req model.ProvisionRequest) []string {
	lineProfile := req.LineProfileID
	if lineProfile == 0 {
		lineProfile = 1
	}
	srvProfile := req.ServiceProfileID
	if srvProfile == 0 {
		srvProfile = 1
	}

	add := fmt.Sprintf("ont add %d %d sn-auth %q omci ont-lineprofile-id %d ont-srvprofile-id %d",
		req.Port, req.ONUID, req.Serial, lineProfile, srvProfile)
	if req.Description != "" {
		add += fmt.Sprintf(" desc %q", req.Description)
	}

	return []string{
		"enable",
		"config",
		fmt.Sprintf("interface gpon %d/%d", req.Frame, req.Slot),
		add,
		"quit",
	}
}

// ServiceCommands maps the service VLAN onto the ONU through a service
// port and binds the traffic table when the profile carries bandwidth.
// Assumes config mode (composes after AddONUCommands).
func (c *Catalog) ServiceCommands(req model.ProvisionRequest) []string {
	if req.Profile == nil {
		return nil
	}

	gemport := req.Profile.GemPort
	if gemport == 0 {
		gemport = 1
	}

	commands := []string{
		fmt.Sprintf("service-port vlan %d gpon %d/%d/%d ont %d gemport %d multi-service user-vlan %d tag-transform translate",
			req.Profile.VLAN, req.Frame, req.Slot, req.Port, req.ONUID, gemport, req.Profile.VLAN),
	}

	// Traffic tables are preconfigured on the chassis with IDs matching
	// the downstream rate in Mbps
	if req.Profile.DownloadMbps > 0 {
		commands = append(commands,
			fmt.Sprintf("interface gpon %d/%d", req.Frame, req.Slot),
			fmt.Sprintf("ont traffic-policy %d %d profile-id %d", req.Port, req.ONUID, req.Profile.DownloadMbps),
			"quit",
		)
	}

	return commands
}

// VLANCommands sets the native VLAN on the ONU's first ethernet port.
// Assumes config mode (composes after AddONUCommands).
func (c *Catalog) VLANCommands(req model.ProvisionRequest) []string {
	if req.Profile == nil {
		return nil
	}

	return []string{
		fmt.Sprintf("interface gpon %d/%d", req.Frame, req.Slot),
		fmt.Sprintf("ont port native-vlan %d %d eth 1 vlan %d priority 0", req.Port, req.ONUID, req.Profile.VLAN),
		"quit",
	}
}

// RemoveONUCommands deletes the ONU; the chassis drops its service ports
// with it.
func (c *Catalog) RemoveONUCommands(frame, slot, port, onuID int) []string {
	return []string{
		"enable",
		"config",
		fmt.Sprintf("interface gpon %d/%d", frame, slot),
		fmt.Sprintf("ont delete %d %d", port, onuID),
		"quit",
		"quit",
	}
}

// RebootONUCommands power-cycles the ONU.
func (c *Catalog) RebootONUCommands(frame, slot, port, onuID int) []string {
	return []string{
		"enable",
		"config",
		fmt.Sprintf("interface gpon %d/%d", frame, slot),
		fmt.Sprintf("ont reset %d %d", port, onuID),
		"quit",
		"quit",
	}
}

// CreateVLANCommands creates a smart VLAN on the chassis.
func (c *Catalog) CreateVLANCommands(vlanID int, name string) []string {
	commands := []string{
		"enable",
		"config",
		fmt.Sprintf("vlan %d smart", vlanID),
	}
	if name != "" {
		commands = append(commands, fmt.Sprintf("vlan desc %d description %s", vlanID, name))
	}
	return append(commands, "quit")
}

// DeleteVLANCommands removes a chassis VLAN.
func (c *Catalog) DeleteVLANCommands(vlanID int) []string {
	return []string{
		"enable",
		"config",
		fmt.Sprintf("undo vlan %d", vlanID),
		"quit",
	}
}

// TrunkCommands tags the allowed VLANs on an upstream port and sets its
// native VLAN under the GIU interface. Access mode only sets the native
// VLAN. PortName is the frame/slot/port triplet ("0/19/0").
func (c *Catalog) TrunkCommands(req model.TrunkRequest) []string {
	frame, slot, port, ok := splitFSP(req.PortName)

	commands := []string{"enable", "config"}

	if req.Mode != model.PortModeAccess {
		for _, vlan := range req.VLANs {
			if ok {
				commands = append(commands, fmt.Sprintf("port vlan %d %d/%d %d", vlan, frame, slot, port))
			} else {
				commands = append(commands, fmt.Sprintf("port vlan %d %s", vlan, req.PortName))
			}
		}
	}

	native := req.NativeVLAN
	if req.Mode == model.PortModeAccess && native == 0 && len(req.VLANs) > 0 {
		native = req.VLANs[0]
	}
	if native > 0 && ok {
		commands = append(commands,
			fmt.Sprintf("interface giu %d/%d", frame, slot),
			fmt.Sprintf("native-vlan %d %d", native, port),
			"quit",
		)
	}

	return append(commands, "quit")
}

// TR069Commands installs an ACS server profile and binds it to one ONU
// when the request names a unit (ONUID >= 0).
func (c *Catalog) TR069Commands(req model.TR069Bootstrap) []string {
	profile := req.ProfileName
	if profile == "" {
		profile = "acs-default"
	}
	interval := req.InformInterval
	if interval <= 0 {
		interval = 43200
	}

	commands := []string{
		"enable",
		"config",
		fmt.Sprintf("tr069-server-profile add profile-name %s url %s username %s password %s inform-interval %d",
			profile, req.URL, req.Username, req.Password, interval),
	}

	if req.ONUID >= 0 {
		commands = append(commands,
			fmt.Sprintf("interface gpon %d/%d", req.Frame, req.Slot),
			fmt.Sprintf("ont tr069-server-config %d %d profile-name %s", req.Port, req.ONUID, profile),
			"quit",
		)
	}

	return append(commands, "quit")
}

// DiscoverCommands lists ONUs the chassis has seen but not provisioned.
func (c *Catalog) DiscoverCommands() []string {
	return []string{
		"enable",
		"display ont autofind all",
	}
}

// SaveCommands persists the running configuration.
func (c *Catalog) SaveCommands() []string {
	return []string{
		"enable",
		"save",
	}
}

// ParseDiscovery extracts autofind records from "display ont autofind all"
// output. SmartAX prints one key-value block per ONU; a new F/S/P line
// starts the next record. Hex-encoded serials are decoded to the vendor
// text form.
func (c *Catalog) ParseDiscovery(output string) []model.ONUDiscovery {
	var records []model.ONUDiscovery
	var current *model.ONUDiscovery
	now := time.Now()

	flush := func() {
		if current != nil && current.Serial != "" {
			records = append(records, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case strings.EqualFold(key, "F/S/P"):
			flush()
			current = &model.ONUDiscovery{PONPort: value, DiscoveredAt: now}
		case strings.EqualFold(key, "Ont SN") && current != nil:
			// "485754430A2C4F13 (HWTC-0A2C4F13)": the hex form comes
			// first, the decoded hint in parentheses is dropped
			if i := strings.IndexByte(value, ' '); i > 0 {
				value = value[:i]
			}
			current.Serial = DecodeHexSerial(value)
		}
	}
	flush()

	return records
}

// splitFSP parses a "frame/slot/port" triplet.
func splitFSP(name string) (frame, slot, port int, ok bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	values := make([]int, 3)
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return 0, 0, 0, false
		}
		values[i] = v
	}
	return values[0], values[1], values[2], true
}

var _ types.CommandCatalog = (*Catalog)(nil)
