package zte

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nanoncore/nano-access/model"
	"github.com/nanoncore/nano-access/types"
)

// Catalog builds ZTE ZXAN (C300/C320/C6xx) CLI command sequences. All
// builders are pure; interpolated values are constrained upstream by the
// boundary validation in vendors/common.
//
// AddONUCommands starts from the login shell and ends in config mode, so
// ServiceCommands and VLANCommands can be concatenated directly after it.
// Every other builder is self-contained from the login shell.
type Catalog struct{}

// NewCatalog returns the ZXAN command catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Vendor identifies the CLI dialect.
func (c *Catalog) Vendor() types.Vendor {
	return types.VendorZTE
}

// AddONUCommands registers the ONU by serial under its OLT port. The
// type names a chassis ONU template (default ZTE-F660).
func (c *Catalog) AddONUCommands(req model.ProvisionRequest) []string {
	onuType := req.ONUType
	if onuType == "" {
		onuType = "ZTE-F660"
	}

	return []string{
		"enable",
		"configure terminal",
		fmt.Sprintf("interface gpon-olt_%s", oltPort(req)),
		fmt.Sprintf("onu %d type %s sn %s", req.ONUID, onuType, req.Serial),
		"exit",
	}
}

// ServiceCommands maps TCONT, GEM port and the service VLAN under the
// ONU interface. TCONT profiles are preconfigured on the chassis with
// names matching the downstream rate in Mbps.
// Assumes config mode (composes after AddONUCommands).
func (c *Catalog) ServiceCommands(req model.ProvisionRequest) []string {
	if req.Profile == nil {
		return nil
	}

	tcont := req.Profile.TCONT
	if tcont == 0 {
		tcont = 1
	}
	gemport := req.Profile.GemPort
	if gemport == 0 {
		gemport = 1
	}
	tcontProfile := "default"
	if req.Profile.DownloadMbps > 0 {
		tcontProfile = fmt.Sprintf("%dM", req.Profile.DownloadMbps)
	}

	return []string{
		fmt.Sprintf("interface gpon-onu_%s", onuInterface(req)),
		fmt.Sprintf("tcont %d profile %s", tcont, tcontProfile),
		fmt.Sprintf("gemport %d tcont %d", gemport, tcont),
		fmt.Sprintf("service-port 1 vport %d user-vlan %d vlan %d", gemport, req.Profile.VLAN, req.Profile.VLAN),
		"exit",
	}
}

// VLANCommands tags the service VLAN on the ONU's first ethernet port
// through the OMCI management block.
// Assumes config mode (composes after AddONUCommands).
func (c *Catalog) VLANCommands(req model.ProvisionRequest) []string {
	if req.Profile == nil {
		return nil
	}

	return []string{
		fmt.Sprintf("pon-onu-mng gpon-onu_%s", onuInterface(req)),
		fmt.Sprintf("vlan port eth_0/1 mode tag vlan %d", req.Profile.VLAN),
		"exit",
	}
}

// RemoveONUCommands deletes the ONU registration; the chassis drops its
// service configuration with it.
func (c *Catalog) RemoveONUCommands(frame, slot, port, onuID int) []string {
	return []string{
		"enable",
		"configure terminal",
		fmt.Sprintf("interface gpon-olt_%d/%d/%d", shelfOf(frame), slot, port),
		fmt.Sprintf("no onu %d", onuID),
		"exit",
		"exit",
	}
}

// RebootONUCommands power-cycles the ONU through the OMCI management
// block.
func (c *Catalog) RebootONUCommands(frame, slot, port, onuID int) []string {
	return []string{
		"enable",
		"configure terminal",
		fmt.Sprintf("pon-onu-mng gpon-onu_%d/%d/%d:%d", shelfOf(frame), slot, port, onuID),
		"reboot",
		"exit",
		"exit",
	}
}

// CreateVLANCommands creates a chassis VLAN.
func (c *Catalog) CreateVLANCommands(vlanID int, name string) []string {
	commands := []string{
		"enable",
		"configure terminal",
		fmt.Sprintf("vlan %d", vlanID),
	}
	if name != "" {
		commands = append(commands, fmt.Sprintf("name %s", name))
	}
	return append(commands, "exit", "exit")
}

// DeleteVLANCommands removes a chassis VLAN.
func (c *Catalog) DeleteVLANCommands(vlanID int) []string {
	return []string{
		"enable",
		"configure terminal",
		fmt.Sprintf("no vlan %d", vlanID),
		"exit",
	}
}

// TrunkCommands sets the switchport mode and VLAN membership on an
// uplink port (e.g. "gei_1/3/1").
func (c *Catalog) TrunkCommands(req model.TrunkRequest) []string {
	commands := []string{
		"enable",
		"configure terminal",
		fmt.Sprintf("interface %s", req.PortName),
		fmt.Sprintf("switchport mode %s", req.Mode),
	}

	switch req.Mode {
	case model.PortModeAccess:
		vlan := req.NativeVLAN
		if vlan == 0 && len(req.VLANs) > 0 {
			vlan = req.VLANs[0]
		}
		if vlan > 0 {
			commands = append(commands, fmt.Sprintf("switchport access vlan %d", vlan))
		}
	case model.PortModeHybrid:
		if len(req.VLANs) > 0 {
			commands = append(commands,
				fmt.Sprintf("switchport hybrid vlan-allowed add %s tagged", joinVLANs(req.VLANs)))
		}
		if req.NativeVLAN > 0 {
			commands = append(commands, fmt.Sprintf("switchport hybrid native vlan %d", req.NativeVLAN))
		}
	default:
		if len(req.VLANs) > 0 {
			commands = append(commands,
				fmt.Sprintf("switchport trunk vlan-allowed add %s", joinVLANs(req.VLANs)))
		}
		if req.NativeVLAN > 0 {
			commands = append(commands, fmt.Sprintf("switchport trunk native vlan %d", req.NativeVLAN))
		}
	}

	return append(commands, "exit", "exit")
}

// TR069Commands pushes the ACS parameters onto one ONU through the OMCI
// management block. ZXAN binds ACS settings per unit; a chassis-wide
// request (ONUID < 0) yields no commands.
func (c *Catalog) TR069Commands(req model.TR069Bootstrap) []string {
	if req.ONUID < 0 {
		return nil
	}

	interval := req.InformInterval
	if interval <= 0 {
		interval = 43200
	}

	return []string{
		"enable",
		"configure terminal",
		fmt.Sprintf("pon-onu-mng gpon-onu_%d/%d/%d:%d", shelfOf(req.Frame), req.Slot, req.Port, req.ONUID),
		"tr069-mgmt 1 state unlock",
		fmt.Sprintf("tr069-mgmt 1 acs %s validate basic username %s password %s",
			req.URL, req.Username, req.Password),
		fmt.Sprintf("tr069-mgmt 1 inform on interval %d", interval),
		"exit",
		"exit",
	}
}

// DiscoverCommands lists ONUs the chassis has seen but not provisioned.
func (c *Catalog) DiscoverCommands() []string {
	return []string{
		"enable",
		"show gpon onu uncfg",
	}
}

// ParseDiscovery extracts discovery records from "show gpon onu uncfg"
// output. ZXAN prints one columnar row per ONU: index token, serial,
// state.
func (c *Catalog) ParseDiscovery(output string) []model.ONUDiscovery {
	var records []model.ONUDiscovery
	now := time.Now()

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "OnuIndex") || strings.HasPrefix(line, "-") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.Contains(fields[0], "/") {
			continue
		}

		record := model.ONUDiscovery{
			PONPort:      stripPortPrefix(fields[0]),
			Serial:       fields[1],
			DiscoveredAt: now,
		}
		if len(fields) >= 3 {
			record.State = fields[2]
		}
		records = append(records, record)
	}

	return records
}

// SaveCommands persists the running configuration.
func (c *Catalog) SaveCommands() []string {
	return []string{
		"enable",
		"write",
	}
}

// oltPort renders the shelf/slot/port triplet of the OLT-side interface.
func oltPort(req model.ProvisionRequest) string {
	return fmt.Sprintf("%d/%d/%d", shelfOf(req.Frame), req.Slot, req.Port)
}

// onuInterface renders the ONU interface index ("1/2/1:5").
func onuInterface(req model.ProvisionRequest) string {
	return fmt.Sprintf("%s:%d", oltPort(req), req.ONUID)
}

// shelfOf maps the chassis frame to the ZXAN shelf number, which starts
// at 1.
func shelfOf(frame int) int {
	if frame <= 0 {
		return 1
	}
	return frame
}

func joinVLANs(vlans []int) string {
	parts := make([]string, len(vlans))
	for i, vlan := range vlans {
		parts[i] = strconv.Itoa(vlan)
	}
	return strings.Join(parts, ",")
}

// stripPortPrefix drops the interface-type prefix from an index token
// ("gpon-onu_1/2/1:1" -> "1/2/1:1").
func stripPortPrefix(token string) string {
	if i := strings.IndexByte(token, '_'); i >= 0 {
		return token[i+1:]
	}
	return token
}

var _ types.CommandCatalog = (*Catalog)(nil)
