package zte

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-access/model"
	"github.com/nanoncore/nano-access/vendors/common"
)

// Standard MIB-2 OIDs.
const (
	OIDSysDescr  = "1.3.6.1.2.1.1.1.0" // System description
	OIDSysUpTime = "1.3.6.1.2.1.1.3.0" // System uptime in hundredths of seconds
	OIDSysName   = "1.3.6.1.2.1.1.5.0" // System name
)

// ZXAN system health tables (ZXAN-SYSTEM-MIB, one row per processor
// board).
const (
	OIDSysProcessorLoad = "1.3.6.1.4.1.3902.1015.2.1.1.3.1.9" // CPU load %
	OIDSysMemUsage      = "1.3.6.1.4.1.3902.1015.2.1.1.2.1.3" // Memory usage %
	OIDSysTemperature   = "1.3.6.1.4.1.3902.1015.2.1.1.4.1.4" // Board temperature in Celsius
)

// C6xx family ONU tables (C620/C650), indexed by <ifIndex>.<onuID>. The
// Rx power table carries a third service index component.
const (
	OIDC6xxOnuSerialNumber = "1.3.6.1.4.1.3902.1082.500.10.2.3.3.1.6"
	OIDC6xxOnuType         = "1.3.6.1.4.1.3902.1082.500.10.2.3.3.1.1"
	OIDC6xxOnuName         = "1.3.6.1.4.1.3902.1082.500.10.2.3.3.1.2"
	OIDC6xxOnuRxPower      = "1.3.6.1.4.1.3902.1082.500.20.2.2.2.1.10"
	OIDC6xxOnuPhaseState   = "1.3.6.1.4.1.3902.1082.500.10.2.3.8.1.4"
)

// C3xx family ONU tables (C300/C320), same indexing as C6xx.
const (
	OIDC3xxOnuSerialNumber = "1.3.6.1.4.1.3902.1012.3.28.1.1.5"
	OIDC3xxOnuType         = "1.3.6.1.4.1.3902.1012.3.28.1.1.1"
	OIDC3xxOnuName         = "1.3.6.1.4.1.3902.1012.3.28.1.1.3"
	OIDC3xxOnuRxPower      = "1.3.6.1.4.1.3902.1012.3.50.12.1.1.10"
	OIDC3xxOnuPhaseState   = "1.3.6.1.4.1.3902.1012.3.28.2.1.4"
)

// InvalidPowerDBm marks an unusable Rx reading.
const InvalidPowerDBm = -40.0

// ONU phase states as reported by the phase-state table.
const (
	PhaseLogging    = 1
	PhaseLOS        = 2
	PhaseSyncMib    = 3
	PhaseWorking    = 4
	PhaseDyingGasp  = 5
	PhaseAuthFailed = 6
	PhaseOffline    = 7
)

var phaseNames = map[int64]string{
	PhaseLogging:    "logging",
	PhaseLOS:        "los",
	PhaseSyncMib:    "syncMib",
	PhaseWorking:    "working",
	PhaseDyingGasp:  "dyingGasp",
	PhaseAuthFailed: "authFailed",
	PhaseOffline:    "offline",
}

// PhaseName renders a phase-state value for logs and discovery records.
func PhaseName(phase int64) string {
	if name, ok := phaseNames[phase]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", phase)
}

// StatusFromPhase maps a phase-state value onto the stored ONU status:
// only working units are online, LOS keeps its own state, everything
// else is offline.
func StatusFromPhase(phase int64) string {
	switch phase {
	case PhaseWorking:
		return model.ONUStatusOnline
	case PhaseLOS:
		return model.ONUStatusLOS
	default:
		return model.ONUStatusOffline
	}
}

// tableSet selects the ONU table branch for one chassis family.
type tableSet struct {
	serial     string
	phaseState string
	rxPower    string
}

func c3xxTables() tableSet {
	return tableSet{
		serial:     OIDC3xxOnuSerialNumber,
		phaseState: OIDC3xxOnuPhaseState,
		rxPower:    OIDC3xxOnuRxPower,
	}
}

func c6xxTables() tableSet {
	return tableSet{
		serial:     OIDC6xxOnuSerialNumber,
		phaseState: OIDC6xxOnuPhaseState,
		rxPower:    OIDC6xxOnuRxPower,
	}
}

// isC3xx reports whether the chassis model belongs to the C3xx family.
func isC3xx(oltModel string) bool {
	m := strings.ToUpper(oltModel)
	return strings.Contains(m, "C300") || strings.Contains(m, "C320")
}

// firmwareRe extracts the version token from sysDescr
// (e.g. "ZXA10 C320 Version V2.1.0" -> "V2.1.0").
var firmwareRe = regexp.MustCompile(`V\d+(?:\.\d+)+`)

// FirmwareFromDescr pattern-matches the firmware version out of
// sysDescr. Returns "" when the description carries no recognizable
// token.
func FirmwareFromDescr(descr string) string {
	return firmwareRe.FindString(descr)
}

// CompositeOID appends the <ifIndex>.<onuID> index to a table base OID.
func CompositeOID(base string, ifIndex, onuID int) string {
	return fmt.Sprintf("%s.%d.%d", base, ifIndex, onuID)
}

// ConvertRxPower converts a raw Rx reading to dBm. The tables encode
// power as an unsigned 16-bit value in 0.002 dB steps offset by -30;
// values above the signed boundary wrap negative.
func ConvertRxPower(raw int64) float64 {
	switch {
	case raw >= 0 && raw <= 32767:
		return float64(raw)*0.002 - 30
	case raw > 32767:
		return float64(raw-65536)*0.002 - 30
	default:
		return InvalidPowerDBm
	}
}

// DecodeSerial renders a serial-number octet string: printable values
// pass through, binary values keep the 4 ASCII vendor bytes and
// hex-encode the rest ("ZTEG" + 0x12 0x34 0xAB 0xCD -> "ZTEG1234ABCD").
func DecodeSerial(value interface{}) string {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		return strings.TrimSpace(v)
	default:
		return ""
	}

	if len(b) == 0 {
		return ""
	}
	if common.IsPrintableASCII(b) {
		return strings.TrimSpace(string(b))
	}
	if len(b) >= 8 {
		return string(b[:4]) + fmt.Sprintf("%X", b[4:])
	}
	return fmt.Sprintf("%X", b)
}

// DecodeIfIndex decomposes a ZXAN interface index into shelf, slot and
// port (shelf = idx>>16, slot = (idx>>8)&0xFF, port = idx&0xFF).
func DecodeIfIndex(ifIndex int) (shelf, slot, port int) {
	return (ifIndex >> 16) & 0xFF, (ifIndex >> 8) & 0xFF, ifIndex & 0xFF
}

// PONPortName renders an interface index as the CLI port name.
func PONPortName(ifIndex int) string {
	shelf, slot, port := DecodeIfIndex(ifIndex)
	if shelf == 0 && slot == 0 && port == 0 {
		return fmt.Sprintf("ifIndex-%d", ifIndex)
	}
	return fmt.Sprintf("gpon-olt_%d/%d/%d", shelf, slot, port)
}

// ParseONUIndex splits a walked table index into interface index and
// ONU ID. The Rx power table appends a service index component, which
// is dropped.
func ParseONUIndex(index string) (ifIndex, onuID int, err error) {
	index = strings.TrimPrefix(index, ".")
	parts := strings.Split(index, ".")

	switch len(parts) {
	case 2:
	case 3:
		parts = parts[:2]
	default:
		return 0, 0, fmt.Errorf("invalid ONU index %q: expected 2 or 3 components", index)
	}

	ifIndex, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid ONU index %q", index)
	}
	onuID, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid ONU index %q", index)
	}
	return ifIndex, onuID, nil
}
