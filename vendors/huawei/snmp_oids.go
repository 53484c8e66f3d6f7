package huawei

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-access/vendors/common"
)

// Huawei GPON MIB OIDs for the SmartAX MA5600T/MA5683T/MA5800 series.
// Reference: https://ixnfo.com/oid-i-mib-dlya-huawei-olt-i-onu.html

const (
	// Standard MIB-II System OIDs (RFC 1213)
	OIDSysDescr  = "1.3.6.1.2.1.1.1.0" // System description
	OIDSysUpTime = "1.3.6.1.2.1.1.3.0" // System uptime in hundredths of seconds
	OIDSysName   = "1.3.6.1.2.1.1.5.0" // System name

	// SmartAX system telemetry
	OIDSmartAXCPU         = "1.3.6.1.4.1.2011.6.128.1.1.2.98.1.1.1.1" // CPU utilization %
	OIDSmartAXMemory      = "1.3.6.1.4.1.2011.6.128.1.1.2.98.1.2.1.1" // Memory utilization %
	OIDSmartAXTemperature = "1.3.6.1.4.1.2011.2.6.7.1.1.2.1.10"       // Board temperature in Celsius

	// ONU info table (1.3.6.1.4.1.2011.6.128.1.1.2.43.1.x)
	// Index: <portIndex>.<onuIndex>
	// Serial is hex-encoded ("485754430011D168" = HWTC0011D168)
	OIDOnuSerialNumber = "1.3.6.1.4.1.2011.6.128.1.1.2.43.1.3"
	OIDOnuRunStatus    = "1.3.6.1.4.1.2011.6.128.1.1.2.46.1.15" // 1=online, 2=offline
	OIDOnuDistance     = "1.3.6.1.4.1.2011.6.128.1.1.2.43.1.12" // Distance in meters

	// ONU optical parameters (1.3.6.1.4.1.2011.6.128.1.1.2.51.1.x)
	// Index: <portIndex>.<onuIndex>
	// Value 2147483647 (0x7FFFFFFF) means offline/no reading
	OIDOnuTemperature = "1.3.6.1.4.1.2011.6.128.1.1.2.51.1.1" // Temperature (value / 256 C)
	OIDOnuTxPower     = "1.3.6.1.4.1.2011.6.128.1.1.2.51.1.3" // Tx power (value * 0.01 dBm)
	OIDOnuRxPower     = "1.3.6.1.4.1.2011.6.128.1.1.2.51.1.4" // Rx power (value * 0.01 dBm)
	OIDOnuVoltage     = "1.3.6.1.4.1.2011.6.128.1.1.2.51.1.5" // Voltage (value * 0.001 V)
	OIDOltRxPower     = "1.3.6.1.4.1.2011.6.128.1.1.2.51.1.6" // OLT Rx from ONU ((value-10000)*0.01 dBm)

	// Authorized ONT count per PON port
	OIDOnuCountPerPort = "1.3.6.1.4.1.2011.6.128.1.1.2.21.1.12"
)

// firmwareRe extracts the version token from sysDescr
// (e.g. "MA5683T V800R013C10" -> "800R013C10").
var firmwareRe = regexp.MustCompile(`V(\d+R\d+C\d+)`)

// FirmwareFromDescr pattern-matches the firmware version out of sysDescr.
// Returns "" when the description carries no recognizable token.
func FirmwareFromDescr(descr string) string {
	if match := firmwareRe.FindStringSubmatch(descr); len(match) > 1 {
		return match[1]
	}
	return ""
}

// CompositeOID appends the <ponPort>.<onuID> index to a table base OID.
func CompositeOID(base string, ponPort, onuID int) string {
	return fmt.Sprintf("%s.%d.%d", base, ponPort, onuID)
}

// ConvertOpticalPower converts a raw power value to dBm (value * 0.01).
// The invalid marker converts to -100.
func ConvertOpticalPower(rawValue int64) float64 {
	if rawValue == common.SNMPInvalidValue {
		return -100.0
	}
	return float64(rawValue) * 0.01
}

// ConvertOltRxPower converts the OLT-side Rx reading to dBm
// ((value - 10000) * 0.01).
func ConvertOltRxPower(rawValue int64) float64 {
	if rawValue == common.SNMPInvalidValue {
		return -100.0
	}
	return float64(rawValue-10000) * 0.01
}

// ConvertVoltage converts a raw voltage value to Volts (value * 0.001).
func ConvertVoltage(rawValue int64) float64 {
	if rawValue == common.SNMPInvalidValue {
		return 0.0
	}
	return float64(rawValue) * 0.001
}

// ConvertTemperature converts a raw ONU temperature to Celsius (value / 256).
func ConvertTemperature(rawValue int64) float64 {
	if rawValue == common.SNMPInvalidValue || rawValue == 0 {
		return 0.0
	}
	return float64(rawValue) / 256.0
}

// IsOnuOnline reports online status from the raw Rx power: the chassis
// answers the invalid marker for offline units.
func IsOnuOnline(rxPowerRaw int64) bool {
	return rxPowerRaw != common.SNMPInvalidValue
}

// DecodeHexSerial converts a hex-encoded ONU serial to readable form:
// the first 8 hex chars are the ASCII vendor ID, the rest stays hex
// ("485754430011D168" -> "HWTC0011D168"). Serials already in ASCII form
// pass through unchanged.
func DecodeHexSerial(hexSerial string) string {
	if len(hexSerial) < 8 {
		return hexSerial
	}
	if isASCIISerial(hexSerial) {
		return hexSerial
	}

	vendorHex := hexSerial[:8]
	vendorID := ""
	for i := 0; i+2 <= len(vendorHex); i += 2 {
		b := hexToByte(vendorHex[i : i+2])
		if b >= 32 && b <= 126 {
			vendorID += string(rune(b))
		}
	}

	return vendorID + hexSerial[8:]
}

// isASCIISerial reports whether the serial already starts with the plain
// 4-letter vendor prefix instead of hex.
func isASCIISerial(serial string) bool {
	if len(serial) < 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		c := serial[i]
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func hexToByte(hex string) byte {
	var b byte
	for _, c := range hex {
		b <<= 4
		switch {
		case c >= '0' && c <= '9':
			b |= byte(c - '0')
		case c >= 'A' && c <= 'F':
			b |= byte(c - 'A' + 10)
		case c >= 'a' && c <= 'f':
			b |= byte(c - 'a' + 10)
		}
	}
	return b
}

// ParseONUIndex splits a walked table index into its PON port index and
// ONU ID. Handles the 2-component "portIndex.onuIndex" form from real
// chassis and the 3-component "frame.portIndex.onuIndex" form some
// simulators emit.
func ParseONUIndex(index string) (ponPort, onuID int, err error) {
	index = strings.TrimPrefix(index, ".")
	parts := strings.Split(index, ".")

	switch len(parts) {
	case 2:
		ponPort, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid ONU index %q", index)
		}
		onuID, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid ONU index %q", index)
		}
	case 3:
		ponPort, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid ONU index %q", index)
		}
		onuID, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid ONU index %q", index)
		}
	default:
		return 0, 0, fmt.Errorf("invalid ONU index %q: expected 2 or 3 components", index)
	}

	return ponPort, onuID, nil
}

// DecodePortIndex decomposes a Huawei port index into frame, slot and
// port (frame = idx>>16, slot = (idx>>8)&0xFF, port = idx&0xFF).
func DecodePortIndex(portIndex int) (frame, slot, port int) {
	return (portIndex >> 16) & 0xFF, (portIndex >> 8) & 0xFF, portIndex & 0xFF
}
