package zte

import (
	"math"
	"testing"

	"github.com/nanoncore/nano-access/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestConvertRxPower(t *testing.T) {
	tests := []struct {
		name string
		raw  int64
		want float64
	}{
		{"low half", 2500, -25.0},
		{"mid range", 3500, -23.0},
		{"wrapped negative", 64000, -33.072},
		{"negative raw is invalid", -1, InvalidPowerDBm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertRxPower(tt.raw); !almostEqual(got, tt.want) {
				t.Errorf("ConvertRxPower(%d) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStatusFromPhase(t *testing.T) {
	tests := []struct {
		phase int64
		want  string
	}{
		{PhaseWorking, model.ONUStatusOnline},
		{PhaseLOS, model.ONUStatusLOS},
		{PhaseLogging, model.ONUStatusOffline},
		{PhaseDyingGasp, model.ONUStatusOffline},
		{PhaseOffline, model.ONUStatusOffline},
		{99, model.ONUStatusOffline},
	}

	for _, tt := range tests {
		if got := StatusFromPhase(tt.phase); got != tt.want {
			t.Errorf("StatusFromPhase(%d) = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestPhaseName(t *testing.T) {
	if got := PhaseName(PhaseWorking); got != "working" {
		t.Errorf("PhaseName(4) = %q, want %q", got, "working")
	}
	if got := PhaseName(99); got != "unknown(99)" {
		t.Errorf("PhaseName(99) = %q, want %q", got, "unknown(99)")
	}
}

func TestDecodeIfIndex(t *testing.T) {
	shelf, slot, port := DecodeIfIndex(0x00010203)
	if shelf != 1 || slot != 2 || port != 3 {
		t.Errorf("DecodeIfIndex(0x00010203) = (%d, %d, %d), want (1, 2, 3)", shelf, slot, port)
	}
}

func TestPONPortName(t *testing.T) {
	if got := PONPortName(0x00010203); got != "gpon-olt_1/2/3" {
		t.Errorf("PONPortName(0x00010203) = %q, want %q", got, "gpon-olt_1/2/3")
	}
	if got := PONPortName(0); got != "ifIndex-0" {
		t.Errorf("PONPortName(0) = %q, want %q", got, "ifIndex-0")
	}
}

func TestDecodeSerial(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"binary tail", []byte{'Z', 'T', 'E', 'G', 0x12, 0x34, 0xAB, 0xCD}, "ZTEG1234ABCD"},
		{"printable", []byte("ZTEG12345678"), "ZTEG12345678"},
		{"string passthrough", " ZTEG00000001 ", "ZTEG00000001"},
		{"short binary", []byte{0x01, 0x02}, "0102"},
		{"empty", []byte{}, ""},
		{"unsupported type", 42, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeSerial(tt.value); got != tt.want {
				t.Errorf("DecodeSerial(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseONUIndex(t *testing.T) {
	tests := []struct {
		name        string
		index       string
		wantIfIndex int
		wantOnuID   int
		wantErr     bool
	}{
		{"two components", "285278465.1", 285278465, 1, false},
		{"service component dropped", "285278465.1.1", 285278465, 1, false},
		{"single component", "42", 0, 0, true},
		{"not numeric", "abc.1", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ifIndex, onuID, err := ParseONUIndex(tt.index)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseONUIndex(%q) error = %v, wantErr %v", tt.index, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if ifIndex != tt.wantIfIndex || onuID != tt.wantOnuID {
				t.Errorf("ParseONUIndex(%q) = (%d, %d), want (%d, %d)",
					tt.index, ifIndex, onuID, tt.wantIfIndex, tt.wantOnuID)
			}
		})
	}
}

func TestIsC3xx(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"C320", true},
		{"c300", true},
		{"ZXA10 C320", true},
		{"C620", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isC3xx(tt.model); got != tt.want {
			t.Errorf("isC3xx(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}

func TestFirmwareFromDescr(t *testing.T) {
	tests := []struct {
		name  string
		descr string
		want  string
	}{
		{"ZXAN description", "ZXA10 C320 Version V2.1.0 Software", "V2.1.0"},
		{"no version token", "Some other device", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirmwareFromDescr(tt.descr); got != tt.want {
				t.Errorf("FirmwareFromDescr(%q) = %q, want %q", tt.descr, got, tt.want)
			}
		})
	}
}
