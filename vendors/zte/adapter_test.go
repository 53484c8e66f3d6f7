package zte

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/nanoncore/nano-access/drivers/mock"
	"github.com/nanoncore/nano-access/model"
)

func newTestAdapter(oltModel string, values map[string]interface{}) (*Adapter, *mock.Agent) {
	agent := mock.NewAgent(values)
	return NewAdapter(agent, zap.NewNop(), oltModel), agent
}

func TestGetSystemInfo(t *testing.T) {
	adapter, _ := newTestAdapter("C320", map[string]interface{}{
		OIDSysDescr:  "ZXA10 C320 Version V2.1.0 Software",
		OIDSysUpTime: uint64(8640000),
		OIDSysName:   "ZXAN-LAB",

		OIDSysProcessorLoad + ".1.1": 23,
		OIDSysMemUsage + ".1.1":      48,
		OIDSysTemperature + ".1.1":   39,
	})

	info, err := adapter.GetSystemInfo(context.Background())
	if err != nil {
		t.Fatalf("GetSystemInfo() error = %v", err)
	}

	if info.Name != "ZXAN-LAB" {
		t.Errorf("Name = %q, want %q", info.Name, "ZXAN-LAB")
	}
	if info.UptimeSeconds != 86400 {
		t.Errorf("UptimeSeconds = %d, want 86400", info.UptimeSeconds)
	}
	if info.Firmware != "V2.1.0" {
		t.Errorf("Firmware = %q, want %q", info.Firmware, "V2.1.0")
	}
	if info.CPUPercent != 23 {
		t.Errorf("CPUPercent = %v, want 23", info.CPUPercent)
	}
}

func TestGetSystemInfoUnreachableAgent(t *testing.T) {
	adapter, agent := newTestAdapter("C320", nil)
	agent.SetFailing(true)

	if _, err := adapter.GetSystemInfo(context.Background()); err == nil {
		t.Error("GetSystemInfo() on unreachable agent should error")
	}
}

func TestGetONUCountSelectsTableBranch(t *testing.T) {
	values := map[string]interface{}{
		OIDC3xxOnuSerialNumber + ".285278465.1": []byte("ZTEG00000001"),
		OIDC3xxOnuSerialNumber + ".285278465.2": []byte("ZTEG00000002"),
	}

	c3xx, _ := newTestAdapter("C320", values)
	count, err := c3xx.GetONUCount(context.Background())
	if err != nil {
		t.Fatalf("GetONUCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("GetONUCount() on C320 = %d, want 2", count)
	}

	// Same rows live under the C3xx branch only: a C6xx chassis walks
	// its own branch and finds nothing.
	c6xx, _ := newTestAdapter("C620", values)
	count, err = c6xx.GetONUCount(context.Background())
	if err != nil {
		t.Fatalf("GetONUCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("GetONUCount() on C620 = %d, want 0", count)
	}
}

func TestGetONUOpticalPower(t *testing.T) {
	adapter, _ := newTestAdapter("C620", map[string]interface{}{
		OIDC6xxOnuRxPower + ".285278465.1.1": 2500,
	})

	reading, err := adapter.GetONUOpticalPower(context.Background(), 285278465, 1)
	if err != nil {
		t.Fatalf("GetONUOpticalPower() error = %v", err)
	}
	if !almostEqual(reading.RxPowerDBm, -25.0) {
		t.Errorf("RxPowerDBm = %v, want -25.0", reading.RxPowerDBm)
	}
	if reading.DistanceM != -1 {
		t.Errorf("DistanceM = %d, want -1", reading.DistanceM)
	}
}

func TestGetONUOpticalPowerOffline(t *testing.T) {
	adapter, _ := newTestAdapter("C620", map[string]interface{}{
		OIDC6xxOnuRxPower + ".285278465.2.1": -1,
	})

	if _, err := adapter.GetONUOpticalPower(context.Background(), 285278465, 2); err == nil {
		t.Error("GetONUOpticalPower() on an offline unit should error")
	}
}

func TestRefreshONUs(t *testing.T) {
	adapter, _ := newTestAdapter("C620", map[string]interface{}{
		OIDC6xxOnuSerialNumber + ".285278465.1": []byte("ZTEG00000001"),
		OIDC6xxOnuPhaseState + ".285278465.1":   PhaseWorking,
		OIDC6xxOnuRxPower + ".285278465.1.1":    2500,

		OIDC6xxOnuSerialNumber + ".285278465.3": []byte("ZTEG00000003"),
		OIDC6xxOnuPhaseState + ".285278465.3":   PhaseLOS,
	})

	onus := []model.ONU{
		{Serial: "ZTEG00000001", PONPort: 285278465, ONUID: 1, Status: model.ONUStatusOffline},
		{Serial: "ZTEG00000002", PONPort: 285278465, ONUID: 2, Status: model.ONUStatusOnline},
		{Serial: "ZTEG00000003", PONPort: 285278465, ONUID: 3, Status: model.ONUStatusOnline},
	}

	updated, err := adapter.RefreshONUs(context.Background(), onus)
	if err != nil {
		t.Fatalf("RefreshONUs() error = %v", err)
	}

	if updated[0].Status != model.ONUStatusOnline {
		t.Errorf("working unit Status = %q, want %q", updated[0].Status, model.ONUStatusOnline)
	}
	if !almostEqual(updated[0].RxPowerDBm, -25.0) {
		t.Errorf("working unit RxPowerDBm = %v, want -25.0", updated[0].RxPowerDBm)
	}
	if updated[0].LastSeen.IsZero() {
		t.Error("working unit LastSeen not set")
	}

	if updated[1].Status != model.ONUStatusOffline {
		t.Errorf("missing unit Status = %q, want %q", updated[1].Status, model.ONUStatusOffline)
	}

	if updated[2].Status != model.ONUStatusLOS {
		t.Errorf("LOS unit Status = %q, want %q", updated[2].Status, model.ONUStatusLOS)
	}
}

func TestRefreshONUsEmptyInput(t *testing.T) {
	adapter, agent := newTestAdapter("C320", nil)
	agent.SetFailing(true)

	updated, err := adapter.RefreshONUs(context.Background(), nil)
	if err != nil {
		t.Errorf("RefreshONUs(nil) error = %v, want nil", err)
	}
	if updated != nil {
		t.Errorf("RefreshONUs(nil) = %v, want nil", updated)
	}
}

func TestAdapterTestConnection(t *testing.T) {
	adapter, agent := newTestAdapter("C320", nil)

	if !adapter.TestConnection(context.Background()) {
		t.Error("TestConnection() = false on healthy agent")
	}
	agent.SetFailing(true)
	if adapter.TestConnection(context.Background()) {
		t.Error("TestConnection() = true on failing agent")
	}
}
