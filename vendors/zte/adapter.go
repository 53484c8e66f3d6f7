package zte

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nanoncore/nano-access/model"
	"github.com/nanoncore/nano-access/types"
	"github.com/nanoncore/nano-access/vendors/common"
)

// Adapter joins the ZXAN command catalog with SNMP telemetry for one
// chassis. The chassis model selects between the C3xx and C6xx ONU
// table branches; command building stays pure in Catalog.
type Adapter struct {
	*Catalog
	snmp   types.SNMPExecutor
	logger *zap.Logger
	tables tableSet
}

// NewAdapter wraps an SNMP session in the ZTE telemetry adapter. The
// model string ("C320", "C620", ...) selects the OID branch; unknown
// models fall back to the C6xx tables.
func NewAdapter(snmpExec types.SNMPExecutor, logger *zap.Logger, oltModel string) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	tables := c6xxTables()
	if isC3xx(oltModel) {
		tables = c3xxTables()
	}
	return &Adapter{
		Catalog: NewCatalog(),
		snmp:    snmpExec,
		logger:  logger.With(zap.String("vendor", "zte")),
		tables:  tables,
	}
}

// GetSystemInfo fetches the MIB-2 system batch and the ZXAN health
// batch concurrently. A failed batch leaves its fields at zero values;
// only both failing fails the call.
func (a *Adapter) GetSystemInfo(ctx context.Context) (*model.SystemInfo, error) {
	info := &model.SystemInfo{}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		stdErr    error
		vendorHit bool
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		values, err := a.snmp.GetSNMP(ctx, []string{OIDSysDescr, OIDSysUpTime, OIDSysName})
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			stdErr = err
			a.logger.Warn("system batch failed", zap.Error(err))
			return
		}
		if v, ok := common.LookupOID(values, OIDSysDescr); ok {
			info.Description = common.NormalizeValue(v)
			info.Firmware = FirmwareFromDescr(info.Description)
		}
		if v, ok := common.LookupOID(values, OIDSysName); ok {
			info.Name = common.NormalizeValue(v)
		}
		if ticks, ok := common.LookupInt64(values, OIDSysUpTime); ok {
			info.UptimeSeconds = ticks / 100
		}
	}()
	go func() {
		defer wg.Done()
		cpu, cpuOK := a.firstHealthRow(ctx, OIDSysProcessorLoad)
		mem, memOK := a.firstHealthRow(ctx, OIDSysMemUsage)
		temp, tempOK := a.firstHealthRow(ctx, OIDSysTemperature)
		mu.Lock()
		defer mu.Unlock()
		if cpuOK {
			info.CPUPercent = cpu
		}
		if memOK {
			info.MemoryPercent = mem
		}
		if tempOK {
			info.Temperature = temp
		}
		vendorHit = cpuOK || memOK || tempOK
	}()
	wg.Wait()

	if stdErr != nil && !vendorHit {
		return nil, fmt.Errorf("reading system info: %w", stdErr)
	}
	return info, nil
}

// firstHealthRow walks a single-column board table and returns the
// lowest-indexed usable value.
func (a *Adapter) firstHealthRow(ctx context.Context, base string) (float64, bool) {
	rows, err := a.snmp.WalkSNMP(ctx, base)
	if err != nil {
		a.logger.Debug("health walk failed", zap.String("oid", base), zap.Error(err))
		return 0, false
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if raw, ok := common.ToInt64(rows[k]); ok {
			return float64(raw), true
		}
	}
	return 0, false
}

// GetONUCount counts the rows of the serial-number table.
func (a *Adapter) GetONUCount(ctx context.Context) (int, error) {
	rows, err := a.snmp.WalkSNMP(ctx, a.tables.serial)
	if err != nil {
		return 0, fmt.Errorf("walking ONU serial table: %w", err)
	}

	count := 0
	for idx, v := range rows {
		if _, _, err := ParseONUIndex(idx); err != nil {
			continue
		}
		if DecodeSerial(v) != "" {
			count++
		}
	}
	return count, nil
}

// GetONUOpticalPower reads the Rx power for one ONU. The table indexes
// rows by an extra service component, so the unit's subtree is walked
// and the first reading taken. The C3xx/C6xx tables expose no Tx power
// or distance.
func (a *Adapter) GetONUOpticalPower(ctx context.Context, ponPort, onuID int) (*model.OpticalReading, error) {
	base := CompositeOID(a.tables.rxPower, ponPort, onuID)
	rows, err := a.snmp.WalkSNMP(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("reading optical power for %d.%d: %w", ponPort, onuID, err)
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		raw, ok := common.ToInt64(rows[k])
		if !ok {
			continue
		}
		if power := ConvertRxPower(raw); power > InvalidPowerDBm {
			return &model.OpticalReading{
				PONPort:    ponPort,
				ONUID:      onuID,
				RxPowerDBm: power,
				DistanceM:  -1,
				Timestamp:  time.Now(),
			}, nil
		}
	}
	return nil, fmt.Errorf("no optical reading for ONU %d.%d: unit offline", ponPort, onuID)
}

// RefreshONUs walks the chassis ONU tables once and correlates the rows
// back to the given records by interface index and ONU ID. Records
// without a matching serial row are marked offline; present rows map
// their phase state onto the stored status. The input slice is not
// modified.
func (a *Adapter) RefreshONUs(ctx context.Context, onus []model.ONU) ([]model.ONU, error) {
	if len(onus) == 0 {
		return nil, nil
	}

	serialRows, err := a.snmp.WalkSNMP(ctx, a.tables.serial)
	if err != nil {
		return nil, fmt.Errorf("walking ONU serial table: %w", err)
	}

	// Phase and power walks degrade instead of failing the refresh.
	phaseRows, err := a.snmp.WalkSNMP(ctx, a.tables.phaseState)
	if err != nil {
		a.logger.Warn("ONU phase walk failed", zap.Error(err))
		phaseRows = nil
	}
	powerRows, err := a.snmp.WalkSNMP(ctx, a.tables.rxPower)
	if err != nil {
		a.logger.Warn("ONU power walk failed", zap.Error(err))
		powerRows = nil
	}

	serials := indexByPosition(serialRows)
	phases := indexByPosition(phaseRows)
	powers := indexByPosition(powerRows)

	now := time.Now()
	updated := make([]model.ONU, len(onus))
	for i, onu := range onus {
		next := onu
		key := onu.Key()

		walked, present := serials[key]
		if !present {
			next.Status = model.ONUStatusOffline
			updated[i] = next
			continue
		}

		if serial := DecodeSerial(walked); serial != "" && !strings.EqualFold(serial, onu.Serial) {
			a.logger.Warn("serial mismatch on PON position",
				zap.String("position", key),
				zap.String("stored", onu.Serial),
				zap.String("reported", serial))
		}

		next.Status = model.ONUStatusOnline
		if phase, ok := common.ToInt64(phases[key]); ok {
			next.Status = StatusFromPhase(phase)
		}
		if raw, ok := common.ToInt64(powers[key]); ok {
			if power := ConvertRxPower(raw); power > InvalidPowerDBm {
				next.RxPowerDBm = power
			}
		}
		next.LastSeen = now
		updated[i] = next
	}
	return updated, nil
}

// indexByPosition re-keys walked rows by the canonical
// "ifIndex.onuID" position, dropping the Rx table's service component.
func indexByPosition(rows map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(rows))
	for idx, v := range rows {
		ifIndex, onuID, err := ParseONUIndex(idx)
		if err != nil {
			continue
		}
		key := fmt.Sprintf("%d.%d", ifIndex, onuID)
		if _, taken := out[key]; !taken {
			out[key] = v
		}
	}
	return out
}

// TestConnection probes the SNMP agent.
func (a *Adapter) TestConnection(ctx context.Context) bool {
	return a.snmp.TestConnection(ctx)
}

var (
	_ types.OLTMonitor     = (*Adapter)(nil)
	_ types.CommandCatalog = (*Adapter)(nil)
)
