package huawei

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

// Adapter joins the SmartAX command catalog with SNMP telemetry for one
// chassis. Command building stays pure in Catalog; everything here goes
// through the device's SNMP agent.
type Adapter struct {
	*Catalog
	snmp   types.SNMPExecutor
	logger *zap.Logger
}

// NewAdapter wraps an SNMP session in the Huawei telemetry adapter.
func NewAdapter(snmpExec types.SNMPExecutor, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		Catalog: NewCatalog(),
		snmp:    snmpExec,
		logger:  logger.With(zap.String("vendor", "huawei")),
	}
}

// GetSystemInfo fetches the MIB-2 system batch and the SmartAX health
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
		cpu, cpuOK := a.firstHealthRow(ctx, OIDSmartAXCPU)
		mem, memOK := a.firstHealthRow(ctx, OIDSmartAXMemory)
		temp, tempOK := a.firstHealthRow(ctx, OIDSmartAXTemperature)
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
// lowest-indexed usable value. The health tables carry one row per
// control board.
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
		raw, ok := common.ToInt64(rows[k])
		if !ok || raw == common.SNMPInvalidValue {
			continue
		}
		return float64(raw), true
	}
	return 0, false
}

// GetONUCount sums the per-PON-port ONU counters across the chassis.
func (a *Adapter) GetONUCount(ctx context.Context) (int, error) {
	rows, err := a.snmp.WalkSNMP(ctx, OIDOnuCountPerPort)
	if err != nil {
		return 0, fmt.Errorf("walking ONU count table: %w", err)
	}

	total := 0
	for _, v := range rows {
		n, ok := common.ToInt64(v)
		if ok && n > 0 && n != common.SNMPInvalidValue {
			total += int(n)
		}
	}
	return total, nil
}

// GetONUOpticalPower reads Rx/Tx power and fiber distance for one ONU.
// Offline units answer the invalid marker and yield an error instead of
// a bogus reading.
func (a *Adapter) GetONUOpticalPower(ctx context.Context, ponPort, onuID int) (*model.OpticalReading, error) {
	rxOID := CompositeOID(OIDOnuRxPower, ponPort, onuID)
	txOID := CompositeOID(OIDOnuTxPower, ponPort, onuID)
	distOID := CompositeOID(OIDOnuDistance, ponPort, onuID)

	values, err := a.snmp.GetSNMP(ctx, []string{rxOID, txOID, distOID})
	if err != nil {
		return nil, fmt.Errorf("reading optical power for %d.%d: %w", ponPort, onuID, err)
	}

	raw, ok := common.LookupInt64(values, rxOID)
	if !ok || !IsOnuOnline(raw) {
		return nil, fmt.Errorf("no optical reading for ONU %d.%d: unit offline", ponPort, onuID)
	}

	reading := &model.OpticalReading{
		PONPort:    ponPort,
		ONUID:      onuID,
		RxPowerDBm: ConvertOpticalPower(raw),
		DistanceM:  -1,
		Timestamp:  time.Now(),
	}

	if raw, ok := common.LookupInt64(values, txOID); ok && IsOnuOnline(raw) {
		reading.TxPowerDBm = ConvertOpticalPower(raw)
	}
	if raw, ok := common.LookupInt64(values, distOID); ok && common.IsValidReading(raw) {
		reading.DistanceM = int(raw)
	}
	return reading, nil
}

// RefreshONUs walks the chassis ONU tables once and correlates the rows
// back to the given records by PON port and ONU ID. Records without a
// matching serial row are marked offline; present rows update status,
// Rx power and LastSeen. The input slice is not modified.
func (a *Adapter) RefreshONUs(ctx context.Context, onus []model.ONU) ([]model.ONU, error) {
	if len(onus) == 0 {
		return nil, nil
	}

	serialRows, err := a.snmp.WalkSNMP(ctx, OIDOnuSerialNumber)
	if err != nil {
		return nil, fmt.Errorf("walking ONU serial table: %w", err)
	}

	// Status and power walks degrade instead of failing the refresh.
	statusRows, err := a.snmp.WalkSNMP(ctx, OIDOnuRunStatus)
	if err != nil {
		a.logger.Warn("ONU status walk failed", zap.Error(err))
		statusRows = nil
	}
	powerRows, err := a.snmp.WalkSNMP(ctx, OIDOnuRxPower)
	if err != nil {
		a.logger.Warn("ONU power walk failed", zap.Error(err))
		powerRows = nil
	}

	serials := indexByPosition(serialRows)
	statuses := indexByPosition(statusRows)
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

		if serial := DecodeHexSerial(common.NormalizeValue(walked)); serial != "" &&
			!strings.EqualFold(serial, onu.Serial) {
			a.logger.Warn("serial mismatch on PON position",
				zap.String("position", key),
				zap.String("stored", onu.Serial),
				zap.String("reported", serial))
		}

		next.Status = model.ONUStatusOnline
		if raw, ok := common.ToInt64(statuses[key]); ok && raw != 1 {
			next.Status = model.ONUStatusOffline
		}
		if raw, ok := common.ToInt64(powers[key]); ok {
			if IsOnuOnline(raw) {
				next.RxPowerDBm = ConvertOpticalPower(raw)
			} else if next.Status == model.ONUStatusOnline {
				// registered but no light on the fiber
				next.Status = model.ONUStatusLOS
			}
		}
		next.LastSeen = now
		updated[i] = next
	}
	return updated, nil
}

// indexByPosition re-keys walked rows by the canonical "ponPort.onuID"
// position, tolerating the 3-component index form.
func indexByPosition(rows map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(rows))
	for idx, v := range rows {
		ponPort, onuID, err := ParseONUIndex(idx)
		if err != nil {
			continue
		}
		out[fmt.Sprintf("%d.%d", ponPort, onuID)] = v
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
