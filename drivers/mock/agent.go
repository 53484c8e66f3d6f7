package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nanoncore/nano-access/types"
)

// Agent is an in-memory SNMP agent. Values are keyed by OID without the
// leading dot; walks return every value below the requested base keyed
// by the index suffix, matching the real client's contract.
type Agent struct {
	mu      sync.RWMutex
	values  map[string]interface{}
	failing bool
}

// NewAgent seeds the agent. The map may be nil.
func NewAgent(values map[string]interface{}) *Agent {
	a := &Agent{values: make(map[string]interface{})}
	for oid, v := range values {
		a.values[strings.TrimPrefix(oid, ".")] = v
	}
	return a
}

// Set stores one OID value.
func (a *Agent) Set(oid string, value interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[strings.TrimPrefix(oid, ".")] = value
}

// SetFailing makes every query fail until reset.
func (a *Agent) SetFailing(failing bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failing = failing
}

// GetSNMP returns the subset of requested OIDs the agent knows.
func (a *Agent) GetSNMP(ctx context.Context, oids []string) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.ConnectionError{Target: "mock-agent", Err: err}
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.failing {
		return nil, &types.CommandError{Command: "SNMP GET", Err: fmt.Errorf("agent unreachable")}
	}

	values := make(map[string]interface{})
	for _, oid := range oids {
		if v, ok := a.values[strings.TrimPrefix(oid, ".")]; ok {
			values[oid] = v
		}
	}
	return values, nil
}

// WalkSNMP returns all stored values below the base OID.
func (a *Agent) WalkSNMP(ctx context.Context, oid string) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.ConnectionError{Target: "mock-agent", Err: err}
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.failing {
		return nil, &types.CommandError{Command: "SNMP WALK " + oid, Err: fmt.Errorf("agent unreachable")}
	}

	prefix := strings.TrimPrefix(oid, ".") + "."
	values := make(map[string]interface{})
	for stored, v := range a.values {
		if strings.HasPrefix(stored, prefix) {
			values[stored[len(prefix):]] = v
		}
	}
	return values, nil
}

// TestConnection reports whether queries currently succeed.
func (a *Agent) TestConnection(ctx context.Context) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !a.failing
}

// Close is a no-op.
func (a *Agent) Close() error { return nil }

var _ types.SNMPExecutor = (*Agent)(nil)
