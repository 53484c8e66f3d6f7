package cli

import (
	"context"
	"testing"
	"time"

	"github.com/nanoncore/nano-access/types"
)

func TestNewDriver(t *testing.T) {
	tests := []struct {
		name    string
		config  *types.EquipmentConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:    "missing address",
			config:  &types.EquipmentConfig{Protocol: types.ProtocolTelnet},
			wantErr: true,
		},
		{
			name: "snmp is not a CLI transport",
			config: &types.EquipmentConfig{
				Address:  "10.0.0.2",
				Protocol: types.ProtocolSNMP,
			},
			wantErr: true,
		},
		{
			name: "valid telnet",
			config: &types.EquipmentConfig{
				Address:  "10.0.0.2",
				Protocol: types.ProtocolTelnet,
			},
			wantErr: false,
		},
		{
			name: "valid ssh",
			config: &types.EquipmentConfig{
				Address:  "10.0.0.2",
				Protocol: types.ProtocolSSH,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDriver(tt.config, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewDriver() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewDriverDefaults(t *testing.T) {
	tests := []struct {
		name     string
		protocol types.Protocol
		wantPort int
	}{
		{"telnet default port", types.ProtocolTelnet, 23},
		{"ssh default port", types.ProtocolSSH, 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &types.EquipmentConfig{
				Address:  "10.0.0.2",
				Protocol: tt.protocol,
			}
			d, err := NewDriver(cfg, nil)
			if err != nil {
				t.Fatalf("NewDriver() error = %v", err)
			}
			if cfg.Port != tt.wantPort {
				t.Errorf("default port = %d, want %d", cfg.Port, tt.wantPort)
			}
			if cfg.Timeout != 30*time.Second {
				t.Errorf("default timeout = %s, want 30s", cfg.Timeout)
			}
			if d.State() != StateDisconnected {
				t.Errorf("initial state = %s, want %s", d.State(), StateDisconnected)
			}
			if d.IsConnected() {
				t.Error("IsConnected() = true before Connect")
			}
		})
	}
}

func TestDriverRejectsOutOfOrderCalls(t *testing.T) {
	d, err := NewDriver(&types.EquipmentConfig{
		Address:  "10.0.0.2",
		Protocol: types.ProtocolTelnet,
	}, nil)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}
	ctx := context.Background()

	if err := d.Login(ctx, "admin", "admin"); !types.IsConnectionError(err) {
		t.Errorf("Login before Connect = %v, want ConnectionError", err)
	}
	if _, err := d.ExecCommand(ctx, "display board 0", 0); !types.IsConnectionError(err) {
		t.Errorf("ExecCommand before Connect = %v, want ConnectionError", err)
	}
	if d.State() != StateDisconnected {
		t.Errorf("state after rejected calls = %s, want %s", d.State(), StateDisconnected)
	}
}

func TestDriverDisconnectIsIdempotent(t *testing.T) {
	d, err := NewDriver(&types.EquipmentConfig{
		Address:  "10.0.0.2",
		Protocol: types.ProtocolTelnet,
	}, nil)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := d.Disconnect(); err != nil {
			t.Errorf("Disconnect() #%d error = %v", i+1, err)
		}
	}
	if d.State() != StateDisconnected {
		t.Errorf("state = %s, want %s", d.State(), StateDisconnected)
	}
}

func TestExecCommandsStopsAtFirstFailure(t *testing.T) {
	// A disconnected driver fails every command, so the batch must stop
	// after exactly one result.
	d, err := NewDriver(&types.EquipmentConfig{
		Address:  "10.0.0.2",
		Protocol: types.ProtocolTelnet,
	}, nil)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	commands := []string{"enable", "config", "display board 0"}
	results, err := d.ExecCommands(context.Background(), commands, 0)
	if err == nil {
		t.Fatal("ExecCommands() on disconnected driver succeeded, want error")
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Command != "enable" {
		t.Errorf("results[0].Command = %q, want %q", results[0].Command, "enable")
	}
	if results[0].Success {
		t.Error("results[0].Success = true, want false")
	}
	if results[0].Error == "" {
		t.Error("results[0].Error is empty, want failure description")
	}
}
