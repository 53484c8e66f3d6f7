package olt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nanoncore/nano-access/model"
	"github.com/nanoncore/nano-access/types"
	"github.com/nanoncore/nano-access/vendors/huawei"
	"github.com/nanoncore/nano-access/vendors/zte"
)

// recordingExecutor counts Execute calls and can be scripted with a
// fixed outcome. Without a script it succeeds with empty output.
type recordingExecutor struct {
	calls   int
	batch   []string
	results []types.CommandResult
	err     error
}

func (e *recordingExecutor) Execute(ctx context.Context, commands []string) ([]types.CommandResult, error) {
	e.calls++
	e.batch = append([]string(nil), commands...)
	if e.results != nil || e.err != nil {
		return e.results, e.err
	}
	results := make([]types.CommandResult, 0, len(commands))
	for _, cmd := range commands {
		results = append(results, types.CommandResult{Command: cmd, Success: true})
	}
	return results, nil
}

func containsCommand(commands []string, want string) bool {
	for _, cmd := range commands {
		if cmd == want {
			return true
		}
	}
	return false
}

func TestProvisionONUSimulation(t *testing.T) {
	driver := NewDriver(huawei.NewCatalog(), NewSimulationExecutor(zap.NewNop()), zap.NewNop())

	result := driver.ProvisionONU(context.Background(), model.ProvisionRequest{
		Frame:  0,
		Slot:   0,
		Port:   0,
		ONUID:  5,
		Serial: "HWTC0011D168",
		Profile: &model.ServiceProfile{
			Name:         "residential-100",
			DownloadMbps: 100,
			UploadMbps:   50,
			VLAN:         200,
		},
	})

	if !result.Success {
		t.Fatalf("ProvisionONU() failed: %s", result.Error)
	}
	if len(result.Results) != len(result.Commands) {
		t.Errorf("got %d results for %d commands", len(result.Results), len(result.Commands))
	}
	if result.Timestamp.IsZero() {
		t.Error("result carries no timestamp")
	}

	wantLines := []string{
		`ont add 0 5 sn-auth "HWTC0011D168" omci ont-lineprofile-id 1 ont-srvprofile-id 1`,
		"service-port vlan 200 gpon 0/0/0 ont 5 gemport 1 multi-service user-vlan 200 tag-transform translate",
		"ont traffic-policy 0 5 profile-id 100",
		"ont port native-vlan 0 5 eth 1 vlan 200 priority 0",
	}
	for _, want := range wantLines {
		if !containsCommand(result.Commands, want) {
			t.Errorf("commands missing %q:\n%s", want, strings.Join(result.Commands, "\n"))
		}
	}
}

func TestProvisionONUSanitizesDescription(t *testing.T) {
	executor := &recordingExecutor{}
	driver := NewDriver(huawei.NewCatalog(), executor, zap.NewNop())

	result := driver.ProvisionONU(context.Background(), model.ProvisionRequest{
		ONUID:       3,
		Serial:      "HWTC0011D168",
		Description: "flat 4; rm -rf /",
	})

	if !result.Success {
		t.Fatalf("ProvisionONU() failed: %s", result.Error)
	}
	for _, cmd := range executor.batch {
		if strings.Contains(cmd, ";") {
			t.Errorf("unsanitized command reached the executor: %q", cmd)
		}
	}
}

func TestProvisionONUValidation(t *testing.T) {
	tests := []struct {
		name string
		req  model.ProvisionRequest
	}{
		{
			name: "serial with shell metacharacters",
			req:  model.ProvisionRequest{ONUID: 1, Serial: "HWTC0011; reboot"},
		},
		{
			name: "serial with quotes",
			req:  model.ProvisionRequest{ONUID: 1, Serial: `HWTC"0011`},
		},
		{
			name: "empty serial",
			req:  model.ProvisionRequest{ONUID: 1},
		},
		{
			name: "onu type with spaces",
			req:  model.ProvisionRequest{ONUID: 1, Serial: "HWTC0011D168", ONUType: "F660 F670"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := &recordingExecutor{}
			driver := NewDriver(huawei.NewCatalog(), executor, zap.NewNop())

			result := driver.ProvisionONU(context.Background(), tt.req)

			if result.Success {
				t.Fatal("expected rejection")
			}
			if result.Error == "" {
				t.Error("rejection carries no reason")
			}
			if len(result.Commands) != 0 {
				t.Errorf("rejected request still built %d commands", len(result.Commands))
			}
			if executor.calls != 0 {
				t.Errorf("rejected request reached the executor %d times", executor.calls)
			}
		})
	}
}

func TestConfigureVLANTrunkValidation(t *testing.T) {
	tests := []struct {
		name       string
		portName   string
		wantReject bool
	}{
		{name: "plain port name", portName: "gei_1/1/1"},
		{name: "injection attempt", portName: "gei_1/1/1; reboot", wantReject: true},
		{name: "empty port name", portName: "", wantReject: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := &recordingExecutor{}
			driver := NewDriver(zte.NewCatalog(), executor, zap.NewNop())

			result := driver.ConfigureVLANTrunk(context.Background(), model.TrunkRequest{
				PortName: tt.portName,
				Mode:     model.PortModeTrunk,
				VLANs:    []int{100, 200},
			})

			if tt.wantReject {
				if result.Success {
					t.Fatal("expected rejection")
				}
				if executor.calls != 0 {
					t.Error("rejected request reached the executor")
				}
				return
			}

			if !result.Success {
				t.Fatalf("ConfigureVLANTrunk() failed: %s", result.Error)
			}
			if executor.calls != 1 {
				t.Errorf("executor called %d times, want 1", executor.calls)
			}
		})
	}
}

func TestProvisionTR069Validation(t *testing.T) {
	clean := model.TR069Bootstrap{
		URL:      "http://acs.example.net:7547/acs",
		Username: "acs",
		Password: "secret",
		Frame:    0,
		Slot:     1,
		Port:     2,
		ONUID:    5,
	}

	tests := []struct {
		name       string
		mutate     func(*model.TR069Bootstrap)
		wantReject bool
	}{
		{name: "clean request", mutate: func(*model.TR069Bootstrap) {}},
		{
			name:       "url with whitespace",
			mutate:     func(b *model.TR069Bootstrap) { b.URL = "http://acs.example.net/a b" },
			wantReject: true,
		},
		{
			name:       "password with quote",
			mutate:     func(b *model.TR069Bootstrap) { b.Password = `se"cret` },
			wantReject: true,
		},
		{
			name:       "profile name with newline",
			mutate:     func(b *model.TR069Bootstrap) { b.ProfileName = "acs\nreboot" },
			wantReject: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := &recordingExecutor{}
			driver := NewDriver(huawei.NewCatalog(), executor, zap.NewNop())

			req := clean
			tt.mutate(&req)
			result := driver.ProvisionTR069(context.Background(), req)

			if tt.wantReject {
				if result.Success {
					t.Fatal("expected rejection")
				}
				if executor.calls != 0 {
					t.Error("rejected request reached the executor")
				}
				return
			}

			if !result.Success {
				t.Fatalf("ProvisionTR069() failed: %s", result.Error)
			}
			if !containsCommand(executor.batch, "ont tr069-server-config 2 5 profile-name acs-default") {
				t.Errorf("batch missing ONU binding:\n%s", strings.Join(executor.batch, "\n"))
			}
		})
	}
}

func TestProvisionTR069ChassisWideZTE(t *testing.T) {
	executor := &recordingExecutor{}
	driver := NewDriver(zte.NewCatalog(), executor, zap.NewNop())

	result := driver.ProvisionTR069(context.Background(), model.TR069Bootstrap{
		URL:      "http://acs.example.net:7547/acs",
		Username: "acs",
		Password: "secret",
		ONUID:    -1,
	})

	if !result.Success {
		t.Fatalf("chassis-wide bootstrap failed: %s", result.Error)
	}
	if !strings.Contains(result.Message, "nothing to do") {
		t.Errorf("Message = %q, want a no-op notice", result.Message)
	}
	if executor.calls != 0 {
		t.Error("empty batch reached the executor")
	}
}

func TestOperationsSimulation(t *testing.T) {
	tests := []struct {
		name string
		call func(*Driver) *types.ExecutionResult
		want string
	}{
		{
			name: "deprovision",
			call: func(d *Driver) *types.ExecutionResult {
				return d.DeprovisionONU(context.Background(), 0, 2, 3, 7)
			},
			want: "ont delete 3 7",
		},
		{
			name: "reboot",
			call: func(d *Driver) *types.ExecutionResult {
				return d.RebootONU(context.Background(), 0, 2, 3, 7)
			},
			want: "ont reset 3 7",
		},
		{
			name: "create vlan",
			call: func(d *Driver) *types.ExecutionResult {
				return d.CreateVLAN(context.Background(), 300, "iptv")
			},
			want: "vlan 300 smart",
		},
		{
			name: "delete vlan",
			call: func(d *Driver) *types.ExecutionResult {
				return d.DeleteVLAN(context.Background(), 300)
			},
			want: "undo vlan 300",
		},
		{
			name: "save",
			call: func(d *Driver) *types.ExecutionResult {
				return d.SaveConfig(context.Background())
			},
			want: "save",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := NewDriver(huawei.NewCatalog(), NewSimulationExecutor(zap.NewNop()), zap.NewNop())

			result := tt.call(driver)
			if !result.Success {
				t.Fatalf("operation failed: %s", result.Error)
			}
			if !containsCommand(result.Commands, tt.want) {
				t.Errorf("commands missing %q:\n%s", tt.want, strings.Join(result.Commands, "\n"))
			}
		})
	}
}

func TestCreateVLANSanitizesName(t *testing.T) {
	executor := &recordingExecutor{}
	driver := NewDriver(huawei.NewCatalog(), executor, zap.NewNop())

	result := driver.CreateVLAN(context.Background(), 400, "core uplink!")
	if !result.Success {
		t.Fatalf("CreateVLAN() failed: %s", result.Error)
	}
	if !containsCommand(executor.batch, "vlan desc 400 description core_uplink") {
		t.Errorf("batch missing sanitized description:\n%s", strings.Join(executor.batch, "\n"))
	}
}

func TestRunPartialFailure(t *testing.T) {
	executor := &recordingExecutor{
		results: []types.CommandResult{
			{Command: "enable", Success: true},
			{Command: "config", Output: "% Unknown command", Success: false, Error: "unknown command"},
		},
		err: &types.CommandError{Command: "config", Output: "% Unknown command"},
	}
	driver := NewDriver(huawei.NewCatalog(), executor, zap.NewNop())

	result := driver.RebootONU(context.Background(), 0, 1, 2, 5)

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error == "" {
		t.Error("failure carries no error")
	}
	if len(result.Results) != 2 {
		t.Errorf("kept %d partial results, want 2", len(result.Results))
	}
	if !strings.Contains(result.Message, "failed") {
		t.Errorf("Message = %q, want failure notice", result.Message)
	}
}

const uncfgSession = `OnuIndex            Sn                  State
---------------------------------------------
gpon-olt_1/2/1:1    ZTEG11112222        unknown
gpon-olt_1/2/2:1    ZTEG33334444        unknown
`

func TestDiscoverONUs(t *testing.T) {
	executor := &recordingExecutor{
		results: []types.CommandResult{
			{Command: "enable", Success: true},
			{Command: "show gpon onu uncfg", Output: uncfgSession, Success: true},
		},
	}
	driver := NewDriver(zte.NewCatalog(), executor, zap.NewNop())

	records, err := driver.DiscoverONUs(context.Background())
	if err != nil {
		t.Fatalf("DiscoverONUs() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Serial != "ZTEG11112222" {
		t.Errorf("Serial = %q, want ZTEG11112222", records[0].Serial)
	}
	if records[0].PONPort != "1/2/1:1" {
		t.Errorf("PONPort = %q, want 1/2/1:1", records[0].PONPort)
	}
}

func TestDiscoverONUsExecutorError(t *testing.T) {
	executor := &recordingExecutor{err: errors.New("link down")}
	driver := NewDriver(zte.NewCatalog(), executor, zap.NewNop())

	if _, err := driver.DiscoverONUs(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
