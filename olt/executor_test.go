package olt

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/nanoncore/nano-access/drivers/mock"
	"github.com/nanoncore/nano-access/model"
	"github.com/nanoncore/nano-access/types"
	"github.com/nanoncore/nano-access/vendors/zte"
)

func newMockSessionExecutor(t *testing.T) (*SessionExecutor, *mock.Driver) {
	t.Helper()
	config := &types.EquipmentConfig{
		Name:     "lab-olt",
		Address:  "10.0.0.1",
		Username: "admin",
		Password: "admin",
	}
	session, err := mock.NewDriver(config)
	if err != nil {
		t.Fatalf("mock.NewDriver() error = %v", err)
	}
	executor := NewSessionExecutor(config, zap.NewNop())
	executor.open = func() (types.CLIExecutor, error) { return session, nil }
	return executor, session
}

func TestSimulationExecutor(t *testing.T) {
	executor := NewSimulationExecutor(zap.NewNop())
	commands := []string{"enable", "config", "vlan 100 smart"}

	results, err := executor.Execute(context.Background(), commands)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(results) != len(commands) {
		t.Fatalf("got %d results, want %d", len(results), len(commands))
	}
	for i, result := range results {
		if !result.Success {
			t.Errorf("result %d not successful", i)
		}
		if result.Command != commands[i] {
			t.Errorf("result %d command = %q, want %q", i, result.Command, commands[i])
		}
	}
}

func TestSessionExecutorRunsBatch(t *testing.T) {
	executor, session := newMockSessionExecutor(t)
	commands := []string{"enable", "config", "vlan 100 smart"}

	results, err := executor.Execute(context.Background(), commands)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(results) != len(commands) {
		t.Fatalf("got %d results, want %d", len(results), len(commands))
	}
	for i, result := range results {
		if !result.Success {
			t.Errorf("result %d not successful: %s", i, result.Error)
		}
	}

	history := session.History()
	if len(history) != len(commands) {
		t.Fatalf("device saw %d commands, want %d", len(history), len(commands))
	}
	if session.IsConnected() {
		t.Error("session still connected after batch")
	}
}

func TestSessionExecutorFailFast(t *testing.T) {
	executor, session := newMockSessionExecutor(t)
	session.FailOn("config", "% Unknown command")

	results, err := executor.Execute(context.Background(), []string{"enable", "config", "vlan 100 smart"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !types.IsCommandError(err) {
		t.Errorf("error %v is not a command error", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (up to and including the failure)", len(results))
	}
	if results[0].Success != true || results[1].Success != false {
		t.Errorf("result success flags = %v, %v; want true, false", results[0].Success, results[1].Success)
	}

	history := session.History()
	if len(history) != 2 {
		t.Errorf("device saw %d commands after failure, want 2", len(history))
	}
	if session.IsConnected() {
		t.Error("session still connected after failed batch")
	}
}

func TestSessionExecutorLoginFailure(t *testing.T) {
	deviceConfig := &types.EquipmentConfig{
		Address:  "10.0.0.1",
		Username: "admin",
		Password: "secret",
	}
	session, err := mock.NewDriver(deviceConfig)
	if err != nil {
		t.Fatalf("mock.NewDriver() error = %v", err)
	}

	executor := NewSessionExecutor(&types.EquipmentConfig{
		Address:  "10.0.0.1",
		Username: "admin",
		Password: "wrong",
	}, zap.NewNop())
	executor.open = func() (types.CLIExecutor, error) { return session, nil }

	results, err := executor.Execute(context.Background(), []string{"enable"})
	if err == nil {
		t.Fatal("expected login failure")
	}
	if !types.IsAuthenticationError(err) {
		t.Errorf("error %v is not an authentication error", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results before login, want 0", len(results))
	}
	if len(session.History()) != 0 {
		t.Error("commands reached the device without a login")
	}
}

func TestSessionExecutorOpenFailure(t *testing.T) {
	executor := NewSessionExecutor(&types.EquipmentConfig{Address: "10.0.0.1"}, zap.NewNop())
	executor.open = func() (types.CLIExecutor, error) {
		return nil, errors.New("no route to host")
	}

	if _, err := executor.Execute(context.Background(), []string{"enable"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSessionExecutorCancelledContext(t *testing.T) {
	executor, session := newMockSessionExecutor(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := executor.Execute(ctx, []string{"enable"}); err == nil {
		t.Fatal("expected error")
	}
	if session.IsConnected() {
		t.Error("session still connected after cancelled batch")
	}
}

func TestSessionDiscoveryEndToEnd(t *testing.T) {
	executor, session := newMockSessionExecutor(t)
	session.SeedAutofind([]model.ONUDiscovery{
		{PONPort: "gpon-olt_1/2/1:1", Serial: "ZTEG11112222", State: "unknown"},
	})

	driver := NewDriver(zte.NewCatalog(), executor, zap.NewNop())

	records, err := driver.DiscoverONUs(context.Background())
	if err != nil {
		t.Fatalf("DiscoverONUs() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].PONPort != "1/2/1:1" || records[0].Serial != "ZTEG11112222" {
		t.Errorf("record = %+v, want port 1/2/1:1 serial ZTEG11112222", records[0])
	}
}
