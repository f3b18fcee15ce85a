package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, rotation RotationConfig) (*FileLogger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(logPath, rotation)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, logPath
}

func TestEvent_New(t *testing.T) {
	event := NewEvent("alice", OpConfigCreate)

	if event.User != "alice" {
		t.Errorf("User = %q, want %q", event.User, "alice")
	}
	if event.Operation != OpConfigCreate {
		t.Errorf("Operation = %q, want %q", event.Operation, OpConfigCreate)
	}
	if event.ID == "" {
		t.Error("ID should not be empty")
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestEvent_Chaining(t *testing.T) {
	event := NewEvent("alice", OpRIBDiff).
		WithConfig("namex.json").
		WithRouteServer("rs1-rom-v4").
		WithDetail("match_percentage", "98.5").
		WithSuccess().
		WithDuration(time.Second)

	if event.Config != "namex.json" {
		t.Errorf("Config = %q", event.Config)
	}
	if event.RouteServer != "rs1-rom-v4" {
		t.Errorf("RouteServer = %q", event.RouteServer)
	}
	if event.Details["match_percentage"] != "98.5" {
		t.Errorf("Details = %v", event.Details)
	}
	if !event.Success {
		t.Error("Success should be true")
	}
	if event.Duration != time.Second {
		t.Errorf("Duration = %v", event.Duration)
	}
}

func TestEvent_WithError(t *testing.T) {
	event := NewEvent("alice", OpConfigUpdate).WithError(errors.New("test error"))

	if event.Success {
		t.Error("Success should be false")
	}
	if event.Error != "test error" {
		t.Errorf("Error = %q", event.Error)
	}

	event2 := NewEvent("alice", OpConfigUpdate).WithError(nil)
	if event2.Success {
		t.Error("Success should be false even with nil error")
	}
	if event2.Error != "" {
		t.Errorf("Error should be empty with nil error, got %q", event2.Error)
	}
}

func TestEvent_Finish(t *testing.T) {
	start := time.Now().Add(-time.Second)

	ok := NewEvent("alice", OpRIBDiff).Finish(start, nil)
	if !ok.Success || ok.Error != "" {
		t.Errorf("Finish(nil) = %+v", ok)
	}
	if ok.Duration < time.Second {
		t.Errorf("Duration = %v, want at least 1s", ok.Duration)
	}

	failed := NewEvent("alice", OpRIBDiff).Finish(start, errors.New("ssh: handshake failed"))
	if failed.Success || failed.Error != "ssh: handshake failed" {
		t.Errorf("Finish(err) = %+v", failed)
	}
}

func TestFileLogger_Basic(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})

	event := NewEvent("alice", OpConfigCreate).WithConfig("namex.json").WithSuccess()
	if err := logger.Log(event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].User != "alice" || events[0].Config != "namex.json" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestFileLogger_QueryFilters(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})

	events := []*Event{
		NewEvent("alice", OpConfigCreate).WithConfig("a.json").WithSuccess(),
		NewEvent("bob", OpConfigCreate).WithConfig("b.json").WithError(errors.New("rejected")),
		NewEvent("alice", OpRIBDiff).WithConfig("a.json").WithRouteServer("rs1").WithSuccess(),
		NewEvent("bob", OpConfigDelete).WithConfig("a.json").WithSuccess(),
	}
	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"by user", Filter{User: "alice"}, 2},
		{"by operation", Filter{Operation: OpConfigCreate}, 2},
		{"by config", Filter{Config: "a.json"}, 3},
		{"by route server", Filter{RouteServer: "rs1"}, 1},
		{"success only", Filter{SuccessOnly: true}, 3},
		{"failure only", Filter{FailureOnly: true}, 1},
		{"limit", Filter{Limit: 2}, 2},
		{"offset", Filter{Offset: 3}, 1},
		{"offset beyond", Filter{Offset: 10}, 0},
		{"future start", Filter{StartTime: time.Now().Add(time.Hour)}, 0},
		{"past end", Filter{EndTime: time.Now().Add(-time.Hour)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := logger.Query(tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Query(%+v) returned %d events, want %d", tt.filter, len(got), tt.want)
			}
		})
	}
}

func TestFileLogger_QueryMalformedJSON(t *testing.T) {
	logger, logPath := newTestLogger(t, RotationConfig{})

	if err := logger.Log(NewEvent("alice", OpConfigCreate)); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{not json\n")
	f.Close()
	if err := logger.Log(NewEvent("bob", OpConfigDelete)); err != nil {
		t.Fatal(err)
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("Expected 2 valid events, got %d", len(events))
	}
}

func TestFileLogger_RotationWithCleanup(t *testing.T) {
	logger, logPath := newTestLogger(t, RotationConfig{
		MaxSize:    50,
		MaxBackups: 2,
	})

	for i := 0; i < 10; i++ {
		if err := logger.Log(NewEvent("alice", OpConfigUpdate)); err != nil {
			t.Fatalf("Log failed on iteration %d: %v", i, err)
		}
	}

	matches, err := filepath.Glob(logPath + ".*")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) == 0 {
		t.Error("Expected rotation to create backup files")
	}
	if len(matches) > 2 {
		t.Errorf("Expected at most 2 backup files, got %d", len(matches))
	}
}

func TestFileLogger_QuerySpansRotatedFiles(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{MaxSize: 50})

	for _, cfg := range []string{"a.json", "b.json", "c.json"} {
		if err := logger.Log(NewEvent("alice", OpConfigCreate).WithConfig(cfg)); err != nil {
			t.Fatal(err)
		}
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Query returned %d events, want 3", len(events))
	}
	for i, want := range []string{"a.json", "b.json", "c.json"} {
		if events[i].Config != want {
			t.Errorf("events[%d].Config = %q, want %q", i, events[i].Config, want)
		}
	}
}

func TestFileLogger_LogAfterClose(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})
	logger.Close()
	if err := logger.Log(NewEvent("alice", OpConfigDelete)); err == nil {
		t.Error("Log on a closed logger should fail")
	}
}

func TestFileLogger_NewFileLoggerMkdirError(t *testing.T) {
	if _, err := NewFileLogger("/dev/null/impossible/audit.log", RotationConfig{}); err == nil {
		t.Error("Expected error creating logger under /dev/null")
	}
}

func TestFileLogger_CloseTwice(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestDefaultLogger(t *testing.T) {
	SetDefaultLogger(nil)
	defer SetDefaultLogger(nil)

	if err := Log(NewEvent("test", "test")); err != nil {
		t.Errorf("Log with nil default should not error: %v", err)
	}
	results, err := Query(Filter{})
	if err != nil || len(results) != 0 {
		t.Errorf("Query with nil default = %v, %v", results, err)
	}

	logger, _ := newTestLogger(t, RotationConfig{})
	SetDefaultLogger(logger)

	if err := Log(NewEvent("alice", OpRIBDiff).WithSuccess()); err != nil {
		t.Errorf("Log failed: %v", err)
	}
	results, err = Query(Filter{})
	if err != nil {
		t.Errorf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}
