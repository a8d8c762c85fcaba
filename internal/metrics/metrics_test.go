package metrics

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Sessions(t *testing.T) {
	c := New()

	c.SessionOpened()
	c.SessionOpened()
	if c.ActiveSessions() != 2 {
		t.Errorf("active = %d, want 2", c.ActiveSessions())
	}
	if c.TotalSessions() != 2 {
		t.Errorf("total = %d, want 2", c.TotalSessions())
	}

	c.SessionClosed()
	if c.ActiveSessions() != 1 {
		t.Errorf("active = %d, want 1", c.ActiveSessions())
	}
	if c.TotalSessions() != 2 {
		t.Errorf("total should remain 2, got %d", c.TotalSessions())
	}
}

func TestCollector_LoginsAndCommands(t *testing.T) {
	c := New()
	c.LoginFailed()
	c.LoginSucceeded()
	c.LoginFailed()
	c.CommandRun()
	c.CommandUnknown()
	c.CommandRun()
	c.InputDiscarded()

	if ok, failed := c.Logins(); ok != 1 || failed != 2 {
		t.Errorf("logins = %d/%d, want 1/2", ok, failed)
	}
	if run, unknown := c.Commands(); run != 2 || unknown != 1 {
		t.Errorf("commands = %d/%d, want 2/1", run, unknown)
	}
	if c.DiscardedInputs() != 1 {
		t.Errorf("discarded = %d, want 1", c.DiscardedInputs())
	}
}

func TestCollector_Bytes(t *testing.T) {
	c := New()

	c.BytesReceived(1024)
	c.BytesSent(512)
	c.BytesReceived(100)

	if c.TotalBytesIn() != 1124 {
		t.Errorf("bytes in = %d, want 1124", c.TotalBytesIn())
	}
	if c.TotalBytesOut() != 512 {
		t.Errorf("bytes out = %d, want 512", c.TotalBytesOut())
	}
}

func TestCollector_Errors(t *testing.T) {
	c := New()

	c.RecordError("first error")
	c.RecordError("second error")

	if c.ErrorCount() != 2 {
		t.Errorf("errors = %d, want 2", c.ErrorCount())
	}
	if got := c.Snapshot().LastErrorMessage; got != "second error" {
		t.Errorf("last error = %q", got)
	}
}

func TestCollector_HealthCheck(t *testing.T) {
	c := New()
	c.RecordHealthCheck()

	if c.Snapshot().LastHealthCheck == "" {
		t.Error("expected non-empty health check timestamp")
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.SessionOpened()
	c.LoginSucceeded()

	var s Snapshot
	if err := json.Unmarshal([]byte(c.JSON()), &s); err != nil {
		t.Fatalf("JSON() is not valid JSON: %v", err)
	}
	if s.SessionsActive != 1 || s.LoginsOK != 1 {
		t.Errorf("unexpected snapshot %+v", s)
	}
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	c.SessionOpened()
	c.LoginFailed()
	c.CommandRun()
	c.RecordError("x")
	c.RecordHealthCheck()
	if c.ActiveSessions() != 0 || c.ErrorCount() != 0 {
		t.Error("nil collector should read zero")
	}
	if (c.Snapshot() != Snapshot{}) {
		t.Error("nil collector should return empty snapshot")
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.SessionOpened()
			c.CommandRun()
			c.SessionClosed()
		}()
	}
	wg.Wait()
	if c.ActiveSessions() != 0 || c.TotalSessions() != 50 {
		t.Errorf("active=%d total=%d", c.ActiveSessions(), c.TotalSessions())
	}
}

func TestExporter(t *testing.T) {
	c := New()
	c.SessionOpened()
	c.LoginSucceeded()
	c.LoginFailed()
	c.LoginFailed()

	e := NewExporter(c)
	if n := testutil.CollectAndCount(e); n != 11 {
		t.Errorf("metric count = %d, want 11", n)
	}

	want := `
# HELP dialup_logins_total Login attempts by result
# TYPE dialup_logins_total counter
dialup_logins_total{result="failed"} 2
dialup_logins_total{result="ok"} 1
`
	if err := testutil.CollectAndCompare(e, strings.NewReader(want), "dialup_logins_total"); err != nil {
		t.Error(err)
	}

	if _, err := e.Registry().Gather(); err != nil {
		t.Errorf("gather: %v", err)
	}
}
