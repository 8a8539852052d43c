package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("expected healthy, got %q", report.Status)
	}
	if report.Checks["engine"] != CheckOK || report.Checks["cache"] != CheckOK {
		t.Errorf("unexpected checks: %v", report.Checks)
	}
}

func TestCheck_EngineDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("refused")}, &mockPinger{})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("expected degraded, got %q", report.Status)
	}
	if report.Checks["engine"] != CheckError {
		t.Errorf("unexpected engine check: %v", report.Checks)
	}
}

func TestCheck_NoCacheConfigured(t *testing.T) {
	svc := New(&mockPinger{}, nil)

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("expected healthy, got %q", report.Status)
	}
	if _, ok := report.Checks["cache"]; ok {
		t.Error("cache check must be absent when no cache is configured")
	}
}

func TestCheck_CacheDownDegrades(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{err: errors.New("refused")})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("expected degraded, got %q", report.Status)
	}
}
