package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChecker_RegisterCheck(t *testing.T) {
	checker := New(time.Second)

	if checker.CheckCount() != 0 {
		t.Fatalf("Expected 0 checks, got %d", checker.CheckCount())
	}

	checker.RegisterCheck("audit", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("accounts", func(ctx context.Context) error { return nil })

	if checker.CheckCount() != 2 {
		t.Errorf("Expected 2 checks, got %d", checker.CheckCount())
	}

	checker.UnregisterCheck("accounts")
	if checker.CheckCount() != 1 {
		t.Errorf("Expected 1 check after unregister, got %d", checker.CheckCount())
	}

	names := checker.ListChecks()
	if len(names) != 1 || names[0] != "audit" {
		t.Errorf("Expected [audit], got %v", names)
	}
}

func TestChecker_CheckLiveness(t *testing.T) {
	checker := New(time.Second)

	status := checker.CheckLiveness(context.Background())

	if status.Status != StatusOK {
		t.Errorf("Expected status ok, got %q", status.Status)
	}
	if status.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
}

func TestChecker_CheckReadiness_NoChecks(t *testing.T) {
	checker := New(time.Second)

	status := checker.CheckReadiness(context.Background())

	if status.Status != StatusReady {
		t.Errorf("Expected ready with no checks, got %q", status.Status)
	}
}

func TestChecker_CheckReadiness_AllHealthy(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("audit", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("history", func(ctx context.Context) error { return nil })

	status := checker.CheckReadiness(context.Background())

	if status.Status != StatusReady {
		t.Errorf("Expected ready, got %q", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Fatalf("Expected 2 check results, got %d", len(status.Checks))
	}
	for name, result := range status.Checks {
		if result.Status != StatusOK {
			t.Errorf("Expected check %s ok, got %q", name, result.Status)
		}
	}
}

func TestChecker_CheckReadiness_Degraded(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("audit", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("accounts", func(ctx context.Context) error {
		return errors.New("database is locked")
	})

	status := checker.CheckReadiness(context.Background())

	if status.Status != StatusDegraded {
		t.Errorf("Expected degraded, got %q", status.Status)
	}
	if status.Checks["accounts"].Status != StatusUnhealthy {
		t.Errorf("Expected accounts unhealthy, got %q", status.Checks["accounts"].Status)
	}
	if status.Checks["accounts"].Message != "database is locked" {
		t.Errorf("Expected failure message, got %q", status.Checks["accounts"].Message)
	}
	if status.Checks["audit"].Status != StatusOK {
		t.Errorf("Expected audit ok, got %q", status.Checks["audit"].Status)
	}
}

func TestChecker_CheckReadiness_Timeout(t *testing.T) {
	checker := New(50 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	start := time.Now()
	status := checker.CheckReadiness(context.Background())
	elapsed := time.Since(start)

	if status.Status != StatusDegraded {
		t.Errorf("Expected degraded on timeout, got %q", status.Status)
	}
	if elapsed > time.Second {
		t.Errorf("Expected timeout to cut the check short, took %v", elapsed)
	}
}

func TestLivenessHandler(t *testing.T) {
	checker := New(time.Second)
	handler := checker.LivenessHandler()

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	var status Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if status.Status != StatusOK {
		t.Errorf("Expected ok, got %q", status.Status)
	}
}

func TestLivenessHandler_MethodNotAllowed(t *testing.T) {
	checker := New(time.Second)
	handler := checker.LivenessHandler()

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		check    CheckFunc
		wantCode int
	}{
		{
			name:     "healthy",
			check:    func(ctx context.Context) error { return nil },
			wantCode: http.StatusOK,
		},
		{
			name:     "unhealthy",
			check:    func(ctx context.Context) error { return errors.New("down") },
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			checker.RegisterCheck("store", tt.check)

			rec := httptest.NewRecorder()
			checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestReadinessHandler_HeadOmitsBody(t *testing.T) {
	checker := New(time.Second)

	rec := httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodHead, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("Expected empty body for HEAD, got %q", rec.Body.String())
	}
}

func TestVersionHandler(t *testing.T) {
	handler := VersionHandler(VersionInfo{
		Version:   "1.2.3",
		Commit:    "abc123",
		BuildTime: "2026-06-01T00:00:00Z",
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if info.Version != "1.2.3" {
		t.Errorf("Expected version 1.2.3, got %q", info.Version)
	}
	if info.Commit != "abc123" {
		t.Errorf("Expected commit abc123, got %q", info.Commit)
	}
	if info.GoVersion == "" {
		t.Error("Expected go_version to be set")
	}
}
