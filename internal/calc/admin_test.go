package calc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/calcctl/internal/testutil/testlog"
)

func TestAdminHealthAndReady(t *testing.T) {
	testlog.Start(t)

	svc := NewService()
	router := svc.AdminRouter()

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d body=%s", path, rr.Code, rr.Body.String())
		}
		var body map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode body: %v", path, err)
		}
		if body["service"] != "calcctl" {
			t.Fatalf("%s: unexpected service: %v", path, body["service"])
		}
	}
}

func TestAdminSessionsSnapshot(t *testing.T) {
	testlog.Start(t)

	svc := NewService()
	session := NewSession(newFakeStream(""), "peer-a", quietConfig())
	svc.Registry().Add(session)

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rr := httptest.NewRecorder()
	svc.AdminRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var body struct {
		Active   int            `json:"active"`
		Sessions []SessionStats `json:"sessions"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Active != 1 || len(body.Sessions) != 1 {
		t.Fatalf("unexpected snapshot: %+v", body)
	}
	if body.Sessions[0].Remote != "peer-a" || body.Sessions[0].Transport != "tcp" {
		t.Fatalf("unexpected session entry: %+v", body.Sessions[0])
	}
}

func TestAdminMetricsExposition(t *testing.T) {
	testlog.Start(t)

	svc := NewService()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	svc.AdminRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatalf("expected prometheus exposition body")
	}
}
