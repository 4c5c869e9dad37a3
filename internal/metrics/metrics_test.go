package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/1broseidon/winstack/internal/windows"
)

func TestMetrics_FollowRegistryEvents(t *testing.T) {
	m := New()
	reg := windows.New(windows.Config{})
	cancel := reg.Subscribe(m.Observer())
	defer cancel()

	reg.AddWindow("a", windows.Patch{})
	reg.AddWindow("b", windows.Patch{})
	reg.FocusWindow("a")
	reg.MinimizeWindow("a")
	reg.RemoveWindow("b")
	reg.RemoveWindow("ghost")

	if got := testutil.ToFloat64(m.windows); got != 1 {
		t.Fatalf("winstack_windows = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.version); got != 5 {
		t.Fatalf("winstack_registry_version = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.actions.WithLabelValues("ADD")); got != 2 {
		t.Fatalf("ADD count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.actions.WithLabelValues("REMOVE")); got != 1 {
		t.Fatalf("REMOVE count = %v, want 1", got)
	}
	// add a, add b, focus a
	if got := testutil.ToFloat64(m.focusChanges); got != 3 {
		t.Fatalf("focus changes = %v, want 3", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	reg := windows.New(windows.Config{})
	reg.AddWindow("a", windows.Patch{})
	m.Sync(reg.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if !strings.Contains(string(body), "winstack_windows 1") {
		t.Fatalf("expected gauge in output, got:\n%s", body)
	}
}
