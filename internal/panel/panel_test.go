package panel

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandlerServesRoot(t *testing.T) {
	handler := Handler("")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /: got status %d, want 200", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Error("GET /: empty response body")
	}
	if !strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Error("GET /: response doesn't contain HTML doctype")
	}
}

func TestHandlerServesStaticAssets(t *testing.T) {
	handler := Handler("")

	tests := []struct {
		path     string
		wantType string
		contains string
	}{
		{"/app.js", "javascript", "charts.updated"},
		{"/style.css", "text/css", "threshold-exceeded"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("GET %s: got status %d, want 200", tt.path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, tt.wantType) {
			t.Errorf("GET %s: Content-Type %q, want %s", tt.path, ct, tt.wantType)
		}
		if !strings.Contains(w.Body.String(), tt.contains) {
			t.Errorf("GET %s: body missing %q", tt.path, tt.contains)
		}
		if cc := w.Header().Get("Cache-Control"); cc != "no-cache, must-revalidate" {
			t.Errorf("GET %s: Cache-Control %q", tt.path, cc)
		}
	}
}

// TestAppScriptFormAndRevisionHandling checks the page restores the form on a
// dropped reset and ignores chart snapshots older than the one shown.
func TestAppScriptFormAndRevisionHandling(t *testing.T) {
	handler := Handler("")
	req := httptest.NewRequest(http.MethodGet, "/app.js", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	body := w.Body.String()
	for _, want := range []string{
		"fillForm(defaults);",
		"if (data.filter) fillForm(data.filter);",
		"if (snapshot.revision < lastRevision) return;",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("app.js missing %q", want)
		}
	}
}

func TestIndexHasDashboardElements(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	Handler("").ServeHTTP(w, req)

	body := w.Body.String()
	for _, id := range []string{
		`id="filter-form"`, `id="filter-reset"`, `id="filter-download"`,
		`id="chart-temperature"`, `id="chart-airquality"`,
		`id="status-light"`, `id="timestamp"`, `src="/app.js"`,
	} {
		if !strings.Contains(body, id) {
			t.Errorf("index.html missing %s", id)
		}
	}
}

func TestHandlerIndexFallback(t *testing.T) {
	handler := Handler("")

	// Non-existent path should return index.html content
	req := httptest.NewRequest(http.MethodGet, "/some/deep/route", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /some/deep/route: got status %d, want 200 (index fallback)", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Error("GET /some/deep/route: empty body (expected index.html)")
	}
	if !strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Error("GET /some/deep/route: index fallback didn't serve index.html")
	}
}

func TestHandlerIndexFallbackSingleSegment(t *testing.T) {
	handler := Handler("")

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /nonexistent: got status %d, want 200 (index fallback)", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Error("GET /nonexistent: index fallback didn't serve index.html")
	}
}

func TestHandlerFilesystemMode(t *testing.T) {
	// Create a temp directory with a minimal index.html
	dir := t.TempDir()
	indexContent := `<!DOCTYPE html><html><body>filesystem dashboard</body></html>`
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexContent), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "test.js"), []byte("console.log('test')"), 0644); err != nil {
		t.Fatal(err)
	}

	handler := Handler(dir)

	// Root should serve filesystem index.html
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("filesystem GET /: got status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "filesystem dashboard") {
		t.Errorf("filesystem GET /: expected filesystem content, got %q", w.Body.String())
	}

	// Static asset should be served from filesystem
	req = httptest.NewRequest(http.MethodGet, "/test.js", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("filesystem GET /test.js: got status %d, want 200", w.Code)
	}

	// Index fallback works from the filesystem too
	req = httptest.NewRequest(http.MethodGet, "/deep/route", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("filesystem index fallback: got status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "filesystem dashboard") {
		t.Error("filesystem index fallback didn't serve filesystem index.html")
	}
}

func TestHandlerInvalidDirFallsBackToEmbed(t *testing.T) {
	// Non-existent dir should fall back to embedded assets
	handler := Handler("/nonexistent/dir/that/does/not/exist")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("invalid dir GET /: got status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Error("invalid dir: didn't fall back to embedded index.html")
	}
}
