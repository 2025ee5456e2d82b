package auth_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/micro-nova/an30259a/internal/auth"
)

// writeKeys writes a key file into a fresh temp dir and returns its path.
func writeKeys(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api_keys")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func newService(t *testing.T, path string) *auth.Service {
	t.Helper()
	svc, err := auth.NewService(path)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func serve(svc *auth.Service, req *http.Request) (*httptest.ResponseRecorder, bool) {
	called := false
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, called
}

// --- Open mode ---

func TestService_EmptyPath_OpenMode(t *testing.T) {
	svc := newService(t, "")
	if !svc.IsOpenMode() {
		t.Error("IsOpenMode() = false, want true with no key file")
	}
	if svc.VerifyKey("any-key") {
		t.Error("VerifyKey(any-key) = true with no keys")
	}
}

func TestService_MissingFile_OpenMode(t *testing.T) {
	svc := newService(t, filepath.Join(t.TempDir(), "absent"))
	if !svc.IsOpenMode() {
		t.Error("IsOpenMode() = false, want true for missing file")
	}
}

func TestMiddleware_OpenMode_PassesThrough(t *testing.T) {
	svc := newService(t, "")
	rr, called := serve(svc, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if !called || rr.Code != http.StatusOK {
		t.Errorf("open mode: called=%v status=%d, want pass-through", called, rr.Code)
	}
}

// --- Secured mode ---

func TestService_ParsesKeyFile(t *testing.T) {
	svc := newService(t, writeKeys(t, "# operators\nkey-one\n\n  key-two  \n"))

	if svc.IsOpenMode() {
		t.Fatal("IsOpenMode() = true with keys present")
	}
	for _, k := range []string{"key-one", "key-two"} {
		if !svc.VerifyKey(k) {
			t.Errorf("VerifyKey(%q) = false", k)
		}
	}
	for _, k := range []string{"", "# operators", "key-three"} {
		if svc.VerifyKey(k) {
			t.Errorf("VerifyKey(%q) = true", k)
		}
	}
}

func TestMiddleware_Secured(t *testing.T) {
	svc := newService(t, writeKeys(t, "secret\n"))

	header := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	header.Header.Set("api-key", "secret")
	query := httptest.NewRequest(http.MethodGet, "/api/state?api-key=secret", nil)
	wrong := httptest.NewRequest(http.MethodGet, "/api/state?api-key=nope", nil)
	none := httptest.NewRequest(http.MethodGet, "/api/state", nil)

	tests := []struct {
		name   string
		req    *http.Request
		pass   bool
		status int
	}{
		{"header", header, true, http.StatusOK},
		{"query", query, true, http.StatusOK},
		{"wrong key", wrong, false, http.StatusUnauthorized},
		{"no key", none, false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		rr, called := serve(svc, tt.req)
		if called != tt.pass || rr.Code != tt.status {
			t.Errorf("%s: called=%v status=%d, want %v/%d", tt.name, called, rr.Code, tt.pass, tt.status)
		}
	}
}

func TestService_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_keys")
	svc := newService(t, path)
	if !svc.IsOpenMode() {
		t.Fatal("initially expected open mode")
	}

	if err := os.WriteFile(path, []byte("reload-key\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := svc.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !svc.VerifyKey("reload-key") {
		t.Error("VerifyKey after reload returned false")
	}
}

func TestService_WatchesFile(t *testing.T) {
	path := writeKeys(t, "first\n")
	svc := newService(t, path)

	if err := os.WriteFile(path, []byte("second\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for !svc.VerifyKey("second") {
		if time.Now().After(deadline) {
			t.Fatal("key file change not picked up")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if svc.VerifyKey("first") {
		t.Error("old key still accepted after reload")
	}
}
