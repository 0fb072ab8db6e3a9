package download

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/beanscan/model-updater/internal/model"
	"github.com/beanscan/model-updater/internal/store"
)

// modelPayload is comfortably above the test threshold used below
var modelPayload = bytes.Repeat([]byte("tflite"), 1024)

func newTestPipeline(t *testing.T, handler http.Handler, minBytes int64) (*Pipeline, *store.Store, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	st := store.New(t.TempDir())
	p := NewWithClient(server.URL+"/models/%s", st, server.Client(), minBytes)
	return p, st, server
}

func TestDownload_Success(t *testing.T) {
	p, st, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/v2.0.0") {
			t.Errorf("Unexpected request path: %s", r.URL.Path)
		}
		w.Write(modelPayload)
	}), 1024)

	if err := p.Download(context.Background(), "v2.0.0"); err != nil {
		t.Fatalf("Download() failed: %v", err)
	}

	data, err := os.ReadFile(st.ArtifactPath())
	if err != nil {
		t.Fatalf("Artifact unreadable after download: %v", err)
	}
	if !bytes.Equal(data, modelPayload) {
		t.Error("Artifact content does not match served payload")
	}
	if v := st.CurrentVersion(); v != "v2.0.0" {
		t.Errorf("CurrentVersion() = %q, expected %q", v, "v2.0.0")
	}
	if _, err := os.Stat(st.TempArtifactPath()); !os.IsNotExist(err) {
		t.Error("Expected temp file to be gone after success")
	}
}

func TestDownload_FollowsRedirect(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelPayload)
	}))
	defer target.Close()

	p, st, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}), 1024)

	if err := p.Download(context.Background(), "v2.0.0"); err != nil {
		t.Fatalf("Download() through redirect failed: %v", err)
	}
	if v := st.CurrentVersion(); v != "v2.0.0" {
		t.Errorf("CurrentVersion() = %q, expected %q", v, "v2.0.0")
	}
}

func TestDownload_StatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		expected model.ErrorKind
	}{
		{http.StatusNotFound, model.ErrResourceNotFound},
		{http.StatusForbidden, model.ErrRateLimitExceeded},
		{http.StatusServiceUnavailable, model.ErrServerUnavailable},
		{http.StatusTeapot, model.ErrUnknown},
	}

	for _, test := range tests {
		p, st, server := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(test.status)
		}), 1024)

		err := p.Download(context.Background(), "v9.9.9")
		if err == nil {
			t.Errorf("Expected error for status %d", test.status)
			server.Close()
			continue
		}
		if kind := model.KindOf(err); kind != test.expected {
			t.Errorf("Status %d: error kind = %s, expected %s", test.status, kind, test.expected)
		}
		// No local file may be touched on a non-OK status
		if _, err := os.Stat(st.TempArtifactPath()); !os.IsNotExist(err) {
			t.Errorf("Status %d: temp file exists after aborted download", test.status)
		}
		server.Close()
	}
}

func TestDownload_TooSmallLeavesPreviousInstall(t *testing.T) {
	p, st, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>error page pretending to be a model</html>"))
	}), 1024)

	// Seed a previous install
	if err := os.WriteFile(st.ArtifactPath(), []byte("old-model"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(st.MarkerPath(), []byte("v1.0.0"), 0644); err != nil {
		t.Fatal(err)
	}

	err := p.Download(context.Background(), "v2.0.0")
	if err == nil {
		t.Fatal("Expected error for undersized artifact")
	}
	if kind := model.KindOf(err); kind != model.ErrCorrupted {
		t.Errorf("Error kind = %s, expected %s", kind, model.ErrCorrupted)
	}

	data, _ := os.ReadFile(st.ArtifactPath())
	if string(data) != "old-model" {
		t.Error("Previous artifact was disturbed by a failed download")
	}
	if v := st.CurrentVersion(); v != "v1.0.0" {
		t.Errorf("CurrentVersion() = %q, expected previous %q", v, "v1.0.0")
	}
	if _, err := os.Stat(st.TempArtifactPath()); !os.IsNotExist(err) {
		t.Error("Expected temp file to be cleaned up after rejection")
	}
}

func TestDownload_TruncatedTransfer(t *testing.T) {
	p, st, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100000")
		w.Write(modelPayload[:2048])
		// Flush and let the handler return early; the client sees a short body
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}), 1024)

	err := p.Download(context.Background(), "v2.0.0")
	if err == nil {
		t.Fatal("Expected error for truncated transfer")
	}
	if _, err := os.Stat(st.TempArtifactPath()); !os.IsNotExist(err) {
		t.Error("Expected temp file to be cleaned up after truncation")
	}
}

func TestDownload_ConcurrentAttemptRejected(t *testing.T) {
	release := make(chan struct{})
	p, _, _ := newTestPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write(modelPayload)
	}), 1024)

	done := make(chan error, 1)
	go func() {
		done <- p.Download(context.Background(), "v2.0.0")
	}()

	// Poll until the first attempt holds the guard
	acquired := false
	for i := 0; i < 1000; i++ {
		if p.guard.TryLock() {
			p.guard.Unlock()
			time.Sleep(time.Millisecond)
			continue
		}
		acquired = true
		break
	}
	if !acquired {
		close(release)
		<-done
		t.Fatal("first attempt never acquired the guard")
	}

	err := p.Download(context.Background(), "v2.0.0")
	if err == nil {
		t.Error("Expected second concurrent download to be rejected")
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("First download failed: %v", err)
	}
}

func TestArtifactURL_EscapesVersion(t *testing.T) {
	p := New("https://example.com/models/%s", store.New(t.TempDir()))

	url := p.ArtifactURL("v1.0.0 beta/x")
	if strings.Contains(url, " ") || strings.Contains(url, "beta/x") {
		t.Errorf("ArtifactURL() did not escape the version tag: %s", url)
	}
}
