package lib

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ccfrost/albumdrop/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) config.AlbumdropConfig {
	t.Helper()

	return config.AlbumdropConfig{
		Backend:    config.BackendFlickr,
		StagingDir: filepath.Join(t.TempDir(), "staging"),
		UserAgent:  "albumdrop-test/1.0",
		Limits: config.LimitsConfig{
			Quota:            3600,
			Window:           time.Hour,
			MaxAttempts:      3,
			AlbumCacheTTL:    5 * time.Minute,
			DownloadTimeout:  5 * time.Second,
			MaxDownloadBytes: DefaultMaxDownloadBytes,
			CallsPerSecond:   0, // Unpaced.
		},
		Flickr: config.FlickrConfig{
			APIKey:           "test-api-key",
			APISecret:        "test-api-secret",
			OAuthToken:       "test-oauth-token",
			OAuthTokenSecret: "test-oauth-token-secret",
		},
	}
}

// sleepRecorder replaces the retrier's wait so tests do not sleep.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func noJitter() time.Duration { return 0 }

func newTestService(t *testing.T, cfg config.AlbumdropConfig, photos PhotoService) (*Service, *sleepRecorder) {
	t.Helper()

	s := NewService(cfg, photos)
	sleeps := &sleepRecorder{}
	s.caller.retrier.sleep = sleeps.sleep
	s.caller.retrier.jitter = noJitter
	return s, sleeps
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// testJPEG is enough of a JPEG for content sniffing.
var testJPEG = append([]byte{0xff, 0xd8, 0xff, 0xe0}, bytes.Repeat([]byte{0x42}, 2048)...)

// newImageServer serves testJPEG as image/jpeg at every path.
func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", strconv.Itoa(len(testJPEG)))
		w.Write(testJPEG)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// assertDirEmpty checks that dir has no entries, or does not exist.
func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	require.Empty(t, entries, "expected %s to be empty", dir)
}

// newTextServer serves an HTML page at every path.
func newTextServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>not an image</body></html>"))
	}))
	t.Cleanup(srv.Close)
	return srv
}
