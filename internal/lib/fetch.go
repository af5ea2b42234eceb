package lib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultDownloadTimeout  = 30 * time.Second
	DefaultMaxDownloadBytes = 200 * 1024 * 1024
)

// StagedImage is a downloaded image waiting to be uploaded.
// The orchestrator that staged it deletes Path when it is done.
type StagedImage struct {
	Path        string
	Size        int64
	Title       string
	Filename    string
	ContentType string
}

// ProgressFunc returns a writer that receives the downloaded bytes.
// total is -1 when the server did not send a length.
type ProgressFunc func(total int64) io.Writer

// Fetcher downloads remote images into the staging dir.
type Fetcher struct {
	client     *http.Client
	stagingDir string
	userAgent  string
	maxBytes   int64
	now        func() time.Time
}

func NewFetcher(stagingDir, userAgent string, timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		stagingDir: stagingDir,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		now:        time.Now,
	}
}

// stagedFilename returns title with a ".jpg" suffix unless it already has one.
func stagedFilename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "photo"
	}
	if strings.HasSuffix(strings.ToLower(title), ".jpg") {
		return title
	}
	return title + ".jpg"
}

var filenameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "-",
	"\"", "-",
	"<", "-",
	">", "-",
	"|", "-",
	"\x00", "",
)

// FetchAndStage downloads sourceURL into a uniquely named file in the staging
// dir. On success the caller owns the file and must delete it.
func (f *Fetcher) FetchAndStage(ctx context.Context, sourceURL, title string, progress ProgressFunc) (*StagedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d %s", ErrFetchFailed, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if contentType == "" || err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("%w: %q is not an image", ErrInvalidContentType, contentType)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrFileTooLarge, resp.ContentLength, f.maxBytes)
	}

	if err := os.MkdirAll(f.stagingDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create staging dir %s: %w", f.stagingDir, err)
	}
	filename := stagedFilename(title)
	path := filepath.Join(f.stagingDir, fmt.Sprintf("%d-%s-%s", f.now().UnixMilli(), uuid.NewString(), filenameReplacer.Replace(filename)))

	size, err := f.writeStaged(path, resp, progress)
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warn("Failed to remove partial download",
				slog.String("path", path),
				slog.String("error", rmErr.Error()))
		}
		return nil, err
	}

	logger.Debug("Staged image",
		slog.String("url", sourceURL),
		slog.String("path", path),
		slog.Int64("bytes", size))
	return &StagedImage{
		Path:        path,
		Size:        size,
		Title:       title,
		Filename:    filename,
		ContentType: mediaType,
	}, nil
}

func (f *Fetcher) writeStaged(path string, resp *http.Response, progress ProgressFunc) (int64, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return 0, fmt.Errorf("failed to create staging file %s: %w", path, err)
	}
	defer func() {
		if file != nil {
			file.Close()
		}
	}()

	var dst io.Writer = file
	if progress != nil {
		if w := progress(resp.ContentLength); w != nil {
			dst = io.MultiWriter(file, w)
		}
	}

	// Read one byte past the limit to detect oversized bodies without a length.
	n, err := io.Copy(dst, io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return 0, fmt.Errorf("%w: reading body: %w", ErrFetchFailed, err)
	}
	if n > f.maxBytes {
		return 0, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, f.maxBytes)
	}
	if n == 0 {
		return 0, ErrEmptyDownload
	}

	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("failed to close staging file %s: %w", path, err)
	}
	file = nil
	return n, nil
}
