package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/ccfrost/albumdrop/internal/lib"
)

const (
	defaultEventName = "Uncategorized Event"
	defaultAlbumName = "General"

	maxRequestBytes = 1 << 20
)

type uploadRequest struct {
	ImageURL    string `json:"imageUrl"`
	DropboxURL  string `json:"dropboxUrl"`
	AlbumPath   string `json:"albumPath"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type uploadResult struct {
	*lib.UploadResult
	FlickrURL string `json:"flickrUrl"`
	AlbumURL  string `json:"albumUrl"`
}

type uploadResponse struct {
	Message string       `json:"message"`
	Result  uploadResult `json:"result"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method "+r.Method+" not allowed")
		return
	}

	var body uploadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", "invalid JSON body: "+err.Error())
		return
	}

	req, err := body.toUploadRequest()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	log := logger.With(
		slog.String("url", req.SourceURL),
		slog.String("album_title", req.AlbumTitle))
	log.Info("Upload requested")

	// The upload runs to completion even if the caller goes away, so the
	// staged file is always cleaned up and the album state stays consistent.
	ctx := context.WithoutCancel(r.Context())
	result, err := s.uploader.UploadPhotoFromURL(ctx, req)
	if err != nil {
		status, errType := classifyError(err)
		log.Error("Upload failed",
			slog.Int("status", status),
			slog.String("error", err.Error()))
		s.writeError(w, status, errType, err.Error())
		return
	}

	photoURL, albumURL := s.uploader.Links(result)
	writeJSON(w, http.StatusOK, uploadResponse{
		Message: fmt.Sprintf("Photo uploaded to album %q", result.AlbumTitle),
		Result: uploadResult{
			UploadResult: result,
			FlickrURL:    photoURL,
			AlbumURL:     albumURL,
		},
	})
}

// toUploadRequest validates the body and fills in derived fields.
func (b uploadRequest) toUploadRequest() (lib.UploadRequest, error) {
	rawURL := strings.TrimSpace(b.ImageURL)
	if rawURL == "" {
		rawURL = strings.TrimSpace(b.DropboxURL)
	}
	if rawURL == "" {
		return lib.UploadRequest{}, errors.New("imageUrl or dropboxUrl is required")
	}
	if strings.TrimSpace(b.AlbumPath) == "" {
		return lib.UploadRequest{}, errors.New("albumPath is required")
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return lib.UploadRequest{}, fmt.Errorf("invalid image URL %q", rawURL)
	}
	u = directDownloadURL(u)

	title := strings.TrimSpace(b.Title)
	if title == "" {
		title = titleFromURL(u)
	}

	return lib.UploadRequest{
		SourceURL:   u.String(),
		Title:       title,
		Description: strings.TrimSpace(b.Description),
		AlbumTitle:  AlbumTitleFromPath(b.AlbumPath),
	}, nil
}

// AlbumTitleFromPath turns "Event/Album" into "Event -- Album".
// Blank segments are dropped, and missing parts get defaults.
func AlbumTitleFromPath(albumPath string) string {
	var parts []string
	for _, p := range strings.Split(albumPath, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	event, album := defaultEventName, defaultAlbumName
	if len(parts) > 0 {
		event = parts[0]
	}
	if len(parts) > 1 {
		album = parts[1]
	}
	return event + " -- " + album
}

// directDownloadURL rewrites Dropbox share links so they return the file
// rather than a preview page.
func directDownloadURL(u *url.URL) *url.URL {
	host := strings.ToLower(u.Hostname())
	if host != "dropbox.com" && !strings.HasSuffix(host, ".dropbox.com") {
		return u
	}
	out := *u
	q := out.Query()
	q.Del("raw")
	q.Set("dl", "1")
	out.RawQuery = q.Encode()
	return &out
}

// titleFromURL returns the last path segment without its extension, or "".
func titleFromURL(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(base, path.Ext(base)))
}

// classifyError maps an upload error to an HTTP status and error type.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, lib.ErrRateLimitExceeded):
		return http.StatusTooManyRequests, "rate_limit"
	case errors.Is(err, lib.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, lib.ErrInvalidContentType),
		errors.Is(err, lib.ErrEmptyDownload),
		errors.Is(err, lib.ErrFileTooLarge):
		return http.StatusBadRequest, "invalid_image"
	case errors.Is(err, lib.ErrTerminalAuth):
		return http.StatusUnauthorized, "auth"
	case errors.Is(err, lib.ErrFetchFailed):
		return http.StatusInternalServerError, "fetch_failed"
	}

	// Remote failures that used up their retries only carry the service's
	// own wording.
	msg := strings.ToLower(err.Error())
	for _, m := range rateLimitMessages {
		if strings.Contains(msg, m) {
			return http.StatusTooManyRequests, "rate_limit"
		}
	}
	for _, m := range authMessages {
		if strings.Contains(msg, m) {
			return http.StatusUnauthorized, "auth"
		}
	}

	if errors.Is(err, lib.ErrAlbumOperationFailed) {
		return http.StatusInternalServerError, "album_failed"
	}
	return http.StatusInternalServerError, "upload_failed"
}

var rateLimitMessages = []string{
	"rate limit",
	"http 429",
	"too many requests",
}

var authMessages = []string{
	"oauth",
	"permission denied",
	"insufficient permissions",
	"invalid api key",
	"invalid auth token",
	"invalid signature",
	"not logged in",
	"http 401",
}
