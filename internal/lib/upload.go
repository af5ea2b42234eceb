package lib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ccfrost/albumdrop/internal/config"
	"golang.org/x/time/rate"
)

// Service uploads photos into albums. One Service is shared by all requests
// in the process; its call budget and album directory are safe for concurrent use.
type Service struct {
	photos  PhotoService
	budget  *CallBudget
	caller  *remoteCaller
	albums  *AlbumDirectory
	fetcher *Fetcher
	now     func() time.Time
}

// UploadRequest is a single photo to upload.
type UploadRequest struct {
	SourceURL   string
	Title       string
	Description string
	AlbumTitle  string

	// Progress is optional.
	Progress ProgressFunc
}

// UploadResult describes a successful upload.
type UploadResult struct {
	PhotoID      string    `json:"photoId"`
	AlbumID      string    `json:"albumId"`
	AlbumTitle   string    `json:"albumTitle"`
	AlbumCreated bool      `json:"albumCreated"`
	IsPrivate    bool      `json:"isPrivate"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

type uploadState string

const (
	stateStaging        uploadState = "staging"
	stateUploading      uploadState = "uploading"
	stateResolvingAlbum uploadState = "resolving_album"
	stateAttaching      uploadState = "attaching"
	stateCleanup        uploadState = "cleanup"
	stateDone           uploadState = "done"
)

// NewService creates the Service for photos using the limits in cfg.
func NewService(cfg config.AlbumdropConfig, photos PhotoService) *Service {
	limits := cfg.Limits

	pacing := rate.Inf
	if limits.CallsPerSecond > 0 {
		pacing = rate.Limit(limits.CallsPerSecond)
	}
	budget := NewCallBudget(limits.Quota, limits.Window)
	caller := &remoteCaller{
		budget:  budget,
		pacer:   rate.NewLimiter(pacing, max(limits.Burst, 1)),
		retrier: NewRetrier(limits.MaxAttempts),
	}

	return &Service{
		photos:  photos,
		budget:  budget,
		caller:  caller,
		albums:  newAlbumDirectory(photos, caller, limits.AlbumCacheTTL, time.Now),
		fetcher: NewFetcher(cfg.StagingDir, cfg.UserAgent, limits.DownloadTimeout, limits.MaxDownloadBytes),
		now:     time.Now,
	}
}

// Albums returns the album directory.
func (s *Service) Albums() *AlbumDirectory {
	return s.albums
}

// RateLimitStats reports the current remote call budget.
func (s *Service) RateLimitStats() BudgetStats {
	return s.budget.Stats()
}

// Links returns browser links for an upload, if the photo service can build them.
func (s *Service) Links(result *UploadResult) (photoURL, albumURL string) {
	linker, ok := s.photos.(Linker)
	if !ok || result == nil {
		return "", ""
	}
	return linker.PhotoURL(result.PhotoID), linker.AlbumURL(result.AlbumID)
}

// UploadPhotoFromURL downloads req.SourceURL, uploads it as a private photo
// and files it into the album titled req.AlbumTitle, creating the album if
// needed. The downloaded file is deleted on every return path.
//
// If the album cannot be resolved the photo stays uploaded but unfiled, and
// the error is returned.
func (s *Service) UploadPhotoFromURL(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if strings.TrimSpace(req.SourceURL) == "" {
		return nil, fmt.Errorf("%w: source url is required", ErrValidation)
	}
	if strings.TrimSpace(req.AlbumTitle) == "" {
		return nil, fmt.Errorf("%w: album title is required", ErrValidation)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Photo " + s.now().Format("2006-01-02 15:04:05")
	}
	log := logger.With(
		slog.String("url", req.SourceURL),
		slog.String("album_title", req.AlbumTitle))

	log.Debug("Upload state", slog.String("state", string(stateStaging)))
	staged, err := s.fetcher.FetchAndStage(ctx, req.SourceURL, title, req.Progress)
	if err != nil {
		return nil, err
	}
	done := false
	defer func() {
		log.Debug("Upload state", slog.String("state", string(stateCleanup)))
		removeStaged(staged)
		if done {
			log.Debug("Upload state", slog.String("state", string(stateDone)))
		}
	}()

	log.Debug("Upload state", slog.String("state", string(stateUploading)))
	description := req.Description
	if strings.TrimSpace(description) == "" {
		description = generatedDescription(req.AlbumTitle, s.now())
	}
	meta := PhotoMetadata{
		Title:       title,
		Description: description,
		IsPublic:    false,
		IsFriend:    false,
		IsFamily:    false,
		Hidden:      true,
	}
	var photoID string
	err = s.caller.do(ctx, callUploadPhoto, func(ctx context.Context) error {
		id, err := s.photos.UploadPhoto(ctx, staged.Path, meta)
		if err != nil {
			return err
		}
		if id == "" {
			return errors.New("upload returned no photo id")
		}
		photoID = id
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", staged.Filename, err)
	}
	log.Info("Uploaded photo",
		slog.String("photo_id", photoID),
		slog.Int64("bytes", staged.Size))

	log.Debug("Upload state", slog.String("state", string(stateResolvingAlbum)))
	album, err := s.albums.FindOrCreateAlbum(ctx, req.AlbumTitle, photoID)
	if err != nil {
		log.Error("Photo uploaded but not added to an album",
			slog.String("photo_id", photoID),
			slog.String("error", err.Error()))
		return nil, err
	}

	// A new album already has the photo as its primary photo.
	if !album.Created {
		log.Debug("Upload state", slog.String("state", string(stateAttaching)))
		_ = s.caller.do(ctx, callAddToAlbum, func(ctx context.Context) error {
			return s.photos.AddPhotoToAlbum(ctx, album.ID, photoID)
		})
	}

	done = true
	return &UploadResult{
		PhotoID:      photoID,
		AlbumID:      album.ID,
		AlbumTitle:   album.Title,
		AlbumCreated: album.Created,
		IsPrivate:    true,
		UploadedAt:   s.now().UTC(),
	}, nil
}

func generatedDescription(albumTitle string, now time.Time) string {
	return fmt.Sprintf("%s. Uploaded %s.", strings.TrimSpace(albumTitle), now.Format("January 2, 2006"))
}

// removeStaged deletes a staged file. Failures are only logged.
func removeStaged(staged *StagedImage) {
	if err := os.Remove(staged.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to delete staged file",
			slog.String("path", staged.Path),
			slog.String("error", err.Error()))
		return
	}
	logger.Debug("Deleted staged file",
		slog.String("path", staged.Path))
}
