//go:generate go run github.com/golang/mock/mockgen -source=${GOFILE} -destination=zz_generated_mocks_test.go -package=gphotos AlbumsService,MediaItemsService,MediaUploader

package gphotos

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	gphotosUploader "github.com/gphotosuploader/google-photos-api-client-go/v3"
	"github.com/gphotosuploader/google-photos-api-client-go/v3/albums"
	"github.com/gphotosuploader/google-photos-api-client-go/v3/media_items"

	"github.com/ccfrost/albumdrop/internal/lib"
)

// AlbumsService defines the album operations we use.
type AlbumsService interface {
	List(ctx context.Context) ([]albums.Album, error)
	Create(ctx context.Context, title string) (*albums.Album, error)
	AddMediaItems(ctx context.Context, albumID string, mediaItemIDs []string) error
}

// MediaItemsService defines the media item operations we use.
type MediaItemsService interface {
	Create(ctx context.Context, item media_items.SimpleMediaItem) (*media_items.MediaItem, error)
}

// MediaUploader uploads file bytes and returns an upload token.
type MediaUploader interface {
	UploadFile(ctx context.Context, filePath string) (uploadToken string, err error)
}

// Client implements lib.PhotoService against the Google Photos Library API.
// It can only see albums and media items created by this app.
type Client struct {
	albums     AlbumsService
	mediaItems MediaItemsService
	uploader   MediaUploader

	mu          sync.Mutex
	productURLs map[string]string // By album or media item id.
	urlOrder    []string          // Oldest first.
	maxURLs     int
}

// defaultMaxProductURLs bounds the remembered links. Album links come back
// with every listing, so only old photo links are lost.
const defaultMaxProductURLs = 1024

var (
	_ lib.PhotoService = (*Client)(nil)
	_ lib.Linker       = (*Client)(nil)
)

// NewClient wraps an authenticated HTTP client, see NewHTTPClient.
func NewClient(httpClient *http.Client) (*Client, error) {
	c, err := gphotosUploader.NewClient(httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create google photos client: %w", err)
	}
	return newClient(c.Albums, c.MediaItems, c.Uploader), nil
}

func newClient(albumsSvc AlbumsService, mediaItemsSvc MediaItemsService, uploader MediaUploader) *Client {
	return &Client{
		albums:      albumsSvc,
		mediaItems:  mediaItemsSvc,
		uploader:    uploader,
		productURLs: make(map[string]string),
		maxURLs:     defaultMaxProductURLs,
	}
}

func (c *Client) ListAlbums(ctx context.Context) ([]lib.Album, error) {
	list, err := c.albums.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	out := make([]lib.Album, 0, len(list))
	for _, a := range list {
		c.rememberURL(a.ID, a.ProductURL)
		out = append(out, lib.Album{ID: a.ID, Title: a.Title})
	}
	return out, nil
}

// CreateAlbum creates an album and adds the primary photo to it.
//
// If adding the photo fails the album is still returned: creating it again
// would leave a duplicate album behind.
func (c *Client) CreateAlbum(ctx context.Context, title, primaryPhotoID string) (lib.Album, error) {
	album, err := c.albums.Create(ctx, title)
	if err != nil {
		return lib.Album{}, fmt.Errorf("failed to create album %q: %w", title, err)
	}
	if album == nil || album.ID == "" {
		return lib.Album{}, fmt.Errorf("failed to create album %q: no album in response", title)
	}
	c.rememberURL(album.ID, album.ProductURL)

	if primaryPhotoID != "" {
		if err := c.albums.AddMediaItems(ctx, album.ID, []string{primaryPhotoID}); err != nil {
			logger.Error("Created album but failed to add its first photo",
				slog.String("album_id", album.ID),
				slog.String("album_title", title),
				slog.String("media_id", primaryPhotoID),
				slog.String("error", err.Error()))
		}
	}
	return lib.Album{ID: album.ID, Title: album.Title}, nil
}

func (c *Client) AddPhotoToAlbum(ctx context.Context, albumID, photoID string) error {
	if err := c.albums.AddMediaItems(ctx, albumID, []string{photoID}); err != nil {
		return fmt.Errorf("failed to add %s to album %s: %w", photoID, albumID, err)
	}
	return nil
}

// UploadPhoto uploads the file and creates a media item for it.
// Media items are only visible to the owner unless shared, so the
// visibility fields of meta need no mapping. The API takes no title; the
// file name is used instead.
func (c *Client) UploadPhoto(ctx context.Context, path string, meta lib.PhotoMetadata) (string, error) {
	fileBasename := filepath.Base(path)
	uploadToken, err := c.uploader.UploadFile(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", fileBasename, err)
	}

	item, err := c.mediaItems.Create(ctx, media_items.SimpleMediaItem{
		UploadToken: uploadToken,
		Filename:    fileBasename,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create media item for %s: %w", fileBasename, err)
	}
	if item == nil || item.ID == "" {
		return "", fmt.Errorf("failed to create media item for %s: no media item in response", fileBasename)
	}
	c.rememberURL(item.ID, item.ProductURL)

	logger.Debug("Created media item",
		slog.String("file", fileBasename),
		slog.String("title", meta.Title),
		slog.String("media_id", item.ID))
	return item.ID, nil
}

func (c *Client) rememberURL(id, productURL string) {
	if id == "" || productURL == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.productURLs[id]; !ok {
		for len(c.urlOrder) >= c.maxURLs {
			delete(c.productURLs, c.urlOrder[0])
			c.urlOrder = c.urlOrder[1:]
		}
		c.urlOrder = append(c.urlOrder, id)
	}
	c.productURLs[id] = productURL
}

func (c *Client) productURL(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.productURLs[id]
}

// PhotoURL returns the media item's product URL if this client has seen it.
func (c *Client) PhotoURL(photoID string) string {
	return c.productURL(photoID)
}

// AlbumURL returns the album's product URL if this client has seen it.
func (c *Client) AlbumURL(albumID string) string {
	return c.productURL(albumID)
}
