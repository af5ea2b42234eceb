package flickr

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ccfrost/albumdrop/internal/config"
	"github.com/ccfrost/albumdrop/internal/lib"
	"gopkg.in/masci/flickr.v3"
	"gopkg.in/masci/flickr.v3/photosets"
)

const (
	// hiddenFromSearch is the upload "hidden" value that keeps a photo out of public searches.
	hiddenFromSearch = 2
	visibleInSearch  = 1

	defaultCallTimeout = 60 * time.Second
)

// Client implements lib.PhotoService against the Flickr API.
// Albums are Flickr photosets.
type Client struct {
	cfg        config.FlickrConfig
	httpClient *http.Client
}

var (
	_ lib.PhotoService = (*Client)(nil)
	_ lib.Linker       = (*Client)(nil)
)

// NewClient returns a Flickr client authenticated with the OAuth token in cfg.
func NewClient(cfg config.FlickrConfig, timeout time.Duration) (*Client, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", lib.ErrTerminalAuth, strings.Join(missing, ", "))
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout, Transport: http1Transport()},
	}, nil
}

// http1Transport disables HTTP/2. The upload endpoint rejects chunked HTTP/2
// bodies with 411 Length Required.
func http1Transport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.ForceAttemptHTTP2 = false
	t.TLSNextProto = make(map[string]func(string, *tls.Conn) http.RoundTripper)
	return t
}

// api returns a fresh API client. A FlickrClient keeps per-request arguments,
// so one is made for each call.
func (c *Client) api() *flickr.FlickrClient {
	client := flickr.NewFlickrClient(c.cfg.APIKey, c.cfg.APISecret)
	client.OAuthToken = c.cfg.OAuthToken
	client.OAuthTokenSecret = c.cfg.OAuthTokenSecret
	client.HTTPClient = c.httpClient
	return client
}

// ListAlbums returns all of the user's photosets, following pagination.
func (c *Client) ListAlbums(ctx context.Context) ([]lib.Album, error) {
	var albums []lib.Album
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := photosets.GetList(c.api(), true, c.cfg.UserID, page)
		var basic *flickr.BasicResponse
		if resp != nil {
			basic = &resp.BasicResponse
		}
		if err := responseError("flickr.photosets.getList", basic, err); err != nil {
			return nil, fmt.Errorf("failed to list photosets page %d: %w", page, err)
		}

		for _, set := range resp.Photosets.Items {
			albums = append(albums, lib.Album{ID: set.Id, Title: set.Title})
		}
		if page >= resp.Photosets.Pages {
			break
		}
		page++
	}

	logger.Debug("Listed photosets",
		slog.Int("count", len(albums)),
		slog.Int("pages", page))
	return albums, nil
}

// CreateAlbum creates a photoset. Flickr requires a primary photo, which
// becomes the first photo of the set.
func (c *Client) CreateAlbum(ctx context.Context, title, primaryPhotoID string) (lib.Album, error) {
	if err := ctx.Err(); err != nil {
		return lib.Album{}, err
	}
	resp, err := photosets.Create(c.api(), title, "", primaryPhotoID)
	var basic *flickr.BasicResponse
	if resp != nil {
		basic = &resp.BasicResponse
	}
	if err := responseError("flickr.photosets.create", basic, err); err != nil {
		return lib.Album{}, err
	}
	return lib.Album{ID: resp.Set.Id, Title: title}, nil
}

// AddPhotoToAlbum adds an uploaded photo to a photoset.
func (c *Client) AddPhotoToAlbum(ctx context.Context, albumID, photoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := photosets.AddPhoto(c.api(), albumID, photoID)
	if err := responseError("flickr.photosets.addPhoto", resp, err); err != nil {
		return err
	}
	logger.Debug("Added photo to photoset",
		slog.String("photo_id", photoID),
		slog.String("photoset_id", albumID))
	return nil
}

// UploadPhoto uploads the file at path with meta's title, description and visibility.
func (c *Client) UploadPhoto(ctx context.Context, path string, meta lib.PhotoMetadata) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	resp, err := flickr.UploadReaderWithClient(c.api(), file, filepath.Base(path), uploadParams(meta), c.httpClient)
	var basic *flickr.BasicResponse
	if resp != nil {
		basic = &resp.BasicResponse
	}
	if err := responseError("upload", basic, err); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("upload: response has no photo id")
	}
	return resp.ID, nil
}

func uploadParams(meta lib.PhotoMetadata) *flickr.UploadParams {
	params := flickr.NewUploadParams()
	params.Title = meta.Title
	params.Description = meta.Description
	params.Tags = meta.Tags
	params.IsPublic = meta.IsPublic
	params.IsFriend = meta.IsFriend
	params.IsFamily = meta.IsFamily
	params.Hidden = visibleInSearch
	if meta.Hidden {
		params.Hidden = hiddenFromSearch
	}
	return params
}

// PhotoURL returns a link that redirects to the photo's page.
func (c *Client) PhotoURL(photoID string) string {
	if photoID == "" {
		return ""
	}
	return "https://www.flickr.com/photo.gne?id=" + url.QueryEscape(photoID)
}

// AlbumURL returns the photoset's page, or "" if no user id is configured.
func (c *Client) AlbumURL(albumID string) string {
	if albumID == "" || c.cfg.UserID == "" {
		return ""
	}
	return fmt.Sprintf("https://www.flickr.com/photos/%s/albums/%s", url.PathEscape(c.cfg.UserID), url.PathEscape(albumID))
}
