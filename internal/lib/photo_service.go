//go:generate go run github.com/golang/mock/mockgen -source=${GOFILE} -destination=zz_generated_mocks_test.go -package=lib PhotoService

package lib

import (
	"context"
	"fmt"
	"strings"
)

// Album is an album (a Flickr photoset) on the remote service.
type Album struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PhotoMetadata describes a photo being uploaded.
type PhotoMetadata struct {
	Title       string
	Description string
	Tags        []string

	IsPublic bool
	IsFriend bool
	IsFamily bool
	// Hidden hides the photo from public searches.
	Hidden bool
}

// PhotoService defines the remote photo service operations we use.
type PhotoService interface {
	ListAlbums(ctx context.Context) ([]Album, error)
	CreateAlbum(ctx context.Context, title, primaryPhotoID string) (Album, error)
	AddPhotoToAlbum(ctx context.Context, albumID, photoID string) error
	// UploadPhoto uploads the file at path and returns the new photo id.
	UploadPhoto(ctx context.Context, path string, meta PhotoMetadata) (string, error)
}

// Linker is implemented by services that can build browser links.
type Linker interface {
	PhotoURL(photoID string) string
	AlbumURL(albumID string) string
}

// Unconfigured is a PhotoService that fails every call because required
// settings are missing. It lets the server start and report its health.
type Unconfigured struct {
	Missing []string
}

func (u Unconfigured) err() error {
	return fmt.Errorf("%w: missing settings: %s", ErrTerminalAuth, strings.Join(u.Missing, ", "))
}

func (u Unconfigured) ListAlbums(ctx context.Context) ([]Album, error) {
	return nil, u.err()
}

func (u Unconfigured) CreateAlbum(ctx context.Context, title, primaryPhotoID string) (Album, error) {
	return Album{}, u.err()
}

func (u Unconfigured) AddPhotoToAlbum(ctx context.Context, albumID, photoID string) error {
	return u.err()
}

func (u Unconfigured) UploadPhoto(ctx context.Context, path string, meta PhotoMetadata) (string, error) {
	return "", u.err()
}
