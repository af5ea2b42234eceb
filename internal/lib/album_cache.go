package lib

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// AlbumDirectory caches the remote album list and resolves album titles to ids.
type AlbumDirectory struct {
	photos PhotoService
	caller *remoteCaller
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	albums    []Album
	fetchedAt time.Time // Zero when stale.
	// gen is bumped by Invalidate and by album creation. A listing only
	// replaces the cache if gen did not change while it ran.
	gen     uint64
	created []createdAlbum

	titleLocks keyedMutex
}

type createdAlbum struct {
	Album
	gen uint64
}

// AlbumResolution is the album a title resolved to.
type AlbumResolution struct {
	Album
	// Created is true if the album was created with the primary photo.
	Created bool
}

func newAlbumDirectory(photos PhotoService, caller *remoteCaller, ttl time.Duration, now func() time.Time) *AlbumDirectory {
	return &AlbumDirectory{
		photos: photos,
		caller: caller,
		ttl:    ttl,
		now:    now,
	}
}

// normalizeTitle trims leading and trailing whitespace and lowercases.
// Internal whitespace and punctuation are kept.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// GetAlbums returns the cached album list, refreshing it from the remote
// service when it is stale or forceRefresh is set.
// Listing is best effort: on failure the last good list (possibly empty) is returned.
func (d *AlbumDirectory) GetAlbums(ctx context.Context, forceRefresh bool) []Album {
	if !forceRefresh {
		if albums, fresh := d.cached(); fresh {
			return albums
		}
	}

	d.mu.RLock()
	startGen := d.gen
	d.mu.RUnlock()

	var fetched []Album
	ok := false
	_ = d.caller.do(ctx, callListAlbums, func(ctx context.Context) error {
		albums, err := d.photos.ListAlbums(ctx)
		if err != nil {
			return err
		}
		fetched = albums
		ok = true
		return nil
	})
	if !ok {
		albums, _ := d.cached()
		logger.Warn("Using cached album list",
			slog.Int("count", len(albums)))
		return albums
	}

	albums := make([]Album, 0, len(fetched))
	for _, a := range fetched {
		if a.ID == "" {
			continue
		}
		albums = append(albums, Album{ID: a.ID, Title: a.Title})
	}

	d.mu.Lock()
	if d.gen != startGen {
		// The list may predate an album created while it was in flight.
		albums = d.withCreatedSince(albums, startGen)
		d.mu.Unlock()
		logger.Debug("Album list changed during refresh, not caching",
			slog.Int("count", len(albums)))
		return cloneAlbums(albums)
	}
	d.albums = albums
	d.fetchedAt = d.now()
	d.created = nil
	d.mu.Unlock()

	logger.Debug("Refreshed album list",
		slog.Int("count", len(albums)))
	return cloneAlbums(albums)
}

// withCreatedSince adds the albums created after generation gen that are
// missing from albums. d.mu must be held.
func (d *AlbumDirectory) withCreatedSince(albums []Album, gen uint64) []Album {
	seen := make(map[string]bool, len(albums))
	for _, a := range albums {
		seen[a.ID] = true
	}
	for _, c := range d.created {
		if c.gen > gen && !seen[c.ID] {
			albums = append(albums, c.Album)
			seen[c.ID] = true
		}
	}
	return albums
}

// Invalidate forces the next GetAlbums to refetch.
func (d *AlbumDirectory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.fetchedAt = time.Time{}
}

func (d *AlbumDirectory) cached() ([]Album, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fresh := !d.fetchedAt.IsZero() && d.now().Sub(d.fetchedAt) < d.ttl
	return cloneAlbums(d.albums), fresh
}

// FindOrCreateAlbum returns the album whose title matches title, ignoring case
// and surrounding whitespace. If there is none, it creates one with
// primaryPhotoID as its first photo.
func (d *AlbumDirectory) FindOrCreateAlbum(ctx context.Context, title, primaryPhotoID string) (AlbumResolution, error) {
	key := normalizeTitle(title)
	if key == "" {
		return AlbumResolution{}, fmt.Errorf("%w: %w: album title is empty", ErrAlbumOperationFailed, ErrValidation)
	}

	// Serialize find-or-create per title within this process so that two
	// requests for a new album do not both create it.
	unlock := d.titleLocks.Lock(key)
	defer unlock()

	for _, album := range d.GetAlbums(ctx, false) {
		if normalizeTitle(album.Title) == key {
			logger.Debug("Found existing album",
				slog.String("title", album.Title),
				slog.String("album_id", album.ID))
			return AlbumResolution{Album: album}, nil
		}
	}

	wantTitle := strings.TrimSpace(title)
	var created Album
	err := d.caller.do(ctx, callCreateAlbum, func(ctx context.Context) error {
		album, err := d.photos.CreateAlbum(ctx, wantTitle, primaryPhotoID)
		if err != nil {
			return err
		}
		created = album
		return nil
	})
	if err != nil {
		return AlbumResolution{}, fmt.Errorf("%w: creating album %q: %w", ErrAlbumOperationFailed, wantTitle, err)
	}
	if created.ID == "" {
		return AlbumResolution{}, fmt.Errorf("%w: creating album %q: no album id in response", ErrAlbumOperationFailed, wantTitle)
	}
	if created.Title == "" {
		created.Title = wantTitle
	}

	// Keep the new album as a fallback in case the next listing fails.
	d.mu.Lock()
	d.gen++
	d.albums = append(d.albums, created)
	d.created = append(d.created, createdAlbum{Album: created, gen: d.gen})
	d.fetchedAt = time.Time{}
	d.mu.Unlock()

	logger.Info("Created album",
		slog.String("title", created.Title),
		slog.String("album_id", created.ID),
		slog.String("primary_photo_id", primaryPhotoID))
	return AlbumResolution{Album: created, Created: true}, nil
}

func cloneAlbums(albums []Album) []Album {
	if albums == nil {
		return []Album{}
	}
	out := make([]Album, len(albums))
	copy(out, albums)
	return out
}

// keyedMutex is a set of mutexes created on demand per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

// Lock locks key and returns the function that unlocks it.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
