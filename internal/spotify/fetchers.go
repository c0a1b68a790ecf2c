package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spotcat/spotcat/internal/shared"
)

// Provider hard limits for batch and page sizes.
const (
	tracksBatchSize       = 50
	albumsBatchSize       = 20
	playlistPageLimit     = 100
	artistAlbumsPageLimit = 50
)

// AlbumTypes are the release types queried separately when discovering an
// artist's catalog. A single combined include_groups query is known to
// under-report compilations.
var AlbumTypes = []string{"album", "single", "compilation"}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(ids); i += size {
		end := min(i+size, len(ids))
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}

// TracksByIDs fetches full track objects in chunks of up to 50 ids,
// concatenated in input order. Null entries the provider returns for unknown
// or unavailable ids are dropped. A chunk that exhausts its retries truncates
// the remaining chunks: the partial result is returned together with the
// error, and callers must treat a short list as possibly incomplete.
func (c *Client) TracksByIDs(ctx context.Context, ids []string) ([]Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if ValidID(id) {
			valid = append(valid, id)
		}
	}
	if dropped := len(ids) - len(valid); dropped > 0 {
		c.logger.Warn("filtered invalid track ids", "dropped", dropped)
	}

	chunks := chunkIDs(valid, tracksBatchSize)
	var tracks []Track

	for i, chunk := range chunks {
		c.logger.Debug("fetching track batch", "batch", i+1, "total", len(chunks), "size", len(chunk))

		var resp struct {
			Tracks []*Track `json:"tracks"`
		}
		err := c.get(ctx, "/tracks", url.Values{"ids": {strings.Join(chunk, ",")}}, &resp)
		if err != nil {
			c.logger.Warn("track batch failed, truncating remaining chunks", "batch", i+1, "err", err)
			return tracks, fmt.Errorf("track batch %d/%d: %w", i+1, len(chunks), err)
		}

		for _, t := range resp.Tracks {
			if t != nil {
				tracks = append(tracks, *t)
			}
		}

		if i < len(chunks)-1 {
			if !sleep(ctx, c.batchDelay) {
				return tracks, ctx.Err()
			}
		}
	}

	return tracks, nil
}

// AlbumsByIDs fetches full album objects in chunks of up to 20 ids. A chunk
// that fails terminally (not-found, forbidden) is skipped and its ids are
// reported in failed; authentication failure and retry exhaustion abort the
// remaining chunks and return what was accumulated alongside the error.
func (c *Client) AlbumsByIDs(ctx context.Context, ids []string) (albums []Album, failed []string, err error) {
	chunks := chunkIDs(ids, albumsBatchSize)

	for i, chunk := range chunks {
		c.logger.Debug("fetching album batch", "batch", i+1, "total", len(chunks), "size", len(chunk))

		var resp struct {
			Albums []*Album `json:"albums"`
		}
		cerr := c.get(ctx, "/albums", url.Values{"ids": {strings.Join(chunk, ",")}}, &resp)
		if cerr != nil {
			if errors.Is(cerr, shared.ErrRateLimitExceeded) || errors.Is(cerr, shared.ErrAuthFailed) {
				failed = append(failed, chunk...)
				return albums, failed, fmt.Errorf("album batch %d/%d: %w", i+1, len(chunks), cerr)
			}
			c.logger.Warn("album batch failed, skipping", "batch", i+1, "err", cerr)
			failed = append(failed, chunk...)
			continue
		}

		for _, a := range resp.Albums {
			if a != nil {
				albums = append(albums, *a)
			}
		}

		if i < len(chunks)-1 {
			if !sleep(ctx, c.batchDelay) {
				return albums, failed, ctx.Err()
			}
		}
	}

	return albums, failed, nil
}

// AlbumDetails fetches one album's metadata, its complete stub list
// (following track-page cursors), and the full track objects dereferenced
// from the stubs. Returns (nil, nil, nil, nil) when the album does not exist.
func (c *Client) AlbumDetails(ctx context.Context, albumID string) (*Album, []TrackStub, []Track, error) {
	if !ValidID(albumID) {
		return nil, nil, nil, fmt.Errorf("%w: %q", shared.ErrInvalidID, albumID)
	}

	var album Album
	if err := c.get(ctx, "/albums/"+albumID, nil, &album); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, nil, nil
		}
		return nil, nil, nil, err
	}

	stubs := album.Tracks.Items
	next := album.Tracks.Next
	for next != nil {
		if !sleep(ctx, c.batchDelay) {
			return &album, stubs, nil, ctx.Err()
		}
		var page TrackPage
		if err := c.getURL(ctx, *next, &page); err != nil {
			return &album, stubs, nil, err
		}
		stubs = append(stubs, page.Items...)
		next = page.Next
	}

	ids := make([]string, 0, len(stubs))
	for _, stub := range stubs {
		if stub.ID != "" {
			ids = append(ids, stub.ID)
		}
	}

	tracks, err := c.TracksByIDs(ctx, ids)
	return &album, stubs, tracks, err
}

// ArtistAlbums discovers an artist's complete set of releases by issuing one
// paginated query per release type, then deduplicating by album id across the
// result sets, preserving first-seen order.
func (c *Client) ArtistAlbums(ctx context.Context, artistID, market string) ([]Album, error) {
	if !ValidID(artistID) {
		return nil, fmt.Errorf("%w: %q", shared.ErrInvalidID, artistID)
	}

	var all []Album
	seen := make(map[string]bool)

	for _, albumType := range AlbumTypes {
		albums, err := c.artistAlbumsByType(ctx, artistID, albumType, market)
		for _, album := range albums {
			if album.ID != "" && !seen[album.ID] {
				all = append(all, album)
				seen[album.ID] = true
			}
		}
		if err != nil {
			if errors.Is(err, shared.ErrRateLimitExceeded) || errors.Is(err, shared.ErrAuthFailed) {
				return all, err
			}
			c.logger.Warn("album type query failed, continuing with remaining types", "type", albumType, "err", err)
		}
	}

	return all, nil
}

// artistAlbumsByType traverses the paginated artist-albums endpoint for one
// release type, following next cursors until exhausted.
func (c *Client) artistAlbumsByType(ctx context.Context, artistID, albumType, market string) ([]Album, error) {
	params := url.Values{
		"include_groups": {albumType},
		"market":         {market},
		"limit":          {strconv.Itoa(artistAlbumsPageLimit)},
	}

	var albums []Album
	var page AlbumPage
	if err := c.get(ctx, "/artists/"+artistID+"/albums", params, &page); err != nil {
		return nil, err
	}
	albums = append(albums, page.Items...)

	for page.Next != nil {
		if !sleep(ctx, c.batchDelay) {
			return albums, ctx.Err()
		}
		next := *page.Next
		page = AlbumPage{}
		if err := c.getURL(ctx, next, &page); err != nil {
			return albums, err
		}
		albums = append(albums, page.Items...)
	}

	c.logger.Debug("album type query complete", "type", albumType, "albums", len(albums))
	return albums, nil
}

// PlaylistTracks fetches playlist metadata and all items via paginated
// traversal, preserving item order including null tracks (region-unavailable
// or removed entries). After traversal the non-null track ids are fetched in
// batches and the items back-filled with the richer track data.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) (*Playlist, []PlaylistItem, error) {
	if !ValidID(playlistID) {
		return nil, nil, fmt.Errorf("%w: %q", shared.ErrInvalidID, playlistID)
	}

	var playlist Playlist
	if err := c.get(ctx, "/playlists/"+playlistID, nil, &playlist); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var items []PlaylistItem
	params := url.Values{"limit": {strconv.Itoa(playlistPageLimit)}}
	var page PlaylistItemPage
	if err := c.get(ctx, "/playlists/"+playlistID+"/tracks", params, &page); err != nil {
		return &playlist, nil, err
	}
	items = append(items, page.Items...)

	for page.Next != nil {
		if !sleep(ctx, c.batchDelay) {
			return &playlist, items, ctx.Err()
		}
		next := *page.Next
		page = PlaylistItemPage{}
		if err := c.getURL(ctx, next, &page); err != nil {
			return &playlist, items, err
		}
		items = append(items, page.Items...)
	}

	var ids []string
	for _, item := range items {
		if item.Track != nil && item.Track.ID != "" {
			ids = append(ids, item.Track.ID)
		}
	}

	tracks, err := c.TracksByIDs(ctx, ids)
	trackMap := make(map[string]Track, len(tracks))
	for _, t := range tracks {
		trackMap[t.ID] = t
	}
	for i := range items {
		if items[i].Track == nil {
			continue
		}
		if full, ok := trackMap[items[i].Track.ID]; ok {
			items[i].Track = &full
		}
	}

	return &playlist, items, err
}

// Artist fetches a single artist's metadata. Returns (nil, nil) when the
// artist does not exist.
func (c *Client) Artist(ctx context.Context, artistID string) (*Artist, error) {
	if !ValidID(artistID) {
		return nil, fmt.Errorf("%w: %q", shared.ErrInvalidID, artistID)
	}

	var artist Artist
	if err := c.get(ctx, "/artists/"+artistID, nil, &artist); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &artist, nil
}

// ArtistTopTracks fetches artist metadata and market-scoped top tracks in two
// independent requests. Top tracks are already full objects; no further
// dereferencing is needed.
func (c *Client) ArtistTopTracks(ctx context.Context, artistID, market string) (*Artist, []Track, error) {
	artist, err := c.Artist(ctx, artistID)
	if err != nil || artist == nil {
		return nil, nil, err
	}

	var resp struct {
		Tracks []Track `json:"tracks"`
	}
	err = c.get(ctx, "/artists/"+artistID+"/top-tracks", url.Values{"market": {market}}, &resp)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return artist, nil, nil
		}
		return artist, nil, err
	}

	return artist, resp.Tracks, nil
}
