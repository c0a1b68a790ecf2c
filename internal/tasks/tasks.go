// package tasks orchestrates catalog retrieval operations.
//
// The core abstraction is CatalogEngine, which composes the Spotify client's
// batch fetchers into exports: track lists, single albums, playlists, artist
// top tracks, and whole artist catalogs. Operations emit progress updates via
// channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spotcat/spotcat/internal/records"
	"github.com/spotcat/spotcat/internal/shared"
	"github.com/spotcat/spotcat/internal/spotify"
)

// CatalogService defines the fetch operations the engine composes. The
// abstraction allows tests to substitute doubles for the HTTP client.
type CatalogService interface {
	TracksByIDs(ctx context.Context, ids []string) ([]spotify.Track, error)
	AlbumsByIDs(ctx context.Context, ids []string) ([]spotify.Album, []string, error)
	AlbumDetails(ctx context.Context, albumID string) (*spotify.Album, []spotify.TrackStub, []spotify.Track, error)
	ArtistAlbums(ctx context.Context, artistID, market string) ([]spotify.Album, error)
	PlaylistTracks(ctx context.Context, playlistID string) (*spotify.Playlist, []spotify.PlaylistItem, error)
	Artist(ctx context.Context, artistID string) (*spotify.Artist, error)
	ArtistTopTracks(ctx context.Context, artistID, market string) (*spotify.Artist, []spotify.Track, error)
}

// CatalogEngine implements the export operations over a CatalogService.
type CatalogEngine struct {
	svc    CatalogService
	logger *log.Logger
}

// NewCatalogEngine creates a CatalogEngine with the provided service.
func NewCatalogEngine(svc CatalogService, logger *log.Logger) *CatalogEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CatalogEngine{svc: svc, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls execution.
func (e *CatalogEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// TracksResult holds the outcome of a batched track lookup.
type TracksResult struct {
	Tracks  []spotify.Track     // full track objects, input order, provider nulls dropped
	Records []records.FlatRecord
	Partial bool // true when retry exhaustion truncated the fetch
}

// Tracks fetches full track data for a list of ids and flattens it.
// On retry exhaustion the partial result is returned alongside the error.
func (e *CatalogEngine) Tracks(ctx context.Context, progress chan<- ProgressUpdate, ids []string) (*TracksResult, error) {
	e.sendProgress(progress, fetchTracksUpdate(0, len(ids)))

	tracks, err := e.svc.TracksByIDs(ctx, ids)
	result := &TracksResult{Tracks: tracks, Records: records.FlattenTracks(tracks)}
	if err != nil {
		result.Partial = true
		if errors.Is(err, shared.ErrAuthFailed) {
			return nil, err
		}
		return result, err
	}
	return result, nil
}

// AlbumResult holds the outcome of a single-album export.
type AlbumResult struct {
	Album   *spotify.Album
	Stubs   []spotify.TrackStub
	Tracks  []spotify.Track
	Records []records.FlatRecord
	Partial bool
}

// Album fetches one album with its full track list and flattens it.
// A nonexistent album yields an empty result and no error.
func (e *CatalogEngine) Album(ctx context.Context, progress chan<- ProgressUpdate, albumID string) (*AlbumResult, error) {
	e.sendProgress(progress, fetchAlbumUpdate(albumID))

	album, stubs, tracks, err := e.svc.AlbumDetails(ctx, albumID)
	if album == nil && err == nil {
		return &AlbumResult{}, nil
	}

	result := &AlbumResult{Album: album, Stubs: stubs, Tracks: tracks}
	matchedStubs, matchedFulls := matchStubs(stubs, tracks, e.logger)
	result.Records = records.FlattenAlbum(album, matchedStubs, matchedFulls)

	if err != nil {
		result.Partial = true
		if errors.Is(err, shared.ErrAuthFailed) {
			return nil, err
		}
		return result, err
	}
	return result, nil
}

// PlaylistResult holds the outcome of a playlist export. Items preserve
// playlist order including null tracks; Records contain only resolvable
// tracks.
type PlaylistResult struct {
	Playlist *spotify.Playlist
	Items    []spotify.PlaylistItem
	Records  []records.FlatRecord
	Partial  bool
}

// Playlist fetches a playlist's metadata and items and flattens the non-null
// tracks.
func (e *CatalogEngine) Playlist(ctx context.Context, progress chan<- ProgressUpdate, playlistID string) (*PlaylistResult, error) {
	e.sendProgress(progress, fetchPlaylistUpdate(playlistID))

	playlist, items, err := e.svc.PlaylistTracks(ctx, playlistID)
	if playlist == nil && err == nil {
		return &PlaylistResult{}, nil
	}

	result := &PlaylistResult{Playlist: playlist, Items: items}
	var tracks []spotify.Track
	for _, item := range items {
		if item.Track != nil {
			tracks = append(tracks, *item.Track)
		}
	}
	result.Records = records.FlattenTracks(tracks)

	if err != nil {
		result.Partial = true
		if errors.Is(err, shared.ErrAuthFailed) {
			return nil, err
		}
		return result, err
	}
	return result, nil
}

// TopTracksResult holds an artist's metadata and market-scoped top tracks.
type TopTracksResult struct {
	Artist  *spotify.Artist
	Tracks  []spotify.Track
	Records []records.FlatRecord
}

// TopTracks fetches artist metadata and top tracks and flattens them.
func (e *CatalogEngine) TopTracks(ctx context.Context, progress chan<- ProgressUpdate, artistID, market string) (*TopTracksResult, error) {
	e.sendProgress(progress, fetchTopTracksUpdate(artistID, market))

	artist, tracks, err := e.svc.ArtistTopTracks(ctx, artistID, market)
	if err != nil {
		return nil, err
	}
	return &TopTracksResult{
		Artist:  artist,
		Tracks:  tracks,
		Records: records.FlattenTracks(tracks),
	}, nil
}

// matchStubs filters a stub list down to entries with a corresponding full
// track, keeping the two slices positionally aligned. Unresolvable stubs are
// dropped with a logged omission.
func matchStubs(stubs []spotify.TrackStub, fulls []spotify.Track, logger *log.Logger) ([]spotify.TrackStub, []spotify.Track) {
	trackMap := make(map[string]spotify.Track, len(fulls))
	for _, t := range fulls {
		trackMap[t.ID] = t
	}

	matchedStubs := make([]spotify.TrackStub, 0, len(stubs))
	matchedFulls := make([]spotify.Track, 0, len(stubs))
	dropped := 0

	for _, stub := range stubs {
		full, ok := trackMap[stub.ID]
		if !ok {
			dropped++
			continue
		}
		matchedStubs = append(matchedStubs, stub)
		matchedFulls = append(matchedFulls, full)
	}

	if dropped > 0 && logger != nil {
		logger.Warn("dropped track stubs without full track data", "dropped", dropped)
	}
	return matchedStubs, matchedFulls
}
