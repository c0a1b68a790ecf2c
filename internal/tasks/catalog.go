package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/spotcat/spotcat/internal/records"
	"github.com/spotcat/spotcat/internal/shared"
	"github.com/spotcat/spotcat/internal/spotify"
)

const (
	defaultCatalogWorkers = 2
	maxCatalogWorkers     = 4
)

// AlbumRecords groups one album's detail, its matched stub/full-track pairs,
// and the flat rows produced from them. Track order follows the album's stub
// order.
type AlbumRecords struct {
	Album   spotify.Album
	Stubs   []spotify.TrackStub
	Tracks  []spotify.Track
	Records []records.FlatRecord
}

// CatalogResult is the outcome of aggregating one artist's catalog.
type CatalogResult struct {
	ArtistID     string
	Albums       []AlbumRecords
	Records      []records.FlatRecord // concatenation of per-album rows in discovery order
	FailedAlbums int                  // albums whose detail batch failed and was skipped
	TrackCount   int                  // distinct track ids collected across all albums
	Partial      bool                 // true when rate limiting cut the run short
}

// ArtistCatalog aggregates one artist's full catalog:
//
//  1. discover all albums (one paginated query per release type, deduplicated)
//  2. batch-fetch album details in chunks of 20
//  3. fetch every referenced track id in one pass through the track batcher
//  4. re-associate full tracks to each album's stubs and flatten
//
// Fetching the collected track ids in one pass instead of per album turns
// O(albums) track-lookup calls into O(total_tracks/50).
//
// Failed album batches are counted and skipped; the run degrades to whatever
// succeeded. Retry exhaustion returns the accumulated result marked Partial
// together with the error.
func (e *CatalogEngine) ArtistCatalog(ctx context.Context, progress chan<- ProgressUpdate, artistID, market string) (*CatalogResult, error) {
	result := &CatalogResult{ArtistID: artistID}

	e.sendProgress(progress, discoverAlbumsUpdate(artistID))
	albums, err := e.svc.ArtistAlbums(ctx, artistID, market)
	if err != nil {
		if errors.Is(err, shared.ErrAuthFailed) {
			return nil, err
		}
		if errors.Is(err, shared.ErrRateLimitExceeded) {
			// Exhausted retries: no further requests, return the names
			// discovered so far marked Partial.
			result.Partial = true
		}
		return result, err
	}
	e.sendProgress(progress, albumsDiscoveredUpdate(artistID, len(albums)))
	if len(albums) == 0 {
		return result, nil
	}

	albumIDs := make([]string, 0, len(albums))
	for _, album := range albums {
		albumIDs = append(albumIDs, album.ID)
	}

	e.sendProgress(progress, albumBatchUpdate(len(albumIDs)))
	details, failed, detailErr := e.svc.AlbumsByIDs(ctx, albumIDs)
	result.FailedAlbums = len(failed)

	detailByID := make(map[string]spotify.Album, len(details))
	var allTrackIDs []string
	trackToAlbum := make(map[string]string)
	for _, detail := range details {
		detailByID[detail.ID] = detail
		for _, stub := range detail.Tracks.Items {
			if stub.ID == "" {
				continue
			}
			allTrackIDs = append(allTrackIDs, stub.ID)
			trackToAlbum[stub.ID] = detail.ID
		}
	}
	result.TrackCount = len(allTrackIDs)
	e.logger.Debug("collected track references", "tracks", len(trackToAlbum), "albums", len(detailByID))

	if detailErr != nil {
		if errors.Is(detailErr, shared.ErrAuthFailed) {
			return nil, detailErr
		}
		// Retry exhaustion: stop issuing requests, return what we have.
		result.Partial = true
		e.assembleAlbums(progress, result, albums, detailByID, nil)
		return result, detailErr
	}

	e.sendProgress(progress, trackBatchUpdate(len(allTrackIDs)))
	tracks, trackErr := e.svc.TracksByIDs(ctx, allTrackIDs)
	if trackErr != nil {
		if errors.Is(trackErr, shared.ErrAuthFailed) {
			return nil, trackErr
		}
		result.Partial = true
	}

	trackMap := make(map[string]spotify.Track, len(tracks))
	for _, t := range tracks {
		trackMap[t.ID] = t
	}

	e.assembleAlbums(progress, result, albums, detailByID, trackMap)
	return result, trackErr
}

// assembleAlbums re-walks the discovered albums in order, zips each album's
// stubs against the fetched track map, and flattens the pairs into rows.
func (e *CatalogEngine) assembleAlbums(
	progress chan<- ProgressUpdate,
	result *CatalogResult,
	albums []spotify.Album,
	detailByID map[string]spotify.Album,
	trackMap map[string]spotify.Track,
) {
	for _, album := range albums {
		detail, ok := detailByID[album.ID]
		if !ok {
			continue
		}

		stubs := detail.Tracks.Items
		matchedStubs := make([]spotify.TrackStub, 0, len(stubs))
		matchedFulls := make([]spotify.Track, 0, len(stubs))
		dropped := 0
		for _, stub := range stubs {
			full, found := trackMap[stub.ID]
			if !found {
				dropped++
				continue
			}
			matchedStubs = append(matchedStubs, stub)
			matchedFulls = append(matchedFulls, full)
		}
		if dropped > 0 {
			e.logger.Warn("album has unresolved track stubs", "album", detail.Name, "dropped", dropped)
		}

		rows := records.FlattenAlbum(&detail, matchedStubs, matchedFulls)
		result.Albums = append(result.Albums, AlbumRecords{
			Album:   detail,
			Stubs:   matchedStubs,
			Tracks:  matchedFulls,
			Records: rows,
		})
		result.Records = append(result.Records, rows...)
	}

	e.sendProgress(progress, assembleUpdate(len(result.Albums), len(result.Records)))
}

// MultiCatalogResult merges per-artist catalog results. Concatenation order
// across artists follows worker completion order and is undefined; within an
// artist, album and track order is preserved.
type MultiCatalogResult struct {
	Catalogs      []*CatalogResult
	Records       []records.FlatRecord
	FailedArtists []string // artists whose aggregation produced no usable result
	Partial       bool
}

type artistOutcome struct {
	artistID string
	result   *CatalogResult
	err      error
}

// ArtistCatalogs aggregates catalogs for multiple artists on a bounded worker
// pool. Workers defaults to 2 and is capped at 4; all requests still pass
// through the client's global rate throttle regardless of worker count.
// Per-artist failures are recorded and skipped. Authentication failure aborts
// the run; rate-limit exhaustion returns everything accumulated so far,
// marked Partial.
func (e *CatalogEngine) ArtistCatalogs(ctx context.Context, progress chan<- ProgressUpdate, artistIDs []string, market string, workers int) (*MultiCatalogResult, error) {
	if workers <= 0 {
		workers = defaultCatalogWorkers
	}
	if workers > maxCatalogWorkers {
		workers = maxCatalogWorkers
	}

	jobs := make(chan string, len(artistIDs))
	outcomes := make(chan artistOutcome, len(artistIDs))

	var started atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for artistID := range jobs {
				select {
				case <-ctx.Done():
					outcomes <- artistOutcome{artistID: artistID, err: ctx.Err()}
					continue
				default:
				}

				step := int(started.Add(1))
				e.sendProgress(progress, catalogArtistUpdate(step, len(artistIDs), artistID))

				res, err := e.ArtistCatalog(ctx, progress, artistID, market)
				outcomes <- artistOutcome{artistID: artistID, result: res, err: err}
			}
		}()
	}

	for _, id := range artistIDs {
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	result := &MultiCatalogResult{}
	var fatalErr error
	completed := 0

	for outcome := range outcomes {
		completed++

		if outcome.err != nil && errors.Is(outcome.err, shared.ErrAuthFailed) {
			fatalErr = outcome.err
			result.FailedArtists = append(result.FailedArtists, outcome.artistID)
			continue
		}
		if outcome.err != nil && errors.Is(outcome.err, shared.ErrRateLimitExceeded) {
			result.Partial = true
			if fatalErr == nil {
				fatalErr = outcome.err
			}
		}

		if outcome.result == nil || (outcome.err != nil && len(outcome.result.Records) == 0) {
			result.FailedArtists = append(result.FailedArtists, outcome.artistID)
			continue
		}

		result.Catalogs = append(result.Catalogs, outcome.result)
		result.Records = append(result.Records, outcome.result.Records...)
		if outcome.result.Partial {
			result.Partial = true
		}
		e.sendProgress(progress, catalogDoneUpdate(completed, len(artistIDs), outcome.artistID, len(outcome.result.Records)))
	}

	return result, fatalErr
}
