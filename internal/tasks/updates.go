package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// The core emits these to an optional channel; the CLI or any other
// collaborator subscribes for display. The core never depends on a specific
// output surface.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced consumers
}

// Operation phase enumeration
type Phase int

const (
	FetchTracks Phase = iota
	FetchAlbum
	FetchPlaylist
	FetchTopTracks
	DiscoverAlbums
	FetchAlbumBatch
	FetchTrackBatch
	AssembleRecords
	CatalogArtist
)

func (p Phase) String() string {
	switch p {
	case FetchTracks:
		return "fetch_tracks"
	case FetchAlbum:
		return "fetch_album"
	case FetchPlaylist:
		return "fetch_playlist"
	case FetchTopTracks:
		return "fetch_top_tracks"
	case DiscoverAlbums:
		return "discover_albums"
	case FetchAlbumBatch:
		return "fetch_album_batch"
	case FetchTrackBatch:
		return "fetch_track_batch"
	case AssembleRecords:
		return "assemble_records"
	case CatalogArtist:
		return "catalog_artist"
	default:
		return ""
	}
}

func fetchTracksUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %d tracks...", total),
	}
}

func fetchAlbumUpdate(albumID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbum,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching album %s...", albumID),
	}
}

func fetchPlaylistUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s...", playlistID),
	}
}

func fetchTopTracksUpdate(artistID, market string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTopTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching top tracks for %s (%s)...", artistID, market),
	}
}

func discoverAlbumsUpdate(artistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DiscoverAlbums,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Discovering releases for artist %s...", artistID),
	}
}

func albumsDiscoveredUpdate(artistID string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DiscoverAlbums,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d releases for artist %s", count, artistID),
	}
}

func albumBatchUpdate(albums int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbumBatch,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching details for %d albums in batches...", albums),
	}
}

func trackBatchUpdate(tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTrackBatch,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %d track details in batches...", tracks),
	}
}

func assembleUpdate(albums, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssembleRecords,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Assembled %d rows from %d albums", rows, albums),
	}
}

func catalogArtistUpdate(step, total int, artistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CatalogArtist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Processing artist %s...", step, total, artistID),
	}
}

func catalogDoneUpdate(step, total int, artistID string, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CatalogArtist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Artist %s: %d rows", step, total, artistID, rows),
	}
}
