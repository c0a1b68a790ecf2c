// Package records joins album, track and artist metadata into flat tabular
// rows with a fixed column set. Missing or partial fields render as "N/A"
// placeholders. Records are created here and never mutated afterwards.
package records

import (
	"fmt"
	"strings"

	"github.com/spotcat/spotcat/internal/spotify"
)

// notAvailable is the placeholder for fields absent from the source data.
const notAvailable = "N/A"

// FlatRecord is one denormalized row of an export: an Album×Track join, or a
// bare track with album context taken from the track's own album reference.
type FlatRecord struct {
	AlbumArtists string `json:"album_artists"`
	AlbumName    string `json:"album_name"`
	UPC          string `json:"upc"`
	ReleaseDate  string `json:"release_date"`
	ReleaseType  string `json:"release_type"`
	Label        string `json:"label"`
	PLine        string `json:"p_line"`
	AlbumURL     string `json:"album_url"`
	DiscNumber   int    `json:"disc_number"`
	TrackNumber  int    `json:"track_number"`
	TrackArtists string `json:"track_artists"`
	TrackName    string `json:"track_name"`
	ISRC         string `json:"isrc"`
	Explicit     string `json:"explicit"`
	Duration     string `json:"duration"`
	TrackURL     string `json:"track_url"`
}

// Headers is the fixed CSV column order for flat records.
var Headers = []string{
	"Album Artist(s)", "Album Name", "UPC", "Release Date", "Release Type",
	"Label", "P Line", "Album Spotify URL", "Disc Number", "Track Number",
	"Track Artist(s)", "Track Name", "ISRC", "Explicit", "Duration",
	"Track Spotify URL",
}

// FormatDuration converts milliseconds to a m:ss string with zero-padded
// seconds. Negative or missing durations render as "0:00".
func FormatDuration(ms int) string {
	if ms < 0 {
		return "0:00"
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// JoinArtists joins artist names with ", " in provider order.
func JoinArtists(artists []spotify.ArtistRef) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return "Unknown Artist"
	}
	return strings.Join(names, ", ")
}

// PLine scans an album's copyright list for the phonogram ("P") entry; first
// match wins, default "N/A".
func PLine(copyrights []spotify.Copyright) string {
	for _, c := range copyrights {
		if c.Type == "P" {
			if c.Text == "" {
				return notAvailable
			}
			return c.Text
		}
	}
	return notAvailable
}

func explicitString(explicit bool) string {
	if explicit {
		return "Yes"
	}
	return "No"
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// FlattenAlbum joins an album's metadata against its tracks, one row per
// track. Stubs and full tracks are zipped positionally; both must derive from
// the same album call so they stay aligned. A stub whose full-track entry is
// absent produces no row: placeholder data is never substituted.
func FlattenAlbum(album *spotify.Album, stubs []spotify.TrackStub, fulls []spotify.Track) []FlatRecord {
	if album == nil {
		return nil
	}

	albumArtists := JoinArtists(album.Artists)
	albumName := orNA(album.Name)
	upc := orNA(album.ExternalIDs.UPC)
	releaseDate := orNA(album.ReleaseDate)
	releaseType := orNA(capitalize(album.AlbumType))
	label := orNA(album.Label)
	pLine := PLine(album.Copyrights)
	albumURL := orNA(album.ExternalURLs.Spotify)

	n := min(len(stubs), len(fulls))
	rows := make([]FlatRecord, 0, n)

	for i := 0; i < n; i++ {
		stub, full := stubs[i], fulls[i]
		if full.ID == "" {
			continue
		}

		disc, number := stub.DiscNumber, stub.TrackNumber
		if disc == 0 {
			disc = 1
		}
		if number == 0 {
			number = i + 1
		}

		rows = append(rows, FlatRecord{
			AlbumArtists: albumArtists,
			AlbumName:    albumName,
			UPC:          upc,
			ReleaseDate:  releaseDate,
			ReleaseType:  releaseType,
			Label:        label,
			PLine:        pLine,
			AlbumURL:     albumURL,
			DiscNumber:   disc,
			TrackNumber:  number,
			TrackArtists: JoinArtists(full.Artists),
			TrackName:    orNA(full.Name),
			ISRC:         orNA(full.ExternalIDs.ISRC),
			Explicit:     explicitString(full.Explicit),
			Duration:     FormatDuration(full.DurationMS),
			TrackURL:     orNA(full.ExternalURLs.Spotify),
		})
	}

	return rows
}

// FlattenTracks produces rows for bare-track contexts (track lookups, top
// tracks, playlists), taking album context from each track's own album
// reference. Fields unavailable outside a dedicated album lookup (UPC, label,
// P-line) render as "N/A".
func FlattenTracks(tracks []spotify.Track) []FlatRecord {
	rows := make([]FlatRecord, 0, len(tracks))

	for _, track := range tracks {
		if track.ID == "" {
			continue
		}

		rows = append(rows, FlatRecord{
			AlbumArtists: JoinArtists(track.Album.Artists),
			AlbumName:    orNA(track.Album.Name),
			UPC:          notAvailable,
			ReleaseDate:  orNA(track.Album.ReleaseDate),
			ReleaseType:  orNA(capitalize(track.Album.AlbumType)),
			Label:        notAvailable,
			PLine:        notAvailable,
			AlbumURL:     orNA(track.Album.ExternalURLs.Spotify),
			DiscNumber:   max(track.DiscNumber, 1),
			TrackNumber:  max(track.TrackNumber, 1),
			TrackArtists: JoinArtists(track.Artists),
			TrackName:    orNA(track.Name),
			ISRC:         orNA(track.ExternalIDs.ISRC),
			Explicit:     explicitString(track.Explicit),
			Duration:     FormatDuration(track.DurationMS),
			TrackURL:     orNA(track.ExternalURLs.Spotify),
		})
	}

	return rows
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
