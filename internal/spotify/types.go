package spotify

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ExternalIDs holds provider-assigned industry identifiers.
type ExternalIDs struct {
	ISRC string `json:"isrc"`
	UPC  string `json:"upc"`
}

// ExternalURLs holds web links for an entity.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// ArtistRef is the abbreviated artist object embedded in tracks and albums.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Artist represents a full artist object.
type Artist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Genres       []string     `json:"genres"`
	Images       []Image      `json:"images"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// ImageURL returns the first image URL, or "" when the artist has none.
func (a *Artist) ImageURL() string {
	if a == nil || len(a.Images) == 0 {
		return ""
	}
	return a.Images[0].URL
}

// TrackStub is the abbreviated track reference embedded in an album's track
// page. It lacks fields only available from a dedicated track lookup (ISRC,
// album-level identifiers).
type TrackStub struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []ArtistRef  `json:"artists"`
	DiscNumber   int          `json:"disc_number"`
	TrackNumber  int          `json:"track_number"`
	DurationMS   int          `json:"duration_ms"`
	Explicit     bool         `json:"explicit"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// AlbumRef is the abbreviated album object embedded in full track responses.
type AlbumRef struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	AlbumType    string       `json:"album_type"`
	ReleaseDate  string       `json:"release_date"`
	Artists      []ArtistRef  `json:"artists"`
	Images       []Image      `json:"images"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Track represents a full track object from a dedicated track lookup.
type Track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []ArtistRef  `json:"artists"`
	Album        AlbumRef     `json:"album"`
	DiscNumber   int          `json:"disc_number"`
	TrackNumber  int          `json:"track_number"`
	DurationMS   int          `json:"duration_ms"`
	Explicit     bool         `json:"explicit"`
	ExternalIDs  ExternalIDs  `json:"external_ids"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Copyright is a copyright statement attached to an album. Type "P" marks the
// phonogram (sound recording) copyright line.
type Copyright struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// TrackPage is a paginated list of track stubs inside an album.
type TrackPage struct {
	Items  []TrackStub `json:"items"`
	Next   *string     `json:"next"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// Album represents an album object. The embedded track page may be partial;
// full stub lists require following the page cursor.
type Album struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	AlbumType    string       `json:"album_type"`
	ReleaseDate  string       `json:"release_date"`
	Label        string       `json:"label"`
	TotalTracks  int          `json:"total_tracks"`
	Artists      []ArtistRef  `json:"artists"`
	Images       []Image      `json:"images"`
	Copyrights   []Copyright  `json:"copyrights"`
	ExternalIDs  ExternalIDs  `json:"external_ids"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Tracks       TrackPage    `json:"tracks"`
}

// AlbumPage is a paginated list of albums from the artist-albums endpoint.
type AlbumPage struct {
	Items  []Album `json:"items"`
	Next   *string `json:"next"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// Owner identifies the user that owns a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// PlaylistItem is one positional entry in a playlist. Track is nil for
// region-unavailable or removed tracks; callers must filter, not crash.
type PlaylistItem struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"`
}

// PlaylistItemPage is a paginated list of playlist items.
type PlaylistItemPage struct {
	Items  []PlaylistItem `json:"items"`
	Next   *string        `json:"next"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// Playlist represents a playlist with its (possibly partial) item page.
type Playlist struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Owner        Owner            `json:"owner"`
	Images       []Image          `json:"images"`
	ExternalURLs ExternalURLs     `json:"external_urls"`
	Tracks       PlaylistItemPage `json:"tracks"`
}

// ImageURL returns the first image URL, or "" when the playlist has none.
func (p *Playlist) ImageURL() string {
	if p == nil || len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
