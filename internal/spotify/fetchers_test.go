package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spotcat/spotcat/internal/shared"
)

// tid builds a deterministic valid 22-char id.
func tid(n int) string {
	return fmt.Sprintf("%022d", n)
}

func tids(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = tid(i)
	}
	return ids
}

// callCounter records the ids requested per /tracks or /albums call.
type callCounter struct {
	mu    sync.Mutex
	calls [][]string
}

func (c *callCounter) record(idsParam string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := strings.Split(idsParam, ",")
	c.calls = append(c.calls, ids)
	return ids
}

func (c *callCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func trackJSON(id string) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        "Track " + id,
		"duration_ms": 201000,
		"artists":     []map[string]any{{"id": tid(900), "name": "Artist"}},
	}
}

func TestTracksByIDs(t *testing.T) {
	ctx := context.Background()

	newServer := func(counter *callCounter, nullID string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/tracks" {
				http.NotFound(w, r)
				return
			}
			ids := counter.record(r.URL.Query().Get("ids"))
			tracks := make([]any, 0, len(ids))
			for _, id := range ids {
				if id == nullID {
					tracks = append(tracks, nil)
					continue
				}
				tracks = append(tracks, trackJSON(id))
			}
			json.NewEncoder(w).Encode(map[string]any{"tracks": tracks})
		}))
	}

	t.Run("Fifty IDs Fit One Batch", func(t *testing.T) {
		counter := &callCounter{}
		server := newServer(counter, "")
		defer server.Close()

		client := newTestClient(server.URL)
		tracks, err := client.TracksByIDs(ctx, tids(50))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if counter.count() != 1 {
			t.Errorf("expected 1 batch call, got %d", counter.count())
		}
		if len(tracks) != 50 {
			t.Errorf("expected 50 tracks, got %d", len(tracks))
		}
	})

	t.Run("Fifty One IDs Split Preserving Order", func(t *testing.T) {
		counter := &callCounter{}
		server := newServer(counter, "")
		defer server.Close()

		client := newTestClient(server.URL)
		ids := tids(51)
		tracks, err := client.TracksByIDs(ctx, ids)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if counter.count() != 2 {
			t.Fatalf("expected 2 batch calls, got %d", counter.count())
		}
		if len(counter.calls[0]) != 50 || len(counter.calls[1]) != 1 {
			t.Errorf("expected chunk sizes 50 and 1, got %d and %d", len(counter.calls[0]), len(counter.calls[1]))
		}
		for i, track := range tracks {
			if track.ID != ids[i] {
				t.Fatalf("position %d: expected %s, got %s", i, ids[i], track.ID)
			}
		}
	})

	t.Run("Null Entries Dropped", func(t *testing.T) {
		counter := &callCounter{}
		server := newServer(counter, tid(1))
		defer server.Close()

		client := newTestClient(server.URL)
		tracks, err := client.TracksByIDs(ctx, tids(3))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks after dropping null, got %d", len(tracks))
		}
		if tracks[0].ID != tid(0) || tracks[1].ID != tid(2) {
			t.Errorf("expected remaining tracks in order, got %s and %s", tracks[0].ID, tracks[1].ID)
		}
	})

	t.Run("Invalid IDs Filtered Before Request", func(t *testing.T) {
		counter := &callCounter{}
		server := newServer(counter, "")
		defer server.Close()

		client := newTestClient(server.URL)
		tracks, err := client.TracksByIDs(ctx, []string{tid(0), "garbage", tid(1)})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(tracks))
		}
		if len(counter.calls[0]) != 2 {
			t.Errorf("expected invalid id to be excluded from request, got %v", counter.calls[0])
		}
	})

	t.Run("Failed Chunk Truncates Remainder", func(t *testing.T) {
		counter := &callCounter{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ids := counter.record(r.URL.Query().Get("ids"))
			if counter.count() > 1 {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			tracks := make([]any, 0, len(ids))
			for _, id := range ids {
				tracks = append(tracks, trackJSON(id))
			}
			json.NewEncoder(w).Encode(map[string]any{"tracks": tracks})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		tracks, err := client.TracksByIDs(ctx, tids(120))
		if !errors.Is(err, shared.ErrForbidden) {
			t.Fatalf("expected forbidden error, got %v", err)
		}
		if len(tracks) != 50 {
			t.Errorf("expected partial result of 50 tracks, got %d", len(tracks))
		}
		if counter.count() != 2 {
			t.Errorf("expected no calls after the failed chunk, got %d", counter.count())
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		client := newTestClient("http://unused")
		tracks, err := client.TracksByIDs(ctx, nil)
		if err != nil || tracks != nil {
			t.Errorf("expected empty no-op, got %v tracks and %v", tracks, err)
		}
	})
}

func TestAlbumsByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("Failed Chunk Skipped And Recorded", func(t *testing.T) {
		counter := &callCounter{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ids := counter.record(r.URL.Query().Get("ids"))
			if counter.count() == 2 {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			albums := make([]any, 0, len(ids))
			for _, id := range ids {
				albums = append(albums, map[string]any{"id": id, "name": "Album " + id})
			}
			json.NewEncoder(w).Encode(map[string]any{"albums": albums})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		ids := tids(50)
		albums, failed, err := client.AlbumsByIDs(ctx, ids)
		if err != nil {
			t.Fatalf("expected terminal chunk failure to be absorbed, got %v", err)
		}
		if counter.count() != 3 {
			t.Errorf("expected all 3 chunks attempted, got %d", counter.count())
		}
		if len(albums) != 30 {
			t.Errorf("expected 30 albums from surviving chunks, got %d", len(albums))
		}
		if len(failed) != 20 {
			t.Fatalf("expected 20 failed ids, got %d", len(failed))
		}
		if failed[0] != ids[20] {
			t.Errorf("expected failed ids to start at the second chunk, got %s", failed[0])
		}
	})

	t.Run("Rate Limit Exhaustion Aborts", func(t *testing.T) {
		counter := &callCounter{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ids := counter.record(r.URL.Query().Get("ids"))
			if counter.count() >= 2 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			albums := make([]any, 0, len(ids))
			for _, id := range ids {
				albums = append(albums, map[string]any{"id": id})
			}
			json.NewEncoder(w).Encode(map[string]any{"albums": albums})
		}))
		defer server.Close()

		client := newTestClient(server.URL, WithMaxAttempts(2))
		albums, failed, err := client.AlbumsByIDs(ctx, tids(60))
		if !errors.Is(err, shared.ErrRateLimitExceeded) {
			t.Fatalf("expected ErrRateLimitExceeded, got %v", err)
		}
		if len(albums) != 20 {
			t.Errorf("expected 20 albums before the abort, got %d", len(albums))
		}
		if len(failed) != 20 {
			t.Errorf("expected the exhausted chunk's 20 ids recorded as failed, got %d", len(failed))
		}
	})

	t.Run("Auth Failure Aborts Remaining Chunks", func(t *testing.T) {
		counter := &callCounter{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			counter.record(r.URL.Query().Get("ids"))
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		albums, failed, err := client.AlbumsByIDs(ctx, tids(60))
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
		if counter.count() != 1 {
			t.Errorf("expected no further requests after the rejected token, got %d calls", counter.count())
		}
		if len(albums) != 0 {
			t.Errorf("expected no albums, got %d", len(albums))
		}
		if len(failed) != 20 {
			t.Errorf("expected the rejected chunk's 20 ids recorded as failed, got %d", len(failed))
		}
	})
}

func TestAlbumDetails(t *testing.T) {
	ctx := context.Background()
	albumID := tid(500)

	t.Run("Follows Track Page Cursors", func(t *testing.T) {
		var server *httptest.Server
		mux := http.NewServeMux()
		mux.HandleFunc("/albums/"+albumID, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"id":    albumID,
				"name":  "Paged Album",
				"label": "Test Label",
				"tracks": map[string]any{
					"items": []any{map[string]any{"id": tid(0), "name": "One"}},
					"next":  server.URL + "/albums/" + albumID + "/tracks?offset=1",
				},
			})
		})
		mux.HandleFunc("/albums/"+albumID+"/tracks", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"items": []any{map[string]any{"id": tid(1), "name": "Two"}},
				"next":  nil,
			})
		})
		mux.HandleFunc("/tracks", func(w http.ResponseWriter, r *http.Request) {
			ids := strings.Split(r.URL.Query().Get("ids"), ",")
			tracks := make([]any, 0, len(ids))
			for _, id := range ids {
				tracks = append(tracks, trackJSON(id))
			}
			json.NewEncoder(w).Encode(map[string]any{"tracks": tracks})
		})
		server = httptest.NewServer(mux)
		defer server.Close()

		client := newTestClient(server.URL)
		album, stubs, tracks, err := client.AlbumDetails(ctx, albumID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if album == nil || album.Name != "Paged Album" {
			t.Fatalf("expected album metadata, got %+v", album)
		}
		if len(stubs) != 2 {
			t.Fatalf("expected 2 stubs across pages, got %d", len(stubs))
		}
		if len(tracks) != 2 {
			t.Fatalf("expected 2 full tracks, got %d", len(tracks))
		}
		if stubs[0].ID != tid(0) || stubs[1].ID != tid(1) {
			t.Errorf("expected stub order preserved, got %s then %s", stubs[0].ID, stubs[1].ID)
		}
	})

	t.Run("Not Found Yields Empty Result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		album, stubs, tracks, err := client.AlbumDetails(ctx, albumID)
		if err != nil {
			t.Fatalf("expected no error for missing album, got %v", err)
		}
		if album != nil || stubs != nil || tracks != nil {
			t.Error("expected fully empty result for missing album")
		}
	})

	t.Run("Invalid ID Rejected", func(t *testing.T) {
		client := newTestClient("http://unused")
		if _, _, _, err := client.AlbumDetails(ctx, "nope"); !errors.Is(err, shared.ErrInvalidID) {
			t.Errorf("expected ErrInvalidID, got %v", err)
		}
	})
}

func TestArtistAlbums(t *testing.T) {
	ctx := context.Background()
	artistID := tid(700)

	t.Run("Per Type Queries With First Seen Dedup", func(t *testing.T) {
		var groups []string
		var mu sync.Mutex

		byType := map[string][]string{
			"album":       {tid(10), tid(11)},
			"single":      {tid(12), tid(11)}, // tid(11) duplicated across types
			"compilation": {tid(13)},
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			group := r.URL.Query().Get("include_groups")
			mu.Lock()
			groups = append(groups, group)
			mu.Unlock()

			items := make([]any, 0)
			for _, id := range byType[group] {
				items = append(items, map[string]any{"id": id, "album_type": group})
			}
			json.NewEncoder(w).Encode(map[string]any{"items": items, "next": nil})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		albums, err := client.ArtistAlbums(ctx, artistID, "US")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(groups) != 3 {
			t.Fatalf("expected one query per release type, got %v", groups)
		}
		for i, want := range AlbumTypes {
			if groups[i] != want {
				t.Errorf("query %d: expected type %s, got %s", i, want, groups[i])
			}
		}

		want := []string{tid(10), tid(11), tid(12), tid(13)}
		if len(albums) != len(want) {
			t.Fatalf("expected %d deduplicated albums, got %d", len(want), len(albums))
		}
		for i := range want {
			if albums[i].ID != want[i] {
				t.Errorf("position %d: expected %s, got %s", i, want[i], albums[i].ID)
			}
		}
	})

	t.Run("Failed Type Continues With Remaining", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("include_groups") == "single" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"items": []any{map[string]any{"id": tid(20)}},
				"next":  nil,
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		albums, err := client.ArtistAlbums(ctx, artistID, "US")
		if err != nil {
			t.Fatalf("expected per-type failure to be absorbed, got %v", err)
		}
		if len(albums) != 1 {
			t.Errorf("expected deduplicated result from surviving types, got %d", len(albums))
		}
	})

	t.Run("Auth Failure Aborts Discovery", func(t *testing.T) {
		var mu sync.Mutex
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			calls++
			mu.Unlock()
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		albums, err := client.ArtistAlbums(ctx, artistID, "US")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected discovery to stop at the first rejected query, got %d calls", calls)
		}
		if len(albums) != 0 {
			t.Errorf("expected no albums, got %d", len(albums))
		}
	})
}

func TestPlaylistTracks(t *testing.T) {
	ctx := context.Background()
	playlistID := tid(800)

	t.Run("Pagination Preserves Null Items", func(t *testing.T) {
		var server *httptest.Server
		mux := http.NewServeMux()
		mux.HandleFunc("/playlists/"+playlistID, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"id":   playlistID,
				"name": "Mix",
				"owner": map[string]any{
					"id": "someuser", "display_name": "Some User",
				},
			})
		})
		page := 0
		mux.HandleFunc("/playlists/"+playlistID+"/tracks", func(w http.ResponseWriter, r *http.Request) {
			page++
			if page == 1 {
				json.NewEncoder(w).Encode(map[string]any{
					"items": []any{
						map[string]any{"added_at": "2021-01-01T00:00:00Z", "track": map[string]any{"id": tid(1), "name": "A"}},
						map[string]any{"added_at": "2021-01-02T00:00:00Z", "track": nil},
					},
					"next": server.URL + "/playlists/" + playlistID + "/tracks?offset=100",
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"items": []any{
					map[string]any{"added_at": "2021-01-03T00:00:00Z", "track": map[string]any{"id": tid(2), "name": "B"}},
				},
				"next": nil,
			})
		})
		mux.HandleFunc("/tracks", func(w http.ResponseWriter, r *http.Request) {
			ids := strings.Split(r.URL.Query().Get("ids"), ",")
			tracks := make([]any, 0, len(ids))
			for _, id := range ids {
				tracks = append(tracks, trackJSON(id))
			}
			json.NewEncoder(w).Encode(map[string]any{"tracks": tracks})
		})
		server = httptest.NewServer(mux)
		defer server.Close()

		client := newTestClient(server.URL)
		playlist, items, err := client.PlaylistTracks(ctx, playlistID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if playlist == nil || playlist.Name != "Mix" {
			t.Fatalf("expected playlist metadata, got %+v", playlist)
		}
		if len(items) != 3 {
			t.Fatalf("expected 3 items including the null entry, got %d", len(items))
		}
		if items[1].Track != nil {
			t.Error("expected null track entry to be preserved")
		}
		if items[0].Track == nil || items[0].Track.DurationMS == 0 {
			t.Error("expected non-null items to be back-filled with full track data")
		}
		if items[2].Track == nil || items[2].Track.ID != tid(2) {
			t.Error("expected second page item to survive in order")
		}
	})

	t.Run("Not Found Yields Empty Result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		playlist, items, err := client.PlaylistTracks(ctx, playlistID)
		if err != nil || playlist != nil || items != nil {
			t.Errorf("expected empty result for missing playlist, got %+v %v %v", playlist, items, err)
		}
	})
}

func TestArtistTopTracks(t *testing.T) {
	ctx := context.Background()
	artistID := tid(900)

	t.Run("Two Requests Full Tracks", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/artists/"+artistID, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"id": artistID, "name": "Top Artist"})
		})
		mux.HandleFunc("/artists/"+artistID+"/top-tracks", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("market") != "DE" {
				t.Errorf("expected market DE, got %s", r.URL.Query().Get("market"))
			}
			json.NewEncoder(w).Encode(map[string]any{
				"tracks": []any{trackJSON(tid(1)), trackJSON(tid(2))},
			})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client := newTestClient(server.URL)
		artist, tracks, err := client.ArtistTopTracks(ctx, artistID, "DE")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if artist == nil || artist.Name != "Top Artist" {
			t.Fatalf("expected artist metadata, got %+v", artist)
		}
		if len(tracks) != 2 {
			t.Errorf("expected 2 top tracks, got %d", len(tracks))
		}
	})

	t.Run("Missing Artist", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		artist, tracks, err := client.ArtistTopTracks(ctx, artistID, "US")
		if err != nil || artist != nil || tracks != nil {
			t.Errorf("expected empty result, got %+v %v %v", artist, tracks, err)
		}
	})
}
