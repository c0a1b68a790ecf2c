// Package spotify implements a client for the Spotify Web API catalog
// endpoints used by spotcat: tracks, albums, artists and playlists.
//
// Response types are based on
// https://developer.spotify.com/documentation/web-api/reference/
//
// The client owns request pacing (a global minimum inter-request interval),
// retry with exponential backoff, and the batched fetch strategies that
// respect the provider's hard batch-size limits (50 tracks, 20 albums).
package spotify
