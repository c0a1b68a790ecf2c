package main

import (
	"context"
	"fmt"

	"github.com/spotcat/spotcat/internal/shared"
	"github.com/spotcat/spotcat/internal/spotify"
	"github.com/spotcat/spotcat/internal/ui"
	"github.com/urfave/cli/v3"
)

// Tracks exports full track data for ids given as args or via --ids-file.
//
// On retry exhaustion whatever was fetched is still exported, marked partial.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	input, err := r.readInput(cmd)
	if err != nil {
		return err
	}

	ids, rejected, err := spotify.ParseIDs(input, spotify.KindTrack)
	if err != nil {
		return err
	}
	if rejected > 0 {
		r.logger.Warn("skipping malformed identifiers", "count", rejected)
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: no valid track identifiers", shared.ErrInvalidID)
	}

	config := r.loadConfig(cmd)
	engine, err := r.engineFor(ctx, cmd, config)
	if err != nil {
		return err
	}

	progress, stop := r.startProgress()
	result, runErr := engine.Tracks(ctx, progress, ids)
	stop()
	if result == nil {
		return runErr
	}
	if runErr != nil {
		r.logger.Warn("track fetch incomplete", "error", runErr)
	}

	return r.export(cmd, config, result.Records, "tracks_"+ids[0], fmt.Sprintf("%d tracks", len(ids)), result.Partial)
}

// Album exports one album's complete track list.
func (r *Runner) Album(ctx context.Context, cmd *cli.Command) error {
	albumID, err := r.singleID(cmd, spotify.KindAlbum)
	if err != nil {
		return err
	}

	config := r.loadConfig(cmd)
	engine, err := r.engineFor(ctx, cmd, config)
	if err != nil {
		return err
	}

	progress, stop := r.startProgress()
	result, runErr := engine.Album(ctx, progress, albumID)
	stop()
	if result == nil {
		return runErr
	}
	if result.Album == nil && runErr == nil {
		r.writePlain("%s\n", ui.Warn("album not found: "+albumID))
		return nil
	}
	if runErr != nil {
		r.logger.Warn("album fetch incomplete", "error", runErr)
	}

	return r.export(cmd, config, result.Records, "album_"+albumID, "album "+albumID, result.Partial)
}

// Playlist exports a playlist's track list.
func (r *Runner) Playlist(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.singleID(cmd, spotify.KindPlaylist)
	if err != nil {
		return err
	}

	config := r.loadConfig(cmd)
	engine, err := r.engineFor(ctx, cmd, config)
	if err != nil {
		return err
	}

	progress, stop := r.startProgress()
	result, runErr := engine.Playlist(ctx, progress, playlistID)
	stop()
	if result == nil {
		return runErr
	}
	if result.Playlist == nil && runErr == nil {
		r.writePlain("%s\n", ui.Warn("playlist not found: "+playlistID))
		return nil
	}
	if runErr != nil {
		r.logger.Warn("playlist fetch incomplete", "error", runErr)
	}

	return r.export(cmd, config, result.Records, "playlist_"+playlistID, "playlist "+playlistID, result.Partial)
}

// singleID parses exactly one identifier of the given kind from the first
// positional argument.
func (r *Runner) singleID(cmd *cli.Command, kind spotify.Kind) (string, error) {
	arg := cmd.Args().First()
	if arg == "" {
		return "", fmt.Errorf("%w: an identifier argument is required", shared.ErrInvalidID)
	}
	return spotify.ParseID(arg, kind)
}
