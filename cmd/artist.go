package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spotcat/spotcat/internal/shared"
	"github.com/spotcat/spotcat/internal/spotify"
	"github.com/spotcat/spotcat/internal/ui"
	"github.com/urfave/cli/v3"
)

// TopTracks exports an artist's top tracks for the resolved market.
func (r *Runner) TopTracks(ctx context.Context, cmd *cli.Command) error {
	artistID, err := r.singleID(cmd, spotify.KindArtist)
	if err != nil {
		return err
	}

	config := r.loadConfig(cmd)
	market, err := r.market(cmd, config)
	if err != nil {
		return err
	}

	engine, err := r.engineFor(ctx, cmd, config)
	if err != nil {
		return err
	}

	progress, stop := r.startProgress()
	result, runErr := engine.TopTracks(ctx, progress, artistID, market)
	stop()
	if runErr != nil {
		return runErr
	}
	if result.Artist == nil {
		r.writePlain("%s\n", ui.Warn("artist not found: "+artistID))
		return nil
	}

	name := "top_tracks_" + artistID
	source := fmt.Sprintf("top tracks for %s (%s)", result.Artist.Name, market)
	return r.export(cmd, config, result.Records, name, source, false)
}

// Catalog exports complete artist catalogs. One artist runs inline; several
// run on the engine's worker pool.
func (r *Runner) Catalog(ctx context.Context, cmd *cli.Command) error {
	input, err := r.readInput(cmd)
	if err != nil {
		return err
	}

	ids, rejected, err := spotify.ParseIDs(input, spotify.KindArtist)
	if err != nil {
		return err
	}
	if rejected > 0 {
		r.logger.Warn("skipping malformed identifiers", "count", rejected)
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: no valid artist identifiers", shared.ErrInvalidID)
	}

	config := r.loadConfig(cmd)
	market, err := r.market(cmd, config)
	if err != nil {
		return err
	}

	engine, err := r.engineFor(ctx, cmd, config)
	if err != nil {
		return err
	}

	workers := cmd.Int("workers")
	if workers == 0 {
		workers = config.Export.Workers
	}

	progress, stop := r.startProgress()
	defer stop()

	if len(ids) == 1 {
		result, runErr := engine.ArtistCatalog(ctx, progress, ids[0], market)
		if result == nil {
			return runErr
		}
		if runErr != nil {
			r.logger.Warn("catalog fetch incomplete", "error", runErr)
		}
		if result.FailedAlbums > 0 {
			r.writePlain("%s\n", ui.Warn(fmt.Sprintf("%d albums could not be fetched", result.FailedAlbums)))
		}
		return r.export(cmd, config, result.Records, "catalog_"+ids[0], "catalog "+ids[0], result.Partial)
	}

	result, runErr := engine.ArtistCatalogs(ctx, progress, ids, market, workers)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		r.logger.Warn("catalog run incomplete", "error", runErr)
	}
	if len(result.FailedArtists) > 0 {
		r.writePlain("%s\n", ui.Warn("failed artists: "+strings.Join(result.FailedArtists, ", ")))
	}

	name := fmt.Sprintf("catalog_%d_artists", len(ids))
	source := fmt.Sprintf("catalogs for %d artists", len(ids))
	return r.export(cmd, config, result.Records, name, source, result.Partial)
}
