// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func commonFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Export format (csv or json)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output base path (extension is appended)",
		},
		&cli.BoolFlag{
			Name:  "preview",
			Usage: "Print a table preview of the exported rows",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
	return append(flags, extra...)
}

func marketFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "market",
		Aliases: []string{"m"},
		Usage:   "Market code (ISO 3166-1 alpha-2)",
	}
}

func idsFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "ids-file",
		Usage: "File with newline-separated ids, URIs, or URLs",
	}
}

// tracksCommand exports full track data for a list of track ids
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tracks",
		Usage:     "Export track data for a list of track ids, URIs, or URLs",
		ArgsUsage: "[track ids...]",
		Flags:     commonFlags(idsFileFlag()),
		Action:    r.Tracks,
	}
}

// albumCommand exports one album's full track list
func albumCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "album",
		Usage:     "Export an album's track list",
		ArgsUsage: "<album id>",
		Flags:     commonFlags(),
		Action:    r.Album,
	}
}

// playlistCommand exports a playlist's track list
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "playlist",
		Usage:     "Export a playlist's track list",
		ArgsUsage: "<playlist id>",
		Flags:     commonFlags(),
		Action:    r.Playlist,
	}
}

// topTracksCommand exports an artist's top tracks for a market
func topTracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "top-tracks",
		Usage:     "Export an artist's top tracks",
		ArgsUsage: "<artist id>",
		Flags:     commonFlags(marketFlag()),
		Action:    r.TopTracks,
	}
}

// catalogCommand exports full artist catalogs, optionally for several artists
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "catalog",
		Usage:     "Export complete artist catalogs (albums, singles, compilations)",
		ArgsUsage: "[artist ids...]",
		Flags: commonFlags(
			marketFlag(),
			idsFileFlag(),
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent artists (max 4)",
			},
		),
		Action: r.Catalog,
	}
}
