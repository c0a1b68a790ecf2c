package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spotcat/spotcat/internal/formatter"
	"github.com/spotcat/spotcat/internal/records"
	"github.com/spotcat/spotcat/internal/shared"
	"github.com/spotcat/spotcat/internal/spotify"
	"github.com/spotcat/spotcat/internal/tasks"
	"github.com/spotcat/spotcat/internal/ui"
	"github.com/urfave/cli/v3"
)

const previewRows = 10

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	engine *tasks.CatalogEngine
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Config and Engine are optional; when absent the runner loads config from
// the --config flag path and builds an authenticated engine on first use.
// Tests inject both to bypass credential exchange.
type RunnerOpts struct {
	Config *shared.Config
	Engine *tasks.CatalogEngine
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided options.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		engine: opts.Engine,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, tracksCommand, albumCommand, playlistCommand, topTracksCommand, catalogCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig applies the --verbose flag to the logger and resolves the
// effective config: an injected one, else the file at the --config flag path,
// else embedded defaults.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.config != nil {
		return r.config
	}

	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		if config, err := shared.LoadConfig(configPath); err == nil {
			return config
		} else {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	return shared.DefaultConfig()
}

// engineFor returns the catalog engine, building one on first use: exchange
// credentials for a token, construct the throttled client, wrap it in an
// engine.
func (r *Runner) engineFor(ctx context.Context, cmd *cli.Command, config *shared.Config) (*tasks.CatalogEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	token, err := spotify.FetchToken(ctx, config.Credentials.ClientID, config.Credentials.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	opts := []spotify.Option{
		spotify.WithLogger(shared.WithLogger(r.logger, "component", "api")),
	}
	if config.API.MaxAttempts > 0 {
		opts = append(opts, spotify.WithMaxAttempts(config.API.MaxAttempts))
	}
	if config.API.MinIntervalSecs > 0 {
		opts = append(opts, spotify.WithMinInterval(time.Duration(config.API.MinIntervalSecs*float64(time.Second))))
	}
	if config.API.TimeoutSecs > 0 {
		opts = append(opts, spotify.WithHTTPClient(&http.Client{
			Timeout: time.Duration(config.API.TimeoutSecs) * time.Second,
		}))
	}

	client := spotify.NewClient(token, opts...)
	r.engine = tasks.NewCatalogEngine(client, r.logger)
	return r.engine, nil
}

// market resolves the effective market code: --market flag over config value.
func (r *Runner) market(cmd *cli.Command, config *shared.Config) (string, error) {
	m := cmd.String("market")
	if m == "" {
		m = config.API.Market
	}
	return spotify.NormalizeMarket(m)
}

// startProgress spawns a goroutine draining progress updates into the logger.
// The returned stop function closes the channel and waits for the drain to
// finish.
func (r *Runner) startProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()
	return progress, func() {
		close(progress)
		wg.Wait()
	}
}

// readInput collects identifier input from positional args and an optional
// --ids-file, newline separated.
func (r *Runner) readInput(cmd *cli.Command) (string, error) {
	parts := cmd.Args().Slice()

	if path := cmd.String("ids-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read ids file: %w", err)
		}
		parts = append(parts, string(data))
	}

	input := strings.TrimSpace(strings.Join(parts, "\n"))
	if input == "" {
		return "", fmt.Errorf("%w: no identifiers provided", shared.ErrInvalidID)
	}
	return input, nil
}

// exportBase resolves the output base path: the --output flag when set, else
// {output_dir}/{name}.
func (r *Runner) exportBase(cmd *cli.Command, config *shared.Config, name string) string {
	if out := cmd.String("output"); out != "" {
		return out
	}
	return filepath.Join(config.Export.OutputDir, name)
}

// export writes rows in the resolved format and reports the created files.
func (r *Runner) export(cmd *cli.Command, config *shared.Config, rows []records.FlatRecord, name, source string, partial bool) error {
	format := cmd.String("format")
	if format == "" {
		format = config.Export.Format
	}

	base := r.exportBase(cmd, config, name)
	result, err := formatter.WriteExport(rows, format, base, source, partial)
	if err != nil {
		return err
	}

	if cmd.Bool("preview") && len(rows) > 0 {
		r.writePlain("%s\n", ui.PreviewTable(rows, previewRows))
	}

	r.writePlain("%s %d rows written to %s\n", ui.OK("✓"), len(rows), result.DataFile)
	r.writePlain("%s manifest written to %s\n", ui.OK("✓"), result.ManifestFile)
	if partial {
		r.writePlain("%s\n", ui.Warn("! export is partial, some data could not be fetched"))
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Setup creates a starter config file at the --config path.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("%s config file created at %s\n", ui.OK("✓"), configPath)
	r.writePlain("%s\n", ui.Help("Fill in your Spotify client_id and client_secret, then run: spotcat tracks <ids>"))
	return nil
}
