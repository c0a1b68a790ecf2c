package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spotcat/spotcat/internal/shared"
	tu "github.com/spotcat/spotcat/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "tracks", "album", "playlist", "top-tracks", "catalog"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("command %d: expected %s, got %s", i, name, commands[i].Name)
			}
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("%d rows\n", 42); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "42 rows\n" {
				t.Errorf("unexpected output: %q", output.String())
			}
		})

		t.Run("propagates write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writePlain("x"); err == nil {
				t.Error("expected write error to propagate")
			}
		})
	})
}

func TestSetupCommand(t *testing.T) {
	newApp := func(output *bytes.Buffer) *cli.Command {
		runner := NewRunner(RunnerOpts{Output: output})
		return &cli.Command{
			Name:     "spotcat",
			Commands: runner.register(),
		}
	}

	t.Run("Creates Config File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}

		err := newApp(output).Run(context.Background(), []string{"spotcat", "setup", "--config", path})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("created config should parse: %v", err)
		}
		if !strings.Contains(output.String(), path) {
			t.Errorf("expected output to mention the created file, got %q", output.String())
		}
	})

	t.Run("Refuses Existing File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		err := newApp(&bytes.Buffer{}).Run(context.Background(), []string{"spotcat", "setup", "--config", path})
		if err == nil {
			t.Error("expected error for existing config")
		}
	})
}

func TestIdentifierValidationBeforeAuth(t *testing.T) {
	// Malformed input must fail before any credential exchange is attempted.
	run := func(args ...string) error {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		app := &cli.Command{Name: "spotcat", Commands: runner.register()}
		return app.Run(context.Background(), append([]string{"spotcat"}, args...))
	}

	t.Run("Album Requires Argument", func(t *testing.T) {
		if err := run("album"); err == nil {
			t.Error("expected error for missing album id")
		}
	})

	t.Run("Album Rejects Garbage", func(t *testing.T) {
		if err := run("album", "definitely-not-an-id"); err == nil {
			t.Error("expected error for malformed album id")
		}
	})

	t.Run("Tracks Requires Input", func(t *testing.T) {
		if err := run("tracks"); err == nil {
			t.Error("expected error for empty track input")
		}
	})
}

func TestVerboseFlag(t *testing.T) {
	logger := shared.NewLogger(&bytes.Buffer{})
	runner := NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		Logger: logger,
		Output: &bytes.Buffer{},
	})
	app := &cli.Command{Name: "spotcat", Commands: runner.register()}

	// The run still fails at the credential exchange (no credentials
	// configured); the flag takes effect before that.
	app.Run(context.Background(), []string{"spotcat", "tracks", "--verbose", strings.Repeat("0", 22)})

	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("expected debug level after --verbose, got %v", logger.GetLevel())
	}
}
