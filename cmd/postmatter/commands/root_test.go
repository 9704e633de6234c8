package commands

import (
	"log/slog"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/logging"
)

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = tt.verbosity
			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > logging.LevelTrace {
				shouldBeDisabled := tt.wantLevel - 4
				if logger.Enabled(t.Context(), shouldBeDisabled) {
					t.Errorf("expected level %v to be disabled", shouldBeDisabled)
				}
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"POSTMATTER_DEBUG=1", "1", slog.LevelDebug},
		{"POSTMATTER_DEBUG=true", "true", slog.LevelDebug},
		{"POSTMATTER_DEBUG=2", "2", logging.LevelTrace},
		{"POSTMATTER_DEBUG=0", "0", slog.LevelWarn},
		{"POSTMATTER_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv("POSTMATTER_DEBUG", tt.envVal)

			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel == slog.LevelDebug && logger.Enabled(t.Context(), logging.LevelTrace) {
				t.Error("expected Trace level to be disabled when POSTMATTER_DEBUG=1")
			}
		})
	}
}

func TestSetupLogging_QuietAndVerbose(t *testing.T) {
	origQuiet, origVerbosity := quiet, verbosity
	defer func() {
		quiet = origQuiet
		verbosity = origVerbosity
	}()

	quiet = true
	verbosity = 1
	err := setupLogging(rootCmd)
	if err == nil {
		t.Fatal("expected error for --quiet with --verbose")
	}
	if errors.ExitCode(err) != errors.ExitUser {
		t.Errorf("ExitCode = %d, want %d", errors.ExitCode(err), errors.ExitUser)
	}

	verbosity = 0
	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slog.Default().Enabled(t.Context(), slog.LevelWarn) {
		t.Error("expected Warn level to be disabled in quiet mode")
	}
}

func TestCheckConfig(t *testing.T) {
	orig := configLoadErr
	defer func() { configLoadErr = orig }()

	configLoadErr = errors.ErrInvalidConfig

	if err := checkConfig(validateCmd, nil); err == nil {
		t.Error("validate should fail when config did not load")
	}
	for _, c := range []*cobra.Command{doctorCmd, initCmd, versionCmd, configSetCmd, configCmd} {
		if err := checkConfig(c, nil); err != nil {
			t.Errorf("%s should run with a broken config, got %v", c.Name(), err)
		}
	}

	configLoadErr = nil
	if err := checkConfig(validateCmd, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"validate", "list", "show", "new", "edit", "tags", "convert", "doctor", "config", "init", "version", "gen-doc"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
