// Package config defines the smartversion command-line configuration.
// Values come from flags, SMARTVERSION_* environment variables and an
// optional YAML file, in that order of precedence.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffyaml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Josh-Archer/smartversion/internal/github"
	smartversion "github.com/Josh-Archer/smartversion/pkg"
)

// EnvVarPrefix prefixes the environment variable form of every flag, e.g.
// SMARTVERSION_DRY_RUN.
const EnvVarPrefix = "SMARTVERSION"

// Config is the resolved configuration of one run.
type Config struct {
	RepoPath       string
	FirmwareConfig string
	Changelog      string
	BumpFiles      []string
	// ExtraFiles are staged alongside the updated files with -commit.
	ExtraFiles     []string

	DryRun bool
	Commit bool

	// ForceVersion bypasses the analysis entirely.
	ForceVersion string
	// ForceIncrement applies a fixed increment to the base version instead of
	// analyzing changes. Ignored when ForceVersion is set.
	ForceIncrement smartversion.Increment
	Forced         bool

	PRNumber     int
	GitHubToken  string
	GitHubAPIURL string
	HTTPTimeout  time.Duration
	GitHubOutput string

	LogLevel logrus.Level

	ShowHelp    bool
	ShowVersion bool
}

type arrayFlags []string

func (a *arrayFlags) String() string {
	return fmt.Sprint(*a)
}

func (a *arrayFlags) Set(value string) error {
	*a = append(*a, value)
	return nil
}

// Usage is the text printed before the flag defaults.
const Usage = `Usage:
  smartversion [options] [<version-bump>]

Analyzes the commits and files changed since the latest vX.Y.Z tag (plus optional
pull-request labels, title and body) and decides whether the firmware needs a major,
minor, patch or no version increment. The new version is written to the firmware
config source and the changelog "What's New" heading.

Examples:
  smartversion -dry-run
  smartversion -analyze-pr 42
  smartversion minor
  smartversion 2.5.0

Positional arguments:
  <version-bump>     One of: auto (default), major, minor, patch, or an explicit version like 1.2.3

Options:
`

// newFlagSet defines every flag on a fresh FlagSet bound to cfg.
func newFlagSet(name string, output io.Writer, cfg *Config, bumpFiles, extraFiles *arrayFlags, logLevel *string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, Usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.RepoPath, "repo", ".", "Path to the repository root.")
	fs.StringVar(&cfg.FirmwareConfig, "firmware-config", "src/config.cpp", "Firmware source declaring firmwareVersion, relative to -repo.")
	fs.StringVar(&cfg.Changelog, "changelog", "README.md", "Document holding the \"What's New\" heading, relative to -repo. Empty disables it.")
	fs.Var(bumpFiles, "bump-file", "Additional file whose main version string is rewritten. May be repeated.")
	fs.Var(extraFiles, "file", "Additional file to stage and commit with -commit. May be repeated.")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Show what would change without writing anything.")
	fs.BoolVar(&cfg.DryRun, "dry", false, "Alias for -dry-run.")
	fs.BoolVar(&cfg.Commit, "commit", false, "Commit the updated files and tag the commit with v<version>.")
	fs.StringVar(&cfg.ForceVersion, "force-version", "", "Force a specific version (e.g. 2.5.0), skipping analysis.")
	fs.IntVar(&cfg.PRNumber, "analyze-pr", 0, "Pull request number whose labels, title and body are analyzed.")
	fs.StringVar(&cfg.GitHubToken, "github-token", "", "GitHub token for API access (defaults to $GITHUB_TOKEN).")
	fs.StringVar(&cfg.GitHubAPIURL, "github-api-url", github.DefaultBaseURL, "GitHub API base URL.")
	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", 10*time.Second, "Timeout for GitHub API requests.")
	fs.StringVar(&cfg.GitHubOutput, "github-output", "", "File receiving old_version/new_version/version_changed (defaults to $GITHUB_OUTPUT).")
	fs.StringVar(logLevel, "log-level", "info", "Log level: debug, info, warn or error.")
	fs.String("config", "", "YAML config file.")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show CLI version and exit.")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help message and exit.")
	return fs
}

// PrintUsage writes the usage text followed by every flag and its default.
func PrintUsage(name string, output io.Writer) {
	var (
		cfg        Config
		bumpFiles  arrayFlags
		extraFiles arrayFlags
		logLevel   string
	)
	newFlagSet(name, output, &cfg, &bumpFiles, &extraFiles, &logLevel).Usage()
}

// Parse builds a Config from command-line args and the environment. Usage
// and errors are printed to output.
func Parse(name string, args []string, output io.Writer) (Config, error) {
	var (
		cfg        Config
		bumpFiles  arrayFlags
		extraFiles arrayFlags
		logLevel   string
	)
	fs := newFlagSet(name, output, &cfg, &bumpFiles, &extraFiles, &logLevel)

	if err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvVarPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parser),
		ff.WithAllowMissingConfigFile(true),
	); err != nil {
		return cfg, errors.Wrap(err, "configuration error when parsing flags")
	}
	if cfg.ShowHelp || cfg.ShowVersion {
		return cfg, nil
	}

	// Flags after a positional argument would be silently ignored.
	for _, arg := range fs.Args() {
		if strings.HasPrefix(arg, "-") {
			return cfg, errors.New("flags must be specified before the command, please reorder your arguments")
		}
	}
	if fs.NArg() > 1 {
		return cfg, errors.Errorf("expected at most one <version-bump> argument, got %d", fs.NArg())
	}

	cfg.BumpFiles = bumpFiles
	cfg.ExtraFiles = extraFiles
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.GitHubOutput == "" {
		cfg.GitHubOutput = os.Getenv("GITHUB_OUTPUT")
	}

	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return cfg, errors.Wrap(err, "invalid -log-level")
	}
	cfg.LogLevel = lvl

	if err := cfg.applyBump(fs.Arg(0)); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg *Config) applyBump(arg string) error {
	switch arg {
	case "", "auto":
	case "major", "minor", "patch":
		if cfg.ForceVersion != "" {
			return errors.Errorf("cannot combine -force-version with %q", arg)
		}
		cfg.ForceIncrement, _ = smartversion.ParseIncrement(arg)
		cfg.Forced = true
		return nil
	default:
		if cfg.ForceVersion != "" && cfg.ForceVersion != arg {
			return errors.Errorf("conflicting explicit versions %q and %q", cfg.ForceVersion, arg)
		}
		cfg.ForceVersion = arg
	}

	if cfg.ForceVersion != "" {
		if _, err := smartversion.Parse(cfg.ForceVersion); err != nil {
			return errors.Wrap(err, "invalid forced version")
		}
		cfg.Forced = true
	}
	return nil
}
