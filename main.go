// Package main implements a CLI tool that decides the next semantic version of
// a firmware project from its git history and pull-request metadata, and
// writes it into the project files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"

	"github.com/Josh-Archer/smartversion/internal/config"
	"github.com/Josh-Archer/smartversion/internal/gitsource"
	"github.com/Josh-Archer/smartversion/internal/github"
	"github.com/Josh-Archer/smartversion/internal/release"
)

func main() {
	cfg, err := config.Parse(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if cfg.ShowHelp {
		config.PrintUsage(os.Args[0], os.Stderr)
		os.Exit(0)
	}
	if cfg.ShowVersion {
		fmt.Println("smartversion CLI version", Version)
		os.Exit(0)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := gitsource.Source{RepoPath: cfg.RepoPath, Log: log}
	if err := repo.Check(ctx); err != nil {
		log.WithError(err).Warn("Continuing without git history")
	}

	m := &release.Manager{
		Repo: repo,
		PRs:  github.NewClient(cfg.GitHubAPIURL, cfg.GitHubToken, cfg.HTTPTimeout),
		Log:  log,
		Options: release.Options{
			RepoPath:       cfg.RepoPath,
			FirmwareConfig: cfg.FirmwareConfig,
			Changelog:      cfg.Changelog,
			BumpFiles:      cfg.BumpFiles,
			ExtraFiles:     cfg.ExtraFiles,
			DryRun:         cfg.DryRun,
			Commit:         cfg.Commit,
			ForceVersion:   cfg.ForceVersion,
			ForceIncrement: cfg.ForceIncrement,
			Forced:         cfg.Forced,
			PRNumber:       cfg.PRNumber,
			GitHubOutput:   cfg.GitHubOutput,
		},
	}

	meta, err := m.Run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	printSummary(os.Stdout, cfg.DryRun, meta)

	// Pipelines use the exit status to decide whether to build a release.
	if meta.Changed || meta.Forced {
		os.Exit(0)
	}
	os.Exit(1)
}

func printSummary(w io.Writer, dryRun bool, meta release.Meta) {
	switch {
	case !meta.Changed && !meta.Forced:
		fmt.Fprintln(w, color.YellowString("No version change needed."))
	case dryRun:
		fmt.Fprintln(w, color.CyanString("Dry run complete - no files were modified."))
	default:
		fmt.Fprintln(w, color.GreenString("Version update successful!"))
	}
	fmt.Fprintf(w, "Old Version: %s\n", meta.OldVersion)
	fmt.Fprintf(w, "New Version: %s\n", meta.NewVersion)
	fmt.Fprintf(w, "Bump Type:   %s\n", meta.BumpType)

	if a := meta.Analysis; a != nil {
		c := a.Classification
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Signal", "Value"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		if a.Overridden {
			table.Append([]string{"Label override", a.Override.String()})
		} else {
			table.Append([]string{"Infrastructure only", strconv.FormatBool(c.InfrastructureOnly)})
			table.Append([]string{"Source files", strconv.Itoa(len(c.SourceFiles))})
			table.Append([]string{"Major score", formatScore(c.MajorScore)})
			table.Append([]string{"Minor score", formatScore(c.MinorScore)})
			table.Append([]string{"Patch score", formatScore(c.PatchScore)})
		}
		table.Append([]string{"Decision", a.Decision.String()})
		table.Render()
	}

	if len(meta.UpdatedFiles) > 0 {
		if dryRun {
			fmt.Fprintln(w, "Files that would be updated:")
		} else {
			fmt.Fprintln(w, "Files updated:")
		}
		for _, f := range meta.UpdatedFiles {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	for _, d := range meta.Diffs {
		fmt.Fprintf(w, "\n--- %s\n%s\n", d.Path, strings.TrimRight(d.Diff, "\n"))
	}
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
