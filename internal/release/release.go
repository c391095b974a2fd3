// Package release runs one version update: it gathers what changed since the
// last release, lets the decision engine pick the increment, and writes the
// new version into the project files and the pipeline outputs.
package release

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Josh-Archer/smartversion/internal/actions"
	"github.com/Josh-Archer/smartversion/internal/github"
	"github.com/Josh-Archer/smartversion/internal/projectfiles"
	smartversion "github.com/Josh-Archer/smartversion/pkg"
)

// Repository is the version-control side of a release.
type Repository interface {
	LatestVersionTag(ctx context.Context) (version string, ok bool, err error)
	CommitSubjects(ctx context.Context, sinceVersion string) ([]string, error)
	ChangedFiles(ctx context.Context, sinceVersion string) ([]string, error)
	RemoteURL(ctx context.Context) (string, error)
	CheckClean(ctx context.Context, allowed []string) error
	CommitAndTag(ctx context.Context, version string, files []string) error
}

// PullRequests looks up pull-request metadata.
type PullRequests interface {
	PullRequest(ctx context.Context, owner, repo string, number int) (*smartversion.PullRequest, error)
}

// Options control a single run. Paths are relative to RepoPath unless
// absolute.
type Options struct {
	RepoPath       string
	FirmwareConfig string
	Changelog      string
	BumpFiles      []string
	// ExtraFiles are committed with the updated files when Commit is set.
	ExtraFiles     []string

	DryRun bool
	Commit bool

	ForceVersion   string
	ForceIncrement smartversion.Increment
	// Forced with an empty ForceVersion applies ForceIncrement without
	// analyzing changes.
	Forced bool

	PRNumber     int
	GitHubOutput string

	// Now stamps the changelog; defaults to time.Now.
	Now func() time.Time
}

// FileDiff is the preview of one file rewrite in a dry run.
type FileDiff struct {
	Path string
	Diff string
}

// Meta describes the outcome of a run.
type Meta struct {
	OldVersion string
	NewVersion string
	// BumpType is the increment applied ("major", "minor", "patch", "none")
	// or "explicit" for a forced version.
	BumpType string
	Changed  bool
	Forced   bool

	// Analysis and ChangeSet are nil when the analysis was bypassed.
	Analysis  *smartversion.Analysis
	ChangeSet *smartversion.ChangeSet

	UpdatedFiles []string
	Diffs        []FileDiff
}

// Manager wires the collaborators of a release together.
type Manager struct {
	Repo Repository
	// PRs may be nil when no pull-request lookups are possible.
	PRs     PullRequests
	Log     logrus.FieldLogger
	Options Options
}

// Run performs the version update described by m.Options.
func (m *Manager) Run(ctx context.Context) (Meta, error) {
	var meta Meta
	opts := m.Options

	base, tag := m.baseVersion(ctx)
	meta.OldVersion = base.String()
	meta.Forced = opts.Forced || opts.ForceVersion != ""

	var next smartversion.SemanticVersion
	switch {
	case opts.ForceVersion != "":
		v, err := smartversion.Parse(opts.ForceVersion)
		if err != nil {
			return meta, errors.Wrap(err, "invalid forced version")
		}
		next = v
		meta.BumpType = "explicit"
		m.Log.WithField("version", next).Info("Using forced version")
	case opts.Forced:
		next = smartversion.Apply(base, opts.ForceIncrement)
		meta.BumpType = opts.ForceIncrement.String()
		m.Log.WithField("increment", meta.BumpType).Info("Using forced increment")
	default:
		cs := m.changeSet(ctx, tag)
		analysis := smartversion.Analyze(cs)
		next = smartversion.Apply(base, analysis.Decision)
		meta.BumpType = analysis.Decision.String()
		meta.Analysis = &analysis
		meta.ChangeSet = &cs
		m.logAnalysis(analysis)
	}

	meta.NewVersion = next.String()
	meta.Changed = next != base

	var errs []error
	if meta.Changed || meta.Forced {
		m.Log.WithFields(logrus.Fields{"old": meta.OldVersion, "new": meta.NewVersion}).Info("New version")
		errs = m.updateFiles(ctx, &meta)
	} else {
		m.Log.Info("No version increment needed")
	}

	if err := actions.Write(opts.GitHubOutput, actions.Outputs{
		OldVersion: meta.OldVersion,
		NewVersion: meta.NewVersion,
		Changed:    meta.Changed,
	}); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		for _, err := range errs {
			m.Log.WithError(err).Error("Version update step failed")
		}
		return meta, errors.Wrapf(errs[0], "%d error(s) occurred during version update", len(errs))
	}
	return meta, nil
}

// baseVersion is the greater of the latest release tag and the version in the
// firmware config. Either source falls back to 0.0.0. tag is the bare tag
// version, empty when there is none.
func (m *Manager) baseVersion(ctx context.Context) (base smartversion.SemanticVersion, tag string) {
	raw, ok, err := m.Repo.LatestVersionTag(ctx)
	switch {
	case err != nil:
		m.Log.WithError(err).Warn("Could not get git tags")
	case ok:
		tag = raw
	}
	tagVersion := smartversion.ParseOrZero(tag)

	configVersion := smartversion.SemanticVersion{}
	path := m.path(m.Options.FirmwareConfig)
	if raw, err := projectfiles.FirmwareVersion(path); err != nil {
		m.Log.WithError(err).WithField("path", path).Warn("Could not read firmware version")
	} else if v, err := smartversion.Parse(raw); errors.Is(err, smartversion.ErrLeadingZero) {
		m.Log.WithField("path", path).WithField("version", raw).Warn("Firmware version has leading zeros, using 0.0.0")
	} else if err != nil {
		m.Log.WithError(err).WithField("path", path).Warn("Firmware version is not X.Y.Z, using 0.0.0")
	} else {
		configVersion = v
	}

	base, _ = smartversion.Max(tagVersion, configVersion)
	m.Log.WithFields(logrus.Fields{
		"tag":            tagVersion,
		"config_version": configVersion,
		"base":           base,
	}).Info("Resolved base version")
	return base, tag
}

// changeSet collects the changes since tag. Lookup failures leave the
// corresponding part empty.
func (m *Manager) changeSet(ctx context.Context, tag string) smartversion.ChangeSet {
	var cs smartversion.ChangeSet
	var err error

	if cs.CommitMessages, err = m.Repo.CommitSubjects(ctx, tag); err != nil {
		m.Log.WithError(err).Warn("Could not list commits")
	}
	if cs.ChangedFiles, err = m.Repo.ChangedFiles(ctx, tag); err != nil {
		m.Log.WithError(err).Warn("Could not list changed files")
	}
	if m.Options.PRNumber > 0 {
		cs.PullRequest = m.pullRequest(ctx, m.Options.PRNumber)
	}

	since := "v" + tag
	if tag == "" {
		since = "the beginning"
	}
	m.Log.WithFields(logrus.Fields{
		"commits": len(cs.CommitMessages),
		"files":   len(cs.ChangedFiles),
	}).Infof("Analyzing changes since %s", since)
	for i, c := range cs.CommitMessages {
		if i == 5 {
			m.Log.Infof("  ... and %d more", len(cs.CommitMessages)-5)
			break
		}
		m.Log.Infof("  - %s", c)
	}
	return cs
}

func (m *Manager) pullRequest(ctx context.Context, number int) *smartversion.PullRequest {
	log := m.Log.WithField("pr", number)
	if m.PRs == nil {
		log.Warn("No pull request source configured")
		return nil
	}
	remote, err := m.Repo.RemoteURL(ctx)
	if err != nil {
		log.WithError(err).Warn("Could not read origin remote")
		return nil
	}
	owner, repo, ok := github.ParseRemote(remote)
	if !ok {
		log.WithField("remote", remote).Warn("Origin is not a GitHub repository")
		return nil
	}
	pr, err := m.PRs.PullRequest(ctx, owner, repo, number)
	if err != nil {
		log.WithError(err).Warn("Could not get PR data")
		return nil
	}
	log.WithField("labels", pr.Labels).Debug("Fetched pull request")
	return pr
}

func (m *Manager) logAnalysis(a smartversion.Analysis) {
	if a.Overridden {
		m.Log.WithField("increment", a.Override).Info("Pull request label overrides analysis")
		return
	}
	c := a.Classification
	if c.InfrastructureOnly {
		m.Log.Info("Only infrastructure files changed - no version increment needed")
	}
	m.Log.WithFields(logrus.Fields{
		"major":        c.MajorScore,
		"minor":        c.MinorScore,
		"patch":        c.PatchScore,
		"source_files": len(c.SourceFiles),
	}).Debug("Version increment analysis")
	m.Log.WithField("increment", a.Decision).Info("Version increment type")
}

// updateFiles rewrites the firmware config, the changelog and the bump files,
// then commits and tags when asked to. A failing file does not stop the
// others.
func (m *Manager) updateFiles(ctx context.Context, meta *Meta) []error {
	opts := m.Options
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	type pending struct {
		rel  string
		edit projectfiles.Edit
	}
	var edits []pending
	var errs []error

	load := func(rel string, rewrite func(string) (string, error)) {
		e, err := projectfiles.Load(m.path(rel), rewrite)
		if err != nil {
			errs = append(errs, err)
			return
		}
		edits = append(edits, pending{rel: rel, edit: e})
	}

	load(opts.FirmwareConfig, func(s string) (string, error) {
		return projectfiles.RewriteFirmwareVersion(s, meta.NewVersion)
	})
	if opts.Changelog != "" {
		load(opts.Changelog, func(s string) (string, error) {
			return projectfiles.RewriteChangelog(s, meta.NewVersion, now()), nil
		})
	}
	for _, bf := range opts.BumpFiles {
		load(bf, func(s string) (string, error) {
			out, ok := projectfiles.RewriteMainVersion(s, meta.NewVersion)
			if !ok {
				m.Log.WithField("path", bf).Warn("No version string found in bump file")
			}
			return out, nil
		})
	}

	var changed []string
	for _, p := range edits {
		if p.edit.Changed() {
			changed = append(changed, p.rel)
		}
	}

	if opts.DryRun {
		for _, p := range edits {
			if d := p.edit.Diff(); d != "" {
				meta.Diffs = append(meta.Diffs, FileDiff{Path: p.rel, Diff: d})
			}
		}
		meta.UpdatedFiles = changed
		return errs
	}

	if opts.Commit {
		if err := m.Repo.CheckClean(ctx, appendMissing(changed, opts.ExtraFiles)); err != nil {
			return append(errs, err)
		}
	}

	for _, p := range edits {
		if err := p.edit.Apply(); err != nil {
			errs = append(errs, err)
			continue
		}
		if p.edit.Changed() {
			meta.UpdatedFiles = append(meta.UpdatedFiles, p.rel)
			m.Log.WithField("path", p.rel).Infof("Updated version to %s", meta.NewVersion)
		}
	}

	if opts.Commit && len(errs) == 0 {
		files := appendMissing(meta.UpdatedFiles, opts.ExtraFiles)
		if len(files) == 0 {
			m.Log.Warn("Nothing to commit, skipping tag")
			return errs
		}
		if err := m.Repo.CommitAndTag(ctx, meta.NewVersion, files); err != nil {
			errs = append(errs, err)
		} else {
			m.Log.WithField("tag", "v"+meta.NewVersion).Info("Committed and tagged release")
		}
	}
	return errs
}

// appendMissing returns files followed by the extras not already in files.
func appendMissing(files, extras []string) []string {
	out := append([]string(nil), files...)
	for _, f := range extras {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func (m *Manager) path(rel string) string {
	if filepath.IsAbs(rel) || strings.TrimSpace(m.Options.RepoPath) == "" {
		return rel
	}
	return filepath.Join(m.Options.RepoPath, rel)
}
