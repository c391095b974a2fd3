// Package gitsource answers the version-control questions a release needs:
// the latest version tag, what changed since it, and where the repository
// lives. It can also commit and tag a release.
package gitsource

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"

	smartversion "github.com/Josh-Archer/smartversion/pkg"
)

// Source runs git in RepoPath. An empty RepoPath means the current directory.
// Log, when set, receives warnings about tags that are skipped.
type Source struct {
	RepoPath string
	Log      logrus.FieldLogger
}

// Check verifies that git is available on the system.
func (s Source) Check(ctx context.Context) error {
	if err := exec.CommandContext(ctx, "git", "--version").Run(); err != nil {
		return errors.New("git is not available on the system")
	}
	return nil
}

func (s Source) git(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.RepoPath
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrapf(err, "git %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// LatestVersionTag returns the highest "vX.Y.Z" tag without its "v" prefix.
// Prerelease tags and tags that are not strictly three numbers are ignored.
// ok is false when no such tag exists.
func (s Source) LatestVersionTag(ctx context.Context) (version string, ok bool, err error) {
	out, err := s.git(ctx, "tag", "--list", "v*.*.*")
	if err != nil {
		return "", false, err
	}

	best := ""
	for _, tag := range lines(out) {
		if !isReleaseTag(tag) {
			s.warnPadded(tag)
			continue
		}
		if best == "" || semver.Compare(tag, best) > 0 {
			best = tag
		}
	}
	if best == "" {
		return "", false, nil
	}
	return strings.TrimPrefix(best, "v"), true, nil
}

func (s Source) warnPadded(tag string) {
	if s.Log == nil {
		return
	}
	if _, err := smartversion.Parse(strings.TrimPrefix(tag, "v")); errors.Is(err, smartversion.ErrLeadingZero) {
		s.Log.WithField("tag", tag).Warn("Ignoring version tag with leading zeros")
	}
}

func isReleaseTag(tag string) bool {
	if !semver.IsValid(tag) || semver.Prerelease(tag) != "" || semver.Build(tag) != "" {
		return false
	}
	// semver.IsValid accepts shorthands like "v1.2"; releases need all three.
	_, err := smartversion.Parse(strings.TrimPrefix(tag, "v"))
	return err == nil
}

// CommitSubjects returns commit subject lines since the tag for sinceVersion,
// newest first. An empty sinceVersion means the whole history.
func (s Source) CommitSubjects(ctx context.Context, sinceVersion string) ([]string, error) {
	args := []string{"log", "--pretty=format:%s"}
	if sinceVersion != "" {
		args = []string{"log", "v" + sinceVersion + "..HEAD", "--pretty=format:%s"}
	}
	out, err := s.git(ctx, args...)
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// ChangedFiles returns paths changed since the tag for sinceVersion. Without
// a tag there is no range to diff, so the staged files are used, falling back
// to every tracked file when that fails.
func (s Source) ChangedFiles(ctx context.Context, sinceVersion string) ([]string, error) {
	if sinceVersion != "" {
		out, err := s.git(ctx, "diff", "--name-only", "v"+sinceVersion+"..HEAD")
		if err != nil {
			return nil, err
		}
		return lines(out), nil
	}

	out, err := s.git(ctx, "diff", "--name-only", "--cached")
	if err != nil {
		out, err = s.git(ctx, "ls-files")
		if err != nil {
			return nil, err
		}
	}
	return lines(out), nil
}

// RemoteURL returns the URL of the origin remote.
func (s Source) RemoteURL(ctx context.Context) (string, error) {
	out, err := s.git(ctx, "remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// CheckClean ensures only allowed files are modified in the working tree.
// Allowed paths are relative to RepoPath or absolute.
func (s Source) CheckClean(ctx context.Context, allowed []string) error {
	out, err := s.git(ctx, "status", "--porcelain")
	if err != nil {
		return errors.Wrap(err, "failed to check git status")
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		abs, err := s.abs(f)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve path %q", f)
		}
		allowedSet[abs] = struct{}{}
	}

	var disallowed []string
	for _, line := range bytes.Split(out, []byte("\n")) {
		if len(line) < 4 {
			continue
		}
		path := string(bytes.TrimSpace(line[3:]))
		// Renames are reported as "old -> new".
		if _, to, ok := strings.Cut(path, " -> "); ok {
			path = to
		}
		abs, err := s.abs(path)
		if err != nil {
			continue
		}
		if _, ok := allowedSet[abs]; !ok {
			disallowed = append(disallowed, path)
		}
	}

	if len(disallowed) > 0 {
		return errors.Errorf("working directory is dirty; uncommitted files not included in commit: %v", disallowed)
	}
	return nil
}

func (s Source) abs(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.RepoPath, path)
	}
	return filepath.Abs(path)
}

// CommitAndTag stages files, commits them with the bare version as the
// message and tags the commit "v<version>".
func (s Source) CommitAndTag(ctx context.Context, version string, files []string) error {
	if _, err := s.git(ctx, append([]string{"add", "--"}, files...)...); err != nil {
		return errors.Wrap(err, "git add failed")
	}
	if _, err := s.git(ctx, "commit", "-m", version); err != nil {
		return errors.Wrap(err, "git commit failed")
	}
	if _, err := s.git(ctx, "tag", "v"+version); err != nil {
		return errors.Wrap(err, "git tag failed")
	}
	return nil
}

func lines(out []byte) []string {
	var res []string
	for _, l := range strings.Split(string(out), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			res = append(res, l)
		}
	}
	return res
}
