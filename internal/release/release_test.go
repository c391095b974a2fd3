package release

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	smartversion "github.com/Josh-Archer/smartversion/pkg"
)

type fakeRepo struct {
	tag        string
	tagErr     error
	commits    []string
	files      []string
	remote     string
	sinceAsked string

	dirty     error
	committed []string
	tagged    string
}

func (f *fakeRepo) LatestVersionTag(context.Context) (string, bool, error) {
	return f.tag, f.tag != "", f.tagErr
}

func (f *fakeRepo) CommitSubjects(_ context.Context, since string) ([]string, error) {
	f.sinceAsked = since
	return f.commits, nil
}

func (f *fakeRepo) ChangedFiles(context.Context, string) ([]string, error) {
	return f.files, nil
}

func (f *fakeRepo) RemoteURL(context.Context) (string, error) {
	if f.remote == "" {
		return "", errors.New("no remote")
	}
	return f.remote, nil
}

func (f *fakeRepo) CheckClean(context.Context, []string) error {
	return f.dirty
}

func (f *fakeRepo) CommitAndTag(_ context.Context, version string, files []string) error {
	f.committed = files
	f.tagged = "v" + version
	return nil
}

type fakePRs struct {
	pr    *smartversion.PullRequest
	err   error
	asked string
}

func (f *fakePRs) PullRequest(_ context.Context, owner, repo string, number int) (*smartversion.PullRequest, error) {
	f.asked = owner + "/" + repo
	return f.pr, f.err
}

const readme = "# ESP32 Smart Monitor\n\n## What's New (v2.5.3)\n\n- things\n\n## Features\n"

// newProject writes a firmware config and README into a temp dir.
func newProject(t *testing.T, firmwareVersion string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	cfg := "#include \"config.h\"\n\nconst char* firmwareVersion = \"" + firmwareVersion + "\";\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "config.cpp"), []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte(readme), 0o644))
	return dir
}

func newManager(dir string, repo *fakeRepo, opts Options) (*Manager, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts.RepoPath = dir
	if opts.FirmwareConfig == "" {
		opts.FirmwareConfig = "src/config.cpp"
	}
	if opts.Changelog == "" {
		opts.Changelog = "README.md"
	}
	opts.Now = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }
	return &Manager{Repo: repo, Log: logger, Options: opts}, hook
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunFeature(t *testing.T) {
	dir := newProject(t, "2.5.3")
	repo := &fakeRepo{
		tag:     "2.5.3",
		commits: []string{"Add DNS monitoring feature"},
		files:   []string{"src/dns_manager.cpp", "src/dns_manager.h"},
	}
	out := filepath.Join(dir, "github_output")
	m, _ := newManager(dir, repo, Options{GitHubOutput: out})

	meta, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.5.3", meta.OldVersion)
	assert.Equal(t, "2.6.0", meta.NewVersion)
	assert.Equal(t, "minor", meta.BumpType)
	assert.True(t, meta.Changed)
	require.NotNil(t, meta.Analysis)
	assert.Equal(t, smartversion.Minor, meta.Analysis.Decision)
	assert.Equal(t, []string{"src/config.cpp", "README.md"}, meta.UpdatedFiles)
	assert.Equal(t, "2.5.3", repo.sinceAsked)

	assert.Contains(t, readFile(t, filepath.Join(dir, "src", "config.cpp")), `firmwareVersion = "2.6.0";`)
	assert.Contains(t, readFile(t, filepath.Join(dir, "README.md")), "## What's New (v2.6.0)")
	assert.Equal(t, "old_version=2.5.3\nnew_version=2.6.0\nversion_changed=true\n", readFile(t, out))
}

func TestRunInfrastructureOnly(t *testing.T) {
	dir := newProject(t, "2.5.3")
	repo := &fakeRepo{
		tag:     "2.5.3",
		commits: []string{"Update CI workflow"},
		files:   []string{".github/workflows/ci.yml", "scripts/deploy.sh", "k8s/service.yaml"},
	}
	out := filepath.Join(dir, "github_output")
	m, hook := newManager(dir, repo, Options{GitHubOutput: out})

	meta, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, meta.Changed)
	assert.Equal(t, "none", meta.BumpType)
	assert.Equal(t, "2.5.3", meta.NewVersion)
	assert.Empty(t, meta.UpdatedFiles)
	assert.Equal(t, readme, readFile(t, filepath.Join(dir, "README.md")))
	assert.Contains(t, readFile(t, out), "version_changed=false")

	var msgs []string
	for _, e := range hook.AllEntries() {
		msgs = append(msgs, e.Message)
	}
	assert.Contains(t, msgs, "No version increment needed")
}

func TestRunBaseIsHigherOfTagAndConfig(t *testing.T) {
	dir := newProject(t, "2.7.0")
	repo := &fakeRepo{
		tag:     "2.5.3",
		commits: []string{"Fix memory leak in MQTT client"},
		files:   []string{"src/mqtt_manager.cpp"},
	}
	m, _ := newManager(dir, repo, Options{})

	meta, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.7.0", meta.OldVersion)
	assert.Equal(t, "2.7.1", meta.NewVersion)
	// Changes are still collected from the latest tag.
	assert.Equal(t, "2.5.3", repo.sinceAsked)
}

func TestRunInvalidBaseFallsBackToZero(t *testing.T) {
	dir := newProject(t, "dev")
	repo := &fakeRepo{
		tagErr:  errors.New("not a git repository"),
		commits: []string{"Fix bug"},
		files:   []string{"src/main.cpp"},
	}
	m, hook := newManager(dir, repo, Options{})

	meta, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", meta.OldVersion)
	assert.Equal(t, "0.0.1", meta.NewVersion)
	assert.Equal(t, "", repo.sinceAsked)

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)
}

func TestRunDryRun(t *testing.T) {
	dir := newProject(t, "1.0.0")
	repo := &fakeRepo{
		tag:     "1.0.0",
		commits: []string{"Fix typo"},
		files:   []string{"src/main.cpp"},
		remote:  "git@github.com:Josh-Archer/ESP32-Smart-Monitor.git",
	}
	prs := &fakePRs{pr: &smartversion.PullRequest{Number: 3, Labels: []string{"breaking-change"}}}
	m, _ := newManager(dir, repo, Options{DryRun: true, PRNumber: 3})
	m.PRs = prs

	meta, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Josh-Archer/ESP32-Smart-Monitor", prs.asked)
	assert.Equal(t, "2.0.0", meta.NewVersion)
	assert.True(t, meta.Analysis.Overridden)
	assert.Equal(t, []string{"src/config.cpp", "README.md"}, meta.UpdatedFiles)
	require.Len(t, meta.Diffs, 2)
	assert.Contains(t, meta.Diffs[0].Diff, "2.0.0")

	// Nothing was written.
	assert.Contains(t, readFile(t, filepath.Join(dir, "src", "config.cpp")), `"1.0.0"`)
	assert.Equal(t, readme, readFile(t, filepath.Join(dir, "README.md")))
}

func TestRunPullRequestFailureDegrades(t *testing.T) {
	dir := newProject(t, "1.0.0")
	repo := &fakeRepo{
		tag:     "1.0.0",
		commits: []string{"Fix typo"},
		files:   []string{"src/main.cpp"},
		remote:  "https://github.com/o/r.git",
	}
	m, _ := newManager(dir, repo, Options{PRNumber: 9})
	m.PRs = &fakePRs{err: errors.New("HTTP 401")}

	meta, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, meta.ChangeSet.PullRequest)
	assert.Equal(t, "patch", meta.BumpType)
}

func TestRunForced(t *testing.T) {
	t.Run("explicit version", func(t *testing.T) {
		dir := newProject(t, "1.0.0")
		repo := &fakeRepo{tag: "1.0.0"}
		m, _ := newManager(dir, repo, Options{ForceVersion: "1.4.0"})

		meta, err := m.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "explicit", meta.BumpType)
		assert.Equal(t, "1.4.0", meta.NewVersion)
		assert.Nil(t, meta.Analysis)
		assert.Contains(t, readFile(t, filepath.Join(dir, "src", "config.cpp")), `"1.4.0"`)
	})

	t.Run("increment", func(t *testing.T) {
		dir := newProject(t, "1.0.0")
		repo := &fakeRepo{tag: "1.0.0", files: []string{".github/workflows/ci.yml"}}
		m, _ := newManager(dir, repo, Options{Forced: true, ForceIncrement: smartversion.Major})

		meta, err := m.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "major", meta.BumpType)
		assert.Equal(t, "2.0.0", meta.NewVersion)
	})

	t.Run("invalid explicit version", func(t *testing.T) {
		dir := newProject(t, "1.0.0")
		m, _ := newManager(dir, &fakeRepo{}, Options{ForceVersion: "1.4"})

		_, err := m.Run(context.Background())
		assert.ErrorIs(t, err, smartversion.ErrInvalidVersionFormat)
	})
}

func TestRunCommit(t *testing.T) {
	dir := newProject(t, "1.0.0")
	repo := &fakeRepo{tag: "1.0.0", commits: []string{"Fix bug"}, files: []string{"src/main.cpp"}}
	m, _ := newManager(dir, repo, Options{Commit: true})

	meta, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.0.1", repo.tagged)
	assert.Equal(t, meta.UpdatedFiles, repo.committed)

	dirtyDir := newProject(t, "1.0.0")
	dirty := &fakeRepo{tag: "1.0.0", commits: []string{"Fix bug"}, files: []string{"src/main.cpp"}, dirty: errors.New("working directory is dirty")}
	m, _ = newManager(dirtyDir, dirty, Options{Commit: true})

	_, err = m.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, dirty.tagged)
	assert.Contains(t, readFile(t, filepath.Join(dirtyDir, "src", "config.cpp")), `"1.0.0"`, "nothing is written to a dirty tree")
}

func TestRunMissingFilesAreReported(t *testing.T) {
	dir := t.TempDir()
	repo := &fakeRepo{tag: "1.0.0", commits: []string{"Fix bug"}, files: []string{"src/main.cpp"}}
	out := filepath.Join(dir, "github_output")
	m, _ := newManager(dir, repo, Options{GitHubOutput: out})

	meta, err := m.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 error(s)")
	assert.Equal(t, "1.0.1", meta.NewVersion)
	// Outputs are still written for the pipeline.
	assert.Contains(t, readFile(t, out), "new_version=1.0.1")
}

func TestRunBumpFiles(t *testing.T) {
	dir := newProject(t, "1.0.0")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "web"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "web", "package.json"), []byte("{\n  \"version\": \"1.0.0\"\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("no version\n"), 0o644))

	repo := &fakeRepo{tag: "1.0.0", commits: []string{"Fix bug"}, files: []string{"src/main.cpp"}}
	m, hook := newManager(dir, repo, Options{BumpFiles: []string{"web/package.json", "notes.txt"}})

	meta, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, meta.UpdatedFiles, "web/package.json")
	assert.NotContains(t, meta.UpdatedFiles, "notes.txt")
	assert.Contains(t, readFile(t, filepath.Join(dir, "web", "package.json")), `"version": "1.0.1"`)

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["path"] == "notes.txt" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRunCommitExtraFiles(t *testing.T) {
	dir := newProject(t, "1.0.0")
	repo := &fakeRepo{tag: "1.0.0", commits: []string{"Fix bug"}, files: []string{"src/main.cpp"}}
	m, _ := newManager(dir, repo, Options{Commit: true, ExtraFiles: []string{"CHANGES.md", "README.md"}})

	_, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/config.cpp", "README.md", "CHANGES.md"}, repo.committed)
	assert.Equal(t, "v1.0.1", repo.tagged)
}

func TestRunZeroPaddedFirmwareVersion(t *testing.T) {
	dir := newProject(t, "2.05.0")
	repo := &fakeRepo{commits: []string{"Fix bug"}, files: []string{"src/main.cpp"}}
	m, hook := newManager(dir, repo, Options{})

	meta, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", meta.OldVersion)

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "Firmware version has leading zeros, using 0.0.0" {
			found = true
			assert.Equal(t, "2.05.0", e.Data["version"])
		}
	}
	assert.True(t, found, "leading zeros are reported")
}
