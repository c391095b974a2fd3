package projectfiles

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Edit is a pending rewrite of one file.
type Edit struct {
	Path string
	Old  string
	New  string
}

// Load reads path and returns an Edit whose New content is produced by
// rewrite. The file is not written.
func Load(path string, rewrite func(string) (string, error)) (Edit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Edit{}, errors.Wrapf(err, "reading %s", path)
	}
	e := Edit{Path: path, Old: string(data)}
	e.New, err = rewrite(e.Old)
	if err != nil {
		return Edit{}, errors.Wrapf(err, "updating %s", path)
	}
	return e, nil
}

// Changed reports whether applying the edit would modify the file.
func (e Edit) Changed() bool {
	return e.Old != e.New
}

// Apply writes the new content, keeping the file's permissions. Unchanged
// edits are not written.
func (e Edit) Apply() error {
	if !e.Changed() {
		return nil
	}
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(e.Path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.WriteFile(e.Path, []byte(e.New), mode); err != nil {
		return errors.Wrapf(err, "writing %s", e.Path)
	}
	return nil
}

// Diff renders a line-based diff of the edit for dry runs. It is empty when
// nothing changes.
func (e Edit) Diff() string {
	if !e.Changed() {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(e.Old, e.New)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}
