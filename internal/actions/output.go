// Package actions writes step outputs for the CI pipeline so later release
// steps can be gated on whether the version changed.
package actions

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Outputs are the key/value pairs exposed to later pipeline steps.
type Outputs struct {
	OldVersion string
	NewVersion string
	Changed    bool
}

// Write appends the outputs to the file at path, the format GitHub Actions
// reads from $GITHUB_OUTPUT. An empty path is a no-op.
func Write(path string, o Outputs) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "opening pipeline output file")
	}
	_, err = fmt.Fprintf(f, "old_version=%s\nnew_version=%s\nversion_changed=%t\n", o.OldVersion, o.NewVersion, o.Changed)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrap(err, "writing pipeline outputs")
}
