// Package projectfiles reads and rewrites the version strings stored in the
// firmware project: the firmware version declaration, the "What's New"
// heading of the changelog and any extra files carrying the version.
package projectfiles

import (
	"os"
	"regexp"

	"github.com/pkg/errors"
)

// ErrVersionLineNotFound is returned when the firmware source does not declare
// a firmware version.
var ErrVersionLineNotFound = errors.New("version line not found")

var firmwareVersionPattern = regexp.MustCompile(`const char\* firmwareVersion = "([^"]+)";`)

// FirmwareVersion returns the raw version declared in the firmware config
// source at path. The string is not validated.
func FirmwareVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	m := firmwareVersionPattern.FindSubmatch(data)
	if m == nil {
		return "", errors.Wrapf(ErrVersionLineNotFound, "%s", path)
	}
	return string(m[1]), nil
}

// RewriteFirmwareVersion replaces every firmware version declaration in
// content with version. Content already at version is returned unchanged.
func RewriteFirmwareVersion(content, version string) (string, error) {
	if !firmwareVersionPattern.MatchString(content) {
		return content, ErrVersionLineNotFound
	}
	repl := `const char* firmwareVersion = "` + version + `";`
	return firmwareVersionPattern.ReplaceAllLiteralString(content, repl), nil
}
