package projectfiles

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var whatsNewPattern = regexp.MustCompile(`## What's New \(v[^)]+\)`)

// Sections the "What's New" block is inserted in front of, in order of
// preference.
var changelogAnchors = []string{"\n## Features", "\n## Configuration"}

// RewriteChangelog points the first "What's New" heading at version. When the
// document has no such heading, a dated section is inserted before the
// Features section, else before Configuration, else at the end.
func RewriteChangelog(content, version string, now time.Time) string {
	heading := fmt.Sprintf("## What's New (v%s)", version)

	if loc := whatsNewPattern.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + heading + content[loc[1]:]
	}

	section := fmt.Sprintf(`%s

### %s

- **Automated Version:** Version automatically incremented using smart semantic versioning
- **Release Date:** %s
- **Change Summary:** Automated release with version tagging improvements

---`, heading, version, now.Format("2006-01-02"))

	pos := len(content)
	for _, anchor := range changelogAnchors {
		if i := strings.Index(content, anchor); i != -1 {
			pos = i
			break
		}
	}
	return content[:pos] + "\n\n" + section + "\n" + content[pos:]
}
