package projectfiles

import (
	"regexp"
	"strings"
)

// VersionPattern finds a version declaration. Group 1 is the text before the
// version, group 2 the version itself (an optional "v" excluded), group 3 the
// text after it.
type VersionPattern struct {
	Pattern *regexp.Regexp
	Name    string
}

// MainVersionPatterns match the declarations most likely to hold a project's
// own version rather than a dependency's, in order of preference.
var MainVersionPatterns = []VersionPattern{
	{
		Pattern: regexp.MustCompile(`(const char\*\s+firmwareVersion\s*=\s*")v?(\d+\.\d+\.\d+)(")`),
		Name:    "firmware version constant",
	},
	{
		Pattern: regexp.MustCompile(`(?m)^(\s*#define\s+\w*VERSION\w*\s+")v?(\d+\.\d+\.\d+)(")`),
		Name:    "version define",
	},
	{
		Pattern: regexp.MustCompile(`(?m)^(\s{0,2}"version"\s*:\s*")v?(\d+\.\d+\.\d+)(")`),
		Name:    "root JSON version field",
	},
	{
		Pattern: regexp.MustCompile(`(?m)^(\s*version\s*=\s*["']?)v?(\d+\.\d+\.\d+)(["']?)`),
		Name:    "TOML/INI version field",
	},
	{
		Pattern: regexp.MustCompile(`(?m)^(\s*-D\s*\w*VERSION\w*=\\?"?)v?(\d+\.\d+\.\d+)(\\?"?)`),
		Name:    "build flag define",
	},
	{
		Pattern: regexp.MustCompile(`(?i)(VERSION\s*[:=]\s*["']?)v?(\d+\.\d+\.\d+)(["']?)`),
		Name:    "VERSION assignment",
	},
}

// VersionMatch is a version declaration found in a file.
type VersionMatch struct {
	Line       int
	StartIndex int
	EndIndex   int
	Version    string
	Prefix     string
	Suffix     string
	HasV       bool
	Pattern    VersionPattern
}

// FindMainVersion returns the first declaration matched by the
// highest-priority pattern, or nil when content declares no version.
func FindMainVersion(content string) *VersionMatch {
	for _, vp := range MainVersionPatterns {
		loc := vp.Pattern.FindStringSubmatchIndex(content)
		if loc == nil {
			continue
		}
		prefix := content[loc[2]:loc[3]]
		return &VersionMatch{
			Line:       strings.Count(content[:loc[0]], "\n") + 1,
			StartIndex: loc[0],
			EndIndex:   loc[1],
			Prefix:     prefix,
			Version:    content[loc[4]:loc[5]],
			Suffix:     content[loc[6]:loc[7]],
			HasV:       loc[4]-loc[3] == 1,
			Pattern:    vp,
		}
	}
	return nil
}

// RewriteMainVersion replaces the main version declaration in content,
// keeping a "v" prefix when the original had one. ok is false when no
// declaration was found.
func RewriteMainVersion(content, newVersion string) (out string, ok bool) {
	m := FindMainVersion(content)
	if m == nil {
		return content, false
	}
	v := newVersion
	if m.HasV {
		v = "v" + newVersion
	}
	return content[:m.StartIndex] + m.Prefix + v + m.Suffix + content[m.EndIndex:], true
}
