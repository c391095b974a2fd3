package smartversion

import (
	"regexp"
	"strings"
)

// Rule is a named pattern used to classify commit text or file paths.
type Rule struct {
	Pattern *regexp.Regexp
	Name    string
}

// Matches reports whether the rule matches anywhere in s.
func (r Rule) Matches(s string) bool {
	return r.Pattern.MatchString(s)
}

// MajorRules signal breaking or large-scale changes.
var MajorRules = []Rule{
	{
		Pattern: regexp.MustCompile(`(?i)\b(breaking|major|significant|overhaul|rewrite|refactor)\b`),
		Name:    "breaking keyword",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(remove|delete|deprecate)\s+\w+`),
		Name:    "removal",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(api|interface)\s+change`),
		Name:    "interface change",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\bmajor\s+(feature|update|change)`),
		Name:    "major change",
	},
}

// MinorRules signal new features or capabilities.
var MinorRules = []Rule{
	{
		Pattern: regexp.MustCompile(`(?i)\b(add|new|feature|enhancement|implement)\b`),
		Name:    "feature keyword",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(support|integration|module)\b`),
		Name:    "integration keyword",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(improve|enhance|upgrade)\s+\w+`),
		Name:    "improvement",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\bminor\s+(feature|update|change)`),
		Name:    "minor change",
	},
}

// PatchRules signal fixes and small adjustments.
var PatchRules = []Rule{
	{
		Pattern: regexp.MustCompile(`(?i)\b(fix|bug|issue|patch|correct)\b`),
		Name:    "fix keyword",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(update|adjust|tweak|small)\b`),
		Name:    "adjustment keyword",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(documentation|readme|comment)\b`),
		Name:    "documentation keyword",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(style|format|cleanup)\b`),
		Name:    "style keyword",
	},
}

// InfrastructureRules match paths that never warrant a release on their own.
// They are searched anywhere in the path, not only at its start.
var InfrastructureRules = []Rule{
	{
		Pattern: regexp.MustCompile(`(?i)\b(ci|workflow|github|action)\b`),
		Name:    "ci",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(docker|k8s|kubernetes|deploy)\b`),
		Name:    "deployment",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\b(script|automation|build)\b`),
		Name:    "automation",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\.github/`),
		Name:    ".github directory",
	},
	{
		Pattern: regexp.MustCompile(`(?i)k8s/`),
		Name:    "k8s directory",
	},
	{
		Pattern: regexp.MustCompile(`(?i)scripts/`),
		Name:    "scripts directory",
	},
	{
		Pattern: regexp.MustCompile(`(?i)platformio\.ini`),
		Name:    "platformio.ini",
	},
}

// AllowedNonSourceFiles are neither infrastructure nor source. Matching is on
// the exact path as reported by version control.
var AllowedNonSourceFiles = []string{".gitignore", "README.md"}

// CompiledSourceExtensions are the firmware implementation and header
// extensions.
var CompiledSourceExtensions = []string{".cpp", ".h"}

// score counts how many distinct rules match text.
func score(rules []Rule, text string) float64 {
	var n float64
	for _, r := range rules {
		if r.Matches(text) {
			n++
		}
	}
	return n
}

// IsInfrastructure reports whether path matches any infrastructure rule.
func IsInfrastructure(path string) bool {
	for _, r := range InfrastructureRules {
		if r.Matches(path) {
			return true
		}
	}
	return false
}

func isAllowedNonSource(path string) bool {
	for _, f := range AllowedNonSourceFiles {
		if path == f {
			return true
		}
	}
	return false
}

func isCompiledSource(path string) bool {
	for _, ext := range CompiledSourceExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
