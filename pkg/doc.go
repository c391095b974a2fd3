// Package smartversion decides the next semantic version of a firmware project
// from what changed since the last release.
//
// It provides:
//   - Strict parsing, formatting and ordering of "major.minor.patch" versions.
//   - A pull-request label override ("breaking-change", "feature", "bugfix", ...).
//   - A rule-based classifier that scores commit text and changed paths and
//     detects infrastructure-only change sets.
//   - A decider that turns the scores into a major, minor, patch or no increment,
//     and the arithmetic that applies it to a base version.
//
// Everything in this package is pure: no git, no network, no file access.
// Collaborators resolve those into a ChangeSet first.
//
// Usage Example:
//
//	base := smartversion.ParseOrZero("2.5.3")
//	next, analysis := smartversion.Next(base, smartversion.ChangeSet{
//	    CommitMessages: []string{"Fix memory leak in MQTT client"},
//	    ChangedFiles:   []string{"src/mqtt_manager.cpp"},
//	})
//	fmt.Println(analysis.Decision, next) // patch 2.5.4
package smartversion
