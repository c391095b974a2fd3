// Package main implements the smartversion CLI tool.
//
// The smartversion tool decides the next semantic version of a firmware
// project. It reads the latest "vX.Y.Z" git tag and the version declared in
// the firmware config source, takes the greater of the two as the base, and
// analyzes the commit subjects and changed files since that tag (plus the
// labels, title and body of a pull request when -analyze-pr is given) to pick
// a major, minor, patch or no increment. The new version is written to the
// firmware config, the changelog "What's New" heading and any -bump-file.
//
// Command Usage:
//
//	smartversion [flags] [<version-bump>]
//
// Flags:
//
//	-repo:            Repository root. (Defaults to ".")
//	-firmware-config: Firmware source declaring firmwareVersion. (Defaults to "src/config.cpp")
//	-changelog:       Document holding the "What's New" heading. (Defaults to "README.md")
//	-bump-file:       Additional file whose main version string is rewritten. May be repeated.
//	-dry-run, -dry:   Show the decision and a diff of every file without writing.
//	-commit:          Commit the updated files and tag the commit with v<version>.
//	-file:            Additional file to stage with -commit. May be repeated.
//	-force-version:   Use an explicit version, skipping the analysis.
//	-analyze-pr:      Pull request number to include in the analysis.
//	-github-token:    GitHub token. (Defaults to $GITHUB_TOKEN)
//	-github-output:   File receiving old_version, new_version and version_changed. (Defaults to $GITHUB_OUTPUT)
//	-config:          YAML file with any of the flags above.
//	-version:         Displays the version of the smartversion CLI tool and exits.
//
// Every flag may also be set through a SMARTVERSION_ environment variable,
// for example SMARTVERSION_DRY_RUN=true.
//
// The process exits 0 when the version changed or was forced and 1 otherwise,
// so a pipeline can skip the release build when nothing warrants one.
//
// Examples:
//
//	# Analyze the changes since the last tag and update the files
//	smartversion
//
//	# Preview the decision for pull request 42
//	smartversion -dry-run -analyze-pr 42
//
//	# Force a minor increment (e.g. 2.5.3 → 2.6.0)
//	smartversion minor
//
//	# Set an explicit version directly
//	smartversion 3.0.0
//
// For the decision engine itself see the "pkg" package.
package main
