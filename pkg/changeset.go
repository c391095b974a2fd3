package smartversion

// PullRequest holds the pull-request fields that influence a decision.
// Labels are expected lower-cased; LabelOverride lower-cases them again anyway.
type PullRequest struct {
	Number int
	Labels []string
	Title  string
	Body   string
}

// ChangeSet is everything that changed since the last release. A nil
// PullRequest means no pull-request data was available.
type ChangeSet struct {
	CommitMessages []string
	ChangedFiles   []string
	PullRequest    *PullRequest
}

// ClassificationResult is the output of Classify.
type ClassificationResult struct {
	InfrastructureOnly bool
	// SourceFiles are the changed files that are neither infrastructure nor
	// allow-listed, in input order.
	SourceFiles []string
	MajorScore  float64
	MinorScore  float64
	PatchScore  float64
}

// Analysis explains how a decision was reached. Classification is left at
// its zero value when a label override short-circuited the analysis.
type Analysis struct {
	Override       Increment
	Overridden     bool
	Classification ClassificationResult
	Decision       Increment
}
