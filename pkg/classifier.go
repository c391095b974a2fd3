package smartversion

import "strings"

// Classify computes the infrastructure-only flag, the source file list and
// the major/minor/patch scores for a change set.
func Classify(cs ChangeSet) ClassificationResult {
	res := ClassificationResult{InfrastructureOnly: true}

	for _, f := range cs.ChangedFiles {
		if IsInfrastructure(f) || isAllowedNonSource(f) {
			continue
		}
		res.InfrastructureOnly = false
		res.SourceFiles = append(res.SourceFiles, f)
	}

	text := changeText(cs)
	res.MajorScore = score(MajorRules, text)
	res.MinorScore = score(MinorRules, text)
	res.PatchScore = score(PatchRules, text)

	if res.InfrastructureOnly {
		return res
	}

	switch n := len(res.SourceFiles); {
	case n > 5:
		res.MajorScore++
	case n > 2:
		res.MinorScore++
	}

	// Any changed .cpp/.h file counts here, not only newly added ones. This
	// is a loose proxy for "new feature files" and is kept as is.
	compiled := 0
	for _, f := range res.SourceFiles {
		if isCompiledSource(f) {
			compiled++
		}
	}
	switch {
	case compiled > 1:
		res.MinorScore++
	case compiled == 1:
		res.MinorScore += 0.5
	}

	return res
}

// changeText joins commit messages and pull-request text into one
// lower-cased blob.
func changeText(cs ChangeSet) string {
	var b strings.Builder
	b.WriteString(strings.Join(cs.CommitMessages, " "))
	if pr := cs.PullRequest; pr != nil {
		b.WriteString(" ")
		b.WriteString(pr.Title)
		b.WriteString(" ")
		b.WriteString(pr.Body)
	}
	return strings.ToLower(b.String())
}
