package smartversion

// Decide combines a label override and a classification into one increment.
// An override always wins; infrastructure-only changes never bump. Otherwise
// major is checked before minor, and minor before patch, because a change set
// can satisfy several of them at once.
func Decide(override Increment, overridden bool, c ClassificationResult) Increment {
	if overridden {
		return override
	}
	if c.InfrastructureOnly {
		return None
	}

	sources := len(c.SourceFiles)
	switch {
	case c.MajorScore >= 2 || (c.MajorScore >= 1 && sources > 3):
		return Major
	case c.MinorScore >= 2 || (c.MinorScore >= 1 && c.PatchScore < c.MinorScore):
		return Minor
	case c.PatchScore >= 1 || sources > 0:
		return Patch
	default:
		return None
	}
}

// Analyze runs the whole decision engine on a change set. Labels are consulted
// first; classification only happens when no label forces the outcome.
func Analyze(cs ChangeSet) Analysis {
	if cs.PullRequest != nil {
		if inc, ok := LabelOverride(cs.PullRequest.Labels); ok {
			return Analysis{Override: inc, Overridden: true, Decision: inc}
		}
	}

	c := Classify(cs)
	return Analysis{
		Classification: c,
		Decision:       Decide(None, false, c),
	}
}

// Next analyzes cs and applies the decision to base.
func Next(base SemanticVersion, cs ChangeSet) (SemanticVersion, Analysis) {
	a := Analyze(cs)
	return Apply(base, a.Decision), a
}
