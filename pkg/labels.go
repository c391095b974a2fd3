package smartversion

import "strings"

// LabelOverride scans pull-request labels in order and returns the increment
// forced by the first label that names one. Within a label, major keywords
// are checked before minor, and minor before patch. Labels naming nothing are
// skipped. ok is false when no label forces a decision.
func LabelOverride(labels []string) (inc Increment, ok bool) {
	for _, label := range labels {
		l := strings.ToLower(label)
		if strings.Contains(l, "major") || strings.Contains(l, "breaking") {
			return Major, true
		}
		if strings.Contains(l, "minor") || strings.Contains(l, "feature") {
			return Minor, true
		}
		if strings.Contains(l, "patch") || strings.Contains(l, "bugfix") {
			return Patch, true
		}
	}
	return None, false
}
