package match

import "strings"

// conflictingActivities returns the candidate activities, in their
// original casing and order, that also appear (case-insensitively) in
// any of the recruiting activity sets. An empty result means the
// candidate may start recruiting.
func conflictingActivities(candidate []string, recruiting [][]string) []string {
	taken := make(map[string]struct{})
	for _, activities := range recruiting {
		for _, a := range activities {
			taken[strings.ToLower(a)] = struct{}{}
		}
	}
	var conflicts []string
	for _, a := range candidate {
		if _, ok := taken[strings.ToLower(a)]; ok {
			conflicts = append(conflicts, a)
		}
	}
	return conflicts
}
