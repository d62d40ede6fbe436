package reconcile

// PlanTags returns the Source tag names missing from the Target, in Source
// order. Matching is exact and case-sensitive. Tags are never deleted.
func PlanTags(source, target []string) []string {
	seen := make(map[string]bool, len(target)+len(source))
	for _, name := range target {
		seen[name] = true
	}

	var create []string
	for _, name := range source {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		create = append(create, name)
	}
	return create
}
