// Package correlation encodes Source project ids inside Target project names.
//
// The Target has no foreign-key field, so the id of the originating Source
// project is written into the name as a bracketed number: "Website [123]".
// Older releases wrote "(123)" and phase projects "{45}"; both are still
// recognised so their time entries can be migrated and the projects pruned.
//
// A marker is a whitespace-separated token consisting solely of the
// delimiters and ASCII digits. "Plan[1]" or "[v2]" are ordinary name text.
package correlation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	correlationRe = regexp.MustCompile(`^\[(\d+)\]$`)
	legacyRe      = regexp.MustCompile(`^\((\d+)\)$`)
	phaseRe       = regexp.MustCompile(`^\{(\d+)\}$`)
)

// Keys is the result of parsing a Target project name.
type Keys struct {
	Name        string
	Correlation *int64
	Legacy      *int64
	Phase       *int64
}

// ExtractCorrelationKey returns the last "[N]" marker in name.
func ExtractCorrelationKey(name string) (int64, bool) {
	k := Parse(name)
	if k.Correlation == nil {
		return 0, false
	}
	return *k.Correlation, true
}

// Parse splits name into its display part and any id markers. When a marker
// kind appears more than once the last occurrence wins.
func Parse(name string) Keys {
	var keys Keys
	var rest []string
	for _, field := range strings.Fields(name) {
		if id, ok := match(correlationRe, field); ok {
			keys.Correlation = &id
			continue
		}
		if id, ok := match(legacyRe, field); ok {
			keys.Legacy = &id
			continue
		}
		if id, ok := match(phaseRe, field); ok {
			keys.Phase = &id
			continue
		}
		rest = append(rest, field)
	}
	keys.Name = strings.Join(rest, " ")
	return keys
}

// FormatName renders the Target name for a project correlated with key.
func FormatName(name string, key int64) string {
	name = strings.TrimSpace(name)
	tag := "[" + strconv.FormatInt(key, 10) + "]"
	if name == "" {
		return tag
	}
	return name + " " + tag
}

func match(re *regexp.Regexp, field string) (int64, bool) {
	m := re.FindStringSubmatch(field)
	if len(m) < 2 {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
