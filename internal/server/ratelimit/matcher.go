package ratelimit

import (
	"strings"
)

// MatchRule returns the first rule whose method and pattern match the request,
// or nil when the default limit applies.
func MatchRule(method, path string, rules []Rule) *Rule {
	for i := range rules {
		rule := &rules[i]
		if rule.Method == method && matchPattern(rule.Pattern, path) {
			return rule
		}
	}
	return nil
}

func matchPattern(pattern, path string) bool {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != "*" && want[i] != got[i] {
			return false
		}
		if want[i] == "*" && got[i] == "" {
			return false
		}
	}
	return true
}
