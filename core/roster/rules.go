package roster

import "strings"

// A rule is a named predicate on a normalized label.
type rule struct {
	name  string
	match func(label string) bool
}

// A ruleSet matches a label when any of its rules does.
type ruleSet struct {
	name  string
	rules []rule
}

func (rs ruleSet) matches(label string) (string, bool) {
	for _, r := range rs.rules {
		if r.match(label) {
			return r.name, true
		}
	}
	return "", false
}

// first returns the index of the first label matched by `rs` and the name of the matching rule.
func (rs ruleSet) first(labels []string) (int, string) {
	for i, label := range labels {
		if name, ok := rs.matches(label); ok {
			return i, name
		}
	}
	return -1, ""
}

func containsAll(subs ...string) func(string) bool {
	return func(label string) bool {
		for _, s := range subs {
			if !strings.Contains(label, s) {
				return false
			}
		}
		return true
	}
}

var (
	nameRules = ruleSet{
		name: "name",
		rules: []rule{
			{name: "họ", match: containsAll("họ")},
			{name: "tên", match: containsAll("tên")},
			{name: "name", match: containsAll("name")},
		},
	}

	// strictIDRules are tried before looseIDRules.
	strictIDRules = ruleSet{
		name: "id",
		rules: []rule{
			{name: "mã+sv", match: containsAll("mã", "sv")},
			{name: "mã+số", match: containsAll("mã", "số")},
			{name: "masv", match: containsAll("masv")},
		},
	}

	looseIDRules = ruleSet{
		name: "id (loose)",
		rules: []rule{
			{name: "mã", match: containsAll("mã")},
			{name: "id", match: containsAll("id")},
		},
	}

	// headerIDRules decide whether a row may be the header.
	headerIDRules = ruleSet{
		name: "id (header)",
		rules: append(append([]rule{}, strictIDRules.rules...),
			rule{name: "id", match: containsAll("id")},
		),
	}
)

// ignoredLabels are dropped from the roster before the columns are resolved.
var ignoredLabels = []string{"ngày tháng"}

func isIgnored(label string) bool {
	for _, l := range ignoredLabels {
		if label == l {
			return true
		}
	}
	return false
}
