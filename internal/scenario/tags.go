package scenario

import "strings"

// TagsExpression builds the engine tag filter. Include tags are OR-joined
// (parenthesised when there are several), each exclude tag becomes its own
// "not" term, and everything is AND-joined. No tags yields "".
//
//	TagsExpression([]string{"smoke", "critical"}, []string{"slow"}) == "(smoke or critical) and not slow"
func TagsExpression(include, exclude []string) string {
	var terms []string

	switch len(include) {
	case 0:
	case 1:
		terms = append(terms, include[0])
	default:
		terms = append(terms, "("+strings.Join(include, " or ")+")")
	}

	for _, tag := range exclude {
		terms = append(terms, "not "+tag)
	}

	return strings.Join(terms, " and ")
}
