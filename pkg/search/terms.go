package search

import "strings"

const specialChars = `+-!(){}[]^~*?:\/`

// FilterTerms removes index query syntax from user input. Operators and
// grouping characters become spaces, an unbalanced double quote is dropped
// and runs of whitespace collapse to one space.
func FilterTerms(q string) string {
	q = strings.ReplaceAll(q, "&&", " ")
	q = strings.ReplaceAll(q, "||", " ")
	q = strings.Map(func(r rune) rune {
		if strings.ContainsRune(specialChars, r) {
			return ' '
		}
		return r
	}, q)
	if strings.Count(q, `"`)%2 == 1 {
		i := strings.LastIndex(q, `"`)
		q = q[:i] + q[i+1:]
	}
	return strings.Join(strings.Fields(q), " ")
}
