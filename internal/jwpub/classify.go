package jwpub

import "strings"

// classRule maps a case-insensitive substring of the publication
// symbol to a document content class. The match is a heuristic; the
// schema itself is not consulted.
type classRule struct {
	marker string
	class  int
}

// Known publication classes. Meeting workbooks carry their documents
// under class 106, everything else observed so far under class 40.
// New publication types are added as rows here.
var classRules = []classRule{
	{marker: "mwb", class: 106},
}

const defaultClass = 40

func classForSymbol(symbol string) int {
	lower := strings.ToLower(symbol)
	for _, r := range classRules {
		if strings.Contains(lower, r.marker) {
			return r.class
		}
	}
	return defaultClass
}
