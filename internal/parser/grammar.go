package parser

import "strings"

// Classify turns a word group into grammar parts. One word is a Variable;
// more words are a Type (all but the last) followed by a Variable (the last).
// Words of an unbalanced generic argument list are merged into one unit
// before the rule applies, so "Map<String," "Integer>" "m" gives the Type
// "Map<String, Integer>" and the Variable "m".
func Classify(words []string) []Part {
	units := mergeGenerics(words)
	switch len(units) {
	case 0:
		return nil
	case 1:
		return []Part{{Kind: PartVariable, Units: units}}
	default:
		last := len(units) - 1
		return []Part{
			{Kind: PartType, Units: units[:last]},
			{Kind: PartVariable, Units: units[last:]},
		}
	}
}

func mergeGenerics(words []string) []string {
	var units []string
	var cur strings.Builder
	depth := 0
	for _, w := range words {
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
		depth += angleDepth(w)
		if depth <= 0 {
			units = append(units, cur.String())
			cur.Reset()
			depth = 0
		}
	}
	if cur.Len() > 0 {
		units = append(units, cur.String())
	}
	return units
}

// angleDepth returns the net number of generic brackets a word opens.
func angleDepth(w string) int {
	return strings.Count(w, "<") - strings.Count(w, ">")
}

// openGenerics reports whether a word group ends inside a generic argument
// list, in which case a comma belongs to the type rather than ending a part.
func openGenerics(words []string) bool {
	depth := 0
	for _, w := range words {
		depth += angleDepth(w)
	}
	return depth > 0
}
