package parser

import "github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"

// ReconcileParams merges declared parameters with documented ones by exact,
// case-sensitive name. Declared names and types always win; a match adds the
// documented description. Documented parameters that name no declared
// parameter are dropped.
func ReconcileParams(declared, documented []model.Param) []model.Param {
	if len(declared) == 0 {
		return nil
	}
	out := make([]model.Param, 0, len(declared))
	for _, p := range declared {
		merged := model.Param{Type: p.Type, Name: p.Name}
		for _, d := range documented {
			if d.Name == p.Name {
				merged.Description = d.Description
				break
			}
		}
		out = append(out, merged)
	}
	return out
}
