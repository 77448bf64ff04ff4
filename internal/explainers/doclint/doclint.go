// Package doclint reports documentation gaps in parsed Java sources.
package doclint

import (
	"context"
	"fmt"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

// DocLintExplainer turns missing doc comments, undocumented parameters,
// missing @return tags and parser diagnostics into insights.
type DocLintExplainer struct{}

// New creates a new DocLintExplainer.
func New() *DocLintExplainer {
	return &DocLintExplainer{}
}

func (e *DocLintExplainer) Name() string {
	return "doclint"
}

type check struct {
	title   string
	summary string
	action  string
	found   []facts.Evidence
}

// Explain walks every document and emits one insight per kind of gap found.
func (e *DocLintExplainer) Explain(ctx context.Context, _ *facts.Store, docs []model.Document) ([]facts.Insight, error) {
	types := &check{
		title:   "Undocumented public types",
		summary: "%d public types have no doc comment.",
		action:  "Add a doc comment describing the type's purpose",
	}
	methods := &check{
		title:   "Undocumented public methods",
		summary: "%d public methods have no doc comment.",
		action:  "Add a doc comment to each public method",
	}
	params := &check{
		title:   "Undocumented parameters",
		summary: "%d parameters of documented methods have no @param entry.",
		action:  "Add an @param tag for every parameter",
	}
	returns := &check{
		title:   "Missing @return",
		summary: "%d documented methods return a value but have no @return tag.",
		action:  "Describe the returned value with @return",
	}
	diags := &check{
		title:   "Parser diagnostics",
		summary: "%d constructs were skipped while parsing.",
		action:  "Check the skipped constructs; their documentation is not generated",
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, d := range doc.Diagnostics {
			diags.found = append(diags.found, facts.Evidence{File: doc.Path, Line: d.Line, Detail: d.Message})
		}

		decl := doc.Object.Decl()
		if decl.Name == "" {
			continue
		}
		qn := decl.QualifiedName()
		if decl.Access == "public" && decl.Description == "" {
			types.found = append(types.found, facts.Evidence{File: doc.Path, Line: decl.Line, Symbol: qn})
		}

		for _, m := range decl.Methods {
			symbol := qn + "#" + m.Name
			if m.Description == "" {
				if m.Access == "public" {
					methods.found = append(methods.found, facts.Evidence{File: doc.Path, Line: m.Line, Symbol: symbol})
				}
				continue
			}
			for _, p := range m.Parameters {
				if p.Description == "" {
					params.found = append(params.found, facts.Evidence{
						File: doc.Path, Line: m.Line, Symbol: symbol,
						Detail: fmt.Sprintf("parameter %q", p.Name),
					})
				}
			}
			if returnsValue(m) && m.ReturnType == m.DeclaredReturnType {
				returns.found = append(returns.found, facts.Evidence{
					File: doc.Path, Line: m.Line, Symbol: symbol,
					Detail: "returns " + m.DeclaredReturnType,
				})
			}
		}
	}

	var insights []facts.Insight
	for _, c := range []*check{types, methods, params, returns, diags} {
		if len(c.found) == 0 {
			continue
		}
		insights = append(insights, facts.Insight{
			Title:       c.title,
			Description: fmt.Sprintf(c.summary, len(c.found)),
			Confidence:  1.0,
			Evidence:    c.found,
			Actions:     []string{c.action},
		})
	}
	return insights, nil
}

// returnsValue is false for void methods and constructors, whose declared
// return type is their own name.
func returnsValue(m model.Method) bool {
	return m.DeclaredReturnType != "" && m.DeclaredReturnType != "void" && m.DeclaredReturnType != m.Name
}
