package parser

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

var log = commonlog.GetLogger("jdmd.parser")

// Result is the outcome of parsing one Java source file.
type Result struct {
	Object      model.ObjectType
	Diagnostics []model.Diagnostic
	Lint        bool
}

// Parse lexes and builds a single Java compilation unit.
func Parse(source string) (*Result, error) {
	obj, diags, err := Build(Lex(source))
	if err != nil {
		return nil, err
	}
	return &Result{Object: obj, Diagnostics: diags}, nil
}

// ParseFile reads and parses the Java file at path. lint is carried through
// to the result for consumers that report documentation gaps.
func ParseFile(path string, lint bool) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	res, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	res.Lint = lint

	for _, d := range res.Diagnostics {
		log.Debugf("%s:%s", path, d)
	}
	return res, nil
}
