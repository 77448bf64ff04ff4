package model

import "fmt"

// Param is a method parameter. Parameters parsed from a signature start
// without a description and parameters read from a doc comment start without
// a type; reconciliation produces the union.
type Param struct {
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Exception is a thrown type and the text documenting it.
type Exception struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Doc is the structured content of one /** ... */ comment.
type Doc struct {
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Params      []Param     `json:"params,omitempty" yaml:"params,omitempty"`
	Return      string      `json:"return,omitempty" yaml:"return,omitempty"`
	Author      string      `json:"author,omitempty" yaml:"author,omitempty"`
	Version     string      `json:"version,omitempty" yaml:"version,omitempty"`
	Exceptions  []Exception `json:"exceptions,omitempty" yaml:"exceptions,omitempty"`
	Deprecated  string      `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	See         string      `json:"see,omitempty" yaml:"see,omitempty"`
}

// IsZero reports whether no field of the comment was filled.
func (d Doc) IsZero() bool {
	return d.Description == "" && len(d.Params) == 0 && d.Return == "" &&
		d.Author == "" && d.Version == "" && len(d.Exceptions) == 0 &&
		d.Deprecated == "" && d.See == ""
}

// Exception returns the documented exception with the given type name.
func (d Doc) Exception(typ string) (Exception, bool) {
	for _, e := range d.Exceptions {
		if e.Type == typ {
			return e, true
		}
	}
	return Exception{}, false
}

// Diagnostic is a recoverable problem found while parsing a file. The
// offending construct was skipped; everything else was kept.
type Diagnostic struct {
	Line    int    `json:"line" yaml:"line"`
	Message string `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}
