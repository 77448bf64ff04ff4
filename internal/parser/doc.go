package parser

import (
	"fmt"
	"strings"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

type docState int

const (
	docDescription docState = iota
	docParam
	docReturn
	docAuthor
	docVersion
	docDeprecated
	docSee
	docException
	docDiscard
)

var docTagStates = map[string]docState{
	"@param":       docParam,
	"@return":      docReturn,
	"@author":      docAuthor,
	"@deprecated":  docDeprecated,
	"@since":       docVersion,
	"@version":     docVersion,
	"@link":        docSee,
	"@see":         docSee,
	"@exception":   docException,
	"@throws":      docException,
	"@code":        docDiscard,
	"@docRoot":     docDiscard,
	"@inheritDoc":  docDiscard,
	"@linkplain":   docDiscard,
	"@literal":     docDiscard,
	"@serial":      docDiscard,
	"@serialData":  docDiscard,
	"@serialField": docDiscard,
	"@value":       docDiscard,
}

type docParser struct {
	doc   model.Doc
	state docState
	buf   strings.Builder
	diags []model.Diagnostic
}

// ParseDoc builds the documentation record of one doc comment. Text before
// the first tag is the description; each tag owns the text up to the next tag.
func ParseDoc(tokens []DocToken) (model.Doc, []model.Diagnostic) {
	p := &docParser{state: docDescription}
	for i, tok := range tokens {
		switch tok.Kind {
		case DocKeyword:
			if i > 0 {
				p.flush()
			}
			st, ok := docTagStates[tok.Text]
			if !ok {
				p.diags = append(p.diags, model.Diagnostic{
					Line:    tok.Line,
					Message: fmt.Sprintf("unsupported javadoc tag %s", tok.Text),
				})
				st = docDiscard
			}
			p.state = st
		case DocSymbol:
			if tok.Text == "*" {
				continue
			}
			p.buf.WriteString(tok.Text)
			p.buf.WriteByte(' ')
		}
	}
	p.flush()
	return p.doc, p.diags
}

func (p *docParser) flush() {
	text := strings.TrimSpace(p.buf.String())
	p.buf.Reset()

	switch p.state {
	case docDescription:
		if text != "" {
			p.doc.Description = text
		}
	case docParam:
		name, desc := splitFirstWord(text)
		if name != "" {
			p.doc.Params = append(p.doc.Params, model.Param{Name: name, Description: desc})
		}
	case docReturn:
		p.doc.Return = text
	case docAuthor:
		p.doc.Author = text
	case docVersion:
		p.doc.Version = text
	case docDeprecated:
		p.doc.Deprecated = text
		if text == "" {
			p.doc.Deprecated = "deprecated"
		}
	case docSee:
		p.doc.See = text
	case docException:
		typ, desc := splitFirstWord(text)
		if typ != "" {
			p.doc.Exceptions = append(p.doc.Exceptions, model.Exception{Type: typ, Description: desc})
		}
	}
}

func splitFirstWord(s string) (string, string) {
	first, rest, _ := strings.Cut(s, " ")
	return first, strings.TrimSpace(rest)
}
