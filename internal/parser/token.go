package parser

import (
	"fmt"
	"strings"
)

// TokenKind identifies the kind of a lexed token.
type TokenKind int

const (
	Keyword TokenKind = iota
	Symbol
	Join
	ParamStart
	ParamEnd
	ExpressionEnd
	LineNumber
	Sign
)

var tokenKindNames = [...]string{
	Keyword:       "Keyword",
	Symbol:        "Symbol",
	Join:          "Join",
	ParamStart:    "ParamStart",
	ParamEnd:      "ParamEnd",
	ExpressionEnd: "ExpressionEnd",
	LineNumber:    "LineNumber",
	Sign:          "Sign",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is one unit of lexer output.
//
// Text holds the word for Keyword and Symbol, the terminator (";" or "{") for
// ExpressionEnd and the trimmed source line for Sign. Line is the physical
// line the token was read on; for LineNumber it is the counter itself. Depth
// is the brace depth the token was read at; an opening brace carries the
// depth of the statement it ends.
type Token struct {
	Kind  TokenKind
	Text  string
	Line  int
	Depth int
}

func (t Token) String() string {
	switch t.Kind {
	case LineNumber:
		return fmt.Sprintf("LineNumber(%d)", t.Line)
	case Join, ParamStart, ParamEnd:
		return t.Kind.String()
	default:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	}
}

// PartKind classifies a word group inside one statement.
type PartKind int

const (
	PartType PartKind = iota
	PartVariable
	PartObject
	PartAccess
	PartModifier
	PartException
	PartImplement
	PartParent
	PartImport
	PartPackage
	PartUnsupported
)

var partKindNames = [...]string{
	PartType:        "Type",
	PartVariable:    "Variable",
	PartObject:      "Object",
	PartAccess:      "Access",
	PartModifier:    "Modifier",
	PartException:   "Exception",
	PartImplement:   "Implement",
	PartParent:      "Parent",
	PartImport:      "Import",
	PartPackage:     "Package",
	PartUnsupported: "Unsupported",
}

func (k PartKind) String() string {
	if int(k) < len(partKindNames) {
		return partKindNames[k]
	}
	return fmt.Sprintf("PartKind(%d)", int(k))
}

// Part is a classified grammar element of the statement being built. Units
// are the words it was made of, with generic argument lists kept whole;
// marker parts carry their keyword as the only unit. PartUnsupported stands in
// for a keyword the handlers do not model, so the words after it are not
// routed as if the keyword were absent.
type Part struct {
	Kind  PartKind
	Units []string
}

// Text returns the part's units joined by single spaces.
func (p Part) Text() string {
	return strings.Join(p.Units, " ")
}

func (p Part) String() string {
	return fmt.Sprintf("%s(%q)", p.Kind, p.Text())
}

// DocTokenKind distinguishes doc tags from tag text.
type DocTokenKind int

const (
	DocKeyword DocTokenKind = iota
	DocSymbol
)

// DocToken is one element of a doc comment: a tag such as @param, or a word.
type DocToken struct {
	Kind DocTokenKind
	Text string
	Line int
}
