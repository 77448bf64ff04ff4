package javaextractor

import (
	"errors"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
)

var javaLanguage = sitter.NewLanguage(java.Language())

// NestedType is a type declared somewhere other than the top level of its
// file: inside another type's body, or as a secondary top-level type.
type NestedType struct {
	Name  string // dotted path below the package, e.g. Outer.Inner
	Kind  string // facts.Symbol* value
	Outer string // enclosing type path; empty for secondary top-level types
	Line  int
}

var typeDeclarationKinds = map[string]string{
	"class_declaration":           facts.SymbolClass,
	"interface_declaration":       facts.SymbolInterface,
	"enum_declaration":            facts.SymbolEnum,
	"record_declaration":          facts.SymbolRecord,
	"annotation_type_declaration": facts.SymbolAnnotation,
}

// findNested reports the member types and secondary top-level types of a
// compilation unit. The first top-level type is documented by the token
// parser and is not repeated here.
func findNested(src []byte) ([]NestedType, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(javaLanguage); err != nil {
		return nil, fmt.Errorf("loading java grammar: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, errors.New("tree-sitter produced no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	var out []NestedType
	first := true
	for i := range root.ChildCount() {
		child := root.Child(i)
		kind, ok := typeDeclarationKinds[child.Kind()]
		if !ok {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, src)
		if !first {
			out = append(out, NestedType{Name: name, Kind: kind, Line: lineOf(child)})
		}
		first = false
		collectMembers(child, name, src, &out)
	}
	return out, nil
}

func collectMembers(decl *sitter.Node, outer string, src []byte, out *[]NestedType) {
	body := decl.ChildByFieldName("body")
	if body == nil {
		return
	}
	for _, member := range bodyMembers(body) {
		kind, ok := typeDeclarationKinds[member.Kind()]
		if !ok {
			continue
		}
		nameNode := member.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := outer + "." + nodeText(nameNode, src)
		*out = append(*out, NestedType{Name: name, Kind: kind, Outer: outer, Line: lineOf(member)})
		collectMembers(member, name, src, out)
	}
}

// bodyMembers returns the direct members of a type body. Enum bodies keep
// their members in a trailing enum_body_declarations node.
func bodyMembers(body *sitter.Node) []*sitter.Node {
	var members []*sitter.Node
	for i := range body.ChildCount() {
		child := body.Child(i)
		if child.Kind() == "enum_body_declarations" {
			for j := range child.ChildCount() {
				members = append(members, child.Child(j))
			}
			continue
		}
		members = append(members, child)
	}
	return members
}

func nodeText(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

func lineOf(n *sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}
