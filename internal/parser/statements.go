package parser

import (
	"strconv"
	"strings"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

type headerState int

const (
	headerOther headerState = iota
	headerName
	headerImplement
	headerParent
	headerException
)

// header records the declaration line of the file's type: its name,
// modifiers, parent types and interfaces, and the doc comment above it.
func (b *builder) header() {
	st := headerOther
	for _, p := range b.parts {
		switch p.Kind {
		case PartObject:
			st = headerName
		case PartImplement:
			st = headerImplement
		case PartParent:
			st = headerParent
		case PartException:
			st = headerException
		case PartAccess:
			b.obj.Access = p.Text()
		case PartModifier:
			b.obj.AddModifier(p.Text())
		case PartUnsupported:
			st = headerOther
		case PartType:
			b.diag("unsupported pattern: %q in type declaration", p.Text())
		case PartVariable:
			v := p.Text()
			switch st {
			case headerName:
				b.obj.Name = v
				st = headerOther
			case headerImplement:
				b.obj.AddInterface(v)
			case headerParent:
				b.obj.AddParent(v)
			case headerException:
				b.diag("unsupported pattern: throws clause on type declaration")
			default:
				b.diag("unsupported pattern: %q in type declaration", v)
			}
		}
	}

	b.obj.Line = b.stmtLine()
	b.obj.Signature = b.cur.signature()
	b.obj.Description = b.doc.Description
	b.obj.Author = b.doc.Author
	b.obj.Version = b.doc.Version
	b.obj.Deprecated = b.doc.Deprecated
	b.obj.See = b.doc.See
}

type methodState int

const (
	methodOther methodState = iota
	methodName
	methodParamName
	methodException
)

// method records a method or constructor signature. The first Type part is
// the return type; later Type parts pair with the Variable after them to
// form parameters. A lone Variable before any type names a constructor.
func (b *builder) method() {
	m := model.Method{Line: b.stmtLine(), Signature: b.cur.signature()}
	var declared []model.Param
	var paramType string
	st := methodOther

	for _, p := range b.parts {
		switch p.Kind {
		case PartAccess:
			if m.Name == "" {
				m.Access = p.Text()
			}
		case PartModifier:
			if m.Name == "" && !m.HasModifier(p.Text()) {
				m.Modifiers = append(m.Modifiers, p.Text())
			}
		case PartException:
			st = methodException
		case PartType:
			if m.Name == "" && m.ReturnType == "" {
				units := withoutTypeParams(p.Units)
				if len(units) == 0 {
					continue
				}
				m.ReturnType = strings.Join(units, " ")
				st = methodName
			} else {
				paramType = p.Text()
				st = methodParamName
			}
		case PartVariable:
			v := p.Text()
			switch st {
			case methodException:
				e := model.Exception{Type: v}
				if documented, ok := b.doc.Exception(v); ok {
					e.Description = documented.Description
				}
				m.Exceptions = append(m.Exceptions, e)
			case methodName:
				m.Name = v
				st = methodOther
			case methodParamName:
				declared = append(declared, model.Param{Type: paramType, Name: v})
				paramType = ""
				st = methodOther
			default:
				if m.Name == "" {
					m.Name = v
					if m.ReturnType == "" {
						m.ReturnType = v
					}
				}
			}
		}
	}

	if m.Name == "" {
		m.Name = b.pendingName
	}
	if m.Name == "" {
		b.diag("unsupported pattern: method without a name")
		return
	}

	m.DeclaredReturnType = m.ReturnType
	if b.doc.Return != "" {
		m.ReturnType = b.doc.Return
	}
	m.Description = b.doc.Description
	m.Deprecated = b.doc.Deprecated
	m.See = b.doc.See
	m.Parameters = ReconcileParams(declared, b.doc.Params)
	b.obj.AddMethod(m)
}

// withoutTypeParams drops a leading type parameter list ("<T extends
// Number>") from the units of a return type.
func withoutTypeParams(units []string) []string {
	if len(units) > 0 && strings.HasPrefix(units[0], "<") {
		return units[1:]
	}
	return units
}

// field records one member per declared name. Everything from the first
// "=" on is the initializer and is not part of the declaration.
func (b *builder) field() {
	var access string
	var modifiers []string
	var units []string

collect:
	for _, p := range b.parts {
		switch p.Kind {
		case PartAccess:
			access = p.Text()
		case PartModifier:
			modifiers = append(modifiers, p.Text())
		case PartType, PartVariable:
			for _, u := range p.Units {
				if i := strings.Index(u, "="); i >= 0 {
					if head := strings.TrimSpace(u[:i]); head != "" {
						units = append(units, head)
					}
					break collect
				}
				units = append(units, u)
			}
		}
	}

	if len(units) < 2 {
		b.diag("unsupported pattern: declaration without a type")
		return
	}
	for _, name := range units[1:] {
		b.obj.AddMember(model.Member{
			Type:      units[0],
			Name:      name,
			Access:    access,
			Modifiers: append([]string(nil), modifiers...),
			Line:      b.stmtLine(),
			Signature: b.cur.signature(),
		})
	}
}

// enumList records enum constants in declaration order.
func (b *builder) enumList() {
	for _, p := range b.parts {
		if p.Kind != PartVariable {
			b.diag("unsupported enum pattern: %q", p.Text())
			continue
		}
		b.obj.AddEnumField(model.EnumField{
			Name:  p.Text(),
			Value: strconv.Itoa(len(b.obj.Fields)),
		})
	}
}

func (b *builder) stmtLine() int {
	if b.cur.stmtLine == 0 {
		return b.cur.line
	}
	return b.cur.stmtLine
}
