package model

// ObjectState records which kind of type a file declares. It is fixed the
// moment the class, interface or enum keyword is seen.
type ObjectState int

const (
	StateUnset ObjectState = iota
	StateClass
	StateInterface
	StateEnumeration
)

func (s ObjectState) String() string {
	switch s {
	case StateClass:
		return "class"
	case StateInterface:
		return "interface"
	case StateEnumeration:
		return "enum"
	default:
		return "unset"
	}
}

// Kind names the shape of a finalized declaration.
type Kind string

const (
	KindClass       Kind = "class"
	KindInterface   Kind = "interface"
	KindEnumeration Kind = "enum"
)

// Member is a field declaration.
type Member struct {
	Type      string   `json:"type" yaml:"type"`
	Name      string   `json:"name" yaml:"name"`
	Access    string   `json:"access,omitempty" yaml:"access,omitempty"`
	Modifiers []string `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Line      int      `json:"line" yaml:"line"`
	Signature string   `json:"signature" yaml:"signature"`
}

// Method is a method or constructor signature together with its documentation.
//
// ReturnType is replaced by the @return text when the method is documented;
// DeclaredReturnType always holds the type written in the signature.
type Method struct {
	Name               string      `json:"name" yaml:"name"`
	ReturnType         string      `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	DeclaredReturnType string      `json:"declared_return_type,omitempty" yaml:"declared_return_type,omitempty"`
	Parameters         []Param     `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Access             string      `json:"access,omitempty" yaml:"access,omitempty"`
	Modifiers          []string    `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Exceptions         []Exception `json:"exceptions,omitempty" yaml:"exceptions,omitempty"`
	Description        string      `json:"description,omitempty" yaml:"description,omitempty"`
	Deprecated         string      `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	See                string      `json:"see,omitempty" yaml:"see,omitempty"`
	Line               int         `json:"line" yaml:"line"`
	Signature          string      `json:"signature" yaml:"signature"`
}

// HasModifier reports whether the method carries the given modifier.
func (m Method) HasModifier(mod string) bool {
	return contains(m.Modifiers, mod)
}

// EnumField is one enum constant. Value is its zero-based declaration order.
type EnumField struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Declaration holds what every top-level type carries.
type Declaration struct {
	Name         string   `json:"name" yaml:"name"`
	Package      string   `json:"package,omitempty" yaml:"package,omitempty"`
	Access       string   `json:"access,omitempty" yaml:"access,omitempty"`
	Modifiers    []string `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	License      string   `json:"license,omitempty" yaml:"license,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Signature    string   `json:"signature,omitempty" yaml:"signature,omitempty"`
	Line         int      `json:"line,omitempty" yaml:"line,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Author       string   `json:"author,omitempty" yaml:"author,omitempty"`
	Version      string   `json:"version,omitempty" yaml:"version,omitempty"`
	Deprecated   string   `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	See          string   `json:"see,omitempty" yaml:"see,omitempty"`
	Variables    []Member `json:"variables,omitempty" yaml:"variables,omitempty"`
	Methods      []Method `json:"methods,omitempty" yaml:"methods,omitempty"`
}

// QualifiedName returns the package-qualified type name.
func (d *Declaration) QualifiedName() string {
	if d.Package == "" {
		return d.Name
	}
	return d.Package + "." + d.Name
}

// ObjectType is the finalized declaration of one source file: a *Class, an
// *Interface or an *Enumeration.
type ObjectType interface {
	Kind() Kind
	Decl() *Declaration
}

// Class is a finalized class declaration.
type Class struct {
	Declaration `yaml:",inline"`
	Parent      string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Interfaces  []string `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
}

func (c *Class) Kind() Kind         { return KindClass }
func (c *Class) Decl() *Declaration { return &c.Declaration }

// Interface is a finalized interface declaration.
type Interface struct {
	Declaration `yaml:",inline"`
	Extends     []string `json:"extends,omitempty" yaml:"extends,omitempty"`
}

func (i *Interface) Kind() Kind         { return KindInterface }
func (i *Interface) Decl() *Declaration { return &i.Declaration }

// Enumeration is a finalized enum declaration.
type Enumeration struct {
	Declaration `yaml:",inline"`
	Interfaces  []string    `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Fields      []EnumField `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func (e *Enumeration) Kind() Kind         { return KindEnumeration }
func (e *Enumeration) Decl() *Declaration { return &e.Declaration }

// Object accumulates a declaration while a file is parsed. It is finalized
// once, at the end of the token stream.
type Object struct {
	Declaration
	State      ObjectState
	Parents    []string
	Interfaces []string
	Fields     []EnumField
}

// NewObject returns an empty builder in the Unset state.
func NewObject() *Object {
	return &Object{}
}

// ChangeState fixes the declaration kind. Only the first call has an effect;
// it reports whether the state was set.
func (o *Object) ChangeState(s ObjectState) bool {
	if o.State != StateUnset {
		return false
	}
	o.State = s
	return true
}

func (o *Object) AddModifier(mod string) {
	if !contains(o.Modifiers, mod) {
		o.Modifiers = append(o.Modifiers, mod)
	}
}

func (o *Object) AddDependency(dep string) {
	o.Dependencies = append(o.Dependencies, dep)
}

func (o *Object) AddParent(name string) {
	o.Parents = append(o.Parents, name)
}

func (o *Object) AddInterface(name string) {
	o.Interfaces = append(o.Interfaces, name)
}

func (o *Object) AddMember(m Member) {
	o.Variables = append(o.Variables, m)
}

func (o *Object) AddMethod(m Method) {
	o.Methods = append(o.Methods, m)
}

func (o *Object) AddEnumField(f EnumField) {
	o.Fields = append(o.Fields, f)
}

// Finalize converts the builder into its immutable shape. When no type
// keyword was ever seen it still returns a Class holding whatever was
// collected (package, imports, top-level methods), with no name and no
// parent, and reports ok=false.
func (o *Object) Finalize() (obj ObjectType, ok bool) {
	decl := o.Declaration
	switch o.State {
	case StateClass:
		c := &Class{Declaration: decl, Interfaces: o.Interfaces}
		if len(o.Parents) > 0 {
			c.Parent = o.Parents[0]
		}
		return c, true
	case StateInterface:
		return &Interface{Declaration: decl, Extends: o.Parents}, true
	case StateEnumeration:
		return &Enumeration{Declaration: decl, Interfaces: o.Interfaces, Fields: o.Fields}, true
	default:
		decl.Name = ""
		return &Class{Declaration: decl}, false
	}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
