package model

import (
	"path"
	"sort"
)

// Document is one parsed source file.
type Document struct {
	Path        string       `json:"path" yaml:"path"`
	Kind        Kind         `json:"kind" yaml:"kind"`
	Object      ObjectType   `json:"object" yaml:"object"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewDocument wraps a parsed declaration. relPath uses forward slashes.
func NewDocument(relPath string, obj ObjectType, diags []Diagnostic) Document {
	return Document{Path: relPath, Kind: obj.Kind(), Object: obj, Diagnostics: diags}
}

// Package is a named group of type names that share a Java package.
type Package struct {
	Name    string   `json:"name" yaml:"name"`
	Path    string   `json:"path" yaml:"path"`
	Members []string `json:"members" yaml:"members"`
}

// AddClass records a type name as a member of the package.
func (p *Package) AddClass(name string) {
	p.Members = append(p.Members, name)
}

// ApplicationDoc is the project-wide roll-up of parsed files.
type ApplicationDoc struct {
	FileNum      int        `json:"file_num" yaml:"file_num"`
	ClassNum     int        `json:"class_num" yaml:"class_num"`
	InterfaceNum int        `json:"interface_num" yaml:"interface_num"`
	EnumNum      int        `json:"enum_num" yaml:"enum_num"`
	Packages     []*Package `json:"packages" yaml:"packages"`
}

// NewApplicationDoc returns an empty roll-up.
func NewApplicationDoc() *ApplicationDoc {
	return &ApplicationDoc{}
}

// AddPackageClass adds class to the named package, creating the package with
// dir as its source directory when it is new.
func (a *ApplicationDoc) AddPackageClass(pkg, dir, class string) {
	if p := a.Package(pkg); p != nil {
		p.AddClass(class)
		return
	}
	a.Packages = append(a.Packages, &Package{Name: pkg, Path: dir, Members: []string{class}})
}

// Package returns the package with the given name, or nil.
func (a *ApplicationDoc) Package(name string) *Package {
	for _, p := range a.Packages {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Add counts a parsed file and files its declaration under its package.
// Files without a package declaration are grouped under the empty name;
// files that declare no type only count toward FileNum.
func (a *ApplicationDoc) Add(doc Document) {
	a.FileNum++
	decl := doc.Object.Decl()
	if decl.Name == "" {
		return
	}
	switch doc.Kind {
	case KindClass:
		a.ClassNum++
	case KindInterface:
		a.InterfaceNum++
	case KindEnumeration:
		a.EnumNum++
	}
	a.AddPackageClass(decl.Package, path.Dir(doc.Path), decl.Name)
}

// Sort orders packages and their members by name.
func (a *ApplicationDoc) Sort() {
	sort.Slice(a.Packages, func(i, j int) bool {
		return a.Packages[i].Name < a.Packages[j].Name
	})
	for _, p := range a.Packages {
		sort.Strings(p.Members)
	}
}
