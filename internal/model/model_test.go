package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeState_FirstCallWins(t *testing.T) {
	o := NewObject()
	assert.True(t, o.ChangeState(StateInterface))
	assert.False(t, o.ChangeState(StateClass))
	assert.Equal(t, StateInterface, o.State)
}

func TestAddModifier_Deduplicates(t *testing.T) {
	o := NewObject()
	o.AddModifier("final")
	o.AddModifier("final")
	o.AddModifier("abstract")
	assert.Equal(t, []string{"final", "abstract"}, o.Modifiers)
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name   string
		state  ObjectState
		kind   Kind
		wantOK bool
	}{
		{"class", StateClass, KindClass, true},
		{"interface", StateInterface, KindInterface, true},
		{"enum", StateEnumeration, KindEnumeration, true},
		{"unset", StateUnset, KindClass, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewObject()
			o.ChangeState(tt.state)
			o.Name = "Thing"
			o.Package = "com.example"

			obj, ok := o.Finalize()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.kind, obj.Kind())
			assert.Equal(t, "com.example", obj.Decl().Package)
		})
	}
}

func TestFinalize_ClassTakesFirstParent(t *testing.T) {
	o := NewObject()
	o.ChangeState(StateClass)
	o.AddParent("Base")
	o.AddParent("Ignored")
	o.AddInterface("Runnable")

	obj, ok := o.Finalize()
	require.True(t, ok)
	c := obj.(*Class)
	assert.Equal(t, "Base", c.Parent)
	assert.Equal(t, []string{"Runnable"}, c.Interfaces)
}

func TestFinalize_InterfaceExtendsAllParents(t *testing.T) {
	o := NewObject()
	o.ChangeState(StateInterface)
	o.AddParent("A")
	o.AddParent("B")

	obj, _ := o.Finalize()
	assert.Equal(t, []string{"A", "B"}, obj.(*Interface).Extends)
}

func TestFinalize_UnsetKeepsCollectedDataWithoutName(t *testing.T) {
	o := NewObject()
	o.Name = "stray"
	o.Package = "com.example"
	o.AddDependency("java.util.List")
	o.AddMethod(Method{Name: "add"})

	obj, ok := o.Finalize()
	assert.False(t, ok)
	c := obj.(*Class)
	assert.Empty(t, c.Name)
	assert.Empty(t, c.Parent)
	assert.Equal(t, []string{"java.util.List"}, c.Dependencies)
	assert.Len(t, c.Methods, 1)
}

func TestDoc_Exception(t *testing.T) {
	d := Doc{Exceptions: []Exception{{Type: "IOException", Description: "on failure"}}}

	e, ok := d.Exception("IOException")
	assert.True(t, ok)
	assert.Equal(t, "on failure", e.Description)

	_, ok = d.Exception("SQLException")
	assert.False(t, ok)
}

func TestDiagnostic_String(t *testing.T) {
	assert.Equal(t, "line 4: unsupported keyword", Diagnostic{Line: 4, Message: "unsupported keyword"}.String())
}

func TestApplicationDoc_Add(t *testing.T) {
	app := NewApplicationDoc()
	app.Add(NewDocument("src/com/example/B.java", &Class{Declaration: Declaration{Name: "B", Package: "com.example"}}, nil))
	app.Add(NewDocument("src/com/example/A.java", &Interface{Declaration: Declaration{Name: "A", Package: "com.example"}}, nil))
	app.Add(NewDocument("src/com/example/util/Color.java", &Enumeration{Declaration: Declaration{Name: "Color", Package: "com.example.util"}}, nil))
	app.Add(NewDocument("src/package-info.java", &Class{}, nil))
	app.Sort()

	assert.Equal(t, 4, app.FileNum)
	assert.Equal(t, 1, app.ClassNum)
	assert.Equal(t, 1, app.InterfaceNum)
	assert.Equal(t, 1, app.EnumNum)
	require.Len(t, app.Packages, 2)
	assert.Equal(t, "com.example", app.Packages[0].Name)
	assert.Equal(t, "src/com/example", app.Packages[0].Path)
	assert.Equal(t, []string{"A", "B"}, app.Packages[0].Members)
	assert.Equal(t, "com.example.util", app.Packages[1].Name)
	assert.Nil(t, app.Package("missing"))
}
