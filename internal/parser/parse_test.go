package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

func mustParse(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Parse(src)
	require.NoError(t, err)
	require.NotNil(t, res.Object)
	return res
}

func findMethod(t *testing.T, obj model.ObjectType, name string) model.Method {
	t.Helper()
	for _, m := range obj.Decl().Methods {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("method %s not found in %+v", name, obj.Decl().Methods)
	return model.Method{}
}

func hasDiagnostic(diags []model.Diagnostic, substr string) bool {
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

func TestParse_TopLevelMethodRoundTrip(t *testing.T) {
	src := `package com.example;
/**
 * Adds two numbers.
 * @param a first value
 * @param b second value
 * @return the sum
 */
public int add(int a, int b) {
    return a + b;
}
`
	res := mustParse(t, src)

	class, ok := res.Object.(*model.Class)
	require.True(t, ok, "expected *model.Class, got %T", res.Object)
	assert.Equal(t, "com.example", class.Package)
	assert.Empty(t, class.Variables, "method body leaked into members")
	require.Len(t, class.Methods, 1)

	m := class.Methods[0]
	assert.Equal(t, "add", m.Name)
	assert.Equal(t, "public", m.Access)
	// documented @return text replaces the declared return type
	assert.Equal(t, "the sum", m.ReturnType)
	assert.Equal(t, "int", m.DeclaredReturnType)
	assert.Equal(t, "Adds two numbers.", m.Description)
	assert.Equal(t, []model.Param{
		{Type: "int", Name: "a", Description: "first value"},
		{Type: "int", Name: "b", Description: "second value"},
	}, m.Parameters)
	assert.Equal(t, 8, m.Line)
	assert.Equal(t, "public int add(int a, int b) {", m.Signature)
}

func TestParse_ClassHeader(t *testing.T) {
	src := `/*
 * Copyright 2024 Example
 */
package com.example.geom;

import java.io.Serializable;
import static java.lang.Math.max;

/**
 * A point.
 * @author Jane
 * @version 1.2
 */
public final class Point extends Shape implements Serializable, Comparable<Point> {
    private int x, y;

    public Point(int x, int y) {
        this.x = x;
        this.y = y;
    }
}
`
	res := mustParse(t, src)
	assert.Empty(t, res.Diagnostics)

	class, ok := res.Object.(*model.Class)
	require.True(t, ok)
	assert.Equal(t, "Point", class.Name)
	assert.Equal(t, "com.example.geom.Point", class.QualifiedName())
	assert.Equal(t, "Copyright 2024 Example", class.License)
	assert.Equal(t, []string{"java.io.Serializable", "java.lang.Math.max"}, class.Dependencies)
	assert.Equal(t, "public", class.Access)
	assert.Equal(t, []string{"final"}, class.Modifiers)
	assert.Equal(t, "Shape", class.Parent)
	assert.Equal(t, []string{"Serializable", "Comparable<Point>"}, class.Interfaces)
	assert.Equal(t, "A point.", class.Description)
	assert.Equal(t, "Jane", class.Author)
	assert.Equal(t, "1.2", class.Version)
	assert.Equal(t, 14, class.Line)

	require.Len(t, class.Variables, 2)
	assert.Equal(t, "x", class.Variables[0].Name)
	assert.Equal(t, "y", class.Variables[1].Name)
	assert.Equal(t, "int", class.Variables[1].Type)
	assert.Equal(t, "private", class.Variables[1].Access)

	ctor := findMethod(t, class, "Point")
	assert.Equal(t, "Point", ctor.DeclaredReturnType)
	assert.Len(t, ctor.Parameters, 2)
}

func TestParse_ConstantField(t *testing.T) {
	src := `public class Limits {
    private static final int MAX = 10;
}`
	res := mustParse(t, src)

	vars := res.Object.Decl().Variables
	require.Len(t, vars, 1)
	assert.Equal(t, model.Member{
		Type:      "int",
		Name:      "MAX",
		Access:    "private",
		Modifiers: []string{"static", "final"},
		Line:      2,
		Signature: "private static final int MAX = 10;",
	}, vars[0])
}

func TestParse_GenericField(t *testing.T) {
	src := `class Index {
    private Map<String, List<Integer>> index = new HashMap<>();
}`
	res := mustParse(t, src)

	vars := res.Object.Decl().Variables
	require.Len(t, vars, 1)
	assert.Equal(t, "Map<String, List<Integer>>", vars[0].Type)
	assert.Equal(t, "index", vars[0].Name)
}

func TestParse_EnumValues(t *testing.T) {
	src := `package com.example;

public enum Color {
    RED, GREEN, BLUE
}`
	res := mustParse(t, src)

	enum, ok := res.Object.(*model.Enumeration)
	require.True(t, ok, "expected *model.Enumeration, got %T", res.Object)
	assert.Equal(t, "Color", enum.Name)
	assert.Equal(t, []model.EnumField{
		{Name: "RED", Value: "0"},
		{Name: "GREEN", Value: "1"},
		{Name: "BLUE", Value: "2"},
	}, enum.Fields)
}

func TestParse_EnumWithConstructorAndMembers(t *testing.T) {
	src := `public enum Planet implements Body {
    /** The first. */
    MERCURY(3.303e+23),
    VENUS(4.869e+24);

    private final double mass;

    Planet(double mass) {
        this.mass = mass;
    }

    public double mass() {
        return mass;
    }
}`
	res := mustParse(t, src)

	enum, ok := res.Object.(*model.Enumeration)
	require.True(t, ok)
	assert.Equal(t, []string{"Body"}, enum.Interfaces)
	assert.Equal(t, []model.EnumField{
		{Name: "MERCURY", Value: "0"},
		{Name: "VENUS", Value: "1"},
	}, enum.Fields)
	require.Len(t, enum.Variables, 1)
	assert.Equal(t, "mass", enum.Variables[0].Name)

	m := findMethod(t, enum, "mass")
	assert.Equal(t, "double", m.ReturnType)
	findMethod(t, enum, "Planet")
}

func TestParse_Interface(t *testing.T) {
	src := `package com.example.api;

import java.util.List;

/**
 * Stores things.
 */
public interface Repository<T> extends Closeable, Iterable<T> {
    int LIMIT = 5;

    List<T> findAll();

    /**
     * Saves an item.
     * @param item the item
     * @throws IOException when the store is unavailable
     */
    void save(T item) throws IOException;
}`
	res := mustParse(t, src)

	iface, ok := res.Object.(*model.Interface)
	require.True(t, ok, "expected *model.Interface, got %T", res.Object)
	assert.Equal(t, "Repository<T>", iface.Name)
	assert.Equal(t, []string{"Closeable", "Iterable<T>"}, iface.Extends)
	assert.Equal(t, "Stores things.", iface.Description)

	require.Len(t, iface.Variables, 1)
	assert.Equal(t, "LIMIT", iface.Variables[0].Name)

	require.Len(t, iface.Methods, 2)
	assert.Equal(t, "List<T>", findMethod(t, iface, "findAll").ReturnType)

	save := findMethod(t, iface, "save")
	assert.Equal(t, []model.Param{{Type: "T", Name: "item", Description: "the item"}}, save.Parameters)
	assert.Equal(t, []model.Exception{{Type: "IOException", Description: "when the store is unavailable"}}, save.Exceptions)
}

func TestParse_CommentOnlySourceYieldsEmptyClass(t *testing.T) {
	for _, src := range []string{
		"",
		"   \n\t\n",
		"/* just a comment */\n\n// another one\n",
		"/** A doc comment with no declaration. */\n",
	} {
		res := mustParse(t, src)

		class, ok := res.Object.(*model.Class)
		require.True(t, ok, "source %q: got %T", src, res.Object)
		assert.Empty(t, class.Name)
		assert.Empty(t, class.Methods)
		assert.Empty(t, class.Variables)
		assert.True(t, hasDiagnostic(res.Diagnostics, "no class, interface or enum"), "source %q", src)
	}
}

func TestParse_UndocumentedParamHasEmptyDescription(t *testing.T) {
	src := `class A {
    /**
     * Does it.
     * @param b the second
     * @param c not a parameter
     */
    void run(int a, int b) {}
}`
	res := mustParse(t, src)

	m := findMethod(t, res.Object, "run")
	assert.Equal(t, []model.Param{
		{Type: "int", Name: "a"},
		{Type: "int", Name: "b", Description: "the second"},
	}, m.Parameters)
}

func TestParse_NestedTypeOnlyDiagnosed(t *testing.T) {
	src := `public class Outer {
    static class Inner {
        int hidden;
    }
    int y;
}
class Second {
    int alsoHidden;
}`
	res := mustParse(t, src)

	class := res.Object.(*model.Class)
	assert.Equal(t, "Outer", class.Name)
	require.Len(t, class.Variables, 1)
	assert.Equal(t, "y", class.Variables[0].Name)
	assert.True(t, hasDiagnostic(res.Diagnostics, "nested or secondary class"))
}

func TestParse_LineCommentEndsAtNewline(t *testing.T) {
	src := `class A {
    // helper for x, see http://example.com
    int x;
    String url = "http://example.com";
}`
	res := mustParse(t, src)

	vars := res.Object.Decl().Variables
	require.Len(t, vars, 2)
	assert.Equal(t, "x", vars[0].Name)
	assert.Equal(t, "url", vars[1].Name)
	assert.Equal(t, "String", vars[1].Type)
}

func TestParse_AnnotationsIgnored(t *testing.T) {
	src := `class A {
    @Override
    public String toString() {
        return "A";
    }

    @SuppressWarnings("unchecked")
    @Custom(value = 1)
    protected List<String> names() {
        return null;
    }
}`
	res := mustParse(t, src)

	m := findMethod(t, res.Object, "toString")
	assert.Equal(t, "public", m.Access)
	assert.Equal(t, "String", m.ReturnType)

	names := findMethod(t, res.Object, "names")
	assert.Equal(t, "protected", names.Access)
	assert.Equal(t, "List<String>", names.ReturnType)
	assert.Empty(t, res.Object.Decl().Variables)
}

func TestParse_InitializerBlockDiagnosed(t *testing.T) {
	src := `class A {
    static {
        init();
    }
    int x;
}`
	res := mustParse(t, src)

	assert.True(t, hasDiagnostic(res.Diagnostics, "initializer block"))
	require.Len(t, res.Object.Decl().Variables, 1)
}

func TestParse_UnsupportedKeywordDiagnosed(t *testing.T) {
	src := `class A {
    private transient int cache;
}`
	res := mustParse(t, src)

	assert.True(t, hasDiagnostic(res.Diagnostics, `"transient"`))
	require.Len(t, res.Object.Decl().Variables, 1)
	assert.Equal(t, "cache", res.Object.Decl().Variables[0].Name)
}

func TestParse_MethodModifiersAndThrows(t *testing.T) {
	src := `abstract class Task {
    public static synchronized void run(final String name, int... ids) throws IOException, InterruptedException {
    }
}`
	res := mustParse(t, src)

	m := findMethod(t, res.Object, "run")
	assert.Equal(t, []string{"static", "synchronized"}, m.Modifiers)
	assert.Equal(t, []model.Param{{Type: "String", Name: "name"}, {Type: "int...", Name: "ids"}}, m.Parameters)
	assert.Equal(t, []model.Exception{{Type: "IOException"}, {Type: "InterruptedException"}}, m.Exceptions)
	assert.Equal(t, []string{"abstract"}, res.Object.Decl().Modifiers)
}

func TestBuild_InconsistentTerminator(t *testing.T) {
	_, _, err := Build([]Token{{Kind: ExpressionEnd, Text: "}"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInconsistentState)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.java")
	require.NoError(t, os.WriteFile(path, []byte("class A { int x; }"), 0o644))

	res, err := ParseFile(path, true)
	require.NoError(t, err)
	assert.True(t, res.Lint)
	assert.Equal(t, "A", res.Object.Decl().Name)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.java"), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_BoundedGenericClassHeader(t *testing.T) {
	src := `public class Box<T extends Number> extends Base implements Comparable<Box<T>>, Serializable {
}
`
	res := mustParse(t, src)
	assert.Empty(t, res.Diagnostics)

	class, ok := res.Object.(*model.Class)
	require.True(t, ok)
	assert.Equal(t, "Box<T extends Number>", class.Name)
	assert.Equal(t, "Base", class.Parent)
	assert.Equal(t, []string{"Comparable<Box<T>>", "Serializable"}, class.Interfaces)
}

func TestParse_BoundedGenericMethod(t *testing.T) {
	src := `class Sorter {
    public <T extends Comparable<T>> void sort(List<T> l) {
    }

    public static <K, V extends Iterable<? super K>> Map<K, V> index(V values) {
        return null;
    }

    public <T> Sorter(T seed) {
    }
}`
	res := mustParse(t, src)

	sort := findMethod(t, res.Object, "sort")
	assert.Equal(t, "void", sort.ReturnType)
	assert.Equal(t, "public", sort.Access)
	assert.Equal(t, []model.Param{{Type: "List<T>", Name: "l"}}, sort.Parameters)

	index := findMethod(t, res.Object, "index")
	assert.Equal(t, "Map<K, V>", index.ReturnType)
	assert.Equal(t, []string{"static"}, index.Modifiers)
	assert.Equal(t, []model.Param{{Type: "V", Name: "values"}}, index.Parameters)

	ctor := findMethod(t, res.Object, "Sorter")
	assert.Equal(t, "Sorter", ctor.ReturnType)
	assert.Equal(t, []model.Param{{Type: "T", Name: "seed"}}, ctor.Parameters)
	assert.Len(t, res.Object.Decl().Methods, 3)
}

func TestParse_BoundedWildcardField(t *testing.T) {
	src := `class Totals {
    private List<? extends Number> values;
}`
	res := mustParse(t, src)

	vars := res.Object.Decl().Variables
	require.Len(t, vars, 1)
	assert.Equal(t, "List<? extends Number>", vars[0].Type)
	assert.Equal(t, "values", vars[0].Name)
}

// A ";" statement inside a type body is a method when it has a parameter
// list and a field otherwise, whatever the kind of type.
func TestParse_AbstractClassMethodIsMethod(t *testing.T) {
	src := `public abstract class Task {
    public abstract void run(int x);
}`
	res := mustParse(t, src)

	class := res.Object.Decl()
	assert.Empty(t, class.Variables)
	run := findMethod(t, res.Object, "run")
	assert.Equal(t, "void", run.ReturnType)
	assert.Equal(t, []string{"abstract"}, run.Modifiers)
	assert.Equal(t, []model.Param{{Type: "int", Name: "x"}}, run.Parameters)
}

func TestParse_InterfaceConstantIsField(t *testing.T) {
	src := `interface Limits {
    int X = 1;
    void reset();
}`
	res := mustParse(t, src)

	iface, ok := res.Object.(*model.Interface)
	require.True(t, ok)
	require.Len(t, iface.Variables, 1)
	assert.Equal(t, "int", iface.Variables[0].Type)
	assert.Equal(t, "X", iface.Variables[0].Name)
	require.Len(t, iface.Methods, 1)
	assert.Equal(t, "reset", iface.Methods[0].Name)
}

// Single words between commas are list items of their own: one-word
// implements entries and enum constants are kept.
func TestParse_SingleWordListItemsKept(t *testing.T) {
	src := `public enum Mode implements Named, Ordered {
    ON, OFF
}`
	res := mustParse(t, src)

	enum, ok := res.Object.(*model.Enumeration)
	require.True(t, ok)
	assert.Equal(t, []string{"Named", "Ordered"}, enum.Interfaces)
	assert.Equal(t, []model.EnumField{{Name: "ON", Value: "0"}, {Name: "OFF", Value: "1"}}, enum.Fields)
}

func TestParse_LineCommentNotLicense(t *testing.T) {
	res := mustParse(t, "// TODO remove\npackage p;\nclass A {}\n")
	assert.Empty(t, res.Object.Decl().License)

	res = mustParse(t, "/* Apache 2 */ // generated\npackage p;\nclass A {}\n")
	assert.Equal(t, "Apache 2", res.Object.Decl().License)
}

func TestParse_DocCallKeepsArguments(t *testing.T) {
	src := `class A {
    /**
     * Calls foo(bar, qux) before baz (when set) returns
     */
    void run() {
    }
}`
	res := mustParse(t, src)

	run := findMethod(t, res.Object, "run")
	assert.Equal(t, "Calls foo(bar, qux) before baz (when set) returns", run.Description)
}
