package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  []Part
	}{
		{"empty", nil, nil},
		{"single word", []string{"x"}, []Part{{Kind: PartVariable, Units: []string{"x"}}}},
		{"type and name", []string{"int", "x"}, []Part{
			{Kind: PartType, Units: []string{"int"}},
			{Kind: PartVariable, Units: []string{"x"}},
		}},
		{"initializer", []string{"int", "MAX", "=", "10"}, []Part{
			{Kind: PartType, Units: []string{"int", "MAX", "="}},
			{Kind: PartVariable, Units: []string{"10"}},
		}},
		{"split generic", []string{"Map<String,", "List<Integer>>", "index"}, []Part{
			{Kind: PartType, Units: []string{"Map<String, List<Integer>>"}},
			{Kind: PartVariable, Units: []string{"index"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.words))
		})
	}
}

func TestOpenGenerics(t *testing.T) {
	assert.True(t, openGenerics([]string{"Map<String"}))
	assert.False(t, openGenerics([]string{"List<String>"}))
	assert.False(t, openGenerics(nil))
}

func TestReconcileParams(t *testing.T) {
	declared := []model.Param{{Type: "int", Name: "a"}, {Type: "String", Name: "b"}}
	documented := []model.Param{
		{Name: "b", Description: "second"},
		{Name: "ghost", Description: "not declared"},
	}

	got := ReconcileParams(declared, documented)

	assert.Equal(t, []model.Param{
		{Type: "int", Name: "a"},
		{Type: "String", Name: "b", Description: "second"},
	}, got)
}

func TestReconcileParams_CaseSensitive(t *testing.T) {
	got := ReconcileParams(
		[]model.Param{{Type: "int", Name: "count"}},
		[]model.Param{{Name: "Count", Description: "wrong case"}},
	)
	assert.Equal(t, []model.Param{{Type: "int", Name: "count"}}, got)
}

func TestReconcileParams_NothingDeclared(t *testing.T) {
	assert.Nil(t, ReconcileParams(nil, []model.Param{{Name: "a", Description: "x"}}))
}
