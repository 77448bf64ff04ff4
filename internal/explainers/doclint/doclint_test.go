package doclint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/parser"
)

func parseDoc(t *testing.T, path, src string) model.Document {
	t.Helper()
	res, err := parser.Parse(src)
	require.NoError(t, err)
	return model.NewDocument(path, res.Object, res.Diagnostics)
}

func byTitle(insights []facts.Insight, title string) (facts.Insight, bool) {
	for _, in := range insights {
		if in.Title == title {
			return in, true
		}
	}
	return facts.Insight{}, false
}

const gappySrc = `package com.example;

public class Calculator {

    public Calculator() {
    }

    /**
     * Adds two numbers.
     * @param a the first
     */
    public int add(int a, int b) {
        return a + b;
    }

    /**
     * Resets the state.
     */
    public void reset() {
    }

    public int total() {
        return 0;
    }

    private int hidden() {
        return 0;
    }
}
`

func TestExplain_ReportsGaps(t *testing.T) {
	docs := []model.Document{parseDoc(t, "src/com/example/Calculator.java", gappySrc)}

	insights, err := New().Explain(context.Background(), facts.NewStore(), docs)
	require.NoError(t, err)

	types, ok := byTitle(insights, "Undocumented public types")
	require.True(t, ok)
	assert.Equal(t, "com.example.Calculator", types.Evidence[0].Symbol)

	methods, ok := byTitle(insights, "Undocumented public methods")
	require.True(t, ok)
	var symbols []string
	for _, ev := range methods.Evidence {
		symbols = append(symbols, ev.Symbol)
	}
	assert.Equal(t, []string{"com.example.Calculator#Calculator", "com.example.Calculator#total"}, symbols)

	params, ok := byTitle(insights, "Undocumented parameters")
	require.True(t, ok)
	require.Len(t, params.Evidence, 1)
	assert.Equal(t, `parameter "b"`, params.Evidence[0].Detail)

	returns, ok := byTitle(insights, "Missing @return")
	require.True(t, ok)
	require.Len(t, returns.Evidence, 1, "void methods need no @return")
	assert.Equal(t, "com.example.Calculator#add", returns.Evidence[0].Symbol)

	_, ok = byTitle(insights, "Parser diagnostics")
	assert.False(t, ok)
}

func TestExplain_DiagnosticsAndCleanSources(t *testing.T) {
	clean := parseDoc(t, "Clean.java", `/**
 * Nothing to report.
 */
public interface Clean {
}
`)
	nested := parseDoc(t, "Outer.java", `/**
 * Outer type.
 */
class Outer {
    class Inner {
    }
}
`)

	insights, err := New().Explain(context.Background(), facts.NewStore(), []model.Document{clean, nested})
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, "Parser diagnostics", insights[0].Title)
	assert.Equal(t, "Outer.java", insights[0].Evidence[0].File)
	assert.Equal(t, 5, insights[0].Evidence[0].Line)
}

func TestExplain_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	docs := []model.Document{parseDoc(t, "A.java", "public class A {}\n")}

	_, err := New().Explain(ctx, facts.NewStore(), docs)
	assert.ErrorIs(t, err, context.Canceled)
}
