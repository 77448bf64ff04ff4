package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointJava = `package com.example;

/**
 * A point on a plane.
 *
 * @author Jane
 */
public class Point {
    /**
     * Moves the point.
     * @param dx horizontal offset
     */
    public void move(int dx) {
    }

    public int getX() {
        return 0;
    }
}
`

func newProject(t *testing.T) string {
	t.Helper()
	repo := t.TempDir()
	dir := filepath.Join(repo, "src", "com", "example")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Point.java"), []byte(pointJava), 0o644))
	return repo
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"-q"}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestGenerate_WritesDocumentation(t *testing.T) {
	repo := newProject(t)

	_, stderr, err := run(t, "generate", repo)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Documentation complete:")
	assert.Contains(t, stderr, "1 classes, 0 interfaces, 0 enums")

	for _, rel := range []string{"README.md", "summary.md", "model.yaml", "com/example/Point.md", "com/example/index.md", "facts.jsonl"} {
		assert.FileExists(t, filepath.Join(repo, "docs", filepath.FromSlash(rel)))
	}

	page, err := os.ReadFile(filepath.Join(repo, "docs", "com", "example", "Point.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "A point on a plane.")
	assert.Contains(t, string(page), "| `dx` | `int` | horizontal offset |")
}

func TestGenerate_FlagOverrides(t *testing.T) {
	repo := newProject(t)

	_, _, err := run(t, "generate", repo, "--output", "site", "--lint", "--workers", "2")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(repo, "site", "README.md"))
	assert.NoDirExists(t, filepath.Join(repo, "docs"))

	insights, err := os.ReadFile(filepath.Join(repo, "site", "insights.json"))
	require.NoError(t, err)
	assert.Contains(t, string(insights), "Undocumented public methods")
}

func TestGenerate_WithoutLintSkipsDocLint(t *testing.T) {
	repo := newProject(t)

	_, _, err := run(t, "generate", repo)
	require.NoError(t, err)

	insights, err := os.ReadFile(filepath.Join(repo, "docs", "insights.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(insights), "Undocumented")
}

func TestGenerate_ReadsRepoConfig(t *testing.T) {
	repo := newProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo, "jdmd.yaml"), []byte("renderers: [markdown]\n"), 0o644))

	_, _, err := run(t, "generate", repo)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(repo, "docs", "README.md"))
	assert.NoFileExists(t, filepath.Join(repo, "docs", "model.yaml"))
	assert.NoFileExists(t, filepath.Join(repo, "docs", "summary.md"))
}

func TestGenerate_Errors(t *testing.T) {
	repo := newProject(t)

	_, _, err := run(t, "generate", filepath.Join(repo, "missing"))
	assert.Error(t, err)

	_, _, err = run(t, "generate", filepath.Join(repo, "src", "com", "example", "Point.java"))
	assert.ErrorContains(t, err, "is not a directory")

	_, _, err = run(t, "generate", repo, "--config", filepath.Join(repo, "nope.yaml"))
	assert.Error(t, err, "an explicit config must exist")

	_, _, err = run(t, "generate", repo, "--workers", "-1")
	assert.ErrorContains(t, err, "workers must not be negative")
}

func TestParse_Formats(t *testing.T) {
	repo := newProject(t)
	file := filepath.Join(repo, "src", "com", "example", "Point.java")

	stdout, _, err := run(t, "parse", file)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"kind": "class"`)
	assert.Contains(t, stdout, `"name": "Point"`)
	assert.Contains(t, stdout, `"author": "Jane"`)

	stdout, _, err = run(t, "parse", file, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "name: Point")

	stdout, _, err = run(t, "parse", file, "-f", "markdown")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Class Point")

	_, _, err = run(t, "parse", file, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = run(t, "parse", filepath.Join(repo, "Missing.java"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "jdmd version dev")
}
