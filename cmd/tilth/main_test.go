package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tilth/pkg/core"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&deps{})
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestCLI_Lifecycle(t *testing.T) {
	root := t.TempDir()

	res := run(t, "", "--root", root, "create", "blog/hello",
		"--set", "title=Hello", "--set", "tags=[go, notes]", "--set", "meta.weight=3",
		"--content", "Body")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "Entry 'blog/hello' created.\n", res.stdout)
	assert.FileExists(t, filepath.Join(root, "blog", "hello", "entry.md"))

	t.Run("Fetch Document", func(t *testing.T) {
		res := run(t, "", "--root", root, "fetch", "blog/hello")
		require.NoError(t, res.err)
		assert.True(t, strings.HasPrefix(res.stdout, "---\n"))
		assert.Contains(t, res.stdout, "title: Hello\n")
		assert.True(t, strings.HasSuffix(res.stdout, "---\nBody"))
	})

	t.Run("Fetch JSON", func(t *testing.T) {
		res := run(t, "", "--root", root, "fetch", "blog/hello", "--json")
		require.NoError(t, res.err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
		assert.Equal(t, "Hello", got["title"])
		assert.Equal(t, []any{"go", "notes"}, got["tags"])
		assert.Equal(t, map[string]any{"weight": float64(3)}, got["meta"])
		assert.Equal(t, "Body", got[core.ContentKey])
	})

	t.Run("Fetch Missing", func(t *testing.T) {
		res := run(t, "", "--root", root, "fetch", "blog/nope")
		assert.ErrorContains(t, res.err, "not found")
	})

	t.Run("Has", func(t *testing.T) {
		assert.Equal(t, "true\n", run(t, "", "--root", root, "has", "blog/hello").stdout)
		assert.Equal(t, "false\n", run(t, "", "--root", root, "has", "blog/nope").stdout)
	})

	t.Run("Create Twice", func(t *testing.T) {
		res := run(t, "", "--root", root, "create", "blog/hello")
		assert.ErrorContains(t, res.err, "precondition_failed")
	})

	t.Run("Update Dry Run", func(t *testing.T) {
		res := run(t, "", "--root", root, "update", "blog/hello", "--set", "title=Bye", "--dry-run")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "-title: Hello\n")
		assert.Contains(t, res.stdout, "+title: Bye\n")
		assert.Contains(t, res.stdout, " Body\n")

		fetched := run(t, "", "--root", root, "fetch", "blog/hello")
		assert.Contains(t, fetched.stdout, "title: Hello\n", "dry run must not write")
	})

	t.Run("Update", func(t *testing.T) {
		res := run(t, "", "--root", root, "update", "blog/hello", "--set", "draft=true")
		require.NoError(t, res.err)
		assert.Equal(t, "Entry 'blog/hello' updated.\n", res.stdout)

		fetched := run(t, "", "--root", root, "fetch", "blog/hello", "--json")
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(fetched.stdout), &got))
		assert.Equal(t, true, got["draft"])
		assert.Equal(t, "Hello", got["title"])
	})

	t.Run("Update Missing", func(t *testing.T) {
		res := run(t, "", "--root", root, "update", "blog/nope", "--set", "a=1")
		assert.ErrorContains(t, res.err, "not_found")
	})

	t.Run("Copy Move Delete", func(t *testing.T) {
		res := run(t, "", "--root", root, "copy", "blog/hello", "blog/copy")
		require.NoError(t, res.err)
		assert.Equal(t, "Entry 'blog/hello' copied to 'blog/copy'.\n", res.stdout)

		res = run(t, "", "--root", root, "move", "blog/copy", "archive/hello")
		assert.ErrorContains(t, res.err, "precondition_failed", "the archive collection does not exist yet")

		require.NoError(t, run(t, "", "--root", root, "create", "archive", "--set", "title=Archive").err)
		res = run(t, "", "--root", root, "move", "blog/copy", "archive/hello")
		require.NoError(t, res.err)
		assert.Equal(t, "true\n", run(t, "", "--root", root, "has", "archive/hello").stdout)
		assert.Equal(t, "false\n", run(t, "", "--root", root, "has", "blog/copy").stdout)

		res = run(t, "", "--root", root, "move", "archive/hello", "blog/hello")
		assert.ErrorContains(t, res.err, "precondition_failed")

		res = run(t, "", "--root", root, "delete", "archive")
		require.NoError(t, res.err)
		res = run(t, "", "--root", root, "delete", "archive")
		assert.ErrorContains(t, res.err, "not_found")
	})
}

func TestCLI_ContentFromStdin(t *testing.T) {
	root := t.TempDir()
	res := run(t, "# Piped\n\nfrom stdin\n", "--root", root, "create", "piped", "--content", "-")
	require.NoError(t, res.err)

	raw, err := os.ReadFile(filepath.Join(root, "piped", "entry.md"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "from stdin")
}

func TestCLI_DataFlag(t *testing.T) {
	root := t.TempDir()
	res := run(t, `{"title": "From JSON", "seo": {"index": true}, "weight": 3}`,
		"--root", root, "create", "json", "--data", "-", "--set", "seo.lang=en", "--content", "Body")
	require.NoError(t, res.err)

	fetched := run(t, "", "--root", root, "fetch", "json", "--json")
	require.NoError(t, fetched.err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(fetched.stdout), &got))
	assert.Equal(t, "From JSON", got["title"])
	assert.Equal(t, map[string]any{"index": true, "lang": "en"}, got["seo"])
	assert.Equal(t, float64(3), got["weight"])
	assert.Equal(t, "Body", got["content"])

	res = run(t, "", "--root", root, "update", "json", "--data", "[1]")
	assert.ErrorContains(t, res.err, "--data")

	res = run(t, "x", "--root", root, "update", "json", "--data", "-", "--content", "-")
	assert.ErrorContains(t, res.err, "stdin")
}

func TestCLI_List(t *testing.T) {
	root := t.TempDir()
	for _, args := range [][]string{
		{"create", "blog/a", "--set", "title=Alpha", "--set", "weight=2", "--set", "draft=false"},
		{"create", "blog/b", "--set", "title=Beta", "--set", "weight=1", "--set", "draft=true"},
		{"create", "blog/c", "--set", "title=Gamma", "--set", "weight=3", "--set", "draft=false"},
		{"create", "pages/about"},
	} {
		res := run(t, "", append([]string{"--root", root}, args...)...)
		require.NoError(t, res.err, res.stderr)
	}

	t.Run("All", func(t *testing.T) {
		res := run(t, "", "--root", root, "list")
		require.NoError(t, res.err)
		assert.Equal(t, "blog/a - Alpha\nblog/b - Beta\nblog/c - Gamma\npages/about\n", res.stdout)
	})

	t.Run("Where And Order", func(t *testing.T) {
		res := run(t, "", "--root", root, "list", "blog", "--where", "draft=false", "--order-by", "-weight")
		require.NoError(t, res.err)
		assert.Equal(t, "blog/c - Gamma\nblog/a - Alpha\n", res.stdout)
	})

	t.Run("Match Limit Offset", func(t *testing.T) {
		res := run(t, "", "--root", root, "list", "--match", "blog/*", "--order-by", "weight", "--offset", "1", "--limit", "1")
		require.NoError(t, res.err)
		assert.Equal(t, "blog/a - Alpha\n", res.stdout)
	})

	t.Run("JSON", func(t *testing.T) {
		res := run(t, "", "--root", root, "list", "pages", "--json")
		require.NoError(t, res.err)

		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "pages/about", got[0]["id"])
	})

	t.Run("Bad Condition", func(t *testing.T) {
		res := run(t, "", "--root", root, "list", "--where", "weight")
		assert.ErrorContains(t, res.err, "unknown operator")
	})
}

func TestCLI_SettingsFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "tilth.yaml"), []byte("entries:\n  extension: txt\n"), 0644))

	res := run(t, "", "--root", root, "create", "note")
	require.NoError(t, res.err)
	assert.FileExists(t, filepath.Join(root, "note", "entry.txt"))

	res = run(t, "", "--root", root, "--no-cache", "status")
	require.NoError(t, res.err)
	var got struct {
		Component string `json:"component"`
		State     struct {
			Extension    string `json:"extension"`
			CacheEnabled bool   `json:"cache_enabled"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, "entry_store", got.Component)
	assert.Equal(t, "txt", got.State.Extension)
	assert.False(t, got.State.CacheEnabled)
}

func TestCLI_Version(t *testing.T) {
	res := run(t, "", "version")
	require.NoError(t, res.err)
	assert.Regexp(t, `^tilth version \d+\.\d+\.\d+\n$`, res.stdout)
}

func TestParseSets(t *testing.T) {
	got, err := parseSets([]string{
		"title=Note: with colon",
		"count=3",
		"ratio=0.5",
		"draft=false",
		"tags=[a, b]",
		"empty=",
		"seo.description = plain text",
	})
	require.NoError(t, err)
	assert.Equal(t, core.Data{
		"title": "Note: with colon",
		"count": 3,
		"ratio": 0.5,
		"draft": false,
		"tags":  []any{"a", "b"},
		"empty": "",
		"seo":   map[string]any{"description": "plain text"},
	}, got)

	_, err = parseSets([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseSets([]string{"=x"})
	assert.Error(t, err)
}

func TestLineDiff(t *testing.T) {
	assert.Equal(t, " a\n-b\n+c\n d\n", lineDiff("a\nb\nd\n", "a\nc\nd\n"))
	assert.Equal(t, " same\n", lineDiff("same\n", "same\n"))
	assert.Equal(t, "-x\n+y\n", lineDiff("x", "y"))
}

func TestParseKinds(t *testing.T) {
	got, err := parseKinds([]string{"created", " Deleted"})
	require.NoError(t, err)
	assert.Equal(t, []core.ChangeType{core.ChangeCreate, core.ChangeDelete}, got)

	_, err = parseKinds([]string{"renamed"})
	assert.ErrorContains(t, err, "renamed")
}
