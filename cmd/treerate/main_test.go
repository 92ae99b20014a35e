package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/treerate/domain"
	"github.com/ludo-technologies/treerate/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCommand executes a fresh command tree and returns stdout and stderr
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeResponse(t *testing.T, output string) domain.TreeErrorRateResponse {
	t.Helper()
	var response domain.TreeErrorRateResponse
	require.NoError(t, json.Unmarshal([]byte(output), &response))
	return response
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"compare", "batch", "init", "version"})
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCommand(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Short(), strings.TrimSpace(out))

	out, _, err = runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "treerate")
}

func TestCompareCommandFlags(t *testing.T) {
	cmd := NewCompareCmd()
	assert.Equal(t, "compare REFERENCE HYPOTHESIS", cmd.Use)

	for _, name := range []string{"cer", "cost-model", "insert-weight", "remove-weight", "update-weight",
		"root-policy", "root-label", "input-format", "max-depth", "json", "yaml", "csv", "output",
		"operations", "show-tree", "sort", "config"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestCompareCommandJSON(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.json", `{"a":["b","c"]}`)
	hyp := writeFile(t, dir, "hyp.json", `{"a":["b","d"]}`)

	out, _, err := runCommand(t, "compare", "--json", "--operations", ref, hyp)
	require.NoError(t, err)

	response := decodeResponse(t, out)
	require.Len(t, response.Pairs, 1)
	pair := response.Pairs[0]
	assert.Equal(t, 3, pair.ReferenceNodes)
	assert.InDelta(t, 1.0, pair.Distance, 1e-9)
	assert.InDelta(t, 1.0/3.0, pair.ErrorRate, 1e-9)
	assert.NotEmpty(t, pair.Operations)
}

func TestCompareCommandCERWeighted(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.json", `{"a":["kitten"]}`)
	hyp := writeFile(t, dir, "hyp.json", `{"a":["sitting"]}`)

	out, _, err := runCommand(t, "compare", "--json", "--cer", ref, hyp)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, decodeResponse(t, out).Pairs[0].ErrorRate, 1e-9)

	out, _, err = runCommand(t, "compare", "--json", "--update-weight", "3", ref, hyp)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, decodeResponse(t, out).Pairs[0].ErrorRate, 1e-9)
}

func TestCompareCommandText(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.yaml", "a:\n  - b\n  - c\n")
	hyp := writeFile(t, dir, "hyp.yaml", "a:\n  - b\n  - c\n")

	out, _, err := runCommand(t, "compare", ref, hyp)
	require.NoError(t, err)
	assert.Contains(t, out, "Tree Error Rate Report")
	assert.Contains(t, out, "0.0000")
}

func TestCompareCommandFailures(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.json", `{"a":["b"]}`)
	broken := writeFile(t, dir, "broken.json", `{"a":[`)

	t.Run("unparseable hypothesis", func(t *testing.T) {
		out, _, err := runCommand(t, "compare", "--json", ref, broken)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not be scored")

		response := decodeResponse(t, out)
		assert.Equal(t, 1, response.Summary.FailedPairs)
	})

	t.Run("conflicting formats", func(t *testing.T) {
		_, _, err := runCommand(t, "compare", "--json", "--csv", ref, ref)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only one of")
	})

	t.Run("bad sort", func(t *testing.T) {
		_, _, err := runCommand(t, "compare", "--sort", "size", ref, ref)
		require.Error(t, err)
	})

	t.Run("missing reference", func(t *testing.T) {
		_, _, err := runCommand(t, "compare", filepath.Join(dir, "nope.json"), ref)
		require.Error(t, err)
	})

	t.Run("wrong argument count", func(t *testing.T) {
		_, _, err := runCommand(t, "compare", ref)
		require.Error(t, err)
	})
}

func TestCompareCommandOutputFile(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.json", `{"a":["b"]}`)
	report := filepath.Join(dir, "out", "report.csv")

	out, stderr, err := runCommand(t, "compare", "--csv", "--output", report, ref, ref)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, report)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "name,reference_path"))
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	refDir := filepath.Join(dir, "ref")
	hypDir := filepath.Join(dir, "hyp")

	writeFile(t, refDir, "same.json", `{"a":["b","c"]}`)
	writeFile(t, hypDir, "same.json", `{"a":["b","c"]}`)
	writeFile(t, refDir, "nested/changed.yaml", "a:\n  - b\n  - c\n")
	writeFile(t, hypDir, "nested/changed.yaml", "a:\n  - b\n  - d\n")
	writeFile(t, refDir, "lost.json", `{"a":["b"]}`)

	t.Run("missing hypothesis scored as empty", func(t *testing.T) {
		out, _, err := runCommand(t, "batch", "--json", "--no-progress", "--sort", "rate", refDir, hypDir)
		require.NoError(t, err)

		response := decodeResponse(t, out)
		require.Len(t, response.Pairs, 3)
		assert.Equal(t, "lost.json", response.Pairs[0].Name)
		assert.InDelta(t, 1.0, response.Pairs[0].ErrorRate, 1e-9)
		assert.Equal(t, 3, response.Summary.ScoredPairs)
		assert.Equal(t, 1, response.Summary.PerfectPairs)
		// (2 + 1 + 0) / (2 + 3 + 3)
		assert.InDelta(t, 3.0/8.0, response.Summary.MicroErrorRate, 1e-9)
	})

	t.Run("missing hypothesis skipped", func(t *testing.T) {
		out, _, err := runCommand(t, "batch", "--json", "--missing", "skip", refDir, hypDir)
		require.NoError(t, err)

		response := decodeResponse(t, out)
		assert.Equal(t, 2, response.Summary.ScoredPairs)
		assert.Equal(t, 1, response.Summary.SkippedPairs)
	})

	t.Run("include pattern", func(t *testing.T) {
		out, _, err := runCommand(t, "batch", "--json", "--include", "**/*.yaml", refDir, hypDir)
		require.NoError(t, err)

		response := decodeResponse(t, out)
		require.Len(t, response.Pairs, 1)
		assert.Equal(t, filepath.Join("nested", "changed.yaml"), response.Pairs[0].Name)
	})

	t.Run("invalid missing policy", func(t *testing.T) {
		_, _, err := runCommand(t, "batch", "--missing", "drop", refDir, hypDir)
		require.Error(t, err)
	})
}

func TestBatchCommandUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	refDir := filepath.Join(dir, "ref")
	hypDir := filepath.Join(dir, "hyp")
	writeFile(t, refDir, "doc.json", `{"a":["kitten"]}`)
	writeFile(t, hypDir, "doc.json", `{"a":["sitting"]}`)
	configPath := writeFile(t, dir, "settings.toml", "[cost]\ncer_weighted = true\n\n[output]\nformat = \"json\"\n")

	out, _, err := runCommand(t, "batch", "--config", configPath, refDir, hypDir)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, decodeResponse(t, out).Pairs[0].ErrorRate, 1e-9)

	// An explicit flag wins over the file
	out, _, err = runCommand(t, "batch", "--config", configPath, "--cer=false", refDir, hypDir)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, decodeResponse(t, out).Pairs[0].ErrorRate, 1e-9)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", ".treerate.toml")

	out, _, err := runCommand(t, "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[cost]")

	_, _, err = runCommand(t, "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = runCommand(t, "init", "--config", path, "--force")
	require.NoError(t, err)
}

func TestCompareCommandExplainsErrors(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.json", `{"a":["b"]}`)

	_, stderr, err := runCommand(t, "compare", "--cost-model", "bogus", ref, ref)
	require.Error(t, err)
	assert.Contains(t, stderr, "Configuration Error")
	assert.Contains(t, stderr, "treerate init")
}
