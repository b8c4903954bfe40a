package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "fileops 1.0.0 (protocol 2024-11-05)\n", out.String())
}

func TestRootCommand_ServesStdio(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "note.txt")

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"save_file","arguments":{"path":"` + target + `","content":"hello"}}}`,
	}, "\n") + "\n"

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(out)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"--log-level", "debug", "--log-backend", "std"})

	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"serverInfo":{"name":"fileops","version":"1.0.0"}`)
	assert.Equal(t, `{"jsonrpc":"2.0","id":2,"result":{"content":[{"type":"text","text":"Saved: `+target+`"}]}}`, lines[1])

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	assert.Contains(t, stderr.String(), "[DEBUG]")
	assert.NotContains(t, out.String(), "[DEBUG]")
}

func TestRootCommand_InvalidFlag(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-format", "xml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}
