package fileops

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingFilesystem holds SaveFile until release is closed.
type blockingFilesystem struct {
	started  chan struct{}
	release  chan struct{}
	finished atomic.Bool
}

func newBlockingFilesystem() *blockingFilesystem {
	return &blockingFilesystem{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingFilesystem) SaveFile(ctx context.Context, path, content string) error {
	close(b.started)
	<-b.release
	b.finished.Store(true)
	return nil
}

func (b *blockingFilesystem) MakeDirectory(ctx context.Context, path string) error {
	return nil
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func readLines(t *testing.T, out *bytes.Buffer) []string {
	t.Helper()
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(out.Bytes()))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestNewStdIOServer(t *testing.T) {
	server := newTestServer(t, NewAferoFilesystem(afero.NewMemMapFs()))
	stdio := NewStdIOServer(server, strings.NewReader(""), &bytes.Buffer{})

	require.NotNil(t, stdio)
	assert.NotNil(t, stdio.in)
	assert.NotNil(t, stdio.out)
	assert.Same(t, server, stdio.Server)
}

func TestStdIOServer_Run_Session(t *testing.T) {
	mem := afero.NewMemMapFs()
	server := newTestServer(t, NewAferoFilesystem(mem))

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`this is not json`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":99,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"save_file","arguments":{"path":"/s/t.txt","content":"line one\nline two"}}}` + "\r",
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"delete_file","arguments":{}}}`,
	}, "\n") + "\n"

	out := &bytes.Buffer{}
	stdio := NewStdIOServer(server, strings.NewReader(input), out)
	require.NoError(t, stdio.Run(context.Background()))

	lines := readLines(t, out)
	require.Len(t, lines, 4)

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		var resp Response
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		assert.Equal(t, JSONRPCVersion, resp.JSONRPC)
		ids = append(ids, string(resp.ID))
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)

	assert.Equal(t, `{"jsonrpc":"2.0","id":3,"result":{"content":[{"type":"text","text":"Saved: /s/t.txt"}]}}`, lines[2])
	assert.Equal(t, `{"jsonrpc":"2.0","id":4,"error":{"code":-32601,"message":"Unknown tool: delete_file"}}`, lines[3])

	data, err := afero.ReadFile(mem, "/s/t.txt")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", string(data))
}

func TestStdIOServer_Run_OnlyNotifications(t *testing.T) {
	server := newTestServer(t, NewAferoFilesystem(afero.NewMemMapFs()))
	out := &bytes.Buffer{}

	stdio := NewStdIOServer(server, strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n"), out)
	require.NoError(t, stdio.Run(context.Background()))
	assert.Equal(t, 0, out.Len())
}

func TestStdIOServer_Run_LargeLine(t *testing.T) {
	mem := afero.NewMemMapFs()
	server := newTestServer(t, NewAferoFilesystem(mem))

	content := strings.Repeat("x", 2*1024*1024)
	args, err := json.Marshal(map[string]string{"path": "/big.txt", "content": content})
	require.NoError(t, err)
	line := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"save_file","arguments":` + string(args) + `}}` + "\n"

	out := &bytes.Buffer{}
	stdio := NewStdIOServer(server, strings.NewReader(line), out)
	require.NoError(t, stdio.Run(context.Background()))

	assert.Equal(t, `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"Saved: /big.txt"}]}}`+"\n", out.String())

	data, err := afero.ReadFile(mem, "/big.txt")
	require.NoError(t, err)
	assert.Len(t, data, len(content))
}

func TestStdIOServer_Run_WriteFailure(t *testing.T) {
	server := newTestServer(t, NewAferoFilesystem(afero.NewMemMapFs()))

	stdio := NewStdIOServer(server, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`+"\n"), failingWriter{})
	err := stdio.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}

func TestStdIOServer_Run_ContextCancelled(t *testing.T) {
	server := newTestServer(t, NewAferoFilesystem(afero.NewMemMapFs()))

	reader, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	stdio := NewStdIOServer(server, reader, &bytes.Buffer{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- stdio.Run(ctx)
	}()

	cancel()

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestStdIOServer_Run_CancelWaitsForInFlightWrite(t *testing.T) {
	fsys := newBlockingFilesystem()
	server := newTestServer(t, fsys)

	reader, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &bytes.Buffer{}
	stdio := NewStdIOServer(server, reader, out)

	errCh := make(chan error, 1)
	go func() {
		errCh <- stdio.Run(ctx)
	}()

	go func() {
		_, _ = writer.Write([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"save_file","arguments":{"path":"a","content":"b"}}}` + "\n"))
	}()

	select {
	case <-fsys.started:
	case <-time.After(2 * time.Second):
		t.Fatal("SaveFile was not called")
	}

	cancel()

	select {
	case err := <-errCh:
		t.Fatalf("Run returned before the write finished: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(fsys.release)

	var err error
	select {
	case err = <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the write finished")
	}
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, fsys.finished.Load())

	// The response was written before Run returned, and nothing follows it.
	atReturn := out.String()
	assert.Equal(t, `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"Saved: a"}]}}`+"\n", atReturn)

	go func() {
		_, _ = writer.Write([]byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"))
	}()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, atReturn, out.String())
}
