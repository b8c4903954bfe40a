package fileops

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Filesystem is the capability the built-in tools mutate.
type Filesystem interface {
	// SaveFile writes content as the full contents of path, creating any
	// missing parent directories first.
	SaveFile(ctx context.Context, path, content string) error
	// MakeDirectory creates path and any missing ancestors. It succeeds if
	// the directory already exists.
	MakeDirectory(ctx context.Context, path string) error
}

// FSErrorKind classifies filesystem failures.
type FSErrorKind int

const (
	FSErrorOther FSErrorKind = iota
	FSErrorNotFound
	FSErrorPermission
	FSErrorAlreadyExists
)

func (k FSErrorKind) String() string {
	switch k {
	case FSErrorNotFound:
		return "not-found"
	case FSErrorPermission:
		return "permission"
	case FSErrorAlreadyExists:
		return "already-exists"
	default:
		return "other"
	}
}

// FSError is returned by AferoFilesystem. Its message is the message of the
// underlying error so callers can pass it through unchanged.
type FSError struct {
	Kind FSErrorKind
	Op   string
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return e.Err.Error()
}

func (e *FSError) Unwrap() error {
	return e.Err
}

func newFSError(op, path string, err error) *FSError {
	return &FSError{Kind: classifyFSError(err), Op: op, Path: path, Err: err}
}

func classifyFSError(err error) FSErrorKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return FSErrorNotFound
	case errors.Is(err, fs.ErrPermission):
		return FSErrorPermission
	case errors.Is(err, fs.ErrExist):
		return FSErrorAlreadyExists
	default:
		return FSErrorOther
	}
}

// AferoFilesystem implements Filesystem on top of an afero.Fs.
type AferoFilesystem struct {
	fs afero.Fs
}

// NewAferoFilesystem wraps fsys. A nil fsys means the OS filesystem.
func NewAferoFilesystem(fsys afero.Fs) *AferoFilesystem {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &AferoFilesystem{fs: fsys}
}

// NewOSFilesystem returns a Filesystem backed by the real OS filesystem.
// Relative paths resolve against the process working directory.
func NewOSFilesystem() *AferoFilesystem {
	return NewAferoFilesystem(afero.NewOsFs())
}

func (a *AferoFilesystem) SaveFile(ctx context.Context, path, content string) error {
	_, span := StartSpan(ctx, "AferoFilesystem.SaveFile")
	defer span.End()
	span.SetAttributes(
		attribute.String("path", path),
		attribute.Int("content_bytes", len(content)),
	)

	var err error
	defer func() {
		recordSpanError(span, err)
	}()

	dir := filepath.Dir(path)
	// A failed stat falls through to MkdirAll, which reports the real cause.
	exists, statErr := afero.DirExists(a.fs, dir)
	if statErr != nil || !exists {
		if mkErr := a.fs.MkdirAll(dir, dirPerm); mkErr != nil {
			err = newFSError("mkdir", dir, mkErr)
			return err
		}
	}

	if wErr := afero.WriteFile(a.fs, path, []byte(content), filePerm); wErr != nil {
		err = newFSError("write", path, wErr)
		return err
	}
	return nil
}

func (a *AferoFilesystem) MakeDirectory(ctx context.Context, path string) error {
	_, span := StartSpan(ctx, "AferoFilesystem.MakeDirectory")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	var err error
	defer func() {
		recordSpanError(span, err)
	}()

	if mkErr := a.fs.MkdirAll(path, dirPerm); mkErr != nil {
		err = newFSError("mkdir", path, mkErr)
		return err
	}
	return nil
}
