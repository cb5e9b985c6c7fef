package local

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

func TestMount(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blog")

	dsn, err := url.Parse("local://" + dir + "?create=true")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	backend, err := FromDSN(dsn)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := dir, backend.(*Backend).BasePath(); e != g {
		t.Errorf("BasePath(): expected '%v', got '%v'", e, g)
	}

	err = backend.Mount(context.Background(), func(ctx context.Context, fs afero.Fs) error {
		if err := fs.MkdirAll("articles", 0o755); err != nil {
			return errors.WithStack(err)
		}
		return afero.WriteFile(fs, "articles/hello.md", []byte("hello"), 0o644)
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	data, err := os.ReadFile(filepath.Join(dir, "articles", "hello.md"))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "hello", string(data); e != g {
		t.Errorf("content: expected '%v', got '%v'", e, g)
	}
}

func TestMountMissingDirectory(t *testing.T) {
	backend := New(filepath.Join(t.TempDir(), "missing"), false)

	err := backend.Mount(context.Background(), func(ctx context.Context, fs afero.Fs) error {
		t.Error("mount function should not be called")
		return nil
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got '%v'", err)
	}
}
