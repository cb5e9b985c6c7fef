package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestResolvedInputSource(t *testing.T) {
	dir := t.TempDir()

	config := "database: data/history.sqlite\n" +
		"report: /var/reports/out.json\n" +
		"platforms: zenn\n" +
		"collaborator: memory://smoke\n"

	path := filepath.Join(dir, "crosspost.yaml")

	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	source, err := NewResolvedInputSource(context.Background(), path)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	type testCase struct {
		Key      string
		Expected string
	}

	testCases := []testCase{
		{Key: "database", Expected: filepath.Join(dir, "data/history.sqlite")},
		{Key: "report", Expected: "/var/reports/out.json"},
		{Key: "platforms", Expected: "zenn"},
		{Key: "collaborator", Expected: "memory://smoke"},
	}

	for _, tc := range testCases {
		value, err := source.String(tc.Key)
		if err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}

		if e, g := tc.Expected, value; e != g {
			t.Errorf("source.String(%s): expected '%v', got '%v'", tc.Key, e, g)
		}
	}
}

func TestReadResource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "article.md")

	if err := os.WriteFile(path, []byte("# Hello\n"), 0o644); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	data, err := ReadResource(context.Background(), path)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "# Hello\n", string(data); e != g {
		t.Errorf("data: expected '%v', got '%v'", e, g)
	}
}
