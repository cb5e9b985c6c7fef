package setup_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bornholm/crosspost/internal/adapter/memory"
	"github.com/bornholm/crosspost/internal/catalog"
	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/pkg/errors"
)

func TestResolveURL(t *testing.T) {
	abs, err := filepath.Abs("articles/post.md")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	type testCase struct {
		Raw      string
		Expected string
	}

	testCases := []testCase{
		{Raw: "-", Expected: "stdin:"},
		{Raw: "https://example.com/post.md", Expected: "https://example.com/post.md"},
		{Raw: "file:///tmp/post.md", Expected: "file:///tmp/post.md"},
		{Raw: "articles/post.md", Expected: "file://" + filepath.ToSlash(abs)},
	}

	for _, tc := range testCases {
		t.Run(tc.Raw, func(t *testing.T) {
			u, err := setup.ResolveURL(tc.Raw)
			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			if e, g := tc.Expected, u.String(); e != g {
				t.Errorf("u.String(): expected '%v', got '%v'", e, g)
			}
		})
	}
}

func TestNewCollaborators(t *testing.T) {
	ctx := context.Background()

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	collaborators := setup.NewCollaborators(ctx, cat, map[model.PlatformID]string{
		"blog":  "memory://setup-blog",
		"zenn":  "",
		"qiita": "unknown://qiita.com",
		"note":  "memory://setup-note",
	})

	if _, exists := collaborators["zenn"]; exists {
		t.Errorf("collaborators['zenn']: expected no collaborator")
	}

	variant := &model.Variant{
		Platform: "blog",
		Content:  "# Hello\n",
		Metadata: model.VariantMetadata{Title: "Hello", Slug: "hello-world"},
	}

	ref, err := collaborators["blog"].Publish(ctx, variant)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "memory://setup-blog/hello-world", ref.URL; e != g {
		t.Errorf("ref.URL: expected '%v', got '%v'", e, g)
	}

	if _, err := memory.Named("setup-blog").Get("hello-world"); err != nil {
		t.Errorf("%+v", errors.WithStack(err))
	}

	if _, err := collaborators["qiita"].Publish(ctx, variant); !errors.Is(err, port.ErrNotSupported) {
		t.Errorf("qiita publish: expected port.ErrNotSupported, got '%v'", err)
	}
}
