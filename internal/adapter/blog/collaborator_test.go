package blog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/bornholm/crosspost/internal/filesystem/backend/local"
	"github.com/bornholm/crosspost/internal/filesystem/backend/memory"
	"github.com/bornholm/crosspost/internal/setup"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

func TestPublish(t *testing.T) {
	backend := memory.New()
	collaborator := NewCollaborator(backend)

	variant := &model.Variant{
		Platform: "blog",
		Content:  "---\ntitle: First\n---\n\n# First\n",
		Metadata: model.VariantMetadata{
			Slug:         "first-article",
			CanonicalURL: "https://blog.example.com/articles/first-article",
		},
	}

	ref, err := collaborator.Publish(context.Background(), variant)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := variant.Metadata.CanonicalURL, ref.URL; e != g {
		t.Errorf("ref.URL: expected '%v', got '%v'", e, g)
	}

	data, err := afero.ReadFile(backend.Fs(), "src/content/articles/first-article.md")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := variant.Content, string(data); e != g {
		t.Errorf("content: expected '%v', got '%v'", e, g)
	}
}

func TestPublishNoOverwrite(t *testing.T) {
	collaborator := NewCollaborator(memory.New(), WithOverwrite(false), WithArticlesDir("posts"))

	variant := &model.Variant{
		Platform: "blog",
		Content:  "# First\n",
		Metadata: model.VariantMetadata{Slug: "first-article"},
	}

	ref, err := collaborator.Publish(context.Background(), variant)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "posts/first-article.md", ref.URL; e != g {
		t.Errorf("ref.URL: expected '%v', got '%v'", e, g)
	}

	if _, err := collaborator.Publish(context.Background(), variant); !errors.Is(err, port.ErrRejected) {
		t.Errorf("err: expected '%v', got '%v'", port.ErrRejected, err)
	}
}

func TestPublishInvalidSlug(t *testing.T) {
	collaborator := NewCollaborator(memory.New())

	for _, slug := range []string{"", "../escape", "a/b"} {
		variant := &model.Variant{Platform: "blog", Metadata: model.VariantMetadata{Slug: slug}}
		if _, err := collaborator.Publish(context.Background(), variant); !errors.Is(err, port.ErrRejected) {
			t.Errorf("slug '%s': expected '%v', got '%v'", slug, port.ErrRejected, err)
		}
	}
}

func TestPublishMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	collaborator := NewCollaborator(local.New(dir, false))

	variant := &model.Variant{Platform: "blog", Metadata: model.VariantMetadata{Slug: "first-article"}}

	if _, err := collaborator.Publish(context.Background(), variant); !errors.Is(err, port.ErrUnavailable) {
		t.Errorf("err: expected '%v', got '%v'", port.ErrUnavailable, err)
	}
}

func TestFromURL(t *testing.T) {
	dir := t.TempDir()

	collaborator, err := setup.Collaborator.From("blog+local://" + filepath.ToSlash(dir) + "?articles=content/posts")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	variant := &model.Variant{
		Platform: "blog",
		Content:  "# First\n",
		Metadata: model.VariantMetadata{Slug: "first-article"},
	}

	if _, err := collaborator.Publish(context.Background(), variant); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	data, err := os.ReadFile(filepath.Join(dir, "content", "posts", "first-article.md"))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := variant.Content, string(data); e != g {
		t.Errorf("content: expected '%v', got '%v'", e, g)
	}
}
