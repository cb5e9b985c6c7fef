package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/pkg/errors"
)

func TestRenderPreview(t *testing.T) {
	cat := defaultCatalog(t)
	doc := loadDocument(t, cat, "article.md")

	called := false
	collaborators := map[model.PlatformID]port.Collaborator{}
	for _, id := range cat.PlatformIDs() {
		collaborators[id] = port.CollaboratorFunc(func(ctx context.Context, variant *model.Variant) (*model.PublishedRef, error) {
			called = true
			return nil, nil
		})
	}

	report := NewOrchestrator(cat, collaborators).Orchestrate(context.Background(), doc, WithDryRun(true), WithPlatforms("blog", "zenn"))

	var buff bytes.Buffer
	if err := RenderPreview(&buff, report, WithPreviewLength(40)); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if called {
		t.Error("a collaborator was called while rendering a dry run")
	}

	output := buff.String()

	expected := []string{
		"dry-run of 'Publishing one article everywhere' (crosspost-everywhere): success",
		"== blog: succeeded\n",
		"== zenn: succeeded\n",
		"== qiita: skipped (excluded by platform selection)",
		"== note: skipped (excluded by platform selection)",
		"     title: Publishing one article everywhere\n",
		"     type: tech\n",
		"   warnings:\n",
		"     - topics clamped (kept the first 5 of 6 values)\n",
		"   --- content ---\n   | ---\n",
		"more]\n",
	}

	for _, s := range expected {
		if !strings.Contains(output, s) {
			t.Errorf("output: expected to contain '%s'\n%s", s, output)
		}
	}
}

func TestRenderPreviewFailure(t *testing.T) {
	report := &model.PublishReport{
		Title: "Broken",
		Slug:  "broken",
		Outcomes: []model.PublishOutcome{
			model.Failed("qiita", model.StateFailed, errors.New("remote down")),
			model.Succeeded("blog", &model.PublishedRef{URL: "https://blog.example.com/broken"}, &model.Variant{
				Platform: "blog",
				Content:  "Body only.\n",
				Metadata: model.VariantMetadata{Title: "Broken", Tags: []string{"go", "cli"}},
			}),
		},
	}

	var buff bytes.Buffer
	if err := RenderPreview(&buff, report, WithPreviewLength(0)); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	output := buff.String()

	expected := []string{
		"publish of 'Broken' (broken): partial",
		"== qiita: failed [failed]\n   error: remote down\n",
		"   url: https://blog.example.com/broken\n",
		"   title: Broken\n",
		"   tags: go, cli\n",
	}

	for _, s := range expected {
		if !strings.Contains(output, s) {
			t.Errorf("output: expected to contain '%s'\n%s", s, output)
		}
	}

	if strings.Contains(output, "--- content ---") {
		t.Errorf("output: expected no content preview\n%s", output)
	}
}
